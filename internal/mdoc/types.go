// Copyright 2025 Dominik Schlosser
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package mdoc

// AttestationFormat identifies the credential format of a record.
type AttestationFormat string

const FormatMSOMDOC AttestationFormat = "mso_mdoc"

// KindSingle marks a record holding exactly one attestation.
const KindSingle = "single"

// AttestationRecord is one decoded attestation, ready for display.
type AttestationRecord struct {
	Kind       string            `json:"kind"`
	Format     AttestationFormat `json:"format"`
	Name       string            `json:"name"`
	Attributes []KeyValue        `json:"attributes"`
	Metadata   []KeyValue        `json:"metadata"`
}

// KeyValue is one display attribute. Key is "<namespace>:<elementIdentifier>"
// and Value the flattened element value.
type KeyValue struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Document is one attestation of a DeviceResponse before its elements are
// decoded.
type Document struct {
	DocType    string
	NameSpaces []NameSpace
}

// NameSpace holds the element entries of one namespace in wire order. Each
// element is still the embedded CBOR (tag 24 byte string) of an
// IssuerSignedItem.
type NameSpace struct {
	Name     string
	Elements []Value
}
