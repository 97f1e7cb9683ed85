// Copyright 2026 Dominik Schlosser
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

import (
	"errors"
	"fmt"

	"github.com/dominikschlosser/av-verifier/internal/format"
)

// Decode turns a hex or base64url encoded DeviceResponse into one record per
// document, in document order. A single document still yields a one-element
// slice.
func Decode(blob string) ([]AttestationRecord, error) {
	data, _, err := format.DecodeBase64URLOrHex(blob)
	if err != nil {
		return nil, malformedInput(err)
	}
	return DecodeBytes(data)
}

// DecodeBytes is Decode for an already decoded CBOR DeviceResponse.
func DecodeBytes(data []byte) ([]AttestationRecord, error) {
	if len(data) == 0 {
		return nil, malformedInput(errors.New("input decodes to zero bytes"))
	}

	docs, err := ParseDocuments(data)
	if err != nil {
		return nil, err
	}

	records := make([]AttestationRecord, 0, len(docs))
	for i, doc := range docs {
		rec, err := doc.Record()
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// ParseDocuments extracts docType and issuer-signed namespaces of every
// document in a DeviceResponse. Element entries are left encoded.
func ParseDocuments(data []byte) ([]Document, error) {
	root := parseLenient(data)

	docs, ok := root.Get("documents")
	if !ok || docs.Kind() != KindSequence {
		return nil, missingField("documents")
	}

	result := make([]Document, 0, len(docs.Items()))
	for i, raw := range docs.Items() {
		doc, err := parseDocument(raw, fmt.Sprintf("documents[%d]", i))
		if err != nil {
			return nil, err
		}
		result = append(result, doc)
	}
	return result, nil
}

func parseDocument(raw Value, path string) (Document, error) {
	docType, ok := raw.Get("docType")
	if !ok {
		return Document{}, missingField(path + ".docType")
	}
	name, ok := docType.AsText()
	if !ok {
		return Document{}, missingField(path + ".docType")
	}

	issuerSigned, ok := raw.Get("issuerSigned")
	if !ok || issuerSigned.Kind() != KindMapping {
		return Document{}, missingField(path + ".issuerSigned")
	}

	nameSpaces, ok := issuerSigned.Get("nameSpaces")
	if !ok || nameSpaces.Kind() != KindMapping {
		return Document{}, missingField(path + ".issuerSigned.nameSpaces")
	}

	doc := Document{
		DocType:    name,
		NameSpaces: make([]NameSpace, 0, len(nameSpaces.Entries())),
	}
	for _, e := range nameSpaces.Entries() {
		ns := e.Key.String()
		if e.Value.Kind() != KindSequence {
			return Document{}, missingField(fmt.Sprintf("%s.issuerSigned.nameSpaces[%s]", path, ns))
		}
		doc.NameSpaces = append(doc.NameSpaces, NameSpace{Name: ns, Elements: e.Value.Items()})
	}
	return doc, nil
}

// Record decodes every element of the document into a display record.
func (d Document) Record() (AttestationRecord, error) {
	attrs, err := d.Attributes()
	if err != nil {
		return AttestationRecord{}, err
	}
	return AttestationRecord{
		Kind:       KindSingle,
		Format:     FormatMSOMDOC,
		Name:       d.DocType,
		Attributes: attrs,
		Metadata:   []KeyValue{},
	}, nil
}

// Attributes decodes each element entry and flattens its value. Keys are
// "<namespace>:<elementIdentifier>"; order follows namespaces, then elements
// within a namespace.
func (d Document) Attributes() ([]KeyValue, error) {
	attrs := []KeyValue{}
	for _, ns := range d.NameSpaces {
		for i, element := range ns.Elements {
			path := fmt.Sprintf("%s[%d]", ns.Name, i)

			// Entries are tag 24 byte strings; anything else has no bytes
			// and so decodes to Null.
			raw, _ := element.AsBytes()
			item := parseLenient(raw)

			id, ok := item.Get("elementIdentifier")
			if !ok {
				return nil, missingField(path + ".elementIdentifier")
			}
			identifier, ok := id.AsText()
			if !ok {
				return nil, missingField(path + ".elementIdentifier")
			}

			value, ok := item.Get("elementValue")
			if !ok {
				return nil, missingField(path + ".elementValue")
			}

			attrs = append(attrs, KeyValue{
				Key:   ns.Name + ":" + identifier,
				Value: Flatten(value),
			})
		}
	}
	return attrs, nil
}
