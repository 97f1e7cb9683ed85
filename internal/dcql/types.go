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

// Package dcql builds Digital Credentials Query Language queries for the
// dcql_query parameter of an authorization request.
package dcql

// Query is a DCQL query.
type Query struct {
	Credentials []CredentialQuery `json:"credentials"`
}

// CredentialQuery requests one credential.
type CredentialQuery struct {
	ID     string          `json:"id"`
	Format string          `json:"format"`
	Meta   *CredentialMeta `json:"meta,omitempty"`
	Claims []ClaimQuery    `json:"claims"`
}

// CredentialMeta narrows the request to a doc type.
type CredentialMeta struct {
	DoctypeValue string `json:"doctype_value,omitempty"`
}

// ClaimQuery names one element by [namespace, elementIdentifier].
type ClaimQuery struct {
	Path []any `json:"path"`
}
