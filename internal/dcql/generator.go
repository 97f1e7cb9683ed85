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

package dcql

import (
	"fmt"
	"strings"

	"github.com/dominikschlosser/av-verifier/internal/mdoc"
)

// AgeOver18 requests the age_over_18 element of an mso_mdoc attestation.
func AgeOver18(docType, namespace string) *Query {
	return &Query{Credentials: []CredentialQuery{{
		ID:     credentialID(docType, 0),
		Format: string(mdoc.FormatMSOMDOC),
		Meta:   &CredentialMeta{DoctypeValue: docType},
		Claims: []ClaimQuery{{Path: []any{namespace, "age_over_18"}}},
	}}}
}

// FromRecords generates a DCQL query requesting every attribute of the
// decoded attestations, one credential query per record.
func FromRecords(records []mdoc.AttestationRecord) *Query {
	q := &Query{Credentials: make([]CredentialQuery, 0, len(records))}
	seen := make(map[string]bool)

	for i, rec := range records {
		id := credentialID(rec.Name, i)
		if seen[id] {
			id = fmt.Sprintf("%s_%d", id, i)
		}
		seen[id] = true

		cq := CredentialQuery{
			ID:     id,
			Format: string(rec.Format),
			Claims: make([]ClaimQuery, 0, len(rec.Attributes)),
		}
		if rec.Name != "" {
			cq.Meta = &CredentialMeta{DoctypeValue: rec.Name}
		}

		for _, attr := range rec.Attributes {
			// Keys are "<namespace>:<elementIdentifier>"; identifiers carry
			// no colon, namespaces might.
			idx := strings.LastIndex(attr.Key, ":")
			if idx < 0 {
				continue
			}
			cq.Claims = append(cq.Claims, ClaimQuery{
				Path: []any{attr.Key[:idx], attr.Key[idx+1:]},
			})
		}

		q.Credentials = append(q.Credentials, cq)
	}

	return q
}

func credentialID(docType string, index int) string {
	id := sanitizeID(docType)
	if id == "" {
		id = fmt.Sprintf("credential_%d", index)
	}
	return id
}

func sanitizeID(s string) string {
	s = strings.ReplaceAll(s, ":", "_")
	s = strings.ReplaceAll(s, ".", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.TrimLeft(s, "_")
	if len(s) > 50 {
		s = s[:50]
	}
	return s
}
