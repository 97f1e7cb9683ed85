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
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dominikschlosser/av-verifier/internal/mock"
	"github.com/fxamacker/cbor/v2"
)

// pair and orderedMap encode a CBOR map with entries in the given order,
// which plain Go maps cannot express.
type pair struct {
	k string
	v any
}

type orderedMap []pair

func (m orderedMap) MarshalCBOR() ([]byte, error) {
	if len(m) > 23 {
		return nil, fmt.Errorf("orderedMap supports at most 23 entries")
	}
	out := []byte{0xa0 | byte(len(m))}
	for _, p := range m {
		kb, err := cbor.Marshal(p.k)
		if err != nil {
			return nil, err
		}
		vb, err := cbor.Marshal(p.v)
		if err != nil {
			return nil, err
		}
		out = append(out, kb...)
		out = append(out, vb...)
	}
	return out, nil
}

// element builds a Tag-24 wrapped IssuerSignedItem.
func element(t *testing.T, digestID int, identifier string, value any) cbor.Tag {
	t.Helper()
	item, err := cbor.Marshal(orderedMap{
		{"digestID", digestID},
		{"random", []byte("random")},
		{"elementIdentifier", identifier},
		{"elementValue", value},
	})
	if err != nil {
		t.Fatalf("marshaling item: %v", err)
	}
	return cbor.Tag{Number: 24, Content: item}
}

func document(docType string, nameSpaces orderedMap) orderedMap {
	return orderedMap{
		{"docType", docType},
		{"issuerSigned", orderedMap{{"nameSpaces", nameSpaces}}},
	}
}

func deviceResponse(t *testing.T, docs ...any) []byte {
	t.Helper()
	data, err := cbor.Marshal(orderedMap{
		{"version", "1.0"},
		{"documents", docs},
		{"status", 0},
	})
	if err != nil {
		t.Fatalf("marshaling DeviceResponse: %v", err)
	}
	return data
}

func mustDecode(t *testing.T, blob string) []AttestationRecord {
	t.Helper()
	records, err := Decode(blob)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	return records
}

func TestDecode_SingleDocument(t *testing.T) {
	data := deviceResponse(t, document("eu.europa.ec.av.1", orderedMap{
		{"eu.europa.ec.av.1", []any{
			element(t, 0, "age_over_18", true),
			element(t, 1, "issuing_country", "DE"),
		}},
	}))

	for name, blob := range map[string]string{
		"hex":       hex.EncodeToString(data),
		"base64url": base64.RawURLEncoding.EncodeToString(data),
		"spaced":    "  " + hex.EncodeToString(data) + "\n",
	} {
		t.Run(name, func(t *testing.T) {
			records := mustDecode(t, blob)
			if len(records) != 1 {
				t.Fatalf("expected 1 record, got %d", len(records))
			}

			rec := records[0]
			if rec.Kind != KindSingle || rec.Format != FormatMSOMDOC {
				t.Errorf("unexpected kind/format %q/%q", rec.Kind, rec.Format)
			}
			if rec.Name != "eu.europa.ec.av.1" {
				t.Errorf("unexpected name %q", rec.Name)
			}
			if rec.Metadata == nil || len(rec.Metadata) != 0 {
				t.Errorf("expected empty non-nil metadata, got %#v", rec.Metadata)
			}

			want := []KeyValue{
				{Key: "eu.europa.ec.av.1:age_over_18", Value: "true"},
				{Key: "eu.europa.ec.av.1:issuing_country", Value: "DE"},
			}
			if len(rec.Attributes) != len(want) {
				t.Fatalf("expected %d attributes, got %d", len(want), len(rec.Attributes))
			}
			for i, w := range want {
				if rec.Attributes[i] != w {
					t.Errorf("attribute %d: got %+v, want %+v", i, rec.Attributes[i], w)
				}
			}
		})
	}
}

func TestDecode_WireOrderKept(t *testing.T) {
	data := deviceResponse(t, document("org.example.1", orderedMap{
		{"z.ns", []any{element(t, 0, "zeta", 1), element(t, 1, "alpha", 2)}},
		{"a.ns", []any{element(t, 2, "mid", 3)}},
	}))

	records := mustDecode(t, hex.EncodeToString(data))
	var keys []string
	for _, a := range records[0].Attributes {
		keys = append(keys, a.Key)
	}
	want := []string{"z.ns:zeta", "z.ns:alpha", "a.ns:mid"}
	if fmt.Sprint(keys) != fmt.Sprint(want) {
		t.Errorf("got order %v, want %v", keys, want)
	}
}

func TestDecode_ElementShapes(t *testing.T) {
	plain, err := cbor.Marshal(orderedMap{
		{"elementIdentifier", "plain"},
		{"elementValue", "bytes"},
	})
	if err != nil {
		t.Fatal(err)
	}

	data := deviceResponse(t, document("org.example.1", orderedMap{
		{"ns", []any{
			element(t, 0, "address", orderedMap{{"city", "KÖLN"}, {"zip", "51147"}}),
			element(t, 1, "nationality", []any{"DE", "AT"}),
			element(t, 2, "authority", orderedMap{{"value", "DE"}, {"lang", "de"}}),
			element(t, 3, "portrait", []byte{0xfb, 0xff}),
			element(t, 4, "nothing", nil),
			element(t, 5, "birth_date", cbor.Tag{Number: 1004, Content: "1984-08-12"}),
			plain,
		}},
	}))

	records := mustDecode(t, base64.RawURLEncoding.EncodeToString(data))
	want := map[string]string{
		"ns:address":     "&nbsp;&nbsp;city: KÖLN<br/>&nbsp;&nbsp;zip: 51147",
		"ns:nationality": `"DE", "AT"`,
		"ns:authority":   "DE",
		"ns:portrait":    "-_8",
		"ns:nothing":     "",
		"ns:birth_date":  "1984-08-12",
		"ns:plain":       "bytes",
	}

	attrs := records[0].Attributes
	if len(attrs) != len(want) {
		t.Fatalf("expected %d attributes, got %d", len(want), len(attrs))
	}
	for _, a := range attrs {
		if a.Value != want[a.Key] {
			t.Errorf("%s: got %q, want %q", a.Key, a.Value, want[a.Key])
		}
	}
}

func TestDecode_MultipleDocuments(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	data, err := mock.GenerateDeviceResponse(mock.DeviceResponseConfig{
		Documents: []mock.DocumentConfig{mock.AVDocument(), mock.PIDDocument()},
		Key:       key,
		Now:       time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("GenerateDeviceResponse() error: %v", err)
	}

	records := mustDecode(t, base64.RawURLEncoding.EncodeToString(data))
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Name != mock.AVDocType || records[1].Name != mock.PIDDocType {
		t.Errorf("document order not kept: %q, %q", records[0].Name, records[1].Name)
	}
	if len(records[0].Attributes) != len(mock.AVClaims) {
		t.Errorf("expected %d AV attributes, got %d", len(mock.AVClaims), len(records[0].Attributes))
	}

	pid := make(map[string]string)
	for _, a := range records[1].Attributes {
		pid[a.Key] = a.Value
	}
	ns := mock.PIDNamespace + ":"
	checks := map[string]string{
		ns + "family_name":       "MUSTERMANN",
		ns + "age_over_18":       "true",
		ns + "age_in_years":      "41",
		ns + "nationality":       `"DE", "AT"`,
		ns + "issuing_authority": "DE",
		ns + "resident_address":  "&nbsp;&nbsp;country: DE<br/>&nbsp;&nbsp;locality: KÖLN<br/>&nbsp;&nbsp;postal_code: 51147<br/>&nbsp;&nbsp;street_address: HEIDESTRAẞE 17",
	}
	for k, want := range checks {
		if got := pid[k]; got != want {
			t.Errorf("%s: got %q, want %q", k, got, want)
		}
	}
}

func TestDecode_NoDocuments(t *testing.T) {
	records := mustDecode(t, hex.EncodeToString(deviceResponse(t)))
	if records == nil || len(records) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", records)
	}
}

func TestDecode_Errors(t *testing.T) {
	garbage := cbor.Tag{Number: 24, Content: []byte{0xa1, 0x61}}

	tests := []struct {
		name  string
		blob  func(t *testing.T) string
		want  error
		field string
	}{
		{
			name: "empty",
			blob: func(t *testing.T) string { return "" },
			want: ErrMalformedInput,
		},
		{
			name: "neither base64url nor hex",
			blob: func(t *testing.T) string { return "abc!" },
			want: ErrMalformedInput,
		},
		{
			name: "odd hex",
			blob: func(t *testing.T) string { return "a1+" },
			want: ErrMalformedInput,
		},
		{
			name:  "not CBOR",
			blob:  func(t *testing.T) string { return hex.EncodeToString([]byte{0xa1}) },
			want:  ErrMissingField,
			field: "documents",
		},
		{
			name: "no documents",
			blob: func(t *testing.T) string {
				data, _ := cbor.Marshal(orderedMap{{"version", "1.0"}})
				return hex.EncodeToString(data)
			},
			want:  ErrMissingField,
			field: "documents",
		},
		{
			name: "documents not a sequence",
			blob: func(t *testing.T) string {
				data, _ := cbor.Marshal(orderedMap{{"documents", "x"}})
				return hex.EncodeToString(data)
			},
			want:  ErrMissingField,
			field: "documents",
		},
		{
			name: "docType missing",
			blob: func(t *testing.T) string {
				return hex.EncodeToString(deviceResponse(t, orderedMap{{"issuerSigned", orderedMap{}}}))
			},
			want:  ErrMissingField,
			field: "documents[0].docType",
		},
		{
			name: "docType not text",
			blob: func(t *testing.T) string {
				return hex.EncodeToString(deviceResponse(t, orderedMap{{"docType", 1}}))
			},
			want:  ErrMissingField,
			field: "documents[0].docType",
		},
		{
			name: "issuerSigned missing",
			blob: func(t *testing.T) string {
				return hex.EncodeToString(deviceResponse(t, orderedMap{{"docType", "d"}}))
			},
			want:  ErrMissingField,
			field: "documents[0].issuerSigned",
		},
		{
			name: "nameSpaces missing",
			blob: func(t *testing.T) string {
				return hex.EncodeToString(deviceResponse(t, orderedMap{{"docType", "d"}, {"issuerSigned", orderedMap{}}}))
			},
			want:  ErrMissingField,
			field: "documents[0].issuerSigned.nameSpaces",
		},
		{
			name: "namespace not a sequence",
			blob: func(t *testing.T) string {
				return hex.EncodeToString(deviceResponse(t, document("d", orderedMap{{"ns", "x"}})))
			},
			want:  ErrMissingField,
			field: "documents[0].issuerSigned.nameSpaces[ns]",
		},
		{
			name: "second document broken",
			blob: func(t *testing.T) string {
				ok := document("d", orderedMap{{"ns", []any{element(t, 0, "a", 1)}}})
				return hex.EncodeToString(deviceResponse(t, ok, orderedMap{{"docType", "e"}}))
			},
			want:  ErrMissingField,
			field: "documents[1].issuerSigned",
		},
		{
			name: "elementIdentifier missing",
			blob: func(t *testing.T) string {
				item, _ := cbor.Marshal(orderedMap{{"elementValue", 1}})
				return hex.EncodeToString(deviceResponse(t, document("d", orderedMap{
					{"ns", []any{cbor.Tag{Number: 24, Content: item}}},
				})))
			},
			want:  ErrMissingField,
			field: "ns[0].elementIdentifier",
		},
		{
			name: "elementIdentifier not text",
			blob: func(t *testing.T) string {
				item, _ := cbor.Marshal(orderedMap{{"elementIdentifier", 5}, {"elementValue", 1}})
				return hex.EncodeToString(deviceResponse(t, document("d", orderedMap{
					{"ns", []any{cbor.Tag{Number: 24, Content: item}}},
				})))
			},
			want:  ErrMissingField,
			field: "ns[0].elementIdentifier",
		},
		{
			name: "elementValue missing",
			blob: func(t *testing.T) string {
				item, _ := cbor.Marshal(orderedMap{{"elementIdentifier", "a"}})
				return hex.EncodeToString(deviceResponse(t, document("d", orderedMap{
					{"ns", []any{element(t, 0, "ok", 1), cbor.Tag{Number: 24, Content: item}}},
				})))
			},
			want:  ErrMissingField,
			field: "ns[1].elementValue",
		},
		{
			name: "element bytes not CBOR",
			blob: func(t *testing.T) string {
				return hex.EncodeToString(deviceResponse(t, document("d", orderedMap{{"ns", []any{garbage}}})))
			},
			want:  ErrMissingField,
			field: "ns[0].elementIdentifier",
		},
		{
			name: "element not a byte string",
			blob: func(t *testing.T) string {
				return hex.EncodeToString(deviceResponse(t, document("d", orderedMap{{"ns", []any{"text"}}})))
			},
			want:  ErrMissingField,
			field: "ns[0].elementIdentifier",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := Decode(tt.blob(t))
			if err == nil {
				t.Fatalf("expected error, got %d records", len(records))
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}

			var decErr *DecodeError
			if !errors.As(err, &decErr) {
				t.Fatalf("expected *DecodeError, got %T", err)
			}
			if decErr.Field != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, decErr.Field)
			}
		})
	}
}

func TestDecodeError_Is(t *testing.T) {
	err := fmt.Errorf("document 2: %w", missingField("ns[0].elementValue"))
	if errors.Is(err, ErrMalformedInput) {
		t.Error("missing field must not match ErrMalformedInput")
	}
	if !errors.Is(err, ErrMissingField) {
		t.Error("expected match on ErrMissingField")
	}
	if got := err.Error(); got != "document 2: missing field ns[0].elementValue" {
		t.Errorf("unexpected message %q", got)
	}
}

func TestParseDocuments(t *testing.T) {
	data := deviceResponse(t,
		document("a", orderedMap{{"ns1", []any{element(t, 0, "x", 1)}}, {"ns2", []any{}}}),
		document("b", orderedMap{}),
	)

	docs, err := ParseDocuments(data)
	if err != nil {
		t.Fatalf("ParseDocuments() error: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	if docs[0].DocType != "a" || len(docs[0].NameSpaces) != 2 {
		t.Errorf("unexpected first document %+v", docs[0])
	}
	if docs[0].NameSpaces[0].Name != "ns1" || len(docs[0].NameSpaces[0].Elements) != 1 {
		t.Errorf("unexpected namespace %+v", docs[0].NameSpaces[0])
	}
	if tag, _ := docs[0].NameSpaces[0].Elements[0].Tag(); tag != 24 {
		t.Errorf("expected element to stay tag 24 encoded, got tag %d", tag)
	}

	attrs, err := docs[1].Attributes()
	if err != nil {
		t.Fatalf("Attributes() error: %v", err)
	}
	if attrs == nil || len(attrs) != 0 {
		t.Errorf("expected empty non-nil attributes, got %#v", attrs)
	}
}
