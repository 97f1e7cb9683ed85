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

// Package mock generates test attestations (mDOC DeviceResponses) and signed
// authorization request tokens.
package mock

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Age verification attestation defaults.
const (
	AVDocType   = "eu.europa.ec.av.1"
	AVNamespace = "eu.europa.ec.av.1"
)

// EUDI PID defaults.
const (
	PIDDocType   = "eu.europa.ec.eudi.pid.1"
	PIDNamespace = "eu.europa.ec.eudi.pid.1"
)

// AVClaims is the proof-of-age attestation a wallet presents to an age
// verifier.
var AVClaims = []Claim{
	{Name: "age_over_18", Value: true},
	{Name: "age_over_21", Value: false},
	{Name: "issuing_country", Value: "DE"},
}

// PIDClaims follows the EUDI PID Rulebook for mDoc format, including a
// nested address and a multi-valued nationality so every display shape is
// exercised.
var PIDClaims = []Claim{
	{Name: "family_name", Value: "MUSTERMANN"},
	{Name: "given_name", Value: "ERIKA"},
	{Name: "birth_date", Value: "1984-08-12"},
	{Name: "age_over_18", Value: true},
	{Name: "age_in_years", Value: 41},
	{Name: "nationality", Value: []any{"DE", "AT"}},
	{Name: "resident_address", Value: map[string]any{
		"street_address": "HEIDESTRAẞE 17",
		"locality":       "KÖLN",
		"postal_code":    "51147",
		"country":        "DE",
	}},
	{Name: "issuing_authority", Value: map[string]any{"value": "DE"}},
}

// AVDocument returns the default age verification document.
func AVDocument() DocumentConfig {
	return DocumentConfig{DocType: AVDocType, Namespace: AVNamespace, Claims: AVClaims}
}

// PIDDocument returns the default PID document.
func PIDDocument() DocumentConfig {
	return DocumentConfig{DocType: PIDDocType, Namespace: PIDNamespace, Claims: PIDClaims}
}

// ParseClaims reads claims from a JSON object. Object keys keep their
// source order.
func ParseClaims(raw string) ([]Claim, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("parsing claims: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("claims must be a JSON object")
	}

	var claims []Claim
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("parsing claims: %w", err)
		}
		name, _ := tok.(string)

		var value any
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("parsing claim %s: %w", name, err)
		}
		claims = append(claims, Claim{Name: name, Value: normalizeJSON(value)})
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("parsing claims: %w", err)
	}
	return claims, nil
}

// normalizeJSON converts json.Number into int64 where possible so integers
// are CBOR-encoded as integers rather than floats.
func normalizeJSON(v any) any {
	switch val := v.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i
		}
		f, _ := val.Float64()
		return f
	case map[string]any:
		for k, item := range val {
			val[k] = normalizeJSON(item)
		}
		return val
	case []any:
		for i, item := range val {
			val[i] = normalizeJSON(item)
		}
		return val
	default:
		return v
	}
}
