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

package openid4

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dominikschlosser/av-verifier/internal/format"
)

// DecodeRequestToken splits a compact request token and decodes its payload
// segment. The header and signature segments are not inspected.
func DecodeRequestToken(token string) (*AuthorizationPayload, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, invalidToken(ReasonEmpty, nil)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, invalidToken(ReasonWrongSegmentCount, fmt.Errorf("got %d", len(parts)))
	}

	data, err := format.DecodeBase64Std(format.TranslateBase64URL(parts[1]))
	if err != nil {
		return nil, invalidToken(ReasonMalformedPayload, fmt.Errorf("decoding base64: %w", err))
	}
	if !format.ValidUTF8(data) {
		return nil, invalidToken(ReasonMalformedPayload, errors.New("payload is not valid UTF-8"))
	}

	claims, err := decodeObject(data)
	if err != nil {
		return nil, invalidToken(ReasonMalformedPayload, err)
	}

	p := &AuthorizationPayload{
		ResponseType: stringClaim(claims, "response_type"),
		ResponseMode: stringClaim(claims, "response_mode"),
		ResponseURI:  stringClaim(claims, "response_uri"),
		Nonce:        stringClaim(claims, "nonce"),
		State:        stringClaim(claims, "state"),
		DCQLQuery:    claims["dcql_query"],
		claims:       claims,
	}
	return p, nil
}

func decodeObject(data []byte) (map[string]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, errors.New("payload is not a JSON object")
	}

	var claims map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &claims); err != nil {
		return nil, fmt.Errorf("unmarshaling payload: %w", err)
	}
	return claims, nil
}

func stringClaim(claims map[string]json.RawMessage, name string) string {
	var s string
	if raw, ok := claims[name]; ok {
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
	}
	return s
}
