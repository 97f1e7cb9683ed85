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

// Package openid4 turns signed OpenID4VP request tokens into av:// deep links
// a wallet can open, and reads such links back.
package openid4

import "encoding/json"

// Scheme is the URI scheme of deep links handed to a wallet.
const Scheme = "av"

// AuthorizationPayload holds the fields of a request token's payload that
// end up in a deep link. No signature or expiry is checked; the payload is
// taken as-is.
type AuthorizationPayload struct {
	ResponseType string
	ResponseMode string
	ResponseURI  string
	Nonce        string
	State        string
	// DCQLQuery is the dcql_query member exactly as it appeared in the
	// token, nil when absent.
	DCQLQuery json.RawMessage

	claims map[string]json.RawMessage
}

// Claim returns a payload member as raw JSON.
func (p *AuthorizationPayload) Claim(name string) (json.RawMessage, bool) {
	raw, ok := p.claims[name]
	return raw, ok
}

// AuthorizationRequest is an av:// deep link read back into its fields.
type AuthorizationRequest struct {
	ClientID     string
	ResponseType string
	ResponseMode string
	ResponseURI  string
	Nonce        string
	State        string
	DCQLQuery    map[string]any
	FullParams   map[string]string
}
