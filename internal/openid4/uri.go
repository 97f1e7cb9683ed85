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
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/dominikschlosser/av-verifier/internal/format"
)

// undefined is what a wallet-facing link carries for a member the token
// does not have.
const undefined = "undefined"

// BuildAuthorizationURI turns a signed request token into an av:// deep link.
//
// Only response_uri (also inside client_id) and dcql_query are
// percent-encoded. response_type, response_mode, nonce and state are copied
// verbatim, so wallets see exactly the token's text.
func BuildAuthorizationURI(token string) (string, error) {
	p, err := DecodeRequestToken(token)
	if err != nil {
		return "", err
	}

	dcql, err := p.dcqlText()
	if err != nil {
		return "", invalidToken(ReasonMalformedPayload, fmt.Errorf("dcql_query: %w", err))
	}
	responseURI := p.text("response_uri")

	var b strings.Builder
	b.WriteString(Scheme + "://?response_type=")
	b.WriteString(p.text("response_type"))
	b.WriteString("&response_mode=")
	b.WriteString(p.text("response_mode"))
	b.WriteString("&client_id=redirect_uri")
	b.WriteString(format.EncodeURIComponent(":" + responseURI))
	b.WriteString("&response_uri=")
	b.WriteString(format.EncodeURIComponent(responseURI))
	b.WriteString("&dcql_query=")
	b.WriteString(format.EncodeURIComponent(dcql))
	b.WriteString("&nonce=")
	b.WriteString(p.text("nonce"))
	b.WriteString("&state=")
	b.WriteString(p.text("state"))
	return b.String(), nil
}

// text renders a payload member for interpolation: strings as-is, other
// JSON values as compact JSON, absent members as "undefined".
func (p *AuthorizationPayload) text(name string) string {
	raw, ok := p.claims[name]
	if !ok {
		return undefined
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	compact, err := format.CompactJSON(raw)
	if err != nil {
		return string(raw)
	}
	return compact
}

func (p *AuthorizationPayload) dcqlText() (string, error) {
	if p.DCQLQuery == nil {
		return undefined, nil
	}
	return format.CompactJSON(p.DCQLQuery)
}

// ParseAuthorizationURI reads an av:// deep link back into its fields.
// dcql_query is kept only when it holds a JSON object.
func ParseAuthorizationURI(uri string) (*AuthorizationRequest, error) {
	uri = strings.TrimSpace(uri)
	scheme, rest, ok := strings.Cut(uri, "://")
	if !ok || !strings.EqualFold(scheme, Scheme) {
		return nil, fmt.Errorf("not an %s:// link", Scheme)
	}
	_, query, _ := strings.Cut(rest, "?")

	q, err := url.ParseQuery(query)
	if err != nil {
		return nil, fmt.Errorf("parsing link query: %w", err)
	}

	req := &AuthorizationRequest{
		FullParams: make(map[string]string),
	}
	for key := range q {
		req.FullParams[key] = q.Get(key)
	}

	req.ClientID = q.Get("client_id")
	req.ResponseType = q.Get("response_type")
	req.ResponseMode = q.Get("response_mode")
	req.ResponseURI = q.Get("response_uri")
	req.Nonce = q.Get("nonce")
	req.State = q.Get("state")

	if dq := q.Get("dcql_query"); dq != "" {
		var m map[string]any
		if err := json.Unmarshal([]byte(dq), &m); err == nil {
			req.DCQLQuery = m
		}
	}

	return req, nil
}
