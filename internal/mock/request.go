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

package mock

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dominikschlosser/av-verifier/internal/format"
	"github.com/google/uuid"
)

// RequestConfig holds options for generating a signed authorization request
// token. Empty Nonce and State are filled with random UUIDs.
type RequestConfig struct {
	ResponseURI  string
	ResponseMode string
	DCQLQuery    any
	Nonce        string
	State        string
	Key          *ecdsa.PrivateKey
	Now          time.Time
}

// requestClaims fixes the payload member order.
type requestClaims struct {
	ClientID     string `json:"client_id"`
	ResponseType string `json:"response_type"`
	ResponseMode string `json:"response_mode"`
	ResponseURI  string `json:"response_uri"`
	DCQLQuery    any    `json:"dcql_query"`
	Nonce        string `json:"nonce"`
	State        string `json:"state"`
	Audience     string `json:"aud"`
	IssuedAt     int64  `json:"iat"`
}

// GenerateRequestToken creates an ES256-signed request object JWT.
func GenerateRequestToken(cfg RequestConfig) (string, error) {
	if cfg.ResponseURI == "" {
		return "", fmt.Errorf("response_uri is required")
	}
	if cfg.Key == nil {
		return "", fmt.Errorf("signing key is required")
	}

	now := cfg.Now
	if now.IsZero() {
		now = time.Now()
	}

	claims := requestClaims{
		ClientID:     "redirect_uri:" + cfg.ResponseURI,
		ResponseType: "vp_token",
		ResponseMode: cfg.ResponseMode,
		ResponseURI:  cfg.ResponseURI,
		DCQLQuery:    cfg.DCQLQuery,
		Nonce:        cfg.Nonce,
		State:        cfg.State,
		Audience:     "https://self-issued.me/v2",
		IssuedAt:     now.Unix(),
	}
	if claims.ResponseMode == "" {
		claims.ResponseMode = "direct_post"
	}
	if claims.Nonce == "" {
		claims.Nonce = uuid.New().String()
	}
	if claims.State == "" {
		claims.State = uuid.New().String()
	}

	header := map[string]any{
		"alg": "ES256",
		"typ": "oauth-authz-req+jwt",
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return "", fmt.Errorf("marshaling header: %w", err)
	}
	payloadJSON, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("marshaling payload: %w", err)
	}

	headerB64 := format.EncodeBase64URL(headerJSON)
	payloadB64 := format.EncodeBase64URL(payloadJSON)

	sigInput := headerB64 + "." + payloadB64
	h := sha256.Sum256([]byte(sigInput))

	sig, err := signECDSA(cfg.Key, h[:])
	if err != nil {
		return "", fmt.Errorf("signing: %w", err)
	}

	return sigInput + "." + format.EncodeBase64URL(sig), nil
}
