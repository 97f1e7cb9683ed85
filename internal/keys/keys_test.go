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

package keys

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/dominikschlosser/av-verifier/internal/format"
)

func newP256(t *testing.T) *ecdsa.PrivateKey {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	return key
}

func TestParseSigningKey_PEM(t *testing.T) {
	key := newP256(t)

	sec1, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		t.Fatal(err)
	}
	pkcs8, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		block *pem.Block
	}{
		{"SEC1", &pem.Block{Type: "EC PRIVATE KEY", Bytes: sec1}},
		{"PKCS8", &pem.Block{Type: "PRIVATE KEY", Bytes: pkcs8}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSigningKey(pem.EncodeToMemory(tt.block))
			if err != nil {
				t.Fatalf("ParseSigningKey() error: %v", err)
			}
			if !got.Equal(key) {
				t.Error("parsed key does not match")
			}
		})
	}
}

func TestParseSigningKey_JWK(t *testing.T) {
	key := newP256(t)

	jwk := PublicJWK(&key.PublicKey)
	jwk["d"] = format.EncodeBase64URL(key.D.FillBytes(make([]byte, 32)))
	data, err := json.Marshal(jwk)
	if err != nil {
		t.Fatal(err)
	}

	got, err := ParseSigningKey(data)
	if err != nil {
		t.Fatalf("ParseSigningKey() error: %v", err)
	}
	if !got.Equal(key) {
		t.Error("parsed key does not match")
	}
}

func TestParseSigningKey_Errors(t *testing.T) {
	p384, err := ecdsa.GenerateKey(elliptic.P384(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	p384DER, _ := x509.MarshalECPrivateKey(p384)

	rsaKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	rsaDER, _ := x509.MarshalPKCS8PrivateKey(rsaKey)

	public := PublicJWK(&newP256(t).PublicKey)
	publicJSON, _ := json.Marshal(public)

	tests := []struct {
		name string
		data []byte
	}{
		{"garbage", []byte("not a key")},
		{"P-384", pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: p384DER})},
		{"RSA", pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: rsaDER})},
		{"public PEM", pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: []byte{1}})},
		{"public JWK", publicJSON},
		{"RSA JWK", []byte(`{"kty":"RSA","n":"AQAB","e":"AQAB"}`)},
		{"point off curve", []byte(`{"kty":"EC","crv":"P-256","x":"AQ","y":"AQ","d":"AQ"}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseSigningKey(tt.data); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadSigningKey(t *testing.T) {
	key := newP256(t)
	der, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "key.pem")
	if err := os.WriteFile(path, pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: der}), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := LoadSigningKey(path)
	if err != nil {
		t.Fatalf("LoadSigningKey() error: %v", err)
	}
	if !got.Equal(key) {
		t.Error("loaded key does not match")
	}

	if _, err := LoadSigningKey(filepath.Join(t.TempDir(), "missing.pem")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestPublicJWK(t *testing.T) {
	key := newP256(t)
	jwk := PublicJWK(&key.PublicKey)

	if jwk["kty"] != "EC" || jwk["crv"] != "P-256" {
		t.Errorf("unexpected kty/crv %v/%v", jwk["kty"], jwk["crv"])
	}
	x, err := format.DecodeBase64URL(jwk["x"].(string))
	if err != nil || len(x) != 32 {
		t.Errorf("expected 32-byte x, got %d (%v)", len(x), err)
	}
	if _, ok := jwk["d"]; ok {
		t.Error("public JWK must not carry d")
	}
}
