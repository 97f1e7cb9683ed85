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

// Package keys loads the P-256 keys mock attestations and request tokens are
// signed with.
package keys

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"math/big"
	"os"

	"github.com/dominikschlosser/av-verifier/internal/format"
)

// LoadSigningKey loads an EC P-256 private key from a PEM or JWK file.
func LoadSigningKey(path string) (*ecdsa.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading key file: %w", err)
	}
	return ParseSigningKey(data)
}

// ParseSigningKey parses an EC P-256 private key from PEM or JWK bytes.
func ParseSigningKey(data []byte) (*ecdsa.PrivateKey, error) {
	var (
		key *ecdsa.PrivateKey
		err error
	)
	if block, _ := pem.Decode(data); block != nil {
		key, err = parsePEMBlock(block)
	} else {
		key, err = ParseJWK(data)
	}
	if err != nil {
		return nil, err
	}
	if key.Curve != elliptic.P256() {
		return nil, fmt.Errorf("signing key must use P-256, got %s", key.Curve.Params().Name)
	}
	return key, nil
}

func parsePEMBlock(block *pem.Block) (*ecdsa.PrivateKey, error) {
	switch block.Type {
	case "EC PRIVATE KEY":
		return x509.ParseECPrivateKey(block.Bytes)
	case "PRIVATE KEY":
		key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, err
		}
		ec, ok := key.(*ecdsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("expected an EC private key, got %T", key)
		}
		return ec, nil
	default:
		return nil, fmt.Errorf("unsupported PEM block type: %s", block.Type)
	}
}

// ParseJWK parses an EC private JWK.
func ParseJWK(data []byte) (*ecdsa.PrivateKey, error) {
	var jwk map[string]any
	if err := json.Unmarshal(data, &jwk); err != nil {
		return nil, fmt.Errorf("not a valid PEM or JWK: %w", err)
	}

	kty, _ := jwk["kty"].(string)
	if kty != "EC" {
		return nil, fmt.Errorf("unsupported JWK key type: %s", kty)
	}
	return parseECJWK(jwk)
}

func parseECJWK(jwk map[string]any) (*ecdsa.PrivateKey, error) {
	crv, _ := jwk["crv"].(string)
	xB64, _ := jwk["x"].(string)
	yB64, _ := jwk["y"].(string)
	dB64, _ := jwk["d"].(string)
	if dB64 == "" {
		return nil, fmt.Errorf("JWK has no private part (d)")
	}

	xBytes, err := format.DecodeBase64URL(xB64)
	if err != nil {
		return nil, fmt.Errorf("decoding x: %w", err)
	}
	yBytes, err := format.DecodeBase64URL(yB64)
	if err != nil {
		return nil, fmt.Errorf("decoding y: %w", err)
	}
	dBytes, err := format.DecodeBase64URL(dB64)
	if err != nil {
		return nil, fmt.Errorf("decoding d: %w", err)
	}

	var curve elliptic.Curve
	switch crv {
	case "P-256":
		curve = elliptic.P256()
	case "P-384":
		curve = elliptic.P384()
	case "P-521":
		curve = elliptic.P521()
	default:
		return nil, fmt.Errorf("unsupported curve: %s", crv)
	}

	key := &ecdsa.PrivateKey{
		PublicKey: ecdsa.PublicKey{
			Curve: curve,
			X:     new(big.Int).SetBytes(xBytes),
			Y:     new(big.Int).SetBytes(yBytes),
		},
		D: new(big.Int).SetBytes(dBytes),
	}
	if !curve.IsOnCurve(key.X, key.Y) {
		return nil, fmt.Errorf("JWK point is not on %s", crv)
	}
	return key, nil
}

// PublicJWK returns the public JWK of an EC key, for verifiers that want to
// check mock signatures.
func PublicJWK(pub *ecdsa.PublicKey) map[string]any {
	size := (pub.Curve.Params().BitSize + 7) / 8
	return map[string]any{
		"kty": "EC",
		"crv": pub.Curve.Params().Name,
		"x":   format.EncodeBase64URL(pub.X.FillBytes(make([]byte, size))),
		"y":   format.EncodeBase64URL(pub.Y.FillBytes(make([]byte, size))),
	}
}
