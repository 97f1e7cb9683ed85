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

package mock

import (
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/veraison/go-cose"
)

// Claim is one element of a mock namespace. Claims keep their slice order
// on the wire.
type Claim struct {
	Name  string
	Value any
}

// DocumentConfig describes one document of a mock DeviceResponse.
type DocumentConfig struct {
	DocType   string
	Namespace string
	Claims    []Claim
}

// DeviceResponseConfig holds options for generating a mock DeviceResponse.
type DeviceResponseConfig struct {
	Documents []DocumentConfig
	Key       *ecdsa.PrivateKey
	// Now overrides the signing time; zero means time.Now.
	Now time.Time
}

var cborEncMode cbor.EncMode

func init() {
	var err error
	cborEncMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("mock: CBOR encoder initialization failed: " + err.Error())
	}
}

// GenerateDeviceResponse creates a CBOR DeviceResponse holding one document
// per config entry, each with a COSE_Sign1 issuerAuth over its MSO.
func GenerateDeviceResponse(cfg DeviceResponseConfig) ([]byte, error) {
	if len(cfg.Documents) == 0 {
		return nil, fmt.Errorf("at least one document is required")
	}
	if cfg.Key == nil {
		return nil, fmt.Errorf("signing key is required")
	}

	now := cfg.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC().Truncate(time.Second)

	documents := make([]any, 0, len(cfg.Documents))
	for _, doc := range cfg.Documents {
		issuerSigned, err := generateIssuerSigned(doc, cfg.Key, now)
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", doc.DocType, err)
		}
		documents = append(documents, map[string]any{
			"docType":      doc.DocType,
			"issuerSigned": issuerSigned,
		})
	}

	resp := map[string]any{
		"version":   "1.0",
		"documents": documents,
		"status":    uint64(0),
	}

	out, err := cborEncMode.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("encoding DeviceResponse: %w", err)
	}
	return out, nil
}

func generateIssuerSigned(doc DocumentConfig, key *ecdsa.PrivateKey, now time.Time) (map[string]any, error) {
	tag24Items := make([]cbor.RawMessage, 0, len(doc.Claims))
	valueDigests := make(map[uint64][]byte, len(doc.Claims))

	for i, claim := range doc.Claims {
		digestID := uint64(i)

		random := make([]byte, 16)
		if _, err := rand.Read(random); err != nil {
			return nil, fmt.Errorf("generating random: %w", err)
		}

		item := map[string]any{
			"digestID":          digestID,
			"random":            random,
			"elementIdentifier": claim.Name,
			"elementValue":      claim.Value,
		}
		itemBytes, err := cborEncMode.Marshal(item)
		if err != nil {
			return nil, fmt.Errorf("encoding IssuerSignedItem %s: %w", claim.Name, err)
		}

		tag24Bytes, err := cborEncMode.Marshal(cbor.Tag{Number: 24, Content: itemBytes})
		if err != nil {
			return nil, fmt.Errorf("encoding Tag-24: %w", err)
		}
		tag24Items = append(tag24Items, tag24Bytes)

		// MSO digests cover the full Tag-24 encoding.
		digest := sha256.Sum256(tag24Bytes)
		valueDigests[digestID] = digest[:]
	}

	issuerAuth, err := signMSO(doc, valueDigests, key, now)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"nameSpaces": map[string]any{
			doc.Namespace: tag24Items,
		},
		"issuerAuth": cbor.RawMessage(issuerAuth),
	}, nil
}

func signMSO(doc DocumentConfig, valueDigests map[uint64][]byte, key *ecdsa.PrivateKey, now time.Time) ([]byte, error) {
	validUntil := now.Add(90 * 24 * time.Hour)

	mso := map[string]any{
		"version":         "1.0",
		"digestAlgorithm": "SHA-256",
		"docType":         doc.DocType,
		"valueDigests": map[string]any{
			doc.Namespace: valueDigests,
		},
		"validityInfo": map[string]any{
			"signed":     cbor.Tag{Number: 0, Content: now.Format(time.RFC3339)},
			"validFrom":  cbor.Tag{Number: 0, Content: now.Format(time.RFC3339)},
			"validUntil": cbor.Tag{Number: 0, Content: validUntil.Format(time.RFC3339)},
		},
	}

	msoBytes, err := cborEncMode.Marshal(mso)
	if err != nil {
		return nil, fmt.Errorf("encoding MSO: %w", err)
	}
	// The MSO travels as embedded CBOR.
	payload, err := cborEncMode.Marshal(cbor.Tag{Number: 24, Content: msoBytes})
	if err != nil {
		return nil, fmt.Errorf("encoding MSO Tag-24: %w", err)
	}

	signer, err := cose.NewSigner(cose.AlgorithmES256, key)
	if err != nil {
		return nil, fmt.Errorf("creating COSE signer: %w", err)
	}

	msg := cose.NewSign1Message()
	msg.Headers.Protected.SetAlgorithm(cose.AlgorithmES256)
	msg.Payload = payload

	if err := msg.Sign(rand.Reader, nil, signer); err != nil {
		return nil, fmt.Errorf("COSE signing: %w", err)
	}

	out, err := msg.MarshalCBOR()
	if err != nil {
		return nil, fmt.Errorf("encoding COSE_Sign1: %w", err)
	}
	return out, nil
}
