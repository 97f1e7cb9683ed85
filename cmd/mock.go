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

package cmd

import (
	"crypto/ecdsa"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/dominikschlosser/av-verifier/internal/dcql"
	"github.com/dominikschlosser/av-verifier/internal/format"
	"github.com/dominikschlosser/av-verifier/internal/keys"
	"github.com/dominikschlosser/av-verifier/internal/mock"
	"github.com/dominikschlosser/av-verifier/internal/openid4"
	"github.com/dominikschlosser/av-verifier/internal/output"
	"github.com/spf13/cobra"
)

var (
	mockKeyPath string

	mockDocs      int
	mockClaims    string
	mockDocType   string
	mockNamespace string
	mockPID       bool
	mockHex       bool

	mockResponseURI  string
	mockResponseMode string
	mockNonce        string
	mockState        string
	mockDCQL         string
	mockLink         bool
)

var mockCmd = &cobra.Command{
	Use:   "mock",
	Short: "Generate test attestations and request tokens",
	Long:  "Generate signed fixtures for development and testing. Uses an ephemeral P-256 key unless --key is given; its public JWK is printed to stderr.",
}

var mockAttestationCmd = &cobra.Command{
	Use:   "attestation",
	Short: "Generate a mock mso_mdoc DeviceResponse",
	Long:  "Generate a DeviceResponse with one or more documents, each with Tag-24 IssuerSignedItems and a COSE_Sign1 issuerAuth. Prints base64url by default.",
	Args:  cobra.NoArgs,
	RunE:  runMockAttestation,
}

var mockRequestCmd = &cobra.Command{
	Use:   "request",
	Short: "Generate a mock signed authorization request token",
	Long:  "Generate an ES256-signed OpenID4VP request object asking for age_over_18 by default.",
	Args:  cobra.NoArgs,
	RunE:  runMockRequest,
}

func init() {
	rootCmd.AddCommand(mockCmd)
	mockCmd.AddCommand(mockAttestationCmd)
	mockCmd.AddCommand(mockRequestCmd)

	mockCmd.PersistentFlags().StringVar(&mockKeyPath, "key", "", "EC P-256 private key file (PEM or JWK); ephemeral if omitted")

	mockAttestationCmd.Flags().IntVar(&mockDocs, "docs", 1, "Number of documents")
	mockAttestationCmd.Flags().StringVar(&mockClaims, "claims", "", "Claims as JSON object or @filepath")
	mockAttestationCmd.Flags().StringVar(&mockDocType, "doc-type", mock.AVDocType, "Document type for --claims")
	mockAttestationCmd.Flags().StringVar(&mockNamespace, "namespace", mock.AVNamespace, "Namespace for --claims")
	mockAttestationCmd.Flags().BoolVar(&mockPID, "pid", false, "Use EUDI PID claims instead of the age verification attestation")
	mockAttestationCmd.Flags().BoolVar(&mockHex, "hex", false, "Print hex instead of base64url")

	mockRequestCmd.Flags().StringVar(&mockResponseURI, "response-uri", "https://verifier.example/response", "Verifier response endpoint")
	mockRequestCmd.Flags().StringVar(&mockResponseMode, "response-mode", "direct_post", "Response mode")
	mockRequestCmd.Flags().StringVar(&mockNonce, "nonce", "", "Nonce; random UUID if omitted")
	mockRequestCmd.Flags().StringVar(&mockState, "state", "", "State; random UUID if omitted")
	mockRequestCmd.Flags().StringVar(&mockDCQL, "dcql", "", "DCQL query as JSON or @filepath; age_over_18 if omitted")
	mockRequestCmd.Flags().BoolVar(&mockLink, "link", false, "Also print the av:// deep link for the token")
}

func runMockAttestation(cmd *cobra.Command, args []string) error {
	if mockDocs < 1 {
		return fmt.Errorf("--docs must be at least 1")
	}

	templates, err := resolveMockDocuments()
	if err != nil {
		return err
	}

	docs := make([]mock.DocumentConfig, 0, mockDocs)
	for i := 0; i < mockDocs; i++ {
		docs = append(docs, templates[i%len(templates)])
	}

	key, err := loadOrGenerateMockKey()
	if err != nil {
		return err
	}

	data, err := mock.GenerateDeviceResponse(mock.DeviceResponseConfig{
		Documents: docs,
		Key:       key,
	})
	if err != nil {
		return fmt.Errorf("generating DeviceResponse: %w", err)
	}
	slog.Debug("generated DeviceResponse", "documents", len(docs), "bytes", len(data))

	encoding := format.EncodingBase64URL
	blob := format.EncodeBase64URL(data)
	if mockHex {
		encoding = format.EncodingHex
		blob = hex.EncodeToString(data)
	}

	if jsonOutput {
		output.PrintJSON(map[string]any{
			"format":         "mso_mdoc",
			"encoding":       encoding,
			"documents":      len(docs),
			"deviceResponse": blob,
		})
		return nil
	}

	fmt.Println(blob)
	return nil
}

// resolveMockDocuments returns the documents --docs cycles through.
func resolveMockDocuments() ([]mock.DocumentConfig, error) {
	if mockClaims != "" {
		data, err := readFlagValue(mockClaims)
		if err != nil {
			return nil, fmt.Errorf("reading claims: %w", err)
		}
		claims, err := mock.ParseClaims(data)
		if err != nil {
			return nil, err
		}
		return []mock.DocumentConfig{{DocType: mockDocType, Namespace: mockNamespace, Claims: claims}}, nil
	}
	if mockPID {
		return []mock.DocumentConfig{mock.PIDDocument()}, nil
	}
	// Several documents alternate between the two presets.
	return []mock.DocumentConfig{mock.AVDocument(), mock.PIDDocument()}, nil
}

func runMockRequest(cmd *cobra.Command, args []string) error {
	var query any = dcql.AgeOver18(mock.AVDocType, mock.AVNamespace)
	if mockDCQL != "" {
		data, err := readFlagValue(mockDCQL)
		if err != nil {
			return fmt.Errorf("reading DCQL query: %w", err)
		}
		if !json.Valid([]byte(data)) {
			return fmt.Errorf("--dcql is not valid JSON")
		}
		query = json.RawMessage(data)
	}

	key, err := loadOrGenerateMockKey()
	if err != nil {
		return err
	}

	token, err := mock.GenerateRequestToken(mock.RequestConfig{
		ResponseURI:  mockResponseURI,
		ResponseMode: mockResponseMode,
		DCQLQuery:    query,
		Nonce:        mockNonce,
		State:        mockState,
		Key:          key,
	})
	if err != nil {
		return fmt.Errorf("generating request token: %w", err)
	}

	link := ""
	if mockLink {
		if link, err = openid4.BuildAuthorizationURI(token); err != nil {
			return fmt.Errorf("building deep link: %w", err)
		}
	}

	if jsonOutput {
		out := map[string]any{"token": token}
		if link != "" {
			out["uri"] = link
		}
		output.PrintJSON(out)
		return nil
	}

	fmt.Println(token)
	if link != "" {
		fmt.Println(link)
	}
	return nil
}

func loadOrGenerateMockKey() (*ecdsa.PrivateKey, error) {
	if mockKeyPath != "" {
		key, err := keys.LoadSigningKey(mockKeyPath)
		if err != nil {
			return nil, fmt.Errorf("loading key: %w", err)
		}
		return key, nil
	}

	key, err := mock.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("generating ephemeral key: %w", err)
	}

	jwk, err := json.Marshal(keys.PublicJWK(&key.PublicKey))
	if err != nil {
		return nil, fmt.Errorf("encoding public JWK: %w", err)
	}
	fmt.Fprintln(os.Stderr, "Ephemeral signing key (public JWK):")
	fmt.Fprintln(os.Stderr, string(jwk))
	return key, nil
}

// readFlagValue returns v, or the contents of the file it names when it
// starts with '@'.
func readFlagValue(v string) (string, error) {
	if !strings.HasPrefix(v, "@") {
		return v, nil
	}
	data, err := os.ReadFile(v[1:])
	if err != nil {
		return "", err
	}
	return string(data), nil
}
