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

package cmd

import (
	"fmt"
	"log/slog"

	"github.com/dominikschlosser/av-verifier/internal/format"
	"github.com/dominikschlosser/av-verifier/internal/mdoc"
	"github.com/dominikschlosser/av-verifier/internal/openid4"
	"github.com/dominikschlosser/av-verifier/internal/output"
	"github.com/spf13/cobra"
)

var decodeCmd = &cobra.Command{
	Use:   "decode [input]",
	Short: "Auto-detect and decode an mDOC attestation, request token, or av:// link",
	Long: `Decodes the input, auto-detecting what it is:

  - mso_mdoc DeviceResponse (hex or base64url): one section per attestation
  - signed request token (three dot-separated segments): the av:// deep link
  - av:// deep link: the authorization request fields it carries

Input can be a file path, URL, raw string, a QR code image (--qr), a screen
region (--screen), or piped via stdin.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDecode,
}

func init() {
	rootCmd.AddCommand(decodeCmd)
	addScanFlags(decodeCmd)
}

func runDecode(cmd *cobra.Command, args []string) error {
	raw, err := readCommandInput(args)
	if err != nil {
		return err
	}

	opts := outputOptions()

	switch format.Detect(raw) {
	case format.FormatMDOC:
		records, err := decodeAttestation(raw)
		if err != nil {
			return err
		}
		output.PrintAttestations(records, opts)

	case format.FormatRequestToken:
		link, req, err := buildLink(raw)
		if err != nil {
			return err
		}
		output.PrintAuthorizationURI(link, req, opts)

	case format.FormatDeepLink:
		req, err := openid4.ParseAuthorizationURI(raw)
		if err != nil {
			return fmt.Errorf("parsing deep link: %w", err)
		}
		output.PrintAuthorizationRequest(req, opts)

	default:
		return fmt.Errorf("unable to auto-detect input (not an mDOC attestation, request token, or %s:// link)", format.DeepLinkScheme)
	}

	return nil
}

func decodeAttestation(raw string) ([]mdoc.AttestationRecord, error) {
	records, err := mdoc.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("decoding attestation: %w", err)
	}

	attrs := 0
	for _, rec := range records {
		attrs += len(rec.Attributes)
	}
	slog.Debug("decoded attestation", "documents", len(records), "attributes", attrs)
	return records, nil
}
