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
	"fmt"
	"log/slog"

	"github.com/dominikschlosser/av-verifier/internal/openid4"
	"github.com/dominikschlosser/av-verifier/internal/output"
	"github.com/spf13/cobra"
)

var linkCmd = &cobra.Command{
	Use:   "link [token]",
	Short: "Build an av:// wallet deep link from a signed request token",
	Long: `Builds the av:// deep link a wallet opens to answer an age verification
request. The token's payload is read as-is; its signature is not checked.

With -v the fields carried by the link are listed below it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLink,
}

func init() {
	rootCmd.AddCommand(linkCmd)
	addScanFlags(linkCmd)
}

func runLink(cmd *cobra.Command, args []string) error {
	raw, err := readCommandInput(args)
	if err != nil {
		return err
	}

	link, req, err := buildLink(raw)
	if err != nil {
		return err
	}

	output.PrintAuthorizationURI(link, req, outputOptions())
	return nil
}

// buildLink turns a request token into a deep link and reads the link back
// for display.
func buildLink(token string) (string, *openid4.AuthorizationRequest, error) {
	link, err := openid4.BuildAuthorizationURI(token)
	if err != nil {
		return "", nil, fmt.Errorf("building deep link: %w", err)
	}
	slog.Debug("built deep link", "length", len(link))

	req, err := openid4.ParseAuthorizationURI(link)
	if err != nil {
		// Verbatim fields may carry characters the query parser rejects.
		slog.Debug("deep link not parseable", "error", err)
		return link, nil, nil
	}
	return link, req, nil
}
