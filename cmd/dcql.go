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

	"github.com/dominikschlosser/av-verifier/internal/dcql"
	"github.com/dominikschlosser/av-verifier/internal/format"
	"github.com/dominikschlosser/av-verifier/internal/output"
	"github.com/spf13/cobra"
)

var dcqlCmd = &cobra.Command{
	Use:   "dcql [input]",
	Short: "Generate a DCQL query from an mDOC attestation's attributes",
	Long:  "Generates a DCQL (Digital Credentials Query Language) query requesting every attribute found in an mso_mdoc DeviceResponse, one credential query per attestation.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDCQL,
}

func init() {
	rootCmd.AddCommand(dcqlCmd)
	addScanFlags(dcqlCmd)
}

func runDCQL(cmd *cobra.Command, args []string) error {
	raw, err := readCommandInput(args)
	if err != nil {
		return err
	}

	if format.Detect(raw) != format.FormatMDOC {
		return fmt.Errorf("input is not an mDOC attestation")
	}

	records, err := decodeAttestation(raw)
	if err != nil {
		return err
	}

	// DCQL is a JSON query format, so JSON output is unconditional.
	output.PrintJSON(dcql.FromRecords(records))

	return nil
}
