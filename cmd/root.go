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
	"log/slog"
	"os"

	"github.com/dominikschlosser/av-verifier/internal/output"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	jsonOutput bool
	noColor    bool
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "av-verifier",
	Short: "Decode mDOC age verification attestations and build wallet deep links",
	Long:  "A local-first CLI for age verification flows. Decodes mso_mdoc DeviceResponses into display-ready attributes, turns signed OpenID4VP request tokens into av:// wallet deep links, and generates mock fixtures for both.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor {
			color.NoColor = true
		}
		setupLogging(verbose)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
}

// setupLogging routes diagnostics to stderr so stdout stays parseable.
// Log lines carry sizes and counts, never attestation or token content.
func setupLogging(verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}

func outputOptions() output.Options {
	return output.Options{
		JSON:    jsonOutput,
		Verbose: verbose,
	}
}

func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		output.PrintError(err.Error())
		return err
	}
	return nil
}
