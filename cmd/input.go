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
	"github.com/dominikschlosser/av-verifier/internal/qr"
	"github.com/spf13/cobra"
)

var (
	qrImage  string
	qrScreen bool
)

func addScanFlags(c *cobra.Command) {
	c.Flags().StringVar(&qrImage, "qr", "", "Read the input from a QR code image (PNG or JPEG)")
	c.Flags().BoolVar(&qrScreen, "screen", false, "Select a screen region and read the QR code in it")
}

// readCommandInput resolves the positional argument or a scanned QR code to
// the raw input text.
func readCommandInput(args []string) (string, error) {
	input := ""
	if len(args) > 0 {
		input = args[0]
	}

	sources := 0
	for _, set := range []bool{input != "", qrImage != "", qrScreen} {
		if set {
			sources++
		}
	}
	if sources > 1 {
		return "", fmt.Errorf("pass only one of: input argument, --qr, --screen")
	}

	var (
		raw string
		err error
	)
	switch {
	case qrImage != "":
		raw, err = qr.ScanFile(qrImage)
	case qrScreen:
		raw, err = qr.ScanScreen()
	default:
		raw, err = format.ReadInput(input)
	}
	if err != nil {
		return "", err
	}

	slog.Debug("read input", "bytes", len(raw), "detected", format.Detect(raw))
	return raw, nil
}
