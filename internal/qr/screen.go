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

package qr

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// captureCommand returns the command that lets the user select a screen
// region and writes it to path as PNG.
var captureCommand = func(path string) (*exec.Cmd, error) {
	switch runtime.GOOS {
	case "darwin":
		// -i: interactive selection (crosshair)
		return exec.Command("screencapture", "-i", path), nil
	case "linux":
		if _, err := exec.LookPath("gnome-screenshot"); err != nil {
			return nil, fmt.Errorf("--screen needs gnome-screenshot on Linux; use --qr with an image file instead")
		}
		return exec.Command("gnome-screenshot", "-a", "-f", path), nil
	default:
		return nil, fmt.Errorf("--screen is not supported on %s; use --qr with an image file instead", runtime.GOOS)
	}
}

// ScanScreen captures a user-selected screen region and decodes a QR code
// from it, e.g. the code a verifier page shows.
func ScanScreen() (string, error) {
	tmpDir, err := os.MkdirTemp("", "av-verifier-qr-*")
	if err != nil {
		return "", fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	tmpFile := filepath.Join(tmpDir, "capture.png")

	cmd, err := captureCommand(tmpFile)
	if err != nil {
		return "", err
	}

	var stderr bytes.Buffer
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		errMsg := strings.TrimSpace(stderr.String())
		if runtime.GOOS == "darwin" && (strings.Contains(errMsg, "cannot capture") || strings.Contains(errMsg, "image from rect")) {
			_ = exec.Command("open", "x-apple.systempreferences:com.apple.preference.security?Privacy_ScreenCapture").Run()
			return "", fmt.Errorf("screen recording permission denied\n\nSystem Settings has been opened to the Screen Recording pane.\nGrant access to your terminal app, then re-run the command.")
		}
		return "", fmt.Errorf("screen capture failed: %s", errMsg)
	}

	// Escape cancels the selection and leaves no file behind.
	if _, err := os.Stat(tmpFile); err != nil {
		return "", fmt.Errorf("screen capture cancelled")
	}

	return ScanFile(tmpFile)
}
