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

package format

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
)

// Encoding names the text encoding an attestation blob was transported in.
type Encoding string

const (
	EncodingBase64URL Encoding = "base64url"
	EncodingHex       Encoding = "hex"
)

var (
	base64URLAlphabet = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	urlToStdAlphabet  = strings.NewReplacer("-", "+", "_", "/")
)

// DecodeBase64URL decodes a base64url-encoded string (with or without padding).
func DecodeBase64URL(s string) ([]byte, error) {
	// Try without padding first (most common in JWTs)
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		// Try with padding
		b, err = base64.URLEncoding.DecodeString(s)
	}
	return b, err
}

// DecodeBase64Std decodes a standard base64-encoded string.
func DecodeBase64Std(s string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		b, err = base64.RawStdEncoding.DecodeString(s)
	}
	return b, err
}

// EncodeBase64URL encodes bytes as base64url without padding.
func EncodeBase64URL(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

// TranslateBase64URL rewrites the base64url alphabet to the standard one.
// Padding is left untouched.
func TranslateBase64URL(s string) string {
	return urlToStdAlphabet.Replace(s)
}

// DecodeBase64URLOrHex decodes an attestation blob whose encoding is not
// declared out-of-band.
//
// A string made only of base64url characters is decoded as base64url. Every
// hex string is also valid base64url text, so when s is additionally valid
// hex both candidates are decoded and the one that starts like a CBOR
// container wins; base64url is kept on a tie. Anything else is decoded as hex.
func DecodeBase64URLOrHex(s string) ([]byte, Encoding, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, "", fmt.Errorf("empty input")
	}

	if !base64URLAlphabet.MatchString(s) {
		b, err := hex.DecodeString(s)
		if err != nil {
			return nil, EncodingHex, fmt.Errorf("decoding hex: %w", err)
		}
		return b, EncodingHex, nil
	}

	b64, b64Err := DecodeBase64Std(TranslateBase64URL(s))
	if isHex(s) {
		if hx, err := hex.DecodeString(s); err == nil && len(hx) > 0 && isCBORStart(hx[0]) {
			if b64Err != nil || len(b64) == 0 || !isCBORStart(b64[0]) {
				return hx, EncodingHex, nil
			}
		}
	}
	if b64Err != nil {
		return nil, EncodingBase64URL, fmt.Errorf("decoding base64url: %w", b64Err)
	}
	return b64, EncodingBase64URL, nil
}
