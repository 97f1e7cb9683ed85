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
	"strings"
)

type InputFormat string

const (
	FormatMDOC         InputFormat = "mso_mdoc"
	FormatRequestToken InputFormat = "request_token"
	FormatDeepLink     InputFormat = "av_link"
	FormatUnknown      InputFormat = "unknown"
)

// DeepLinkScheme is the custom URI scheme wallets register for
// authorization requests.
const DeepLinkScheme = "av"

// Detect auto-detects what kind of input the user handed us.
//
// Detection order:
//  1. av:// deep link
//  2. request token (3 dot-separated parts whose payload is a JSON object)
//  3. mDOC (hex/base64url CBOR)
func Detect(input string) InputFormat {
	input = strings.TrimSpace(input)
	if input == "" {
		return FormatUnknown
	}

	if strings.HasPrefix(strings.ToLower(input), DeepLinkScheme+"://") {
		return FormatDeepLink
	}

	// '.' is outside both the base64url and the hex alphabet, so a dotted
	// input is never an attestation blob.
	if strings.Contains(input, ".") {
		if _, err := DecodeJWTPayload(input); err == nil {
			return FormatRequestToken
		}
		return FormatUnknown
	}

	b, _, err := DecodeBase64URLOrHex(input)
	if err == nil && len(b) > 0 && isCBORStart(b[0]) {
		return FormatMDOC
	}

	return FormatUnknown
}

func isHex(s string) bool {
	if len(s) < 2 || len(s)%2 != 0 {
		return false
	}
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}

// isCBORStart checks if a byte looks like a CBOR map or tag start.
// CBOR maps start with 0xa0-0xbf (major type 5), or tagged with 0xd8 (tag).
func isCBORStart(b byte) bool {
	major := b >> 5
	return major == 5 || // map
		major == 6 || // tag (e.g. tag 24)
		major == 4 // array (DeviceResponse is an array sometimes)
}
