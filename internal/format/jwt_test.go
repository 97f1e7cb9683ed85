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

import "testing"

func TestDecodeJWTPayload(t *testing.T) {
	payload, err := DecodeJWTPayload("eyJhbGciOiJFUzI1NiJ9.eyJyZXNwb25zZV90eXBlIjoidnBfdG9rZW4ifQ.c2ln")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload["response_type"] != "vp_token" {
		t.Errorf("response_type = %v, want vp_token", payload["response_type"])
	}
}

func TestDecodeJWTPayload_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"two parts", "a.b"},
		{"four parts", "a.b.c.d"},
		{"bad base64", "a.!!!.c"},
		{"not json", "a.aGVsbG8.c"},
		{"json null", "a.bnVsbA.c"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeJWTPayload(tt.input); err == nil {
				t.Errorf("DecodeJWTPayload(%q) expected error", tt.input)
			}
		})
	}
}
