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

package mdoc

import "fmt"

type ErrorCode string

const (
	CodeMalformedInput ErrorCode = "MALFORMED_INPUT"
	CodeMissingField   ErrorCode = "MISSING_FIELD"
)

// Sentinels for errors.Is; matching compares codes only.
var (
	ErrMalformedInput = &DecodeError{Code: CodeMalformedInput}
	ErrMissingField   = &DecodeError{Code: CodeMissingField}
)

// DecodeError reports why an attestation could not be decoded. Field holds
// the dotted path of a missing field.
type DecodeError struct {
	Code  ErrorCode
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	msg := "malformed input"
	if e.Code == CodeMissingField {
		msg = "missing field"
		if e.Field != "" {
			msg += " " + e.Field
		}
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Is(target error) bool {
	t, ok := target.(*DecodeError)
	return ok && t.Code == e.Code
}

func missingField(path string) error {
	return &DecodeError{Code: CodeMissingField, Field: path}
}

func malformedInput(err error) error {
	return &DecodeError{Code: CodeMalformedInput, Err: err}
}
