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

package openid4

import "fmt"

// Reason tells why a request token was rejected.
type Reason string

const (
	ReasonEmpty             Reason = "EMPTY"
	ReasonWrongSegmentCount Reason = "WRONG_SEGMENT_COUNT"
	ReasonMalformedPayload  Reason = "MALFORMED_PAYLOAD"
)

// Sentinels for errors.Is; matching compares reasons only.
var (
	ErrEmptyToken        = &InvalidTokenError{Reason: ReasonEmpty}
	ErrWrongSegmentCount = &InvalidTokenError{Reason: ReasonWrongSegmentCount}
	ErrMalformedPayload  = &InvalidTokenError{Reason: ReasonMalformedPayload}
)

// InvalidTokenError reports a request token that cannot be turned into a
// deep link.
type InvalidTokenError struct {
	Reason Reason
	Err    error
}

func (e *InvalidTokenError) Error() string {
	var msg string
	switch e.Reason {
	case ReasonEmpty:
		msg = "invalid token: empty"
	case ReasonWrongSegmentCount:
		msg = "invalid token: expected 3 segments separated by '.'"
	case ReasonMalformedPayload:
		msg = "invalid token: malformed payload"
	default:
		msg = "invalid token"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *InvalidTokenError) Unwrap() error { return e.Err }

func (e *InvalidTokenError) Is(target error) bool {
	t, ok := target.(*InvalidTokenError)
	return ok && t.Reason == e.Reason
}

func invalidToken(reason Reason, err error) error {
	return &InvalidTokenError{Reason: reason, Err: err}
}
