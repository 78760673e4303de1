// Copyright 2018 SumUp Ltd.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package encryption

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindInvalidInput        Kind = "invalid_input"
	KindKeyNotFound         Kind = "key_not_found"
	KindInvalidKey          Kind = "invalid_key"
	KindPayloadTooLarge     Kind = "payload_too_large"
	KindUpstreamUnavailable Kind = "upstream_unavailable"
)

// Error is the only error type returned by Service.Encrypt.
// Message is safe to show to the caller, Cause is for logs only.
type Error struct {
	Kind    Kind
	Message string
	// MaxPayloadSize is set for KindPayloadTooLarge only.
	MaxPayloadSize int
	Cause          error
}

func newError(kind Kind, message string, cause error) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
		Cause:   cause,
	}
}

func newPayloadTooLargeError(payloadSize, maxPayloadSize int) *Error {
	return &Error{
		Kind: KindPayloadTooLarge,
		Message: fmt.Sprintf(
			"payload is %d bytes, maximum allowed for the registered key is %d bytes",
			payloadSize,
			maxPayloadSize,
		),
		MaxPayloadSize: maxPayloadSize,
	}
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}

	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches by kind, so `errors.Is(err, &Error{Kind: KindKeyNotFound})` works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return e.Kind == t.Kind
}

// KindOf returns the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var encErr *Error
	if errors.As(err, &encErr) {
		return encErr.Kind
	}

	return ""
}
