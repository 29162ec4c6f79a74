// Copyright 2026 The dag-cache Authors.
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

// Package dcerr defines the closed set of error kinds that flow out of
// the core (spec.md §7) and a typed Error wrapping an underlying cause
// without losing it to a flattened string, the way the teacher's
// libraries/errhand wraps causes for its own CLI error reporting.
package dcerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind is one of the six error variants the spec names. It is a closed
// enumeration: callers switch on it, never on error text.
type Kind int

const (
	// BackendTransport is a network/protocol failure talking to the
	// backend.
	BackendTransport Kind = iota
	// BackendDecode is a malformed payload returned by the backend.
	BackendDecode
	// BatchInvalid is a batch validator rejection; see Reason.
	BatchInvalid
	// WireDecode is a malformed inbound request.
	WireDecode
	// Cancelled is a publish child-channel that closed without a value.
	Cancelled
	// Unexpected is a catch-all for programmer-error invariants.
	Unexpected
)

func (k Kind) String() string {
	switch k {
	case BackendTransport:
		return "BackendTransport"
	case BackendDecode:
		return "BackendDecode"
	case BatchInvalid:
		return "BatchInvalid"
	case WireDecode:
		return "WireDecode"
	case Cancelled:
		return "Cancelled"
	case Unexpected:
		return "Unexpected"
	default:
		return "Unknown"
	}
}

// Reason further classifies a BatchInvalid error, matching the four
// validator rejections of spec.md §4.3.
type Reason int

const (
	// NoReason is used for non-BatchInvalid errors.
	NoReason Reason = iota
	DuplicateFingerprint
	DanglingLocal
	NotATree
	OrphanNode
)

func (r Reason) String() string {
	switch r {
	case DuplicateFingerprint:
		return "DuplicateFingerprint"
	case DanglingLocal:
		return "DanglingLocal"
	case NotATree:
		return "NotATree"
	case OrphanNode:
		return "OrphanNode"
	default:
		return "NoReason"
	}
}

// Error is the single error type returned from every core package. It
// carries a Kind (and, for BatchInvalid, a Reason), plus the wrapped
// cause so stack context reaches the log line without leaking into the
// wire response.
type Error struct {
	kind   Kind
	reason Reason
	msg    string
	cause  error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.kind, e.msg, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.kind, e.msg)
}

// Unwrap exposes the wrapped cause to errors.Is/errors.As.
func (e *Error) Unwrap() error { return e.cause }

// Kind returns the error's kind.
func (e *Error) Kind() Kind { return e.kind }

// Reason returns the error's reason, meaningful only when Kind() ==
// BatchInvalid.
func (e *Error) Reason() Reason { return e.reason }

// New builds an Error of the given kind with no wrapped cause.
func New(kind Kind, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

// Wrap builds an Error of the given kind around cause, preserving
// cause's stack trace via github.com/pkg/errors.
func Wrap(kind Kind, cause error, msg string) *Error {
	return &Error{kind: kind, msg: msg, cause: errors.Wrap(cause, msg)}
}

// Invalid builds a BatchInvalid error with the given Reason.
func Invalid(reason Reason, msg string) *Error {
	return &Error{kind: BatchInvalid, reason: reason, msg: msg}
}

// As reports whether err is a *Error (or wraps one), returning it.
func As(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
