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

// Package hash defines the identifier types that flow through the cache:
// Hash, the backend's opaque content identifier, and Fingerprint, a
// client-chosen batch-local label. Neither type carries interior
// structure beyond byte equality.
package hash

import (
	"errors"

	base58 "github.com/jbenet/go-base58"
	"github.com/zeebo/blake3"
)

// Hash is a backend-assigned content identifier. It is immutable and
// opaque: equality and use as a map key are its only operations.
// Constructed only from a wire field or a backend response; never
// synthesized anywhere else in the core.
type Hash string

// Empty is the zero value, used as a sentinel "no hash yet" in call
// sites that need one (e.g. an unset root tracker).
const Empty Hash = ""

// IsEmpty reports whether h is the zero Hash.
func (h Hash) IsEmpty() bool { return h == Empty }

// String implements fmt.Stringer so hashes print as their wire form in
// log lines and error messages.
func (h Hash) String() string { return string(h) }

// Parse validates a wire-supplied hash string. Syntactic validity here is
// deliberately shallow (non-empty, printable) — per spec, syntactic
// validity of a wire field is the client's responsibility, not a
// cryptographic check performed by this layer.
func Parse(s string) (Hash, error) {
	if s == "" {
		return Empty, errors.New("hash: empty string")
	}
	for _, r := range s {
		if r < '!' || r > '~' {
			return Empty, errors.New("hash: non-printable character")
		}
	}
	return Hash(s), nil
}

// OfBytes computes the canonical backend hash of a pre-serialized node
// payload. Used by the in-memory backend (internal/backend/memory.go)
// and by tests that need to predict a hash without a live backend. An
// HTTP backend's own returned hash is never recomputed or checked
// against this function — it is accepted verbatim (spec.md §9, Open
// Questions).
func OfBytes(canonical []byte) Hash {
	sum := blake3.Sum256(canonical)
	return Hash(base58.Encode(sum[:]))
}

// Fingerprint is a client-chosen label naming a not-yet-published node
// within one bulk-put batch. It has no meaning outside that batch and is
// never persisted.
type Fingerprint string

// String implements fmt.Stringer.
func (f Fingerprint) String() string { return string(f) }
