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

package backend

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/pkinsky/dag-cache/hash"
	"github.com/pkinsky/dag-cache/internal/dcerr"
	"github.com/pkinsky/dag-cache/internal/nodes"
)

// Retrying wraps a Client with exponential-backoff retry of
// BackendTransport failures. Core components (internal/publish,
// internal/read) never retry themselves per spec.md §4.2/§7 — retry is
// explicitly the caller's prerogative, so this decorator lives beside
// the client implementations rather than inside them, and is opt-in at
// wiring time (cmd/dagcached).
type Retrying struct {
	inner Client
	newBO func() backoff.BackOff
}

// NewRetrying wraps inner with retry governed by maxElapsed. A zero
// maxElapsed disables the elapsed-time cap (retries until ctx is done).
func NewRetrying(inner Client, maxElapsed time.Duration) *Retrying {
	return &Retrying{
		inner: inner,
		newBO: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			if maxElapsed > 0 {
				b.MaxElapsedTime = maxElapsed
			} else {
				b.MaxElapsedTime = 0
			}
			return b
		},
	}
}

// Get implements Client, retrying BackendTransport failures only.
// BackendDecode is never retried: a malformed payload will not become
// well-formed on a second attempt.
func (r *Retrying) Get(ctx context.Context, h hash.Hash) (nodes.Node, error) {
	var n nodes.Node
	op := func() error {
		var err error
		n, err = r.inner.Get(ctx, h)
		return classifyForRetry(err)
	}
	if err := backoff.Retry(op, backoff.WithContext(r.newBO(), ctx)); err != nil {
		return nodes.Node{}, unwrapPermanent(err)
	}
	return n, nil
}

// Put implements Client, retrying BackendTransport failures only.
func (r *Retrying) Put(ctx context.Context, n nodes.Node) (hash.Hash, error) {
	var h hash.Hash
	op := func() error {
		var err error
		h, err = r.inner.Put(ctx, n)
		return classifyForRetry(err)
	}
	if err := backoff.Retry(op, backoff.WithContext(r.newBO(), ctx)); err != nil {
		return hash.Empty, unwrapPermanent(err)
	}
	return h, nil
}

func classifyForRetry(err error) error {
	if err == nil {
		return nil
	}
	de, ok := dcerr.As(err)
	if !ok || de.Kind() != dcerr.BackendTransport {
		return backoff.Permanent(err)
	}
	return err
}

func unwrapPermanent(err error) error {
	if pe, ok := err.(*backoff.PermanentError); ok {
		return pe.Err
	}
	return err
}
