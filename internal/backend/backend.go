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

// Package backend implements C3: the two-operation contract to the
// remote content-addressed object store. Implementations never consult
// the node cache themselves — that's the caller's job (internal/read,
// internal/publish) — and never retry internally (spec.md §4.2, §7).
package backend

import (
	"context"

	"github.com/pkinsky/dag-cache/hash"
	"github.com/pkinsky/dag-cache/internal/nodes"
)

// Client is the backend object store contract. Get and Put are the only
// suspension points a caller needs to budget for besides cache
// acquisition (spec.md §5). Implementations are expected to be stateless
// per call and safe for concurrent use.
type Client interface {
	// Get retrieves one node by its backend hash. Returns a
	// *dcerr.Error of kind BackendTransport or BackendDecode on
	// failure.
	Get(ctx context.Context, h hash.Hash) (nodes.Node, error)

	// Put submits one node and returns the hash the backend assigned
	// it. Returns a *dcerr.Error of kind BackendTransport or
	// BackendDecode on failure.
	Put(ctx context.Context, n nodes.Node) (hash.Hash, error)
}
