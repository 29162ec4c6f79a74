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

// Package read implements C6: a single node fetch followed by
// breadth-first frontier expansion over whatever descendants already
// happen to be in the local cache. This is the value the cache adds
// over calling the backend directly — a get returns as much of the
// locally-known subtree as the frontier limit allows, in one response.
//
// Grounded on original_source/server/src/api.rs's `extend` function: a
// VecDeque frontier seeded with the requested node's links, popped from
// the front, pushed to the back on a cache hit, silently dropped on a
// miss (this path never calls the backend speculatively).
package read

import (
	"context"

	"github.com/pkinsky/dag-cache/hash"
	"github.com/pkinsky/dag-cache/internal/backend"
	"github.com/pkinsky/dag-cache/internal/cache"
	"github.com/pkinsky/dag-cache/internal/dcerr"
	"github.com/pkinsky/dag-cache/internal/metrics"
	"github.com/pkinsky/dag-cache/internal/nodes"
)

// DefaultFrontierLimit bounds how many descendants one get response will
// carry, per the Open Question in spec.md §9 ("the bound on extra_nodes
// is not fixed by the source; implementations should enforce a
// configurable limit"). New uses it when given a non-positive limit;
// callers (and tests) override it by passing their own limit to New.
const DefaultFrontierLimit = 1024

// LinkedNode pairs a link header with the node it points to, the shape
// of one entry in a get response's extra_nodes list.
type LinkedNode struct {
	Link nodes.LinkHeader
	Node nodes.Node
}

// Response is the result of a Get call: the requested node plus as many
// cached descendants as the frontier limit allowed.
type Response struct {
	Requested  nodes.Node
	ExtraCount int
	Extra      []LinkedNode
}

// Reader implements C6.
type Reader struct {
	cache   *cache.Cache
	backend backend.Client
	limit   int
	metrics *metrics.Metrics
}

// New builds a Reader. limit <= 0 falls back to DefaultFrontierLimit.
func New(c *cache.Cache, b backend.Client, limit int, m *metrics.Metrics) *Reader {
	if limit <= 0 {
		limit = DefaultFrontierLimit
	}
	return &Reader{cache: c, backend: b, limit: limit, metrics: m}
}

// Get retrieves h, consulting the cache first and falling back to the
// backend on a miss (populating the cache on the way back), then
// expands the frontier of h's links breadth-first over the cache only —
// a miss during expansion is silently skipped, never a backend call.
func (r *Reader) Get(ctx context.Context, h hash.Hash) (Response, error) {
	requested, ok := r.cache.Get(h)
	if !ok {
		var err error
		requested, err = r.backend.Get(ctx, h)
		if err != nil {
			if r.metrics != nil {
				if de, ok := dcerr.As(err); ok {
					r.metrics.BackendErrors.WithLabelValues(de.Kind().String()).Inc()
				}
			}
			return Response{}, err
		}
		r.cache.Put(h, requested)
		if r.metrics != nil {
			r.metrics.BackendGets.Inc()
		}
	}

	extra := r.expand(requested)
	return Response{
		Requested:  requested,
		ExtraCount: len(extra),
		Extra:      extra,
	}, nil
}

// expand performs the breadth-first walk. The frontier does not
// deduplicate: the same hash reached via two different parents is
// re-included both times (spec.md §4.5 explicitly permits either
// behavior; this implementation takes the simpler one).
func (r *Reader) expand(requested nodes.Node) []LinkedNode {
	frontier := make([]nodes.LinkHeader, len(requested.Links))
	copy(frontier, requested.Links)

	var extra []LinkedNode
	for len(frontier) > 0 && len(extra) < r.limit {
		link := frontier[0]
		frontier = frontier[1:]

		n, ok := r.cache.Peek(link.Hash)
		if !ok {
			continue
		}
		extra = append(extra, LinkedNode{Link: link, Node: n})
		frontier = append(frontier, n.Links...)
	}
	return extra
}
