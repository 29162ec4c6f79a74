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

// Package cache implements C2: a bounded concurrent mapping from
// backend hash to decoded node, consulted by both the publish and read
// paths and populated on every successful backend round trip.
package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/pkinsky/dag-cache/hash"
	"github.com/pkinsky/dag-cache/internal/metrics"
	"github.com/pkinsky/dag-cache/internal/nodes"
)

// Cache is a bounded hash.Hash -> nodes.Node map, safe for concurrent
// use by many readers and writers. Entries are immutable once inserted
// (content addressing guarantees a hash never maps to two different
// byte sequences); a later Put for a key already present is a harmless
// no-op overwrite with an identical value.
//
// Eviction: least-recently-used, via hashicorp/golang-lru/v2. All
// entries are interchangeable cache copies of immutable backend state,
// so any eviction strategy is correctness-preserving (spec.md §4.1); LRU
// is chosen because it is what the teacher's own nbs.manifestCache uses
// for the structurally identical problem of caching immutable remote
// state under a capacity bound.
type Cache struct {
	inner *lru.Cache[hash.Hash, nodes.Node]
	m     *metrics.Metrics
}

// New builds a Cache holding at most capacity entries.
func New(capacity int, m *metrics.Metrics) (*Cache, error) {
	c := &Cache{m: m}
	inner, err := lru.NewWithEvict[hash.Hash, nodes.Node](capacity, func(hash.Hash, nodes.Node) {
		m.CacheEvictions.Inc()
	})
	if err != nil {
		return nil, err
	}
	c.inner = inner
	return c, nil
}

// Get returns the cached node for h, if present. Never suspends beyond
// the critical section needed to consult the backing LRU.
func (c *Cache) Get(h hash.Hash) (nodes.Node, bool) {
	n, ok := c.inner.Get(h)
	if ok {
		c.m.CacheHits.Inc()
	} else {
		c.m.CacheMisses.Inc()
	}
	return n, ok
}

// Peek is like Get but does not count toward the LRU's recency order or
// hit/miss metrics; used internally by the frontier walk (internal/read)
// which performs many speculative lookups that shouldn't perturb
// eviction order for entries it ultimately doesn't attach to a response.
func (c *Cache) Peek(h hash.Hash) (nodes.Node, bool) {
	return c.inner.Peek(h)
}

// Put inserts n under h. A subsequent Get for h observes at least this
// value. Total: never returns an error, never blocks a reader longer
// than the time to splice one entry into the LRU.
func (c *Cache) Put(h hash.Hash, n nodes.Node) {
	c.inner.Add(h, n)
}

// Len reports the number of entries currently cached.
func (c *Cache) Len() int { return c.inner.Len() }
