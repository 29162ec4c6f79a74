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

package read

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkinsky/dag-cache/hash"
	"github.com/pkinsky/dag-cache/internal/backend"
	"github.com/pkinsky/dag-cache/internal/cache"
	"github.com/pkinsky/dag-cache/internal/metrics"
	"github.com/pkinsky/dag-cache/internal/nodes"
)

func setup(t *testing.T) (*Reader, *cache.Cache, *countingBackend) {
	t.Helper()
	c, err := cache.New(100, metrics.Noop())
	require.NoError(t, err)
	cb := &countingBackend{inner: backend.NewMemory()}
	return New(c, cb, 0, metrics.Noop()), c, cb
}

type countingBackend struct {
	inner *backend.Memory
	gets  int
}

func (c *countingBackend) Get(ctx context.Context, h hash.Hash) (nodes.Node, error) {
	c.gets++
	return c.inner.Get(ctx, h)
}

func (c *countingBackend) Put(ctx context.Context, n nodes.Node) (hash.Hash, error) {
	return c.inner.Put(ctx, n)
}

func TestGetCacheHitNoBackendCall(t *testing.T) {
	r, c, cb := setup(t)
	n := nodes.Node{Data: []byte("hello")}
	c.Put(hash.Hash("H1"), n)

	resp, err := r.Get(context.Background(), hash.Hash("H1"))
	require.NoError(t, err)
	assert.True(t, resp.Requested.Equal(n))
	assert.Equal(t, 0, resp.ExtraCount)
	assert.Equal(t, 0, cb.gets)
}

func TestGetCacheMissFetchesAndPopulates(t *testing.T) {
	r, c, cb := setup(t)
	n := nodes.Node{Data: []byte("hello")}
	h, err := cb.Put(context.Background(), n)
	require.NoError(t, err)

	resp, err := r.Get(context.Background(), h)
	require.NoError(t, err)
	assert.True(t, resp.Requested.Equal(n))
	assert.Equal(t, 1, cb.gets)

	got, ok := c.Get(h)
	require.True(t, ok)
	assert.True(t, got.Equal(n))
}

func TestGetExpandsCachedDescendantsBFS(t *testing.T) {
	r, c, _ := setup(t)

	leafA := nodes.Node{Data: []byte("A")}
	leafB := nodes.Node{Data: []byte("B")}
	c.Put(hash.Hash("Ha"), leafA)
	c.Put(hash.Hash("Hb"), leafB)

	root := nodes.Node{
		Data: []byte("root"),
		Links: []nodes.LinkHeader{
			{Name: "a", Hash: "Ha", Size: 1},
			{Name: "b", Hash: "Hb", Size: 1},
		},
	}
	c.Put(hash.Hash("Hroot"), root)

	resp, err := r.Get(context.Background(), hash.Hash("Hroot"))
	require.NoError(t, err)
	require.Equal(t, 2, resp.ExtraCount)
	assert.Equal(t, resp.ExtraCount, len(resp.Extra))
	assert.Equal(t, hash.Hash("Ha"), resp.Extra[0].Link.Hash)
	assert.Equal(t, hash.Hash("Hb"), resp.Extra[1].Link.Hash)
	for _, ln := range resp.Extra {
		assert.Equal(t, ln.Link.Hash, hashOf(t, c, ln.Link.Hash))
	}
}

func TestGetSkipsUncachedDescendantsWithoutBackendCall(t *testing.T) {
	r, _, cb := setup(t)

	ctx := context.Background()
	hLeaf, err := cb.Put(ctx, nodes.Node{Data: []byte("leaf")})
	require.NoError(t, err)
	root := nodes.Node{Links: []nodes.LinkHeader{{Name: "x", Hash: hLeaf, Size: 4}}}
	hRoot, err := cb.Put(ctx, root)
	require.NoError(t, err)

	cb.gets = 0
	resp, err := r.Get(ctx, hRoot)
	require.NoError(t, err)
	assert.Equal(t, 1, cb.gets, "only the requested node should trigger a backend get")
	assert.Equal(t, 0, resp.ExtraCount, "uncached descendant must be skipped, not fetched")
}

func TestGetRespectsFrontierLimit(t *testing.T) {
	c, err := cache.New(1000, metrics.Noop())
	require.NoError(t, err)
	cb := &countingBackend{inner: backend.NewMemory()}
	r := New(c, cb, 1, metrics.Noop())

	c.Put(hash.Hash("Ha"), nodes.Node{Data: []byte("A")})
	c.Put(hash.Hash("Hb"), nodes.Node{Data: []byte("B")})
	root := nodes.Node{Links: []nodes.LinkHeader{
		{Name: "a", Hash: "Ha"}, {Name: "b", Hash: "Hb"},
	}}
	c.Put(hash.Hash("Hroot"), root)

	resp, err := r.Get(context.Background(), hash.Hash("Hroot"))
	require.NoError(t, err)
	assert.Equal(t, 1, resp.ExtraCount)
}

func hashOf(t *testing.T, c *cache.Cache, h hash.Hash) hash.Hash {
	t.Helper()
	_, ok := c.Get(h)
	require.True(t, ok)
	return h
}
