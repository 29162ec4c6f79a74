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

package cache

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkinsky/dag-cache/hash"
	"github.com/pkinsky/dag-cache/internal/metrics"
	"github.com/pkinsky/dag-cache/internal/nodes"
)

func TestGetAndPut(t *testing.T) {
	c, err := New(10, metrics.Noop())
	require.NoError(t, err)

	_, ok := c.Get(hash.Hash("H1"))
	assert.False(t, ok)

	n := nodes.Node{Data: []byte("hello")}
	c.Put(hash.Hash("H1"), n)

	got, ok := c.Get(hash.Hash("H1"))
	require.True(t, ok)
	assert.True(t, got.Equal(n))
}

func TestRepeatedIdenticalPutIsNoop(t *testing.T) {
	c, err := New(10, metrics.Noop())
	require.NoError(t, err)

	n := nodes.Node{Data: []byte("hello")}
	c.Put(hash.Hash("H1"), n)
	c.Put(hash.Hash("H1"), n)

	got, ok := c.Get(hash.Hash("H1"))
	require.True(t, ok)
	assert.True(t, got.Equal(n))
	assert.Equal(t, 1, c.Len())
}

func TestPutDropsLRU(t *testing.T) {
	c, err := New(2, metrics.Noop())
	require.NoError(t, err)

	c.Put(hash.Hash("H1"), nodes.Node{Data: []byte("1")})
	c.Put(hash.Hash("H2"), nodes.Node{Data: []byte("2")})
	c.Put(hash.Hash("H3"), nodes.Node{Data: []byte("3")})

	_, ok := c.Get(hash.Hash("H1"))
	assert.False(t, ok, "oldest entry should have been evicted")

	_, ok = c.Get(hash.Hash("H2"))
	assert.True(t, ok)
	_, ok = c.Get(hash.Hash("H3"))
	assert.True(t, ok)
}

func TestConcurrentGetPut(t *testing.T) {
	c, err := New(1000, metrics.Noop())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		i := i
		wg.Add(2)
		go func() {
			defer wg.Done()
			h := hash.Hash(string(rune('A' + i%26)))
			c.Put(h, nodes.Node{Data: []byte{byte(i)}})
		}()
		go func() {
			defer wg.Done()
			h := hash.Hash(string(rune('A' + i%26)))
			c.Get(h)
		}()
	}
	wg.Wait()
}
