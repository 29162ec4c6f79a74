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
	"sync"

	"github.com/pkinsky/dag-cache/hash"
	"github.com/pkinsky/dag-cache/internal/dcerr"
	"github.com/pkinsky/dag-cache/internal/nodes"
)

// Memory is an in-process content-addressed object store, standing in
// for the real backend in tests. It computes hashes with hash.OfBytes, exactly as a real backend
// would, so callers exercise the same hashing path they would against a
// live service.
type Memory struct {
	mu    sync.RWMutex
	store map[hash.Hash]nodes.Node
}

// NewMemory builds an empty Memory backend.
func NewMemory() *Memory {
	return &Memory{store: make(map[hash.Hash]nodes.Node)}
}

// Get implements Client.
func (m *Memory) Get(ctx context.Context, h hash.Hash) (nodes.Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.store[h]
	if !ok {
		return nodes.Node{}, dcerr.New(dcerr.BackendTransport, "memory backend: no such hash "+h.String())
	}
	return n, nil
}

// Put implements Client.
func (m *Memory) Put(ctx context.Context, n nodes.Node) (hash.Hash, error) {
	h := hash.OfBytes(n.Canonical())
	m.mu.Lock()
	m.store[h] = n
	m.mu.Unlock()
	return h, nil
}

// Len reports how many nodes have been published to this backend. Test
// helper only.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.store)
}
