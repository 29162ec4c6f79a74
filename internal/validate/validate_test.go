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

package validate

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkinsky/dag-cache/hash"
	"github.com/pkinsky/dag-cache/internal/dcerr"
	"github.com/pkinsky/dag-cache/internal/nodes"
)

func TestValidateSimpleTree(t *testing.T) {
	entry := nodes.BatchNode{
		Data: []byte("E"),
		Links: []nodes.BatchLink{
			nodes.LocalLink("a"),
			nodes.LocalLink("b"),
		},
	}
	list := []FingerprintedNode{
		{Fingerprint: "a", Node: nodes.BatchNode{Data: []byte("A")}},
		{Fingerprint: "b", Node: nodes.BatchNode{Data: []byte("B")}},
	}

	tree, err := Validate(entry, list)
	require.NoError(t, err)
	assert.Equal(t, entry, tree.Entry)
	assert.Len(t, tree.Nodes, 2)
}

func TestValidateEmptyBatchSingleEntry(t *testing.T) {
	entry := nodes.BatchNode{Data: []byte("only")}
	tree, err := Validate(entry, nil)
	require.NoError(t, err)
	assert.Empty(t, tree.Nodes)
}

func TestValidateRemoteLinksDoNotNeedMapping(t *testing.T) {
	entry := nodes.BatchNode{
		Links: []nodes.BatchLink{
			nodes.RemoteLink(nodes.LinkHeader{Name: "r", Hash: "H1", Size: 1}),
		},
	}
	tree, err := Validate(entry, nil)
	require.NoError(t, err)
	assert.Empty(t, tree.Nodes)
}

func TestValidateDuplicateFingerprint(t *testing.T) {
	entry := nodes.BatchNode{Links: []nodes.BatchLink{nodes.LocalLink("x")}}
	list := []FingerprintedNode{
		{Fingerprint: "x", Node: nodes.BatchNode{}},
		{Fingerprint: "x", Node: nodes.BatchNode{}},
	}
	_, err := Validate(entry, list)
	require.Error(t, err)
	de, ok := dcerr.As(err)
	require.True(t, ok)
	assert.Equal(t, dcerr.BatchInvalid, de.Kind())
	assert.Equal(t, dcerr.DuplicateFingerprint, de.Reason())
}

func TestValidateDanglingLocal(t *testing.T) {
	entry := nodes.BatchNode{Links: []nodes.BatchLink{nodes.LocalLink("missing")}}
	_, err := Validate(entry, nil)
	require.Error(t, err)
	de, ok := dcerr.As(err)
	require.True(t, ok)
	assert.Equal(t, dcerr.DanglingLocal, de.Reason())
}

func TestValidateOrphanNode(t *testing.T) {
	entry := nodes.BatchNode{Data: []byte("E")}
	list := []FingerprintedNode{
		{Fingerprint: "orphan", Node: nodes.BatchNode{Data: []byte("O")}},
	}
	_, err := Validate(entry, list)
	require.Error(t, err)
	de, ok := dcerr.As(err)
	require.True(t, ok)
	assert.Equal(t, dcerr.OrphanNode, de.Reason())
}

func TestValidateSelfCycleNotATree(t *testing.T) {
	entry := nodes.BatchNode{Links: []nodes.BatchLink{nodes.LocalLink("a")}}
	list := []FingerprintedNode{
		{Fingerprint: "a", Node: nodes.BatchNode{Links: []nodes.BatchLink{nodes.LocalLink("a")}}},
	}
	_, err := Validate(entry, list)
	require.Error(t, err)
	de, ok := dcerr.As(err)
	require.True(t, ok)
	assert.Equal(t, dcerr.NotATree, de.Reason())
}

func TestValidateSharedLocalNotATree(t *testing.T) {
	// entry -> a -> shared, entry -> b -> shared: shared is reached by
	// two Local edges, which violates the tree invariant even though
	// there's no cycle.
	entry := nodes.BatchNode{Links: []nodes.BatchLink{nodes.LocalLink("a"), nodes.LocalLink("b")}}
	list := []FingerprintedNode{
		{Fingerprint: "a", Node: nodes.BatchNode{Links: []nodes.BatchLink{nodes.LocalLink("shared")}}},
		{Fingerprint: "b", Node: nodes.BatchNode{Links: []nodes.BatchLink{nodes.LocalLink("shared")}}},
		{Fingerprint: "shared", Node: nodes.BatchNode{Data: []byte("S")}},
	}
	_, err := Validate(entry, list)
	require.Error(t, err)
	de, ok := dcerr.As(err)
	require.True(t, ok)
	assert.Equal(t, dcerr.NotATree, de.Reason())
}

func TestValidateDeepChainNoStackOverflow(t *testing.T) {
	const depth = 10000
	list := make([]FingerprintedNode, 0, depth)
	var entryLink hash.Fingerprint = "n0"
	for i := 0; i < depth; i++ {
		self := hash.Fingerprint(fmt.Sprintf("n%d", i))
		var links []nodes.BatchLink
		if i+1 < depth {
			links = []nodes.BatchLink{nodes.LocalLink(hash.Fingerprint(fmt.Sprintf("n%d", i+1)))}
		}
		list = append(list, FingerprintedNode{Fingerprint: self, Node: nodes.BatchNode{Links: links}})
	}
	entry := nodes.BatchNode{Links: []nodes.BatchLink{nodes.LocalLink(entryLink)}}

	tree, err := Validate(entry, list)
	require.NoError(t, err)
	assert.Len(t, tree.Nodes, depth)
}

func TestValidateWideFanOut(t *testing.T) {
	const width = 1000
	list := make([]FingerprintedNode, 0, width)
	links := make([]nodes.BatchLink, 0, width)
	for i := 0; i < width; i++ {
		f := hash.Fingerprint(fmt.Sprintf("leaf%d", i))
		links = append(links, nodes.LocalLink(f))
		list = append(list, FingerprintedNode{Fingerprint: f, Node: nodes.BatchNode{Data: []byte{byte(i)}}})
	}
	entry := nodes.BatchNode{Links: links}

	tree, err := Validate(entry, list)
	require.NoError(t, err)
	assert.Len(t, tree.Nodes, width)
}
