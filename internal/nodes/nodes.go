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

// Package nodes holds the wire and in-memory value types of the DAG: the
// published Node/LinkHeader pair and the batch-local BatchNode/BatchLink
// union used before a node has a backend hash.
package nodes

import (
	"encoding/binary"

	"github.com/pkinsky/dag-cache/hash"
)

// LinkHeader names one edge out of a published Node: the child's backend
// hash, the name it was published under (for a bulk-put child, its
// client fingerprint as a printable string; for a single put, whatever
// the caller supplied), and an advisory size in bytes.
type LinkHeader struct {
	Name string
	Hash hash.Hash
	Size uint64
}

// Node is the published, backend-addressable unit: opaque data plus an
// ordered list of links. Link order is part of a Node's identity and
// must survive put/get round-trips bit for bit.
type Node struct {
	Data  []byte
	Links []LinkHeader
}

// Equal reports whether two nodes have identical data and link order.
// Used by tests checking the round-trip law get(put(N)) == N.
func (n Node) Equal(o Node) bool {
	if len(n.Data) != len(o.Data) || len(n.Links) != len(o.Links) {
		return false
	}
	for i := range n.Data {
		if n.Data[i] != o.Data[i] {
			return false
		}
	}
	for i := range n.Links {
		if n.Links[i] != o.Links[i] {
			return false
		}
	}
	return true
}

// CumulativeSize reports len(Data) plus the sum of this node's links'
// sizes, i.e. the size a freshly published parent would report (spec.md
// §4.4). It does not re-derive a backend-reported size, which is passed
// through verbatim instead.
func (n Node) CumulativeSize() uint64 {
	size := uint64(len(n.Data))
	for _, l := range n.Links {
		size += l.Size
	}
	return size
}

// Canonical produces the byte serialization that hash.OfBytes digests
// for the in-memory backend. Order-preserving and unambiguous: every
// field is length-prefixed so no value can straddle a boundary and
// collide with a different node's serialization.
func (n Node) Canonical() []byte {
	buf := make([]byte, 0, len(n.Data)+32*len(n.Links))
	buf = appendUvarintBytes(buf, n.Data)
	var lenBuf [8]byte
	binary.BigEndian.PutUint64(lenBuf[:], uint64(len(n.Links)))
	buf = append(buf, lenBuf[:]...)
	for _, l := range n.Links {
		buf = appendUvarintBytes(buf, []byte(l.Name))
		buf = appendUvarintBytes(buf, []byte(l.Hash))
		binary.BigEndian.PutUint64(lenBuf[:], l.Size)
		buf = append(buf, lenBuf[:]...)
	}
	return buf
}

func appendUvarintBytes(buf []byte, b []byte) []byte {
	var lenBuf [8]byte
	binary.BigEndian.PutUint64(lenBuf[:], uint64(len(b)))
	buf = append(buf, lenBuf[:]...)
	return append(buf, b...)
}

// BatchLinkKind distinguishes the two ways a BatchLink can name its
// target: a same-batch fingerprint not yet published, or an
// already-published remote hash.
type BatchLinkKind int

const (
	// Local refers to another node in the same bulk-put batch by the
	// client's chosen fingerprint.
	Local BatchLinkKind = iota
	// Remote refers to a node already present in the backend.
	Remote
)

// BatchLink is the wire-only tagged union inside a bulk-put request's
// node: either Local(Fingerprint) or Remote(LinkHeader).
type BatchLink struct {
	Kind        BatchLinkKind
	Fingerprint hash.Fingerprint // valid when Kind == Local
	Remote      LinkHeader       // valid when Kind == Remote; Name is honored as-is
}

// LocalLink builds a BatchLink referring to another node in the same
// batch.
func LocalLink(f hash.Fingerprint) BatchLink {
	return BatchLink{Kind: Local, Fingerprint: f}
}

// RemoteLink builds a BatchLink referring to an already-published node.
func RemoteLink(h LinkHeader) BatchLink {
	return BatchLink{Kind: Remote, Remote: h}
}

// BatchNode is a wire-only node whose links may still be unresolved
// client fingerprints.
type BatchNode struct {
	Data  []byte
	Links []BatchLink
}

// ValidatedTree is the output of the batch validator (internal/validate):
// an entry node plus the reachability-checked mapping from fingerprint to
// BatchNode that the entry (transitively, via Local links) reaches.
type ValidatedTree struct {
	Entry BatchNode
	Nodes map[hash.Fingerprint]BatchNode
}
