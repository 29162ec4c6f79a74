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

// Package validate implements C4: turning a wire-format bulk-put batch
// into a reachability-checked ValidatedTree, or rejecting it with one of
// the four BatchInvalid reasons.
package validate

import (
	"github.com/pkinsky/dag-cache/hash"
	"github.com/pkinsky/dag-cache/internal/dcerr"
	"github.com/pkinsky/dag-cache/internal/nodes"
)

// FingerprintedNode pairs a client fingerprint with the BatchNode it
// names, as carried in a bulk-put request's node list.
type FingerprintedNode struct {
	Fingerprint hash.Fingerprint
	Node        nodes.BatchNode
}

// walkState is which stage of the single-visit discipline a fingerprint
// is in: never seen, currently on the DFS stack (visiting), or fully
// resolved (visited). A Local edge into a "visiting" fingerprint is a
// cycle; a mapping entry that never becomes "visited" is an orphan.
type walkState int

const (
	unseen walkState = iota
	visiting
	visited
)

// Validate builds a ValidatedTree from entry and nodeList, per spec.md
// §4.3. Complexity is O(total nodes + total links): one pass builds the
// fingerprint map, one iterative DFS (an explicit stack, not recursion —
// the input is attacker-controlled before it's known to be a tree, so
// validation itself must not be vulnerable to unbounded recursion depth)
// walks every Local edge exactly once.
func Validate(entry nodes.BatchNode, nodeList []FingerprintedNode) (nodes.ValidatedTree, error) {
	byFingerprint := make(map[hash.Fingerprint]nodes.BatchNode, len(nodeList))
	for _, fn := range nodeList {
		if _, dup := byFingerprint[fn.Fingerprint]; dup {
			return nodes.ValidatedTree{}, dcerr.Invalid(dcerr.DuplicateFingerprint,
				"fingerprint appears more than once in batch: "+fn.Fingerprint.String())
		}
		byFingerprint[fn.Fingerprint] = fn.Node
	}

	state := make(map[hash.Fingerprint]walkState, len(byFingerprint))

	type frame struct {
		node     nodes.BatchNode
		childIdx int
		self     hash.Fingerprint // Empty for the entry frame
		hasSelf  bool
	}

	stack := []frame{{node: entry}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.childIdx >= len(top.node.Links) {
			if top.hasSelf {
				state[top.self] = visited
			}
			stack = stack[:len(stack)-1]
			continue
		}
		link := top.node.Links[top.childIdx]
		top.childIdx++
		if link.Kind != nodes.Local {
			continue
		}
		f := link.Fingerprint
		switch state[f] {
		case visiting:
			return nodes.ValidatedTree{}, dcerr.Invalid(dcerr.NotATree,
				"fingerprint reached twice (cycle or shared local node): "+f.String())
		case visited:
			return nodes.ValidatedTree{}, dcerr.Invalid(dcerr.NotATree,
				"fingerprint reached by more than one local edge: "+f.String())
		}
		child, ok := byFingerprint[f]
		if !ok {
			return nodes.ValidatedTree{}, dcerr.Invalid(dcerr.DanglingLocal,
				"local link names unknown fingerprint: "+f.String())
		}
		state[f] = visiting
		stack = append(stack, frame{node: child, self: f, hasSelf: true})
	}

	for f := range byFingerprint {
		if state[f] != visited {
			return nodes.ValidatedTree{}, dcerr.Invalid(dcerr.OrphanNode,
				"fingerprint in batch but not reachable from entry: "+f.String())
		}
	}

	return nodes.ValidatedTree{Entry: entry, Nodes: byFingerprint}, nil
}
