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

package httpapi

import (
	"github.com/pkinsky/dag-cache/hash"
	"github.com/pkinsky/dag-cache/internal/dcerr"
	"github.com/pkinsky/dag-cache/internal/nodes"
	"github.com/pkinsky/dag-cache/internal/publish"
	"github.com/pkinsky/dag-cache/internal/read"
	"github.com/pkinsky/dag-cache/internal/validate"
)

// This file implements the reference encoding of SPEC_FULL.md §6.1: a
// JSON rendering of the logical schema spec.md §6 defines (Node,
// LinkHeader, BatchNode, BatchLink, FingerprintedBatchNode) over the
// three HTTP routes registered in httpapi.go.

type wireLinkHeader struct {
	Name string `json:"name"`
	Hash string `json:"hash"`
	Size uint64 `json:"size"`
}

type wireNode struct {
	Data  []byte           `json:"data"`
	Links []wireLinkHeader `json:"links"`
}

// wireBatchLink is OneOf{InReq(fingerprint) | InBackend(link_header)},
// spelled as two optional fields rather than a Go interface so it
// decodes directly from JSON without a custom UnmarshalJSON.
type wireBatchLink struct {
	Fingerprint *string         `json:"fingerprint,omitempty"`
	Remote      *wireLinkHeader `json:"remote,omitempty"`
}

type wireBatchNode struct {
	Data  []byte          `json:"data"`
	Links []wireBatchLink `json:"links"`
}

type wireFingerprintedNode struct {
	Fingerprint string        `json:"fingerprint"`
	Node        wireBatchNode `json:"node"`
}

type wireBulkPutReq struct {
	Entry wireBatchNode           `json:"entry"`
	Nodes []wireFingerprintedNode `json:"nodes"`
}

type wireAdditional struct {
	Fingerprint string `json:"fingerprint"`
	Hash        string `json:"hash"`
}

type wireBulkPutResp struct {
	RootHash   string           `json:"root_hash"`
	Additional []wireAdditional `json:"additional"`
}

type wirePutResp struct {
	Hash string `json:"hash"`
}

type wireLinkedNode struct {
	Link wireLinkHeader `json:"link"`
	Node wireNode       `json:"node"`
}

type wireGetResp struct {
	RequestedNode wireNode         `json:"requested_node"`
	ExtraCount    int              `json:"extra_count"`
	ExtraNodes    []wireLinkedNode `json:"extra_nodes"`
}

func toWireNode(n nodes.Node) wireNode {
	wn := wireNode{Data: n.Data, Links: make([]wireLinkHeader, len(n.Links))}
	for i, l := range n.Links {
		wn.Links[i] = wireLinkHeader{Name: l.Name, Hash: l.Hash.String(), Size: l.Size}
	}
	return wn
}

func fromWireNode(wn wireNode) nodes.Node {
	n := nodes.Node{Data: wn.Data, Links: make([]nodes.LinkHeader, len(wn.Links))}
	for i, l := range wn.Links {
		n.Links[i] = nodes.LinkHeader{Name: l.Name, Hash: hash.Hash(l.Hash), Size: l.Size}
	}
	return n
}

func fromWireBatchNode(wn wireBatchNode) (nodes.BatchNode, error) {
	bn := nodes.BatchNode{Data: wn.Data, Links: make([]nodes.BatchLink, len(wn.Links))}
	for i, l := range wn.Links {
		switch {
		case l.Fingerprint != nil && l.Remote != nil:
			return nodes.BatchNode{}, dcerr.New(dcerr.WireDecode, "batch link has both fingerprint and remote set")
		case l.Fingerprint != nil:
			bn.Links[i] = nodes.LocalLink(hash.Fingerprint(*l.Fingerprint))
		case l.Remote != nil:
			bn.Links[i] = nodes.RemoteLink(nodes.LinkHeader{
				Name: l.Remote.Name, Hash: hash.Hash(l.Remote.Hash), Size: l.Remote.Size,
			})
		default:
			return nodes.BatchNode{}, dcerr.New(dcerr.WireDecode, "batch link has neither fingerprint nor remote set")
		}
	}
	return bn, nil
}

func fromWireBulkPutReq(req wireBulkPutReq) (nodes.BatchNode, []validate.FingerprintedNode, error) {
	entry, err := fromWireBatchNode(req.Entry)
	if err != nil {
		return nodes.BatchNode{}, nil, err
	}
	list := make([]validate.FingerprintedNode, len(req.Nodes))
	for i, fn := range req.Nodes {
		bn, err := fromWireBatchNode(fn.Node)
		if err != nil {
			return nodes.BatchNode{}, nil, err
		}
		list[i] = validate.FingerprintedNode{Fingerprint: hash.Fingerprint(fn.Fingerprint), Node: bn}
	}
	return entry, list, nil
}

func toWireBulkPutResp(root hash.Hash, additional []publish.Additional) wireBulkPutResp {
	resp := wireBulkPutResp{RootHash: root.String(), Additional: make([]wireAdditional, len(additional))}
	for i, a := range additional {
		resp.Additional[i] = wireAdditional{Fingerprint: a.Fingerprint.String(), Hash: a.Hash.String()}
	}
	return resp
}

func toWireGetResp(requested nodes.Node, extraCount int, extra []read.LinkedNode) wireGetResp {
	resp := wireGetResp{
		RequestedNode: toWireNode(requested),
		ExtraCount:    extraCount,
		ExtraNodes:    make([]wireLinkedNode, len(extra)),
	}
	for i, e := range extra {
		resp.ExtraNodes[i] = wireLinkedNode{
			Link: wireLinkHeader{Name: e.Link.Name, Hash: e.Link.Hash.String(), Size: e.Link.Size},
			Node: toWireNode(e.Node),
		}
	}
	return resp
}
