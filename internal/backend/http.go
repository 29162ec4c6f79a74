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
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/pkinsky/dag-cache/hash"
	"github.com/pkinsky/dag-cache/internal/dcerr"
	"github.com/pkinsky/dag-cache/internal/nodes"
)

// HTTP is a Client speaking the go-ipfs object API
// (api/v0/object/get, api/v0/object/put), mirroring the shape of
// original_source/server/src/ipfs_api.rs: GET with a base64
// data-encoding query param, POST as multipart form data.
type HTTP struct {
	baseURL *url.URL
	hc      *http.Client
}

// NewHTTP builds an HTTP client against the backend rooted at baseURL.
func NewHTTP(baseURL string, hc *http.Client) (*HTTP, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, dcerr.Wrap(dcerr.Unexpected, err, "parsing backend url")
	}
	if hc == nil {
		hc = http.DefaultClient
	}
	return &HTTP{baseURL: u, hc: hc}, nil
}

type wireHeader struct {
	Name string `json:"Name"`
	Hash string `json:"Hash"`
	Size uint64 `json:"Size"`
}

type wireNode struct {
	Data  string       `json:"Data"`
	Links []wireHeader `json:"Links"`
}

// Get implements Client.
func (h *HTTP) Get(ctx context.Context, k hash.Hash) (nodes.Node, error) {
	u := *h.baseURL
	u.Path = "api/v0/object/get"
	q := u.Query()
	q.Set("data-encoding", "base64")
	q.Set("arg", k.String())
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nodes.Node{}, dcerr.Wrap(dcerr.BackendTransport, err, "building get request")
	}

	resp, err := h.hc.Do(req)
	if err != nil {
		return nodes.Node{}, dcerr.Wrap(dcerr.BackendTransport, err, "calling backend object/get")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nodes.Node{}, dcerr.New(dcerr.BackendTransport, fmt.Sprintf("object/get: status %d", resp.StatusCode))
	}

	var wn wireNode
	if err := json.NewDecoder(resp.Body).Decode(&wn); err != nil {
		return nodes.Node{}, dcerr.Wrap(dcerr.BackendDecode, err, "decoding object/get response")
	}
	return decodeWireNode(wn)
}

// Put implements Client.
func (h *HTTP) Put(ctx context.Context, n nodes.Node) (hash.Hash, error) {
	u := *h.baseURL
	u.Path = "api/v0/object/put"
	q := u.Query()
	q.Set("datafieldenc", "base64")
	u.RawQuery = q.Encode()

	payload, err := json.Marshal(encodeWireNode(n))
	if err != nil {
		return hash.Empty, dcerr.Wrap(dcerr.Unexpected, err, "marshaling node for object/put")
	}

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("file", "data")
	if err != nil {
		return hash.Empty, dcerr.Wrap(dcerr.Unexpected, err, "building multipart form")
	}
	if _, err := part.Write(payload); err != nil {
		return hash.Empty, dcerr.Wrap(dcerr.Unexpected, err, "writing multipart body")
	}
	if err := w.Close(); err != nil {
		return hash.Empty, dcerr.Wrap(dcerr.Unexpected, err, "closing multipart writer")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), body)
	if err != nil {
		return hash.Empty, dcerr.Wrap(dcerr.BackendTransport, err, "building put request")
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := h.hc.Do(req)
	if err != nil {
		return hash.Empty, dcerr.Wrap(dcerr.BackendTransport, err, "calling backend object/put")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return hash.Empty, dcerr.New(dcerr.BackendTransport, fmt.Sprintf("object/put: status %d", resp.StatusCode))
	}

	var putResp struct {
		Hash string `json:"Hash"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&putResp); err != nil {
		return hash.Empty, dcerr.Wrap(dcerr.BackendDecode, err, "decoding object/put response")
	}
	out, err := hash.Parse(putResp.Hash)
	if err != nil {
		return hash.Empty, dcerr.Wrap(dcerr.BackendDecode, err, "backend returned invalid hash")
	}
	return out, nil
}

func encodeWireNode(n nodes.Node) wireNode {
	wn := wireNode{
		Data:  base64.StdEncoding.EncodeToString(n.Data),
		Links: make([]wireHeader, len(n.Links)),
	}
	for i, l := range n.Links {
		wn.Links[i] = wireHeader{Name: l.Name, Hash: l.Hash.String(), Size: l.Size}
	}
	return wn
}

func decodeWireNode(wn wireNode) (nodes.Node, error) {
	data, err := base64.StdEncoding.DecodeString(wn.Data)
	if err != nil {
		return nodes.Node{}, dcerr.Wrap(dcerr.BackendDecode, err, "decoding node data field")
	}
	n := nodes.Node{Data: data, Links: make([]nodes.LinkHeader, len(wn.Links))}
	for i, l := range wn.Links {
		h, err := hash.Parse(l.Hash)
		if err != nil {
			return nodes.Node{}, dcerr.Wrap(dcerr.BackendDecode, err, "decoding link hash")
		}
		n.Links[i] = nodes.LinkHeader{Name: l.Name, Hash: h, Size: l.Size}
	}
	return n, nil
}
