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

// Command notes is C11: a minimal downstream consumer of a running
// dagcached, grounded on original_source/notes-server/src/main.rs's
// note-taking demo. A note is a two-node tree: an entry node holding the
// title, linking by fingerprint to one body node holding the body text.
// Unlike the Rust original (its own warp server fronting a separate
// gRPC cache), this talks directly to dagcached's HTTP API as a plain
// CLI client — there is no second server to front here.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/google/uuid"
)

type wireLinkHeader struct {
	Name string `json:"name"`
	Hash string `json:"hash"`
	Size uint64 `json:"size"`
}

type wireNode struct {
	Data  []byte           `json:"data"`
	Links []wireLinkHeader `json:"links"`
}

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

type wireBulkPutResp struct {
	RootHash string `json:"root_hash"`
}

type wireGetResp struct {
	RequestedNode wireNode `json:"requested_node"`
	ExtraNodes    []struct {
		Link wireLinkHeader `json:"link"`
		Node wireNode       `json:"node"`
	} `json:"extra_nodes"`
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}
	baseURL := flag.NewFlagSet("notes", flag.ExitOnError)
	server := baseURL.String("server", "http://127.0.0.1:8080", "base URL of a running dagcached")

	switch os.Args[1] {
	case "put":
		baseURL.Parse(os.Args[2:])
		args := baseURL.Args()
		if len(args) != 2 {
			fmt.Fprintln(os.Stderr, "usage: notes put [-server url] <title> <body>")
			os.Exit(2)
		}
		if err := put(*server, args[0], args[1]); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
	case "get":
		baseURL.Parse(os.Args[2:])
		args := baseURL.Args()
		if len(args) != 1 {
			fmt.Fprintln(os.Stderr, "usage: notes get [-server url] <hash>")
			os.Exit(2)
		}
		if err := get(*server, args[0]); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
	default:
		usage()
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: notes <put|get> [-server url] ...")
	os.Exit(2)
}

// put stores title/body as a two-node tree and prints the assigned root
// hash, the way the original posted a PutReq and printed the returned
// IPFSHash.
func put(server, title, body string) error {
	bodyFP := uuid.NewString()
	req := wireBulkPutReq{
		Entry: wireBatchNode{
			Data:  []byte(title),
			Links: []wireBatchLink{{Fingerprint: &bodyFP}},
		},
		Nodes: []wireFingerprintedNode{
			{Fingerprint: bodyFP, Node: wireBatchNode{Data: []byte(body)}},
		},
	}

	raw, err := json.Marshal(req)
	if err != nil {
		return err
	}

	resp, err := http.Post(server+"/v0/bulk", "application/json", bytes.NewReader(raw))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("bulk_put failed: %s: %s", resp.Status, b)
	}

	var out wireBulkPutResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return err
	}
	fmt.Println(out.RootHash)
	return nil
}

// get fetches the note at hash and prints its title and, if the body was
// already cached and came back as an extra node, its body too.
func get(server, hash string) error {
	resp, err := http.Get(server + "/v0/node/" + hash)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("get_node failed: %s: %s", resp.Status, b)
	}

	var out wireGetResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return err
	}

	fmt.Printf("title: %s\n", out.RequestedNode.Data)
	for _, extra := range out.ExtraNodes {
		fmt.Printf("body: %s\n", extra.Node.Data)
	}
	if len(out.ExtraNodes) == 0 && len(out.RequestedNode.Links) > 0 {
		fmt.Println("body: (not cached, fetch its hash directly)")
	}
	return nil
}
