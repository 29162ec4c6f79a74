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

// Package service implements C7: the thin request surface the framing
// layer calls into. Every operation is a method on Service, constructed
// once from an explicit Deps bundle — there is no package-level state
// anywhere in this module (spec.md §9 forbids the source's process-global
// configuration).
package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/pkinsky/dag-cache/hash"
	"github.com/pkinsky/dag-cache/internal/backend"
	"github.com/pkinsky/dag-cache/internal/cache"
	"github.com/pkinsky/dag-cache/internal/config"
	"github.com/pkinsky/dag-cache/internal/dcerr"
	"github.com/pkinsky/dag-cache/internal/metrics"
	"github.com/pkinsky/dag-cache/internal/nodes"
	"github.com/pkinsky/dag-cache/internal/publish"
	"github.com/pkinsky/dag-cache/internal/read"
	"github.com/pkinsky/dag-cache/internal/validate"
)

// Deps is the dependency bundle constructed once at process startup and
// threaded explicitly into Service. Replaces the source's process-global
// configuration (spec.md §9, "Design Notes").
type Deps struct {
	Cache   *cache.Cache
	Backend backend.Client
	Logger  *zap.Logger
	Metrics *metrics.Metrics
	Config  config.Config
}

// Service is the request surface: get_node, put_node, bulk_put.
type Service struct {
	deps   Deps
	reader *read.Reader
	pub    *publish.Engine
}

// New builds a Service from deps.
func New(deps Deps) *Service {
	return &Service{
		deps:   deps,
		reader: read.New(deps.Cache, deps.Backend, 0, deps.Metrics),
		pub:    publish.New(deps.Backend, deps.Cache, deps.Config.BulkPublishParallelism, deps.Logger, deps.Metrics),
	}
}

// GetResponse is the result of GetNode.
type GetResponse struct {
	RequestedNode nodes.Node
	ExtraCount    int
	ExtraNodes    []read.LinkedNode
}

// GetNode implements the "get" operation of §4.6: cache lookup falling
// back to the backend on miss, plus frontier expansion.
func (s *Service) GetNode(ctx context.Context, h hash.Hash) (GetResponse, error) {
	resp, err := s.reader.Get(ctx, h)
	if err != nil {
		return GetResponse{}, err
	}
	return GetResponse{
		RequestedNode: resp.Requested,
		ExtraCount:    resp.ExtraCount,
		ExtraNodes:    resp.Extra,
	}, nil
}

// PutNode implements the single-node "put" operation of §4.6: backend
// put, cache insert, return the assigned hash.
func (s *Service) PutNode(ctx context.Context, n nodes.Node) (hash.Hash, error) {
	h, err := s.deps.Backend.Put(ctx, n)
	if err != nil {
		if s.deps.Metrics != nil {
			if de, ok := dcerr.As(err); ok {
				s.deps.Metrics.BackendErrors.WithLabelValues(de.Kind().String()).Inc()
			}
		}
		return hash.Empty, err
	}
	s.deps.Cache.Put(h, n)
	if s.deps.Metrics != nil {
		s.deps.Metrics.BackendPuts.Inc()
	}
	return h, nil
}

// BulkPutResponse is the result of BulkPut.
type BulkPutResponse struct {
	RootHash   hash.Hash
	Additional []publish.Additional
}

// BulkPut implements the "bulk_put" operation of §4.6: validate the
// batch into a tree, then publish it leaves-first.
func (s *Service) BulkPut(ctx context.Context, entry nodes.BatchNode, list []validate.FingerprintedNode) (BulkPutResponse, error) {
	tree, err := validate.Validate(entry, list)
	if err != nil {
		return BulkPutResponse{}, err
	}
	result, err := s.pub.Publish(ctx, tree)
	if err != nil {
		return BulkPutResponse{}, err
	}
	return BulkPutResponse{RootHash: result.Root.Hash, Additional: result.Additional}, nil
}
