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

// Package publish implements C5: the leaves-first publish engine.
//
// The recursive publish(node) = publish each Local child concurrently,
// await all, substitute real hashes, put(node) shape of spec.md §4.4 is
// expressed as one goroutine per node, each reporting its outcome back
// to its caller through a single-use, one-element completion channel
// (original_source/server/src/api.rs's ipfs_publish_cata/worker pair,
// which uses a oneshot channel for exactly this reason). No goroutine
// ever calls itself directly — it spawns a fresh goroutine per child and
// blocks reading that child's channel — so a single goroutine's own
// stack stays O(1) regardless of tree depth; only the number of
// concurrently blocked goroutines grows with depth, which the Go
// runtime's growable-stack goroutines are built to absorb cheaply.
package publish

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/pkinsky/dag-cache/hash"
	"github.com/pkinsky/dag-cache/internal/backend"
	"github.com/pkinsky/dag-cache/internal/cache"
	"github.com/pkinsky/dag-cache/internal/dcerr"
	"github.com/pkinsky/dag-cache/internal/metrics"
	"github.com/pkinsky/dag-cache/internal/nodes"
)

// Additional is one entry of a bulk-put response's side mapping: the
// client fingerprint a non-root node was labeled with, and the backend
// hash it was actually published under.
type Additional struct {
	Fingerprint hash.Fingerprint
	Hash        hash.Hash
}

// Result is a completed bulk-put: the root's resolved header plus the
// fingerprint-to-hash mapping for every other published node.
type Result struct {
	Root       nodes.LinkHeader
	Additional []Additional
}

// Engine publishes a ValidatedTree to a Client, leaves first.
type Engine struct {
	backend backend.Client
	cache   *cache.Cache
	sem     *semaphore.Weighted
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// New builds an Engine. parallelism bounds the number of concurrently
// in-flight backend Put calls this engine will issue for one bulk-put
// (config.BulkPublishParallelism's "hint"); it does not bound the number
// of goroutines spawned, only how many may be blocked inside a backend
// Put at once.
func New(b backend.Client, c *cache.Cache, parallelism int, logger *zap.Logger, m *metrics.Metrics) *Engine {
	if parallelism < 1 {
		parallelism = 1
	}
	return &Engine{
		backend: b,
		cache:   c,
		sem:     semaphore.NewWeighted(int64(parallelism)),
		logger:  logger,
		metrics: m,
	}
}

// outcome is what one node's publish task reports on its completion
// channel. The channel is closed without ever sending one if the task
// observed context cancellation before starting real work; the parent
// treats a closed-without-value channel as a Cancelled error (spec.md
// §5, "Cancellation").
type outcome struct {
	header     nodes.LinkHeader
	additional []Additional
	err        error
}

// Publish walks tree leaves-first and returns the root's resolved header
// plus the fingerprint mapping for everything else. If any backend put
// fails, the whole operation fails with that error; nodes already
// published are not rolled back (spec.md §4.4 — this is safe because
// content addressing makes an unreferenced node garbage, not corrupt
// state).
func (e *Engine) Publish(ctx context.Context, tree nodes.ValidatedTree) (Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ch := make(chan outcome, 1)
	go e.publishNode(ctx, cancel, "", false, tree.Entry, tree)(ch)

	out, ok := <-ch
	if !ok {
		e.logger.Warn("bulk-put cancelled before root published")
		return Result{}, dcerr.New(dcerr.Cancelled, "root publish task cancelled")
	}
	if out.err != nil {
		e.logger.Error("bulk-put failed", zap.Error(out.err))
		return Result{}, out.err
	}
	e.logger.Info("bulk-put published",
		zap.String("root_hash", out.header.Hash.String()),
		zap.Int("node_count", len(out.additional)+1),
	)
	return Result{Root: out.header, Additional: out.additional}, nil
}

// publishNode returns a closure over the task's completion channel so
// Publish can launch it with a plain `go task(ch)`, keeping the spawn
// site uniform for the root and for every recursive child below.
func (e *Engine) publishNode(
	ctx context.Context,
	cancel context.CancelFunc,
	self hash.Fingerprint,
	hasSelf bool,
	node nodes.BatchNode,
	tree nodes.ValidatedTree,
) func(chan<- outcome) {
	return func(ch chan<- outcome) {
		defer close(ch)

		select {
		case <-ctx.Done():
			return
		default:
		}

		resolved, additional, err := e.resolveLinks(ctx, cancel, node, tree)
		if err != nil {
			cancel()
			ch <- outcome{err: err}
			return
		}

		built := nodes.Node{Data: node.Data, Links: resolved}

		if err := e.sem.Acquire(ctx, 1); err != nil {
			cancel()
			ch <- outcome{err: dcerr.Wrap(dcerr.Cancelled, err, "acquiring publish slot")}
			return
		}
		start := time.Now()
		h, putErr := e.backend.Put(ctx, built)
		e.sem.Release(1)
		if putErr != nil {
			if e.metrics != nil {
				if de, ok := dcerr.As(putErr); ok {
					e.metrics.BackendErrors.WithLabelValues(de.Kind().String()).Inc()
				}
			}
			cancel()
			ch <- outcome{err: putErr}
			return
		}
		e.cache.Put(h, built)
		if e.metrics != nil {
			e.metrics.BackendPuts.Inc()
			e.metrics.PublishLatency.Observe(time.Since(start).Seconds())
		}

		name := string(self)
		if hasSelf {
			additional = append(additional, Additional{Fingerprint: self, Hash: h})
		}

		header := nodes.LinkHeader{Name: name, Hash: h, Size: built.CumulativeSize()}
		ch <- outcome{header: header, additional: additional}
	}
}

// resolveLinks substitutes real backend hashes for every Local link in
// node, spawning one task per Local child and collecting results in
// link-list order (order is preserved exactly — spec.md §4.4 — even
// though children may complete out of order, since each index is read
// from its own channel regardless of when the sibling goroutines
// finish). Remote links need no task: their header is already resolved.
func (e *Engine) resolveLinks(
	ctx context.Context,
	cancel context.CancelFunc,
	node nodes.BatchNode,
	tree nodes.ValidatedTree,
) ([]nodes.LinkHeader, []Additional, error) {
	channels := make([]chan outcome, len(node.Links))
	for i, link := range node.Links {
		if link.Kind != nodes.Local {
			continue
		}
		child := tree.Nodes[link.Fingerprint]
		ch := make(chan outcome, 1)
		channels[i] = ch
		go e.publishNode(ctx, cancel, link.Fingerprint, true, child, tree)(ch)
	}

	headers := make([]nodes.LinkHeader, len(node.Links))
	var additional []Additional
	var firstErr error

	for i, link := range node.Links {
		if link.Kind != nodes.Local {
			headers[i] = link.Remote
			continue
		}
		out, ok := <-channels[i]
		switch {
		case firstErr != nil:
			// Already failing; still drain so every spawned goroutine's
			// channel is read and nothing leaks, but keep the first
			// error.
		case !ok:
			firstErr = dcerr.New(dcerr.Cancelled, "child publish task cancelled")
		case out.err != nil:
			firstErr = out.err
		default:
			headers[i] = out.header
			additional = append(additional, out.additional...)
		}
	}

	if firstErr != nil {
		return nil, nil, firstErr
	}
	return headers, additional, nil
}
