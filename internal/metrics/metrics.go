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

// Package metrics holds the Prometheus instruments the cache and the
// backend-calling paths (internal/publish, internal/read,
// internal/service) report into. It is a dependency passed explicitly into
// every component that reports, never a package-level registry.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles every counter/histogram this service exports. A single
// instance is constructed at startup and threaded through Deps (§9).
type Metrics struct {
	CacheHits      prometheus.Counter
	CacheMisses    prometheus.Counter
	CacheEvictions prometheus.Counter
	BackendGets    prometheus.Counter
	BackendPuts    prometheus.Counter
	BackendErrors  *prometheus.CounterVec
	PublishLatency prometheus.Histogram
}

// New constructs a Metrics bundle and registers every instrument with
// reg. Passing a fresh prometheus.NewRegistry() keeps tests isolated
// from one another and from the process-global default registry.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dagcache_cache_hits_total",
			Help: "Node cache lookups that found an entry.",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dagcache_cache_misses_total",
			Help: "Node cache lookups that found nothing.",
		}),
		CacheEvictions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dagcache_cache_evictions_total",
			Help: "Entries evicted from the node cache to stay within capacity.",
		}),
		BackendGets: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dagcache_backend_gets_total",
			Help: "Successful Get calls to the backend object store.",
		}),
		BackendPuts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dagcache_backend_puts_total",
			Help: "Successful Put calls to the backend object store.",
		}),
		BackendErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dagcache_backend_errors_total",
			Help: "Backend calls that failed, labeled by error kind.",
		}, []string{"kind"}),
		PublishLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dagcache_publish_node_seconds",
			Help:    "Time to publish a single node (backend put + cache insert).",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(
		m.CacheHits, m.CacheMisses, m.CacheEvictions,
		m.BackendGets, m.BackendPuts, m.BackendErrors,
		m.PublishLatency,
	)
	return m
}

// Noop returns a Metrics bundle registered to a private registry,
// suitable for tests that don't care about reported values but need a
// non-nil Metrics to satisfy a constructor.
func Noop() *Metrics {
	return New(prometheus.NewRegistry())
}
