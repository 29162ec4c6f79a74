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

// Package config holds the explicit configuration surface of spec.md
// §6: an ordinary struct passed to service.New at construction, never a
// package-level global consulted by request handlers.
package config

import "flag"

// Config is the enumerated configuration surface of spec.md §6.
type Config struct {
	ListenAddress          string
	BackendURL             string
	CacheCapacity          int
	MaxRequestBodyBytes    int64
	BulkPublishParallelism int
}

// Default returns a Config with the documented defaults for every
// field. Callers override individual fields as needed; there is no
// notion of a "current" or global config anywhere else in this module.
func Default() Config {
	return Config{
		ListenAddress:          ":8080",
		BackendURL:             "http://127.0.0.1:5001",
		CacheCapacity:          100_000,
		MaxRequestBodyBytes:    16 << 20, // 16 MiB
		BulkPublishParallelism: 32,
	}
}

// RegisterFlags binds fs to cfg's fields, seeded with cfg's current
// values as defaults. Used by cmd/dagcached to build a Config from the
// command line without any package-level flag.Parse() of its own.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.ListenAddress, "listen-address", c.ListenAddress, "host:port to listen on")
	fs.StringVar(&c.BackendURL, "backend-url", c.BackendURL, "base URL of the backend object store")
	fs.IntVar(&c.CacheCapacity, "cache-capacity", c.CacheCapacity, "maximum number of nodes held in the node cache")
	fs.Int64Var(&c.MaxRequestBodyBytes, "max-request-body-bytes", c.MaxRequestBodyBytes, "maximum size of one inbound request body")
	fs.IntVar(&c.BulkPublishParallelism, "bulk-publish-parallelism", c.BulkPublishParallelism, "hint bounding concurrent backend puts during one bulk-put")
}
