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

// Package telemetry constructs the logging and tracing collaborators
// spec.md §1 names as external to the core ("structured logging and
// distributed-trace propagation"), specified only at the interface the
// HTTP framing layer (internal/httpapi) accepts them through.
package telemetry

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// NewLogger builds the process's single *zap.Logger. It is constructed
// once in cmd/dagcached and passed explicitly into every component that
// logs; no package anywhere in this module calls zap.L() or otherwise
// reaches for a global logger.
func NewLogger(development bool) (*zap.Logger, error) {
	if development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// Tracer returns the named OpenTelemetry tracer used to start request
// spans in internal/httpapi. With no SDK/exporter configured (as in a
// test process) this is otel's no-op tracer, which is safe to call
// unconditionally.
func Tracer(name string) trace.Tracer {
	return otel.Tracer(name)
}
