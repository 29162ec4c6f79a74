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

// Package httpapi implements C9: the JSON-over-HTTP framing of the
// service's three operations, the way original_source/server/src/main.rs
// frames the same three operations as warp filters. This layer owns
// request decoding, response encoding, request-body size enforcement,
// span/log bookkeeping, and the mapping from a *dcerr.Error to an HTTP
// status; it holds no cache/backend logic of its own.
package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/pkinsky/dag-cache/hash"
	"github.com/pkinsky/dag-cache/internal/dcerr"
	"github.com/pkinsky/dag-cache/internal/service"
)

// Server wires a service.Service to HTTP.
type Server struct {
	svc                 *service.Service
	logger              *zap.Logger
	tracer              trace.Tracer
	maxRequestBodyBytes int64
}

// New builds a Server. tracer is typically telemetry.Tracer("dagcache"),
// and is accepted as a parameter rather than constructed here so tests
// can pass the otel no-op tracer without pulling in an SDK.
func New(svc *service.Service, logger *zap.Logger, tracer trace.Tracer, maxRequestBodyBytes int64) *Server {
	return &Server{svc: svc, logger: logger, tracer: tracer, maxRequestBodyBytes: maxRequestBodyBytes}
}

// Handler returns the httprouter.Router exposing the three routes of
// SPEC_FULL.md §6.1.
func (s *Server) Handler() http.Handler {
	r := httprouter.New()
	r.GET("/v0/node/:hash", s.handleGet)
	r.POST("/v0/node", s.handlePut)
	r.POST("/v0/bulk", s.handleBulkPut)
	return r
}

func (s *Server) handleGet(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {
	ctx, span := s.tracer.Start(req.Context(), "get_node")
	defer span.End()

	h, err := hash.Parse(ps.ByName("hash"))
	if err != nil {
		s.writeError(w, req, span, dcerr.New(dcerr.WireDecode, "invalid hash path segment"))
		return
	}
	span.SetAttributes(attribute.String("dagcache.hash", h.String()))

	resp, err := s.svc.GetNode(ctx, h)
	if err != nil {
		s.writeError(w, req, span, err)
		return
	}

	s.logger.Info("get_node",
		zap.String("hash", h.String()),
		zap.Int("extra_count", resp.ExtraCount),
	)
	s.writeJSON(w, http.StatusOK, toWireGetResp(resp.RequestedNode, resp.ExtraCount, resp.ExtraNodes))
}

func (s *Server) handlePut(w http.ResponseWriter, req *http.Request, _ httprouter.Params) {
	ctx, span := s.tracer.Start(req.Context(), "put_node")
	defer span.End()

	req.Body = http.MaxBytesReader(w, req.Body, s.maxRequestBodyBytes)
	var wn wireNode
	if err := json.NewDecoder(req.Body).Decode(&wn); err != nil {
		s.writeError(w, req, span, dcerr.Wrap(dcerr.WireDecode, err, "decoding put_node body"))
		return
	}

	h, err := s.svc.PutNode(ctx, fromWireNode(wn))
	if err != nil {
		s.writeError(w, req, span, err)
		return
	}

	s.logger.Info("put_node", zap.String("hash", h.String()))
	s.writeJSON(w, http.StatusOK, wirePutResp{Hash: h.String()})
}

func (s *Server) handleBulkPut(w http.ResponseWriter, req *http.Request, _ httprouter.Params) {
	ctx, span := s.tracer.Start(req.Context(), "bulk_put")
	defer span.End()

	req.Body = http.MaxBytesReader(w, req.Body, s.maxRequestBodyBytes)
	var wreq wireBulkPutReq
	if err := json.NewDecoder(req.Body).Decode(&wreq); err != nil {
		s.writeError(w, req, span, dcerr.Wrap(dcerr.WireDecode, err, "decoding bulk_put body"))
		return
	}

	entry, list, err := fromWireBulkPutReq(wreq)
	if err != nil {
		s.writeError(w, req, span, err)
		return
	}

	resp, err := s.svc.BulkPut(ctx, entry, list)
	if err != nil {
		s.writeError(w, req, span, err)
		return
	}

	s.logger.Info("bulk_put",
		zap.String("root_hash", resp.RootHash.String()),
		zap.Int("node_count", len(resp.Additional)+1),
	)
	s.writeJSON(w, http.StatusOK, toWireBulkPutResp(resp.RootHash, resp.Additional))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps err to an HTTP status per SPEC_FULL.md §7 and writes a
// JSON error body, except for a client-disconnect Cancelled error, which
// is dropped with no response written — there is no client left to read
// it.
func (s *Server) writeError(w http.ResponseWriter, req *http.Request, span trace.Span, err error) {
	de, ok := dcerr.As(err)
	if !ok {
		de = dcerr.Wrap(dcerr.Unexpected, err, "unclassified error")
	}
	span.RecordError(de)
	span.SetStatus(codes.Error, de.Kind().String())

	if de.Kind() == dcerr.Cancelled && req.Context().Err() != nil {
		s.logger.Info("request cancelled by client", zap.Error(de))
		return
	}

	status := statusForKind(de.Kind())
	s.logger.Error("request failed",
		zap.String("kind", de.Kind().String()),
		zap.String("reason", de.Reason().String()),
		zap.Error(de),
	)
	s.writeJSON(w, status, wireError{Kind: de.Kind().String(), Reason: de.Reason().String(), Message: de.Error()})
}

type wireError struct {
	Kind    string `json:"kind"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message"`
}

// statusForKind is the table of SPEC_FULL.md §7.
func statusForKind(k dcerr.Kind) int {
	switch k {
	case dcerr.BatchInvalid, dcerr.WireDecode:
		return http.StatusBadRequest
	case dcerr.BackendTransport, dcerr.BackendDecode, dcerr.Unexpected, dcerr.Cancelled:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
