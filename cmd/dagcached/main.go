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

// Command dagcached is the C8 entrypoint: parse flags into a
// config.Config, build the Deps bundle, and serve the httpapi handler.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/pkinsky/dag-cache/internal/backend"
	"github.com/pkinsky/dag-cache/internal/cache"
	"github.com/pkinsky/dag-cache/internal/config"
	"github.com/pkinsky/dag-cache/internal/httpapi"
	"github.com/pkinsky/dag-cache/internal/metrics"
	"github.com/pkinsky/dag-cache/internal/service"
	"github.com/pkinsky/dag-cache/internal/telemetry"
)

func main() {
	cfg := config.Default()
	var backendTimeout time.Duration
	var development bool
	fs := flag.NewFlagSet("dagcached", flag.ExitOnError)
	cfg.RegisterFlags(fs)
	fs.DurationVar(&backendTimeout, "backend-retry-max-elapsed", 30*time.Second, "maximum total time to retry a failing backend call before giving up")
	fs.BoolVar(&development, "development", false, "use zap's development logger (console, debug level)")
	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}

	logger, err := telemetry.NewLogger(development)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := run(cfg, backendTimeout, logger); err != nil {
		logger.Fatal("dagcached exited", zap.Error(err))
	}
}

func run(cfg config.Config, backendTimeout time.Duration, logger *zap.Logger) error {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	c, err := cache.New(cfg.CacheCapacity, m)
	if err != nil {
		return err
	}

	httpBackend, err := backend.NewHTTP(cfg.BackendURL, nil)
	if err != nil {
		return err
	}
	var client backend.Client = backend.NewRetrying(httpBackend, backendTimeout)

	svc := service.New(service.Deps{
		Cache:   c,
		Backend: client,
		Logger:  logger,
		Metrics: m,
		Config:  cfg,
	})

	tracer := telemetry.Tracer("dagcache")
	api := httpapi.New(svc, logger, tracer, cfg.MaxRequestBodyBytes)

	mux := http.NewServeMux()
	mux.Handle("/v0/", api.Handler())
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:    cfg.ListenAddress,
		Handler: mux,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("address", cfg.ListenAddress))
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-sigCh:
		logger.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
