/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package web

import (
	"context"
	"log"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/tomoncle/datastudy"
	"github.com/tomoncle/datastudy/config"
	"github.com/tomoncle/datastudy/database"
	"github.com/tomoncle/datastudy/entity"
	"github.com/tomoncle/datastudy/repository"
	"github.com/uptrace/bun"
)

// Options tune the router. The zero value is usable.
type Options struct {
	Paging Paging
	Health HealthFunc
	Logger *logrus.Logger
}

func (o *Options) defaults() {
	if o.Paging.DefaultSize < 1 {
		o.Paging.DefaultSize = DefaultPaging.DefaultSize
	}
	if o.Paging.MaxSize < 1 {
		o.Paging.MaxSize = DefaultPaging.MaxSize
	}
	if o.Health == nil {
		o.Health = database.GetHealthStatus
	}
	if o.Logger == nil {
		o.Logger = webLogger()
	}
}

// NewRouter returns the HTTP handler serving the member endpoints.
func NewRouter(db bun.IDB, opts Options) http.Handler {
	opts.defaults()
	router := mux.NewRouter()
	router.Use(metricsMiddleware)

	MemberController(router,
		repository.NewMemberRepository(db),
		datastudy.NewServiceWithDB[entity.Member](db),
		opts.Paging,
	)
	router.HandleFunc("/healthz", healthHandler(opts.Health)).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	router.NotFoundHandler = http.HandlerFunc(renderNotFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(renderMethodNotAllowed)

	h := NewLoggingMiddleware(router, opts.Logger)
	h = handlers.CompressHandler(h)
	h = handlers.RecoveryHandler(
		handlers.RecoveryLogger(opts.Logger),
		handlers.PrintRecoveryStack(true),
	)(h)

	return h
}

// HTTPServer is an http server.
type HTTPServer struct {
	cfg *config.HTTPConfig

	Server *http.Server
}

// NewHTTPServer creates a new HTTP server for handler.
func NewHTTPServer(cfg *config.HTTPConfig, handler http.Handler) *HTTPServer {
	logger := webLogger()
	return &HTTPServer{
		cfg: cfg,
		Server: &http.Server{
			Addr:              cfg.ListenAddr,
			Handler:           handler,
			ReadHeaderTimeout: cfg.ReadHeaderTimeout,
			IdleTimeout:       cfg.IdleTimeout,
			MaxHeaderBytes:    http.DefaultMaxHeaderBytes,
			ErrorLog:          log.New(logger.WriterLevel(logrus.ErrorLevel), "", 0),
		},
	}
}

// ListenAndServe starts the HTTP server.
func (s *HTTPServer) ListenAndServe() error {
	return s.Server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.Server.Shutdown(ctx)
}

// Close closes the HTTP server.
func (s *HTTPServer) Close() error {
	return s.Server.Close()
}
