// Copyright 2025 The Rivaas Authors
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

package stdhttp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// Timeouts bounds the phases of a connection. Zero fields keep the
// defaults of [NewServer].
type Timeouts struct {
	ReadHeader time.Duration
	Read       time.Duration
	Write      time.Duration
	Idle       time.Duration
}

// ServerOption configures a [Server].
type ServerOption func(*Server)

// WithAddress sets the listen address. Default ":8080".
func WithAddress(addr string) ServerOption {
	return func(s *Server) {
		s.addr = addr
	}
}

// WithTimeouts overrides the non-zero fields of t.
func WithTimeouts(t Timeouts) ServerOption {
	return func(s *Server) {
		if t.ReadHeader > 0 {
			s.timeouts.ReadHeader = t.ReadHeader
		}
		if t.Read > 0 {
			s.timeouts.Read = t.Read
		}
		if t.Write > 0 {
			s.timeouts.Write = t.Write
		}
		if t.Idle > 0 {
			s.timeouts.Idle = t.Idle
		}
	}
}

// WithShutdownTimeout bounds graceful shutdown. Default 30s.
func WithShutdownTimeout(d time.Duration) ServerOption {
	return func(s *Server) {
		if d > 0 {
			s.shutdownTimeout = d
		}
	}
}

// WithH2C serves HTTP/2 without TLS. Use only in development or behind a
// trusted load balancer.
func WithH2C(enabled bool) ServerOption {
	return func(s *Server) {
		s.h2c = enabled
	}
}

// WithServerLogger logs lifecycle events.
func WithServerLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithShutdownHook runs fn during shutdown, after the listener stops
// accepting requests. Hooks run in reverse registration order.
func WithShutdownHook(fn func(ctx context.Context)) ServerOption {
	return func(s *Server) {
		if fn != nil {
			s.hooks = append(s.hooks, fn)
		}
	}
}

// Server runs an http.Handler until its context is cancelled.
type Server struct {
	handler         http.Handler
	addr            string
	timeouts        Timeouts
	shutdownTimeout time.Duration
	h2c             bool
	logger          *slog.Logger
	hooks           []func(context.Context)

	mu  sync.Mutex
	srv *http.Server
	ln  net.Listener
}

// NewServer returns a server for h.
func NewServer(h http.Handler, opts ...ServerOption) *Server {
	s := &Server{
		handler: h,
		addr:    ":8080",
		timeouts: Timeouts{
			ReadHeader: 2 * time.Second,
			Read:       10 * time.Second,
			Write:      10 * time.Second,
			Idle:       60 * time.Second,
		},
		shutdownTimeout: 30 * time.Second,
		logger:          slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Addr returns the bound address once the server listens, or the
// configured address before that.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.addr
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully within
// the shutdown timeout. A nil return means a clean shutdown.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	h := s.handler
	protocol := "http"
	if s.h2c {
		h = h2c.NewHandler(h, &http2.Server{})
		protocol = "h2c"
	}

	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: s.timeouts.ReadHeader,
		ReadTimeout:       s.timeouts.Read,
		WriteTimeout:      s.timeouts.Write,
		IdleTimeout:       s.timeouts.Idle,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	s.mu.Lock()
	s.srv = srv
	s.ln = ln
	s.mu.Unlock()

	serverErr := make(chan error, 1)
	go func() {
		s.logger.InfoContext(ctx, "server started", "address", ln.Addr().String(), "protocol", protocol)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- fmt.Errorf("%s server failed: %w", protocol, err)
		}
		close(serverErr)
	}()

	select {
	case err, ok := <-serverErr:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
		s.logger.InfoContext(ctx, "server shutting down", "protocol", protocol, "reason", context.Cause(ctx))
	}

	// ctx is already done; the shutdown gets its own deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("%s server forced to shutdown: %w", protocol, err)
	}
	for i := len(s.hooks) - 1; i >= 0; i-- {
		s.hooks[i](shutdownCtx)
	}

	s.logger.InfoContext(shutdownCtx, "server exited", "protocol", protocol)
	return nil
}
