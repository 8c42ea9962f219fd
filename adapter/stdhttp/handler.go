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
	"errors"
	"log/slog"
	"net/http"

	"rivaas.dev/pipeline"
)

// Attribute keys set on every dispatch context by [Handler].
const (
	AttrRemoteAddr  = "remote_addr"
	AttrHTTPRequest = "http_request"
)

// Option configures a [Handler].
type Option func(*Handler)

// WithLogger logs conversion and write failures.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithMaxBodyBytes limits request bodies. Larger bodies are answered with
// 413 before reaching the dispatcher.
func WithMaxBodyBytes(n int64) Option {
	return func(h *Handler) {
		h.maxBody = n
	}
}

// WithAttributes adds attributes derived from the raw request to each
// dispatch context.
func WithAttributes(fn func(*http.Request) map[string]any) Option {
	return func(h *Handler) {
		h.attrs = fn
	}
}

// Handler serves HTTP requests through a dispatcher.
type Handler struct {
	dispatcher *pipeline.Dispatcher
	logger     *slog.Logger
	maxBody    int64
	attrs      func(*http.Request) map[string]any
}

var _ http.Handler = (*Handler)(nil)

// New returns a handler for d.
func New(d *pipeline.Dispatcher, opts ...Option) *Handler {
	h := &Handler{
		dispatcher: d,
		logger:     slog.New(slog.DiscardHandler),
		maxBody:    DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Attributes builds the attribute map for r.
func (h *Handler) Attributes(r *http.Request) map[string]any {
	attrs := map[string]any{
		AttrRemoteAddr:  r.RemoteAddr,
		AttrHTTPRequest: r,
	}
	if h.attrs != nil {
		for k, v := range h.attrs(r) {
			attrs[k] = v
		}
	}
	return attrs
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.Serve(w, r, nil)
}

// Serve dispatches r and writes the response to w. extra is merged into
// the attributes built by [Handler.Attributes]; framework adapters use it
// to expose their own context. The final dispatch context is returned, or
// nil when r could not be converted.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request, extra map[string]any) *pipeline.Context {
	req, err := RequestFromHTTP(r, h.maxBody)
	if err != nil {
		h.logger.WarnContext(r.Context(), "rejected request",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		WriteError(w, err)
		return nil
	}

	attrs := h.Attributes(r)
	for k, v := range extra {
		attrs[k] = v
	}

	c := h.dispatcher.Process(r.Context(), req, attrs)
	if err := WriteResponse(w, c.Response()); err != nil {
		h.logger.ErrorContext(r.Context(), "write response failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
	}
	return c
}

// WriteError answers a request that could not be converted.
func WriteError(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, ErrUnsupportedMethod):
		status = http.StatusNotImplemented
	case errors.Is(err, ErrBodyTooLarge):
		status = http.StatusRequestEntityTooLarge
	}
	http.Error(w, err.Error(), status)
}
