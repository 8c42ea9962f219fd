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

package pipelinetest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"rivaas.dev/pipeline"
	"rivaas.dev/pipeline/adapter/stdhttp"
	"rivaas.dev/pipeline/message"
)

// DefaultTimeout bounds each dispatch unless [WithTimeout] says otherwise.
const DefaultTimeout = 5 * time.Second

// Harness sends requests through a dispatcher.
type Harness struct {
	t          testing.TB
	dispatcher *pipeline.Dispatcher
}

// New compiles handlers with opts. Construction errors fail the test.
func New(t testing.TB, handlers []pipeline.Handler, opts ...pipeline.Option) *Harness {
	t.Helper()

	d, err := pipeline.New(handlers, opts...)
	if err != nil {
		t.Fatalf("pipelinetest: cannot build dispatcher: %v", err)
	}
	return &Harness{t: t, dispatcher: d}
}

// Wrap uses an existing dispatcher.
func Wrap(t testing.TB, d *pipeline.Dispatcher) *Harness {
	return &Harness{t: t, dispatcher: d}
}

// Dispatcher returns the dispatcher under test.
func (h *Harness) Dispatcher() *pipeline.Dispatcher {
	return h.dispatcher
}

// RequestOption adjusts a single dispatch.
type RequestOption func(*requestConfig)

type requestConfig struct {
	ctx     context.Context //nolint:containedctx // per-request test configuration
	timeout time.Duration
	attrs   map[string]any
	headers [][2]string
}

// WithContext uses ctx as the dispatch context.
func WithContext(ctx context.Context) RequestOption {
	return func(c *requestConfig) {
		c.ctx = ctx
	}
}

// WithTimeout bounds the dispatch. A negative d means no timeout.
func WithTimeout(d time.Duration) RequestOption {
	return func(c *requestConfig) {
		c.timeout = d
	}
}

// WithAttribute sets a context attribute before the sweep.
func WithAttribute(key string, value any) RequestOption {
	return func(c *requestConfig) {
		if c.attrs == nil {
			c.attrs = make(map[string]any)
		}
		c.attrs[key] = value
	}
}

// WithHeader adds a request header.
func WithHeader(name, value string) RequestOption {
	return func(c *requestConfig) {
		c.headers = append(c.headers, [2]string{name, value})
	}
}

// Do dispatches req.
func (h *Harness) Do(req message.Request, opts ...RequestOption) *Result {
	h.t.Helper()

	cfg := &requestConfig{ctx: context.Background(), timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(cfg)
	}
	for _, kv := range cfg.headers {
		req = req.WithHeaders(req.Headers.Add(kv[0], kv[1]))
	}

	ctx := cfg.ctx
	if cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.timeout)
		defer cancel()
	}

	c := h.dispatcher.Process(ctx, req, cfg.attrs)
	return &Result{t: h.t, ctx: c}
}

// Get dispatches a GET for path. A query string in path is parsed.
func (h *Harness) Get(path string, opts ...RequestOption) *Result {
	h.t.Helper()
	return h.Do(NewRequest(message.GET, path), opts...)
}

// Post dispatches a POST with body.
func (h *Harness) Post(path string, body any, opts ...RequestOption) *Result {
	h.t.Helper()
	return h.Do(NewRequest(message.POST, path).WithBody(body), opts...)
}

// JSON dispatches body encoded as JSON with the matching content type.
func (h *Harness) JSON(method message.Method, path string, body any, opts ...RequestOption) *Result {
	h.t.Helper()

	data, err := json.Marshal(body)
	if err != nil {
		h.t.Fatalf("pipelinetest: cannot encode JSON body: %v", err)
	}
	req := NewRequest(method, path).
		WithBody(data).
		WithContentType(message.NewContentType("application/json"))
	return h.Do(req, opts...)
}

// ServeHTTP sends r through the net/http adapter and returns the recorded
// response.
func (h *Harness) ServeHTTP(r *http.Request) *http.Response {
	h.t.Helper()

	w := httptest.NewRecorder()
	stdhttp.New(h.dispatcher).ServeHTTP(w, r)
	return w.Result()
}

// NewRequest builds a request, splitting a query string off path.
func NewRequest(method message.Method, path string) message.Request {
	p, query, found := strings.Cut(path, "?")
	req := message.NewRequest(method, p)
	if found {
		req = req.WithQuery(message.ParseQueryString(query))
	}
	return req
}
