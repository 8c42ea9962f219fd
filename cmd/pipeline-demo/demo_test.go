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

package main

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/base64"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"rivaas.dev/pipeline"
	"rivaas.dev/pipeline/config"
	"rivaas.dev/pipeline/message"
	"rivaas.dev/pipeline/metrics"
	"rivaas.dev/pipeline/pipelinetest"
)

func TestHandlers(t *testing.T) {
	t.Parallel()

	h := pipelinetest.New(t, handlers(newUserStore(), assets(), nil))

	tests := []struct {
		name     string
		path     string
		status   message.Status
		contains string
	}{
		{name: "health", path: "/health", status: message.StatusOK, contains: "ok"},
		{name: "hello", path: "/hello/world", status: message.StatusOK, contains: "Hello world!"},
		{name: "user found", path: "/users/1", status: message.StatusOK, contains: `"name":"ada"`},
		{name: "user missing", path: "/users/99", status: message.StatusNotFound, contains: "user 99 not found"},
		{name: "bad user id", path: "/users/abc", status: message.StatusBadRequest, contains: "user id must be a number"},
		{name: "static index", path: "/web/", status: message.StatusOK, contains: "<h1>pipeline demo</h1>"},
		{name: "static missing", path: "/web/missing.txt", status: message.StatusNotFound, contains: "missing.txt not found"},
		{name: "no route", path: "/nothing", status: message.StatusNotFound},
		{name: "admin needs credentials", path: "/admin/stats", status: message.StatusUnauthorized, contains: "missing credentials"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res := h.Get(tt.path).ExpectStatus(tt.status)
			if tt.contains != "" {
				res.ExpectBodyContains(tt.contains)
			}
			assert.NotEmpty(t, res.Header(requestIDHeader))
		})
	}
}

func TestHandlers_RequestIDPropagates(t *testing.T) {
	t.Parallel()

	h := pipelinetest.New(t, handlers(newUserStore(), assets(), nil))
	res := h.Get("/health", pipelinetest.WithHeader(requestIDHeader, "abc-123"))

	res.ExpectHeader(requestIDHeader, "abc-123")
	assert.Equal(t, "abc-123", res.Context().Attribute("request_id"))
}

func TestHandlers_AdminStats(t *testing.T) {
	t.Parallel()

	h := pipelinetest.New(t, handlers(newUserStore(), assets(), nil))
	auth := "Basic " + base64.StdEncoding.EncodeToString([]byte("admin:admin"))

	var stats map[string]any
	h.Get("/admin/stats", pipelinetest.WithHeader("authorization", auth)).
		ExpectStatus(message.StatusOK).
		ExpectHeader("x-frame-options", "SAMEORIGIN").
		DecodeJSON(&stats)
	assert.Equal(t, map[string]any{"users": float64(1), "by": "admin"}, stats)
}

func TestHandlers_CustomMetrics(t *testing.T) {
	t.Parallel()

	rec, reader := metrics.TestingRecorder(t)
	h := pipelinetest.New(t, handlers(newUserStore(), assets(), rec))
	bad := "Basic " + base64.StdEncoding.EncodeToString([]byte("admin:nope"))

	h.Get("/admin/stats").ExpectStatus(message.StatusUnauthorized)
	h.Get("/admin/stats", pipelinetest.WithHeader("authorization", bad)).
		ExpectStatus(message.StatusUnauthorized)
	h.Get("/health").ExpectStatus(message.StatusOK)

	got, ok := metrics.Collect(t, reader)[authFailures]
	require.True(t, ok)
	sum, ok := got.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	assert.Equal(t, int64(2), total)

	h.JSON(message.POST, "/users", map[string]string{"name": "grace"}).
		ExpectStatus(message.StatusCreated)
	got, ok = metrics.Collect(t, reader)[userPayloadSize]
	require.True(t, ok)
	hist, ok := got.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(1), hist.DataPoints[0].Count)
}

func TestHandlers_Gzip(t *testing.T) {
	t.Parallel()

	h := pipelinetest.New(t, handlers(newUserStore(), assets(), nil))

	res := h.Get("/web/index.html", pipelinetest.WithHeader("accept-encoding", "gzip")).
		ExpectStatus(message.StatusOK).
		ExpectHeader("content-encoding", "gzip")
	body, err := res.Response().BodyBytes()
	require.NoError(t, err)
	zr, err := gzip.NewReader(bytes.NewReader(body))
	require.NoError(t, err)
	plain, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Contains(t, string(plain), "<h1>pipeline demo</h1>")

	res = h.Get("/web/index.html").ExpectBodyContains("<h1>pipeline demo</h1>")
	assert.Empty(t, res.Header("content-encoding"))

	res = h.Get("/hello/ada", pipelinetest.WithHeader("accept-encoding", "gzip")).
		ExpectBody("Hello ada!")
	assert.Empty(t, res.Header("content-encoding"))
}

func TestHandlers_CORSPreflight(t *testing.T) {
	t.Parallel()

	h := pipelinetest.New(t, handlers(newUserStore(), assets(), nil))
	req := pipelinetest.NewRequest(message.OPTIONS, "/users").
		WithHeader("origin", "https://app.test").
		WithHeader("access-control-request-method", "POST")

	h.Do(req).
		ExpectStatus(message.StatusNoContent).
		ExpectHeader("access-control-allow-origin", "*").
		ExpectHeader("access-control-allow-methods", "GET, POST")
}

func TestHandlers_CreateUser(t *testing.T) {
	t.Parallel()

	users := newUserStore()
	h := pipelinetest.New(t, handlers(users, assets(), nil))

	var created user
	h.JSON(message.POST, "/users", map[string]string{"name": "grace"}).
		ExpectStatus(message.StatusCreated).
		ExpectContentType("application/json").
		DecodeJSON(&created)
	assert.Equal(t, user{ID: 2, Name: "grace"}, created)

	stored, ok := users.get(2)
	require.True(t, ok)
	assert.Equal(t, "grace", stored.Name)

	h.JSON(message.POST, "/users", map[string]string{}).
		ExpectStatus(message.StatusUnprocessableEntity).
		ExpectBodyContains(`"path":"name"`).
		ExpectBodyContains("is required")
	h.Post("/users", "{bad").
		ExpectStatus(message.StatusBadRequest).
		ExpectBodyContains("invalid json")
}

func TestHandlers_PanicIsUnrecovered(t *testing.T) {
	t.Parallel()

	h := pipelinetest.New(t, handlers(newUserStore(), assets(), nil))
	h.Get("/boom").
		ExpectStatus(message.StatusInternalServerError).
		ExpectFault(pipeline.KindOf(pipeline.KindPanic))
}

func loadConfig(t *testing.T, yaml string) *config.Config {
	t.Helper()

	cfg, err := config.Load(t.Context(), config.WithContent([]byte(yaml), "yaml"), config.WithoutEnv())
	require.NoError(t, err)
	return cfg
}

func TestNewDemo_Prometheus(t *testing.T) {
	t.Parallel()

	cfg := loadConfig(t, `
service:
  name: demo-test
  environment: test
metrics:
  provider: prometheus
  path: /metrics
tracing:
  provider: noop
errors:
  format: simple
`)

	d, err := newDemo(cfg, io.Discard)
	require.NoError(t, err)
	require.NotNil(t, d.metrics)
	require.NotNil(t, d.tracer)

	handler, err := d.httpHandler()
	require.NoError(t, err)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/hello/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pipeline_dispatch")

	require.NoError(t, d.metrics.Shutdown(t.Context()))
	require.NoError(t, d.tracer.Shutdown(t.Context()))
}

func TestNewDemo_Disabled(t *testing.T) {
	t.Parallel()

	d, err := newDemo(loadConfig(t, "service:\n  name: plain\n"), io.Discard)
	require.NoError(t, err)
	assert.Nil(t, d.metrics)
	assert.Nil(t, d.tracer)

	handler, err := d.httpHandler()
	require.NoError(t, err)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPrintBanner(t *testing.T) {
	t.Parallel()

	cfg := loadConfig(t, `
service:
  name: banner
  version: v1.2.3
logging:
  access: true
`)
	d, err := newDemo(cfg, io.Discard)
	require.NoError(t, err)

	var buf bytes.Buffer
	printBanner(&buf, d)
	out := buf.String()

	assert.Contains(t, out, "v1.2.3")
	assert.Contains(t, out, "http://0.0.0.0:8080")
	assert.Contains(t, out, "Disabled")
	assert.Contains(t, out, "/users/{id}")
	assert.Contains(t, out, "/hello/{name}")
}

func TestServer_ServesAndStops(t *testing.T) {
	t.Parallel()

	d, err := newDemo(loadConfig(t, "server:\n  shutdown_timeout: 2s\n"), io.Discard)
	require.NoError(t, err)
	srv, err := d.server()
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/hello/server")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, err)
	assert.Equal(t, "Hello server!", string(body))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
