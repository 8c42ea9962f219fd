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
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/http2"

	"rivaas.dev/pipeline"
	"rivaas.dev/pipeline/message"
)

func testDispatcher(t *testing.T) *pipeline.Dispatcher {
	t.Helper()

	d, err := pipeline.New([]pipeline.Handler{
		pipeline.Get("/users/{id}", func(c *pipeline.Context) error {
			if err := c.SetHeader("x-user", c.Param("id")); err != nil {
				return err
			}
			c.SetCookie(message.Cookie{Name: "seen", Value: "1", Path: "/"})
			c.SetContentType(message.NewContentType("text/plain", "utf-8"))
			return c.OK("user " + c.Param("id"))
		}),
		pipeline.Post("/form", func(c *pipeline.Context) error {
			return c.OK(c.Request().FormParam("name"))
		}),
		pipeline.Post("/upload", func(c *pipeline.Context) error {
			part, ok := c.Request().Part("file")
			if !ok {
				return c.BadRequest("no file")
			}
			return c.OK(part.Filename + ":" + string(part.Body.([]byte)))
		}),
		pipeline.Get("/info", func(c *pipeline.Context) error {
			req := c.Request()
			return c.OK(string(req.Protocol) + " " + c.Attribute(AttrRemoteAddr).(string))
		}),
		pipeline.Get("/boom", func(*pipeline.Context) error { return errors.New("kaput") }),
		pipeline.Get("/object", func(c *pipeline.Context) error { return c.OK(struct{}{}) }),
	})
	require.NoError(t, err)
	return d
}

func TestHandler_ServeHTTP(t *testing.T) {
	t.Parallel()

	h := New(testDispatcher(t))

	tests := []struct {
		name        string
		req         func() *http.Request
		wantStatus  int
		wantBody    string
		wantHeaders map[string]string
	}{
		{
			name:       "route with params",
			req:        func() *http.Request { return httptest.NewRequest(http.MethodGet, "/users/42", nil) },
			wantStatus: http.StatusOK,
			wantBody:   "user 42",
			wantHeaders: map[string]string{
				"X-User":       "42",
				"Content-Type": "text/plain; charset=utf-8",
				"Set-Cookie":   "seen=1; Path=/",
			},
		},
		{
			name: "urlencoded form",
			req: func() *http.Request {
				r := httptest.NewRequest(http.MethodPost, "/form", strings.NewReader(url.Values{"name": {"ada"}}.Encode()))
				r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
				return r
			},
			wantStatus: http.StatusOK,
			wantBody:   "ada",
		},
		{
			name:       "unmatched",
			req:        func() *http.Request { return httptest.NewRequest(http.MethodGet, "/nothing", nil) },
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "fault",
			req:        func() *http.Request { return httptest.NewRequest(http.MethodGet, "/boom", nil) },
			wantStatus: http.StatusInternalServerError,
			wantBody:   "kaput",
		},
		{
			name:       "unsupported body",
			req:        func() *http.Request { return httptest.NewRequest(http.MethodGet, "/object", nil) },
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "unknown method",
			req:        func() *http.Request { return httptest.NewRequest("BREW", "/users/1", nil) },
			wantStatus: http.StatusNotImplemented,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			h.ServeHTTP(w, tt.req())

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, w.Body.String())
			}
			for k, v := range tt.wantHeaders {
				assert.Equal(t, v, w.Header().Get(k), k)
			}
		})
	}
}

func TestHandler_Multipart(t *testing.T) {
	t.Parallel()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "notes.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("title", "greeting"))
	require.NoError(t, mw.Close())
	payload := body.Bytes()

	r := httptest.NewRequest(http.MethodPost, "/upload", bytes.NewReader(payload))
	r.Header.Set("Content-Type", mw.FormDataContentType())

	req, err := RequestFromHTTP(r, 0)
	require.NoError(t, err)
	require.Len(t, req.Parts, 2)
	assert.Equal(t, "greeting", req.FormParam("title"))

	r = httptest.NewRequest(http.MethodPost, "/upload", bytes.NewReader(payload))
	r.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	New(testDispatcher(t)).ServeHTTP(w, r)
	assert.Equal(t, "notes.txt:hello", w.Body.String())
}

func TestHandler_BodyLimit(t *testing.T) {
	t.Parallel()

	h := New(testDispatcher(t), WithMaxBodyBytes(4))
	r := httptest.NewRequest(http.MethodPost, "/form", strings.NewReader("name=too-long"))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestHandler_Attributes(t *testing.T) {
	t.Parallel()

	var seen any
	d := pipeline.MustNew([]pipeline.Handler{
		pipeline.On("*", func(c *pipeline.Context) error {
			seen = c.Attribute("tenant")
			return c.OK(nil)
		}),
	})
	h := New(d, WithAttributes(func(r *http.Request) map[string]any {
		return map[string]any{"tenant": r.Header.Get("X-Tenant")}
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Tenant", "acme")
	h.ServeHTTP(httptest.NewRecorder(), r)
	assert.Equal(t, "acme", seen)
}

func TestRequestFromHTTP(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "https://example.com:8443/a/b?x=1&x=2&y", nil)
	r.Header.Set("Accept", "application/json, text/plain;q=0.5")
	r.Header.Set("X-Trace", "t1")
	r.AddCookie(&http.Cookie{Name: "session", Value: "abc"})

	req, err := RequestFromHTTP(r, 0)
	require.NoError(t, err)

	assert.Equal(t, message.GET, req.Method)
	assert.Equal(t, message.HTTPS, req.Protocol)
	assert.Equal(t, "example.com", req.Host)
	assert.Equal(t, 8443, req.Port)
	assert.Equal(t, "/a/b", req.Path)
	assert.Equal(t, []string{"1", "2"}, req.Query.Values("x"))
	assert.Equal(t, "t1", req.Header("x-trace"))
	require.Len(t, req.Accept, 2)
	assert.InDelta(t, 0.5, req.Accept[1].Q, 1e-9)
	cookie, ok := req.Cookie("session")
	require.True(t, ok)
	assert.Equal(t, "abc", cookie.Value)
	assert.Nil(t, req.Body)
}

func TestSplitHost(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in       string
		proto    message.Protocol
		wantHost string
		wantPort int
	}{
		{"example.com", message.HTTP, "example.com", 80},
		{"example.com", message.HTTPS, "example.com", 443},
		{"example.com:9000", message.HTTP, "example.com", 9000},
		{"[::1]:8080", message.HTTP, "::1", 8080},
		{"", message.HTTP, "localhost", 80},
	}
	for _, tt := range tests {
		host, port := splitHost(tt.in, tt.proto)
		assert.Equal(t, tt.wantHost, host, tt.in)
		assert.Equal(t, tt.wantPort, port, tt.in)
	}
}

func TestProtocolOf(t *testing.T) {
	t.Parallel()

	plain := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, message.HTTP, protocolOf(plain))

	h2 := httptest.NewRequest(http.MethodGet, "/", nil)
	h2.ProtoMajor = 2
	assert.Equal(t, message.H2C, protocolOf(h2))

	h2.TLS = &tls.ConnectionState{}
	assert.Equal(t, message.HTTP2, protocolOf(h2))
}

func TestWriteResponse(t *testing.T) {
	t.Parallel()

	resp := message.NewResponse(message.StatusCreated).
		WithBody([]byte("made")).
		AddHeader("x-a", "1").
		AddHeader("x-a", "2").
		WithCookie(message.Cookie{Name: "gone", MaxAge: -1})

	w := httptest.NewRecorder()
	require.NoError(t, WriteResponse(w, resp))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, []string{"1", "2"}, w.Header().Values("X-A"))
	assert.Contains(t, w.Header().Get("Set-Cookie"), "Max-Age=0")
	assert.Equal(t, "made", w.Body.String())

	w = httptest.NewRecorder()
	err := WriteResponse(w, message.NewResponse(message.StatusOK).WithBody(3.14))
	require.ErrorIs(t, err, message.ErrUnsupportedBody)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestServer_GracefulShutdown(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	var hookCalled atomic.Bool
	srv := NewServer(New(testDispatcher(t)),
		WithShutdownTimeout(5*time.Second),
		WithShutdownHook(func(context.Context) { hookCalled.Store(true) }),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/users/7")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, "user 7", string(body))
	assert.Equal(t, ln.Addr().String(), srv.Addr())

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
	assert.True(t, hookCalled.Load())
}

func TestServer_H2C(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := NewServer(New(testDispatcher(t)), WithH2C(true))
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = srv.Serve(ctx, ln) }()

	client := &http.Client{Transport: &http2.Transport{
		AllowHTTP: true,
		DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, network, addr)
		},
	}}

	resp, err := client.Get("http://" + ln.Addr().String() + "/info")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, 2, resp.ProtoMajor)
	assert.True(t, strings.HasPrefix(string(body), "H2C 127.0.0.1:"), string(body))
}

func TestServer_RunListenError(t *testing.T) {
	t.Parallel()

	err := NewServer(http.NotFoundHandler(), WithAddress("256.0.0.1:bad")).Run(context.Background())
	require.Error(t, err)
}
