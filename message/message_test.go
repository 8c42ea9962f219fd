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

package message

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMethods(t *testing.T) {
	t.Parallel()

	all := AllMethods()
	assert.Equal(t, 8, all.Len())

	fallback := all.Without(GET, PUT, POST)
	assert.False(t, fallback.Contains(GET))
	assert.False(t, fallback.Contains(PUT))
	assert.True(t, fallback.Contains(OPTIONS))
	assert.Equal(t, 5, fallback.Len())
	assert.Equal(t, 8, all.Len(), "Without must not modify the receiver")

	set := MethodSet(POST, GET)
	assert.Equal(t, []Method{GET, POST}, set.Slice())
	assert.Equal(t, "GET|POST", set.String())
	assert.Equal(t, "*", Methods(0).String())
	assert.True(t, Methods(0).Empty())
	assert.True(t, set.With(PATCH).Contains(PATCH))
	assert.False(t, set.Contains(Method("BREW")))
}

func TestParseMethod(t *testing.T) {
	t.Parallel()

	m, err := ParseMethod(" get ")
	require.NoError(t, err)
	assert.Equal(t, GET, m)

	_, err = ParseMethod("BREW")
	assert.Error(t, err)
}

func TestStatus(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "404 Not Found", StatusNotFound.String())
	assert.Equal(t, "588", Status(588).String())
	assert.True(t, Status(588).Valid())
	assert.False(t, Status(600).Valid())
	assert.False(t, Status(99).Valid())
	assert.True(t, StatusBadRequest.IsError())
	assert.False(t, StatusOK.IsError())
	assert.Equal(t, Status(512), *Status(512).Ptr())
}

func TestFields_CopyOnWrite(t *testing.T) {
	t.Parallel()

	base := NewFields("a", "1")
	added := base.Add("a", "2").Add("b", "3")

	assert.Equal(t, []string{"1"}, base.Values("a"))
	assert.Equal(t, []string{"1", "2"}, added.Values("a"))
	assert.Equal(t, []string{"a", "b"}, added.Keys())

	replaced := added.Set("a", "x")
	assert.Equal(t, "x", replaced.Get("a"))
	assert.Equal(t, "1", added.Get("a"))

	deleted := replaced.Del("a")
	assert.False(t, deleted.Has("a"))
	assert.True(t, replaced.Has("a"))
	assert.Equal(t, deleted, deleted.Del("missing"))

	merged := NewFields("a", "1").Merge(NewFields("b", "2", "a", "3"))
	assert.Equal(t, []string{"a", "b"}, merged.Keys())
	assert.Equal(t, []string{"1", "3"}, merged.Values("a"))
}

func TestHeaders_CaseInsensitive(t *testing.T) {
	t.Parallel()

	h := NewHeaders("X-Trace", "1").Add("x-trace", "2")
	assert.Equal(t, []string{"x-trace"}, h.Names())
	assert.Equal(t, []string{"1", "2"}, h.Values("X-TRACE"))
	assert.True(t, h.Has("x-Trace"))

	merged := NewHeaders("b-all", "true").Merge(NewHeaders("b-nested", "true"))
	assert.True(t, merged.Has("b-all"))
	assert.True(t, merged.Has("b-nested"))

	std := merged.ToHTTP()
	assert.Equal(t, "true", std.Get("B-All"))

	back := HeadersFromHTTP(http.Header{"Content-Type": {"text/plain"}})
	assert.Equal(t, "text/plain", back.Get("content-type"))
	assert.Equal(t, []string{"content-type"}, back.Names())
}

func TestContentType(t *testing.T) {
	t.Parallel()

	ct, err := ParseContentType("text/html; charset=utf-8")
	require.NoError(t, err)
	assert.Equal(t, "text/html", ct.MediaType)
	assert.Equal(t, "utf-8", ct.Charset)
	assert.Equal(t, "text/html; charset=utf-8", ct.String())

	_, err = ParseContentType("")
	assert.Error(t, err)

	accept := ParseAccept("text/plain, text/html;q=0.5, ")
	require.Len(t, accept, 2)
	assert.Equal(t, "text/plain", accept[0].MediaType)
	assert.InDelta(t, 0.5, accept[1].Q, 0.001)

	css, ok := ContentTypeFor(".css")
	require.True(t, ok)
	assert.Equal(t, "text/css", css.MediaType)
}

func TestRequest(t *testing.T) {
	t.Parallel()

	req := NewRequest(GET, "/users").
		WithQuery(ParseQueryString("page=2")).
		WithHeader("X-Fake", "header").
		WithCookies(Cookie{Name: "session", Value: "abc"})

	assert.Equal(t, "header", req.Header("x-fake"))
	assert.Equal(t, "2", req.QueryParam("page"))
	assert.Equal(t, "http://localhost/users?page=2", req.URL())
	assert.Equal(t, int64(-1), req.ContentLength)

	c, ok := req.Cookie("session")
	require.True(t, ok)
	assert.Equal(t, "abc", c.Value)

	_, ok = req.Cookie("missing")
	assert.False(t, ok)

	moved := req.WithPath("/other").WithMethod(POST)
	assert.Equal(t, "/users", req.Path)
	assert.Equal(t, POST, moved.Method)

	secure := req
	secure.Protocol = HTTPS
	secure.Port = 8443
	assert.Equal(t, "https://localhost:8443/users?page=2", secure.URL())
}

func TestResponse_Body(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    any
		want    string
		wantErr bool
	}{
		{name: "nil", body: nil, want: ""},
		{name: "string", body: "text", want: "text"},
		{name: "bytes", body: []byte("text"), want: "text"},
		{name: "int", body: 42, want: "42"},
		{name: "int64", body: int64(1234567), want: "1234567"},
		{name: "error", body: errors.New("boom"), want: "boom"},
		{name: "struct", body: struct{ A int }{A: 1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b, err := NewResponse(StatusOK).WithBody(tt.body).BodyBytes()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedBody)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(b))
		})
	}
}

func TestResponse_CopyOnWrite(t *testing.T) {
	t.Parallel()

	base := NewResponse(StatusNotFound).AddHeader("b-all", "true")
	next := base.AddHeader("b-nested", "true").WithStatus(StatusOK).WithReason("Fine")

	assert.False(t, base.Headers.Has("b-nested"))
	assert.True(t, next.Headers.Has("b-all"))
	assert.True(t, next.Headers.Has("b-nested"))
	assert.Equal(t, StatusNotFound, base.Status)
	assert.Equal(t, "Fine", next.ReasonPhrase())
	assert.Equal(t, "Not Found", base.ReasonPhrase())

	replaced := next.SetHeader("b-all", "false")
	assert.Equal(t, []string{"false"}, replaced.Headers.Values("b-all"))

	withCookie := base.WithCookie(Cookie{Name: "a"})
	assert.Empty(t, base.Cookies)
	assert.Len(t, withCookie.Cookies, 1)
	assert.Equal(t, "{1}", NewResponse(StatusOK).WithBody(struct{ A int }{1}).BodyString())
}
