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
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rivaas.dev/pipeline"
	"rivaas.dev/pipeline/message"
	"rivaas.dev/pipeline/problem"
)

type item struct {
	Name string `json:"name"`
}

func handlers() []pipeline.Handler {
	return []pipeline.Handler{
		pipeline.Get("/items/{id}", func(c *pipeline.Context) error {
			if err := c.SetHeader("x-item", c.Param("id")); err != nil {
				return err
			}
			return c.OK("item " + c.Param("id") + " " + c.Request().QueryParam("color"))
		}),
		pipeline.Post("/items", func(c *pipeline.Context) error {
			body, _ := c.Request().Body.([]byte)
			c.SetContentType(message.NewContentType("application/json"))
			return c.Created(body)
		}),
		pipeline.Get("/tenant", func(c *pipeline.Context) error {
			return c.OK(c.Attribute("tenant"))
		}),
		pipeline.Get("/who", func(c *pipeline.Context) error {
			return c.OK(c.Request().Header("x-user"))
		}),
		pipeline.Get("/broken", func(*pipeline.Context) error {
			return pipeline.KindIllegalState.New("nope")
		}),
		pipeline.Get("/slow", func(c *pipeline.Context) error {
			<-c.Context().Done()
			return c.Context().Err()
		}),
	}
}

func TestHarness_Get(t *testing.T) {
	t.Parallel()

	h := New(t, handlers())
	h.Get("/items/3?color=red").
		ExpectStatus(message.StatusOK).
		ExpectBody("item 3 red").
		ExpectHeader("x-item", "3").
		ExpectNoFault()
}

func TestHarness_JSON(t *testing.T) {
	t.Parallel()

	h := New(t, handlers())

	var got item
	h.JSON(message.POST, "/items", item{Name: "lamp"}).
		ExpectStatus(message.StatusCreated).
		ExpectContentType("application/json").
		DecodeJSON(&got)
	assert.Equal(t, "lamp", got.Name)
}

func TestHarness_Options(t *testing.T) {
	t.Parallel()

	h := New(t, handlers())
	h.Get("/tenant", WithAttribute("tenant", "acme")).ExpectBody("acme")
	h.Get("/who", WithHeader("x-user", "ada")).ExpectBody("ada")
	h.Post("/items", []byte(`{}`)).ExpectBody("{}")
}

func TestHarness_Fault(t *testing.T) {
	t.Parallel()

	h := New(t, handlers(), pipeline.WithFaultFormatter(problem.NewSimple()))
	r := h.Get("/broken").
		ExpectStatus(message.StatusInternalServerError).
		ExpectBodyContains("nope").
		ExpectFault(pipeline.KindOf(pipeline.KindIllegalState))
	assert.Equal(t, "/broken", r.Context().Path())
}

func TestHarness_Timeout(t *testing.T) {
	t.Parallel()

	h := New(t, handlers())
	h.Get("/slow", WithTimeout(10*time.Millisecond)).
		ExpectFault(pipeline.KindOf(context.DeadlineExceeded))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	h.Get("/slow", WithContext(ctx), WithTimeout(-1)).
		ExpectFault(pipeline.KindOf(context.Canceled))
}

func TestHarness_ServeHTTP(t *testing.T) {
	t.Parallel()

	h := Wrap(t, pipeline.MustNew(handlers()))
	require.NotNil(t, h.Dispatcher())

	resp := h.ServeHTTP(httptest.NewRequest(http.MethodGet, "/items/8", nil))
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "item 8 ", string(body))
	assert.Equal(t, "8", resp.Header.Get("X-Item"))
}

func TestNewRequest(t *testing.T) {
	t.Parallel()

	req := NewRequest(message.GET, "/search?q=go&page=2")
	assert.Equal(t, "/search", req.Path)
	assert.Equal(t, "go", req.QueryParam("q"))
	assert.Equal(t, "2", req.QueryParam("page"))

	req = NewRequest(message.DELETE, "/plain")
	assert.Equal(t, "/plain", req.Path)
	assert.Equal(t, 0, req.Query.Len())
}
