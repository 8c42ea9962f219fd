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

// Package echoadapter mounts a [pipeline.Dispatcher] on an echo server.
//
//	e := echo.New()
//	echoadapter.Mount(e, "/api", d)
package echoadapter

import (
	"github.com/labstack/echo/v4"

	"rivaas.dev/pipeline"
	"rivaas.dev/pipeline/adapter/stdhttp"
)

// AttrEchoContext is the attribute key holding the echo.Context.
const AttrEchoContext = "echo_context"

// Handler returns an echo handler dispatching through d. The dispatcher
// sees the full request path.
func Handler(d *pipeline.Dispatcher, opts ...stdhttp.Option) echo.HandlerFunc {
	h := stdhttp.New(d, opts...)

	return func(c echo.Context) error {
		h.Serve(c.Response(), c.Request(), map[string]any{AttrEchoContext: c})
		return nil
	}
}

// Mount routes every method under prefix to d. An empty prefix mounts
// at the root.
func Mount(e *echo.Echo, prefix string, d *pipeline.Dispatcher, opts ...stdhttp.Option) {
	h := Handler(d, opts...)
	e.Any(prefix+"/*", h)
	if prefix != "" {
		e.Any(prefix, h)
	}
}
