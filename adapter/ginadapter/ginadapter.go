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

// Package ginadapter mounts a [pipeline.Dispatcher] on a gin engine.
//
//	engine := gin.New()
//	engine.GET("/healthz", health)
//	ginadapter.Mount(engine, d)
//
// [Mount] routes every request gin itself does not match into the
// dispatcher. [Handler] gives a plain gin.HandlerFunc for mounting under a
// specific route or group instead.
package ginadapter

import (
	"github.com/gin-gonic/gin"

	"rivaas.dev/pipeline"
	"rivaas.dev/pipeline/adapter/stdhttp"
)

// Attribute keys added to the dispatch context.
const (
	AttrGinContext = "gin_context"
	AttrFullPath   = "gin_full_path"
)

// Handler returns a gin handler dispatching through d. Gin route
// parameters are not passed on; the dispatcher extracts its own.
func Handler(d *pipeline.Dispatcher, opts ...stdhttp.Option) gin.HandlerFunc {
	h := stdhttp.New(d, opts...)

	return func(c *gin.Context) {
		h.Serve(c.Writer, c.Request, map[string]any{
			AttrGinContext: c,
			AttrFullPath:   c.FullPath(),
		})
		c.Abort()
	}
}

// Mount makes d the NoRoute handler of engine.
func Mount(engine *gin.Engine, d *pipeline.Dispatcher, opts ...stdhttp.Option) {
	engine.NoRoute(Handler(d, opts...))
}
