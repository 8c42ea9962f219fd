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

// Package pipeline dispatches HTTP requests through an ordered list of
// handlers.
//
// Handlers are declared as a tree: routes ([On], [Get], [Post], ...),
// filters ([Filter]), after handlers ([After], [Exception]) and groups
// ([Path]) that prepend a prefix to everything below them. [New] flattens
// the tree once into an ordered node list; [Dispatcher.Run] then sweeps a
// [Context] through that list, running every node whose predicate matches.
//
// # Sweep Rules
//
//   - Nodes run in declaration order, each at most once per dispatch.
//   - A predicate checks, in order, the method set, the pending fault, the
//     current response status and the path pattern.
//   - Path parameters are bound per node from that node's pattern.
//   - Errors returned by callbacks, and panics, become the pending fault.
//     Routes and filters without a fault condition are skipped while a
//     fault is pending. After handlers always run.
//   - A node that runs while a fault is pending and sets a status clears
//     the fault.
//   - A fault still pending at the end is turned into the response by the
//     configured [problem.Formatter].
//
// The response starts with status 404, so a status handler on 404 declared
// last acts as the "no route matched" fallback.
//
// # Faults
//
// Faults are plain Go errors. [ErrorKind] gives them a hierarchy that
// errors.Is understands, so a handler declared for a parent kind catches
// faults of every derived kind:
//
//	var ErrStorage = pipeline.NewErrorKind("storage", pipeline.KindRuntime)
//
//	pipeline.ExceptionKind(ErrStorage, nil, func(c *pipeline.Context) error {
//	    return c.Send(503, "storage unavailable")
//	})
//
// # Example
//
//	d := pipeline.MustNew([]pipeline.Handler{
//	    pipeline.Filter("*", func(c *pipeline.Context) error {
//	        return c.AddHeader("x-server", "pipeline")
//	    }),
//	    pipeline.Path("/api",
//	        pipeline.Get("/hello/{name}", func(c *pipeline.Context) error {
//	            return c.OK("Hello " + c.Param("name"))
//	        }),
//	    ),
//	    pipeline.OnStatus(404, "*", func(c *pipeline.Context) error {
//	        return c.NotFound("nothing here")
//	    }),
//	})
//
//	c := d.Process(ctx, message.NewRequest(message.GET, "/api/hello/bob"), nil)
//
// Transport adapters for net/http, gin, echo and AWS Lambda live under
// adapter/.
package pipeline
