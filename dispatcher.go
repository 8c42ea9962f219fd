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

package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"slices"

	"rivaas.dev/pipeline/message"
	"rivaas.dev/pipeline/problem"
)

// noopLogger is used when no logger is configured.
var noopLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Dispatcher runs contexts through a flattened handler list.
//
// A dispatch is a single forward sweep over the nodes in declaration
// order. Each node whose predicate matches the live context runs once:
//
//   - A callback error, or a panic, becomes the pending fault. The sweep
//     continues, but routes and filters that do not target faults are
//     skipped while it is pending.
//   - A callback that runs while a fault is pending and sets a status
//     clears the fault. A handler that only inspects the fault leaves it
//     for the next one.
//   - When the sweep ends with a fault still pending, the fault formatter
//     synthesizes the response (500 with the fault message by default).
//
// A Dispatcher is immutable after [New] and safe for concurrent use. Each
// dispatch works on its own [Context].
type Dispatcher struct {
	handlers          []Handler
	nodes             []Node
	logger            *slog.Logger
	unchecked         bool
	formatter         problem.Formatter
	recorders         []Recorder
	defaultStatus     message.Status
	diagnostics       DiagnosticHandler
	checkCancellation bool
}

// New flattens handlers and compiles every pattern. Pattern errors are
// returned here so a misconfigured server never starts.
//
// Example:
//
//	d, err := pipeline.New([]pipeline.Handler{
//	    pipeline.Filter("*", logRequest),
//	    pipeline.Get("/hello/{name}", hello),
//	    pipeline.Exception(nil, handleCodedError),
//	})
func New(handlers []Handler, opts ...Option) (*Dispatcher, error) {
	d := &Dispatcher{
		handlers:          slices.Clone(handlers),
		logger:            noopLogger,
		formatter:         problem.NewPlain(),
		defaultStatus:     message.StatusNotFound,
		checkCancellation: true,
	}
	for _, opt := range opts {
		opt(d)
	}

	if !d.defaultStatus.Valid() {
		return nil, fmt.Errorf("pipeline: invalid default status %d", int(d.defaultStatus))
	}

	root := &GroupHandler{handlers: d.handlers}
	nodes, err := root.Flatten()
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	d.nodes = nodes
	d.diagnose(d.handlers)

	return d, nil
}

// MustNew is like [New] but panics on error.
func MustNew(handlers []Handler, opts ...Option) *Dispatcher {
	d, err := New(handlers, opts...)
	if err != nil {
		panic(err)
	}
	return d
}

// Handlers returns the handler tree the dispatcher was built from.
func (d *Dispatcher) Handlers() []Handler {
	return slices.Clone(d.handlers)
}

// Nodes returns the flattened nodes in sweep order.
func (d *Dispatcher) Nodes() []Node {
	return slices.Clone(d.nodes)
}

// NewContext creates a context configured for this dispatcher: its
// response starts with the default status.
func (d *Dispatcher) NewContext(ctx context.Context, req message.Request, attrs map[string]any) *Context {
	c := NewContext(ctx, req, attrs)
	c.response = message.NewResponse(d.defaultStatus)
	return c
}

// Process dispatches req and returns the final context.
func (d *Dispatcher) Process(ctx context.Context, req message.Request, attrs map[string]any) *Context {
	return d.Run(d.NewContext(ctx, req, attrs))
}

// Run sweeps c through the node list and returns it. Run never panics
// because of a callback and never returns a request-caused error: faults
// end up in the response.
func (d *Dispatcher) Run(c *Context) *Context {
	c.logger = d.logger
	c.unchecked = d.unchecked

	var rec recording
	c.ctx, rec = startRecording(c.ctx, d.recorders, c.request)

	cancelled := false
	for i := range d.nodes {
		node := &d.nodes[i]

		if d.checkCancellation && !cancelled {
			if err := c.ctx.Err(); err != nil {
				cancelled = true
				if c.fault == nil {
					c.fault = err
				}
				d.logger.WarnContext(c.ctx, "dispatch cancelled",
					"path", c.request.Path,
					"index", node.index,
					"error", err,
				)
			}
		}
		if cancelled && node.kind != NodeAfter {
			continue
		}

		if !node.allowed(c) {
			continue
		}
		params, ok := node.predicate.Match(c)
		if !ok {
			continue
		}

		c.index = node.index
		c.params = params
		c.route = node.Pattern()
		c.responded = false
		pending := c.fault != nil

		d.logger.DebugContext(c.ctx, "node matched",
			"index", node.index,
			"node", node.String(),
			"path", c.request.Path,
		)

		err := d.invoke(node, c)
		switch {
		case err != nil:
			c.fault = err
			d.logger.WarnContext(c.ctx, "callback fault",
				"index", node.index,
				"node", node.String(),
				"error", err,
			)
		case pending && c.responded:
			d.logger.DebugContext(c.ctx, "fault recovered",
				"index", node.index,
				"status", c.response.Status.Code(),
				"fault", c.fault,
			)
			c.fault = nil
		}

		rec.node(c.ctx, *node, err)
	}

	if c.fault != nil {
		d.logger.ErrorContext(c.ctx, "unrecovered fault",
			"method", string(c.request.Method),
			"path", c.request.Path,
			"error", c.fault,
		)
		c.response = d.fallback(c)
	}

	rec.end(c.ctx, c)
	return c
}

// invoke runs the callback, converting a panic into a [KindPanic] fault.
func (d *Dispatcher) invoke(node *Node, c *Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicFault(r)
			d.logger.ErrorContext(c.ctx, "panic recovered",
				"index", node.index,
				"node", node.String(),
				"panic", r,
				"stack", string(debug.Stack()),
			)
		}
	}()

	return node.callback(c)
}

// fallback formats the unrecovered fault. Headers and cookies set by
// earlier handlers are kept.
func (d *Dispatcher) fallback(c *Context) message.Response {
	resp := d.formatter.Format(c.request, c.fault)
	resp.Headers = c.response.Headers.Merge(resp.Headers)
	resp.Cookies = append(slices.Clone(c.response.Cookies), resp.Cookies...)
	return resp
}

// Process runs cb alone against req, without predicates, and returns the
// final context. Faults are handled as in a full dispatch.
//
// Example:
//
//	c := pipeline.Process(hello, message.NewRequest(message.GET, "/hello/bob"), nil)
//	fmt.Println(c.Status(), c.Response().BodyString())
func Process(cb Callback, req message.Request, attrs map[string]any) *Context {
	return MustNew([]Handler{On("*", cb)}).Process(context.Background(), req, attrs)
}
