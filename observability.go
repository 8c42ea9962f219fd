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

	"rivaas.dev/pipeline/message"
)

// Recorder observes the dispatch lifecycle. Metrics and tracing
// integrations implement it; the dispatcher itself has no dependency on
// either.
//
// The state returned by OnDispatchStart is passed back unchanged to the
// other two methods of the same recorder, which lets implementations keep
// per-dispatch data (a span, a start time) without allocating shared maps.
type Recorder interface {
	// OnDispatchStart is called before the first node is evaluated. The
	// returned context replaces the dispatch context, so trace spans
	// started here are visible to callbacks through [Context.Context].
	OnDispatchStart(ctx context.Context, req message.Request) (context.Context, any)

	// OnNode is called after every callback that ran, with the fault it
	// produced (nil when the callback succeeded).
	OnNode(ctx context.Context, state any, node Node, err error)

	// OnDispatchEnd is called once the sweep and the fault fallback are
	// done. c holds the final response; c.Fault() is non-nil when the
	// response was synthesized from an unrecovered fault.
	OnDispatchEnd(ctx context.Context, state any, c *Context)
}

// RecorderFuncs builds a [Recorder] from optional functions. Nil fields
// are skipped.
type RecorderFuncs struct {
	Start func(ctx context.Context, req message.Request) (context.Context, any)
	Node  func(ctx context.Context, state any, node Node, err error)
	End   func(ctx context.Context, state any, c *Context)
}

// OnDispatchStart implements [Recorder].
func (r RecorderFuncs) OnDispatchStart(ctx context.Context, req message.Request) (context.Context, any) {
	if r.Start == nil {
		return ctx, nil
	}
	return r.Start(ctx, req)
}

// OnNode implements [Recorder].
func (r RecorderFuncs) OnNode(ctx context.Context, state any, node Node, err error) {
	if r.Node != nil {
		r.Node(ctx, state, node, err)
	}
}

// OnDispatchEnd implements [Recorder].
func (r RecorderFuncs) OnDispatchEnd(ctx context.Context, state any, c *Context) {
	if r.End != nil {
		r.End(ctx, state, c)
	}
}

// recording holds the per-dispatch states of the configured recorders.
type recording struct {
	recorders []Recorder
	states    []any
}

func startRecording(ctx context.Context, recorders []Recorder, req message.Request) (context.Context, recording) {
	if len(recorders) == 0 {
		return ctx, recording{}
	}
	rec := recording{recorders: recorders, states: make([]any, len(recorders))}
	for i, r := range recorders {
		ctx, rec.states[i] = r.OnDispatchStart(ctx, req)
	}
	return ctx, rec
}

func (rec recording) node(ctx context.Context, node Node, err error) {
	for i, r := range rec.recorders {
		r.OnNode(ctx, rec.states[i], node, err)
	}
}

func (rec recording) end(ctx context.Context, c *Context) {
	for i := len(rec.recorders) - 1; i >= 0; i-- {
		rec.recorders[i].OnDispatchEnd(ctx, rec.states[i], c)
	}
}
