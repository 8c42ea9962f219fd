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

import "rivaas.dev/pipeline/pattern"

// DiagnosticEvent describes something noteworthy found while building a
// dispatcher. Diagnostics are informational: the dispatcher behaves the
// same whether they are collected or not.
type DiagnosticEvent struct {
	Kind    DiagnosticKind
	Message string
	Fields  map[string]any
}

// DiagnosticKind categorizes diagnostic events.
type DiagnosticKind string

const (
	// DiagNodeCompiled is emitted once per flattened node.
	DiagNodeCompiled DiagnosticKind = "node_compiled"
	// DiagEmptyGroup flags a group without children.
	DiagEmptyGroup DiagnosticKind = "group_empty"
	// DiagUncheckedHeaders flags a dispatcher built with header checks off.
	DiagUncheckedHeaders DiagnosticKind = "headers_unchecked"
	// DiagUnreachableNode flags a route or filter declared after a route on
	// "*" with no method, status or fault condition. It still runs, but
	// its response overwrites the catch-all one.
	DiagUnreachableNode DiagnosticKind = "node_after_catch_all"
)

// DiagnosticHandler receives diagnostic events.
type DiagnosticHandler interface {
	OnDiagnostic(DiagnosticEvent)
}

// DiagnosticHandlerFunc adapts a function to [DiagnosticHandler].
type DiagnosticHandlerFunc func(DiagnosticEvent)

// OnDiagnostic calls f.
func (f DiagnosticHandlerFunc) OnDiagnostic(e DiagnosticEvent) {
	f(e)
}

func (d *Dispatcher) emit(kind DiagnosticKind, msg string, fields map[string]any) {
	if d.diagnostics == nil {
		return
	}
	d.diagnostics.OnDiagnostic(DiagnosticEvent{Kind: kind, Message: msg, Fields: fields})
}

// diagnose reports build-time events for the handler tree and its
// flattened nodes.
func (d *Dispatcher) diagnose(handlers []Handler) {
	if d.diagnostics == nil {
		return
	}
	if d.unchecked {
		d.emit(DiagUncheckedHeaders, "header name checks are disabled", nil)
	}

	var walk func(prefix string, hs []Handler)
	walk = func(prefix string, hs []Handler) {
		for _, h := range hs {
			g, ok := h.(*GroupHandler)
			if !ok {
				continue
			}
			full := pattern.Join(prefix, g.prefix)
			if len(g.handlers) == 0 {
				d.emit(DiagEmptyGroup, "group has no handlers", map[string]any{"prefix": full})
			}
			walk(full, g.handlers)
		}
	}
	walk("", handlers)

	catchAll := -1
	for _, n := range d.nodes {
		d.emit(DiagNodeCompiled, "node compiled", map[string]any{
			"index":   n.index,
			"kind":    n.kind.String(),
			"pattern": n.Pattern(),
		})
		if n.kind == NodeAfter || n.predicate.HandlesFaults() || n.source.Status != nil {
			continue
		}
		if catchAll >= 0 {
			d.emit(DiagUnreachableNode, "node follows a catch-all route", map[string]any{
				"index":     n.index,
				"pattern":   n.Pattern(),
				"catch_all": catchAll,
			})
			continue
		}
		if n.kind == NodeRoute && n.source.Methods.Empty() && n.predicate.Pattern().MatchesAll() {
			catchAll = n.index
		}
	}
}
