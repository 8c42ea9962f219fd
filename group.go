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
	"slices"

	"rivaas.dev/pipeline/message"
	"rivaas.dev/pipeline/pattern"
)

// GroupHandler groups handlers under a path prefix. It never matches by
// itself: at build time it expands into its children with the prefix
// prepended to each child's pattern.
//
// Example:
//
//	api := pipeline.Path("/api",
//	    pipeline.Filter("*", addVersionHeader),
//	    pipeline.Path("/users",
//	        pipeline.Get("/{id}", getUser), // matches /api/users/{id}
//	    ),
//	)
type GroupHandler struct {
	prefix   string
	handlers []Handler
}

// Path creates a group. When the only child is itself a group, that child
// is returned with prefix added instead of nesting one group in another.
func Path(prefix string, handlers ...Handler) *GroupHandler {
	if len(handlers) == 1 {
		if g, ok := handlers[0].(*GroupHandler); ok {
			return g.AddPrefix(prefix)
		}
	}
	return &GroupHandler{prefix: prefix, handlers: slices.Clone(handlers)}
}

// Kind returns [NodeGroup].
func (g *GroupHandler) Kind() NodeKind { return NodeGroup }

// Prefix returns the group prefix.
func (g *GroupHandler) Prefix() string {
	return g.prefix
}

// Handlers returns the direct children in declaration order.
func (g *GroupHandler) Handlers() []Handler {
	return slices.Clone(g.handlers)
}

// AddPrefix returns a new group whose prefix is prefix followed by the
// current prefix. The receiver is not modified.
func (g *GroupHandler) AddPrefix(prefix string) *GroupHandler {
	return &GroupHandler{
		prefix:   pattern.Join(prefix, g.prefix),
		handlers: slices.Clone(g.handlers),
	}
}

// Flatten resolves the tree into the ordered node list a [Dispatcher]
// sweeps. Patterns are compiled here, so malformed patterns and prefixes
// (including "." or ".." segments) fail before any request is served.
func (g *GroupHandler) Flatten() ([]Node, error) {
	return g.flatten("", nil)
}

func (g *GroupHandler) flatten(prefix string, out []Node) ([]Node, error) {
	full := pattern.Join(prefix, g.prefix)
	if _, err := pattern.Compile(full); err != nil {
		return nil, err
	}

	var err error
	for _, h := range g.handlers {
		if out, err = h.flatten(full, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Node is one entry of a flattened handler tree: the handler variant, its
// predicate with the resolved pattern, and its callback.
type Node struct {
	kind      NodeKind
	index     int
	predicate *CompiledPredicate
	source    Predicate
	callback  Callback
}

// Kind returns the variant the node came from.
func (n Node) Kind() NodeKind {
	return n.kind
}

// Index returns the node's position in the flattened list.
func (n Node) Index() int {
	return n.index
}

// Pattern returns the resolved pattern string.
func (n Node) Pattern() string {
	return n.predicate.Pattern().String()
}

// Methods returns the methods the node accepts. The empty set means any.
func (n Node) Methods() message.Methods {
	return n.source.Methods
}

// Predicate returns the compiled predicate.
func (n Node) Predicate() *CompiledPredicate {
	return n.predicate
}

// String describes the node for logs.
func (n Node) String() string {
	p := n.source
	p.Pattern = n.Pattern()
	return n.kind.String() + " " + p.String()
}

// allowed applies the variant rule on top of the predicate: routes and
// filters that do not target faults are skipped while one is pending.
func (n Node) allowed(c *Context) bool {
	if n.kind == NodeAfter || n.predicate.HandlesFaults() {
		return true
	}
	return !c.Faulted()
}
