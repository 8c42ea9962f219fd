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
	"errors"

	"rivaas.dev/pipeline/message"
)

// Callback is the function run when a handler's predicate matches.
// It mutates the shared [Context]. A returned error, or a panic, becomes the
// context's pending fault and the sweep continues with the next handler.
type Callback func(c *Context) error

// NodeKind identifies a handler variant.
type NodeKind uint8

// Handler variants.
const (
	NodeRoute NodeKind = iota + 1
	NodeFilter
	NodeAfter
	NodeGroup
)

// String returns the variant name.
func (k NodeKind) String() string {
	switch k {
	case NodeRoute:
		return "route"
	case NodeFilter:
		return "filter"
	case NodeAfter:
		return "after"
	case NodeGroup:
		return "group"
	default:
		return "unknown"
	}
}

// Handler is a node of a handler tree. The set of implementations is
// closed: [*RouteHandler], [*FilterHandler], [*AfterHandler] and
// [*GroupHandler].
type Handler interface {
	// Kind returns the handler variant.
	Kind() NodeKind

	// flatten appends the resolved nodes of the handler to out.
	flatten(prefix string, out []Node) ([]Node, error)
}

// RouteHandler answers requests. It only runs while no fault is pending,
// unless its predicate targets faults.
type RouteHandler struct {
	Predicate Predicate
	Callback  Callback
}

// Kind returns [NodeRoute].
func (h *RouteHandler) Kind() NodeKind { return NodeRoute }

func (h *RouteHandler) flatten(prefix string, out []Node) ([]Node, error) {
	return appendLeaf(out, NodeRoute, prefix, h.Predicate, h.Callback)
}

// FilterHandler applies cross-cutting changes such as adding headers.
// It matches exactly like a [RouteHandler]; the difference is a naming
// convention that documents intent.
type FilterHandler struct {
	Predicate Predicate
	Callback  Callback
}

// Kind returns [NodeFilter].
func (h *FilterHandler) Kind() NodeKind { return NodeFilter }

func (h *FilterHandler) flatten(prefix string, out []Node) ([]Node, error) {
	return appendLeaf(out, NodeFilter, prefix, h.Predicate, h.Callback)
}

// AfterHandler runs whether or not a fault is pending. It is used for
// fault and status recovery and for post-processing that must always
// happen.
type AfterHandler struct {
	Predicate Predicate
	Callback  Callback
}

// Kind returns [NodeAfter].
func (h *AfterHandler) Kind() NodeKind { return NodeAfter }

func (h *AfterHandler) flatten(prefix string, out []Node) ([]Node, error) {
	return appendLeaf(out, NodeAfter, prefix, h.Predicate, h.Callback)
}

func appendLeaf(out []Node, kind NodeKind, prefix string, p Predicate, cb Callback) ([]Node, error) {
	compiled, err := p.Compile(prefix)
	if err != nil {
		return nil, err
	}
	return append(out, Node{
		kind:      kind,
		index:     len(out),
		predicate: compiled,
		source:    p,
		callback:  cb,
	}), nil
}

// On creates a route for any method on pattern.
func On(pattern string, cb Callback) *RouteHandler {
	return OnPredicate(Predicate{Pattern: pattern}, cb)
}

// OnMethods creates a route restricted to methods.
//
// Example:
//
//	pipeline.OnMethods(message.AllMethods().Without(message.GET), "/hello", fallback)
func OnMethods(methods message.Methods, pattern string, cb Callback) *RouteHandler {
	return OnPredicate(Predicate{Methods: methods, Pattern: pattern}, cb)
}

// OnStatus creates a route that runs when the current response status
// equals status. With [message.StatusNotFound] it acts as a "no route
// matched" fallback.
func OnStatus(status message.Status, pattern string, cb Callback) *RouteHandler {
	return OnPredicate(Predicate{Pattern: pattern, Status: status.Ptr()}, cb)
}

// OnException creates a route that runs while a fault accepted by matcher
// is pending on a path matching pattern.
func OnException(matcher ErrorMatcher, pattern string, cb Callback) *RouteHandler {
	return OnPredicate(Predicate{Pattern: pattern, Exception: matcher}, cb)
}

// OnPredicate creates a route from a full predicate.
func OnPredicate(p Predicate, cb Callback) *RouteHandler {
	return &RouteHandler{Predicate: p, Callback: cb}
}

// Filter creates a filter for any method on pattern.
func Filter(pattern string, cb Callback) *FilterHandler {
	return FilterPredicate(Predicate{Pattern: pattern}, cb)
}

// FilterPredicate creates a filter from a full predicate.
func FilterPredicate(p Predicate, cb Callback) *FilterHandler {
	return &FilterHandler{Predicate: p, Callback: cb}
}

// After creates an after handler for any method on pattern.
func After(pattern string, cb Callback) *AfterHandler {
	return AfterPredicate(Predicate{Pattern: pattern}, cb)
}

// AfterPredicate creates an after handler from a full predicate.
func AfterPredicate(p Predicate, cb Callback) *AfterHandler {
	return &AfterHandler{Predicate: p, Callback: cb}
}

// Exception creates an after handler on every path that runs while a
// fault of type T is pending. When status is non-nil the response status
// must also match. Declare the most specific types first: once a handler
// sets a status the fault is cleared and later exception handlers no
// longer match.
//
// Example:
//
//	pipeline.Exception(nil, func(c *pipeline.Context, err *CodedError) error {
//	    return c.InternalServerError(strconv.Itoa(err.Code))
//	})
func Exception[T error](status *message.Status, cb func(c *Context, err T) error) *AfterHandler {
	p := Predicate{Pattern: "*", Exception: TypeOf[T](), Status: status}
	return AfterPredicate(p, func(c *Context) error {
		var target T
		if !errors.As(c.Fault(), &target) {
			return KindIllegalState.New("pending fault does not match the declared type")
		}
		return cb(c, target)
	})
}

// ExceptionKind creates an after handler on every path for faults that
// satisfy errors.Is(fault, kind), such as an [ErrorKind] or a sentinel.
func ExceptionKind(kind error, status *message.Status, cb Callback) *AfterHandler {
	return AfterPredicate(Predicate{Pattern: "*", Exception: KindOf(kind), Status: status}, cb)
}

// Get creates a GET route.
func Get(pattern string, cb Callback) *RouteHandler {
	return OnMethods(message.MethodSet(message.GET), pattern, cb)
}

// Head creates a HEAD route.
func Head(pattern string, cb Callback) *RouteHandler {
	return OnMethods(message.MethodSet(message.HEAD), pattern, cb)
}

// Post creates a POST route.
func Post(pattern string, cb Callback) *RouteHandler {
	return OnMethods(message.MethodSet(message.POST), pattern, cb)
}

// Put creates a PUT route.
func Put(pattern string, cb Callback) *RouteHandler {
	return OnMethods(message.MethodSet(message.PUT), pattern, cb)
}

// Delete creates a DELETE route.
func Delete(pattern string, cb Callback) *RouteHandler {
	return OnMethods(message.MethodSet(message.DELETE), pattern, cb)
}

// Trace creates a TRACE route.
func Trace(pattern string, cb Callback) *RouteHandler {
	return OnMethods(message.MethodSet(message.TRACE), pattern, cb)
}

// Options creates an OPTIONS route.
func Options(pattern string, cb Callback) *RouteHandler {
	return OnMethods(message.MethodSet(message.OPTIONS), pattern, cb)
}

// Patch creates a PATCH route.
func Patch(pattern string, cb Callback) *RouteHandler {
	return OnMethods(message.MethodSet(message.PATCH), pattern, cb)
}
