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
	"log/slog"
	"maps"
	"strings"

	"rivaas.dev/pipeline/message"
	"rivaas.dev/pipeline/pattern"
)

// Context carries one request through a dispatch: the request, the
// response being built, the path parameters of the last matching handler,
// free-form attributes for inter-handler state, and the pending fault.
//
// Request and response are values. Context methods replace them with
// modified copies, so a response read earlier by a handler is never
// changed afterwards.
//
// THREAD SAFETY: a Context belongs to a single dispatch and must not be
// shared between goroutines. Copy what you need before starting
// background work.
//
// Example:
//
//	pipeline.Get("/users/{id}", func(c *pipeline.Context) error {
//	    if err := c.AddHeader("x-user", c.Param("id")); err != nil {
//	        return err
//	    }
//	    return c.OK("user " + c.Param("id"))
//	})
type Context struct {
	request    message.Request
	response   message.Response
	params     pattern.Params
	attributes map[string]any
	fault      error
	index      int
	responded  bool
	route      string

	ctx       context.Context
	logger    *slog.Logger
	unchecked bool
}

// NewContext creates the context for one dispatch. The response starts
// with status 404 so that status handlers can act as "no route matched"
// fallbacks. attrs is copied.
func NewContext(ctx context.Context, req message.Request, attrs map[string]any) *Context {
	if ctx == nil {
		ctx = context.Background()
	}
	attributes := make(map[string]any, len(attrs))
	maps.Copy(attributes, attrs)

	return &Context{
		request:    req,
		response:   message.NewResponse(message.StatusNotFound),
		attributes: attributes,
		ctx:        ctx,
		logger:     noopLogger,
	}
}

// Request returns the current request.
func (c *Context) Request() message.Request {
	return c.request
}

// SetRequest replaces the request seen by later handlers.
func (c *Context) SetRequest(req message.Request) {
	c.request = req
}

// Response returns the response built so far.
func (c *Context) Response() message.Response {
	return c.response
}

// SetResponse replaces the whole response. It counts as producing a
// response, which clears a pending fault once the callback returns.
func (c *Context) SetResponse(resp message.Response) {
	c.response = resp
	c.responded = true
}

// Method is a shortcut for Request().Method.
func (c *Context) Method() message.Method {
	return c.request.Method
}

// Path is a shortcut for Request().Path.
func (c *Context) Path() string {
	return c.request.Path
}

// Params returns a copy of the path parameters bound by the handler
// currently running.
func (c *Context) Params() map[string]string {
	return maps.Clone(map[string]string(c.params))
}

// Param returns a path parameter bound by the handler currently running.
func (c *Context) Param(name string) string {
	return c.params.Get(name)
}

// RoutePattern returns the resolved pattern of the handler currently
// running, or of the last matching handler once the sweep is over.
func (c *Context) RoutePattern() string {
	return c.route
}

// Attribute returns an attribute set by the transport or by an earlier
// handler.
func (c *Context) Attribute(key string) any {
	return c.attributes[key]
}

// SetAttribute stores a value for later handlers and for the transport.
func (c *Context) SetAttribute(key string, value any) {
	c.attributes[key] = value
}

// Attributes returns a copy of all attributes.
func (c *Context) Attributes() map[string]any {
	return maps.Clone(c.attributes)
}

// Fault returns the pending fault, or nil.
func (c *Context) Fault() error {
	return c.fault
}

// Faulted reports whether a fault is pending.
func (c *Context) Faulted() bool {
	return c.fault != nil
}

// Index returns the position of the handler currently running in the
// flattened handler list.
func (c *Context) Index() int {
	return c.index
}

// Status returns the current response status.
func (c *Context) Status() message.Status {
	return c.response.Status
}

// Responded reports whether the running handler has set a status or
// replaced the response.
func (c *Context) Responded() bool {
	return c.responded
}

// Context returns the context.Context of the dispatch, for cancellation
// and trace propagation in downstream calls.
func (c *Context) Context() context.Context {
	return c.ctx
}

// Logger returns the dispatcher's logger.
func (c *Context) Logger() *slog.Logger {
	return c.logger
}

// SetStatus sets the response status. Any integer in [100, 599] is
// accepted.
func (c *Context) SetStatus(status message.Status) error {
	if !status.Valid() {
		return KindIllegalArgument.Errorf("invalid status code %d", int(status))
	}
	c.response = c.response.WithStatus(status)
	c.responded = true
	return nil
}

// Send sets the status and body. Headers set earlier are kept.
func (c *Context) Send(status message.Status, body any) error {
	if err := c.SetStatus(status); err != nil {
		return err
	}
	c.response = c.response.WithBody(body)
	return nil
}

// OK sends a 200 response.
func (c *Context) OK(body any) error {
	return c.Send(message.StatusOK, body)
}

// Created sends a 201 response.
func (c *Context) Created(body any) error {
	return c.Send(message.StatusCreated, body)
}

// BadRequest sends a 400 response.
func (c *Context) BadRequest(body any) error {
	return c.Send(message.StatusBadRequest, body)
}

// Unauthorized sends a 401 response.
func (c *Context) Unauthorized(body any) error {
	return c.Send(message.StatusUnauthorized, body)
}

// Forbidden sends a 403 response.
func (c *Context) Forbidden(body any) error {
	return c.Send(message.StatusForbidden, body)
}

// NotFound sends a 404 response.
func (c *Context) NotFound(body any) error {
	return c.Send(message.StatusNotFound, body)
}

// InternalServerError sends a 500 response.
func (c *Context) InternalServerError(body any) error {
	return c.Send(message.StatusInternalServerError, body)
}

// Redirect sends status with a location header.
func (c *Context) Redirect(status message.Status, location string) error {
	if err := c.Send(status, nil); err != nil {
		return err
	}
	c.response = c.response.SetHeader("location", sanitizeHeaderValue(location))
	return nil
}

// AddHeader appends values to a response header, keeping headers added by
// earlier handlers. The name must pass [message.CheckHeaderNames] unless
// header checks are disabled on the dispatcher.
func (c *Context) AddHeader(name string, values ...string) error {
	if err := message.CheckHeaderNames(c.unchecked, name); err != nil {
		return err
	}
	resp := c.response
	for _, v := range values {
		resp = resp.AddHeader(name, sanitizeHeaderValue(v))
	}
	c.response = resp
	return nil
}

// SetHeader replaces the values of a response header.
func (c *Context) SetHeader(name string, values ...string) error {
	if err := message.CheckHeaderNames(c.unchecked, name); err != nil {
		return err
	}
	clean := make([]string, len(values))
	for i, v := range values {
		clean[i] = sanitizeHeaderValue(v)
	}
	c.response = c.response.SetHeader(name, clean...)
	return nil
}

// SetContentType sets the response content type.
func (c *Context) SetContentType(ct message.ContentType) {
	c.response = c.response.WithContentType(ct)
}

// SetCookie adds a response cookie.
func (c *Context) SetCookie(cookie message.Cookie) {
	c.response = c.response.WithCookie(cookie)
}

// sanitizeHeaderValue strips CR and LF to prevent header injection.
func sanitizeHeaderValue(v string) string {
	if !strings.ContainsAny(v, "\r\n") {
		return v
	}
	v = strings.ReplaceAll(v, "\r", "")
	return strings.ReplaceAll(v, "\n", "")
}
