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
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"rivaas.dev/pipeline"
	"rivaas.dev/pipeline/message"
)

// Result is the outcome of one dispatch.
type Result struct {
	t   testing.TB
	ctx *pipeline.Context
}

// Context returns the final dispatch context.
func (r *Result) Context() *pipeline.Context {
	return r.ctx
}

// Response returns the final response.
func (r *Result) Response() message.Response {
	return r.ctx.Response()
}

// Status returns the response status.
func (r *Result) Status() message.Status {
	return r.ctx.Response().Status
}

// Body returns the response body as text.
func (r *Result) Body() string {
	return r.ctx.Response().BodyString()
}

// Header returns the first value of a response header.
func (r *Result) Header(name string) string {
	return r.ctx.Response().Headers.Get(name)
}

// Fault returns the fault left after the sweep, nil when none.
func (r *Result) Fault() error {
	return r.ctx.Fault()
}

// ExpectStatus checks the response status.
func (r *Result) ExpectStatus(want message.Status) *Result {
	r.t.Helper()
	assert.Equal(r.t, want, r.Status(), "status (body %q)", r.Body())
	return r
}

// ExpectBody checks the response body text.
func (r *Result) ExpectBody(want string) *Result {
	r.t.Helper()
	assert.Equal(r.t, want, r.Body(), "body")
	return r
}

// ExpectBodyContains checks that the body contains sub.
func (r *Result) ExpectBodyContains(sub string) *Result {
	r.t.Helper()
	assert.Contains(r.t, r.Body(), sub, "body")
	return r
}

// ExpectHeader checks a response header.
func (r *Result) ExpectHeader(name, want string) *Result {
	r.t.Helper()
	assert.Equal(r.t, want, r.Header(name), "header %s", name)
	return r
}

// ExpectContentType checks the response media type.
func (r *Result) ExpectContentType(mediaType string) *Result {
	r.t.Helper()
	ct := r.ctx.Response().ContentType
	if assert.NotNil(r.t, ct, "content type") {
		assert.Equal(r.t, mediaType, ct.MediaType, "content type")
	}
	return r
}

// ExpectFault checks that a fault matching m was left unrecovered.
func (r *Result) ExpectFault(m pipeline.ErrorMatcher) *Result {
	r.t.Helper()
	if assert.Error(r.t, r.Fault(), "fault") {
		assert.True(r.t, m(r.Fault()), "fault %v does not match", r.Fault())
	}
	return r
}

// ExpectNoFault checks that the sweep ended without a pending fault.
func (r *Result) ExpectNoFault() *Result {
	r.t.Helper()
	assert.NoError(r.t, r.Fault(), "fault")
	return r
}

// DecodeJSON unmarshals the body into out.
func (r *Result) DecodeJSON(out any) *Result {
	r.t.Helper()
	b, err := r.ctx.Response().BodyBytes()
	if assert.NoError(r.t, err, "body") {
		assert.NoError(r.t, json.Unmarshal(b, out), "decode body %q", string(b))
	}
	return r
}
