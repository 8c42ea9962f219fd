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

package message

import (
	"crypto/x509"
	"slices"
	"strconv"
)

// Request is an incoming HTTP request as seen by the pipeline.
//
// Request is treated as immutable once built. The With methods return a
// modified copy and leave the receiver untouched.
type Request struct {
	Method        Method
	Protocol      Protocol
	Host          string
	Port          int
	Path          string
	Query         Fields
	Headers       Headers
	Body          any // raw bytes or a decoded value
	Parts         []Part
	Form          Fields
	Cookies       []Cookie
	ContentType   *ContentType
	Certificates  []*x509.Certificate
	Accept        []ContentType
	ContentLength int64 // -1 when unknown
}

// NewRequest returns a request for method and path with the same defaults
// the transports use when a field is missing: HTTP on localhost:80 with an
// unknown content length.
func NewRequest(method Method, path string) Request {
	return Request{
		Method:        method,
		Protocol:      HTTP,
		Host:          "localhost",
		Port:          80,
		Path:          path,
		ContentLength: -1,
	}
}

// Header returns the first value of the named header.
func (r Request) Header(name string) string {
	return r.Headers.Get(name)
}

// QueryParam returns the first value of the named query parameter.
func (r Request) QueryParam(name string) string {
	return r.Query.Get(name)
}

// FormParam returns the first value of the named form parameter.
func (r Request) FormParam(name string) string {
	return r.Form.Get(name)
}

// Cookie looks up a request cookie by name.
func (r Request) Cookie(name string) (Cookie, bool) {
	for _, c := range r.Cookies {
		if c.Name == name {
			return c, true
		}
	}
	return Cookie{}, false
}

// Part looks up a multipart part by name.
func (r Request) Part(name string) (Part, bool) {
	for _, p := range r.Parts {
		if p.Name == name {
			return p, true
		}
	}
	return Part{}, false
}

// URL rebuilds the absolute request URL including the query string.
func (r Request) URL() string {
	url := r.Protocol.Scheme() + "://" + r.Host
	defaultPort := 80
	if r.Protocol.Secure() {
		defaultPort = 443
	}
	if r.Port != 0 && r.Port != defaultPort {
		url += ":" + strconv.Itoa(r.Port)
	}
	url += r.Path
	if r.Query.Len() > 0 {
		url += "?" + FormatQueryString(r.Query)
	}
	return url
}

// WithMethod returns a copy with a different method.
func (r Request) WithMethod(m Method) Request {
	r.Method = m
	return r
}

// WithPath returns a copy with a different path.
func (r Request) WithPath(path string) Request {
	r.Path = path
	return r
}

// WithQuery returns a copy with different query parameters.
func (r Request) WithQuery(q Fields) Request {
	r.Query = q
	return r
}

// WithHeader returns a copy with value appended to the named header.
func (r Request) WithHeader(name, value string) Request {
	r.Headers = r.Headers.Add(name, value)
	return r
}

// WithHeaders returns a copy with the headers replaced.
func (r Request) WithHeaders(h Headers) Request {
	r.Headers = h
	return r
}

// WithBody returns a copy with a different body.
func (r Request) WithBody(body any) Request {
	r.Body = body
	return r
}

// WithCookies returns a copy with the cookies replaced.
func (r Request) WithCookies(cookies ...Cookie) Request {
	r.Cookies = slices.Clone(cookies)
	return r
}

// WithContentType returns a copy with a different content type.
func (r Request) WithContentType(ct ContentType) Request {
	r.ContentType = &ct
	return r
}
