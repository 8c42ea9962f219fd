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
	"errors"
	"fmt"
	"slices"
	"strconv"
)

// ErrUnsupportedBody is returned by [Response.BodyBytes] for body values
// that have no byte representation without a codec.
var ErrUnsupportedBody = errors.New("unsupported body type")

// Response is the response built by the pipeline.
//
// Like [Request], a Response is a value: the With methods return copies.
type Response struct {
	Status      Status
	Reason      string // optional reason phrase, Status.Text() when empty
	Headers     Headers
	Body        any
	Cookies     []Cookie
	ContentType *ContentType
}

// NewResponse returns an empty response with the given status.
func NewResponse(status Status) Response {
	return Response{Status: status}
}

// ReasonPhrase returns the explicit reason or the registered phrase.
func (r Response) ReasonPhrase() string {
	if r.Reason != "" {
		return r.Reason
	}
	return r.Status.Text()
}

// WithStatus returns a copy with a different status.
func (r Response) WithStatus(s Status) Response {
	r.Status = s
	return r
}

// WithReason returns a copy with an explicit reason phrase.
func (r Response) WithReason(reason string) Response {
	r.Reason = reason
	return r
}

// WithBody returns a copy with a different body.
func (r Response) WithBody(body any) Response {
	r.Body = body
	return r
}

// WithHeaders returns a copy with the headers replaced.
func (r Response) WithHeaders(h Headers) Response {
	r.Headers = h
	return r
}

// AddHeader returns a copy with value appended to the named header.
// Existing headers are kept, so successive handlers accumulate headers.
func (r Response) AddHeader(name, value string) Response {
	r.Headers = r.Headers.Add(name, value)
	return r
}

// SetHeader returns a copy where the named header holds only values.
func (r Response) SetHeader(name string, values ...string) Response {
	r.Headers = r.Headers.Set(name, values...)
	return r
}

// WithCookie returns a copy with cookie appended.
func (r Response) WithCookie(cookie Cookie) Response {
	r.Cookies = append(slices.Clone(r.Cookies), cookie)
	return r
}

// WithContentType returns a copy with a different content type.
func (r Response) WithContentType(ct ContentType) Response {
	r.ContentType = &ct
	return r
}

// BodyString returns the body as text. Non-text bodies are formatted with
// fmt, and a nil body is the empty string.
func (r Response) BodyString() string {
	switch b := r.Body.(type) {
	case nil:
		return ""
	case string:
		return b
	case []byte:
		return string(b)
	case error:
		return b.Error()
	case fmt.Stringer:
		return b.String()
	default:
		return fmt.Sprint(b)
	}
}

// BodyBytes converts the body to bytes for writing on the wire.
// Strings, byte slices, errors and integers are supported; any other type
// returns [ErrUnsupportedBody].
func (r Response) BodyBytes() ([]byte, error) {
	switch b := r.Body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return b, nil
	case string:
		return []byte(b), nil
	case error:
		return []byte(b.Error()), nil
	case int:
		return []byte(strconv.Itoa(b)), nil
	case int64:
		return []byte(strconv.FormatInt(b, 10)), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedBody, r.Body)
	}
}
