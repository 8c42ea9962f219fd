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

package problem

import (
	"encoding/json"
	"errors"
	"maps"

	"github.com/google/uuid"

	"rivaas.dev/pipeline/message"
)

// RFC9457 formats errors as RFC 9457 Problem Details
// (application/problem+json).
type RFC9457 struct {
	// BaseURL is prepended to error codes to build the problem type URI.
	BaseURL string

	// TypeResolver maps an error to a problem type URI.
	// If nil, uses ErrorCode or "about:blank".
	TypeResolver func(err error) string

	// StatusResolver determines the status from the error.
	// If nil, uses ErrorType or defaults to 500.
	StatusResolver func(err error) int

	// ErrorIDGenerator generates the error_id extension.
	// If nil, a random UUID is used.
	ErrorIDGenerator func() string

	// DisableErrorID omits the error_id extension.
	DisableErrorID bool
}

// NewRFC9457 creates an RFC9457 formatter.
func NewRFC9457(baseURL string) *RFC9457 {
	return &RFC9457{BaseURL: baseURL}
}

// ProblemDetail is an RFC 9457 problem document.
type ProblemDetail struct {
	Type       string         `json:"type"`
	Title      string         `json:"title"`
	Status     int            `json:"status"`
	Detail     string         `json:"detail,omitempty"`
	Instance   string         `json:"instance,omitempty"`
	Extensions map[string]any `json:"-"`
}

// MarshalJSON inlines the extensions. Extensions cannot override the
// standard members.
func (p ProblemDetail) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(p.Extensions)+5)
	maps.Copy(m, p.Extensions)
	m["type"] = p.Type
	m["title"] = p.Title
	m["status"] = p.Status
	delete(m, "detail")
	delete(m, "instance")
	if p.Detail != "" {
		m["detail"] = p.Detail
	}
	if p.Instance != "" {
		m["instance"] = p.Instance
	}

	return json.Marshal(m)
}

// Problem builds the problem document for err.
func (f *RFC9457) Problem(req message.Request, err error) ProblemDetail {
	status := statusOf(f.StatusResolver, err)

	p := ProblemDetail{
		Type:       f.determineType(err),
		Title:      status.Text(),
		Status:     status.Code(),
		Detail:     err.Error(),
		Instance:   req.Path,
		Extensions: make(map[string]any),
	}

	if !f.DisableErrorID {
		if f.ErrorIDGenerator != nil {
			p.Extensions["error_id"] = f.ErrorIDGenerator()
		} else {
			p.Extensions["error_id"] = uuid.NewString()
		}
	}

	var detailed ErrorDetails
	if errors.As(err, &detailed) {
		p.Extensions["errors"] = detailed.Details()
	}

	var coded ErrorCode
	if errors.As(err, &coded) {
		p.Extensions["code"] = coded.Code()
	}

	return p
}

// Format implements [Formatter].
func (f *RFC9457) Format(req message.Request, err error) message.Response {
	p := f.Problem(req, err)
	return jsonResponse(message.Status(p.Status), "application/problem+json", p, err)
}

func (f *RFC9457) determineType(err error) string {
	if f.TypeResolver != nil {
		return f.TypeResolver(err)
	}

	var coded ErrorCode
	if errors.As(err, &coded) {
		code := coded.Code()
		if f.BaseURL != "" {
			return f.BaseURL + "/" + code
		}

		return code
	}

	return "about:blank"
}
