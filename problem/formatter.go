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
	"errors"
	"fmt"
	"strings"

	"rivaas.dev/pipeline/message"
)

// Formatter converts an unrecovered fault into a response.
type Formatter interface {
	// Format builds the response for err. req is the request as it was
	// when the dispatch ended.
	Format(req message.Request, err error) message.Response
}

// FormatterFunc adapts a function to [Formatter].
type FormatterFunc func(req message.Request, err error) message.Response

// Format calls f.
func (f FormatterFunc) Format(req message.Request, err error) message.Response {
	return f(req, err)
}

// ErrorType allows errors to declare their own status code.
//
// Example:
//
//	type ValidationError struct{ Message string }
//
//	func (e ValidationError) Error() string   { return e.Message }
//	func (e ValidationError) HTTPStatus() int { return 400 }
type ErrorType interface {
	error
	// HTTPStatus returns the status code for this error.
	HTTPStatus() int
}

// ErrorDetails allows errors to provide additional structured information.
type ErrorDetails interface {
	error
	// Details returns structured information about the error.
	Details() any
}

// ErrorCode allows errors to provide a machine-readable code.
type ErrorCode interface {
	error
	// Code returns a machine-readable error code.
	Code() string
}

// WithStatus wraps err with an explicit status code. If err is nil the
// standard status text is used as the message.
func WithStatus(err error, status int) error {
	return &statusError{err: err, status: status}
}

type statusError struct {
	err    error
	status int
}

func (e *statusError) Error() string {
	if e.err == nil {
		return message.Status(e.status).Text()
	}
	return e.err.Error()
}

func (e *statusError) Unwrap() error {
	return e.err
}

func (e *statusError) HTTPStatus() int {
	return e.status
}

// statusOf resolves the response status for err: the resolver if set, then
// [ErrorType], then 500. Out-of-range codes fall back to 500.
func statusOf(resolver func(error) int, err error) message.Status {
	status := int(message.StatusInternalServerError)
	if resolver != nil {
		status = resolver(err)
	} else {
		var typed ErrorType
		if errors.As(err, &typed) {
			status = typed.HTTPStatus()
		}
	}
	if s := message.Status(status); s.Valid() {
		return s
	}
	return message.StatusInternalServerError
}

// New returns the formatter registered under name: "plain", "simple" or
// "rfc9457". The empty name selects [Plain].
func New(name string) (Formatter, error) {
	switch strings.ToLower(name) {
	case "", "plain", "text":
		return NewPlain(), nil
	case "simple", "json":
		return NewSimple(), nil
	case "rfc9457", "problem":
		return NewRFC9457(""), nil
	default:
		return nil, fmt.Errorf("problem: unknown formatter %q", name)
	}
}
