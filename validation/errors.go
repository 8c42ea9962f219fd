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

package validation

import (
	"fmt"
	"net/http"
	"slices"
	"strings"

	"rivaas.dev/pipeline"
)

// ErrValidation is the kind every validation failure unwraps to.
var ErrValidation = pipeline.NewErrorKind("validation", pipeline.KindIllegalArgument)

// FieldError describes one failed check.
type FieldError struct {
	Path    string         `json:"path"`           // JSON path, e.g. "items.2.price"
	Code    string         `json:"code"`           // e.g. "tag.required", "schema.type"
	Message string         `json:"message"`        // human readable
	Meta    map[string]any `json:"meta,omitempty"` // tag, param, schema keyword
}

// Error returns "path: message", or the message alone for the root.
func (e FieldError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return e.Path + ": " + e.Message
}

// Error collects the failures of one validation.
//
//nolint:recvcheck // value receivers for the error interface, pointer for Add
type Error struct {
	Fields    []FieldError `json:"errors"`
	Truncated bool         `json:"truncated,omitempty"`
}

func (v Error) Error() string {
	switch len(v.Fields) {
	case 0:
		return "validation failed"
	case 1:
		return v.Fields[0].Error()
	}

	msgs := make([]string, len(v.Fields))
	for i, f := range v.Fields {
		msgs[i] = f.Error()
	}
	suffix := ""
	if v.Truncated {
		suffix = " (truncated)"
	}
	return fmt.Sprintf("validation failed: %s%s", strings.Join(msgs, "; "), suffix)
}

// Unwrap returns [ErrValidation].
func (v Error) Unwrap() error {
	return ErrValidation
}

// HTTPStatus reports 422 Unprocessable Entity.
func (v Error) HTTPStatus() int {
	return http.StatusUnprocessableEntity
}

// Details returns the field list.
func (v Error) Details() any {
	return v.Fields
}

// Code returns "validation_error".
func (v Error) Code() string {
	return "validation_error"
}

// Add appends a field error.
func (v *Error) Add(path, code, message string, meta map[string]any) {
	v.Fields = append(v.Fields, FieldError{Path: path, Code: code, Message: message, Meta: meta})
}

// HasErrors reports whether any field failed.
func (v Error) HasErrors() bool {
	return len(v.Fields) > 0
}

// Has reports whether path failed.
func (v Error) Has(path string) bool {
	return v.Field(path) != nil
}

// Field returns the first error for path, or nil.
func (v Error) Field(path string) *FieldError {
	for i := range v.Fields {
		if v.Fields[i].Path == path {
			return &v.Fields[i]
		}
	}
	return nil
}

// Sort orders the errors by path, then code.
func (v *Error) Sort() {
	slices.SortStableFunc(v.Fields, func(a, b FieldError) int {
		if c := strings.Compare(a.Path, b.Path); c != 0 {
			return c
		}
		return strings.Compare(a.Code, b.Code)
	})
}
