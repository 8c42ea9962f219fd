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

	"rivaas.dev/pipeline/message"
)

// Simple formats errors as small JSON objects:
// {"error": "message", "details": {...}, "code": "..."}.
type Simple struct {
	// StatusResolver determines the status from the error.
	// If nil, uses ErrorType or defaults to 500.
	StatusResolver func(err error) int
}

// NewSimple creates a Simple formatter.
func NewSimple() *Simple {
	return &Simple{}
}

// Format implements [Formatter].
func (f *Simple) Format(_ message.Request, err error) message.Response {
	body := map[string]any{
		"error": err.Error(),
	}

	var detailed ErrorDetails
	if errors.As(err, &detailed) {
		body["details"] = detailed.Details()
	}

	var coded ErrorCode
	if errors.As(err, &coded) {
		body["code"] = coded.Code()
	}

	return jsonResponse(statusOf(f.StatusResolver, err), "application/json", body, err)
}

// jsonResponse encodes body. When the details cannot be encoded the
// response degrades to the bare message.
func jsonResponse(status message.Status, mediaType string, body any, err error) message.Response {
	encoded, mErr := json.Marshal(body)
	if mErr != nil {
		encoded, _ = json.Marshal(map[string]string{"error": err.Error()}) //nolint:errchkjson // map of strings
	}
	return message.NewResponse(status).
		WithContentType(message.NewContentType(mediaType, "utf-8")).
		WithBody(encoded)
}
