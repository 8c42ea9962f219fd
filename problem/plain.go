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
	"rivaas.dev/pipeline/message"
)

// Plain answers with the fault message as a text/plain body.
type Plain struct {
	// StatusResolver determines the status from the error.
	// If nil, uses ErrorType or defaults to 500.
	StatusResolver func(err error) int
}

// NewPlain creates a Plain formatter.
func NewPlain() *Plain {
	return &Plain{}
}

// Format implements [Formatter].
func (f *Plain) Format(_ message.Request, err error) message.Response {
	return message.NewResponse(statusOf(f.StatusResolver, err)).
		WithContentType(message.NewContentType("text/plain", "utf-8")).
		WithBody(err.Error())
}
