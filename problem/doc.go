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

// Package problem turns faults that no handler recovered into responses.
//
// A [Formatter] receives the request and the pending fault at the end of a
// dispatch and produces the response sent to the client. Three formatters
// are provided:
//
//   - [Plain]: status 500 (or the fault's own status) with the fault
//     message as a text/plain body. This is the dispatcher default.
//   - [Simple]: a small JSON object {"error": ..., "code": ..., "details": ...}.
//   - [RFC9457]: application/problem+json documents with a generated error id.
//
// Faults can steer every formatter by implementing the optional
// [ErrorType], [ErrorCode] and [ErrorDetails] interfaces.
//
// Example:
//
//	d, err := pipeline.New(handlers,
//	    pipeline.WithFaultFormatter(problem.NewRFC9457("https://example.com/problems")),
//	)
package problem
