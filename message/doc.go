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

// Package message defines the transport-independent HTTP request and
// response values that flow through a pipeline.
//
// Requests and responses are plain values. Mutating helpers such as
// [Response.WithStatus] or [Headers.Add] return modified copies and never
// touch the receiver, so a value handed to one handler cannot be changed
// behind its back by another.
//
// The package also carries the small parsing helpers the pipeline relies
// on: query-string parsing and formatting, content-type parsing and the
// header-name check applied to handler-provided headers.
package message
