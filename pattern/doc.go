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

// Package pattern compiles route patterns into segment lists and matches
// concrete request paths against them.
//
// # Syntax
//
// Patterns are split on '/'. Each segment is one of:
//
//   - a literal, compared byte for byte with the path segment
//   - {name}, a named capture that binds any non-empty path segment
//   - *, a trailing wildcard that accepts zero or more remaining segments
//
// The empty pattern and "*" match every path.
//
// Matching is a single left-to-right pass over the segments with no
// backtracking, so its cost is linear in the number of segments.
//
// Example:
//
//	p := pattern.MustCompile("/users/{id}/files/*")
//	params, ok := p.Match("/users/42/files/a/b.txt")
//	// ok == true, params["id"] == "42"
package pattern
