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

package pattern

import (
	"errors"
	"fmt"
)

// Sentinel errors wrapped by [*Error]. Use [errors.Is] to classify a failure.
var (
	ErrDuplicateParam   = errors.New("duplicate parameter name")
	ErrInvalidParam     = errors.New("invalid parameter segment")
	ErrWildcardPosition = errors.New("wildcard must be the last segment")
	ErrTraversal        = errors.New("path traversal segment")
)

// Error describes a pattern that cannot be compiled.
// Pattern errors are configuration errors and are meant to stop a server
// from starting.
type Error struct {
	Pattern string // Pattern being compiled
	Segment string // Offending segment
	Err     error  // One of the sentinel errors above
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("pattern %q: %v: %q", e.Pattern, e.Err, e.Segment)
}

// Unwrap returns the sentinel error.
func (e *Error) Unwrap() error {
	return e.Err
}
