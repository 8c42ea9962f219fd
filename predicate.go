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

package pipeline

import (
	"strconv"
	"strings"

	"rivaas.dev/pipeline/message"
	"rivaas.dev/pipeline/pattern"
)

// Predicate is the matching rule attached to every handler.
// Each zero-valued field matches everything:
//
//   - Methods: empty set matches any request method
//   - Pattern: "" (or "*") matches any path
//   - Exception: nil ignores the pending fault; non-nil requires a pending
//     fault accepted by the matcher
//   - Status: nil ignores the response status; non-nil requires the current
//     response status to equal it
type Predicate struct {
	Methods   message.Methods
	Pattern   string
	Exception ErrorMatcher
	Status    *message.Status
}

// Compile resolves the pattern under prefix and compiles it.
func (p Predicate) Compile(prefix string) (*CompiledPredicate, error) {
	resolved := pattern.Join(prefix, p.Pattern)
	compiled, err := pattern.Compile(resolved)
	if err != nil {
		return nil, err
	}

	cp := &CompiledPredicate{
		methods:   p.Methods,
		pattern:   compiled,
		exception: p.Exception,
	}
	if p.Status != nil {
		status := *p.Status
		cp.status = &status
	}
	return cp, nil
}

// String describes the predicate for logs and diagnostics.
func (p Predicate) String() string {
	var sb strings.Builder
	sb.WriteString(p.Methods.String())
	sb.WriteByte(' ')
	if p.Pattern == "" {
		sb.WriteString("*")
	} else {
		sb.WriteString(p.Pattern)
	}
	if p.Exception != nil {
		sb.WriteString(" exception")
	}
	if p.Status != nil {
		sb.WriteString(" status=")
		sb.WriteString(strconv.Itoa(int(*p.Status)))
	}
	return sb.String()
}

// CompiledPredicate is a [Predicate] with its pattern compiled.
// It is immutable and shared by concurrent dispatches.
type CompiledPredicate struct {
	methods   message.Methods
	pattern   *pattern.Pattern
	exception ErrorMatcher
	status    *message.Status
}

// Pattern returns the compiled, prefix-resolved pattern.
func (p *CompiledPredicate) Pattern() *pattern.Pattern {
	return p.pattern
}

// HandlesFaults reports whether the predicate targets a pending fault.
func (p *CompiledPredicate) HandlesFaults() bool {
	return p.exception != nil
}

// Matches reports whether the predicate accepts the current state of c.
// It has no side effects.
func (p *CompiledPredicate) Matches(c *Context) bool {
	_, ok := p.Match(c)
	return ok
}

// Match is [CompiledPredicate.Matches] that also returns the path
// parameters bound by the pattern.
func (p *CompiledPredicate) Match(c *Context) (pattern.Params, bool) {
	req := c.Request()

	if !p.methods.Empty() && !p.methods.Contains(req.Method) {
		return nil, false
	}
	if p.exception != nil && !p.exception(c.Fault()) {
		return nil, false
	}
	if p.status != nil && c.Status() != *p.status {
		return nil, false
	}
	return p.pattern.Match(req.Path)
}
