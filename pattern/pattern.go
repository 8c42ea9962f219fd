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
	"strings"
)

// segmentKind classifies one compiled segment.
type segmentKind uint8

const (
	literalSegment segmentKind = iota
	paramSegment
	wildcardSegment
)

type segment struct {
	kind segmentKind
	text string // literal text or parameter name
}

// Params holds the path parameters bound by a successful match.
// Values are the raw path segments, no decoding is applied.
type Params map[string]string

// Get returns the value bound to name, or "" when absent.
func (p Params) Get(name string) string {
	return p[name]
}

// Pattern is a compiled route pattern. It is immutable and safe for
// concurrent use.
type Pattern struct {
	raw      string
	segments []segment
	names    []string
	matchAll bool
	wildcard bool
}

// Compile parses raw into a [Pattern].
// It fails with an [*Error] when a parameter name is repeated or malformed,
// when '*' is not the last segment, or when a segment is "." or "..".
func Compile(raw string) (*Pattern, error) {
	p := &Pattern{raw: raw}
	if raw == "" || raw == "*" {
		p.matchAll = true
		p.wildcard = raw == "*"
		return p, nil
	}

	parts := split(raw)
	p.segments = make([]segment, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))

	for i, part := range parts {
		switch {
		case part == "*":
			if i != len(parts)-1 {
				return nil, &Error{Pattern: raw, Segment: part, Err: ErrWildcardPosition}
			}
			p.wildcard = true
			p.segments = append(p.segments, segment{kind: wildcardSegment})

		case strings.HasPrefix(part, "{") || strings.HasSuffix(part, "}"):
			name, ok := paramName(part)
			if !ok {
				return nil, &Error{Pattern: raw, Segment: part, Err: ErrInvalidParam}
			}
			if _, dup := seen[name]; dup {
				return nil, &Error{Pattern: raw, Segment: part, Err: ErrDuplicateParam}
			}
			seen[name] = struct{}{}
			p.names = append(p.names, name)
			p.segments = append(p.segments, segment{kind: paramSegment, text: name})

		case part == "." || part == "..":
			return nil, &Error{Pattern: raw, Segment: part, Err: ErrTraversal}

		case strings.Contains(part, "*"):
			return nil, &Error{Pattern: raw, Segment: part, Err: ErrWildcardPosition}

		default:
			p.segments = append(p.segments, segment{kind: literalSegment, text: part})
		}
	}

	return p, nil
}

// MustCompile is like [Compile] but panics on error.
// Use it for patterns known at compile time.
func MustCompile(raw string) *Pattern {
	p, err := Compile(raw)
	if err != nil {
		panic(err)
	}
	return p
}

// Match reports whether path matches the pattern and returns the bound
// parameters. The returned map is nil when the pattern has no parameters.
func (p *Pattern) Match(path string) (Params, bool) {
	if p.matchAll {
		return nil, true
	}

	parts := split(path)
	var params Params

	for i, seg := range p.segments {
		if seg.kind == wildcardSegment {
			return params, true
		}
		if i >= len(parts) {
			return nil, false
		}

		switch seg.kind {
		case literalSegment:
			if parts[i] != seg.text {
				return nil, false
			}
		case paramSegment:
			if parts[i] == "" {
				return nil, false
			}
			if params == nil {
				params = make(Params, len(p.names))
			}
			params[seg.text] = parts[i]
		}
	}

	if len(parts) != len(p.segments) {
		return nil, false
	}
	return params, true
}

// String returns the source pattern.
func (p *Pattern) String() string {
	return p.raw
}

// Names returns the parameter names in declaration order.
func (p *Pattern) Names() []string {
	names := make([]string, len(p.names))
	copy(names, p.names)
	return names
}

// HasWildcard reports whether the pattern ends with '*'.
func (p *Pattern) HasWildcard() bool {
	return p.wildcard
}

// MatchesAll reports whether the pattern accepts every path.
func (p *Pattern) MatchesAll() bool {
	return p.matchAll
}

// Join concatenates a group prefix and a child pattern.
//
// An empty child resolves to the prefix itself and a bare "*" child becomes
// prefix + "/*". A single '/' separates the two parts.
func Join(prefix, child string) string {
	switch {
	case prefix == "":
		return child
	case child == "":
		return prefix
	case child == "*":
		return strings.TrimSuffix(prefix, "/") + "/*"
	}

	prefixSlash := strings.HasSuffix(prefix, "/")
	childSlash := strings.HasPrefix(child, "/")
	switch {
	case prefixSlash && childSlash:
		return prefix + child[1:]
	case !prefixSlash && !childSlash:
		return prefix + "/" + child
	default:
		return prefix + child
	}
}

// split drops one leading '/' and splits on the rest.
// The root path yields no segments.
func split(path string) []string {
	path = strings.TrimPrefix(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// paramName extracts and validates the identifier of a {name} segment.
func paramName(part string) (string, bool) {
	if len(part) < 3 || part[0] != '{' || part[len(part)-1] != '}' {
		return "", false
	}
	name := part[1 : len(part)-1]
	for i := 0; i < len(name); i++ {
		c := name[i]
		isLetter := c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
		isDigit := c >= '0' && c <= '9'
		if !isLetter && !isDigit && c != '_' {
			return "", false
		}
	}
	return name, true
}
