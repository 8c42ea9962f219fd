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

package message

import (
	"fmt"
	"math/bits"
	"strings"
)

// Method is an HTTP request method.
type Method string

// Supported request methods.
const (
	GET     Method = "GET"
	HEAD    Method = "HEAD"
	POST    Method = "POST"
	PUT     Method = "PUT"
	DELETE  Method = "DELETE"
	TRACE   Method = "TRACE"
	OPTIONS Method = "OPTIONS"
	PATCH   Method = "PATCH"
)

// methodOrder fixes the bit assigned to each method in a [Methods] set.
var methodOrder = [...]Method{GET, HEAD, POST, PUT, DELETE, TRACE, OPTIONS, PATCH}

// ParseMethod converts s into a [Method]. The comparison is case-insensitive.
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToUpper(strings.TrimSpace(s)))
	if m.bit() == 0 {
		return "", fmt.Errorf("unsupported HTTP method %q", s)
	}
	return m, nil
}

// String returns the method name.
func (m Method) String() string {
	return string(m)
}

func (m Method) bit() Methods {
	for i, known := range methodOrder {
		if known == m {
			return 1 << i
		}
	}
	return 0
}

// Methods is an immutable set of request methods.
// The zero value is the empty set, which predicates treat as "any method".
type Methods uint16

// MethodSet builds a set from the given methods. Unknown methods are ignored.
func MethodSet(methods ...Method) Methods {
	var s Methods
	for _, m := range methods {
		s |= m.bit()
	}
	return s
}

// AllMethods returns the set containing every supported method.
func AllMethods() Methods {
	return MethodSet(methodOrder[:]...)
}

// With returns a copy of the set including methods.
func (s Methods) With(methods ...Method) Methods {
	return s | MethodSet(methods...)
}

// Without returns a copy of the set excluding methods.
//
// Example:
//
//	fallback := message.AllMethods().Without(message.GET, message.PUT, message.POST)
func (s Methods) Without(methods ...Method) Methods {
	return s &^ MethodSet(methods...)
}

// Contains reports whether m belongs to the set.
func (s Methods) Contains(m Method) bool {
	b := m.bit()
	return b != 0 && s&b != 0
}

// Empty reports whether the set has no methods.
func (s Methods) Empty() bool {
	return s == 0
}

// Len returns the number of methods in the set.
func (s Methods) Len() int {
	return bits.OnesCount16(uint16(s))
}

// Slice returns the methods in a stable order.
func (s Methods) Slice() []Method {
	out := make([]Method, 0, s.Len())
	for i, m := range methodOrder {
		if s&(1<<i) != 0 {
			out = append(out, m)
		}
	}
	return out
}

// String renders the set as "GET|POST", or "*" for the empty set.
func (s Methods) String() string {
	if s.Empty() {
		return "*"
	}
	names := make([]string, 0, s.Len())
	for _, m := range s.Slice() {
		names = append(names, string(m))
	}
	return strings.Join(names, "|")
}

// Protocol is the request protocol reported by the transport.
type Protocol string

// Known protocols.
const (
	HTTP  Protocol = "HTTP"
	HTTPS Protocol = "HTTPS"
	HTTP2 Protocol = "HTTP2"
	H2C   Protocol = "H2C"
)

// Secure reports whether the protocol runs over TLS.
func (p Protocol) Secure() bool {
	return p == HTTPS || p == HTTP2
}

// Scheme returns the URL scheme for the protocol.
func (p Protocol) Scheme() string {
	if p.Secure() {
		return "https"
	}
	return "http"
}
