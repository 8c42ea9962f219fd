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
	"iter"
	"net/http"
	"slices"
	"strings"
)

// Fields is an ordered multi-map used for query and form parameters.
// Keys are case-sensitive, keys keep their first-insertion order and values
// keep their insertion order per key.
//
// Fields is a value type: every mutating method returns a new Fields and
// leaves the receiver unchanged. The zero value is an empty set.
type Fields struct {
	keys   []string
	values map[string][]string
}

// NewFields builds Fields from alternating key/value strings.
// A trailing key without value gets the empty string.
func NewFields(pairs ...string) Fields {
	var f Fields
	for i := 0; i < len(pairs); i += 2 {
		value := ""
		if i+1 < len(pairs) {
			value = pairs[i+1]
		}
		f = f.Add(pairs[i], value)
	}
	return f
}

// clone returns a deep copy that may be mutated in place.
func (f Fields) clone() Fields {
	out := Fields{
		keys:   slices.Clone(f.keys),
		values: make(map[string][]string, len(f.values)+1),
	}
	for k, v := range f.values {
		out.values[k] = slices.Clone(v)
	}
	return out
}

// Add appends value to key.
func (f Fields) Add(key, value string) Fields {
	out := f.clone()
	if _, ok := out.values[key]; !ok {
		out.keys = append(out.keys, key)
	}
	out.values[key] = append(out.values[key], value)
	return out
}

// Set replaces every value of key.
func (f Fields) Set(key string, values ...string) Fields {
	out := f.clone()
	if _, ok := out.values[key]; !ok {
		out.keys = append(out.keys, key)
	}
	out.values[key] = slices.Clone(values)
	return out
}

// Del removes key.
func (f Fields) Del(key string) Fields {
	if !f.Has(key) {
		return f
	}
	out := f.clone()
	delete(out.values, key)
	out.keys = slices.DeleteFunc(out.keys, func(k string) bool { return k == key })
	return out
}

// Merge appends every value of other, keeping other's key order for new keys.
func (f Fields) Merge(other Fields) Fields {
	if other.Len() == 0 {
		return f
	}
	out := f.clone()
	for _, k := range other.keys {
		if _, ok := out.values[k]; !ok {
			out.keys = append(out.keys, k)
		}
		out.values[k] = append(out.values[k], other.values[k]...)
	}
	return out
}

// Get returns the first value of key, or "".
func (f Fields) Get(key string) string {
	if v := f.values[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}

// Values returns a copy of all values of key.
func (f Fields) Values(key string) []string {
	return slices.Clone(f.values[key])
}

// Has reports whether key is present.
func (f Fields) Has(key string) bool {
	_, ok := f.values[key]
	return ok
}

// Keys returns the keys in insertion order.
func (f Fields) Keys() []string {
	return slices.Clone(f.keys)
}

// Len returns the number of distinct keys.
func (f Fields) Len() int {
	return len(f.keys)
}

// All iterates keys in order with their values.
func (f Fields) All() iter.Seq2[string, []string] {
	return func(yield func(string, []string) bool) {
		for _, k := range f.keys {
			if !yield(k, slices.Clone(f.values[k])) {
				return
			}
		}
	}
}

// Equal reports whether both sets hold the same keys, in the same order,
// with the same values.
func (f Fields) Equal(other Fields) bool {
	if !slices.Equal(f.keys, other.keys) {
		return false
	}
	for _, k := range f.keys {
		if !slices.Equal(f.values[k], other.values[k]) {
			return false
		}
	}
	return true
}

// Headers is a [Fields] variant whose names are case-insensitive.
// Names are stored lower-cased.
type Headers struct {
	fields Fields
}

// NewHeaders builds Headers from alternating name/value strings.
func NewHeaders(pairs ...string) Headers {
	var h Headers
	for i := 0; i < len(pairs); i += 2 {
		value := ""
		if i+1 < len(pairs) {
			value = pairs[i+1]
		}
		h = h.Add(pairs[i], value)
	}
	return h
}

// HeadersFromHTTP converts net/http headers, lower-casing every name.
func HeadersFromHTTP(src http.Header) Headers {
	var h Headers
	keys := make([]string, 0, len(src))
	for k := range src {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		h = h.Set(k, src[k]...)
	}
	return h
}

// Add appends value to name.
func (h Headers) Add(name, value string) Headers {
	return Headers{fields: h.fields.Add(strings.ToLower(name), value)}
}

// Set replaces the values of name.
func (h Headers) Set(name string, values ...string) Headers {
	return Headers{fields: h.fields.Set(strings.ToLower(name), values...)}
}

// Del removes name.
func (h Headers) Del(name string) Headers {
	return Headers{fields: h.fields.Del(strings.ToLower(name))}
}

// Merge appends every value of other.
func (h Headers) Merge(other Headers) Headers {
	return Headers{fields: h.fields.Merge(other.fields)}
}

// Get returns the first value of name, or "".
func (h Headers) Get(name string) string {
	return h.fields.Get(strings.ToLower(name))
}

// Values returns all values of name.
func (h Headers) Values(name string) []string {
	return h.fields.Values(strings.ToLower(name))
}

// Has reports whether name is present.
func (h Headers) Has(name string) bool {
	return h.fields.Has(strings.ToLower(name))
}

// Names returns the lower-cased names in insertion order.
func (h Headers) Names() []string {
	return h.fields.Keys()
}

// Len returns the number of distinct names.
func (h Headers) Len() int {
	return h.fields.Len()
}

// All iterates names in order with their values.
func (h Headers) All() iter.Seq2[string, []string] {
	return h.fields.All()
}

// Equal reports whether both header sets are identical.
func (h Headers) Equal(other Headers) bool {
	return h.fields.Equal(other.fields)
}

// ToHTTP converts the headers into a net/http header map.
func (h Headers) ToHTTP() http.Header {
	out := make(http.Header, h.Len())
	for name, values := range h.All() {
		for _, v := range values {
			out.Add(name, v)
		}
	}
	return out
}
