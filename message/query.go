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
	"net/url"
	"strings"
)

// ParseQueryString parses a raw query string into ordered [Fields].
//
// Keys and values are trimmed before decoding, so "a =1" yields key "a"
// while "a%20=1" yields key "a ". Pairs without '=' get an empty value and
// pairs with a blank key are dropped. Both '+' and %XX escapes decode.
func ParseQueryString(query string) Fields {
	var f Fields
	for _, pair := range strings.Split(query, "&") {
		if strings.TrimSpace(pair) == "" {
			continue
		}

		key, value, _ := strings.Cut(pair, "=")
		key = unescape(strings.TrimSpace(key))
		value = unescape(strings.TrimSpace(value))
		if key == "" {
			continue
		}
		f = f.Add(key, value)
	}
	return f
}

// FormatQueryString renders f as a query string. Values of one key are
// grouped together and empty values are written as a bare key.
func FormatQueryString(f Fields) string {
	parts := make([]string, 0, f.Len())
	for key, values := range f.All() {
		k := url.QueryEscape(key)
		for _, v := range values {
			if v == "" {
				parts = append(parts, k)
			} else {
				parts = append(parts, k+"="+url.QueryEscape(v))
			}
		}
	}
	return strings.Join(parts, "&")
}

func unescape(s string) string {
	decoded, err := url.QueryUnescape(s)
	if err != nil {
		return s
	}
	return decoded
}
