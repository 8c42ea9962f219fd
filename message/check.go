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
	"strings"
)

// reservedHeaders are set through dedicated Request/Response fields and are
// rejected when handlers try to set them as plain headers.
var reservedHeaders = map[string]struct{}{
	"content-type":  {},
	"accept":        {},
	"set-cookie":    {},
	"authorization": {},
}

// ValidationError reports header names rejected by [CheckHeaderNames].
// It signals a programming mistake and is returned to the caller rather
// than being turned into a response.
type ValidationError struct {
	Invalid  []string // Names that are not lower-case letters, digits or '-'
	Reserved []string // Names that must be set through dedicated fields
}

// Error lists every offending name.
func (e *ValidationError) Error() string {
	var sb strings.Builder
	if len(e.Invalid) > 0 {
		sb.WriteString("Header names must be lower-case and contain only letters, digits or '-': ")
		sb.WriteString(quoteAll(e.Invalid))
	}
	if len(e.Reserved) > 0 {
		if sb.Len() > 0 {
			sb.WriteString(". ")
		}
		sb.WriteString("Special headers must be set through their dedicated fields: ")
		sb.WriteString(quoteAll(e.Reserved))
	}
	return sb.String()
}

// CheckHeaderNames validates header names as a handler wrote them.
// Names must be lower-case and contain only letters, digits and '-', and
// must not be one of the reserved names (content-type, accept, set-cookie,
// authorization). When unchecked is true every name is accepted.
//
// All offending names are reported in a single [*ValidationError].
func CheckHeaderNames(unchecked bool, names ...string) error {
	if unchecked {
		return nil
	}

	var verr ValidationError
	for _, name := range names {
		if !validHeaderName(name) {
			verr.Invalid = append(verr.Invalid, name)
			continue
		}
		if _, reserved := reservedHeaders[name]; reserved {
			verr.Reserved = append(verr.Reserved, name)
		}
	}

	if len(verr.Invalid) == 0 && len(verr.Reserved) == 0 {
		return nil
	}
	return &verr
}

// CheckHeaders validates every name in h. See [CheckHeaderNames].
func CheckHeaders(h Headers, unchecked bool) error {
	return CheckHeaderNames(unchecked, h.Names()...)
}

func validHeaderName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if !(c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '-') {
			return false
		}
	}
	return true
}

func quoteAll(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = "'" + n + "'"
	}
	return strings.Join(quoted, ", ")
}
