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
	"mime"
	"strconv"
	"strings"
	"time"
)

// ContentType is a parsed media type with its common parameters.
type ContentType struct {
	MediaType string  // e.g. "text/plain"
	Charset   string  // optional charset parameter
	Boundary  string  // multipart boundary
	Q         float64 // quality factor when parsed from an Accept list, 1 by default
}

// NewContentType returns a content type with the given media type and an
// optional charset.
func NewContentType(mediaType string, charset ...string) ContentType {
	ct := ContentType{MediaType: strings.ToLower(mediaType), Q: 1}
	if len(charset) > 0 {
		ct.Charset = charset[0]
	}
	return ct
}

// ParseContentType parses a Content-Type header value.
func ParseContentType(s string) (ContentType, error) {
	mediaType, params, err := mime.ParseMediaType(s)
	if err != nil {
		return ContentType{}, fmt.Errorf("invalid content type %q: %w", s, err)
	}

	ct := ContentType{
		MediaType: mediaType,
		Charset:   params["charset"],
		Boundary:  params["boundary"],
		Q:         1,
	}
	if q, ok := params["q"]; ok {
		if v, err := strconv.ParseFloat(q, 64); err == nil {
			ct.Q = v
		}
	}
	return ct, nil
}

// ParseAccept parses an Accept header into content types, skipping
// malformed entries.
func ParseAccept(s string) []ContentType {
	var out []ContentType
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if ct, err := ParseContentType(item); err == nil {
			out = append(out, ct)
		}
	}
	return out
}

// String formats the content type as a header value.
func (ct ContentType) String() string {
	params := map[string]string{}
	if ct.Charset != "" {
		params["charset"] = ct.Charset
	}
	if ct.Boundary != "" {
		params["boundary"] = ct.Boundary
	}
	if formatted := mime.FormatMediaType(ct.MediaType, params); formatted != "" {
		return formatted
	}
	return ct.MediaType
}

// ContentTypeFor guesses a content type from a file extension such as
// ".css". It returns false when the extension is unknown.
func ContentTypeFor(ext string) (ContentType, bool) {
	t := mime.TypeByExtension(ext)
	if t == "" {
		return ContentType{}, false
	}
	ct, err := ParseContentType(t)
	if err != nil {
		return ContentType{}, false
	}
	return ct, true
}

// Cookie is a request or response cookie.
type Cookie struct {
	Name     string
	Value    string
	MaxAge   int // seconds, negative deletes the cookie, zero leaves it a session cookie
	Path     string
	Domain   string
	Secure   bool
	HTTPOnly bool
	Expires  time.Time
}

// Deleted reports whether the cookie instructs the client to remove it.
func (c Cookie) Deleted() bool {
	return c.MaxAge < 0
}

// Part is one part of a multipart request body.
type Part struct {
	Name        string
	Filename    string
	Headers     Headers
	ContentType *ContentType
	Body        any
	Size        int64
}
