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
	"net/http"
	"strconv"
)

// Status is an HTTP response status code. Any integer in [100, 599] is a
// legal status, registered or not.
type Status int

// Commonly used statuses.
const (
	StatusOK                      Status = http.StatusOK
	StatusCreated                 Status = http.StatusCreated
	StatusAccepted                Status = http.StatusAccepted
	StatusNoContent               Status = http.StatusNoContent
	StatusPartialContent          Status = http.StatusPartialContent
	StatusFound                   Status = http.StatusFound
	StatusNotModified             Status = http.StatusNotModified
	StatusBadRequest              Status = http.StatusBadRequest
	StatusUnauthorized            Status = http.StatusUnauthorized
	StatusForbidden               Status = http.StatusForbidden
	StatusNotFound                Status = http.StatusNotFound
	StatusMethodNotAllowed        Status = http.StatusMethodNotAllowed
	StatusConflict                Status = http.StatusConflict
	StatusRequestEntityTooLarge   Status = http.StatusRequestEntityTooLarge
	StatusUnprocessableEntity     Status = http.StatusUnprocessableEntity
	StatusTooManyRequests         Status = http.StatusTooManyRequests
	StatusInternalServerError     Status = http.StatusInternalServerError
	StatusNotImplemented          Status = http.StatusNotImplemented
	StatusServiceUnavailable      Status = http.StatusServiceUnavailable
	StatusHTTPVersionNotSupported Status = http.StatusHTTPVersionNotSupported
)

// Code returns the numeric status.
func (s Status) Code() int {
	return int(s)
}

// Valid reports whether the status lies in the legal range.
func (s Status) Valid() bool {
	return s >= 100 && s <= 599
}

// Text returns the registered reason phrase, or "" for unregistered codes.
func (s Status) Text() string {
	return http.StatusText(int(s))
}

// IsError reports whether the status is a client or server error.
func (s Status) IsError() bool {
	return s >= 400
}

// String renders the status as "404 Not Found" or just "588" when the code
// has no registered phrase.
func (s Status) String() string {
	code := strconv.Itoa(int(s))
	if text := s.Text(); text != "" {
		return code + " " + text
	}
	return code
}

// Ptr returns a pointer to a copy of s, convenient for optional fields.
func (s Status) Ptr() *Status {
	return &s
}
