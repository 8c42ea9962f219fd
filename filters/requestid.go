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

package filters

import (
	"crypto/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"rivaas.dev/pipeline"
)

// AttrRequestID is the context attribute holding the request id.
const AttrRequestID = "request_id"

// RequestIDOption configures [RequestID].
type RequestIDOption func(*requestIDConfig)

type requestIDConfig struct {
	header        string
	generator     func() string
	allowClientID bool
}

// WithRequestIDHeader sets the header carrying the id. Default
// "x-request-id".
func WithRequestIDHeader(name string) RequestIDOption {
	return func(c *requestIDConfig) {
		c.header = strings.ToLower(name)
	}
}

// WithULID generates ULIDs instead of UUID v7 strings.
func WithULID() RequestIDOption {
	return func(c *requestIDConfig) {
		c.generator = generateULID
	}
}

// WithGenerator sets a custom id generator.
func WithGenerator(fn func() string) RequestIDOption {
	return func(c *requestIDConfig) {
		c.generator = fn
	}
}

// WithAllowClientID controls whether an id sent by the client is reused.
// Default true.
func WithAllowClientID(allow bool) RequestIDOption {
	return func(c *requestIDConfig) {
		c.allowClientID = allow
	}
}

// generateUUIDv7 returns a time-ordered UUID (RFC 9562).
func generateUUIDv7() string {
	return uuid.Must(uuid.NewV7()).String()
}

var (
	ulidEntropy   = ulid.Monotonic(rand.Reader, 0)
	ulidEntropyMu sync.Mutex
)

// generateULID returns a monotonic ULID. The entropy source is not safe
// for concurrent use.
func generateULID() string {
	ulidEntropyMu.Lock()
	defer ulidEntropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), ulidEntropy).String()
}

// RequestID returns a filter that assigns each request an id. The id is
// echoed in the response header and stored under [AttrRequestID].
//
// Example:
//
//	pipeline.Filter("*", filters.RequestID(filters.WithULID()))
func RequestID(opts ...RequestIDOption) pipeline.Callback {
	cfg := &requestIDConfig{
		header:        "x-request-id",
		generator:     generateUUIDv7,
		allowClientID: true,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *pipeline.Context) error {
		var id string
		if cfg.allowClientID {
			id = c.Request().Header(cfg.header)
		}
		if id == "" {
			id = cfg.generator()
		}
		c.SetAttribute(AttrRequestID, id)
		return c.SetHeader(cfg.header, id)
	}
}

// GetRequestID returns the id assigned by [RequestID], or "".
func GetRequestID(c *pipeline.Context) string {
	id, _ := c.Attribute(AttrRequestID).(string)
	return id
}
