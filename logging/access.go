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

package logging

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"log/slog"
	"strings"
	"time"

	"rivaas.dev/pipeline"
	"rivaas.dev/pipeline/message"
)

// AccessRecorder is a [pipeline.Recorder] writing one access log entry per
// dispatch. Entries for 5xx responses are logged at error, 4xx and slow
// dispatches at warn and everything else at info.
type AccessRecorder struct {
	logger          *slog.Logger
	excludePaths    map[string]bool
	excludePrefixes []string
	slowThreshold   time.Duration
	errorsOnly      bool
	sampleRate      float64
	requestIDHeader string
}

// AccessOption configures an [AccessRecorder].
type AccessOption func(*AccessRecorder)

// NewAccessRecorder creates an access log recorder writing to logger.
//
// Example:
//
//	rec := logging.NewAccessRecorder(logger,
//	    logging.WithExcludePaths("/health"),
//	    logging.WithSlowThreshold(500*time.Millisecond),
//	)
func NewAccessRecorder(logger *slog.Logger, opts ...AccessOption) *AccessRecorder {
	r := &AccessRecorder{
		logger:          logger,
		excludePaths:    map[string]bool{},
		sampleRate:      1,
		requestIDHeader: "x-request-id",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// WithExcludePaths skips dispatches for these exact paths.
func WithExcludePaths(paths ...string) AccessOption {
	return func(r *AccessRecorder) {
		for _, p := range paths {
			r.excludePaths[p] = true
		}
	}
}

// WithExcludePrefixes skips dispatches whose path starts with one of the
// prefixes.
func WithExcludePrefixes(prefixes ...string) AccessOption {
	return func(r *AccessRecorder) {
		r.excludePrefixes = append(r.excludePrefixes, prefixes...)
	}
}

// WithSlowThreshold marks dispatches slower than d as slow and logs them at
// warn.
func WithSlowThreshold(d time.Duration) AccessOption {
	return func(r *AccessRecorder) { r.slowThreshold = d }
}

// WithErrorsOnly logs only error statuses, faults and slow dispatches.
func WithErrorsOnly() AccessOption {
	return func(r *AccessRecorder) { r.errorsOnly = true }
}

// WithSampleRate logs a fraction of successful dispatches, chosen by a
// hash of the request id so that retries of one request are sampled alike.
// Errors and slow dispatches are always logged.
func WithSampleRate(rate float64) AccessOption {
	return func(r *AccessRecorder) { r.sampleRate = rate }
}

// WithRequestIDHeader sets the request header holding the request id.
// Default: "x-request-id".
func WithRequestIDHeader(name string) AccessOption {
	return func(r *AccessRecorder) { r.requestIDHeader = strings.ToLower(name) }
}

type accessState struct {
	start time.Time
	skip  bool
}

// OnDispatchStart implements [pipeline.Recorder].
func (r *AccessRecorder) OnDispatchStart(ctx context.Context, req message.Request) (context.Context, any) {
	return ctx, &accessState{start: time.Now(), skip: r.excluded(req.Path)}
}

// OnNode implements [pipeline.Recorder].
func (r *AccessRecorder) OnNode(context.Context, any, pipeline.Node, error) {}

// OnDispatchEnd implements [pipeline.Recorder].
func (r *AccessRecorder) OnDispatchEnd(ctx context.Context, state any, c *pipeline.Context) {
	st, ok := state.(*accessState)
	if !ok || st.skip || r.logger == nil {
		return
	}

	req := c.Request()
	status := c.Status()
	duration := time.Since(st.start)
	isError := status.IsError() || c.Faulted()
	isSlow := r.slowThreshold > 0 && duration >= r.slowThreshold

	if !isError && !isSlow {
		if r.errorsOnly {
			return
		}
		if r.sampleRate < 1 && !sampleByHash(req.Header(r.requestIDHeader), r.sampleRate) {
			return
		}
	}

	fields := []any{
		"method", string(req.Method),
		"path", req.Path,
		"status", status.Code(),
		"duration_ms", duration.Milliseconds(),
		"host", req.Host,
		"proto", string(req.Protocol),
	}
	if route := c.RoutePattern(); route != "" {
		fields = append(fields, "route", route)
	}
	if c.Faulted() {
		fields = append(fields, "fault", c.Fault().Error())
	}
	if isSlow {
		fields = append(fields, "slow", true)
	}

	switch {
	case status >= 500:
		r.logger.ErrorContext(ctx, "access", fields...)
	case status >= 400, isSlow:
		r.logger.WarnContext(ctx, "access", fields...)
	default:
		r.logger.InfoContext(ctx, "access", fields...)
	}
}

func (r *AccessRecorder) excluded(path string) bool {
	if r.excludePaths[path] {
		return true
	}
	for _, prefix := range r.excludePrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// sampleByHash decides deterministically from id. Requests without an id
// are always logged.
func sampleByHash(id string, rate float64) bool {
	if id == "" {
		return true
	}
	h := sha256.Sum256([]byte(id))
	return binary.BigEndian.Uint64(h[:8]) <= uint64(rate*float64(^uint64(0)))
}
