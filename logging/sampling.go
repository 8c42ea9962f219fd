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
	"log/slog"
	"sync/atomic"
	"time"
)

// samplingHandler drops entries below error level according to a
// [SamplingConfig]. Clones made by WithAttrs and WithGroup share the
// counter.
type samplingHandler struct {
	next  slog.Handler
	cfg   SamplingConfig
	state *samplingState
}

type samplingState struct {
	count       atomic.Int64
	windowStart atomic.Int64
	now         func() time.Time
}

func newSamplingHandler(next slog.Handler, cfg SamplingConfig) *samplingHandler {
	st := &samplingState{now: time.Now}
	st.windowStart.Store(st.now().UnixNano())
	return &samplingHandler{next: next, cfg: cfg, state: st}
}

func (h *samplingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *samplingHandler) Handle(ctx context.Context, r slog.Record) error {
	if !h.sample(r.Level) {
		return nil
	}
	return h.next.Handle(ctx, r)
}

func (h *samplingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &samplingHandler{next: h.next.WithAttrs(attrs), cfg: h.cfg, state: h.state}
}

func (h *samplingHandler) WithGroup(name string) slog.Handler {
	return &samplingHandler{next: h.next.WithGroup(name), cfg: h.cfg, state: h.state}
}

// sample logs the first Initial entries of each window, then one in
// every Thereafter. Errors always pass.
func (h *samplingHandler) sample(level slog.Level) bool {
	if level >= slog.LevelError {
		return true
	}

	if h.cfg.Tick > 0 {
		now := h.state.now().UnixNano()
		start := h.state.windowStart.Load()
		if now-start >= int64(h.cfg.Tick) && h.state.windowStart.CompareAndSwap(start, now) {
			h.state.count.Store(0)
		}
	}

	count := h.state.count.Add(1)
	if count <= int64(h.cfg.Initial) {
		return true
	}
	if h.cfg.Thereafter == 0 {
		return true
	}
	return (count-int64(h.cfg.Initial))%int64(h.cfg.Thereafter) == 0
}
