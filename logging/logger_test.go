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
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m), line)
		out = append(out, m)
	}
	return out
}

func TestNew_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := New(
		WithOutput(&buf),
		WithServiceName("orders"),
		WithServiceVersion("1.2.3"),
		WithEnvironment("test"),
	)
	require.NoError(t, err)

	logger.Info("hello", "user", "bob", "password", "hunter2", "Authorization", "Bearer x")
	logger.Debug("hidden")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	entry := lines[0]
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "orders", entry["service"])
	assert.Equal(t, "1.2.3", entry["version"])
	assert.Equal(t, "test", entry["env"])
	assert.Equal(t, "bob", entry["user"])
	assert.Equal(t, "***REDACTED***", entry["password"])
	assert.Equal(t, "***REDACTED***", entry["Authorization"])
}

func TestNew_Text(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := MustNew(WithTextHandler(), WithOutput(&buf), WithDebugLevel())
	logger.Debug("details", "n", 3)
	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.Contains(t, buf.String(), "n=3")
}

func TestNew_ReplaceAttrRunsAfterRedaction(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := MustNew(WithOutput(&buf), WithReplaceAttr(func(_ []string, a slog.Attr) slog.Attr {
		if a.Key == "user" {
			return slog.String("user", strings.ToUpper(a.Value.String()))
		}
		return a
	}))
	logger.Info("x", "user", "bob", "token", "t")

	entry := decodeLines(t, &buf)[0]
	assert.Equal(t, "BOB", entry["user"])
	assert.Equal(t, "***REDACTED***", entry["token"])
}

func TestNew_Errors(t *testing.T) {
	t.Parallel()

	_, err := New(WithHandlerType("xml"))
	require.ErrorIs(t, err, ErrInvalidHandler)

	_, err = New(WithOutput(nil))
	require.ErrorIs(t, err, ErrNilOutput)

	_, err = New(WithSampling(SamplingConfig{Initial: -1}))
	require.Error(t, err)

	assert.Panics(t, func() { MustNew(WithHandlerType("xml")) })
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{" warn ", LevelWarn, false},
		{"error", LevelError, false},
		{"loud", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidLevel)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConsoleHandler(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := MustNew(WithConsoleHandler(), WithOutput(&buf), WithServiceName("svc"))
	logger.WithGroup("req").Warn("slow request", "status", 200, "secret", "s")

	out := buf.String()
	assert.Contains(t, out, "WARN")
	assert.Contains(t, out, "slow request")
	assert.Contains(t, out, "service=")
	assert.Contains(t, out, "req.status=")
	assert.Contains(t, out, "***REDACTED***")
	assert.NotContains(t, out, "=s\n")
	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestConsoleHandler_Level(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := MustNew(WithConsoleHandler(), WithOutput(&buf), WithLevel(LevelWarn))
	logger.Info("quiet")
	assert.Empty(t, buf.String())
}

func TestSamplingHandler(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := MustNew(WithOutput(&buf), WithSampling(SamplingConfig{Initial: 2, Thereafter: 3}))
	for range 8 {
		logger.Info("tick")
	}
	logger.Error("always")

	lines := decodeLines(t, &buf)
	// entries 1, 2, then 5 and 8
	assert.Len(t, lines, 5)
	assert.Equal(t, "always", lines[len(lines)-1]["msg"])
}

func TestSamplingHandler_TickResets(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	h := newSamplingHandler(slog.NewJSONHandler(&buf, nil), SamplingConfig{Initial: 1, Thereafter: 100, Tick: time.Minute})
	now := time.Unix(0, 0)
	h.state.now = func() time.Time { return now }
	h.state.windowStart.Store(now.UnixNano())
	logger := slog.New(h)

	logger.Info("a")
	logger.Info("b")
	now = now.Add(2 * time.Minute)
	logger.With("k", "v").Info("c")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "a", lines[0]["msg"])
	assert.Equal(t, "c", lines[1]["msg"])
}
