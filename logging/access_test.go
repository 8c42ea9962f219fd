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
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rivaas.dev/pipeline"
	"rivaas.dev/pipeline/message"
)

func accessDispatcher(rec *AccessRecorder) *pipeline.Dispatcher {
	return pipeline.MustNew([]pipeline.Handler{
		pipeline.Get("/ok/{id}", func(c *pipeline.Context) error { return c.OK("fine") }),
		pipeline.Get("/fail", func(*pipeline.Context) error { return errors.New("broken") }),
		pipeline.Get("/health", func(c *pipeline.Context) error { return c.OK("up") }),
	}, pipeline.WithRecorder(rec))
}

func TestAccessRecorder(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rec := NewAccessRecorder(MustNew(WithOutput(&buf)), WithExcludePaths("/health"))
	d := accessDispatcher(rec)

	for _, p := range []string{"/ok/1", "/fail", "/missing", "/health"} {
		d.Process(context.Background(), message.NewRequest(message.GET, p), nil)
	}

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 3)

	assert.Equal(t, "INFO", lines[0]["level"])
	assert.Equal(t, "/ok/1", lines[0]["path"])
	assert.Equal(t, "/ok/{id}", lines[0]["route"])
	assert.InDelta(t, 200, lines[0]["status"], 0)

	assert.Equal(t, "ERROR", lines[1]["level"])
	assert.Equal(t, "broken", lines[1]["fault"])
	assert.InDelta(t, 500, lines[1]["status"], 0)

	assert.Equal(t, "WARN", lines[2]["level"])
	assert.InDelta(t, 404, lines[2]["status"], 0)
}

func TestAccessRecorder_ErrorsOnly(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	d := accessDispatcher(NewAccessRecorder(MustNew(WithOutput(&buf)), WithErrorsOnly(), WithExcludePrefixes("/he")))
	for _, p := range []string{"/ok/1", "/fail", "/health"} {
		d.Process(context.Background(), message.NewRequest(message.GET, p), nil)
	}

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "/fail", lines[0]["path"])
}

func TestAccessRecorder_SampleRate(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	d := accessDispatcher(NewAccessRecorder(MustNew(WithOutput(&buf)), WithSampleRate(0)))

	req := message.NewRequest(message.GET, "/ok/1").WithHeader("x-request-id", "abc")
	d.Process(context.Background(), req, nil)
	assert.Empty(t, buf.String())

	d.Process(context.Background(), message.NewRequest(message.GET, "/ok/1"), nil)
	assert.NotEmpty(t, buf.String(), "requests without id are always logged")
}

func TestSampleByHash(t *testing.T) {
	t.Parallel()

	assert.True(t, sampleByHash("", 0))
	assert.Equal(t, sampleByHash("abc", 0.5), sampleByHash("abc", 0.5))
}
