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

package tracing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"rivaas.dev/pipeline/message"
)

// DefaultSampleRate samples every dispatch.
const DefaultSampleRate = 1.0

const tracerName = "rivaas.dev/pipeline/tracing"

// EventType represents the severity of an internal operational event.
type EventType int

const (
	// EventError indicates an error event.
	EventError EventType = iota
	// EventWarning indicates a warning event.
	EventWarning
	// EventInfo indicates an informational event.
	EventInfo
	// EventDebug indicates a debug event.
	EventDebug
)

// Event is an internal operational event of the tracing package.
type Event struct {
	Type    EventType
	Message string
	Args    []any
}

// EventHandler processes internal operational events.
type EventHandler func(Event)

// DefaultEventHandler returns an EventHandler that logs to logger. A nil
// logger discards all events.
func DefaultEventHandler(logger *slog.Logger) EventHandler {
	if logger == nil {
		return func(Event) {}
	}
	return func(e Event) {
		switch e.Type {
		case EventError:
			logger.Error(e.Message, e.Args...)
		case EventWarning:
			logger.Warn(e.Message, e.Args...)
		case EventInfo:
			logger.Info(e.Message, e.Args...)
		case EventDebug:
			logger.Debug(e.Message, e.Args...)
		}
	}
}

// Provider names a built-in trace exporter.
type Provider string

const (
	// NoopProvider creates spans without exporting them (default).
	NoopProvider Provider = "noop"
	// StdoutProvider writes finished spans as JSON.
	StdoutProvider Provider = "stdout"
	// CustomProvider is reported when [WithTracerProvider] was used.
	CustomProvider Provider = "custom"
)

// Tracer starts dispatch spans. It is safe for concurrent use.
type Tracer struct {
	tracer         trace.Tracer
	tracerProvider trace.TracerProvider
	sdkProvider    *sdktrace.TracerProvider
	propagator     propagation.TextMapPropagator
	eventHandler   EventHandler
	exporter       sdktrace.SpanExporter

	provider         Provider
	providerSetCount int
	stdout           io.Writer
	prettyPrint      bool

	serviceName    string
	serviceVersion string
	sampleRate     float64
	recordHeaders  []string
	recordNodes    bool

	customTracerProvider bool
	registerGlobal       bool

	validationErrors []error
}

// New creates a [Tracer].
func New(opts ...Option) (*Tracer, error) {
	t := &Tracer{
		provider:       NoopProvider,
		propagator:     otel.GetTextMapPropagator(),
		serviceName:    "pipeline",
		serviceVersion: "dev",
		sampleRate:     DefaultSampleRate,
		recordNodes:    true,
	}
	for _, opt := range opts {
		opt(t)
	}

	if err := t.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := t.initializeProvider(); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	return t, nil
}

// MustNew is like [New] but panics on error.
func MustNew(opts ...Option) *Tracer {
	t, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize tracing: %v", err))
	}
	return t
}

func (t *Tracer) validate() error {
	if len(t.validationErrors) > 0 {
		return errors.Join(t.validationErrors...)
	}
	if t.providerSetCount > 1 {
		return errors.New("conflicting provider options: only one of WithNoop, WithStdout, WithExporter or WithTracerProvider can be used")
	}
	if t.serviceName == "" {
		return errors.New("service name cannot be empty")
	}
	if t.sampleRate < 0 || t.sampleRate > 1 {
		return fmt.Errorf("sample rate must be between 0.0 and 1.0, got %f", t.sampleRate)
	}
	return nil
}

// Provider returns the active provider.
func (t *Tracer) Provider() Provider {
	return t.provider
}

// ServiceName returns the service name recorded on spans.
func (t *Tracer) ServiceName() string {
	return t.serviceName
}

// Shutdown flushes and stops the tracer provider. Providers passed through
// [WithTracerProvider] belong to the caller and are left running.
func (t *Tracer) Shutdown(ctx context.Context) error {
	if t.sdkProvider == nil || t.customTracerProvider {
		return nil
	}
	t.emitDebug("Shutting down tracer provider", "provider", t.provider)
	if err := t.sdkProvider.Shutdown(ctx); err != nil {
		t.emitError("Error shutting down tracer provider", "error", err)
		return fmt.Errorf("tracer provider shutdown: %w", err)
	}
	return nil
}

// ForceFlush exports every finished span.
func (t *Tracer) ForceFlush(ctx context.Context) error {
	if t.sdkProvider == nil {
		return nil
	}
	return t.sdkProvider.ForceFlush(ctx)
}

// ExtractTraceContext returns ctx carrying the remote span found in
// headers, if any.
func (t *Tracer) ExtractTraceContext(ctx context.Context, headers message.Headers) context.Context {
	return t.propagator.Extract(ctx, &headerCarrier{headers: &headers})
}

// InjectTraceContext returns headers with the span of ctx written in the
// propagator's format.
func (t *Tracer) InjectTraceContext(ctx context.Context, headers message.Headers) message.Headers {
	t.propagator.Inject(ctx, &headerCarrier{headers: &headers})
	return headers
}

// TraceID returns the trace id of the span in ctx, or "" when there is
// none.
func TraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}

// SpanID returns the span id of the span in ctx, or "" when there is none.
func SpanID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasSpanID() {
		return ""
	}
	return sc.SpanID().String()
}

// headerCarrier adapts immutable [message.Headers] to a
// [propagation.TextMapCarrier].
type headerCarrier struct {
	headers *message.Headers
}

func (c *headerCarrier) Get(key string) string {
	return c.headers.Get(key)
}

func (c *headerCarrier) Set(key, value string) {
	*c.headers = c.headers.Set(key, value)
}

func (c *headerCarrier) Keys() []string {
	return c.headers.Names()
}

func (t *Tracer) emit(typ EventType, msg string, args ...any) {
	if t.eventHandler != nil {
		t.eventHandler(Event{Type: typ, Message: msg, Args: args})
	}
}

func (t *Tracer) emitError(msg string, args ...any) { t.emit(EventError, msg, args...) }
func (t *Tracer) emitInfo(msg string, args ...any)  { t.emit(EventInfo, msg, args...) }
func (t *Tracer) emitDebug(msg string, args ...any) { t.emit(EventDebug, msg, args...) }
