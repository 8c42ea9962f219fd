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
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Option configures a [Tracer].
type Option func(*Tracer)

// WithTracerProvider uses a caller-owned tracer provider.
// [Tracer.Shutdown] does not stop it, and sampling is left to it.
func WithTracerProvider(provider trace.TracerProvider) Option {
	return func(t *Tracer) {
		t.tracerProvider = provider
		t.customTracerProvider = true
		t.provider = CustomProvider
		t.providerSetCount++
	}
}

// WithGlobalTracerProvider registers the tracer provider as the global
// OpenTelemetry tracer provider.
func WithGlobalTracerProvider() Option {
	return func(t *Tracer) {
		t.registerGlobal = true
	}
}

// WithServiceName sets the service.name resource attribute.
func WithServiceName(name string) Option {
	return func(t *Tracer) {
		t.serviceName = name
	}
}

// WithServiceVersion sets the service.version resource attribute.
func WithServiceVersion(version string) Option {
	return func(t *Tracer) {
		t.serviceVersion = version
	}
}

// WithSampleRate samples the given fraction of new traces, between 0 and
// 1. Sampled parents are always continued.
func WithSampleRate(rate float64) Option {
	return func(t *Tracer) {
		t.sampleRate = rate
	}
}

// WithCustomPropagator replaces the global text map propagator.
//
// Example:
//
//	tracing.WithCustomPropagator(propagation.TraceContext{})
func WithCustomPropagator(propagator propagation.TextMapPropagator) Option {
	return func(t *Tracer) {
		if propagator != nil {
			t.propagator = propagator
		}
	}
}

// WithEventHandler receives internal operational events.
func WithEventHandler(handler EventHandler) Option {
	return func(t *Tracer) {
		t.eventHandler = handler
	}
}

// WithLogger routes internal events to logger.
func WithLogger(logger *slog.Logger) Option {
	return WithEventHandler(DefaultEventHandler(logger))
}

// WithHeaders records the named request headers as span attributes.
// Credentials headers are never recorded.
func WithHeaders(names ...string) Option {
	return func(t *Tracer) {
		for _, name := range names {
			if !sensitiveHeaders[lower(name)] {
				t.recordHeaders = append(t.recordHeaders, lower(name))
			}
		}
	}
}

// WithoutNodeEvents stops adding a span event per callback.
func WithoutNodeEvents() Option {
	return func(t *Tracer) {
		t.recordNodes = false
	}
}

// WithNoop creates spans without exporting them.
func WithNoop() Option {
	return func(t *Tracer) {
		t.provider = NoopProvider
		t.providerSetCount++
	}
}

// WithStdout writes finished spans to w as JSON. A nil w means os.Stdout.
func WithStdout(w io.Writer) Option {
	return func(t *Tracer) {
		t.provider = StdoutProvider
		t.stdout = w
		t.providerSetCount++
	}
}

// WithPrettyPrint indents the stdout output.
func WithPrettyPrint() Option {
	return func(t *Tracer) {
		t.prettyPrint = true
	}
}

// WithExporter sends spans synchronously to exporter. Useful with
// tracetest.InMemoryExporter.
func WithExporter(exporter sdktrace.SpanExporter) Option {
	return func(t *Tracer) {
		t.exporter = exporter
		t.provider = NoopProvider
		t.providerSetCount++
	}
}
