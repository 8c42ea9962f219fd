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
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

func (t *Tracer) initializeProvider() error {
	switch t.provider {
	case CustomProvider:
		if t.tracerProvider == nil {
			return errors.New("custom tracer provider is nil")
		}
		t.emitDebug("Using custom user-provided tracer provider")
	case NoopProvider:
		t.initSDKProvider(t.exporter, false)
	case StdoutProvider:
		var opts []stdouttrace.Option
		if t.stdout != nil {
			opts = append(opts, stdouttrace.WithWriter(t.stdout))
		}
		if t.prettyPrint {
			opts = append(opts, stdouttrace.WithPrettyPrint())
		}
		exporter, err := stdouttrace.New(opts...)
		if err != nil {
			return fmt.Errorf("failed to create stdout exporter: %w", err)
		}
		t.initSDKProvider(exporter, true)
	default:
		return fmt.Errorf("unsupported tracing provider: %s", t.provider)
	}

	if t.registerGlobal {
		t.emitDebug("Setting global OpenTelemetry tracer provider", "provider", t.provider)
		otel.SetTracerProvider(t.tracerProvider)
	}

	t.tracer = t.tracerProvider.Tracer(tracerName)
	t.emitInfo("Tracing initialized", "provider", t.provider, "service", t.serviceName)
	return nil
}

// initSDKProvider builds an SDK provider around exporter, which may be
// nil. Batched export suits the stdout writer; other exporters get spans
// synchronously.
func (t *Tracer) initSDKProvider(exporter sdktrace.SpanExporter, batch bool) {
	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(createResource(t.serviceName, t.serviceVersion)),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(t.sampleRate))),
	}
	switch {
	case exporter == nil:
	case batch:
		opts = append(opts, sdktrace.WithBatcher(exporter))
	default:
		opts = append(opts, sdktrace.WithSyncer(exporter))
	}

	tp := sdktrace.NewTracerProvider(opts...)
	t.sdkProvider = tp
	t.tracerProvider = tp
}

func createResource(serviceName, serviceVersion string) *resource.Resource {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(serviceName),
		semconv.ServiceVersion(serviceVersion),
	)
}
