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

// Package tracing records one OpenTelemetry span per dispatch.
//
// A [Tracer] implements [pipeline.Recorder]. The span starts before the
// first node, continues any trace found in the request headers
// (W3C traceparent by default) and is named after the matched route when
// the dispatch ends. Every callback that ran is added as a span event;
// callback faults are recorded as errors, and a fault left for the
// formatter marks the span as failed.
//
//	tracer, err := tracing.New(
//	    tracing.WithServiceName("orders"),
//	    tracing.WithStdout(os.Stdout),
//	    tracing.WithSampleRate(0.1),
//	)
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	d, err := pipeline.New(handlers, pipeline.WithRecorder(tracer))
//
// Callbacks reach the active span through the dispatch context:
//
//	span := trace.SpanFromContext(c.Context())
package tracing
