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
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"rivaas.dev/pipeline"
	"rivaas.dev/pipeline/message"
)

const attrPrefixHeader = "http.request.header."

var sensitiveHeaders = map[string]bool{
	"authorization":       true,
	"cookie":              true,
	"set-cookie":          true,
	"x-api-key":           true,
	"x-auth-token":        true,
	"proxy-authorization": true,
}

func lower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// OnDispatchStart implements [pipeline.Recorder]. The returned context
// carries the dispatch span.
func (t *Tracer) OnDispatchStart(ctx context.Context, req message.Request) (context.Context, any) {
	ctx = t.ExtractTraceContext(ctx, req.Headers)

	attrs := make([]attribute.KeyValue, 0, 6+len(t.recordHeaders))
	attrs = append(attrs,
		attribute.String("http.request.method", string(req.Method)),
		attribute.String("url.path", req.Path),
		attribute.String("server.address", req.Host),
		attribute.String("service.name", t.serviceName),
	)
	if req.Protocol != "" {
		attrs = append(attrs, attribute.String("network.protocol.name", string(req.Protocol)))
	}
	for _, name := range t.recordHeaders {
		if v := req.Header(name); v != "" {
			attrs = append(attrs, attribute.String(attrPrefixHeader+name, v))
		}
	}

	ctx, span := t.tracer.Start(ctx, string(req.Method)+" "+req.Path,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attrs...),
	)
	return ctx, span
}

// OnNode implements [pipeline.Recorder].
func (t *Tracer) OnNode(_ context.Context, state any, node pipeline.Node, err error) {
	span, ok := state.(trace.Span)
	if !ok || !span.IsRecording() {
		return
	}
	if t.recordNodes {
		span.AddEvent("pipeline.node", trace.WithAttributes(
			attribute.String("pipeline.node.kind", node.Kind().String()),
			attribute.Int("pipeline.node.index", node.Index()),
			attribute.String("pipeline.node.pattern", node.Pattern()),
		))
	}
	if err != nil {
		span.RecordError(err, trace.WithAttributes(attribute.String("error.type", errorType(err))))
	}
}

// OnDispatchEnd implements [pipeline.Recorder].
func (t *Tracer) OnDispatchEnd(_ context.Context, state any, c *pipeline.Context) {
	span, ok := state.(trace.Span)
	if !ok {
		return
	}
	defer span.End()

	status := c.Status().Code()
	span.SetAttributes(attribute.Int("http.response.status_code", status))
	if route := c.RoutePattern(); route != "" {
		span.SetName(string(c.Method()) + " " + route)
		span.SetAttributes(attribute.String("http.route", route))
	}

	switch {
	case c.Faulted():
		span.SetAttributes(attribute.String("error.type", errorType(c.Fault())))
		span.SetStatus(codes.Error, c.Fault().Error())
	case status >= 500:
		span.SetStatus(codes.Error, c.Status().Text())
	}
}

func errorType(err error) string {
	var f *pipeline.Fault
	if errors.As(err, &f) && f.Kind() != nil {
		return f.Kind().Name()
	}
	return "error"
}
