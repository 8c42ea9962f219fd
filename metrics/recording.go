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

package metrics

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"rivaas.dev/pipeline"
	"rivaas.dev/pipeline/message"
)

var metricNameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_.-]*$`)

const maxMetricNameLength = 255

// reservedPrefixes belong to Prometheus or to the built-in instruments.
var reservedPrefixes = []string{"__", "pipeline.", "pipeline_"}

// limitError is returned when the custom metrics limit is reached.
type limitError struct {
	metricName string
	limit      int
}

func (e *limitError) Error() string {
	return fmt.Sprintf("metrics limit reached: cannot create '%s' (limit: %d)", e.metricName, e.limit)
}

func validateMetricName(name string) error {
	if name == "" {
		return errors.New("metric name cannot be empty")
	}
	if len(name) > maxMetricNameLength {
		return fmt.Errorf("metric name too long: %d characters (max %d)", len(name), maxMetricNameLength)
	}
	if !metricNameRegex.MatchString(name) {
		return fmt.Errorf("invalid metric name '%s': must start with letter and contain only alphanumeric, underscore, dot, or hyphen", name)
	}
	for _, prefix := range reservedPrefixes {
		if strings.HasPrefix(name, prefix) {
			return fmt.Errorf("metric name '%s' uses reserved prefix '%s'", name, prefix)
		}
	}
	return nil
}

// dispatchState is carried between the hooks of one dispatch.
type dispatchState struct {
	start time.Time
	attrs []attribute.KeyValue
}

// OnDispatchStart implements [pipeline.Recorder].
func (r *Recorder) OnDispatchStart(ctx context.Context, req message.Request) (context.Context, any) {
	st := &dispatchState{start: time.Now()}
	st.attrs = make([]attribute.KeyValue, 3, 8)
	st.attrs[0] = r.serviceNameAttr
	st.attrs[1] = r.serviceVersionAttr
	st.attrs[2] = attribute.String("http.request.method", string(req.Method))

	r.activeDispatches.Add(ctx, 1, metric.WithAttributes(st.attrs...))
	return ctx, st
}

// OnNode implements [pipeline.Recorder].
func (r *Recorder) OnNode(ctx context.Context, _ any, node pipeline.Node, err error) {
	kind := attribute.String("pipeline.node.kind", node.Kind().String())
	r.nodeInvocations.Add(ctx, 1, metric.WithAttributes(r.serviceNameAttr, kind))
	if err != nil {
		r.nodeFaults.Add(ctx, 1, metric.WithAttributes(
			r.serviceNameAttr,
			kind,
			attribute.String("error.type", errorType(err)),
		))
	}
}

// OnDispatchEnd implements [pipeline.Recorder].
func (r *Recorder) OnDispatchEnd(ctx context.Context, state any, c *pipeline.Context) {
	st, ok := state.(*dispatchState)
	if !ok {
		return
	}
	r.activeDispatches.Add(ctx, -1, metric.WithAttributes(st.attrs...))

	route := c.RoutePattern()
	if route == "" {
		route = "unmatched"
	}
	status := c.Status().Code()
	attrs := append(st.attrs,
		attribute.String("http.route", route),
		attribute.Int("http.response.status_code", status),
		attribute.String("http.status_class", statusClass(status)),
	)

	opt := metric.WithAttributes(attrs...)
	r.dispatchDuration.Record(ctx, time.Since(st.start).Seconds(), opt)
	r.dispatchCount.Add(ctx, 1, opt)

	if c.Faulted() {
		r.unrecoveredFaults.Add(ctx, 1, metric.WithAttributes(
			r.serviceNameAttr,
			attribute.String("http.route", route),
			attribute.String("error.type", errorType(c.Fault())),
		))
	}
}

// errorType names the error kind of err for the error.type attribute.
func errorType(err error) string {
	var f *pipeline.Fault
	if errors.As(err, &f) && f.Kind() != nil {
		return f.Kind().Name()
	}
	return "error"
}

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	case code >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}

// IncrementCounter adds one to the named custom counter, creating it on
// first use.
func (r *Recorder) IncrementCounter(ctx context.Context, name string, attrs ...attribute.KeyValue) error {
	counter, err := r.counter(name)
	if err != nil {
		r.customMetricFailures.Add(ctx, 1)
		return err
	}
	counter.Add(ctx, 1, metric.WithAttributes(attrs...))
	return nil
}

// RecordHistogram records value in the named custom histogram, creating it
// on first use.
func (r *Recorder) RecordHistogram(ctx context.Context, name string, value float64, attrs ...attribute.KeyValue) error {
	histogram, err := r.histogram(name)
	if err != nil {
		r.customMetricFailures.Add(ctx, 1)
		return err
	}
	histogram.Record(ctx, value, metric.WithAttributes(attrs...))
	return nil
}

// CustomMetricCount returns the number of custom instruments created.
func (r *Recorder) CustomMetricCount() int {
	r.customMu.RLock()
	defer r.customMu.RUnlock()
	return r.customMetricCount
}

func (r *Recorder) counter(name string) (metric.Int64Counter, error) {
	r.customMu.RLock()
	c, ok := r.customCounters[name]
	r.customMu.RUnlock()
	if ok {
		return c, nil
	}
	if err := validateMetricName(name); err != nil {
		return nil, err
	}

	r.customMu.Lock()
	defer r.customMu.Unlock()
	if c, ok = r.customCounters[name]; ok {
		return c, nil
	}
	if r.customMetricCount >= r.maxCustomMetrics {
		return nil, &limitError{metricName: name, limit: r.maxCustomMetrics}
	}
	c, err := r.meter.Int64Counter(name)
	if err != nil {
		return nil, fmt.Errorf("failed to create counter %s: %w", name, err)
	}
	r.customCounters[name] = c
	r.customMetricCount++
	return c, nil
}

func (r *Recorder) histogram(name string) (metric.Float64Histogram, error) {
	r.customMu.RLock()
	h, ok := r.customHistograms[name]
	r.customMu.RUnlock()
	if ok {
		return h, nil
	}
	if err := validateMetricName(name); err != nil {
		return nil, err
	}

	r.customMu.Lock()
	defer r.customMu.Unlock()
	if h, ok = r.customHistograms[name]; ok {
		return h, nil
	}
	if r.customMetricCount >= r.maxCustomMetrics {
		return nil, &limitError{metricName: name, limit: r.maxCustomMetrics}
	}
	h, err := r.meter.Float64Histogram(name)
	if err != nil {
		return nil, fmt.Errorf("failed to create histogram %s: %w", name, err)
	}
	r.customHistograms[name] = h
	r.customMetricCount++
	return h, nil
}
