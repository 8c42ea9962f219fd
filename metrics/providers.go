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
	"errors"
	"fmt"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const meterName = "rivaas.dev/pipeline/metrics"

func (r *Recorder) initializeProvider() error {
	switch r.provider {
	case CustomProvider:
		if r.meterProvider == nil {
			return errors.New("custom meter provider is nil")
		}
		r.emitDebug("Using custom user-provided meter provider")
	case PrometheusProvider:
		if err := r.initPrometheusProvider(); err != nil {
			return err
		}
	case StdoutProvider:
		if err := r.initStdoutProvider(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported metrics provider: %s", r.provider)
	}

	if r.registerGlobal {
		r.emitDebug("Setting global OpenTelemetry meter provider", "provider", r.provider)
		otel.SetMeterProvider(r.meterProvider)
	}

	r.meter = r.meterProvider.Meter(meterName)
	return r.initializeInstruments()
}

// initPrometheusProvider uses a private registry so several recorders do
// not collide on the default one.
func (r *Recorder) initPrometheusProvider() error {
	r.prometheusRegistry = promclient.NewRegistry()

	exporter, err := prometheus.New(prometheus.WithRegisterer(r.prometheusRegistry))
	if err != nil {
		return fmt.Errorf("failed to create Prometheus exporter: %w", err)
	}

	r.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
	)
	r.prometheusHandler = promhttp.HandlerFor(r.prometheusRegistry, promhttp.HandlerOpts{})
	return nil
}

func (r *Recorder) initStdoutProvider() error {
	var opts []stdoutmetric.Option
	if r.stdout != nil {
		opts = append(opts, stdoutmetric.WithWriter(r.stdout))
	}
	exporter, err := stdoutmetric.New(opts...)
	if err != nil {
		return fmt.Errorf("failed to create stdout exporter: %w", err)
	}

	r.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(r.exportInterval))),
	)
	return nil
}

func (r *Recorder) initializeInstruments() error {
	var err error

	if r.dispatchDuration, err = r.meter.Float64Histogram(
		"pipeline.dispatch.duration",
		metric.WithDescription("Time spent dispatching a request through the pipeline"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(r.durationBuckets...),
	); err != nil {
		return fmt.Errorf("failed to create dispatch duration histogram: %w", err)
	}

	if r.dispatchCount, err = r.meter.Int64Counter(
		"pipeline.dispatch.count",
		metric.WithDescription("Number of dispatched requests"),
	); err != nil {
		return fmt.Errorf("failed to create dispatch counter: %w", err)
	}

	if r.activeDispatches, err = r.meter.Int64UpDownCounter(
		"pipeline.dispatch.active",
		metric.WithDescription("Number of dispatches in flight"),
	); err != nil {
		return fmt.Errorf("failed to create active dispatch counter: %w", err)
	}

	if r.nodeInvocations, err = r.meter.Int64Counter(
		"pipeline.node.invocations",
		metric.WithDescription("Number of node callbacks invoked"),
	); err != nil {
		return fmt.Errorf("failed to create node invocation counter: %w", err)
	}

	if r.nodeFaults, err = r.meter.Int64Counter(
		"pipeline.node.faults",
		metric.WithDescription("Number of faults raised by node callbacks"),
	); err != nil {
		return fmt.Errorf("failed to create node fault counter: %w", err)
	}

	if r.unrecoveredFaults, err = r.meter.Int64Counter(
		"pipeline.fault.unrecovered",
		metric.WithDescription("Number of dispatches answered by the fault formatter"),
	); err != nil {
		return fmt.Errorf("failed to create unrecovered fault counter: %w", err)
	}

	if r.customMetricFailures, err = r.meter.Int64Counter(
		"pipeline.custom_metric_failures",
		metric.WithDescription("Number of rejected custom metric operations"),
	); err != nil {
		return fmt.Errorf("failed to create custom metric failure counter: %w", err)
	}

	return nil
}
