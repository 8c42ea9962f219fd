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
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// Option configures a [Recorder].
type Option func(*Recorder)

// WithMeterProvider uses a caller-owned meter provider instead of a
// built-in exporter. [Recorder.Shutdown] does not stop it.
func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(r *Recorder) {
		r.meterProvider = provider
		r.customMeterProvider = true
		r.provider = CustomProvider
		r.providerSetCount++
	}
}

// WithGlobalMeterProvider registers the meter provider as the global
// OpenTelemetry meter provider.
func WithGlobalMeterProvider() Option {
	return func(r *Recorder) {
		r.registerGlobal = true
	}
}

// WithServiceName sets the service.name attribute.
func WithServiceName(name string) Option {
	return func(r *Recorder) {
		r.serviceName = name
	}
}

// WithServiceVersion sets the service.version attribute.
func WithServiceVersion(version string) Option {
	return func(r *Recorder) {
		r.serviceVersion = version
	}
}

// WithExportInterval sets how often push exporters flush. Ignored by the
// Prometheus provider.
func WithExportInterval(interval time.Duration) Option {
	return func(r *Recorder) {
		if interval <= 0 {
			r.validationErrors = append(r.validationErrors, fmt.Errorf("export interval must be positive, got %v", interval))
			return
		}
		r.exportInterval = interval
	}
}

// WithDurationBuckets replaces [DefaultDurationBuckets]. Boundaries must be
// strictly increasing.
func WithDurationBuckets(buckets ...float64) Option {
	return func(r *Recorder) {
		for i := 1; i < len(buckets); i++ {
			if buckets[i] <= buckets[i-1] {
				r.validationErrors = append(r.validationErrors, errors.New("duration buckets must be strictly increasing"))
				return
			}
		}
		if len(buckets) > 0 {
			r.durationBuckets = buckets
		}
	}
}

// WithMaxCustomMetrics caps the number of custom instruments.
func WithMaxCustomMetrics(maxLimit int) Option {
	return func(r *Recorder) {
		r.maxCustomMetrics = maxLimit
	}
}

// WithEventHandler receives internal operational events.
func WithEventHandler(handler EventHandler) Option {
	return func(r *Recorder) {
		r.eventHandler = handler
	}
}

// WithLogger routes internal events to logger.
func WithLogger(logger *slog.Logger) Option {
	return WithEventHandler(DefaultEventHandler(logger))
}

// WithPrometheus selects the Prometheus provider. Mount
// [Recorder.Handler] at path.
func WithPrometheus(path string) Option {
	return func(r *Recorder) {
		r.provider = PrometheusProvider
		r.metricsPath = path
		r.providerSetCount++
	}
}

// WithStdout selects the stdout provider writing to w. A nil w means
// os.Stdout.
func WithStdout(w io.Writer) Option {
	return func(r *Recorder) {
		r.provider = StdoutProvider
		r.stdout = w
		r.providerSetCount++
	}
}
