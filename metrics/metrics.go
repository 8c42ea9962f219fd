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
	"io"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// DefaultDurationBuckets are histogram boundaries for dispatch duration in
// seconds.
var DefaultDurationBuckets = []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// ErrNoHandler is returned by [Recorder.Handler] when the provider is not
// Prometheus.
var ErrNoHandler = errors.New("metrics handler is only available with the prometheus provider")

// EventType represents the severity of an internal operational event.
type EventType int

const (
	// EventError indicates an error event (e.g., failed to export metrics).
	EventError EventType = iota
	// EventWarning indicates a warning event.
	EventWarning
	// EventInfo indicates an informational event.
	EventInfo
	// EventDebug indicates a debug event.
	EventDebug
)

// Event is an internal operational event of the metrics package.
type Event struct {
	Type    EventType
	Message string
	Args    []any // slog-style key-value pairs
}

// EventHandler processes internal operational events.
type EventHandler func(Event)

// DefaultEventHandler returns an EventHandler that logs events to logger.
// A nil logger discards all events.
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

// Provider names a built-in metrics exporter.
type Provider string

const (
	// PrometheusProvider exposes a scrape endpoint (default).
	PrometheusProvider Provider = "prometheus"
	// StdoutProvider periodically writes metrics as JSON.
	StdoutProvider Provider = "stdout"
	// CustomProvider is reported when [WithMeterProvider] was used.
	CustomProvider Provider = "custom"
)

// Recorder holds the instruments and the meter provider. All methods are
// safe for concurrent use.
//
// The global OpenTelemetry meter provider is left alone unless
// [WithGlobalMeterProvider] is given, so several recorders can coexist.
type Recorder struct {
	meter              metric.Meter
	meterProvider      metric.MeterProvider
	prometheusHandler  http.Handler
	prometheusRegistry *promclient.Registry
	eventHandler       EventHandler

	dispatchDuration     metric.Float64Histogram
	dispatchCount        metric.Int64Counter
	activeDispatches     metric.Int64UpDownCounter
	nodeInvocations      metric.Int64Counter
	nodeFaults           metric.Int64Counter
	unrecoveredFaults    metric.Int64Counter
	customMetricFailures metric.Int64Counter

	customMu          sync.RWMutex
	customCounters    map[string]metric.Int64Counter
	customHistograms  map[string]metric.Float64Histogram
	customMetricCount int
	maxCustomMetrics  int

	durationBuckets  []float64
	validationErrors []error
	exportInterval   time.Duration
	stdout           io.Writer

	serviceName    string
	serviceVersion string
	metricsPath    string

	serviceNameAttr    attribute.KeyValue
	serviceVersionAttr attribute.KeyValue

	provider            Provider
	providerSetCount    int
	customMeterProvider bool
	registerGlobal      bool
	isShuttingDown      atomic.Bool
}

// New creates a [Recorder]. It fails when the options conflict or the
// exporter cannot be created.
func New(opts ...Option) (*Recorder, error) {
	r := newDefaultRecorder()
	for _, opt := range opts {
		opt(r)
	}

	if err := r.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	r.initCommonAttributes()

	if err := r.initializeProvider(); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}
	return r, nil
}

// MustNew is like [New] but panics on error.
func MustNew(opts ...Option) *Recorder {
	r, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize metrics: %v", err))
	}
	return r
}

func newDefaultRecorder() *Recorder {
	return &Recorder{
		serviceName:      "pipeline",
		serviceVersion:   "dev",
		provider:         PrometheusProvider,
		exportInterval:   30 * time.Second,
		metricsPath:      "/metrics",
		maxCustomMetrics: 1000,
		durationBuckets:  DefaultDurationBuckets,
		customCounters:   make(map[string]metric.Int64Counter),
		customHistograms: make(map[string]metric.Float64Histogram),
	}
}

func (r *Recorder) initCommonAttributes() {
	r.serviceNameAttr = attribute.String("service.name", r.serviceName)
	r.serviceVersionAttr = attribute.String("service.version", r.serviceVersion)
}

func (r *Recorder) validate() error {
	if len(r.validationErrors) > 0 {
		return errors.Join(r.validationErrors...)
	}
	if r.providerSetCount > 1 {
		return errors.New("conflicting provider options: only one of WithPrometheus, WithStdout or WithMeterProvider can be used")
	}
	if r.serviceName == "" {
		return errors.New("service name cannot be empty")
	}
	if r.maxCustomMetrics < 1 {
		return fmt.Errorf("maxCustomMetrics must be at least 1, got %d", r.maxCustomMetrics)
	}
	if r.exportInterval < time.Second {
		r.emitWarning("Export interval is very low, may cause high CPU usage", "interval", r.exportInterval)
	}

	switch r.provider {
	case PrometheusProvider:
		if r.metricsPath == "" {
			return errors.New("metrics path cannot be empty for Prometheus provider")
		}
	case StdoutProvider, CustomProvider:
	default:
		return fmt.Errorf("unsupported metrics provider: %s", r.provider)
	}
	return nil
}

// Handler returns the Prometheus scrape handler.
func (r *Recorder) Handler() (http.Handler, error) {
	if r.prometheusHandler == nil {
		return nil, ErrNoHandler
	}
	return r.prometheusHandler, nil
}

// Provider returns the active provider.
func (r *Recorder) Provider() Provider {
	return r.provider
}

// Path returns the configured scrape path.
func (r *Recorder) Path() string {
	return r.metricsPath
}

// ServiceName returns the service name attribute value.
func (r *Recorder) ServiceName() string {
	return r.serviceName
}

// Shutdown flushes and stops the meter provider. Providers given through
// [WithMeterProvider] are owned by the caller and left running.
// Calling Shutdown more than once is safe.
func (r *Recorder) Shutdown(ctx context.Context) error {
	if !r.isShuttingDown.CompareAndSwap(false, true) {
		return nil
	}
	if r.customMeterProvider {
		return nil
	}

	mp, ok := r.meterProvider.(*sdkmetric.MeterProvider)
	if !ok {
		return nil
	}
	r.emitDebug("Shutting down meter provider", "provider", r.provider)
	if err := mp.Shutdown(ctx); err != nil && !errors.Is(err, sdkmetric.ErrReaderShutdown) {
		r.emitError("Error shutting down meter provider", "error", err)
		return fmt.Errorf("meter provider shutdown: %w", err)
	}
	return nil
}

// ForceFlush exports pending metrics immediately. It is a no-op for the
// Prometheus provider, which is pull based.
func (r *Recorder) ForceFlush(ctx context.Context) error {
	mp, ok := r.meterProvider.(*sdkmetric.MeterProvider)
	if !ok {
		return nil
	}
	return mp.ForceFlush(ctx)
}

func (r *Recorder) emit(t EventType, msg string, args ...any) {
	if r.eventHandler != nil {
		r.eventHandler(Event{Type: t, Message: msg, Args: args})
	}
}

func (r *Recorder) emitError(msg string, args ...any)   { r.emit(EventError, msg, args...) }
func (r *Recorder) emitWarning(msg string, args ...any) { r.emit(EventWarning, msg, args...) }
func (r *Recorder) emitDebug(msg string, args ...any)   { r.emit(EventDebug, msg, args...) }
