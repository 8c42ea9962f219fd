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

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"rivaas.dev/pipeline"
	"rivaas.dev/pipeline/adapter/stdhttp"
	"rivaas.dev/pipeline/config"
	"rivaas.dev/pipeline/logging"
	"rivaas.dev/pipeline/metrics"
	"rivaas.dev/pipeline/tracing"
)

// demo holds everything the server needs. metrics and tracer are nil when
// their provider is "none".
type demo struct {
	cfg        *config.Config
	logger     *slog.Logger
	metrics    *metrics.Recorder
	tracer     *tracing.Tracer
	dispatcher *pipeline.Dispatcher
}

func newDemo(cfg *config.Config, out io.Writer) (*demo, error) {
	logger, err := logging.New(append(cfg.LoggingOptions(), logging.WithOutput(out))...)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	d := &demo{cfg: cfg, logger: logger}

	formatter, err := cfg.FaultFormatter()
	if err != nil {
		return nil, err
	}
	opts := []pipeline.Option{
		pipeline.WithLogger(logger),
		pipeline.WithFaultFormatter(formatter),
		pipeline.WithDiagnostics(pipeline.DiagnosticHandlerFunc(func(e pipeline.DiagnosticEvent) {
			logger.Debug("dispatcher diagnostic", "event", string(e.Kind), "message", e.Message)
		})),
	}
	if cfg.Server.UncheckedHeaders {
		opts = append(opts, pipeline.WithUncheckedHeaders())
	}

	if d.metrics, err = newMetrics(cfg, logger, out); err != nil {
		return nil, err
	}
	if d.metrics != nil {
		opts = append(opts, pipeline.WithRecorder(d.metrics))
	}
	if d.tracer, err = newTracer(cfg, logger, out); err != nil {
		return nil, err
	}
	if d.tracer != nil {
		opts = append(opts, pipeline.WithRecorder(d.tracer))
	}
	if cfg.Logging.Access {
		opts = append(opts, pipeline.WithRecorder(logging.NewAccessRecorder(logger,
			logging.WithExcludePaths("/health"),
		)))
	}

	d.dispatcher, err = pipeline.New(handlers(newUserStore(), assets(), d.metrics), opts...)
	if err != nil {
		return nil, fmt.Errorf("dispatcher: %w", err)
	}
	return d, nil
}

func newMetrics(cfg *config.Config, logger *slog.Logger, out io.Writer) (*metrics.Recorder, error) {
	opts := []metrics.Option{
		metrics.WithServiceName(cfg.Service.Name),
		metrics.WithServiceVersion(cfg.Service.Version),
		metrics.WithLogger(logger),
	}
	switch cfg.Metrics.Provider {
	case "prometheus":
		opts = append(opts, metrics.WithPrometheus(cfg.Metrics.Path))
	case "stdout":
		opts = append(opts, metrics.WithStdout(out), metrics.WithExportInterval(cfg.Metrics.Interval))
	default:
		return nil, nil
	}
	r, err := metrics.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}
	return r, nil
}

func newTracer(cfg *config.Config, logger *slog.Logger, out io.Writer) (*tracing.Tracer, error) {
	opts := []tracing.Option{
		tracing.WithServiceName(cfg.Service.Name),
		tracing.WithServiceVersion(cfg.Service.Version),
		tracing.WithSampleRate(cfg.Tracing.SampleRate),
		tracing.WithLogger(logger),
	}
	switch cfg.Tracing.Provider {
	case "stdout":
		opts = append(opts, tracing.WithStdout(out))
	case "noop":
		opts = append(opts, tracing.WithNoop())
	default:
		return nil, nil
	}
	t, err := tracing.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("tracing: %w", err)
	}
	return t, nil
}

// httpHandler serves the dispatcher, with the Prometheus scrape endpoint
// mounted beside it when enabled.
func (d *demo) httpHandler() (http.Handler, error) {
	h := stdhttp.New(d.dispatcher, stdhttp.WithLogger(d.logger))
	if d.metrics == nil || d.metrics.Provider() != metrics.PrometheusProvider {
		return h, nil
	}
	scrape, err := d.metrics.Handler()
	if err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	mux.Handle(d.metrics.Path(), scrape)
	mux.Handle("/", h)
	return mux, nil
}

func (d *demo) server() (*stdhttp.Server, error) {
	h, err := d.httpHandler()
	if err != nil {
		return nil, err
	}
	s := d.cfg.Server
	opts := []stdhttp.ServerOption{
		stdhttp.WithAddress(s.Address),
		stdhttp.WithTimeouts(stdhttp.Timeouts{
			ReadHeader: s.ReadHeaderTimeout,
			Read:       s.ReadTimeout,
			Write:      s.WriteTimeout,
			Idle:       s.IdleTimeout,
		}),
		stdhttp.WithShutdownTimeout(s.ShutdownTimeout),
		stdhttp.WithH2C(s.H2C),
		stdhttp.WithServerLogger(d.logger),
	}
	if d.metrics != nil {
		opts = append(opts, stdhttp.WithShutdownHook(d.shutdownHook("metrics", d.metrics.Shutdown)))
	}
	if d.tracer != nil {
		opts = append(opts, stdhttp.WithShutdownHook(d.shutdownHook("tracing", d.tracer.Shutdown)))
	}
	return stdhttp.NewServer(h, opts...), nil
}

func (d *demo) shutdownHook(name string, fn func(context.Context) error) func(context.Context) {
	return func(ctx context.Context) {
		if err := fn(ctx); err != nil {
			d.logger.ErrorContext(ctx, "shutdown failed", "component", name, "error", err)
		}
	}
}
