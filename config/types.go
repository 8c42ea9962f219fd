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

package config

import (
	"time"
)

// Config holds every setting of a pipeline server.
type Config struct {
	Service Service `config:"service" envPrefix:"SERVICE_"`
	Server  Server  `config:"server" envPrefix:"SERVER_"`
	Logging Logging `config:"logging" envPrefix:"LOGGING_"`
	Errors  Errors  `config:"errors" envPrefix:"ERRORS_"`
	Metrics Metrics `config:"metrics" envPrefix:"METRICS_"`
	Tracing Tracing `config:"tracing" envPrefix:"TRACING_"`
}

// Service identifies the running service in logs, metrics and traces.
type Service struct {
	Name        string `config:"name" env:"NAME" validate:"required"`
	Version     string `config:"version" env:"VERSION"`
	Environment string `config:"environment" env:"ENVIRONMENT" validate:"omitempty,oneof=development staging production test"`
}

// Server configures the transport and the dispatcher.
type Server struct {
	Address           string        `config:"address" env:"ADDRESS" validate:"required"`
	ReadTimeout       time.Duration `config:"read_timeout" env:"READ_TIMEOUT" validate:"gte=0"`
	ReadHeaderTimeout time.Duration `config:"read_header_timeout" env:"READ_HEADER_TIMEOUT" validate:"gte=0"`
	WriteTimeout      time.Duration `config:"write_timeout" env:"WRITE_TIMEOUT" validate:"gte=0"`
	IdleTimeout       time.Duration `config:"idle_timeout" env:"IDLE_TIMEOUT" validate:"gte=0"`
	ShutdownTimeout   time.Duration `config:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" validate:"gte=0"`
	H2C               bool          `config:"h2c" env:"H2C"`
	UncheckedHeaders  bool          `config:"unchecked_headers" env:"UNCHECKED_HEADERS"`
}

// Logging configures the logger.
type Logging struct {
	Level  string `config:"level" env:"LEVEL" validate:"oneof=debug info warn error DEBUG INFO WARN ERROR"`
	Format string `config:"format" env:"FORMAT" validate:"oneof=json text console"`
	Access bool   `config:"access" env:"ACCESS"`
}

// Errors configures how unrecovered faults are rendered.
type Errors struct {
	Format  string `config:"format" env:"FORMAT" validate:"oneof=plain simple rfc9457"`
	BaseURL string `config:"base_url" env:"BASE_URL" validate:"omitempty,url"`
}

// Metrics configures dispatch metrics.
type Metrics struct {
	Provider string        `config:"provider" env:"PROVIDER" validate:"oneof=none prometheus stdout"`
	Path     string        `config:"path" env:"PATH" validate:"required,startswith=/"`
	Interval time.Duration `config:"interval" env:"INTERVAL" validate:"gte=0"`
}

// Tracing configures dispatch tracing.
type Tracing struct {
	Provider   string  `config:"provider" env:"PROVIDER" validate:"oneof=none stdout noop"`
	SampleRate float64 `config:"sample_rate" env:"SAMPLE_RATE" validate:"gte=0,lte=1"`
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		Service: Service{
			Name:        "pipeline",
			Environment: "development",
		},
		Server: Server{
			Address:           ":8080",
			ReadTimeout:       10 * time.Second,
			ReadHeaderTimeout: 2 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       60 * time.Second,
			ShutdownTimeout:   30 * time.Second,
		},
		Logging: Logging{
			Level:  "info",
			Format: "json",
		},
		Errors: Errors{
			Format: "plain",
		},
		Metrics: Metrics{
			Provider: "none",
			Path:     "/metrics",
			Interval: 30 * time.Second,
		},
		Tracing: Tracing{
			Provider:   "none",
			SampleRate: 1,
		},
	}
}
