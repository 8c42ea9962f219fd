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

package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// HandlerType represents the type of logging handler.
type HandlerType string

const (
	// JSONHandler outputs structured JSON logs.
	JSONHandler HandlerType = "json"
	// TextHandler outputs key=value text logs.
	TextHandler HandlerType = "text"
	// ConsoleHandler outputs human-readable colored logs.
	ConsoleHandler HandlerType = "console"
)

// Level represents log level.
type Level = slog.Level

// Log levels.
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

var (
	// ErrInvalidHandler indicates an unsupported handler type was specified.
	ErrInvalidHandler = errors.New("invalid handler type")

	// ErrNilOutput indicates a nil output writer.
	ErrNilOutput = errors.New("output writer cannot be nil")

	// ErrInvalidLevel indicates a level name that cannot be parsed.
	ErrInvalidLevel = errors.New("invalid log level")
)

// ParseLevel converts "debug", "info", "warn" or "error" (any case) into a
// [Level].
func ParseLevel(s string) (Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return LevelInfo, fmt.Errorf("%w: %q", ErrInvalidLevel, s)
	}
	return l, nil
}

// SamplingConfig configures log sampling to reduce volume under load.
//
// The first Initial entries are always logged, then one in every
// Thereafter. The counter resets every Tick. Errors are never sampled.
type SamplingConfig struct {
	Initial    int
	Thereafter int
	Tick       time.Duration
}

type config struct {
	handlerType    HandlerType
	output         io.Writer
	level          Level
	serviceName    string
	serviceVersion string
	environment    string
	addSource      bool
	replaceAttr    func(groups []string, a slog.Attr) slog.Attr
	sampling       *SamplingConfig
	registerGlobal bool
}

// Option is a functional option for configuring the logger.
type Option func(*config)

func defaultConfig() *config {
	return &config{
		handlerType: JSONHandler,
		output:      os.Stdout,
		level:       LevelInfo,
	}
}

// New creates a logger with the given options.
//
// By default the logger is not installed as the slog default; use
// [WithGlobalLogger] for that.
func New(opts ...Option) (*slog.Logger, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.output == nil {
		return nil, ErrNilOutput
	}
	if s := cfg.sampling; s != nil && (s.Initial < 0 || s.Thereafter < 0) {
		return nil, errors.New("sampling config values must be non-negative")
	}

	hopts := &slog.HandlerOptions{
		Level:       cfg.level,
		AddSource:   cfg.addSource,
		ReplaceAttr: redact(cfg.replaceAttr),
	}

	var handler slog.Handler
	switch cfg.handlerType {
	case JSONHandler:
		handler = slog.NewJSONHandler(cfg.output, hopts)
	case TextHandler:
		handler = slog.NewTextHandler(cfg.output, hopts)
	case ConsoleHandler:
		handler = newConsoleHandler(cfg.output, hopts)
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidHandler, cfg.handlerType)
	}

	if cfg.sampling != nil {
		handler = newSamplingHandler(handler, *cfg.sampling)
	}

	logger := slog.New(handler)

	var attrs []any
	if cfg.serviceName != "" {
		attrs = append(attrs, "service", cfg.serviceName)
	}
	if cfg.serviceVersion != "" {
		attrs = append(attrs, "version", cfg.serviceVersion)
	}
	if cfg.environment != "" {
		attrs = append(attrs, "env", cfg.environment)
	}
	if len(attrs) > 0 {
		logger = logger.With(attrs...)
	}

	if cfg.registerGlobal {
		slog.SetDefault(logger)
	}
	return logger, nil
}

// MustNew creates a logger or panics on error.
func MustNew(opts ...Option) *slog.Logger {
	l, err := New(opts...)
	if err != nil {
		panic("logging initialization failed: " + err.Error())
	}
	return l
}

// redact masks sensitive keys, then applies the user replacer.
func redact(next func(groups []string, a slog.Attr) slog.Attr) func(groups []string, a slog.Attr) slog.Attr {
	return func(groups []string, a slog.Attr) slog.Attr {
		switch strings.ToLower(a.Key) {
		case "password", "token", "secret", "api_key", "authorization", "cookie":
			return slog.String(a.Key, "***REDACTED***")
		}
		if next != nil {
			return next(groups, a)
		}
		return a
	}
}

// WithHandlerType sets the handler type.
func WithHandlerType(t HandlerType) Option {
	return func(c *config) { c.handlerType = t }
}

// WithJSONHandler selects JSON output.
func WithJSONHandler() Option {
	return WithHandlerType(JSONHandler)
}

// WithTextHandler selects key=value output.
func WithTextHandler() Option {
	return WithHandlerType(TextHandler)
}

// WithConsoleHandler selects colored console output.
func WithConsoleHandler() Option {
	return WithHandlerType(ConsoleHandler)
}

// WithOutput sets the destination writer. Default: os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(c *config) { c.output = w }
}

// WithLevel sets the minimum level.
func WithLevel(level Level) Option {
	return func(c *config) { c.level = level }
}

// WithDebugLevel is WithLevel(LevelDebug).
func WithDebugLevel() Option {
	return WithLevel(LevelDebug)
}

// WithServiceName adds a "service" attribute to every entry.
func WithServiceName(name string) Option {
	return func(c *config) { c.serviceName = name }
}

// WithServiceVersion adds a "version" attribute to every entry.
func WithServiceVersion(version string) Option {
	return func(c *config) { c.serviceVersion = version }
}

// WithEnvironment adds an "env" attribute to every entry.
func WithEnvironment(env string) Option {
	return func(c *config) { c.environment = env }
}

// WithSource adds the source location to every entry.
func WithSource(enabled bool) Option {
	return func(c *config) { c.addSource = enabled }
}

// WithReplaceAttr sets an attribute replacer that runs after redaction.
func WithReplaceAttr(fn func(groups []string, a slog.Attr) slog.Attr) Option {
	return func(c *config) { c.replaceAttr = fn }
}

// WithSampling enables sampling.
func WithSampling(cfg SamplingConfig) Option {
	return func(c *config) { c.sampling = &cfg }
}

// WithGlobalLogger installs the logger with slog.SetDefault.
func WithGlobalLogger() Option {
	return func(c *config) { c.registerGlobal = true }
}
