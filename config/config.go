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
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/goccy/go-yaml"
)

// DefaultEnvPrefix is prepended to every environment variable name.
const DefaultEnvPrefix = "PIPELINE_"

// ErrUnsupportedFormat is returned for a file with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported config file format")

// Option configures [Load].
type Option func(*loader)

type loader struct {
	file        string
	data        []byte
	format      string
	envPrefix   string
	environment map[string]string
	skipEnv     bool
}

// WithFile reads the named file as the second layer. The format is taken
// from the extension.
func WithFile(path string) Option {
	return func(l *loader) {
		l.file = path
	}
}

// WithContent uses data as the file layer. format is one of "yaml", "toml"
// or "json".
func WithContent(data []byte, format string) Option {
	return func(l *loader) {
		l.data = data
		l.format = format
	}
}

// WithEnvPrefix replaces [DefaultEnvPrefix].
func WithEnvPrefix(prefix string) Option {
	return func(l *loader) {
		l.envPrefix = prefix
	}
}

// WithEnvironment reads variables from vars instead of the process
// environment.
func WithEnvironment(vars map[string]string) Option {
	return func(l *loader) {
		l.environment = vars
	}
}

// WithoutEnv skips the environment layer.
func WithoutEnv() Option {
	return func(l *loader) {
		l.skipEnv = true
	}
}

// Load builds a [Config] from defaults, the optional file and the
// environment, then validates it.
func Load(ctx context.Context, opts ...Option) (*Config, error) {
	l := &loader{envPrefix: DefaultEnvPrefix}
	for _, opt := range opts {
		opt(l)
	}

	cfg := Defaults()

	if err := l.mergeFile(ctx, cfg); err != nil {
		return nil, err
	}

	if !l.skipEnv {
		if err := ctx.Err(); err != nil {
			return nil, newError("env", "parse", err)
		}
		envOpts := env.Options{Prefix: l.envPrefix}
		if l.environment != nil {
			envOpts.Environment = l.environment
		}
		if err := env.ParseWithOptions(cfg, envOpts); err != nil {
			return nil, newError("env", "parse", err)
		}
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// MustLoad is like [Load] but panics on error.
func MustLoad(ctx context.Context, opts ...Option) *Config {
	cfg, err := Load(ctx, opts...)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Validate checks cfg against its validation tags.
func Validate(cfg *Config) error {
	err := validator.New(validator.WithRequiredStructEnabled()).Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return &Error{
			Source:    "validation",
			Field:     verrs[0].Namespace(),
			Operation: "validate",
			Err:       err,
		}
	}
	return newError("validation", "validate", err)
}

func (l *loader) mergeFile(ctx context.Context, cfg *Config) error {
	data, format, source := l.data, l.format, "content"
	if l.file != "" {
		if err := ctx.Err(); err != nil {
			return newError("file:"+l.file, "read", err)
		}
		source = "file:" + l.file
		b, err := os.ReadFile(l.file)
		if err != nil {
			return newError(source, "read", err)
		}
		data = b
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(l.file)), ".")
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	values, err := decodeMap(data, format)
	if err != nil {
		return newError(source, "decode", err)
	}

	fileCfg := &Config{}
	if err = decodeStruct(normalizeMapKeys(values), fileCfg); err != nil {
		return newError(source, "decode", err)
	}

	if err = mergo.Merge(cfg, fileCfg, mergo.WithOverride); err != nil {
		return newError(source, "merge", err)
	}
	return nil
}

func decodeMap(data []byte, format string) (map[string]any, error) {
	values := make(map[string]any)
	var err error
	switch format {
	case "yaml", "yml":
		err = yaml.Unmarshal(data, &values)
	case "toml":
		err = toml.Unmarshal(data, &values)
	case "json":
		err = json.Unmarshal(data, &values)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}
	return values, nil
}

func decodeStruct(values map[string]any, target *Config) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
			mapstructure.StringToTimeHookFunc(time.RFC3339),
		),
		Result:           target,
		TagName:          "config",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(values)
}

// normalizeMapKeys lower-cases keys recursively and maps dashes to
// underscores so "Read-Timeout" and "read_timeout" decode alike.
func normalizeMapKeys(values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for k, v := range values {
		out[normalizeKey(k)] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return normalizeMapKeys(t)
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[normalizeKey(fmt.Sprint(k))] = normalizeValue(val)
		}
		return m
	case []any:
		s := make([]any, len(t))
		for i, val := range t {
			s[i] = normalizeValue(val)
		}
		return s
	default:
		return v
	}
}

func normalizeKey(k string) string {
	return strings.ReplaceAll(strings.ToLower(k), "-", "_")
}
