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
	"rivaas.dev/pipeline/logging"
	"rivaas.dev/pipeline/problem"
)

// LoggingOptions converts the logging and service sections into options
// for [logging.New]. Validation guarantees the level parses.
func (c *Config) LoggingOptions() []logging.Option {
	level, err := logging.ParseLevel(c.Logging.Level)
	if err != nil {
		level = logging.LevelInfo
	}
	return []logging.Option{
		logging.WithHandlerType(logging.HandlerType(c.Logging.Format)),
		logging.WithLevel(level),
		logging.WithServiceName(c.Service.Name),
		logging.WithServiceVersion(c.Service.Version),
		logging.WithEnvironment(c.Service.Environment),
	}
}

// FaultFormatter returns the formatter selected by the errors section.
func (c *Config) FaultFormatter() (problem.Formatter, error) {
	f, err := problem.New(c.Errors.Format)
	if err != nil {
		return nil, newError("errors", "validate", err)
	}
	if rfc, ok := f.(*problem.RFC9457); ok {
		rfc.BaseURL = c.Errors.BaseURL
	}
	return f, nil
}
