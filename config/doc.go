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

// Package config loads the settings of a pipeline server.
//
// Values are layered, each layer overriding the previous one:
//
//  1. built-in defaults ([Defaults])
//  2. an optional file: YAML (.yaml, .yml), TOML (.toml) or JSON (.json)
//  3. environment variables with the PIPELINE_ prefix, for example
//     PIPELINE_SERVER_ADDRESS or PIPELINE_LOGGING_LEVEL
//
// The merged result is validated before it is returned.
//
//	cfg, err := config.Load(ctx, config.WithFile("pipeline.yaml"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	logger, err := logging.New(cfg.LoggingOptions()...)
//
// A file cannot reset a boolean or duration to its zero value when the
// default is non-zero; use the environment for that.
package config
