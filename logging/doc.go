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

// Package logging builds the structured loggers used by the dispatcher and
// its transports.
//
// Loggers are plain [*slog.Logger] values. [New] configures the handler
// (JSON, key=value text or colored console), the minimum level, service
// metadata attached to every entry, redaction of sensitive keys and
// optional sampling.
//
//	logger, err := logging.New(
//	    logging.WithConsoleHandler(),
//	    logging.WithServiceName("orders"),
//	    logging.WithDebugLevel(),
//	)
//	d := pipeline.MustNew(handlers,
//	    pipeline.WithLogger(logger),
//	    pipeline.WithRecorder(logging.NewAccessRecorder(logger)),
//	)
package logging
