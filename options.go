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

package pipeline

import (
	"log/slog"

	"rivaas.dev/pipeline/message"
	"rivaas.dev/pipeline/problem"
)

// Option configures a [Dispatcher].
type Option func(*Dispatcher)

// WithLogger sets the logger used for dispatch events and exposed to
// callbacks through [Context.Logger]. Node matches are logged at debug,
// captured faults at warn and unrecovered faults at error.
//
// Example:
//
//	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
//	d := pipeline.MustNew(handlers, pipeline.WithLogger(logger))
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		if logger == nil {
			logger = noopLogger
		}
		d.logger = logger
	}
}

// WithUncheckedHeaders disables header name checks in [Context.AddHeader]
// and [Context.SetHeader] for contexts run by this dispatcher.
// Upper-case names and reserved names are then accepted as given.
func WithUncheckedHeaders() Option {
	return func(d *Dispatcher) {
		d.unchecked = true
	}
}

// WithFaultFormatter sets how unrecovered faults are turned into the final
// response. The default is [problem.Plain]: status 500 with the fault
// message as body.
//
// Example:
//
//	d := pipeline.MustNew(handlers,
//	    pipeline.WithFaultFormatter(problem.NewRFC9457("https://example.com/problems")),
//	)
func WithFaultFormatter(f problem.Formatter) Option {
	return func(d *Dispatcher) {
		if f != nil {
			d.formatter = f
		}
	}
}

// WithRecorder adds a dispatch lifecycle recorder. It may be given several
// times; recorders are called in the order they were added.
func WithRecorder(r Recorder) Option {
	return func(d *Dispatcher) {
		if r != nil {
			d.recorders = append(d.recorders, r)
		}
	}
}

// WithDefaultStatus sets the status of the response a context starts with.
// It defaults to 404 so that status handlers on 404 serve as "no route
// matched" fallbacks.
func WithDefaultStatus(status message.Status) Option {
	return func(d *Dispatcher) {
		d.defaultStatus = status
	}
}

// WithDiagnostics sets a handler for build-time diagnostic events.
//
// Example:
//
//	handler := pipeline.DiagnosticHandlerFunc(func(e pipeline.DiagnosticEvent) {
//	    slog.Info(e.Message, "kind", e.Kind, "fields", e.Fields)
//	})
//	d := pipeline.MustNew(handlers, pipeline.WithDiagnostics(handler))
func WithDiagnostics(handler DiagnosticHandler) Option {
	return func(d *Dispatcher) {
		d.diagnostics = handler
	}
}

// WithoutCancellationCheck stops the sweep from turning a done
// context.Context into a fault. Callbacks then run to the end of the list
// regardless of cancellation.
func WithoutCancellationCheck() Option {
	return func(d *Dispatcher) {
		d.checkCancellation = false
	}
}
