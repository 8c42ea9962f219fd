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

// Package metrics records dispatch metrics with OpenTelemetry.
//
// A [Recorder] implements [pipeline.Recorder]; register it with
// [pipeline.WithRecorder] and every dispatch reports:
//
//   - pipeline.dispatch.duration: histogram of dispatch time in seconds
//   - pipeline.dispatch.count: dispatches by method, route and status
//   - pipeline.dispatch.active: dispatches in flight
//   - pipeline.node.invocations: callbacks run, by node kind
//   - pipeline.node.faults: callback faults, by error kind
//   - pipeline.fault.unrecovered: dispatches answered by the fault formatter
//
// Two exporters are built in. [WithPrometheus] exposes a scrape handler
// through [Recorder.Handler]; [WithStdout] periodically writes JSON. Any
// other exporter can be plugged in with [WithMeterProvider].
//
//	recorder, err := metrics.New(
//	    metrics.WithServiceName("orders"),
//	    metrics.WithPrometheus("/metrics"),
//	)
//	if err != nil {
//	    return err
//	}
//	defer recorder.Shutdown(context.Background())
//
//	d, err := pipeline.New(handlers, pipeline.WithRecorder(recorder))
//
// Application code can add its own counters and histograms with
// [Recorder.IncrementCounter] and [Recorder.RecordHistogram]. Names are
// validated and the number of custom instruments is capped.
package metrics
