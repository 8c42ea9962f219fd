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

// Package pipelinetest runs handlers in process, without a server.
//
//	func TestUsers(t *testing.T) {
//	    h := pipelinetest.New(t, []pipeline.Handler{
//	        pipeline.Get("/users/{id}", getUser),
//	    })
//
//	    h.Get("/users/7").
//	        ExpectStatus(message.StatusOK).
//	        ExpectBody("user 7")
//	}
//
// A [Harness] builds the dispatcher once and fails the test if the
// handlers do not compile. Each request returns a [Result] whose Expect
// methods report mismatches through testify and return the result for
// chaining.
package pipelinetest
