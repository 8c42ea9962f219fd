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

// Package filters provides reusable pipeline callbacks meant to run as
// filters ahead of the routes: request ids, security headers, CORS and
// basic authentication.
//
// Each constructor returns a [pipeline.Callback]. Register it with
// [pipeline.Filter] on the paths it should guard:
//
//	d := pipeline.MustNew([]pipeline.Handler{
//	    pipeline.Filter("*", filters.RequestID()),
//	    pipeline.Filter("*", filters.Security()),
//	    pipeline.Filter("/admin/*", filters.BasicAuth(filters.WithUsers(users))),
//	    pipeline.Get("/admin/stats", stats),
//	})
//
// Filters that reject a request return a fault carrying an HTTP status so
// routes are skipped and the fault formatter renders the answer. Headers
// set before the rejection, such as www-authenticate, are kept.
//
// [Compression] works on the finished response and belongs at the end of
// the list, registered with [pipeline.After]:
//
//	pipeline.After("*", filters.Compression(filters.WithMinSize(256)))
package filters
