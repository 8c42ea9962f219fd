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

// Package validation checks decoded request values against struct tags
// and JSON Schemas and reports every failure as a single [*Error].
//
// [*Error] unwraps to [ErrValidation], a [pipeline.ErrorKind] under
// [pipeline.KindIllegalArgument], and carries status 422, a stable code
// and the field list as details, so the problem formatters render it
// without further wiring:
//
//	pipeline.Post("/users", func(c *pipeline.Context) error {
//	    var in CreateUser
//	    if err := json.Unmarshal(body, &in); err != nil {
//	        return err
//	    }
//	    if err := validation.Validate(c.Context(), &in); err != nil {
//	        return err
//	    }
//	    ...
//	})
//
// Types providing a schema through [SchemaProvider] are also checked
// against it after the tags.
package validation
