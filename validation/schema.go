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

package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// schemaErrors validates data against schema and adds the failures to
// result. The returned error is reserved for unusable schemas.
func (v *Validator) schemaErrors(id, schema string, data []byte, result *Error) error {
	if schema == "" {
		return nil
	}
	compiled, err := v.schema(id, schema)
	if err != nil {
		return err
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		result.Add("", "unmarshal_error", err.Error(), nil)
		return nil
	}

	err = compiled.Validate(doc)
	var verr *jsonschema.ValidationError
	switch {
	case err == nil:
	case errors.As(err, &verr):
		v.collectSchemaErrors(verr, result)
	default:
		result.Add("", "schema.validation_error", err.Error(), nil)
	}
	return nil
}

// schema returns the compiled schema, caching it under a non-empty id.
func (v *Validator) schema(id, schemaJSON string) (*jsonschema.Schema, error) {
	if id != "" {
		v.mu.RLock()
		s, ok := v.schemas[id]
		v.mu.RUnlock()
		if ok {
			return s, nil
		}
	}

	s, err := compileSchema(id, schemaJSON)
	if err != nil {
		return nil, err
	}
	if id != "" {
		v.mu.Lock()
		v.schemas[id] = s
		v.mu.Unlock()
	}
	return s, nil
}

func compileSchema(id, schemaJSON string) (*jsonschema.Schema, error) {
	var doc any
	if err := json.Unmarshal([]byte(schemaJSON), &doc); err != nil {
		return nil, fmt.Errorf("invalid schema JSON: %w", err)
	}

	url := id
	if url == "" {
		url = "schema.json"
	}
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat()
	if err := compiler.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	s, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return s, nil
}

// collectSchemaErrors flattens the error tree. Only leaves are reported.
func (v *Validator) collectSchemaErrors(verr *jsonschema.ValidationError, result *Error) {
	if verr == nil || v.full(result) {
		return
	}
	if len(verr.Causes) == 0 {
		keyword := strings.Join(verr.ErrorKind.KeywordPath(), ".")
		result.Add(strings.Join(verr.InstanceLocation, "."), "schema."+keyword, verr.Error(), map[string]any{
			"keyword":    keyword,
			"schema_url": verr.SchemaURL,
		})
		return
	}
	for _, cause := range verr.Causes {
		v.collectSchemaErrors(cause, result)
	}
}
