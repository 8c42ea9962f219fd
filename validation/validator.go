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
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// SchemaProvider is implemented by types carrying their own JSON Schema.
// id names the schema for caching; an empty id disables the cache.
type SchemaProvider interface {
	JSONSchema() (id, schema string)
}

// Option configures a [Validator].
type Option func(*config)

type config struct {
	maxErrors  int
	customTags map[string]validator.Func
}

// WithMaxErrors stops collecting after n errors and marks the result
// truncated. Zero means no limit.
func WithMaxErrors(n int) Option {
	return func(c *config) {
		c.maxErrors = n
	}
}

// WithCustomTag registers an extra struct tag.
//
// Example:
//
//	validation.WithCustomTag("even", func(fl validator.FieldLevel) bool {
//	    return fl.Field().Int()%2 == 0
//	})
func WithCustomTag(name string, fn validator.Func) Option {
	return func(c *config) {
		c.customTags[name] = fn
	}
}

// Validator runs struct tag and JSON Schema checks. It is safe for
// concurrent use.
type Validator struct {
	cfg  *config
	tags *validator.Validate

	mu      sync.RWMutex
	schemas map[string]*jsonschema.Schema
}

var (
	reUsername = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)
	reSlug     = regexp.MustCompile(`^[a-z0-9-]+$`)
)

// New creates a validator. Besides the go-playground tags it knows
// "username" and "slug".
func New(opts ...Option) (*Validator, error) {
	cfg := &config{customTags: map[string]validator.Func{}}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.maxErrors < 0 {
		return nil, fmt.Errorf("max errors must be non-negative, got %d", cfg.maxErrors)
	}

	tags := validator.New(validator.WithRequiredStructEnabled())
	tags.RegisterTagNameFunc(jsonFieldName)

	builtin := map[string]validator.Func{
		"username": func(fl validator.FieldLevel) bool { return reUsername.MatchString(fl.Field().String()) },
		"slug":     func(fl validator.FieldLevel) bool { return reSlug.MatchString(fl.Field().String()) },
	}
	for name, fn := range builtin {
		if err := tags.RegisterValidation(name, fn); err != nil {
			return nil, fmt.Errorf("register %q: %w", name, err)
		}
	}
	for name, fn := range cfg.customTags {
		if err := tags.RegisterValidation(name, fn); err != nil {
			return nil, fmt.Errorf("register custom tag %q: %w", name, err)
		}
	}

	return &Validator{
		cfg:     cfg,
		tags:    tags,
		schemas: map[string]*jsonschema.Schema{},
	}, nil
}

// MustNew is [New] that panics on error.
func MustNew(opts ...Option) *Validator {
	v, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return v
}

// jsonFieldName reports fields by their JSON name.
func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return fld.Name
	}
	return name
}

var defaultValidator = sync.OnceValue(func() *Validator { return MustNew() })

// Validate checks v with the shared default validator.
func Validate(ctx context.Context, v any) error {
	return defaultValidator().Validate(ctx, v)
}

// Validate checks the struct tags of v, then its schema when v is a
// [SchemaProvider]. It returns nil or an [*Error].
func (v *Validator) Validate(ctx context.Context, val any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if val == nil {
		return &Error{Fields: []FieldError{{Code: "nil", Message: "cannot validate nil value"}}}
	}

	var result Error
	if isStruct(val) {
		v.collectTagErrors(v.tags.StructCtx(ctx, val), &result)
	}
	if sp, ok := val.(SchemaProvider); ok && !result.Truncated {
		id, schema := sp.JSONSchema()
		data, err := json.Marshal(val)
		if err != nil {
			result.Add("", "marshal_error", err.Error(), nil)
		} else if err := v.schemaErrors(id, schema, data, &result); err != nil {
			return err
		}
	}

	if !result.HasErrors() {
		return nil
	}
	result.Sort()
	return &result
}

// ValidateJSON checks raw JSON against schema. id names the schema for
// caching.
func (v *Validator) ValidateJSON(ctx context.Context, id, schema string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var result Error
	if err := v.schemaErrors(id, schema, data, &result); err != nil {
		return err
	}
	if !result.HasErrors() {
		return nil
	}
	result.Sort()
	return &result
}

func isStruct(val any) bool {
	t := reflect.TypeOf(val)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct
}

func (v *Validator) full(result *Error) bool {
	if v.cfg.maxErrors > 0 && len(result.Fields) >= v.cfg.maxErrors {
		result.Truncated = true
		return true
	}
	return false
}

func (v *Validator) collectTagErrors(err error, result *Error) {
	if err == nil {
		return
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		result.Add("", "tag.invalid", err.Error(), nil)
		return
	}
	for _, fe := range verrs {
		if v.full(result) {
			return
		}
		result.Add(fieldPath(fe.Namespace()), "tag."+fe.Tag(), tagMessage(fe), map[string]any{
			"tag":   fe.Tag(),
			"param": fe.Param(),
		})
	}
}

// fieldPath drops the struct name from a namespace and turns indexes
// into path segments: "User.items[2].price" becomes "items.2.price".
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		ns = rest
	}
	ns = strings.NewReplacer("[", ".", "]", "").Replace(ns)
	return ns
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "username":
		return "must be 3-20 letters, digits or underscores"
	case "slug":
		return "must contain only lower-case letters, digits or '-'"
	}
	if fe.Param() != "" {
		return fmt.Sprintf("failed %s=%s", fe.Tag(), fe.Param())
	}
	return "failed " + fe.Tag()
}
