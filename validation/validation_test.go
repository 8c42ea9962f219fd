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
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rivaas.dev/pipeline"
	"rivaas.dev/pipeline/message"
	"rivaas.dev/pipeline/problem"
)

type item struct {
	Price float64 `json:"price" validate:"gt=0"`
}

type order struct {
	Email string `json:"email" validate:"required,email"`
	User  string `json:"user" validate:"username"`
	Items []item `json:"items" validate:"min=1,dive"`
}

type profile struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}

func (profile) JSONSchema() (string, string) {
	return "profile.json", `{
		"type": "object",
		"properties": {
			"name": {"type": "string", "minLength": 2},
			"age": {"type": "integer", "minimum": 0}
		},
		"required": ["name"]
	}`
}

func TestValidate_Tags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		in    any
		paths []string
		codes []string
	}{
		{
			name: "valid",
			in:   &order{Email: "a@b.co", User: "ada_l", Items: []item{{Price: 1}}},
		},
		{
			name:  "missing email",
			in:    &order{User: "ada_l", Items: []item{{Price: 1}}},
			paths: []string{"email"},
			codes: []string{"tag.required"},
		},
		{
			name:  "nested index",
			in:    &order{Email: "a@b.co", User: "ada_l", Items: []item{{Price: 1}, {Price: 0}}},
			paths: []string{"items.1.price"},
			codes: []string{"tag.gt"},
		},
		{
			name:  "several fields sorted",
			in:    order{Email: "nope", User: "x"},
			paths: []string{"email", "items", "user"},
			codes: []string{"tag.email", "tag.min", "tag.username"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := Validate(t.Context(), tt.in)
			if tt.paths == nil {
				require.NoError(t, err)
				return
			}

			var verr *Error
			require.ErrorAs(t, err, &verr)
			var paths, codes []string
			for _, f := range verr.Fields {
				paths = append(paths, f.Path)
				codes = append(codes, f.Code)
			}
			assert.Equal(t, tt.paths, paths)
			assert.Equal(t, tt.codes, codes)
		})
	}
}

func TestValidate_Schema(t *testing.T) {
	t.Parallel()

	require.NoError(t, Validate(t.Context(), profile{Name: "ada", Age: 36}))

	err := Validate(t.Context(), profile{Name: "a", Age: -1})
	var verr *Error
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Fields, 2)
	assert.Equal(t, "age", verr.Fields[0].Path)
	assert.Equal(t, "schema.minimum", verr.Fields[0].Code)
	assert.Equal(t, "name", verr.Fields[1].Path)
	assert.Equal(t, "schema.minLength", verr.Fields[1].Code)
}

func TestValidateJSON(t *testing.T) {
	t.Parallel()

	v := MustNew()
	_, schema := profile{}.JSONSchema()

	require.NoError(t, v.ValidateJSON(t.Context(), "p", schema, []byte(`{"name":"ada"}`)))

	err := v.ValidateJSON(t.Context(), "p", schema, []byte(`{"age":3}`))
	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "schema.required", verr.Fields[0].Code)

	err = v.ValidateJSON(t.Context(), "p", schema, []byte(`{`))
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "unmarshal_error", verr.Fields[0].Code)

	err = v.ValidateJSON(t.Context(), "", `{"type": 12}`, []byte(`{}`))
	require.Error(t, err)
	assert.NotErrorAs(t, err, &verr)
}

func TestValidate_Options(t *testing.T) {
	t.Parallel()

	v := MustNew(
		WithMaxErrors(1),
		WithCustomTag("even", func(fl validator.FieldLevel) bool { return fl.Field().Int()%2 == 0 }),
	)
	type in struct {
		A int `json:"a" validate:"even"`
		B int `json:"b" validate:"even"`
	}

	err := v.Validate(t.Context(), in{A: 1, B: 3})
	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 1)
	assert.True(t, verr.Truncated)
	assert.Contains(t, verr.Error(), "failed even")

	_, err = New(WithMaxErrors(-1))
	require.Error(t, err)
}

func TestValidate_Edges(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	require.ErrorIs(t, Validate(ctx, order{}), context.Canceled)

	var verr *Error
	require.ErrorAs(t, Validate(t.Context(), nil), &verr)
	assert.Equal(t, "nil", verr.Fields[0].Code)

	assert.NoError(t, Validate(t.Context(), 42), "non-struct values without a schema pass")
}

func TestError_Kinds(t *testing.T) {
	t.Parallel()

	err := Validate(t.Context(), order{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
	assert.ErrorIs(t, err, pipeline.KindIllegalArgument)
	assert.True(t, pipeline.KindOf(ErrValidation)(err))

	var verr *Error
	require.True(t, errors.As(err, &verr))
	assert.True(t, verr.Has("email"))
	assert.Nil(t, verr.Field("missing"))
	assert.Equal(t, "validation_error", verr.Code())
}

func TestError_Formatted(t *testing.T) {
	t.Parallel()

	err := Validate(t.Context(), &order{User: "ada_l", Items: []item{{Price: 1}}})
	resp := problem.NewSimple().Format(message.NewRequest(message.POST, "/orders"), err)

	assert.Equal(t, message.StatusUnprocessableEntity, resp.Status)
	assert.Contains(t, resp.BodyString(), `"path":"email"`)
	assert.Contains(t, resp.BodyString(), "validation_error")
}

func TestError_Messages(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "validation failed", Error{}.Error())
	assert.Equal(t, "is required", Error{Fields: []FieldError{{Message: "is required"}}}.Error())
	assert.Equal(t, "validation failed: a: x; b: y (truncated)", Error{
		Fields:    []FieldError{{Path: "a", Message: "x"}, {Path: "b", Message: "y"}},
		Truncated: true,
	}.Error())
}
