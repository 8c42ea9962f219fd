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

package pattern

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		pattern string
		wantErr error
	}{
		{name: "duplicate parameter", pattern: "/users/{id}/posts/{id}", wantErr: ErrDuplicateParam},
		{name: "empty parameter", pattern: "/users/{}", wantErr: ErrInvalidParam},
		{name: "unclosed parameter", pattern: "/users/{id", wantErr: ErrInvalidParam},
		{name: "invalid parameter characters", pattern: "/users/{user-id}", wantErr: ErrInvalidParam},
		{name: "wildcard in the middle", pattern: "/files/*/meta", wantErr: ErrWildcardPosition},
		{name: "partial wildcard", pattern: "/nested*", wantErr: ErrWildcardPosition},
		{name: "parent traversal", pattern: "/static/../etc", wantErr: ErrTraversal},
		{name: "current directory", pattern: "/static/./etc", wantErr: ErrTraversal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p, err := Compile(tt.pattern)
			require.Error(t, err)
			assert.Nil(t, p)
			assert.ErrorIs(t, err, tt.wantErr)

			var perr *Error
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, tt.pattern, perr.Pattern)
			assert.Contains(t, err.Error(), tt.pattern)
		})
	}
}

func TestMustCompile_Panics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { MustCompile("/{a}/{a}") })
	assert.NotPanics(t, func() { MustCompile("/{a}/{b}") })
}

func TestPattern_Match(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		pattern    string
		path       string
		wantMatch  bool
		wantParams Params
	}{
		{name: "empty matches everything", pattern: "", path: "/any/thing", wantMatch: true},
		{name: "star matches everything", pattern: "*", path: "/any/thing", wantMatch: true},
		{name: "star matches root", pattern: "*", path: "/", wantMatch: true},
		{name: "root matches root", pattern: "/", path: "/", wantMatch: true},
		{name: "root does not match child", pattern: "/", path: "/a", wantMatch: false},
		{name: "literal", pattern: "/hello", path: "/hello", wantMatch: true},
		{name: "literal mismatch", pattern: "/hello", path: "/bye", wantMatch: false},
		{name: "literal is case sensitive", pattern: "/hello", path: "/Hello", wantMatch: false},
		{name: "too many segments", pattern: "/hello", path: "/hello/world", wantMatch: false},
		{name: "too few segments", pattern: "/hello/world", path: "/hello", wantMatch: false},
		{
			name:       "single parameter",
			pattern:    "/users/{id}",
			path:       "/users/42",
			wantMatch:  true,
			wantParams: Params{"id": "42"},
		},
		{
			name:       "parameters are not decoded",
			pattern:    "/files/{name}",
			path:       "/files/a%20b",
			wantMatch:  true,
			wantParams: Params{"name": "a%20b"},
		},
		{
			name:       "several parameters",
			pattern:    "/users/{user_id}/posts/{postId}",
			path:       "/users/7/posts/99",
			wantMatch:  true,
			wantParams: Params{"user_id": "7", "postId": "99"},
		},
		{name: "parameter rejects empty segment", pattern: "/users/{id}", path: "/users/", wantMatch: false},
		{name: "wildcard accepts zero segments", pattern: "/filters/*", path: "/filters", wantMatch: true},
		{name: "wildcard accepts many segments", pattern: "/filters/*", path: "/filters/a/b/c", wantMatch: true},
		{name: "wildcard still checks prefix", pattern: "/filters/*", path: "/other/a", wantMatch: false},
		{
			name:       "parameter before wildcard",
			pattern:    "/users/{id}/*",
			path:       "/users/3/avatar/large",
			wantMatch:  true,
			wantParams: Params{"id": "3"},
		},
		{name: "root wildcard", pattern: "/*", path: "/a/b", wantMatch: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := MustCompile(tt.pattern)
			params, ok := p.Match(tt.path)
			assert.Equal(t, tt.wantMatch, ok)
			if tt.wantParams != nil {
				assert.Equal(t, tt.wantParams, params)
			} else {
				assert.Empty(t, params)
			}
		})
	}
}

func TestPattern_Accessors(t *testing.T) {
	t.Parallel()

	p := MustCompile("/users/{id}/posts/{post}/*")
	assert.Equal(t, "/users/{id}/posts/{post}/*", p.String())
	assert.Equal(t, []string{"id", "post"}, p.Names())
	assert.True(t, p.HasWildcard())
	assert.False(t, p.MatchesAll())

	names := p.Names()
	names[0] = "changed"
	assert.Equal(t, "id", p.Names()[0], "Names must return a copy")

	assert.True(t, MustCompile("").MatchesAll())
	assert.True(t, MustCompile("*").MatchesAll())
	assert.False(t, MustCompile("/*").MatchesAll())
}

func TestParams_Get(t *testing.T) {
	t.Parallel()

	var empty Params
	assert.Empty(t, empty.Get("id"))
	assert.Equal(t, "1", Params{"id": "1"}.Get("id"))
}

func TestJoin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		prefix, child, want string
	}{
		{prefix: "", child: "/hello", want: "/hello"},
		{prefix: "/nested", child: "", want: "/nested"},
		{prefix: "/nested", child: "*", want: "/nested/*"},
		{prefix: "/nested/", child: "*", want: "/nested/*"},
		{prefix: "/a", child: "/b", want: "/a/b"},
		{prefix: "/a/", child: "/b", want: "/a/b"},
		{prefix: "/a", child: "b", want: "/a/b"},
		{prefix: "/a/", child: "b", want: "/a/b"},
		{prefix: "/a", child: "/*", want: "/a/*"},
	}

	for _, tt := range tests {
		t.Run(tt.prefix+"+"+tt.child, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Join(tt.prefix, tt.child))
		})
	}
}

func TestJoin_NestedGroupsMatch(t *testing.T) {
	t.Parallel()

	joined := Join("/a", Join("/b", "/c"))
	p := MustCompile(joined)

	_, ok := p.Match("/a/b/c")
	assert.True(t, ok)
	_, ok = p.Match("/a/c")
	assert.False(t, ok)
}
