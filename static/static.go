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

// Package static serves files from an [fs.FS] as a pipeline callback.
//
// The requested file is the value of the single path parameter of the
// matching handler, or, for wildcard patterns, the part of the path the
// wildcard covered. Typical use exposes resources when no route answered:
//
//	pipeline.OnStatus(message.StatusNotFound, "/web/*", static.Handler(assets))
//
// Paths containing ".." are rejected with a [pipeline.KindIllegalArgument]
// fault. Folders and missing files answer 404.
package static

import (
	"errors"
	"io/fs"
	"path"
	"strings"

	"rivaas.dev/pipeline"
	"rivaas.dev/pipeline/message"
)

// Option configures a static handler.
type Option func(*config)

type config struct {
	index        string
	cacheControl string
}

// WithIndex sets the file served when the requested path is empty.
// Default: "index.html".
func WithIndex(name string) Option {
	return func(c *config) {
		c.index = name
	}
}

// WithCacheControl sets a cache-control header on served files.
//
// Example:
//
//	static.Handler(assets, static.WithCacheControl("public, max-age=3600"))
func WithCacheControl(value string) Option {
	return func(c *config) {
		c.cacheControl = value
	}
}

// Handler returns a callback serving files from fsys.
func Handler(fsys fs.FS, opts ...Option) pipeline.Callback {
	cfg := &config{index: "index.html"}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *pipeline.Context) error {
		name, err := requestedPath(c)
		if err != nil {
			return err
		}
		if strings.Contains(name, "..") {
			return pipeline.KindIllegalArgument.Errorf("requested path cannot contain '..': %s", name)
		}
		c.Logger().DebugContext(c.Context(), "resolving resource", "path", name)

		if strings.HasSuffix(name, "/") {
			return c.NotFound(name + " not found (folder)")
		}
		if name == "" {
			name = cfg.index
		}

		info, err := fs.Stat(fsys, name)
		switch {
		case errors.Is(err, fs.ErrNotExist), errors.Is(err, fs.ErrInvalid):
			return c.NotFound(name + " not found")
		case err != nil:
			return pipeline.KindRuntime.Wrap(err, "reading "+name)
		case info.IsDir():
			return c.NotFound(name + " not found (folder)")
		}

		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return pipeline.KindRuntime.Wrap(err, "reading "+name)
		}

		if ct, ok := message.ContentTypeFor(path.Ext(name)); ok {
			c.SetContentType(ct)
		}
		if cfg.cacheControl != "" {
			if err := c.SetHeader("cache-control", cfg.cacheControl); err != nil {
				return err
			}
		}
		return c.OK(data)
	}
}

// requestedPath extracts the file name from the matched handler: its only
// path parameter, or the segments covered by a trailing wildcard.
func requestedPath(c *pipeline.Context) (string, error) {
	params := c.Params()
	switch len(params) {
	case 0:
	case 1:
		for _, v := range params {
			return v, nil
		}
	default:
		return "", pipeline.KindIllegalState.New("static files require a single path parameter or none")
	}

	route := c.RoutePattern()
	if !strings.HasSuffix(route, "*") {
		return "", nil
	}

	prefix := strings.Trim(strings.TrimSuffix(route, "*"), "/")
	reqPath := strings.TrimPrefix(c.Path(), "/")
	if prefix == "" {
		return reqPath, nil
	}

	skip := strings.Count(prefix, "/") + 1
	parts := strings.SplitN(reqPath, "/", skip+1)
	if len(parts) <= skip {
		return "", nil
	}
	return parts[skip], nil
}
