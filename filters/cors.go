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

package filters

import (
	"strconv"
	"strings"

	"rivaas.dev/pipeline"
	"rivaas.dev/pipeline/message"
)

// CORSOption configures [CORS].
type CORSOption func(*corsConfig)

type corsConfig struct {
	allowedOrigins     []string
	allowAllOrigins    bool
	allowOriginFunc    func(origin string) bool
	allowedMethods     []string
	allowedHeaders     []string
	exposedHeaders     []string
	allowCredentials   bool
	maxAge             int
	optionsPassthrough bool
}

// WithAllowedOrigins restricts origins to the given list. An entry may
// hold one '*', as in "https://*.example.com".
func WithAllowedOrigins(origins ...string) CORSOption {
	return func(c *corsConfig) {
		c.allowedOrigins = origins
		c.allowAllOrigins = false
	}
}

// WithAllowAllOrigins accepts every origin.
func WithAllowAllOrigins(allow bool) CORSOption {
	return func(c *corsConfig) {
		c.allowAllOrigins = allow
	}
}

// WithAllowOriginFunc decides origins dynamically. It takes precedence
// over the origin list.
func WithAllowOriginFunc(fn func(origin string) bool) CORSOption {
	return func(c *corsConfig) {
		c.allowOriginFunc = fn
	}
}

// WithAllowedMethods sets the methods announced to preflight requests.
func WithAllowedMethods(methods ...string) CORSOption {
	return func(c *corsConfig) {
		c.allowedMethods = methods
	}
}

// WithAllowedHeaders sets the request headers announced to preflight
// requests. When empty the requested headers are echoed back.
func WithAllowedHeaders(headers ...string) CORSOption {
	return func(c *corsConfig) {
		c.allowedHeaders = headers
	}
}

// WithExposedHeaders sets the response headers readable by the client.
func WithExposedHeaders(headers ...string) CORSOption {
	return func(c *corsConfig) {
		c.exposedHeaders = headers
	}
}

// WithAllowCredentials allows cookies and authorization headers. The
// allowed origin is then always echoed instead of "*".
func WithAllowCredentials(allow bool) CORSOption {
	return func(c *corsConfig) {
		c.allowCredentials = allow
	}
}

// WithMaxAge sets how long, in seconds, preflight results may be cached.
func WithMaxAge(seconds int) CORSOption {
	return func(c *corsConfig) {
		c.maxAge = seconds
	}
}

// WithOptionsPassthrough leaves preflight requests to later handlers
// instead of answering 204.
func WithOptionsPassthrough(enabled bool) CORSOption {
	return func(c *corsConfig) {
		c.optionsPassthrough = enabled
	}
}

func (c *corsConfig) originAllowed(origin string) bool {
	if c.allowOriginFunc != nil {
		return c.allowOriginFunc(origin)
	}
	if c.allowAllOrigins {
		return true
	}
	for _, allowed := range c.allowedOrigins {
		if matchOrigin(allowed, origin) {
			return true
		}
	}
	return false
}

func matchOrigin(allowed, origin string) bool {
	prefix, suffix, wildcard := strings.Cut(allowed, "*")
	if !wildcard {
		return strings.EqualFold(allowed, origin)
	}
	origin = strings.ToLower(origin)
	prefix, suffix = strings.ToLower(prefix), strings.ToLower(suffix)
	return len(origin) > len(prefix)+len(suffix) &&
		strings.HasPrefix(origin, prefix) &&
		strings.HasSuffix(origin, suffix)
}

// CORS returns a filter implementing cross-origin resource sharing.
// Requests without an origin header and requests from rejected origins
// pass through untouched. Preflight requests (OPTIONS with
// access-control-request-method) are answered with 204.
//
// Example:
//
//	pipeline.Filter("/api/*", filters.CORS(
//	    filters.WithAllowedOrigins("https://app.example.com"),
//	    filters.WithAllowedMethods("GET", "POST"),
//	))
func CORS(opts ...CORSOption) pipeline.Callback {
	cfg := &corsConfig{
		allowAllOrigins: true,
		allowedMethods:  []string{"GET", "HEAD", "POST", "PUT", "PATCH", "DELETE"},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	methods := strings.Join(cfg.allowedMethods, ", ")
	allowedHeaders := strings.Join(cfg.allowedHeaders, ", ")
	exposed := strings.Join(cfg.exposedHeaders, ", ")
	echoOrigin := cfg.allowCredentials || !cfg.allowAllOrigins || cfg.allowOriginFunc != nil

	return func(c *pipeline.Context) error {
		req := c.Request()
		origin := req.Header("origin")
		if origin == "" || !cfg.originAllowed(origin) {
			return nil
		}

		set := func(name, value string) error {
			if value == "" {
				return nil
			}
			return c.SetHeader(name, value)
		}

		allowOrigin := "*"
		if echoOrigin {
			allowOrigin = origin
			if err := c.AddHeader("vary", "origin"); err != nil {
				return err
			}
		}
		if err := set("access-control-allow-origin", allowOrigin); err != nil {
			return err
		}
		if cfg.allowCredentials {
			if err := set("access-control-allow-credentials", "true"); err != nil {
				return err
			}
		}

		preflight := req.Method == message.OPTIONS && req.Header("access-control-request-method") != ""
		if !preflight {
			return set("access-control-expose-headers", exposed)
		}

		headers := allowedHeaders
		if headers == "" {
			headers = req.Header("access-control-request-headers")
		}
		if err := set("access-control-allow-methods", methods); err != nil {
			return err
		}
		if err := set("access-control-allow-headers", headers); err != nil {
			return err
		}
		if cfg.maxAge > 0 {
			if err := set("access-control-max-age", strconv.Itoa(cfg.maxAge)); err != nil {
				return err
			}
		}
		if cfg.optionsPassthrough {
			return nil
		}
		return c.Send(message.StatusNoContent, nil)
	}
}
