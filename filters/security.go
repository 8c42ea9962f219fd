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
	"fmt"
	"maps"
	"slices"
	"strings"

	"rivaas.dev/pipeline"
)

// SecurityOption configures [Security].
type SecurityOption func(*securityConfig)

type securityConfig struct {
	frameOptions          string
	contentTypeNosniff    bool
	xssProtection         string
	hstsMaxAge            int
	hstsIncludeSubdomains bool
	hstsPreload           bool
	contentSecurityPolicy string
	referrerPolicy        string
	permissionsPolicy     string
	customHeaders         map[string]string
}

func defaultSecurityConfig() *securityConfig {
	return &securityConfig{
		frameOptions:          "DENY",
		contentTypeNosniff:    true,
		xssProtection:         "1; mode=block",
		hstsMaxAge:            31536000,
		hstsIncludeSubdomains: true,
		contentSecurityPolicy: "default-src 'self'",
		referrerPolicy:        "strict-origin-when-cross-origin",
		customHeaders:         map[string]string{},
	}
}

// WithFrameOptions sets x-frame-options. Empty disables it.
func WithFrameOptions(value string) SecurityOption {
	return func(c *securityConfig) {
		c.frameOptions = value
	}
}

// WithContentTypeNosniff toggles x-content-type-options: nosniff.
func WithContentTypeNosniff(enabled bool) SecurityOption {
	return func(c *securityConfig) {
		c.contentTypeNosniff = enabled
	}
}

// WithXSSProtection sets x-xss-protection. Empty disables it.
func WithXSSProtection(value string) SecurityOption {
	return func(c *securityConfig) {
		c.xssProtection = value
	}
}

// WithHSTS configures strict-transport-security. A zero maxAge disables
// it. The header is only sent on secure protocols.
func WithHSTS(maxAge int, includeSubdomains, preload bool) SecurityOption {
	return func(c *securityConfig) {
		c.hstsMaxAge = maxAge
		c.hstsIncludeSubdomains = includeSubdomains
		c.hstsPreload = preload
	}
}

// WithContentSecurityPolicy sets content-security-policy.
func WithContentSecurityPolicy(policy string) SecurityOption {
	return func(c *securityConfig) {
		c.contentSecurityPolicy = policy
	}
}

// WithReferrerPolicy sets referrer-policy.
func WithReferrerPolicy(policy string) SecurityOption {
	return func(c *securityConfig) {
		c.referrerPolicy = policy
	}
}

// WithPermissionsPolicy sets permissions-policy.
func WithPermissionsPolicy(policy string) SecurityOption {
	return func(c *securityConfig) {
		c.permissionsPolicy = policy
	}
}

// WithCustomHeader adds a header to every response. The name is
// lower-cased.
func WithCustomHeader(name, value string) SecurityOption {
	return func(c *securityConfig) {
		c.customHeaders[strings.ToLower(name)] = value
	}
}

// NoSecurityHeaders clears every default. Combine with the other options
// to send only selected headers.
func NoSecurityHeaders() SecurityOption {
	return func(c *securityConfig) {
		*c = securityConfig{customHeaders: map[string]string{}}
	}
}

// DevelopmentPreset relaxes framing and CSP and disables HSTS.
func DevelopmentPreset() SecurityOption {
	return func(c *securityConfig) {
		c.frameOptions = "SAMEORIGIN"
		c.contentTypeNosniff = true
		c.xssProtection = "1; mode=block"
		c.contentSecurityPolicy = "default-src 'self' 'unsafe-inline' 'unsafe-eval'; img-src 'self' data:;"
		c.referrerPolicy = "no-referrer-when-downgrade"
		c.hstsMaxAge = 0
		c.hstsIncludeSubdomains = false
		c.hstsPreload = false
	}
}

// ProductionPreset enables HSTS preload and a restrictive permissions
// policy on top of the defaults.
func ProductionPreset() SecurityOption {
	return func(c *securityConfig) {
		c.frameOptions = "DENY"
		c.contentTypeNosniff = true
		c.xssProtection = "1; mode=block"
		c.hstsMaxAge = 31536000
		c.hstsIncludeSubdomains = true
		c.hstsPreload = true
		c.contentSecurityPolicy = "default-src 'self'"
		c.referrerPolicy = "strict-origin-when-cross-origin"
		c.permissionsPolicy = "geolocation=(), microphone=(), camera=()"
	}
}

type headerValue struct {
	name, value string
}

// Security returns a filter that sets the browser security headers.
//
// Defaults:
//
//	x-frame-options: DENY
//	x-content-type-options: nosniff
//	x-xss-protection: 1; mode=block
//	strict-transport-security: max-age=31536000; includeSubDomains (secure protocols only)
//	content-security-policy: default-src 'self'
//	referrer-policy: strict-origin-when-cross-origin
func Security(opts ...SecurityOption) pipeline.Callback {
	cfg := defaultSecurityConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	var hsts string
	if cfg.hstsMaxAge > 0 {
		hsts = fmt.Sprintf("max-age=%d", cfg.hstsMaxAge)
		if cfg.hstsIncludeSubdomains {
			hsts += "; includeSubDomains"
		}
		if cfg.hstsPreload {
			hsts += "; preload"
		}
	}

	// Built once so every response gets the headers in the same order.
	var headers []headerValue
	add := func(name, value string) {
		if value != "" {
			headers = append(headers, headerValue{name, value})
		}
	}
	add("x-frame-options", cfg.frameOptions)
	if cfg.contentTypeNosniff {
		add("x-content-type-options", "nosniff")
	}
	add("x-xss-protection", cfg.xssProtection)
	add("content-security-policy", cfg.contentSecurityPolicy)
	add("referrer-policy", cfg.referrerPolicy)
	add("permissions-policy", cfg.permissionsPolicy)
	for _, name := range slices.Sorted(maps.Keys(cfg.customHeaders)) {
		add(name, cfg.customHeaders[name])
	}

	return func(c *pipeline.Context) error {
		for _, h := range headers {
			if err := c.SetHeader(h.name, h.value); err != nil {
				return err
			}
		}
		if hsts != "" && c.Request().Protocol.Secure() {
			return c.SetHeader("strict-transport-security", hsts)
		}
		return nil
	}
}
