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
	"crypto/subtle"
	"encoding/base64"
	"strconv"
	"strings"

	"rivaas.dev/pipeline"
	"rivaas.dev/pipeline/message"
	"rivaas.dev/pipeline/problem"
)

// AttrUsername is the context attribute holding the authenticated user.
const AttrUsername = "username"

// ErrUnauthorized is the kind of faults raised by [BasicAuth].
var ErrUnauthorized = pipeline.NewErrorKind("unauthorized", pipeline.KindRuntime)

// BasicAuthOption configures [BasicAuth].
type BasicAuthOption func(*basicAuthConfig)

type basicAuthConfig struct {
	users     map[string]string
	realm     string
	validator func(username, password string) bool
	skipPaths map[string]bool
}

// WithUsers sets the accepted username/password pairs. Passwords are
// compared in constant time.
func WithUsers(users map[string]string) BasicAuthOption {
	return func(c *basicAuthConfig) {
		c.users = users
	}
}

// WithRealm sets the realm announced in www-authenticate. Default
// "Restricted".
func WithRealm(realm string) BasicAuthOption {
	return func(c *basicAuthConfig) {
		c.realm = realm
	}
}

// WithValidator checks credentials with fn instead of the users map.
func WithValidator(fn func(username, password string) bool) BasicAuthOption {
	return func(c *basicAuthConfig) {
		c.validator = fn
	}
}

// WithSkipPaths lists exact paths that bypass authentication.
func WithSkipPaths(paths ...string) BasicAuthOption {
	return func(c *basicAuthConfig) {
		for _, p := range paths {
			c.skipPaths[p] = true
		}
	}
}

func (c *basicAuthConfig) valid(username, password string) bool {
	if c.validator != nil {
		return c.validator(username, password)
	}
	expected, ok := c.users[username]
	if !ok {
		// Compare anyway so unknown users take as long as wrong passwords.
		subtle.ConstantTimeCompare([]byte(password), []byte(password))
		return false
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(expected)) == 1
}

// BasicAuth returns a filter enforcing HTTP basic authentication.
// Rejected requests get a www-authenticate header and an [ErrUnauthorized]
// fault with status 401, so the routes behind the filter never run.
// Accepted requests carry the user name under [AttrUsername].
func BasicAuth(opts ...BasicAuthOption) pipeline.Callback {
	cfg := &basicAuthConfig{
		realm:     "Restricted",
		skipPaths: map[string]bool{},
	}
	for _, opt := range opts {
		opt(cfg)
	}
	challenge := "Basic realm=" + strconv.Quote(cfg.realm) + `, charset="UTF-8"`

	return func(c *pipeline.Context) error {
		if cfg.skipPaths[c.Path()] {
			return nil
		}

		username, password, ok := parseBasicAuth(c.Request())
		if ok && cfg.valid(username, password) {
			c.SetAttribute(AttrUsername, username)
			return nil
		}

		if err := c.SetHeader("www-authenticate", challenge); err != nil {
			return err
		}
		msg := "invalid credentials"
		if !ok {
			msg = "missing credentials"
		}
		return problem.WithStatus(ErrUnauthorized.New(msg), int(message.StatusUnauthorized))
	}
}

func parseBasicAuth(req message.Request) (username, password string, ok bool) {
	auth := req.Header("authorization")
	const prefix = "Basic "
	if len(auth) < len(prefix) || !strings.EqualFold(auth[:len(prefix)], prefix) {
		return "", "", false
	}
	decoded, err := base64.StdEncoding.DecodeString(auth[len(prefix):])
	if err != nil {
		return "", "", false
	}
	return strings.Cut(string(decoded), ":")
}
