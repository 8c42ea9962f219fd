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

package main

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"sync"

	"go.opentelemetry.io/otel/attribute"

	"rivaas.dev/pipeline"
	"rivaas.dev/pipeline/filters"
	"rivaas.dev/pipeline/message"
	"rivaas.dev/pipeline/metrics"
	"rivaas.dev/pipeline/static"
	"rivaas.dev/pipeline/validation"
)

const (
	requestIDHeader = "x-request-id"
	authFailures    = "demo_auth_failures"
	userPayloadSize = "demo_user_payload_bytes"
)

// adminUsers guard the /admin routes.
var adminUsers = map[string]string{"admin": "admin"}

//go:embed web
var webFS embed.FS

func assets() fs.FS {
	sub, err := fs.Sub(webFS, "web")
	if err != nil {
		panic(err)
	}
	return sub
}

var jsonType = message.NewContentType("application/json", "utf-8")

type user struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type newUser struct {
	Name string `json:"name" validate:"required,min=2,max=40"`
}

type userStore struct {
	mu     sync.RWMutex
	nextID int
	users  map[int]user
}

func newUserStore() *userStore {
	return &userStore{
		nextID: 2,
		users:  map[int]user{1: {ID: 1, Name: "ada"}},
	}
}

func (s *userStore) get(id int) (user, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	return u, ok
}

func (s *userStore) count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

func (s *userStore) add(name string) user {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := user{ID: s.nextID, Name: name}
	s.users[u.ID] = u
	s.nextID++
	return u
}

// handlers returns the demo handler list. Order matters: filters run
// first, routes answer, then the after handlers translate pending faults,
// serve static files when nothing answered and compress the result.
// rec may be nil.
func handlers(users *userStore, web fs.FS, rec *metrics.Recorder) []pipeline.Handler {
	notFound := message.StatusNotFound
	badRequest := message.StatusBadRequest

	return []pipeline.Handler{
		pipeline.Filter("*", filters.RequestID(filters.WithRequestIDHeader(requestIDHeader))),
		pipeline.Filter("*", filters.Security(filters.DevelopmentPreset())),
		pipeline.Filter("/users/*", filters.CORS(
			filters.WithAllowedMethods("GET", "POST"),
			filters.WithExposedHeaders(requestIDHeader),
		)),
		pipeline.Filter("/admin/*", filters.BasicAuth(
			filters.WithUsers(adminUsers),
			filters.WithRealm("pipeline demo"),
		)),

		pipeline.Get("/health", func(c *pipeline.Context) error {
			return c.OK("ok")
		}),
		pipeline.Get("/hello/{name}", func(c *pipeline.Context) error {
			return c.OK("Hello " + c.Param("name") + "!")
		}),
		pipeline.Path("/users",
			pipeline.Get("/{id}", func(c *pipeline.Context) error {
				id, err := strconv.Atoi(c.Param("id"))
				if err != nil {
					return pipeline.KindIllegalArgument.Wrap(err, "user id must be a number")
				}
				u, ok := users.get(id)
				if !ok {
					return pipeline.KindNotFound.Errorf("user %d not found", id)
				}
				return sendJSON(c, message.StatusOK, u)
			}),
			pipeline.Post("", func(c *pipeline.Context) error {
				body := bodyBytes(c.Request())
				if rec != nil {
					if err := rec.RecordHistogram(c.Context(), userPayloadSize, float64(len(body))); err != nil {
						c.Logger().WarnContext(c.Context(), "payload size not recorded", "error", err)
					}
				}
				var in newUser
				if err := json.Unmarshal(body, &in); err != nil {
					return err
				}
				if err := validation.Validate(c.Context(), &in); err != nil {
					return err
				}
				return sendJSON(c, message.StatusCreated, users.add(in.Name))
			}),
		),
		pipeline.Get("/admin/stats", func(c *pipeline.Context) error {
			return sendJSON(c, message.StatusOK, map[string]any{
				"users": users.count(),
				"by":    c.Attribute(filters.AttrUsername),
			})
		}),
		pipeline.Get("/boom", func(*pipeline.Context) error {
			panic("boom")
		}),

		pipeline.After("/admin/*", func(c *pipeline.Context) error {
			if rec == nil || !errors.Is(c.Fault(), filters.ErrUnauthorized) {
				return nil
			}
			return rec.IncrementCounter(c.Context(), authFailures,
				attribute.String("reason", c.Fault().Error()))
		}),
		pipeline.ExceptionKind(pipeline.KindNotFound, nil, func(c *pipeline.Context) error {
			return c.NotFound(c.Fault().Error())
		}),
		pipeline.Exception(nil, func(c *pipeline.Context, err *validation.Error) error {
			return sendJSON(c, message.StatusUnprocessableEntity, err)
		}),
		pipeline.ExceptionKind(pipeline.KindIllegalArgument, nil, func(c *pipeline.Context) error {
			return c.BadRequest(c.Fault().Error())
		}),
		pipeline.Exception(nil, func(c *pipeline.Context, err *json.SyntaxError) error {
			return c.BadRequest(fmt.Sprintf("invalid json at offset %d", err.Offset))
		}),
		pipeline.OnStatus(notFound, "/web/*", static.Handler(web,
			static.WithCacheControl("public, max-age=60"),
		)),
		pipeline.After("*", func(c *pipeline.Context) error {
			if c.Status() == badRequest {
				c.Logger().WarnContext(c.Context(), "bad request", "path", c.Path())
			}
			return nil
		}),
		pipeline.After("*", filters.Compression(
			filters.WithMinSize(32),
			filters.WithExcludeExtensions(".png", ".jpg", ".gif", ".zip"),
		)),
	}
}

func sendJSON(c *pipeline.Context, status message.Status, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.SetContentType(jsonType)
	return c.Send(status, data)
}

func bodyBytes(req message.Request) []byte {
	switch b := req.Body.(type) {
	case []byte:
		return b
	case string:
		return []byte(b)
	default:
		return nil
	}
}
