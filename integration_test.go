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

//go:build integration

package pipeline_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"rivaas.dev/pipeline"
	"rivaas.dev/pipeline/message"
)

var errStorage = pipeline.NewErrorKind("storage", pipeline.KindRuntime)

var _ = Describe("Dispatcher state machine", Label("integration", "dispatcher"), func() {
	var (
		d     *pipeline.Dispatcher
		trail []string
	)

	step := func(name string, cb pipeline.Callback) pipeline.Callback {
		return func(c *pipeline.Context) error {
			trail = append(trail, name)
			return cb(c)
		}
	}

	run := func(method message.Method, path string) *pipeline.Context {
		trail = nil
		return d.Process(context.Background(), message.NewRequest(method, path), nil)
	}

	BeforeEach(func() {
		d = pipeline.MustNew([]pipeline.Handler{
			pipeline.Filter("*", step("auth", func(c *pipeline.Context) error {
				if c.Request().Header("authorization") == "deny" {
					return pipeline.KindIllegalArgument.New("denied")
				}
				return c.AddHeader("x-auth", "ok")
			})),
			pipeline.Path("/store",
				pipeline.Get("/{key}", step("get", func(c *pipeline.Context) error {
					if c.Param("key") == "broken" {
						return errStorage.New("disk on fire")
					}
					return c.OK("value of " + c.Param("key"))
				})),
				pipeline.Put("/{key}", step("put", func(c *pipeline.Context) error {
					return c.Created(nil)
				})),
			),
			pipeline.ExceptionKind(errStorage, nil, step("storage", func(c *pipeline.Context) error {
				return c.Send(message.StatusServiceUnavailable, "try later")
			})),
			pipeline.ExceptionKind(pipeline.KindIllegalArgument, nil, step("reject", func(c *pipeline.Context) error {
				return c.Forbidden(c.Fault().Error())
			})),
			pipeline.OnStatus(message.StatusNotFound, "*", step("fallback", func(c *pipeline.Context) error {
				return c.NotFound("no route for " + c.Path())
			})),
			pipeline.After("*", step("audit", func(*pipeline.Context) error { return nil })),
		})
	})

	Context("in the normal state", func() {
		It("runs filters, the matching route and after handlers in order", func() {
			c := run(message.GET, "/store/a")
			Expect(trail).To(Equal([]string{"auth", "get", "audit"}))
			Expect(c.Status()).To(Equal(message.StatusOK))
			Expect(c.Response().BodyString()).To(Equal("value of a"))
			Expect(c.Response().Headers.Get("x-auth")).To(Equal("ok"))
		})

		It("falls back to the 404 status handler when no route matched", func() {
			c := run(message.DELETE, "/store/a")
			Expect(trail).To(Equal([]string{"auth", "fallback", "audit"}))
			Expect(c.Response().BodyString()).To(Equal("no route for /store/a"))
		})
	})

	Context("when a callback faults", func() {
		It("skips routes and recovers in the matching interceptor", func() {
			req := message.NewRequest(message.GET, "/store/a").WithHeader("authorization", "deny")
			trail = nil
			c := d.Process(context.Background(), req, nil)

			Expect(trail).To(Equal([]string{"auth", "reject", "audit"}))
			Expect(c.Status()).To(Equal(message.StatusForbidden))
			Expect(c.Faulted()).To(BeFalse())
		})

		It("routes derived kinds to their own interceptor", func() {
			c := run(message.GET, "/store/broken")
			Expect(trail).To(Equal([]string{"auth", "get", "storage", "audit"}))
			Expect(c.Status()).To(Equal(message.StatusServiceUnavailable))
			Expect(c.Response().BodyString()).To(Equal("try later"))
		})
	})

	Context("when nothing recovers the fault", func() {
		It("synthesizes an internal error with the fault message", func() {
			d = pipeline.MustNew([]pipeline.Handler{
				pipeline.Get("/x", func(*pipeline.Context) error { return errors.New("boom") }),
			})
			c := run(message.GET, "/x")
			Expect(c.Status()).To(Equal(message.StatusInternalServerError))
			Expect(c.Response().BodyString()).To(ContainSubstring("boom"))
		})
	})
})
