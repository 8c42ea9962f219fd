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

package pipeline_test

import (
	"context"
	"fmt"

	"rivaas.dev/pipeline"
	"rivaas.dev/pipeline/message"
)

func ExampleDispatcher() {
	d := pipeline.MustNew([]pipeline.Handler{
		pipeline.Filter("*", func(c *pipeline.Context) error {
			return c.AddHeader("x-server", "pipeline")
		}),
		pipeline.Path("/api",
			pipeline.Get("/hello/{name}", func(c *pipeline.Context) error {
				return c.OK("Hello " + c.Param("name"))
			}),
		),
	})

	c := d.Process(context.Background(), message.NewRequest(message.GET, "/api/hello/bob"), nil)
	fmt.Println(c.Status())
	fmt.Println(c.Response().BodyString())
	fmt.Println(c.Response().Headers.Get("x-server"))
	// Output:
	// 200 OK
	// Hello bob
	// pipeline
}

func ExampleException() {
	type quotaError struct{ error }

	d := pipeline.MustNew([]pipeline.Handler{
		pipeline.Post("/upload", func(*pipeline.Context) error {
			return quotaError{fmt.Errorf("quota exceeded")}
		}),
		pipeline.Exception(nil, func(c *pipeline.Context, err quotaError) error {
			return c.Send(413, err.Error())
		}),
	})

	c := d.Process(context.Background(), message.NewRequest(message.POST, "/upload"), nil)
	fmt.Println(c.Status().Code(), c.Response().BodyString())
	// Output:
	// 413 quota exceeded
}

func ExampleProcess() {
	hello := func(c *pipeline.Context) error {
		return c.OK("hi " + c.Request().QueryParam("name"))
	}

	req := message.NewRequest(message.GET, "/").WithQuery(message.NewFields("name", "ann"))
	c := pipeline.Process(hello, req, nil)
	fmt.Println(c.Response().BodyString())
	// Output:
	// hi ann
}
