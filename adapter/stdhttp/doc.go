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

// Package stdhttp connects a [pipeline.Dispatcher] to net/http.
//
// [RequestFromHTTP] and [WriteResponse] translate between *http.Request,
// http.ResponseWriter and the message types; [Handler] puts both around a
// dispatcher so it can be mounted on any mux. [Server] runs a handler with
// production timeouts, optional h2c and graceful shutdown when its context
// is cancelled:
//
//	d := pipeline.MustNew(handlers)
//	srv := stdhttp.NewServer(stdhttp.New(d), stdhttp.WithAddress(":8080"))
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
//	defer stop()
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// The gin, echo and lambda adapters reuse the conversions defined here.
package stdhttp
