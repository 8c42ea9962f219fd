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

// Command pipeline-demo runs an HTTP server built on a pipeline
// dispatcher. Configuration comes from an optional YAML, TOML or JSON file
// and PIPELINE_* environment variables.
//
//	pipeline-demo -config demo.yaml
//	PIPELINE_METRICS_PROVIDER=prometheus pipeline-demo
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"rivaas.dev/pipeline/config"
)

func main() {
	configPath := flag.String("config", "", "configuration file (yaml, toml or json)")
	quiet := flag.Bool("quiet", false, "do not print the startup banner")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath, !*quiet); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, banner bool) error {
	var opts []config.Option
	if configPath != "" {
		opts = append(opts, config.WithFile(configPath))
	}
	cfg, err := config.Load(ctx, opts...)
	if err != nil {
		return err
	}

	d, err := newDemo(cfg, os.Stdout)
	if err != nil {
		return err
	}

	srv, err := d.server()
	if err != nil {
		return err
	}
	if banner {
		printBanner(os.Stdout, d)
	}
	if err := srv.Run(ctx); err != nil {
		return err
	}
	d.logger.Info("server stopped")
	return nil
}
