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
	"bytes"
	"compress/gzip"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/andybalholm/brotli"

	"rivaas.dev/pipeline"
	"rivaas.dev/pipeline/message"
)

// CompressionOption configures [Compression].
type CompressionOption func(*compressionConfig)

type compressionConfig struct {
	gzipLevel           int
	brotliLevel         int
	minSize             int
	enableGzip          bool
	enableBrotli        bool
	excludePaths        map[string]bool
	excludeExtensions   []string
	excludeContentTypes []string
}

func defaultCompressionConfig() *compressionConfig {
	return &compressionConfig{
		gzipLevel:    gzip.DefaultCompression,
		brotliLevel:  4,
		enableGzip:   true,
		enableBrotli: true,
		excludePaths: map[string]bool{},
	}
}

// WithGzipLevel sets the gzip level, from gzip.HuffmanOnly to gzip.BestCompression.
func WithGzipLevel(level int) CompressionOption {
	return func(c *compressionConfig) {
		if level >= gzip.HuffmanOnly && level <= gzip.BestCompression {
			c.gzipLevel = level
		}
	}
}

// WithBrotliLevel sets the brotli level (0-11). Levels above 5 are
// expensive for dynamic content.
func WithBrotliLevel(level int) CompressionOption {
	return func(c *compressionConfig) {
		if level >= brotli.BestSpeed && level <= brotli.BestCompression {
			c.brotliLevel = level
		}
	}
}

// WithMinSize skips bodies shorter than size bytes.
func WithMinSize(size int) CompressionOption {
	return func(c *compressionConfig) {
		c.minSize = max(size, 0)
	}
}

// WithGzipDisabled turns gzip off.
func WithGzipDisabled() CompressionOption {
	return func(c *compressionConfig) {
		c.enableGzip = false
	}
}

// WithBrotliDisabled turns brotli off, leaving gzip only.
func WithBrotliDisabled() CompressionOption {
	return func(c *compressionConfig) {
		c.enableBrotli = false
	}
}

// WithExcludePaths never compresses the given request paths.
func WithExcludePaths(paths ...string) CompressionOption {
	return func(c *compressionConfig) {
		for _, p := range paths {
			c.excludePaths[p] = true
		}
	}
}

// WithExcludeExtensions never compresses paths ending in one of exts,
// for example ".png" or ".zip".
func WithExcludeExtensions(exts ...string) CompressionOption {
	return func(c *compressionConfig) {
		c.excludeExtensions = append(c.excludeExtensions, exts...)
	}
}

// WithExcludeContentTypes never compresses responses whose media type
// contains one of types.
func WithExcludeContentTypes(types ...string) CompressionOption {
	return func(c *compressionConfig) {
		for _, t := range types {
			c.excludeContentTypes = append(c.excludeContentTypes, strings.ToLower(t))
		}
	}
}

var (
	gzipPools   sync.Map // level -> *sync.Pool
	brotliPools sync.Map
)

func gzipPool(level int) *sync.Pool {
	if p, ok := gzipPools.Load(level); ok {
		return p.(*sync.Pool)
	}
	p, _ := gzipPools.LoadOrStore(level, &sync.Pool{
		New: func() any {
			w, _ := gzip.NewWriterLevel(io.Discard, level)
			return w
		},
	})
	return p.(*sync.Pool)
}

func brotliPool(level int) *sync.Pool {
	if p, ok := brotliPools.Load(level); ok {
		return p.(*sync.Pool)
	}
	p, _ := brotliPools.LoadOrStore(level, &sync.Pool{
		New: func() any {
			return brotli.NewWriterLevel(io.Discard, level)
		},
	})
	return p.(*sync.Pool)
}

// Compression returns an after callback that encodes the response body
// with brotli or gzip when the request's accept-encoding allows it.
// Brotli wins ties. The body is replaced by the encoded bytes and
// content-encoding and vary headers are set.
//
// Responses are left alone when they already carry a content-encoding,
// have status 204, 206 or 304, have no body or a body below the minimum
// size, or have an excluded path or content type. Event streams, gRPC and
// octet streams are never compressed.
//
//	pipeline.After("*", filters.Compression(filters.WithMinSize(256)))
func Compression(opts ...CompressionOption) pipeline.Callback {
	cfg := defaultCompressionConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *pipeline.Context) error {
		req := c.Request()
		resp := c.Response()
		if cfg.skipRequest(req.Path) || resp.Headers.Has("content-encoding") || skipStatus(resp.Status) {
			return nil
		}
		if resp.ContentType != nil && cfg.skipContentType(resp.ContentType.MediaType) {
			return nil
		}

		encoding := chooseEncoding(req.Header("accept-encoding"), cfg)
		if encoding == "" {
			return nil
		}
		body, err := resp.BodyBytes()
		if err != nil || len(body) == 0 || len(body) < cfg.minSize {
			// Unsupported bodies are reported by the transport.
			return nil
		}

		encoded, err := cfg.encode(encoding, body)
		if err != nil {
			return err
		}
		resp = resp.WithBody(encoded).
			SetHeader("content-encoding", encoding).
			AddHeader("vary", "accept-encoding")
		c.SetResponse(resp)
		return nil
	}
}

func (cfg *compressionConfig) encode(encoding string, body []byte) ([]byte, error) {
	var buf bytes.Buffer
	switch encoding {
	case "br":
		pool := brotliPool(cfg.brotliLevel)
		w := pool.Get().(*brotli.Writer)
		defer pool.Put(w)
		w.Reset(&buf)
		if _, err := w.Write(body); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
	default:
		pool := gzipPool(cfg.gzipLevel)
		w := pool.Get().(*gzip.Writer)
		defer pool.Put(w)
		w.Reset(&buf)
		if _, err := w.Write(body); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func (cfg *compressionConfig) skipRequest(path string) bool {
	if cfg.excludePaths[path] {
		return true
	}
	for _, ext := range cfg.excludeExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

func (cfg *compressionConfig) skipContentType(mediaType string) bool {
	mt := strings.ToLower(mediaType)
	if strings.Contains(mt, "text/event-stream") ||
		strings.Contains(mt, "application/grpc") ||
		strings.Contains(mt, "application/octet-stream") {
		return true
	}
	for _, excluded := range cfg.excludeContentTypes {
		if strings.Contains(mt, excluded) {
			return true
		}
	}
	return false
}

func skipStatus(s message.Status) bool {
	return s == message.StatusNoContent ||
		s == message.StatusNotModified ||
		s == message.StatusPartialContent
}

// chooseEncoding picks "br" or "gzip" from an accept-encoding value,
// honoring q-values. A missing q means 1 and q=0 means refused.
func chooseEncoding(acceptEncoding string, cfg *compressionConfig) string {
	if acceptEncoding == "" {
		return ""
	}
	brQ, gzipQ, anyQ := -1.0, -1.0, -1.0
	for part := range strings.SplitSeq(strings.ToLower(acceptEncoding), ",") {
		name, params, _ := strings.Cut(part, ";")
		q := 1.0
		if v, ok := strings.CutPrefix(strings.TrimSpace(params), "q="); ok {
			if parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				q = parsed
			}
		}
		switch strings.TrimSpace(name) {
		case "br":
			brQ = q
		case "gzip":
			gzipQ = q
		case "*":
			anyQ = q
		}
	}
	if brQ < 0 {
		brQ = anyQ
	}
	if gzipQ < 0 {
		gzipQ = anyQ
	}

	if cfg.enableBrotli && brQ > 0 && brQ >= gzipQ {
		return "br"
	}
	if cfg.enableGzip && gzipQ > 0 {
		return "gzip"
	}
	return ""
}
