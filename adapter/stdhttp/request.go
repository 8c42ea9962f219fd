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

package stdhttp

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"strconv"

	"rivaas.dev/pipeline/message"
)

// DefaultMaxBodyBytes limits how much of a request body is read.
const DefaultMaxBodyBytes int64 = 10 << 20

var (
	// ErrBodyTooLarge is returned when a body exceeds the configured limit.
	ErrBodyTooLarge = errors.New("request body too large")

	// ErrUnsupportedMethod is returned for a method outside [message.AllMethods].
	ErrUnsupportedMethod = errors.New("unsupported method")
)

// RequestFromHTTP converts r into a [message.Request]. The body is read
// fully, up to maxBody bytes (0 means [DefaultMaxBodyBytes]). URL-encoded
// and multipart forms are decoded into Form and Parts.
//
// The returned error wraps [ErrUnsupportedMethod] for an unknown method
// and [ErrBodyTooLarge] for an oversized body.
func RequestFromHTTP(r *http.Request, maxBody int64) (message.Request, error) {
	method, err := message.ParseMethod(r.Method)
	if err != nil {
		return message.Request{}, fmt.Errorf("%w: %w", ErrUnsupportedMethod, err)
	}
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}

	req := message.Request{
		Method:        method,
		Protocol:      protocolOf(r),
		Path:          r.URL.Path,
		Query:         message.ParseQueryString(r.URL.RawQuery),
		Headers:       message.HeadersFromHTTP(r.Header),
		ContentLength: r.ContentLength,
	}
	req.Host, req.Port = splitHost(r.Host, req.Protocol)
	if req.Path == "" {
		req.Path = "/"
	}

	for _, c := range r.Cookies() {
		req.Cookies = append(req.Cookies, message.Cookie{Name: c.Name, Value: c.Value})
	}
	if ct := r.Header.Get("Content-Type"); ct != "" {
		if parsed, perr := message.ParseContentType(ct); perr == nil {
			req.ContentType = &parsed
		}
	}
	if accept := r.Header.Get("Accept"); accept != "" {
		req.Accept = message.ParseAccept(accept)
	}
	if r.TLS != nil {
		req.Certificates = r.TLS.PeerCertificates
	}

	body, err := readBody(r.Body, maxBody)
	if err != nil {
		return message.Request{}, err
	}
	if body != nil {
		req.Body = body
	}

	if req.ContentType != nil {
		switch req.ContentType.MediaType {
		case "application/x-www-form-urlencoded":
			req.Form = message.ParseQueryString(string(body))
		case "multipart/form-data":
			if req.Form, req.Parts, err = readMultipart(body, req.ContentType.Boundary); err != nil {
				return message.Request{}, fmt.Errorf("invalid multipart body: %w", err)
			}
		}
	}

	return req, nil
}

func protocolOf(r *http.Request) message.Protocol {
	switch {
	case r.TLS != nil && r.ProtoMajor == 2:
		return message.HTTP2
	case r.TLS != nil:
		return message.HTTPS
	case r.ProtoMajor == 2:
		return message.H2C
	default:
		return message.HTTP
	}
}

func splitHost(hostport string, proto message.Protocol) (string, int) {
	port := 80
	if proto.Secure() {
		port = 443
	}
	if hostport == "" {
		return "localhost", port
	}
	host, p, err := net.SplitHostPort(hostport)
	if err != nil {
		return hostport, port
	}
	if n, err := strconv.Atoi(p); err == nil {
		port = n
	}
	return host, port
}

func readBody(body io.ReadCloser, limit int64) ([]byte, error) {
	if body == nil || body == http.NoBody {
		return nil, nil
	}
	defer body.Close()

	b, err := io.ReadAll(io.LimitReader(body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read request body: %w", err)
	}
	if int64(len(b)) > limit {
		return nil, ErrBodyTooLarge
	}
	if len(b) == 0 {
		return nil, nil
	}
	return b, nil
}

func readMultipart(body []byte, boundary string) (message.Fields, []message.Part, error) {
	var form message.Fields
	var parts []message.Part
	if boundary == "" {
		return form, nil, errors.New("missing boundary")
	}

	mr := multipart.NewReader(bytes.NewReader(body), boundary)
	for {
		p, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return form, parts, nil
		}
		if err != nil {
			return form, nil, err
		}
		data, err := io.ReadAll(p)
		if err != nil {
			return form, nil, err
		}

		part := message.Part{
			Name:     p.FormName(),
			Filename: p.FileName(),
			Headers:  message.HeadersFromHTTP(http.Header(p.Header)),
			Body:     data,
			Size:     int64(len(data)),
		}
		if ct := p.Header.Get("Content-Type"); ct != "" {
			if parsed, perr := message.ParseContentType(ct); perr == nil {
				part.ContentType = &parsed
			}
		}
		if part.Filename == "" && part.Name != "" {
			form = form.Add(part.Name, string(data))
		}
		parts = append(parts, part)
	}
}
