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

// Package lambdaadapter runs a [pipeline.Dispatcher] as an AWS Lambda
// function behind an API Gateway HTTP API (payload format 2.0) or a
// Lambda function URL.
//
//	func main() {
//	    lambdaadapter.Start(pipeline.MustNew(handlers))
//	}
package lambdaadapter

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"rivaas.dev/pipeline"
	"rivaas.dev/pipeline/adapter/stdhttp"
	"rivaas.dev/pipeline/message"
)

// Attribute keys added to the dispatch context.
const (
	AttrRequestID = "lambda_request_id"
	AttrSourceIP  = "lambda_source_ip"
	AttrStage     = "lambda_stage"
)

// HandlerFunc is the Lambda entry point signature.
type HandlerFunc func(ctx context.Context, event events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error)

// Handler returns a Lambda handler dispatching through d. Conversion
// failures are answered with an HTTP error response rather than a Lambda
// error, so API Gateway never sees a 502 for a bad request.
func Handler(d *pipeline.Dispatcher) HandlerFunc {
	return func(ctx context.Context, event events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		req, err := RequestFromEvent(event)
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, stdhttp.ErrUnsupportedMethod) {
				status = http.StatusNotImplemented
			}
			return events.APIGatewayV2HTTPResponse{
				StatusCode: status,
				Headers:    map[string]string{"Content-Type": "text/plain; charset=utf-8"},
				Body:       err.Error(),
			}, nil
		}

		attrs := map[string]any{
			AttrRequestID: event.RequestContext.RequestID,
			AttrSourceIP:  event.RequestContext.HTTP.SourceIP,
			AttrStage:     event.RequestContext.Stage,
		}
		c := d.Process(ctx, req, attrs)
		return ResponseToEvent(c.Response())
	}
}

// Start hands d to the Lambda runtime. It blocks forever.
func Start(d *pipeline.Dispatcher) {
	lambda.Start(Handler(d))
}

// RequestFromEvent converts an HTTP API event.
func RequestFromEvent(event events.APIGatewayV2HTTPRequest) (message.Request, error) {
	method, err := message.ParseMethod(event.RequestContext.HTTP.Method)
	if err != nil {
		return message.Request{}, fmt.Errorf("%w: %w", stdhttp.ErrUnsupportedMethod, err)
	}

	path := event.RawPath
	if path == "" {
		path = event.RequestContext.HTTP.Path
	}
	if path == "" {
		path = "/"
	}

	req := message.NewRequest(method, path)
	req.Protocol = message.HTTPS
	req.Port = 443
	if event.RequestContext.DomainName != "" {
		req.Host = event.RequestContext.DomainName
	}
	req.Query = message.ParseQueryString(event.RawQueryString)

	var headers message.Headers
	for _, name := range slices.Sorted(maps.Keys(event.Headers)) {
		headers = headers.Set(name, event.Headers[name])
	}
	req.Headers = headers
	if host := headers.Get("host"); host != "" && event.RequestContext.DomainName == "" {
		req.Host = host
	}

	for _, raw := range event.Cookies {
		name, value, ok := strings.Cut(raw, "=")
		if !ok {
			continue
		}
		req.Cookies = append(req.Cookies, message.Cookie{Name: strings.TrimSpace(name), Value: strings.TrimSpace(value)})
	}

	if ct := headers.Get("content-type"); ct != "" {
		if parsed, perr := message.ParseContentType(ct); perr == nil {
			req.ContentType = &parsed
		}
	}
	if accept := headers.Get("accept"); accept != "" {
		req.Accept = message.ParseAccept(accept)
	}

	if event.Body != "" {
		body := []byte(event.Body)
		if event.IsBase64Encoded {
			if body, err = base64.StdEncoding.DecodeString(event.Body); err != nil {
				return message.Request{}, fmt.Errorf("invalid base64 body: %w", err)
			}
		}
		req.Body = body
		req.ContentLength = int64(len(body))
		if req.ContentType != nil && req.ContentType.MediaType == "application/x-www-form-urlencoded" {
			req.Form = message.ParseQueryString(string(body))
		}
	} else if cl := headers.Get("content-length"); cl != "" {
		if n, perr := strconv.ParseInt(cl, 10, 64); perr == nil {
			req.ContentLength = n
		}
	}

	return req, nil
}

// ResponseToEvent converts resp. Bodies that are not valid UTF-8 are
// base64 encoded.
func ResponseToEvent(resp message.Response) (events.APIGatewayV2HTTPResponse, error) {
	body, err := resp.BodyBytes()
	if err != nil {
		return events.APIGatewayV2HTTPResponse{
			StatusCode: http.StatusInternalServerError,
			Body:       http.StatusText(http.StatusInternalServerError),
		}, nil
	}

	out := events.APIGatewayV2HTTPResponse{
		StatusCode: resp.Status.Code(),
		Headers:    make(map[string]string),
	}
	if !resp.Status.Valid() {
		out.StatusCode = http.StatusInternalServerError
	}

	for name, values := range stdhttp.ResponseHeaders(resp) {
		if name == "Set-Cookie" {
			out.Cookies = append(out.Cookies, values...)
			continue
		}
		out.Headers[name] = strings.Join(values, ",")
	}

	if utf8.Valid(body) {
		out.Body = string(body)
	} else {
		out.Body = base64.StdEncoding.EncodeToString(body)
		out.IsBase64Encoded = true
	}
	return out, nil
}
