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
	"net/http"

	"rivaas.dev/pipeline/message"
)

// CookieToHTTP converts a response cookie.
func CookieToHTTP(c message.Cookie) *http.Cookie {
	hc := &http.Cookie{
		Name:     c.Name,
		Value:    c.Value,
		Path:     c.Path,
		Domain:   c.Domain,
		Secure:   c.Secure,
		HttpOnly: c.HTTPOnly,
		Expires:  c.Expires,
		MaxAge:   c.MaxAge,
	}
	return hc
}

// ResponseHeaders flattens resp's headers, content type and cookies into
// net/http form.
func ResponseHeaders(resp message.Response) http.Header {
	h := make(http.Header, resp.Headers.Len()+2)
	for _, name := range resp.Headers.Names() {
		for _, v := range resp.Headers.Values(name) {
			h.Add(name, v)
		}
	}
	if resp.ContentType != nil {
		h.Set("Content-Type", resp.ContentType.String())
	}
	for _, c := range resp.Cookies {
		if v := CookieToHTTP(c).String(); v != "" {
			h.Add("Set-Cookie", v)
		}
	}
	return h
}

// WriteResponse writes resp to w. A body that [message.Response.BodyBytes]
// cannot encode is answered with a bare 500 and the error is returned.
func WriteResponse(w http.ResponseWriter, resp message.Response) error {
	body, err := resp.BodyBytes()
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return err
	}

	dst := w.Header()
	for name, values := range ResponseHeaders(resp) {
		dst[name] = values
	}

	status := resp.Status.Code()
	if !resp.Status.Valid() {
		status = http.StatusInternalServerError
	}
	w.WriteHeader(status)

	if len(body) == 0 {
		return nil
	}
	_, err = w.Write(body)
	return err
}
