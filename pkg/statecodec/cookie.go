// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package statecodec

import (
	"net/http"
	"strings"
)

// CookieTransport reads and writes cookies for the current request. The
// service decides cookie values and attributes; the transport only carries
// them.
type CookieTransport interface {
	// Cookie returns the value of the named request cookie.
	Cookie(name string) (string, bool)
	// SetCookie adds a cookie to the response.
	SetCookie(cookie *http.Cookie)
	// Secure reports whether the inbound connection used TLS.
	Secure() bool
}

// HTTPTransport is the net/http CookieTransport.
type HTTPTransport struct {
	w http.ResponseWriter
	r *http.Request

	// TrustForwardedProto honours X-Forwarded-Proto from a reverse proxy.
	TrustForwardedProto bool
}

// NewHTTPTransport wraps a request/response pair.
func NewHTTPTransport(w http.ResponseWriter, r *http.Request) *HTTPTransport {
	return &HTTPTransport{w: w, r: r}
}

// Cookie implements CookieTransport.
func (t *HTTPTransport) Cookie(name string) (string, bool) {
	c, err := t.r.Cookie(name)
	if err != nil {
		return "", false
	}
	return c.Value, true
}

// SetCookie implements CookieTransport.
func (t *HTTPTransport) SetCookie(cookie *http.Cookie) {
	http.SetCookie(t.w, cookie)
}

// Secure implements CookieTransport.
func (t *HTTPTransport) Secure() bool {
	if t.r.TLS != nil {
		return true
	}
	return t.TrustForwardedProto && strings.EqualFold(t.r.Header.Get("X-Forwarded-Proto"), "https")
}
