// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package networking builds outbound HTTP clients and provides small fetch
// helpers shared by the discovery and host API clients.
package networking

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"syscall"
	"time"
)

// HttpTimeout is the default timeout for outgoing HTTP requests
const HttpTimeout = 30 * time.Second

// HTTPClient is the subset of *http.Client used by the fetch helpers.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Dialer control function for validating addresses prior to connection
func protectedDialerControl(_, address string, _ syscall.RawConn) error {
	return AddressReferencesPrivateIp(address)
}

// ValidatingTransport is for validating URLs prior to request
type ValidatingTransport struct {
	Transport http.RoundTripper

	// AllowHTTP permits plain http:// URLs.
	AllowHTTP bool
}

// RoundTrip validates the request URL prior to forwarding
func (t *ValidatingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	parsedUrl, err := url.Parse(req.URL.String())
	if err != nil {
		return nil, fmt.Errorf("the supplied URL %s is malformed", req.URL.String())
	}

	switch parsedUrl.Scheme {
	case "https":
	case "http":
		if !t.AllowHTTP {
			return nil, fmt.Errorf("the supplied URL %s is not HTTPS scheme", req.URL.String())
		}
	default:
		return nil, fmt.Errorf("the supplied URL %s has unsupported scheme %q", req.URL.String(), parsedUrl.Scheme)
	}

	return t.Transport.RoundTrip(req)
}

// authenticatedTransport adds Bearer token authentication to HTTP requests
type authenticatedTransport struct {
	transport http.RoundTripper
	token     string
}

// newAuthenticatedTransport creates a new authenticatedTransport with token from file
func newAuthenticatedTransport(transport http.RoundTripper, tokenFile string) (*authenticatedTransport, error) {
	token, err := os.ReadFile(tokenFile) // #nosec G304 - tokenFile path comes from operator configuration
	if err != nil {
		return nil, fmt.Errorf("failed to read auth token file: %w", err)
	}

	tokenStr := strings.TrimSpace(string(token))
	if tokenStr == "" {
		return nil, fmt.Errorf("auth token file is empty")
	}

	return &authenticatedTransport{
		transport: transport,
		token:     tokenStr,
	}, nil
}

// RoundTrip adds the Authorization header and forwards the request
func (t *authenticatedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Clone the request to avoid modifying the original
	newReq := req.Clone(req.Context())
	newReq.Header.Set("Authorization", "Bearer "+t.token)

	return t.transport.RoundTrip(newReq)
}

// HttpClientBuilder provides a fluent interface for building HTTP clients
type HttpClientBuilder struct {
	clientTimeout         time.Duration
	tlsHandshakeTimeout   time.Duration
	responseHeaderTimeout time.Duration
	caCertPath            string
	authTokenFile         string
	allowPrivate          bool
	allowHTTP             bool
	insecureSkipVerify    bool
}

// NewHttpClientBuilder returns a new HttpClientBuilder
func NewHttpClientBuilder() *HttpClientBuilder {
	return &HttpClientBuilder{
		clientTimeout:         HttpTimeout,
		tlsHandshakeTimeout:   10 * time.Second,
		responseHeaderTimeout: 10 * time.Second,
	}
}

// WithTimeout sets the overall request timeout. The response header
// timeout is raised to match so slow-starting upstreams are not cut short.
func (b *HttpClientBuilder) WithTimeout(timeout time.Duration) *HttpClientBuilder {
	b.clientTimeout = timeout
	if timeout > b.responseHeaderTimeout {
		b.responseHeaderTimeout = timeout
	}
	return b
}

// WithCABundle sets the CA certificate bundle path
func (b *HttpClientBuilder) WithCABundle(path string) *HttpClientBuilder {
	b.caCertPath = path
	return b
}

// WithTokenFromFile sets the auth token file path
func (b *HttpClientBuilder) WithTokenFromFile(path string) *HttpClientBuilder {
	b.authTokenFile = path
	return b
}

// WithPrivateIPs allows connections to private IP addresses
func (b *HttpClientBuilder) WithPrivateIPs(allow bool) *HttpClientBuilder {
	b.allowPrivate = allow
	return b
}

// WithHTTP allows plain http:// URLs
func (b *HttpClientBuilder) WithHTTP(allow bool) *HttpClientBuilder {
	b.allowHTTP = allow
	return b
}

// WithInsecureSkipVerify disables TLS certificate verification
func (b *HttpClientBuilder) WithInsecureSkipVerify(skip bool) *HttpClientBuilder {
	b.insecureSkipVerify = skip
	return b
}

// Build creates the configured HTTP client
func (b *HttpClientBuilder) Build() (*http.Client, error) {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		TLSHandshakeTimeout:   b.tlsHandshakeTimeout,
		ResponseHeaderTimeout: b.responseHeaderTimeout,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	}

	if !b.allowPrivate {
		transport.DialContext = (&net.Dialer{
			Control: protectedDialerControl,
		}).DialContext
	}

	if b.caCertPath != "" {
		caCert, err := os.ReadFile(b.caCertPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA certificate bundle: %w", err)
		}

		caCertPool := x509.NewCertPool()
		if !caCertPool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("failed to parse CA certificate bundle")
		}
		transport.TLSClientConfig.RootCAs = caCertPool
	}

	if b.insecureSkipVerify {
		transport.TLSClientConfig.InsecureSkipVerify = true // #nosec G402 - explicit operator opt-in
	}

	var clientTransport http.RoundTripper = &ValidatingTransport{
		Transport: transport,
		AllowHTTP: b.allowHTTP,
	}

	if b.authTokenFile != "" {
		transportWithToken, err := newAuthenticatedTransport(clientTransport, b.authTokenFile)
		if err != nil {
			return nil, fmt.Errorf("failed to create auth transport: %w", err)
		}
		clientTransport = transportWithToken
	}

	return &http.Client{
		Transport: clientTransport,
		Timeout:   b.clientTimeout,
	}, nil
}
