// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package networking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	// DefaultMaxResponseSize is the default maximum response body size (1MB).
	DefaultMaxResponseSize = 1024 * 1024

	// DefaultErrorPreviewSize is the maximum size of error body preview in HTTPError.
	DefaultErrorPreviewSize = 1024

	// ContentTypeJSON is the JSON content type.
	ContentTypeJSON = "application/json"
)

// FetchResult contains the result of a successful fetch operation.
type FetchResult[T any] struct {
	// Data is the parsed response body.
	Data T

	// StatusCode is the HTTP status code of the response.
	StatusCode int

	// Headers are the response headers.
	Headers http.Header

	// ContentType is the Content-Type header value.
	ContentType string
}

// FetchOption configures a fetch request.
type FetchOption func(*fetchOptions)

type fetchOptions struct {
	method                    string
	headers                   http.Header
	body                      io.Reader
	bodyErr                   error
	maxResponseSize           int64
	skipContentTypeValidation bool
}

func newFetchOptions() *fetchOptions {
	return &fetchOptions{
		method:          http.MethodGet,
		headers:         make(http.Header),
		maxResponseSize: DefaultMaxResponseSize,
	}
}

// WithMethod sets the HTTP method for the request.
func WithMethod(method string) FetchOption {
	return func(opts *fetchOptions) {
		opts.method = method
	}
}

// WithHeader adds a single header to the request.
func WithHeader(key, value string) FetchOption {
	return func(opts *fetchOptions) {
		opts.headers.Set(key, value)
	}
}

// WithBody sets the request body.
func WithBody(body io.Reader) FetchOption {
	return func(opts *fetchOptions) {
		opts.body = body
	}
}

// WithJSONBody marshals v as the request body and sets the Content-Type.
func WithJSONBody(v any) FetchOption {
	return func(opts *fetchOptions) {
		data, err := json.Marshal(v)
		if err != nil {
			opts.bodyErr = fmt.Errorf("failed to encode request body: %w", err)
			return
		}
		opts.body = bytes.NewReader(data)
		opts.headers.Set("Content-Type", ContentTypeJSON)
	}
}

// WithMaxResponseSize sets the maximum response body size.
// If not set, DefaultMaxResponseSize (1MB) is used.
func WithMaxResponseSize(size int64) FetchOption {
	return func(opts *fetchOptions) {
		opts.maxResponseSize = size
	}
}

// WithoutContentTypeValidation disables Content-Type validation.
// By default, FetchJSON validates that the response Content-Type is application/json.
func WithoutContentTypeValidation() FetchOption {
	return func(opts *fetchOptions) {
		opts.skipContentTypeValidation = true
	}
}

// Fetch performs an HTTP request and returns the raw response body.
// Any status other than 200 yields an HTTPError carrying a body preview.
func Fetch(
	ctx context.Context,
	client HTTPClient,
	requestURL string,
	opts ...FetchOption,
) (*FetchResult[[]byte], error) {
	options := newFetchOptions()
	for _, opt := range opts {
		opt(options)
	}
	return fetch(ctx, client, requestURL, options)
}

func fetch(ctx context.Context, client HTTPClient, requestURL string, options *fetchOptions) (*FetchResult[[]byte], error) {
	if options.bodyErr != nil {
		return nil, options.bodyErr
	}

	req, err := http.NewRequestWithContext(ctx, options.method, requestURL, options.body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for key, values := range options.headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, options.maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		bodyPreview := string(body)
		if len(bodyPreview) > DefaultErrorPreviewSize {
			bodyPreview = bodyPreview[:DefaultErrorPreviewSize]
		}
		return nil, NewHTTPError(resp.StatusCode, requestURL, bodyPreview)
	}

	return &FetchResult[[]byte]{
		Data:        body,
		StatusCode:  resp.StatusCode,
		Headers:     resp.Header,
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}

// FetchJSON performs an HTTP request and parses the JSON response body.
// It sets the Accept header to application/json by default.
func FetchJSON[T any](
	ctx context.Context,
	client HTTPClient,
	requestURL string,
	opts ...FetchOption,
) (*FetchResult[T], error) {
	options := newFetchOptions()
	for _, opt := range opts {
		opt(options)
	}
	if options.headers.Get("Accept") == "" {
		options.headers.Set("Accept", ContentTypeJSON)
	}

	raw, err := fetch(ctx, client, requestURL, options)
	if err != nil {
		return nil, err
	}

	if !options.skipContentTypeValidation {
		if !strings.Contains(strings.ToLower(raw.ContentType), ContentTypeJSON) {
			return nil, fmt.Errorf("unexpected content type: %s", raw.ContentType)
		}
	}

	var data T
	if err := json.Unmarshal(raw.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	return &FetchResult[T]{
		Data:        data,
		StatusCode:  raw.StatusCode,
		Headers:     raw.Headers,
		ContentType: raw.ContentType,
	}, nil
}
