// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package networking

import (
	"errors"
	"fmt"
)

// HTTPError is a non-200 response from the editor or the host API.
type HTTPError struct {
	StatusCode int
	URL        string
	// Message is a bounded preview of the response body.
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s returned %d: %s", e.URL, e.StatusCode, e.Message)
}

// NewHTTPError returns an *HTTPError.
func NewHTTPError(statusCode int, url, message string) error {
	return &HTTPError{StatusCode: statusCode, URL: url, Message: message}
}

// IsHTTPError reports whether err wraps an *HTTPError with statusCode, or
// any *HTTPError when statusCode is 0.
func IsHTTPError(err error, statusCode int) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && (statusCode == 0 || httpErr.StatusCode == statusCode)
}
