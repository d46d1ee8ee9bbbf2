// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package discovery

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/stacklok/wopibroker/pkg/logger"
	"github.com/stacklok/wopibroker/pkg/networking"
)

// ColdStartDetector reports whether the editor behind a discovery URL is a
// managed instance that is still starting.
type ColdStartDetector interface {
	IsStarting(ctx context.Context, discoveryURL string) bool
}

// NeverStarting is a ColdStartDetector for editors that are always up.
type NeverStarting struct{}

// IsStarting always returns false.
func (NeverStarting) IsStarting(context.Context, string) bool { return false }

// proxyStatus is the body served by a managed editor's status endpoint.
type proxyStatus struct {
	Status string `json:"status"`
}

// ProxyStatusDetector polls a managed editor's status endpoint.
type ProxyStatusDetector struct {
	statusURL string
	client    networking.HTTPClient
}

// NewProxyStatusDetector creates a detector for statusURL.
func NewProxyStatusDetector(statusURL string, disableCertificateVerification bool) (*ProxyStatusDetector, error) {
	client, err := networking.NewHttpClientBuilder().
		WithTimeout(5 * time.Second).
		WithPrivateIPs(true).
		WithHTTP(true).
		WithInsecureSkipVerify(disableCertificateVerification).
		Build()
	if err != nil {
		return nil, err
	}
	return &ProxyStatusDetector{statusURL: statusURL, client: client}, nil
}

// IsStarting reports true while the status endpoint says the instance is
// starting or restarting. Probe failures count as not starting.
func (d *ProxyStatusDetector) IsStarting(ctx context.Context, _ string) bool {
	res, err := networking.FetchJSON[proxyStatus](ctx, d.client, d.statusURL,
		networking.WithoutContentTypeValidation())
	if err != nil {
		if !networking.IsHTTPError(err, http.StatusNotFound) {
			logger.Debugw("editor status probe failed", "url", d.statusURL, "error", err)
		}
		return false
	}
	switch strings.ToLower(res.Data.Status) {
	case "starting", "restarting":
		return true
	default:
		return false
	}
}
