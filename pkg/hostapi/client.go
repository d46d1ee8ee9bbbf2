// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package hostapi is the JSON client of the host application that owns the
// files, shares, accounts and logins the broker issues tokens for.
package hostapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	neturl "net/url"
	"strconv"
	"strings"
	"time"

	"github.com/stacklok/wopibroker/pkg/credentials"
	apperrors "github.com/stacklok/wopibroker/pkg/errors"
	"github.com/stacklok/wopibroker/pkg/networking"
	"github.com/stacklok/wopibroker/pkg/tokens"
)

// Config configures a Client.
type Config struct {
	// URL is the base URL of the host API.
	URL string
	// PublicURL is the host base URL as seen by the editor. Defaults to the
	// scheme and host of URL.
	PublicURL string
	// TokenFile holds the bearer token presented to the host API.
	TokenFile string
	Timeout   time.Duration
	// AllowInsecure permits plain HTTP.
	AllowInsecure bool
}

// Client talks to the host API. It implements the broker collaborators and
// credentials.LoginStore.
type Client struct {
	client    networking.HTTPClient
	baseURL   string
	publicURL string
}

var (
	_ tokens.FileResolver      = (*Client)(nil)
	_ tokens.ShareManager      = (*Client)(nil)
	_ tokens.PermissionManager = (*Client)(nil)
	_ tokens.EventDispatcher   = (*Client)(nil)
	_ tokens.URLGenerator      = (*Client)(nil)
	_ credentials.LoginStore   = (*Client)(nil)
)

// NewClient builds a Client. The host usually lives on a private network,
// so private addresses are allowed.
func NewClient(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("host API URL is required")
	}

	builder := networking.NewHttpClientBuilder().
		WithPrivateIPs(true).
		WithHTTP(cfg.AllowInsecure)
	if cfg.Timeout > 0 {
		builder = builder.WithTimeout(cfg.Timeout)
	}
	if cfg.TokenFile != "" {
		builder = builder.WithTokenFromFile(cfg.TokenFile)
	}
	httpClient, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build host API client: %w", err)
	}
	return NewClientWithHTTPClient(httpClient, cfg.URL, cfg.PublicURL)
}

// NewClientWithHTTPClient builds a Client on top of an existing HTTP client.
func NewClientWithHTTPClient(client networking.HTTPClient, baseURL, publicURL string) (*Client, error) {
	base, err := neturl.Parse(baseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid host API URL %q", baseURL)
	}
	if publicURL == "" {
		publicURL = base.Scheme + "://" + base.Host + "/"
	}
	return &Client{
		client:    client,
		baseURL:   strings.TrimRight(baseURL, "/"),
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

type nodesResponse struct {
	Nodes []tokens.Node `json:"nodes"`
}

// NodesByID lists the nodes of fileID visible in uid's folder, or anywhere
// on the host when uid is empty.
func (c *Client) NodesByID(ctx context.Context, uid string, fileID int64) ([]tokens.Node, error) {
	u := c.baseURL + "/files/" + strconv.FormatInt(fileID, 10) + "/nodes"
	if uid != "" {
		u += "?uid=" + neturl.QueryEscape(uid)
	}
	res, err := networking.FetchJSON[nodesResponse](ctx, c.client, u)
	if err != nil {
		if networking.IsHTTPError(err, http.StatusNotFound) {
			return nil, nil
		}
		return nil, hostError("resolve file", err)
	}
	return res.Data.Nodes, nil
}

// ShareByToken returns the public share behind token.
func (c *Client) ShareByToken(ctx context.Context, token string) (*tokens.Share, error) {
	res, err := networking.FetchJSON[tokens.Share](ctx, c.client, c.baseURL+"/shares/"+neturl.PathEscape(token))
	if err != nil {
		return nil, hostError("look up share", err)
	}
	return &res.Data, nil
}

type permissionsResponse struct {
	CanEdit bool `json:"canEdit"`
	Enabled bool `json:"enabled"`
}

func (c *Client) permissions(ctx context.Context, uid string) (permissionsResponse, error) {
	res, err := networking.FetchJSON[permissionsResponse](ctx, c.client, c.baseURL+"/users/"+neturl.PathEscape(uid)+"/permissions")
	if err != nil {
		return permissionsResponse{}, hostError("load permissions", err)
	}
	return res.Data, nil
}

// UserCanEdit reports whether uid may edit documents at all.
func (c *Client) UserCanEdit(ctx context.Context, uid string) (bool, error) {
	p, err := c.permissions(ctx, uid)
	return p.CanEdit, err
}

// IsEnabledForUser reports whether uid is entitled to use the editor.
func (c *Client) IsEnabledForUser(ctx context.Context, uid string) (bool, error) {
	p, err := c.permissions(ctx, uid)
	if apperrors.IsNotFound(err) {
		return false, nil
	}
	return p.Enabled, err
}

// BeforeNodeRead notifies the host that node is about to be read.
func (c *Client) BeforeNodeRead(ctx context.Context, node tokens.Node) error {
	_, err := networking.Fetch(ctx, c.client, c.baseURL+"/events/before-node-read",
		networking.WithMethod(http.MethodPost),
		networking.WithJSONBody(map[string]any{"node": node}),
	)
	if err != nil {
		return hostError("dispatch read event", err)
	}
	return nil
}

// AbsoluteURL resolves path against the public host URL.
func (c *Client) AbsoluteURL(path string) string {
	return c.publicURL + "/" + strings.TrimLeft(path, "/")
}

// LoginCredentials returns the login of uid.
func (c *Client) LoginCredentials(ctx context.Context, uid string) (*credentials.Login, error) {
	res, err := networking.FetchJSON[credentials.Login](ctx, c.client, c.baseURL+"/users/"+neturl.PathEscape(uid)+"/login")
	if err != nil {
		return nil, hostError("load login credentials", err)
	}
	return &res.Data, nil
}

func hostError(op string, err error) error {
	var httpErr *networking.HTTPError
	if errors.As(err, &httpErr) {
		switch httpErr.StatusCode {
		case http.StatusNotFound:
			return apperrors.NewNotFoundError(fmt.Sprintf("host API: %s: not found", op), err)
		case http.StatusForbidden, http.StatusUnauthorized:
			return apperrors.NewPermissionDeniedError(fmt.Sprintf("host API: %s: denied", op), err)
		}
	}
	return fmt.Errorf("host API: failed to %s: %w", op, err)
}
