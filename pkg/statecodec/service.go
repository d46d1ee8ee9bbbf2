// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package statecodec

import (
	"context"
	"encoding/base64"
	"errors"
	"maps"
	"net/http"
	"time"

	"github.com/stacklok/wopibroker/pkg/credentials"
	"github.com/stacklok/wopibroker/pkg/crypto"
	apperrors "github.com/stacklok/wopibroker/pkg/errors"
	"github.com/stacklok/wopibroker/pkg/logger"
	"github.com/stacklok/wopibroker/pkg/wopi"
)

const (
	// CookieName is the passphrase cookie.
	CookieName = "wopi_passphrase"

	// PassphraseBytes is the entropy of a generated passphrase.
	PassphraseBytes = 128

	// DefaultTheme is used when no theme is configured.
	DefaultTheme = "default"
)

// Option configures a Service.
type Option func(*Service)

// WithWebRoot sets the cookie path.
func WithWebRoot(root string) Option {
	return func(s *Service) {
		if root != "" {
			s.webRoot = root
		}
	}
}

// WithTheme sets the theme handed to the editor.
func WithTheme(theme string) Option {
	return func(s *Service) {
		if theme != "" {
			s.theme = theme
		}
	}
}

// WithUIDefaults overrides editor UI defaults. Keys not given keep their
// built-in value.
func WithUIDefaults(defaults map[string]string) Option {
	return func(s *Service) {
		maps.Copy(s.uiDefaults, defaults)
	}
}

// Service provides the passphrase cookie, the state blob and the session
// credential bound to the passphrase.
type Service struct {
	codec      *Codec
	provider   credentials.Provider
	webRoot    string
	theme      string
	uiDefaults map[string]string
}

// NewService creates a Service.
func NewService(codec *Codec, provider credentials.Provider, opts ...Option) (*Service, error) {
	if codec == nil {
		return nil, errors.New("codec is required")
	}
	if provider == nil {
		return nil, errors.New("credential provider is required")
	}
	s := &Service{
		codec:      codec,
		provider:   provider,
		webRoot:    "/",
		theme:      DefaultTheme,
		uiDefaults: map[string]string{"UIMode": "notebookbar"},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Encode seals state into a URL safe blob.
func (s *Service) Encode(state map[string]string) (string, error) {
	return s.codec.Encode(state)
}

// Decode opens a blob produced by Encode.
func (s *Service) Decode(blob string) (map[string]string, error) {
	return s.codec.Decode(blob)
}

// Passphrase returns the browser's passphrase, generating one and setting
// the cookie when the browser has none yet.
func (s *Service) Passphrase(t CookieTransport, token *wopi.Token) (string, error) {
	if value, ok := t.Cookie(CookieName); ok && value != "" {
		return value, nil
	}
	return s.newPassphrase(t, token)
}

// newPassphrase generates a passphrase and sets it as the browser cookie.
func (s *Service) newPassphrase(t CookieTransport, token *wopi.Token) (string, error) {
	raw, err := crypto.RandomBytes(PassphraseBytes)
	if err != nil {
		return "", apperrors.NewInternalError("failed to generate passphrase", err)
	}
	passphrase := base64.RawURLEncoding.EncodeToString(raw)

	t.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    passphrase,
		Path:     s.webRoot,
		Expires:  token.Expiry,
		Secure:   t.Secure(),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return passphrase, nil
}

// ProvideCredentials mints or refreshes the session credential for
// passphrase, bound to login and owned by token.
func (s *Service) ProvideCredentials(ctx context.Context, passphrase string, token *wopi.Token, login *credentials.Login) error {
	_, err := credentials.Provision(ctx, s.provider, passphrase, token, login)
	return err
}

// Summary is the part of a token exposed to the editor frontend.
type Summary struct {
	Token            string         `json:"token"`
	FileID           int64          `json:"fileId"`
	TokenType        wopi.TokenType `json:"tokenType"`
	CanWrite         bool           `json:"canWrite"`
	HideDownload     bool           `json:"hideDownload"`
	GuestDisplayName string         `json:"guestDisplayName,omitempty"`
	ServerHost       string         `json:"serverHost"`
	Direct           bool           `json:"direct"`
	Expiry           time.Time      `json:"expiry"`
}

// Document is the initial state handed to the editor frontend.
type Document struct {
	Wopi       Summary           `json:"wopi"`
	Theme      string            `json:"theme"`
	UIDefaults map[string]string `json:"uiDefaults"`
	State      string            `json:"state"`
}

// ProvideDocument builds the initial editor state for token. On mounts
// that require a session credential it binds one to the browser's
// passphrase; failing to do so is logged and the document is still
// provided. When the passphrase is already bound to another login the
// browser gets a fresh passphrase.
func (s *Service) ProvideDocument(
	ctx context.Context, t CookieTransport, token *wopi.Token, login *credentials.Login, authenticated bool,
) (*Document, error) {
	if token == nil {
		return nil, apperrors.NewInvalidArgumentError("token is required", nil)
	}

	passphrase, err := s.Passphrase(t, token)
	if err != nil {
		return nil, err
	}

	if authenticated {
		err := s.ProvideCredentials(ctx, passphrase, token, login)
		if errors.Is(err, credentials.ErrLoginMismatch) {
			logger.Infow("browser passphrase belongs to another login, rotating", "file_id", token.FileID)
			if passphrase, err = s.newPassphrase(t, token); err != nil {
				return nil, err
			}
			err = s.ProvideCredentials(ctx, passphrase, token, login)
		}
		if err != nil {
			logger.Errorw("failed to provision passphrase credential", "file_id", token.FileID, "error", err)
		}
	}

	state, err := s.codec.Encode(map[string]string{StateKeyPassphrase: passphrase})
	if err != nil {
		return nil, err
	}

	return &Document{
		Wopi: Summary{
			Token:            token.Token,
			FileID:           token.FileID,
			TokenType:        token.TokenType,
			CanWrite:         token.CanWrite,
			HideDownload:     token.HideDownload,
			GuestDisplayName: token.GuestDisplayName,
			ServerHost:       token.ServerHost,
			Direct:           token.Direct,
			Expiry:           token.Expiry,
		},
		Theme:      s.theme,
		UIDefaults: maps.Clone(s.uiDefaults),
		State:      state,
	}, nil
}

// Logout expires the passphrase cookie and revokes the credential bound to
// it. A browser without the cookie, or a passphrase without credential, is
// not an error.
func (s *Service) Logout(ctx context.Context, t CookieTransport) error {
	passphrase, ok := t.Cookie(CookieName)
	if !ok {
		return nil
	}

	t.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     s.webRoot,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		Secure:   t.Secure(),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	if passphrase == "" {
		return nil
	}

	cred, err := s.provider.GetByPassphrase(ctx, passphrase)
	if errors.Is(err, credentials.ErrNotFound) {
		logger.Infow("no passphrase credential to invalidate on logout")
		return nil
	}
	if err != nil {
		return apperrors.NewInternalError("failed to look up passphrase credential", err)
	}

	if err := s.provider.Invalidate(ctx, cred.OwnerID, cred.ID); err != nil {
		if errors.Is(err, credentials.ErrNotFound) {
			logger.Infow("passphrase credential already invalidated", "credential_id", cred.ID)
			return nil
		}
		return apperrors.NewInternalError("failed to invalidate passphrase credential", err)
	}
	return nil
}
