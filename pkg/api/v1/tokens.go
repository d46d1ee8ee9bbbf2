// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package v1

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/stacklok/wopibroker/pkg/api/errors"
	"github.com/stacklok/wopibroker/pkg/auth"
	"github.com/stacklok/wopibroker/pkg/credentials"
	"github.com/stacklok/wopibroker/pkg/logger"
	"github.com/stacklok/wopibroker/pkg/statecodec"
	"github.com/stacklok/wopibroker/pkg/tokens"
	"github.com/stacklok/wopibroker/pkg/wopi"
)

// TokenRoutes defines the routes that issue and rename access tokens.
type TokenRoutes struct {
	manager *tokens.Manager
	state   *statecodec.Service
	logins  credentials.LoginStore

	trustForwardedProto bool
}

// TokenRouter creates a router for the token API. logins may be nil, in
// which case no session credential is bound to the browser passphrase.
func TokenRouter(
	manager *tokens.Manager, state *statecodec.Service, logins credentials.LoginStore, trustForwardedProto bool,
) http.Handler {
	routes := &TokenRoutes{
		manager:             manager,
		state:               state,
		logins:              logins,
		trustForwardedProto: trustForwardedProto,
	}

	r := chi.NewRouter()
	r.Post("/", apierrors.ErrorHandler(routes.issueToken))
	r.Post("/template", apierrors.ErrorHandler(routes.issueTemplateToken))
	r.With(auth.RequireIdentity).Post("/save-as", apierrors.ErrorHandler(routes.issueSaveAsToken))
	r.Put("/{token}/guest-name", apierrors.ErrorHandler(routes.updateGuestName))
	return r
}

type issueTokenRequest struct {
	FileRef    string `json:"fileRef"`
	ShareToken string `json:"shareToken,omitempty"`
	GuestName  string `json:"guestName,omitempty"`
	Direct     bool   `json:"direct,omitempty"`
}

type tokenResponse struct {
	Token    *wopi.Token          `json:"token"`
	Document *statecodec.Document `json:"document,omitempty"`
}

func (t *TokenRoutes) issueToken(w http.ResponseWriter, r *http.Request) error {
	var req issueTokenRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}

	ctx := r.Context()
	caller := auth.SubjectFromContext(ctx)

	tok, err := t.manager.Issue(ctx, tokens.IssueRequest{
		FileRef:    req.FileRef,
		ShareToken: req.ShareToken,
		UserID:     caller,
		GuestName:  req.GuestName,
		Direct:     req.Direct,
	})
	if err != nil {
		return err
	}
	return t.respond(w, r, tok, caller)
}

type saveAsTokenRequest struct {
	AccessToken string `json:"accessToken"`
	FileRef     string `json:"fileRef"`
}

func (t *TokenRoutes) issueSaveAsToken(w http.ResponseWriter, r *http.Request) error {
	var req saveAsTokenRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}

	ctx := r.Context()
	caller := auth.SubjectFromContext(ctx)

	tok, err := t.manager.IssueSaveAs(ctx, tokens.SaveAsRequest{
		AccessToken: req.AccessToken,
		FileRef:     req.FileRef,
		UserID:      caller,
	})
	if err != nil {
		return err
	}
	return t.respond(w, r, tok, caller)
}

type templateTokenRequest struct {
	TemplateID   int64  `json:"templateId"`
	TargetFileID int64  `json:"targetFileId"`
	ShareToken   string `json:"shareToken,omitempty"`
	Direct       bool   `json:"direct,omitempty"`
}

func (t *TokenRoutes) issueTemplateToken(w http.ResponseWriter, r *http.Request) error {
	var req templateTokenRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}

	ctx := r.Context()
	caller := auth.SubjectFromContext(ctx)

	tok, err := t.manager.GenerateForTemplate(ctx, tokens.TemplateRequest{
		TemplateID:   req.TemplateID,
		TargetFileID: req.TargetFileID,
		UserID:       caller,
		ShareToken:   req.ShareToken,
		Direct:       req.Direct,
	})
	if err != nil {
		return err
	}
	return t.respond(w, r, tok, caller)
}

func (t *TokenRoutes) respond(w http.ResponseWriter, r *http.Request, tok *wopi.Token, caller string) error {
	doc, err := t.document(r.Context(), w, r, tok, caller)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, tokenResponse{Token: tok, Document: doc})
	return nil
}

type guestNameRequest struct {
	Name string `json:"name"`
}

func (t *TokenRoutes) updateGuestName(w http.ResponseWriter, r *http.Request) error {
	var req guestNameRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}

	tok, err := t.manager.UpdateGuestName(r.Context(), chi.URLParam(r, "token"), req.Name)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: tok})
	return nil
}

// document builds the editor state for tok. The caller's login is looked up
// only when the file's mount needs a session credential bound to the browser
// passphrase.
func (t *TokenRoutes) document(
	ctx context.Context, w http.ResponseWriter, r *http.Request, tok *wopi.Token, caller string,
) (*statecodec.Document, error) {
	if t.state == nil {
		return nil, nil
	}
	var login *credentials.Login
	if tok.SessionCredential {
		login = t.login(ctx, tok.EditorUID, caller)
	}
	transport := statecodec.NewHTTPTransport(w, r)
	transport.TrustForwardedProto = t.trustForwardedProto
	return t.state.ProvideDocument(ctx, transport, tok, login, login != nil)
}

// login returns the login of caller when caller is the editor of the token.
func (t *TokenRoutes) login(ctx context.Context, editor, caller string) *credentials.Login {
	if caller == "" || caller != editor || t.logins == nil {
		return nil
	}
	login, err := t.logins.LoginCredentials(ctx, caller)
	if err != nil {
		logger.Warnw("failed to load login credentials", "uid", caller, "error", err)
		return nil
	}
	return login
}
