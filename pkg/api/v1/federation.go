// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package v1

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/stacklok/wopibroker/pkg/api/errors"
	"github.com/stacklok/wopibroker/pkg/auth"
	apperrors "github.com/stacklok/wopibroker/pkg/errors"
	"github.com/stacklok/wopibroker/pkg/storage"
	"github.com/stacklok/wopibroker/pkg/tokens"
	"github.com/stacklok/wopibroker/pkg/wopi"
)

// FederationRoutes defines the routes used in a federated editing
// handshake between two servers.
type FederationRoutes struct {
	manager *tokens.Manager
	store   storage.TokenStore
}

// FederationRouter creates a router for the federation API.
func FederationRouter(manager *tokens.Manager, store storage.TokenStore) http.Handler {
	routes := &FederationRoutes{manager: manager, store: store}

	r := chi.NewRouter()
	r.Post("/initiator", apierrors.ErrorHandler(routes.createInitiator))
	r.Post("/upgrade", apierrors.ErrorHandler(routes.upgrade))
	r.Post("/direct", apierrors.ErrorHandler(routes.upgradeDirect))
	r.Post("/extend", apierrors.ErrorHandler(routes.extend))
	return r
}

type initiatorRequest struct {
	SourceServer string `json:"sourceServer"`
	FileRef      string `json:"fileRef,omitempty"`
	ShareToken   string `json:"shareToken,omitempty"`
	Direct       bool   `json:"direct,omitempty"`
}

func (f *FederationRoutes) createInitiator(w http.ResponseWriter, r *http.Request) error {
	var req initiatorRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}

	tok, err := f.manager.NewInitiatorToken(r.Context(), tokens.InitiatorRequest{
		SourceServer: req.SourceServer,
		FileRef:      req.FileRef,
		ShareToken:   req.ShareToken,
		Direct:       req.Direct,
		UserID:       auth.SubjectFromContext(r.Context()),
	})
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, tokenResponse{Token: tok})
	return nil
}

type upgradeRequest struct {
	AccessToken       string      `json:"accessToken"`
	Remote            *wopi.Token `json:"remote"`
	ShareToken        string      `json:"shareToken,omitempty"`
	RemoteServer      string      `json:"remoteServer"`
	RemoteServerToken string      `json:"remoteServerToken"`
}

func (f *FederationRoutes) upgrade(w http.ResponseWriter, r *http.Request) error {
	var req upgradeRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}
	if req.Remote == nil {
		return apperrors.NewInvalidArgumentError("remote token is required", nil)
	}

	local, err := f.store.GetByToken(r.Context(), req.AccessToken)
	if err != nil {
		return err
	}
	tok, err := f.manager.UpgradeToRemote(r.Context(), local, req.Remote, req.ShareToken, req.RemoteServer, req.RemoteServerToken)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: tok})
	return nil
}

type initiatorPairRequest struct {
	AccessToken    string `json:"accessToken"`
	InitiatorHost  string `json:"initiatorHost"`
	InitiatorToken string `json:"initiatorToken"`
}

func (f *FederationRoutes) upgradeDirect(w http.ResponseWriter, r *http.Request) error {
	var req initiatorPairRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}

	local, err := f.store.GetByToken(r.Context(), req.AccessToken)
	if err != nil {
		return err
	}
	direct := wopi.Direct{InitiatorHost: req.InitiatorHost, InitiatorToken: req.InitiatorToken}
	tok, err := f.manager.UpgradeFromDirectInitiator(r.Context(), direct, local)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: tok})
	return nil
}

func (f *FederationRoutes) extend(w http.ResponseWriter, r *http.Request) error {
	var req initiatorPairRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}

	local, err := f.store.GetByToken(r.Context(), req.AccessToken)
	if err != nil {
		return err
	}
	tok, err := f.manager.ExtendWithInitiatorUserToken(r.Context(), local, req.InitiatorHost, req.InitiatorToken)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: tok})
	return nil
}
