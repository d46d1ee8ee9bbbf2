// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package tokens

import (
	"context"

	"github.com/stacklok/wopibroker/pkg/credentials"
	"github.com/stacklok/wopibroker/pkg/discovery"
	"github.com/stacklok/wopibroker/pkg/wopi"
)

//go:generate mockgen -destination=mocks/mock_collaborators.go -package=mocks -source=collaborators.go FileResolver,ShareManager,PermissionManager,EventDispatcher,URLGenerator,CredentialProvisioner,URLSourcer

// Share permission bits as reported by the host.
const (
	PermissionRead   = 1
	PermissionUpdate = 2
)

// Node is a file as seen from a user's folder.
type Node struct {
	ID       int64  `json:"id"`
	OwnerUID string `json:"ownerUid,omitempty"`
	MimeType string `json:"mimeType,omitempty"`

	Readable  bool `json:"readable"`
	Updatable bool `json:"updatable"`

	// DownloadHidden is true when any storage wrapper of the node disables download.
	DownloadHidden bool `json:"downloadHidden"`

	// Authenticated is true when the mount requires a secondary session credential.
	Authenticated bool `json:"authenticated"`
}

// Share is a public link share.
type Share struct {
	Token        string `json:"token"`
	Owner        string `json:"owner"`
	Permissions  int    `json:"permissions"`
	HideDownload bool   `json:"hideDownload"`
}

// CanRead reports whether the share grants read access.
func (s *Share) CanRead() bool { return s.Permissions&PermissionRead != 0 }

// CanUpdate reports whether the share grants write access.
func (s *Share) CanUpdate() bool { return s.Permissions&PermissionUpdate != 0 }

// FileResolver resolves a file id inside a user's folder. An empty slice
// means the file does not exist there.
type FileResolver interface {
	NodesByID(ctx context.Context, uid string, fileID int64) ([]Node, error)
}

// ShareManager looks up public shares.
type ShareManager interface {
	ShareByToken(ctx context.Context, token string) (*Share, error)
}

// PermissionManager answers policy questions about accounts.
type PermissionManager interface {
	UserCanEdit(ctx context.Context, uid string) (bool, error)
	IsEnabledForUser(ctx context.Context, uid string) (bool, error)
}

// EventDispatcher notifies audit collaborators.
type EventDispatcher interface {
	BeforeNodeRead(ctx context.Context, node Node) error
}

// URLGenerator builds absolute URLs on the host.
type URLGenerator interface {
	AbsoluteURL(path string) string
}

// CredentialProvisioner mints the secondary session credential for a token.
type CredentialProvisioner interface {
	ProvideCredentials(ctx context.Context, passphrase string, token *wopi.Token, login *credentials.Login) error
}

// URLSourcer maps a mimetype to an editor action URL.
type URLSourcer interface {
	URLSource(ctx context.Context, mime string) (discovery.URLSource, error)
}
