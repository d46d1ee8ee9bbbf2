// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package tokens implements the WOPI token broker: issuance of per-file
// access tokens, federation upgrades between partner servers and guest name
// handling.
package tokens

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stacklok/wopibroker/pkg/credentials"
	"github.com/stacklok/wopibroker/pkg/discovery"
	apperrors "github.com/stacklok/wopibroker/pkg/errors"
	"github.com/stacklok/wopibroker/pkg/logger"
	"github.com/stacklok/wopibroker/pkg/metrics"
	"github.com/stacklok/wopibroker/pkg/storage"
	"github.com/stacklok/wopibroker/pkg/wopi"
)

// DefaultTTL is the lifetime of an issued token.
const DefaultTTL = 10 * time.Hour

// Deps are the collaborators of the broker. Credentials, Logins and Sources
// may be nil when the deployment never provisions session credentials or
// resolves editor URLs.
type Deps struct {
	Store       storage.Store
	Files       FileResolver
	Shares      ShareManager
	Permissions PermissionManager
	Events      EventDispatcher
	URLs        URLGenerator
	Credentials CredentialProvisioner
	Logins      credentials.LoginStore
	Sources     URLSourcer
}

// Option configures a Manager.
type Option func(*Manager)

// WithTTL overrides the token lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// Manager is the token broker.
type Manager struct {
	store   storage.Store
	files   FileResolver
	shares  ShareManager
	perms   PermissionManager
	events  EventDispatcher
	urls    URLGenerator
	creds   CredentialProvisioner
	logins  credentials.LoginStore
	sources URLSourcer

	ttl time.Duration
	now func() time.Time
}

// NewManager creates a token broker.
func NewManager(deps Deps, opts ...Option) (*Manager, error) {
	switch {
	case deps.Store == nil:
		return nil, errors.New("token store is required")
	case deps.Files == nil:
		return nil, errors.New("file resolver is required")
	case deps.Shares == nil:
		return nil, errors.New("share manager is required")
	case deps.Permissions == nil:
		return nil, errors.New("permission manager is required")
	case deps.Events == nil:
		return nil, errors.New("event dispatcher is required")
	case deps.URLs == nil:
		return nil, errors.New("url generator is required")
	}

	m := &Manager{
		store:   deps.Store,
		files:   deps.Files,
		shares:  deps.Shares,
		perms:   deps.Permissions,
		events:  deps.Events,
		urls:    deps.URLs,
		creds:   deps.Credentials,
		logins:  deps.Logins,
		sources: deps.Sources,
		ttl:     DefaultTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// IssueRequest describes a token issuance.
type IssueRequest struct {
	// FileRef is "<fileId>[_<instanceId>[_<version>]]".
	FileRef string

	// ShareToken selects public share access through the sharer's folder.
	ShareToken string

	// UserID is the authenticated caller, empty for anonymous access.
	// Anonymous callers must present a ShareToken.
	UserID string

	// GuestName is the raw display name picked by an anonymous guest.
	GuestName string

	Direct bool

	// Login is the caller's real login, used to provision a session
	// credential on mounts that require one. When nil it is looked up for
	// UserID only if needed.
	Login *credentials.Login
}

// Issue creates a USER or GUEST token for a file.
func (m *Manager) Issue(ctx context.Context, req IssueRequest) (*wopi.Token, error) {
	ref, err := wopi.ParseFileRef(req.FileRef)
	if err != nil {
		return nil, apperrors.NewInvalidArgumentError("invalid file reference", err)
	}

	var (
		owner, editor string
		folder        string
		updatable     bool
		hideDownload  bool
	)

	switch {
	case req.ShareToken != "":
		share, err := m.shares.ShareByToken(ctx, req.ShareToken)
		if err != nil {
			return nil, shareLookupError(err)
		}
		if !share.CanRead() {
			return nil, apperrors.NewNotFoundError("share not found", nil)
		}
		canEdit, err := m.perms.UserCanEdit(ctx, share.Owner)
		if err != nil {
			return nil, fmt.Errorf("failed to check edit permission: %w", err)
		}
		owner = share.Owner
		folder = share.Owner
		updatable = share.CanUpdate() && canEdit
		hideDownload = share.HideDownload

	case req.UserID != "":
		editor = req.UserID
		folder = editor
		nodes, err := m.files.NodesByID(ctx, folder, ref.FileID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve file: %w", err)
		}
		canEdit, err := m.perms.UserCanEdit(ctx, editor)
		if err != nil {
			return nil, fmt.Errorf("failed to check edit permission: %w", err)
		}
		updatable = anyUpdatable(nodes) && canEdit
		hideDownload = anyDownloadHidden(nodes)

	default:
		return nil, apperrors.NewPermissionDeniedError("anonymous access requires a share token", nil)
	}

	node, err := m.firstReadable(ctx, folder, ref.FileID)
	if err != nil {
		return nil, err
	}

	if owner == "" {
		owner = node.OwnerUID
		if owner == "" {
			// Group folders and similar mounts have no owner.
			owner = editor
		}
	}

	if err := m.checkEnabled(ctx, owner, editor); err != nil {
		return nil, err
	}

	if err := m.events.BeforeNodeRead(ctx, node); err != nil {
		return nil, fmt.Errorf("failed to dispatch read event: %w", err)
	}

	tok := &wopi.Token{
		FileID:       ref.FileID,
		Version:      ref.Version,
		OwnerUID:     owner,
		EditorUID:    editor,
		CanWrite:     updatable,
		HideDownload: hideDownload,
		ServerHost:   m.urls.AbsoluteURL("/"),
		TokenType:    wopi.TokenTypeUser,
		ShareToken:   req.ShareToken,
		Direct:       req.Direct,

		SessionCredential: node.Authenticated,
	}
	if editor == "" {
		tok.TokenType = wopi.TokenTypeGuest
		tok.GuestDisplayName = PrepareGuestName(req.GuestName)
	}

	if err := m.create(ctx, tok); err != nil {
		return nil, err
	}

	if node.Authenticated {
		m.provideCredentials(ctx, tok, editor, req.UserID, req.Login)
	}
	return tok, nil
}

// SaveAsRequest describes a token for a file written by "save as" from an
// open editing session.
type SaveAsRequest struct {
	// AccessToken is the token of the session the file is saved from.
	AccessToken string

	// FileRef is the newly written file.
	FileRef string

	// UserID is the authenticated caller. It must be the editor of the
	// parent token.
	UserID string

	Login *credentials.Login
}

// IssueSaveAs issues a USER token for the file a session saved as a new
// file. The parent token must be live and held by the caller; the new
// token inherits its direct flag and is otherwise issued like any other
// token of the caller.
func (m *Manager) IssueSaveAs(ctx context.Context, req SaveAsRequest) (*wopi.Token, error) {
	if req.UserID == "" {
		return nil, apperrors.NewPermissionDeniedError("save as requires an authenticated caller", nil)
	}
	parent, err := m.store.GetByToken(ctx, req.AccessToken)
	if err != nil {
		return nil, err
	}
	if parent.TokenType.IsRemote() || parent.EditorUID != req.UserID {
		return nil, apperrors.NewPermissionDeniedError("access token belongs to another editor", nil)
	}

	return m.Issue(ctx, IssueRequest{
		FileRef: req.FileRef,
		UserID:  req.UserID,
		Direct:  parent.Direct,
		Login:   req.Login,
	})
}

// TemplateRequest describes a token for populating a new file from a template.
type TemplateRequest struct {
	TemplateID   int64
	TargetFileID int64

	// UserID is the authenticated caller, empty for anonymous access.
	UserID string

	// ShareToken selects the sharer's folder as the owner of the target.
	// It also narrows write access to the share's permissions. Anonymous
	// callers must present one.
	ShareToken string

	Direct bool

	Login *credentials.Login
}

// GenerateForTemplate creates a token for converting a template into the
// target file and records the template mapping for the target. The owner
// is the caller, or the sharer when a share token is presented.
func (m *Manager) GenerateForTemplate(ctx context.Context, req TemplateRequest) (*wopi.Token, error) {
	var (
		owner, editor string
		share         *Share
	)
	switch {
	case req.ShareToken != "":
		var err error
		share, err = m.shares.ShareByToken(ctx, req.ShareToken)
		if err != nil {
			return nil, shareLookupError(err)
		}
		if !share.CanRead() {
			return nil, apperrors.NewNotFoundError("share not found", nil)
		}
		owner = share.Owner
		editor = req.UserID
	case req.UserID != "":
		owner = req.UserID
		editor = req.UserID
	default:
		return nil, apperrors.NewPermissionDeniedError("anonymous access requires a share token", nil)
	}

	nodes, err := m.files.NodesByID(ctx, owner, req.TargetFileID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve target file: %w", err)
	}
	if len(nodes) == 0 {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("target file %d not found", req.TargetFileID), nil)
	}
	target := nodes[0]
	if !target.Readable {
		return nil, apperrors.NewPermissionDeniedError("target file is not readable", nil)
	}

	updatable := target.Updatable
	if share != nil {
		updatable = updatable && share.CanUpdate()
	}

	tok := &wopi.Token{
		FileID:     target.ID,
		OwnerUID:   owner,
		EditorUID:  editor,
		CanWrite:   updatable,
		ServerHost: m.urls.AbsoluteURL("/"),
		TokenType:  wopi.TokenTypeUser,
		ShareToken: req.ShareToken,
		TemplateID: req.TemplateID,
		Direct:     req.Direct,

		SessionCredential: target.Authenticated,
	}
	if editor == "" {
		tok.TokenType = wopi.TokenTypeGuest
	}

	if err := m.create(ctx, tok); err != nil {
		return nil, err
	}

	mapping := wopi.TemplateMapping{FileID: target.ID, TemplateID: req.TemplateID, Timestamp: m.now()}
	if err := m.store.PutTemplateMapping(ctx, mapping); err != nil {
		return nil, fmt.Errorf("failed to record template mapping: %w", err)
	}

	if target.Authenticated {
		m.provideCredentials(ctx, tok, editor, req.UserID, req.Login)
	}
	return tok, nil
}

// UpgradeToRemote folds the partner server's view of a federated session
// into the local token. It only applies while one side is still an
// INITIATOR token and the local token is not federated yet; otherwise the
// local token is returned unchanged.
func (m *Manager) UpgradeToRemote(
	ctx context.Context, local, remote *wopi.Token, shareToken, remoteServer, remoteServerToken string,
) (*wopi.Token, error) {
	if local == nil || remote == nil {
		return nil, apperrors.NewInvalidArgumentError("local and remote tokens are required", nil)
	}
	if local.TokenType.IsRemote() {
		return local, nil
	}
	if local.TokenType != wopi.TokenTypeInitiator && remote.TokenType != wopi.TokenTypeInitiator {
		return local, nil
	}
	if remoteServer == "" {
		return nil, apperrors.NewInvalidArgumentError("remote server is required", nil)
	}

	up := local.Clone()
	if remote.EditorUID != "" {
		up.TokenType = wopi.TokenTypeRemoteUser
		up.GuestDisplayName = remote.EditorUID + "@" + remoteServer
	} else {
		up.TokenType = wopi.TokenTypeRemoteGuest
		up.EditorUID = ""
		up.GuestDisplayName = remote.GuestDisplayName
	}
	up.ShareToken = shareToken
	up.CanWrite = local.CanWrite && remote.CanWrite
	up.HideDownload = local.HideDownload || remote.HideDownload
	up.RemoteServer = remoteServer
	up.RemoteServerToken = remoteServerToken

	if err := m.update(ctx, up); err != nil {
		return nil, err
	}
	metrics.TokensUpgraded.WithLabelValues(up.TokenType.String()).Inc()
	return up, nil
}

// UpgradeFromDirectInitiator turns a token redeemed through a server to
// server direct link into a REMOTE_GUEST token of the initiator.
func (m *Manager) UpgradeFromDirectInitiator(ctx context.Context, direct wopi.Direct, local *wopi.Token) (*wopi.Token, error) {
	if local == nil {
		return nil, apperrors.NewInvalidArgumentError("token is required", nil)
	}
	if direct.InitiatorHost == "" {
		return nil, apperrors.NewInvalidArgumentError("initiator host is required", nil)
	}

	up := local.Clone()
	up.TokenType = wopi.TokenTypeRemoteGuest
	up.EditorUID = ""
	up.RemoteServer = direct.InitiatorHost
	up.RemoteServerToken = direct.InitiatorToken

	if err := m.update(ctx, up); err != nil {
		return nil, err
	}
	metrics.TokensUpgraded.WithLabelValues(up.TokenType.String()).Inc()
	return up, nil
}

// InitiatorRequest describes a token handed to a partner server.
type InitiatorRequest struct {
	SourceServer string

	// FileRef is empty for a server-level handshake token.
	FileRef    string
	ShareToken string
	Direct     bool

	// UserID is the authenticated caller.
	UserID string

	Login *credentials.Login
}

// NewInitiatorToken issues the INITIATOR token a partner server presents
// when it upgrades its own token. Without a file it mints a server-level
// token owned by the caller.
func (m *Manager) NewInitiatorToken(ctx context.Context, req InitiatorRequest) (*wopi.Token, error) {
	if req.SourceServer == "" {
		return nil, apperrors.NewInvalidArgumentError("source server is required", nil)
	}

	if req.FileRef == "" {
		if req.UserID == "" {
			return nil, apperrors.NewPermissionDeniedError("server level initiator token requires an authenticated caller", nil)
		}
		tok := &wopi.Token{
			OwnerUID:   req.UserID,
			EditorUID:  req.UserID,
			ServerHost: req.SourceServer,
			TokenType:  wopi.TokenTypeInitiator,
		}
		if err := m.create(ctx, tok); err != nil {
			return nil, err
		}
		return tok, nil
	}

	tok, err := m.Issue(ctx, IssueRequest{
		FileRef:    req.FileRef,
		ShareToken: req.ShareToken,
		UserID:     req.UserID,
		Direct:     req.Direct,
		Login:      req.Login,
	})
	if err != nil {
		return nil, err
	}

	tok.ServerHost = req.SourceServer
	tok.TokenType = wopi.TokenTypeInitiator
	if err := m.update(ctx, tok); err != nil {
		return nil, err
	}
	return tok, nil
}

// ExtendWithInitiatorUserToken attaches the remote credential pair of a two
// phase handshake without changing the token type.
func (m *Manager) ExtendWithInitiatorUserToken(
	ctx context.Context, tok *wopi.Token, initiatorHost, initiatorToken string,
) (*wopi.Token, error) {
	if tok == nil {
		return nil, apperrors.NewInvalidArgumentError("token is required", nil)
	}

	ext := tok.Clone()
	ext.RemoteServer = initiatorHost
	ext.RemoteServerToken = initiatorToken
	if err := m.update(ctx, ext); err != nil {
		return nil, err
	}
	return ext, nil
}

// SetGuestName renames the guest of a GUEST or REMOTE_GUEST token. Other
// tokens are returned unchanged.
func (m *Manager) SetGuestName(ctx context.Context, tok *wopi.Token, name string) (*wopi.Token, error) {
	if tok == nil {
		return nil, apperrors.NewInvalidArgumentError("token is required", nil)
	}
	if !tok.TokenType.IsGuest() {
		return tok, nil
	}

	renamed := tok.Clone()
	renamed.GuestDisplayName = PrepareGuestName(name)
	if err := m.update(ctx, renamed); err != nil {
		return nil, err
	}
	return renamed, nil
}

// UpdateGuestName loads the token behind accessToken and renames its guest.
func (m *Manager) UpdateGuestName(ctx context.Context, accessToken, name string) (*wopi.Token, error) {
	tok, err := m.store.GetByToken(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	return m.SetGuestName(ctx, tok, name)
}

// URLSource returns the editor entry point for a mimetype.
func (m *Manager) URLSource(ctx context.Context, mime string) (discovery.URLSource, error) {
	if m.sources == nil {
		return discovery.URLSource{}, apperrors.NewInternalError("no discovery source configured", nil)
	}
	return m.sources.URLSource(ctx, mime)
}

func (m *Manager) firstReadable(ctx context.Context, uid string, fileID int64) (Node, error) {
	nodes, err := m.files.NodesByID(ctx, uid, fileID)
	if err != nil {
		return Node{}, fmt.Errorf("failed to resolve file: %w", err)
	}
	if len(nodes) == 0 || !nodes[0].Readable {
		return Node{}, apperrors.NewPermissionDeniedError(fmt.Sprintf("file %d is not readable", fileID), nil)
	}
	return nodes[0], nil
}

func (m *Manager) checkEnabled(ctx context.Context, owner, editor string) error {
	for _, uid := range []string{owner, editor} {
		if uid == "" {
			continue
		}
		enabled, err := m.perms.IsEnabledForUser(ctx, uid)
		if err != nil {
			return fmt.Errorf("failed to check entitlement: %w", err)
		}
		if enabled {
			return nil
		}
	}
	return apperrors.NewPermissionDeniedError("neither owner nor editor may use the editor", nil)
}

func (m *Manager) create(ctx context.Context, tok *wopi.Token) error {
	value, err := wopi.GenerateToken()
	if err != nil {
		return apperrors.NewInternalError("failed to generate token", err)
	}
	tok.Token = value
	tok.Expiry = m.now().Add(m.ttl).Truncate(time.Second)

	if err := tok.Validate(); err != nil {
		return apperrors.NewInternalError("refusing to store inconsistent token", err)
	}
	if _, err := m.store.Create(ctx, tok); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	metrics.TokensIssued.WithLabelValues(tok.TokenType.String()).Inc()
	return nil
}

func (m *Manager) update(ctx context.Context, tok *wopi.Token) error {
	if err := tok.Validate(); err != nil {
		return apperrors.NewInvalidArgumentError("inconsistent token", err)
	}
	if err := m.store.Update(ctx, tok); err != nil {
		return fmt.Errorf("failed to update token: %w", err)
	}
	return nil
}

// provideCredentials mints the session credential for tok on behalf of
// caller. Failures never fail the issuance.
func (m *Manager) provideCredentials(
	ctx context.Context, tok *wopi.Token, editor, caller string, login *credentials.Login,
) {
	if m.creds == nil {
		logger.Warnw("mount requires session credentials but no provisioner is configured", "file_id", tok.FileID)
		metrics.CredentialProvisioning.WithLabelValues("skipped").Inc()
		return
	}
	if login == nil && caller != "" && m.logins != nil {
		var err error
		login, err = m.logins.LoginCredentials(ctx, caller)
		if err != nil {
			logger.Errorw("failed to load login credentials", "uid", caller, "error", err)
			metrics.CredentialProvisioning.WithLabelValues("error").Inc()
			return
		}
	}
	if login == nil || login.UID == "" {
		logger.Errorw("no login credentials available for session credential", "file_id", tok.FileID, "editor", editor)
		metrics.CredentialProvisioning.WithLabelValues("skipped").Inc()
		return
	}
	if login.UID != editor {
		logger.Errorw("login uid does not match token editor, skipping session credential",
			"login_uid", login.UID, "editor", editor, "file_id", tok.FileID)
		metrics.CredentialProvisioning.WithLabelValues("mismatch").Inc()
		return
	}

	passphrase := credentials.TokenPassphrase(login.UID, tok.Token)
	if err := m.creds.ProvideCredentials(ctx, passphrase, tok, login); err != nil {
		logger.Errorw("failed to provision session credential", "file_id", tok.FileID, "error", err)
		metrics.CredentialProvisioning.WithLabelValues("error").Inc()
		return
	}
	logger.Infow("session credential provisioned", "file_id", tok.FileID, "editor", editor)
	metrics.CredentialProvisioning.WithLabelValues("success").Inc()
}

func shareLookupError(err error) error {
	if apperrors.IsNotFound(err) {
		return err
	}
	return fmt.Errorf("failed to look up share: %w", err)
}

func anyUpdatable(nodes []Node) bool {
	for _, n := range nodes {
		if n.Updatable {
			return true
		}
	}
	return false
}

func anyDownloadHidden(nodes []Node) bool {
	for _, n := range nodes {
		if n.DownloadHidden {
			return true
		}
	}
	return false
}
