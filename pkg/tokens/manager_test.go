// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package tokens_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/wopibroker/pkg/credentials"
	credmocks "github.com/stacklok/wopibroker/pkg/credentials/mocks"
	"github.com/stacklok/wopibroker/pkg/discovery"
	apperrors "github.com/stacklok/wopibroker/pkg/errors"
	"github.com/stacklok/wopibroker/pkg/storage"
	"github.com/stacklok/wopibroker/pkg/tokens"
	"github.com/stacklok/wopibroker/pkg/tokens/mocks"
	"github.com/stacklok/wopibroker/pkg/wopi"
)

const serverHost = "https://cloud.example.com/"

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	logins  *credmocks.MockLoginStore
	store   *storage.MemoryStore
	files   *mocks.MockFileResolver
	shares  *mocks.MockShareManager
	perms   *mocks.MockPermissionManager
	events  *mocks.MockEventDispatcher
	creds   *mocks.MockCredentialProvisioner
	sources *mocks.MockURLSourcer
	manager *tokens.Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := &fixture{
		store:   storage.NewMemoryStore(storage.WithClock(func() time.Time { return fixedNow })),
		files:   mocks.NewMockFileResolver(ctrl),
		shares:  mocks.NewMockShareManager(ctrl),
		perms:   mocks.NewMockPermissionManager(ctrl),
		events:  mocks.NewMockEventDispatcher(ctrl),
		creds:   mocks.NewMockCredentialProvisioner(ctrl),
		sources: mocks.NewMockURLSourcer(ctrl),
		logins:  credmocks.NewMockLoginStore(ctrl),
	}
	urls := mocks.NewMockURLGenerator(ctrl)
	urls.EXPECT().AbsoluteURL("/").Return(serverHost).AnyTimes()

	m, err := tokens.NewManager(tokens.Deps{
		Store:       f.store,
		Files:       f.files,
		Shares:      f.shares,
		Permissions: f.perms,
		Events:      f.events,
		URLs:        urls,
		Credentials: f.creds,
		Logins:      f.logins,
		Sources:     f.sources,
	}, tokens.WithClock(func() time.Time { return fixedNow }), tokens.WithTTL(time.Hour))
	require.NoError(t, err)
	f.manager = m
	return f
}

func TestNewManager_RequiresCollaborators(t *testing.T) {
	t.Parallel()

	_, err := tokens.NewManager(tokens.Deps{})
	require.Error(t, err)
}

func TestIssue_UserWithWriteAccess(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	node := tokens.Node{ID: 42, OwnerUID: "alice", Readable: true, Updatable: true}
	f.files.EXPECT().NodesByID(gomock.Any(), "alice", int64(42)).Return([]tokens.Node{node}, nil).Times(2)
	f.perms.EXPECT().UserCanEdit(gomock.Any(), "alice").Return(true, nil)
	f.perms.EXPECT().IsEnabledForUser(gomock.Any(), "alice").Return(true, nil)
	f.events.EXPECT().BeforeNodeRead(gomock.Any(), node).Return(nil)

	tok, err := f.manager.Issue(ctx, tokens.IssueRequest{FileRef: "42", UserID: "alice"})
	require.NoError(t, err)

	assert.Equal(t, wopi.TokenTypeUser, tok.TokenType)
	assert.True(t, tok.CanWrite)
	assert.Equal(t, "alice", tok.OwnerUID)
	assert.Equal(t, "alice", tok.EditorUID)
	assert.Equal(t, serverHost, tok.ServerHost)
	assert.Empty(t, tok.GuestDisplayName)
	assert.Len(t, tok.Token, wopi.TokenLength)
	assert.Equal(t, fixedNow.Add(time.Hour), tok.Expiry)
	assert.False(t, tok.SessionCredential)

	stored, err := f.store.GetByToken(ctx, tok.Token)
	require.NoError(t, err)
	assert.Equal(t, tok, stored)
}

func TestIssue_UserWithoutEditEntitlement(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	node := tokens.Node{ID: 42, OwnerUID: "bob", Readable: true, Updatable: true, DownloadHidden: true}
	f.files.EXPECT().NodesByID(gomock.Any(), "alice", int64(42)).Return([]tokens.Node{node}, nil).Times(2)
	f.perms.EXPECT().UserCanEdit(gomock.Any(), "alice").Return(false, nil)
	f.perms.EXPECT().IsEnabledForUser(gomock.Any(), "bob").Return(false, nil)
	f.perms.EXPECT().IsEnabledForUser(gomock.Any(), "alice").Return(true, nil)
	f.events.EXPECT().BeforeNodeRead(gomock.Any(), node).Return(nil)

	tok, err := f.manager.Issue(context.Background(), tokens.IssueRequest{FileRef: "42_oc123_7", UserID: "alice"})
	require.NoError(t, err)

	assert.False(t, tok.CanWrite)
	assert.True(t, tok.HideDownload)
	assert.Equal(t, "bob", tok.OwnerUID)
	assert.Equal(t, int64(7), tok.Version)
}

func TestIssue_ReadOnlyShare(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.shares.EXPECT().ShareByToken(gomock.Any(), "share1").Return(&tokens.Share{
		Token: "share1", Owner: "carol", Permissions: tokens.PermissionRead, HideDownload: true,
	}, nil)
	f.perms.EXPECT().UserCanEdit(gomock.Any(), "carol").Return(true, nil)
	node := tokens.Node{ID: 42, OwnerUID: "carol", Readable: true, Updatable: true}
	f.files.EXPECT().NodesByID(gomock.Any(), "carol", int64(42)).Return([]tokens.Node{node}, nil)
	f.perms.EXPECT().IsEnabledForUser(gomock.Any(), "carol").Return(true, nil)
	f.events.EXPECT().BeforeNodeRead(gomock.Any(), node).Return(nil)

	tok, err := f.manager.Issue(context.Background(), tokens.IssueRequest{
		FileRef: "42", ShareToken: "share1", GuestName: "Dave",
	})
	require.NoError(t, err)

	assert.False(t, tok.CanWrite)
	assert.True(t, tok.HideDownload)
	assert.Equal(t, wopi.TokenTypeGuest, tok.TokenType)
	assert.Equal(t, "carol", tok.OwnerUID)
	assert.Empty(t, tok.EditorUID)
	assert.Equal(t, "share1", tok.ShareToken)
	assert.Equal(t, "Dave (Guest)", tok.GuestDisplayName)
}

func TestIssue_ShareWithoutRead(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.shares.EXPECT().ShareByToken(gomock.Any(), "share1").Return(&tokens.Share{
		Owner: "carol", Permissions: tokens.PermissionUpdate,
	}, nil)

	_, err := f.manager.Issue(context.Background(), tokens.IssueRequest{FileRef: "42", ShareToken: "share1"})
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestIssue_Rejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		setup func(f *fixture)
		check func(error) bool
	}{
		{
			name: "file missing",
			setup: func(f *fixture) {
				f.files.EXPECT().NodesByID(gomock.Any(), "alice", int64(42)).Return(nil, nil).Times(2)
				f.perms.EXPECT().UserCanEdit(gomock.Any(), "alice").Return(true, nil)
			},
			check: apperrors.IsPermissionDenied,
		},
		{
			name: "file unreadable",
			setup: func(f *fixture) {
				f.files.EXPECT().NodesByID(gomock.Any(), "alice", int64(42)).
					Return([]tokens.Node{{ID: 42, Readable: false}}, nil).Times(2)
				f.perms.EXPECT().UserCanEdit(gomock.Any(), "alice").Return(true, nil)
			},
			check: apperrors.IsPermissionDenied,
		},
		{
			name: "neither owner nor editor enabled",
			setup: func(f *fixture) {
				f.files.EXPECT().NodesByID(gomock.Any(), "alice", int64(42)).
					Return([]tokens.Node{{ID: 42, OwnerUID: "bob", Readable: true}}, nil).Times(2)
				f.perms.EXPECT().UserCanEdit(gomock.Any(), "alice").Return(true, nil)
				f.perms.EXPECT().IsEnabledForUser(gomock.Any(), gomock.Any()).Return(false, nil).Times(2)
			},
			check: apperrors.IsPermissionDenied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)
			tt.setup(f)

			_, err := f.manager.Issue(context.Background(), tokens.IssueRequest{FileRef: "42", UserID: "alice"})
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error: %v", err)
		})
	}
}

func TestIssue_InvalidFileRef(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := f.manager.Issue(context.Background(), tokens.IssueRequest{FileRef: "abc"})
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidArgument(err))
}

func TestIssue_AnonymousWithoutShareRejected(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	// No collaborator may be consulted: an anonymous caller without a share
	// has no folder to resolve the file in.
	tok, err := f.manager.Issue(context.Background(), tokens.IssueRequest{FileRef: "42", GuestName: "Mallory"})
	require.Error(t, err)
	assert.Nil(t, tok)
	assert.True(t, apperrors.IsPermissionDenied(err))
}

func TestIssue_OwnerlessMountFallsBackToEditor(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	node := tokens.Node{ID: 42, Readable: true, Updatable: true}
	f.files.EXPECT().NodesByID(gomock.Any(), "erin", int64(42)).Return([]tokens.Node{node}, nil).Times(2)
	f.perms.EXPECT().UserCanEdit(gomock.Any(), "erin").Return(true, nil)
	f.perms.EXPECT().IsEnabledForUser(gomock.Any(), "erin").Return(true, nil)
	f.events.EXPECT().BeforeNodeRead(gomock.Any(), node).Return(nil)

	tok, err := f.manager.Issue(context.Background(), tokens.IssueRequest{FileRef: "42", UserID: "erin"})
	require.NoError(t, err)
	assert.Equal(t, "erin", tok.OwnerUID)
	assert.Equal(t, wopi.TokenTypeUser, tok.TokenType)
	assert.True(t, tok.CanWrite)
}

func TestIssue_EventFailureAborts(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	node := tokens.Node{ID: 42, OwnerUID: "alice", Readable: true}
	f.files.EXPECT().NodesByID(gomock.Any(), "alice", int64(42)).Return([]tokens.Node{node}, nil).Times(2)
	f.perms.EXPECT().UserCanEdit(gomock.Any(), "alice").Return(true, nil)
	f.perms.EXPECT().IsEnabledForUser(gomock.Any(), "alice").Return(true, nil)
	f.events.EXPECT().BeforeNodeRead(gomock.Any(), node).Return(errors.New("audit down"))

	_, err := f.manager.Issue(context.Background(), tokens.IssueRequest{FileRef: "42", UserID: "alice"})
	require.Error(t, err)
}

func expectAuthenticatedIssue(f *fixture) tokens.Node {
	node := tokens.Node{ID: 42, OwnerUID: "alice", Readable: true, Updatable: true, Authenticated: true}
	f.files.EXPECT().NodesByID(gomock.Any(), "alice", int64(42)).Return([]tokens.Node{node}, nil).Times(2)
	f.perms.EXPECT().UserCanEdit(gomock.Any(), "alice").Return(true, nil)
	f.perms.EXPECT().IsEnabledForUser(gomock.Any(), "alice").Return(true, nil)
	f.events.EXPECT().BeforeNodeRead(gomock.Any(), node).Return(nil)
	return node
}

func TestIssue_ProvisionsCredentialOnAuthenticatedMount(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	expectAuthenticatedIssue(f)

	login := &credentials.Login{UID: "alice", Password: "secret"}
	var passphrase string
	f.creds.EXPECT().ProvideCredentials(gomock.Any(), gomock.Any(), gomock.Any(), login).
		DoAndReturn(func(_ context.Context, p string, _ *wopi.Token, _ *credentials.Login) error {
			passphrase = p
			return nil
		})

	tok, err := f.manager.Issue(context.Background(), tokens.IssueRequest{FileRef: "42", UserID: "alice", Login: login})
	require.NoError(t, err)
	assert.Equal(t, "alice@"+tok.Token, passphrase)
	assert.True(t, tok.SessionCredential)

	stored, err := f.store.GetByToken(context.Background(), tok.Token)
	require.NoError(t, err)
	assert.True(t, stored.SessionCredential)
}

func TestIssueSaveAs(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("editor of the parent token", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		parent := storeToken(t, f, &wopi.Token{
			FileID: 1, OwnerUID: "alice", EditorUID: "alice", TokenType: wopi.TokenTypeUser, Direct: true,
		})
		node := tokens.Node{ID: 42, OwnerUID: "alice", Readable: true, Updatable: true}
		f.files.EXPECT().NodesByID(gomock.Any(), "alice", int64(42)).Return([]tokens.Node{node}, nil).Times(2)
		f.perms.EXPECT().UserCanEdit(gomock.Any(), "alice").Return(true, nil)
		f.perms.EXPECT().IsEnabledForUser(gomock.Any(), "alice").Return(true, nil)
		f.events.EXPECT().BeforeNodeRead(gomock.Any(), node).Return(nil)

		tok, err := f.manager.IssueSaveAs(ctx, tokens.SaveAsRequest{
			AccessToken: parent.Token, FileRef: "42", UserID: "alice",
		})
		require.NoError(t, err)
		assert.NotEqual(t, parent.Token, tok.Token)
		assert.Equal(t, wopi.TokenTypeUser, tok.TokenType)
		assert.Equal(t, "alice", tok.EditorUID)
		assert.Equal(t, int64(42), tok.FileID)
		assert.True(t, tok.CanWrite)
		assert.True(t, tok.Direct)
	})

	tests := []struct {
		name   string
		parent *wopi.Token
		token  string
		user   string
		check  func(error) bool
	}{
		{
			name:   "anonymous caller",
			parent: &wopi.Token{FileID: 1, OwnerUID: "alice", EditorUID: "alice", TokenType: wopi.TokenTypeUser},
			check:  apperrors.IsPermissionDenied,
		},
		{
			name:   "parent of another editor",
			parent: &wopi.Token{FileID: 1, OwnerUID: "alice", EditorUID: "alice", TokenType: wopi.TokenTypeUser},
			user:   "mallory",
			check:  apperrors.IsPermissionDenied,
		},
		{
			name:   "guest parent",
			parent: &wopi.Token{FileID: 1, OwnerUID: "alice", TokenType: wopi.TokenTypeGuest},
			user:   "mallory",
			check:  apperrors.IsPermissionDenied,
		},
		{
			name: "federated parent",
			parent: &wopi.Token{
				FileID: 1, OwnerUID: "alice", EditorUID: "alice", TokenType: wopi.TokenTypeRemoteUser,
				RemoteServer: "partner.example",
			},
			user:  "alice",
			check: apperrors.IsPermissionDenied,
		},
		{
			name:  "unknown parent",
			token: "missing",
			user:  "alice",
			check: apperrors.IsInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)
			access := tt.token
			if tt.parent != nil {
				access = storeToken(t, f, tt.parent).Token
			}

			tok, err := f.manager.IssueSaveAs(ctx, tokens.SaveAsRequest{AccessToken: access, FileRef: "42", UserID: tt.user})
			require.Error(t, err)
			assert.Nil(t, tok)
			assert.True(t, tt.check(err), "unexpected error: %v", err)
		})
	}
}

func TestIssue_LoadsLoginWhenNeeded(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	expectAuthenticatedIssue(f)

	login := &credentials.Login{UID: "alice", Password: "secret"}
	f.logins.EXPECT().LoginCredentials(gomock.Any(), "alice").Return(login, nil)
	f.creds.EXPECT().ProvideCredentials(gomock.Any(), gomock.Any(), gomock.Any(), login).Return(nil)

	_, err := f.manager.Issue(context.Background(), tokens.IssueRequest{FileRef: "42", UserID: "alice"})
	require.NoError(t, err)
}

func TestIssue_CredentialProblemsDoNotFailIssuance(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		login  *credentials.Login
		expect func(f *fixture)
	}{
		{
			name: "login lookup fails",
			expect: func(f *fixture) {
				f.logins.EXPECT().LoginCredentials(gomock.Any(), "alice").Return(nil, errors.New("host down"))
			},
		},
		{name: "uid mismatch", login: &credentials.Login{UID: "mallory"}},
		{
			name:  "provider failure",
			login: &credentials.Login{UID: "alice"},
			expect: func(f *fixture) {
				f.creds.EXPECT().ProvideCredentials(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(apperrors.NewCredentialProvisionError("boom", nil))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)
			expectAuthenticatedIssue(f)
			if tt.expect != nil {
				tt.expect(f)
			}

			tok, err := f.manager.Issue(context.Background(), tokens.IssueRequest{FileRef: "42", UserID: "alice", Login: tt.login})
			require.NoError(t, err)
			assert.True(t, tok.CanWrite)
		})
	}
}

// storeToken persists tok under a fresh access token.
func storeToken(t *testing.T, f *fixture, tok *wopi.Token) *wopi.Token {
	t.Helper()
	value, err := wopi.GenerateToken()
	require.NoError(t, err)
	tok.Token = value
	tok.Expiry = fixedNow.Add(time.Hour)
	_, err = f.store.Create(context.Background(), tok)
	require.NoError(t, err)
	return tok
}

func TestUpgradeToRemote_PermissionAlgebra(t *testing.T) {
	t.Parallel()

	for _, localWrite := range []bool{false, true} {
		for _, remoteWrite := range []bool{false, true} {
			for _, localHide := range []bool{false, true} {
				for _, remoteHide := range []bool{false, true} {
					f := newFixture(t)
					local := storeToken(t, f, &wopi.Token{
						FileID: 1, OwnerUID: "alice", TokenType: wopi.TokenTypeGuest,
						CanWrite: localWrite, HideDownload: localHide,
					})
					remote := &wopi.Token{
						Token: "remote", EditorUID: "zoe", TokenType: wopi.TokenTypeInitiator,
						CanWrite: remoteWrite, HideDownload: remoteHide,
					}

					up, err := f.manager.UpgradeToRemote(context.Background(), local, remote, "s", "partner.example", "rt")
					require.NoError(t, err)
					assert.Equal(t, localWrite && remoteWrite, up.CanWrite)
					assert.Equal(t, localHide || remoteHide, up.HideDownload)
				}
			}
		}
	}
}

func TestUpgradeToRemote_Types(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("remote user", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		local := storeToken(t, f, &wopi.Token{FileID: 1, OwnerUID: "alice", TokenType: wopi.TokenTypeGuest})
		remote := &wopi.Token{EditorUID: "zoe", TokenType: wopi.TokenTypeInitiator}

		up, err := f.manager.UpgradeToRemote(ctx, local, remote, "share", "partner.example", "rt")
		require.NoError(t, err)
		assert.Equal(t, wopi.TokenTypeRemoteUser, up.TokenType)
		assert.Equal(t, "zoe@partner.example", up.GuestDisplayName)
		assert.Equal(t, "partner.example", up.RemoteServer)
		assert.Equal(t, "rt", up.RemoteServerToken)
		assert.Equal(t, "share", up.ShareToken)

		stored, err := f.store.GetByToken(ctx, local.Token)
		require.NoError(t, err)
		assert.Equal(t, up, stored)
	})

	t.Run("remote guest", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		local := storeToken(t, f, &wopi.Token{FileID: 1, OwnerUID: "alice", TokenType: wopi.TokenTypeGuest})
		remote := &wopi.Token{GuestDisplayName: "Yan (Guest)", TokenType: wopi.TokenTypeInitiator}

		up, err := f.manager.UpgradeToRemote(ctx, local, remote, "", "partner.example", "rt")
		require.NoError(t, err)
		assert.Equal(t, wopi.TokenTypeRemoteGuest, up.TokenType)
		assert.Equal(t, "Yan (Guest)", up.GuestDisplayName)
	})
}

func TestUpgradeToRemote_NoOpAndIdempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	user := &wopi.Token{Token: "u", EditorUID: "alice", TokenType: wopi.TokenTypeUser, CanWrite: true}
	out, err := f.manager.UpgradeToRemote(ctx, user, user.Clone(), "", "partner.example", "rt")
	require.NoError(t, err)
	assert.Same(t, user, out)

	local := storeToken(t, f, &wopi.Token{FileID: 1, OwnerUID: "alice", TokenType: wopi.TokenTypeInitiator, CanWrite: true})
	remote := &wopi.Token{EditorUID: "zoe", TokenType: wopi.TokenTypeInitiator, CanWrite: false, HideDownload: true}

	first, err := f.manager.UpgradeToRemote(ctx, local, remote, "", "partner.example", "rt")
	require.NoError(t, err)

	widening := &wopi.Token{TokenType: wopi.TokenTypeInitiator, CanWrite: true}
	second, err := f.manager.UpgradeToRemote(ctx, first, widening, "", "other.example", "rt2")
	require.NoError(t, err)
	assert.Equal(t, first.TokenType, second.TokenType)
	assert.Equal(t, first.CanWrite, second.CanWrite)
	assert.Equal(t, first.HideDownload, second.HideDownload)
	assert.Equal(t, "partner.example", second.RemoteServer)
}

func TestUpgradeToRemote_InitiatorOnEitherSide(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tests := []struct {
		name        string
		localType   wopi.TokenType
		remoteType  wopi.TokenType
		wantUpgrade bool
	}{
		{name: "local initiator", localType: wopi.TokenTypeInitiator, remoteType: wopi.TokenTypeUser, wantUpgrade: true},
		{name: "remote initiator", localType: wopi.TokenTypeUser, remoteType: wopi.TokenTypeInitiator, wantUpgrade: true},
		{name: "both initiators", localType: wopi.TokenTypeInitiator, remoteType: wopi.TokenTypeInitiator, wantUpgrade: true},
		{name: "neither", localType: wopi.TokenTypeUser, remoteType: wopi.TokenTypeUser},
		{name: "guest and remote guest", localType: wopi.TokenTypeGuest, remoteType: wopi.TokenTypeGuest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)
			editor := "alice"
			if tt.localType == wopi.TokenTypeGuest {
				editor = ""
			}
			local := storeToken(t, f, &wopi.Token{
				FileID: 1, OwnerUID: "alice", EditorUID: editor, TokenType: tt.localType, CanWrite: true,
			})
			remote := &wopi.Token{EditorUID: "zoe", TokenType: tt.remoteType, CanWrite: true, HideDownload: true}

			up, err := f.manager.UpgradeToRemote(ctx, local, remote, "", "partner.example", "rt")
			require.NoError(t, err)

			stored, err := f.store.GetByToken(ctx, local.Token)
			require.NoError(t, err)
			if !tt.wantUpgrade {
				assert.Same(t, local, up)
				assert.Equal(t, tt.localType, stored.TokenType)
				assert.Empty(t, stored.RemoteServer)
				return
			}
			assert.Equal(t, wopi.TokenTypeRemoteUser, up.TokenType)
			assert.True(t, up.CanWrite)
			assert.True(t, up.HideDownload)
			assert.Equal(t, up, stored)
		})
	}
}

func TestUpgradeToRemote_NeverWidensLocalAccess(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	local := storeToken(t, f, &wopi.Token{
		FileID: 1, OwnerUID: "alice", EditorUID: "alice", TokenType: wopi.TokenTypeUser, CanWrite: false, HideDownload: true,
	})
	remote := &wopi.Token{EditorUID: "zoe", TokenType: wopi.TokenTypeInitiator, CanWrite: true, HideDownload: false}

	up, err := f.manager.UpgradeToRemote(ctx, local, remote, "", "partner.example", "rt")
	require.NoError(t, err)
	assert.False(t, up.CanWrite)
	assert.True(t, up.HideDownload)
	assert.Equal(t, local.FileID, up.FileID)
	assert.Equal(t, local.OwnerUID, up.OwnerUID)
	assert.Equal(t, local.Expiry, up.Expiry)
}

func TestUpgradeFromDirectInitiator(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	local := storeToken(t, f, &wopi.Token{FileID: 1, OwnerUID: "alice", EditorUID: "alice", TokenType: wopi.TokenTypeUser})
	up, err := f.manager.UpgradeFromDirectInitiator(ctx, wopi.Direct{InitiatorHost: "partner.example", InitiatorToken: "it"}, local)
	require.NoError(t, err)

	assert.Equal(t, wopi.TokenTypeRemoteGuest, up.TokenType)
	assert.Empty(t, up.EditorUID)
	assert.Equal(t, "partner.example", up.RemoteServer)
	assert.Equal(t, "it", up.RemoteServerToken)
	assert.Equal(t, "alice", local.EditorUID, "input must not be mutated")

	_, err = f.manager.UpgradeFromDirectInitiator(ctx, wopi.Direct{}, local)
	assert.True(t, apperrors.IsInvalidArgument(err))
}

func TestNewInitiatorToken(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("server level", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		tok, err := f.manager.NewInitiatorToken(ctx, tokens.InitiatorRequest{SourceServer: "partner.example", UserID: "alice"})
		require.NoError(t, err)
		assert.Equal(t, wopi.TokenTypeInitiator, tok.TokenType)
		assert.Zero(t, tok.FileID)
		assert.Equal(t, "partner.example", tok.ServerHost)
		assert.Equal(t, "alice", tok.OwnerUID)
	})

	t.Run("file bound", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		node := tokens.Node{ID: 42, OwnerUID: "alice", Readable: true, Updatable: true}
		f.files.EXPECT().NodesByID(gomock.Any(), "alice", int64(42)).Return([]tokens.Node{node}, nil).Times(2)
		f.perms.EXPECT().UserCanEdit(gomock.Any(), "alice").Return(true, nil)
		f.perms.EXPECT().IsEnabledForUser(gomock.Any(), "alice").Return(true, nil)
		f.events.EXPECT().BeforeNodeRead(gomock.Any(), node).Return(nil)

		tok, err := f.manager.NewInitiatorToken(ctx, tokens.InitiatorRequest{
			SourceServer: "partner.example", FileRef: "42", UserID: "alice",
		})
		require.NoError(t, err)
		assert.Equal(t, wopi.TokenTypeInitiator, tok.TokenType)
		assert.Equal(t, "partner.example", tok.ServerHost)

		stored, err := f.store.GetByToken(ctx, tok.Token)
		require.NoError(t, err)
		assert.Equal(t, wopi.TokenTypeInitiator, stored.TokenType)
	})

	t.Run("missing source", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		_, err := f.manager.NewInitiatorToken(ctx, tokens.InitiatorRequest{})
		assert.True(t, apperrors.IsInvalidArgument(err))
	})

	t.Run("anonymous server level", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		_, err := f.manager.NewInitiatorToken(ctx, tokens.InitiatorRequest{SourceServer: "partner.example"})
		assert.True(t, apperrors.IsPermissionDenied(err))
	})
}

func TestExtendWithInitiatorUserToken(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	local := storeToken(t, f, &wopi.Token{FileID: 1, OwnerUID: "alice", TokenType: wopi.TokenTypeInitiator})
	ext, err := f.manager.ExtendWithInitiatorUserToken(ctx, local, "partner.example", "ut")
	require.NoError(t, err)
	assert.Equal(t, wopi.TokenTypeInitiator, ext.TokenType)
	assert.Equal(t, "partner.example", ext.RemoteServer)
	assert.Equal(t, "ut", ext.RemoteServerToken)
}

func TestSetGuestName(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("user token untouched", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		user := &wopi.Token{Token: "u", EditorUID: "alice", TokenType: wopi.TokenTypeUser, GuestDisplayName: "keep"}

		out, err := f.manager.SetGuestName(ctx, user, "Mallory")
		require.NoError(t, err)
		assert.Same(t, user, out)
		assert.Equal(t, "keep", out.GuestDisplayName)
	})

	t.Run("guest renamed", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		guest := storeToken(t, f, &wopi.Token{FileID: 1, OwnerUID: "alice", TokenType: wopi.TokenTypeGuest})

		out, err := f.manager.UpdateGuestName(ctx, guest.Token, "<b>Bob</b>")
		require.NoError(t, err)
		assert.Equal(t, "&lt;b&gt;Bob&lt;/b&gt; (Guest)", out.GuestDisplayName)

		stored, err := f.store.GetByToken(ctx, guest.Token)
		require.NoError(t, err)
		assert.Equal(t, out.GuestDisplayName, stored.GuestDisplayName)
	})

	t.Run("unknown token", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		_, err := f.manager.UpdateGuestName(ctx, "missing", "Bob")
		assert.True(t, apperrors.IsInvalidToken(err))
	})
}

func TestGenerateForTemplate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tests := []struct {
		name       string
		user       string
		share      *tokens.Share
		wantOwner  string
		wantEditor string
		wantType   wopi.TokenType
		wantWrite  bool
	}{
		{
			name: "caller owns the target", user: "alice",
			wantOwner: "alice", wantEditor: "alice", wantType: wopi.TokenTypeUser, wantWrite: true,
		},
		{
			name:      "anonymous through a writable share",
			share:     &tokens.Share{Token: "s1", Owner: "alice", Permissions: tokens.PermissionRead | tokens.PermissionUpdate},
			wantOwner: "alice", wantType: wopi.TokenTypeGuest, wantWrite: true,
		},
		{
			name: "user through a read-only share", user: "bob",
			share:     &tokens.Share{Token: "s1", Owner: "alice", Permissions: tokens.PermissionRead},
			wantOwner: "alice", wantEditor: "bob", wantType: wopi.TokenTypeUser, wantWrite: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)
			req := tokens.TemplateRequest{TemplateID: 7, TargetFileID: 99, UserID: tt.user}
			if tt.share != nil {
				req.ShareToken = tt.share.Token
				f.shares.EXPECT().ShareByToken(gomock.Any(), tt.share.Token).Return(tt.share, nil)
			}
			f.files.EXPECT().NodesByID(gomock.Any(), tt.wantOwner, int64(99)).
				Return([]tokens.Node{{ID: 99, Readable: true, Updatable: true}}, nil)

			tok, err := f.manager.GenerateForTemplate(ctx, req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, tok.TokenType)
			assert.Equal(t, tt.wantOwner, tok.OwnerUID)
			assert.Equal(t, tt.wantEditor, tok.EditorUID)
			assert.Equal(t, tt.wantWrite, tok.CanWrite)
			assert.Equal(t, int64(7), tok.TemplateID)
			assert.Zero(t, tok.Version)
			assert.Empty(t, tok.GuestDisplayName)

			mapping, err := f.store.GetTemplateMapping(ctx, 99)
			require.NoError(t, err)
			assert.Equal(t, int64(7), mapping.TemplateID)
		})
	}
}

func TestGenerateForTemplate_OwnerIsNeverChosenByCaller(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	// mallory only ever sees her own folder, where alice's file is absent.
	f.files.EXPECT().NodesByID(gomock.Any(), "mallory", int64(100)).Return(nil, nil)

	_, err := f.manager.GenerateForTemplate(context.Background(), tokens.TemplateRequest{
		TemplateID: 5, TargetFileID: 100, UserID: "mallory",
	})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestGenerateForTemplate_Rejections(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newFixture(t)
	f.files.EXPECT().NodesByID(gomock.Any(), "alice", int64(1)).Return(nil, nil)
	f.files.EXPECT().NodesByID(gomock.Any(), "alice", int64(2)).Return([]tokens.Node{{ID: 2}}, nil)
	f.shares.EXPECT().ShareByToken(gomock.Any(), "drop").
		Return(&tokens.Share{Token: "drop", Owner: "alice", Permissions: 4}, nil)

	_, err := f.manager.GenerateForTemplate(ctx, tokens.TemplateRequest{TargetFileID: 1, UserID: "alice"})
	assert.True(t, apperrors.IsNotFound(err))

	_, err = f.manager.GenerateForTemplate(ctx, tokens.TemplateRequest{TargetFileID: 2, UserID: "alice"})
	assert.True(t, apperrors.IsPermissionDenied(err))

	_, err = f.manager.GenerateForTemplate(ctx, tokens.TemplateRequest{TargetFileID: 3})
	assert.True(t, apperrors.IsPermissionDenied(err), "anonymous without share")

	_, err = f.manager.GenerateForTemplate(ctx, tokens.TemplateRequest{TargetFileID: 3, ShareToken: "drop"})
	assert.True(t, apperrors.IsNotFound(err), "share without read access")
}

func TestURLSource(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	want := discovery.URLSource{URLSrc: "https://office.example/edit?", Action: "edit"}
	f.sources.EXPECT().URLSource(gomock.Any(), "application/vnd.oasis.opendocument.text").Return(want, nil)

	got, err := f.manager.URLSource(context.Background(), "application/vnd.oasis.opendocument.text")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
