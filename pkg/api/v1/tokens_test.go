// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	apierrors "github.com/stacklok/wopibroker/pkg/api/errors"
	"github.com/stacklok/wopibroker/pkg/auth"
	"github.com/stacklok/wopibroker/pkg/credentials"
	credmocks "github.com/stacklok/wopibroker/pkg/credentials/mocks"
	"github.com/stacklok/wopibroker/pkg/statecodec"
	"github.com/stacklok/wopibroker/pkg/storage"
	"github.com/stacklok/wopibroker/pkg/tokens"
	"github.com/stacklok/wopibroker/pkg/tokens/mocks"
	"github.com/stacklok/wopibroker/pkg/wopi"
)

const (
	serverHost = "https://cloud.example.com/"
	userHeader = "X-Test-User"
)

type testAPI struct {
	store    *storage.MemoryStore
	provider *credentials.MemoryProvider
	state    *statecodec.Service
	files    *mocks.MockFileResolver
	shares   *mocks.MockShareManager
	perms    *mocks.MockPermissionManager
	events   *mocks.MockEventDispatcher
	logins   *credmocks.MockLoginStore
	manager  *tokens.Manager
	router   http.Handler
}

// withTestIdentity authenticates the caller named in userHeader.
func withTestIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sub := r.Header.Get(userHeader); sub != "" {
			r = r.WithContext(auth.WithIdentity(r.Context(), &auth.Identity{Subject: sub}))
		}
		next.ServeHTTP(w, r)
	})
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	ctrl := gomock.NewController(t)

	codec, err := statecodec.NewCodec([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)
	provider := credentials.NewMemoryProvider()
	state, err := statecodec.NewService(codec, provider)
	require.NoError(t, err)

	a := &testAPI{
		store:    storage.NewMemoryStore(),
		provider: provider,
		state:    state,
		files:    mocks.NewMockFileResolver(ctrl),
		shares:   mocks.NewMockShareManager(ctrl),
		perms:    mocks.NewMockPermissionManager(ctrl),
		events:   mocks.NewMockEventDispatcher(ctrl),
		logins:   credmocks.NewMockLoginStore(ctrl),
	}
	urls := mocks.NewMockURLGenerator(ctrl)
	urls.EXPECT().AbsoluteURL("/").Return(serverHost).AnyTimes()

	a.manager, err = tokens.NewManager(tokens.Deps{
		Store:       a.store,
		Files:       a.files,
		Shares:      a.shares,
		Permissions: a.perms,
		Events:      a.events,
		URLs:        urls,
		Credentials: state,
		Logins:      a.logins,
	})
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(withTestIdentity)
	r.Mount("/tokens", TokenRouter(a.manager, state, a.logins, false))
	r.Mount("/federation", FederationRouter(a.manager, a.store))
	r.Mount("/state", StateRouter(state))
	r.Mount("/session", SessionRouter(state, false))
	a.router = r
	return a
}

func (a *testAPI) do(t *testing.T, method, path, user string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if user != "" {
		req.Header.Set(userHeader, user)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decodeToken(t *testing.T, rec *httptest.ResponseRecorder) tokenResponse {
	t.Helper()
	var resp tokenResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp), rec.Body.String())
	require.NotNil(t, resp.Token)
	return resp
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) apierrors.Response {
	t.Helper()
	var resp apierrors.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp), rec.Body.String())
	return resp
}

func (a *testAPI) seed(t *testing.T, tok *wopi.Token) {
	t.Helper()
	if tok.Expiry.IsZero() {
		tok.Expiry = time.Now().Add(time.Hour).Truncate(time.Second)
	}
	_, err := a.store.Create(context.Background(), tok)
	require.NoError(t, err)
}

func TestIssueToken_AuthenticatedUser(t *testing.T) {
	t.Parallel()
	a := newTestAPI(t)

	node := tokens.Node{ID: 42, OwnerUID: "alice", Readable: true, Updatable: true, Authenticated: true}
	a.files.EXPECT().NodesByID(gomock.Any(), "alice", int64(42)).Return([]tokens.Node{node}, nil).Times(2)
	a.perms.EXPECT().UserCanEdit(gomock.Any(), "alice").Return(true, nil)
	a.perms.EXPECT().IsEnabledForUser(gomock.Any(), "alice").Return(true, nil)
	a.events.EXPECT().BeforeNodeRead(gomock.Any(), node).Return(nil)
	a.logins.EXPECT().LoginCredentials(gomock.Any(), "alice").
		Return(&credentials.Login{UID: "alice", Password: "pw"}, nil).Times(2)

	rec := a.do(t, http.MethodPost, "/tokens", "alice", map[string]any{"fileRef": "42_ocinst"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	resp := decodeToken(t, rec)
	assert.Equal(t, wopi.TokenTypeUser, resp.Token.TokenType)
	assert.Equal(t, "alice", resp.Token.EditorUID)
	assert.True(t, resp.Token.CanWrite)
	assert.True(t, resp.Token.SessionCredential)
	require.NotNil(t, resp.Document)
	assert.Equal(t, resp.Token.Token, resp.Document.Wopi.Token)
	assert.Equal(t, statecodec.DefaultTheme, resp.Document.Theme)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, statecodec.CookieName, cookies[0].Name)

	state, err := a.state.Decode(resp.Document.State)
	require.NoError(t, err)
	assert.Equal(t, cookies[0].Value, state[statecodec.StateKeyPassphrase])

	ctx := context.Background()
	browser, err := a.provider.GetByPassphrase(ctx, cookies[0].Value)
	require.NoError(t, err)
	assert.Equal(t, resp.Token.Token, browser.OwnerID)

	bound, err := a.provider.GetByPassphrase(ctx, credentials.TokenPassphrase("alice", resp.Token.Token))
	require.NoError(t, err)
	assert.Equal(t, "alice", bound.LoginName)
}

func TestIssueToken_AnonymousShare(t *testing.T) {
	t.Parallel()
	a := newTestAPI(t)

	node := tokens.Node{ID: 42, OwnerUID: "carol", Readable: true, Updatable: true}
	a.shares.EXPECT().ShareByToken(gomock.Any(), "s1").
		Return(&tokens.Share{Token: "s1", Owner: "carol", Permissions: tokens.PermissionRead}, nil)
	a.perms.EXPECT().UserCanEdit(gomock.Any(), "carol").Return(true, nil)
	a.files.EXPECT().NodesByID(gomock.Any(), "carol", int64(42)).Return([]tokens.Node{node}, nil)
	a.perms.EXPECT().IsEnabledForUser(gomock.Any(), "carol").Return(true, nil)
	a.events.EXPECT().BeforeNodeRead(gomock.Any(), node).Return(nil)

	rec := a.do(t, http.MethodPost, "/tokens", "", map[string]any{
		"fileRef": "42", "shareToken": "s1", "guestName": "Bob",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	resp := decodeToken(t, rec)
	assert.Equal(t, wopi.TokenTypeGuest, resp.Token.TokenType)
	assert.Equal(t, "Bob (Guest)", resp.Token.GuestDisplayName)
	assert.False(t, resp.Token.CanWrite)
	assert.Equal(t, "carol", resp.Token.OwnerUID)
	assert.Equal(t, "s1", resp.Token.ShareToken)

	creds, err := a.provider.ListByOwner(context.Background(), resp.Token.Token)
	require.NoError(t, err)
	assert.Empty(t, creds)
}

func TestIssueToken_LoginLookupFailureStillIssues(t *testing.T) {
	t.Parallel()
	a := newTestAPI(t)

	node := tokens.Node{ID: 7, OwnerUID: "alice", Readable: true, Authenticated: true}
	a.logins.EXPECT().LoginCredentials(gomock.Any(), "alice").Return(nil, assert.AnError).Times(2)
	a.files.EXPECT().NodesByID(gomock.Any(), "alice", int64(7)).Return([]tokens.Node{node}, nil).Times(2)
	a.perms.EXPECT().UserCanEdit(gomock.Any(), "alice").Return(true, nil)
	a.perms.EXPECT().IsEnabledForUser(gomock.Any(), "alice").Return(true, nil)
	a.events.EXPECT().BeforeNodeRead(gomock.Any(), node).Return(nil)

	rec := a.do(t, http.MethodPost, "/tokens", "alice", map[string]any{"fileRef": "7"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	resp := decodeToken(t, rec)
	assert.False(t, resp.Token.CanWrite)

	creds, err := a.provider.ListByOwner(context.Background(), resp.Token.Token)
	require.NoError(t, err)
	assert.Empty(t, creds)
}

func TestIssueToken_PlainMountNeedsNoLogin(t *testing.T) {
	t.Parallel()
	a := newTestAPI(t)

	// The login store is never consulted: no LoginCredentials expectation.
	node := tokens.Node{ID: 42, OwnerUID: "alice", Readable: true, Updatable: true}
	a.files.EXPECT().NodesByID(gomock.Any(), "alice", int64(42)).Return([]tokens.Node{node}, nil).Times(2)
	a.perms.EXPECT().UserCanEdit(gomock.Any(), "alice").Return(true, nil)
	a.perms.EXPECT().IsEnabledForUser(gomock.Any(), "alice").Return(true, nil)
	a.events.EXPECT().BeforeNodeRead(gomock.Any(), node).Return(nil)

	rec := a.do(t, http.MethodPost, "/tokens", "alice", map[string]any{"fileRef": "42"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	resp := decodeToken(t, rec)
	assert.False(t, resp.Token.SessionCredential)
	require.NotNil(t, resp.Document)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	_, err := a.provider.GetByPassphrase(context.Background(), cookies[0].Value)
	assert.ErrorIs(t, err, credentials.ErrNotFound)

	creds, err := a.provider.ListByOwner(context.Background(), resp.Token.Token)
	require.NoError(t, err)
	assert.Empty(t, creds)
}

func TestIssueToken_AnonymousCannotNameAnEditor(t *testing.T) {
	t.Parallel()
	a := newTestAPI(t)

	// No collaborator expectations: nothing may be resolved on behalf of alice.
	rec := a.do(t, http.MethodPost, "/tokens", "", map[string]any{"fileRef": "42", "editorUid": "alice"})
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	assert.Equal(t, "invalid_argument", decodeError(t, rec).Error)

	rec = a.do(t, http.MethodPost, "/tokens", "", map[string]any{"fileRef": "42"})
	assert.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())
	assert.Equal(t, "permission_denied", decodeError(t, rec).Error)
}

func TestIssueSaveAsToken(t *testing.T) {
	t.Parallel()

	t.Run("editor of the open document", func(t *testing.T) {
		t.Parallel()
		a := newTestAPI(t)
		a.seed(t, &wopi.Token{Token: "parent", FileID: 1, OwnerUID: "alice", EditorUID: "alice", TokenType: wopi.TokenTypeUser})

		node := tokens.Node{ID: 43, OwnerUID: "alice", Readable: true, Updatable: true}
		a.files.EXPECT().NodesByID(gomock.Any(), "alice", int64(43)).Return([]tokens.Node{node}, nil).Times(2)
		a.perms.EXPECT().UserCanEdit(gomock.Any(), "alice").Return(true, nil)
		a.perms.EXPECT().IsEnabledForUser(gomock.Any(), "alice").Return(true, nil)
		a.events.EXPECT().BeforeNodeRead(gomock.Any(), node).Return(nil)

		rec := a.do(t, http.MethodPost, "/tokens/save-as", "alice", map[string]any{"accessToken": "parent", "fileRef": "43"})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		tok := decodeToken(t, rec).Token
		assert.Equal(t, wopi.TokenTypeUser, tok.TokenType)
		assert.Equal(t, "alice", tok.EditorUID)
		assert.Equal(t, int64(43), tok.FileID)
		assert.True(t, tok.CanWrite)
	})

	tests := []struct {
		name     string
		user     string
		body     any
		wantCode int
		wantType string
	}{
		{
			name:     "anonymous",
			body:     map[string]any{"accessToken": "parent", "fileRef": "43"},
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "another user's session",
			user:     "mallory",
			body:     map[string]any{"accessToken": "parent", "fileRef": "43"},
			wantCode: http.StatusForbidden,
			wantType: "permission_denied",
		},
		{
			name:     "unknown session",
			user:     "alice",
			body:     map[string]any{"accessToken": "missing", "fileRef": "43"},
			wantCode: http.StatusUnauthorized,
			wantType: "invalid_token",
		},
		{
			name:     "editor in body",
			user:     "mallory",
			body:     map[string]any{"accessToken": "parent", "fileRef": "43", "editorUid": "alice"},
			wantCode: http.StatusBadRequest,
			wantType: "invalid_argument",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			a := newTestAPI(t)
			a.seed(t, &wopi.Token{Token: "parent", FileID: 1, OwnerUID: "alice", EditorUID: "alice", TokenType: wopi.TokenTypeUser})

			rec := a.do(t, http.MethodPost, "/tokens/save-as", tt.user, tt.body)
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			if tt.wantType != "" {
				assert.Equal(t, tt.wantType, decodeError(t, rec).Error)
			}
		})
	}
}

func TestIssueToken_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		user     string
		body     any
		setup    func(a *testAPI)
		wantCode int
		wantType string
	}{
		{
			name:     "malformed body",
			body:     "{",
			wantCode: http.StatusBadRequest,
			wantType: "invalid_argument",
		},
		{
			name:     "unknown field",
			body:     map[string]any{"fileRef": "1", "owner": "mallory"},
			wantCode: http.StatusBadRequest,
			wantType: "invalid_argument",
		},
		{
			name:     "bad file reference",
			body:     map[string]any{"fileRef": "abc"},
			wantCode: http.StatusBadRequest,
			wantType: "invalid_argument",
		},
		{
			name: "unreadable file",
			user: "alice",
			body: map[string]any{"fileRef": "9"},
			setup: func(a *testAPI) {
				a.files.EXPECT().NodesByID(gomock.Any(), "alice", int64(9)).Return(nil, nil).Times(2)
				a.perms.EXPECT().UserCanEdit(gomock.Any(), "alice").Return(true, nil)
			},
			wantCode: http.StatusForbidden,
			wantType: "permission_denied",
		},
		{
			name: "share without read access",
			body: map[string]any{"fileRef": "9", "shareToken": "drop"},
			setup: func(a *testAPI) {
				a.shares.EXPECT().ShareByToken(gomock.Any(), "drop").
					Return(&tokens.Share{Token: "drop", Owner: "carol", Permissions: 4}, nil)
			},
			wantCode: http.StatusNotFound,
			wantType: "not_found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			a := newTestAPI(t)
			if tt.setup != nil {
				tt.setup(a)
			}
			rec := a.do(t, http.MethodPost, "/tokens", tt.user, tt.body)
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantType, decodeError(t, rec).Error)
		})
	}
}

func TestIssueTemplateToken(t *testing.T) {
	t.Parallel()
	a := newTestAPI(t)

	target := tokens.Node{ID: 100, OwnerUID: "alice", Readable: true, Updatable: true}
	a.files.EXPECT().NodesByID(gomock.Any(), "alice", int64(100)).Return([]tokens.Node{target}, nil)

	rec := a.do(t, http.MethodPost, "/tokens/template", "alice", map[string]any{"templateId": 5, "targetFileId": 100})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	resp := decodeToken(t, rec)
	assert.Equal(t, wopi.TokenTypeUser, resp.Token.TokenType)
	assert.Equal(t, "alice", resp.Token.OwnerUID)
	assert.Equal(t, int64(5), resp.Token.TemplateID)
	assert.True(t, resp.Token.CanWrite)

	mapping, err := a.store.GetTemplateMapping(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, int64(5), mapping.TemplateID)
}

func TestIssueTemplateToken_ThroughReadOnlyShare(t *testing.T) {
	t.Parallel()
	a := newTestAPI(t)

	a.shares.EXPECT().ShareByToken(gomock.Any(), "s1").
		Return(&tokens.Share{Token: "s1", Owner: "alice", Permissions: tokens.PermissionRead}, nil)
	target := tokens.Node{ID: 100, OwnerUID: "alice", Readable: true, Updatable: true}
	a.files.EXPECT().NodesByID(gomock.Any(), "alice", int64(100)).Return([]tokens.Node{target}, nil)

	rec := a.do(t, http.MethodPost, "/tokens/template", "", map[string]any{
		"templateId": 5, "targetFileId": 100, "shareToken": "s1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	resp := decodeToken(t, rec)
	assert.Equal(t, wopi.TokenTypeGuest, resp.Token.TokenType)
	assert.Equal(t, "alice", resp.Token.OwnerUID)
	assert.Empty(t, resp.Token.EditorUID)
	assert.False(t, resp.Token.CanWrite)
}

func TestIssueTemplateToken_CallerCannotPickOwner(t *testing.T) {
	t.Parallel()
	a := newTestAPI(t)

	rec := a.do(t, http.MethodPost, "/tokens/template", "mallory", map[string]any{
		"templateId": 5, "targetFileId": 100, "ownerUid": "alice",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	rec = a.do(t, http.MethodPost, "/tokens/template", "mallory", map[string]any{
		"templateId": 5, "targetFileId": 100, "sharePermissions": tokens.PermissionUpdate,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
}

func TestIssueTemplateToken_AnonymousNeedsShare(t *testing.T) {
	t.Parallel()
	a := newTestAPI(t)

	rec := a.do(t, http.MethodPost, "/tokens/template", "", map[string]any{"templateId": 5, "targetFileId": 100})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "permission_denied", decodeError(t, rec).Error)
}

func TestUpdateGuestName(t *testing.T) {
	t.Parallel()
	a := newTestAPI(t)
	a.seed(t, &wopi.Token{Token: "guest1", FileID: 1, OwnerUID: "carol", TokenType: wopi.TokenTypeGuest})
	a.seed(t, &wopi.Token{Token: "user1", FileID: 1, OwnerUID: "carol", EditorUID: "carol", TokenType: wopi.TokenTypeUser})

	rec := a.do(t, http.MethodPut, "/tokens/guest1/guest-name", "", map[string]string{"name": "<Eve>"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "&lt;Eve&gt; (Guest)", decodeToken(t, rec).Token.GuestDisplayName)

	rec = a.do(t, http.MethodPut, "/tokens/user1/guest-name", "", map[string]string{"name": "Eve"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeToken(t, rec).Token.GuestDisplayName)

	rec = a.do(t, http.MethodPut, "/tokens/missing/guest-name", "", map[string]string{"name": "Eve"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid_token", decodeError(t, rec).Error)
}
