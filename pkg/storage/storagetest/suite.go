// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package storagetest provides a behavioural test suite shared by every
// storage.Store backend.
package storagetest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/stacklok/wopibroker/pkg/errors"
	"github.com/stacklok/wopibroker/pkg/storage"
	"github.com/stacklok/wopibroker/pkg/wopi"
)

// Clock is a settable time source for expiry tests.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock returns a clock fixed at start.
func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

// Now returns the current fake time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Factory builds a fresh, empty store that reads time from clock.
type Factory func(t *testing.T, clock *Clock) storage.Store

// NewToken returns a valid user token expiring at expiry.
func NewToken(id string, expiry time.Time) *wopi.Token {
	return &wopi.Token{
		Token:      id,
		FileID:     42,
		Version:    3,
		OwnerUID:   "alice",
		EditorUID:  "alice",
		CanWrite:   true,
		ServerHost: "https://cloud.example.com/",
		TokenType:  wopi.TokenTypeUser,
		Expiry:     expiry,
	}
}

// Run executes the suite against the given factory.
func Run(t *testing.T, factory Factory) {
	t.Helper()

	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("create and get round trip", func(t *testing.T) {
		clock := NewClock(start)
		s := factory(t, clock)
		ctx := context.Background()

		tok := NewToken("tok-roundtrip", start.Add(time.Hour))
		tok.GuestDisplayName = "Bob (Guest)"
		tok.ShareToken = "share1"
		tok.TemplateID = 9
		tok.Direct = true
		tok.HideDownload = true
		tok.SessionCredential = true
		tok.RemoteServer = "https://remote.example.com"
		tok.RemoteServerToken = "remote-token"

		id, err := s.Create(ctx, tok)
		require.NoError(t, err)
		assert.Equal(t, "tok-roundtrip", id)

		got, err := s.GetByToken(ctx, "tok-roundtrip")
		require.NoError(t, err)
		if diff := cmp.Diff(tok, got); diff != "" {
			t.Errorf("token mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("duplicate create fails", func(t *testing.T) {
		s := factory(t, NewClock(start))
		ctx := context.Background()

		_, err := s.Create(ctx, NewToken("dup", start.Add(time.Hour)))
		require.NoError(t, err)
		_, err = s.Create(ctx, NewToken("dup", start.Add(time.Hour)))
		assert.ErrorIs(t, err, storage.ErrAlreadyExists)
	})

	t.Run("unknown and expired tokens are distinct", func(t *testing.T) {
		clock := NewClock(start)
		s := factory(t, clock)
		ctx := context.Background()

		_, err := s.GetByToken(ctx, "missing")
		assert.True(t, apperrors.IsInvalidToken(err), "got %v", err)

		_, err = s.Create(ctx, NewToken("short", start.Add(time.Minute)))
		require.NoError(t, err)
		clock.Advance(2 * time.Minute)

		_, err = s.GetByToken(ctx, "short")
		assert.True(t, apperrors.IsExpiredToken(err), "got %v", err)
	})

	t.Run("update persists changes", func(t *testing.T) {
		s := factory(t, NewClock(start))
		ctx := context.Background()

		tok := NewToken("upd", start.Add(time.Hour))
		_, err := s.Create(ctx, tok)
		require.NoError(t, err)

		tok.TokenType = wopi.TokenTypeInitiator
		tok.ServerHost = "https://partner.example.com/"
		tok.CanWrite = false
		require.NoError(t, s.Update(ctx, tok))

		got, err := s.GetByToken(ctx, "upd")
		require.NoError(t, err)
		assert.Equal(t, wopi.TokenTypeInitiator, got.TokenType)
		assert.Equal(t, "https://partner.example.com/", got.ServerHost)
		assert.False(t, got.CanWrite)

		err = s.Update(ctx, NewToken("ghost", start.Add(time.Hour)))
		assert.True(t, apperrors.IsInvalidToken(err), "got %v", err)
	})

	t.Run("expired listing is bounded and oldest first", func(t *testing.T) {
		clock := NewClock(start)
		s := factory(t, clock)
		ctx := context.Background()

		for i := range 5 {
			_, err := s.Create(ctx, NewToken(fmt.Sprintf("exp-%d", i), start.Add(time.Duration(i+1)*time.Minute)))
			require.NoError(t, err)
		}
		_, err := s.Create(ctx, NewToken("fresh", start.Add(time.Hour)))
		require.NoError(t, err)

		clock.Advance(10 * time.Minute)

		ids, err := s.GetExpired(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, []string{"exp-0", "exp-1", "exp-2"}, ids)

		all, err := s.GetExpired(ctx, 100)
		require.NoError(t, err)
		assert.Len(t, all, 5)
		assert.NotContains(t, all, "fresh")

		deleted, err := s.DeleteByIDs(ctx, all)
		require.NoError(t, err)
		assert.Equal(t, 5, deleted)

		remaining, err := s.GetExpired(ctx, 100)
		require.NoError(t, err)
		assert.Empty(t, remaining)

		_, err = s.GetByToken(ctx, "fresh")
		assert.NoError(t, err)
	})

	t.Run("delete with no ids", func(t *testing.T) {
		s := factory(t, NewClock(start))
		deleted, err := s.DeleteByIDs(context.Background(), nil)
		require.NoError(t, err)
		assert.Zero(t, deleted)
	})

	t.Run("template mappings", func(t *testing.T) {
		clock := NewClock(start)
		s := factory(t, clock)
		ctx := context.Background()

		require.NoError(t, s.PutTemplateMapping(ctx, wopi.TemplateMapping{FileID: 1, TemplateID: 10, Timestamp: start}))
		require.NoError(t, s.PutTemplateMapping(ctx, wopi.TemplateMapping{FileID: 2, TemplateID: 20, Timestamp: start.Add(2 * time.Minute)}))

		got, err := s.GetTemplateMapping(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(10), got.TemplateID)

		deleted, err := s.DeleteTemplateMappingsBefore(ctx, start.Add(time.Minute))
		require.NoError(t, err)
		assert.Equal(t, 1, deleted)

		_, err = s.GetTemplateMapping(ctx, 1)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		_, err = s.GetTemplateMapping(ctx, 2)
		assert.NoError(t, err)
	})
}
