// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/stacklok/wopibroker/pkg/wopi"
)

// MemoryStore implements Store with in-memory maps.
// It is thread-safe and suitable for single-instance deployments and tests.
type MemoryStore struct {
	mu sync.RWMutex

	// tokens maps access token -> record.
	tokens map[string]*wopi.Token

	// templates maps target file id -> mapping.
	templates map[int64]wopi.TemplateMapping

	now func() time.Time
}

var _ Store = (*MemoryStore)(nil)

// MemoryStoreOption configures a MemoryStore instance.
type MemoryStoreOption func(*MemoryStore)

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) MemoryStoreOption {
	return func(s *MemoryStore) {
		s.now = now
	}
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	s := &MemoryStore{
		tokens:    make(map[string]*wopi.Token),
		templates: make(map[int64]wopi.TemplateMapping),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close is a no-op for in-memory storage.
func (*MemoryStore) Close() error {
	return nil
}

// Create stores a new token record.
func (s *MemoryStore) Create(_ context.Context, token *wopi.Token) (string, error) {
	if token == nil || token.Token == "" {
		return "", fmt.Errorf("token cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tokens[token.Token]; exists {
		return "", ErrAlreadyExists
	}
	s.tokens[token.Token] = token.Clone()
	return token.Token, nil
}

// Update replaces an existing token record.
func (s *MemoryStore) Update(_ context.Context, token *wopi.Token) error {
	if token == nil {
		return fmt.Errorf("token cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tokens[token.Token]; !exists {
		return UnknownTokenError(token.Token)
	}
	s.tokens[token.Token] = token.Clone()
	return nil
}

// GetByToken loads a token record.
func (s *MemoryStore) GetByToken(_ context.Context, token string) (*wopi.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.tokens[token]
	if !ok {
		return nil, UnknownTokenError(token)
	}
	if record.IsExpired(s.now()) {
		return nil, ExpiredTokenError(token)
	}
	return record.Clone(), nil
}

// GetExpired returns up to limit expired token identifiers, oldest first.
func (s *MemoryStore) GetExpired(_ context.Context, limit int) ([]string, error) {
	now := s.now()

	s.mu.RLock()
	expired := make([]*wopi.Token, 0)
	for _, record := range s.tokens {
		if record.IsExpired(now) {
			expired = append(expired, record)
		}
	}
	s.mu.RUnlock()

	sort.Slice(expired, func(i, j int) bool {
		if expired[i].Expiry.Equal(expired[j].Expiry) {
			return expired[i].Token < expired[j].Token
		}
		return expired[i].Expiry.Before(expired[j].Expiry)
	})

	if limit > 0 && len(expired) > limit {
		expired = expired[:limit]
	}
	ids := make([]string, len(expired))
	for i, record := range expired {
		ids[i] = record.Token
	}
	return ids, nil
}

// DeleteByIDs removes the given token records.
func (s *MemoryStore) DeleteByIDs(_ context.Context, ids []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	for _, id := range ids {
		if _, ok := s.tokens[id]; ok {
			delete(s.tokens, id)
			deleted++
		}
	}
	return deleted, nil
}

// PutTemplateMapping stores or replaces the mapping for a file.
func (s *MemoryStore) PutTemplateMapping(_ context.Context, mapping wopi.TemplateMapping) error {
	if mapping.Timestamp.IsZero() {
		mapping.Timestamp = s.now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.templates[mapping.FileID] = mapping
	return nil
}

// GetTemplateMapping returns the mapping for a file.
func (s *MemoryStore) GetTemplateMapping(_ context.Context, fileID int64) (wopi.TemplateMapping, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	mapping, ok := s.templates[fileID]
	if !ok {
		return wopi.TemplateMapping{}, ErrNotFound
	}
	return mapping, nil
}

// DeleteTemplateMappingsBefore removes mappings created at or before cutoff.
func (s *MemoryStore) DeleteTemplateMappingsBefore(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	for id, mapping := range s.templates {
		if !mapping.Timestamp.After(cutoff) {
			delete(s.templates, id)
			deleted++
		}
	}
	return deleted, nil
}
