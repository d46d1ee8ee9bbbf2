// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package credentials

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryProvider implements Provider with in-memory maps.
type MemoryProvider struct {
	mu sync.RWMutex

	// credentials maps id -> credential.
	credentials map[string]*Credential

	// byPassphrase maps passphrase -> id.
	byPassphrase map[string]string
}

var _ Provider = (*MemoryProvider)(nil)

// NewMemoryProvider creates an empty MemoryProvider.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{
		credentials:  make(map[string]*Credential),
		byPassphrase: make(map[string]string),
	}
}

// GetByPassphrase returns the credential for passphrase.
func (p *MemoryProvider) GetByPassphrase(_ context.Context, passphrase string) (*Credential, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	id, ok := p.byPassphrase[passphrase]
	if !ok {
		return nil, ErrNotFound
	}
	c := *p.credentials[id]
	return &c, nil
}

// Generate mints a new credential, replacing any previous one for passphrase.
func (p *MemoryProvider) Generate(
	_ context.Context, passphrase, ownerID, loginName, secret, label string,
) (*Credential, error) {
	if passphrase == "" {
		return nil, errors.New("passphrase cannot be empty")
	}

	c := &Credential{
		ID:         uuid.NewString(),
		Passphrase: passphrase,
		OwnerID:    ownerID,
		LoginName:  loginName,
		Secret:     secret,
		Label:      label,
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if old, ok := p.byPassphrase[passphrase]; ok {
		delete(p.credentials, old)
	}
	p.credentials[c.ID] = c
	p.byPassphrase[passphrase] = c.ID

	out := *c
	return &out, nil
}

// Update persists activity, expiry and label changes.
func (p *MemoryProvider) Update(_ context.Context, credential *Credential) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	stored, ok := p.credentials[credential.ID]
	if !ok {
		return ErrNotFound
	}
	stored.Label = credential.Label
	stored.LastActivity = credential.LastActivity
	stored.Expires = credential.Expires
	return nil
}

// ListByOwner returns every credential owned by ownerID, ordered by id.
func (p *MemoryProvider) ListByOwner(_ context.Context, ownerID string) ([]*Credential, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var out []*Credential
	for _, c := range p.credentials {
		if c.OwnerID == ownerID {
			listed := *c
			listed.Passphrase = ""
			listed.Secret = ""
			out = append(out, &listed)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Invalidate revokes a credential owned by ownerID.
func (p *MemoryProvider) Invalidate(_ context.Context, ownerID, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	c, ok := p.credentials[id]
	if !ok || c.OwnerID != ownerID {
		return ErrNotFound
	}
	delete(p.credentials, id)
	delete(p.byPassphrase, c.Passphrase)
	return nil
}
