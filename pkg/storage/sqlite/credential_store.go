// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package sqlite

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/stacklok/wopibroker/pkg/credentials"
	"github.com/stacklok/wopibroker/pkg/crypto"
)

// CredentialStore implements credentials.Provider using SQLite. Passphrases
// are stored as SHA-256 digests and secrets are sealed at rest.
type CredentialStore struct {
	db     *sql.DB
	sealer *crypto.Sealer
}

var _ credentials.Provider = (*CredentialStore)(nil)

// NewCredentialStore creates a credential store on db. The caller keeps
// ownership of db.
func NewCredentialStore(db *DB, sealer *crypto.Sealer) *CredentialStore {
	return &CredentialStore{db: db.DB(), sealer: sealer}
}

func hashPassphrase(passphrase string) string {
	sum := sha256.Sum256([]byte(passphrase))
	return hex.EncodeToString(sum[:])
}

// GetByPassphrase returns the credential for passphrase.
func (s *CredentialStore) GetByPassphrase(ctx context.Context, passphrase string) (*credentials.Credential, error) {
	hash := hashPassphrase(passphrase)

	var (
		c                     credentials.Credential
		sealed                []byte
		lastActivity, expires int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, owner_id, login_name, secret, label, last_activity, expires
		FROM wopi_credentials WHERE passphrase_hash = ?`, hash,
	).Scan(&c.ID, &c.OwnerID, &c.LoginName, &sealed, &c.Label, &lastActivity, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, credentials.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying credential: %w", err)
	}

	secret, err := s.sealer.OpenBlob(sealed, []byte(hash))
	if err != nil {
		return nil, fmt.Errorf("unsealing credential %s: %w", c.ID, err)
	}

	c.Passphrase = passphrase
	c.Secret = string(secret)
	c.LastActivity = fromUnix(lastActivity)
	c.Expires = fromUnix(expires)
	return &c, nil
}

// Generate mints a new credential, replacing any previous one for passphrase.
func (s *CredentialStore) Generate(
	ctx context.Context, passphrase, ownerID, loginName, secret, label string,
) (*credentials.Credential, error) {
	if passphrase == "" {
		return nil, errors.New("passphrase cannot be empty")
	}
	hash := hashPassphrase(passphrase)

	sealed, err := s.sealer.SealBlob([]byte(secret), []byte(hash))
	if err != nil {
		return nil, fmt.Errorf("sealing credential secret: %w", err)
	}

	c := &credentials.Credential{
		ID:         uuid.NewString(),
		Passphrase: passphrase,
		OwnerID:    ownerID,
		LoginName:  loginName,
		Secret:     secret,
		Label:      label,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer rollback(tx)

	if _, err := tx.ExecContext(ctx, `DELETE FROM wopi_credentials WHERE passphrase_hash = ?`, hash); err != nil {
		return nil, fmt.Errorf("replacing credential: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO wopi_credentials (id, passphrase_hash, owner_id, login_name, secret, label)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, hash, ownerID, loginName, sealed, label,
	); err != nil {
		return nil, fmt.Errorf("inserting credential: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing credential: %w", err)
	}
	return c, nil
}

// Update persists activity, expiry and label changes.
func (s *CredentialStore) Update(ctx context.Context, c *credentials.Credential) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE wopi_credentials SET label = ?, last_activity = ?, expires = ? WHERE id = ?`,
		c.Label, toUnix(c.LastActivity), toUnix(c.Expires), c.ID,
	)
	if err != nil {
		return fmt.Errorf("updating credential: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return credentials.ErrNotFound
	}
	return nil
}

// ListByOwner returns every credential owned by ownerID without secrets.
func (s *CredentialStore) ListByOwner(ctx context.Context, ownerID string) ([]*credentials.Credential, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner_id, login_name, label, last_activity, expires
		FROM wopi_credentials WHERE owner_id = ? ORDER BY id`, ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing credentials: %w", err)
	}
	defer rows.Close()

	var out []*credentials.Credential
	for rows.Next() {
		var (
			c                     credentials.Credential
			lastActivity, expires int64
		)
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.LoginName, &c.Label, &lastActivity, &expires); err != nil {
			return nil, fmt.Errorf("scanning credential: %w", err)
		}
		c.LastActivity = fromUnix(lastActivity)
		c.Expires = fromUnix(expires)
		out = append(out, &c)
	}
	return out, rows.Err()
}

// Invalidate revokes a credential owned by ownerID.
func (s *CredentialStore) Invalidate(ctx context.Context, ownerID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM wopi_credentials WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("invalidating credential: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return credentials.ErrNotFound
	}
	return nil
}

func toUnix(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

func fromUnix(v int64) time.Time {
	if v == 0 {
		return time.Time{}
	}
	return time.Unix(v, 0).UTC()
}
