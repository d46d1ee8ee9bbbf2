// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/stacklok/wopibroker/pkg/storage"
	"github.com/stacklok/wopibroker/pkg/wopi"
)

// Store implements storage.Store using SQLite.
type Store struct {
	wrapper *DB
	db      *sql.DB
	now     func() time.Time
}

var _ storage.Store = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates a token and template store on db. The store owns db and
// closes it on Close.
func NewStore(db *DB, opts ...Option) *Store {
	s := &Store{wrapper: db, db: db.DB(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.wrapper.Close()
}

const tokenColumns = `token, file_id, version, owner_uid, editor_uid, can_write, hide_download,
	server_host, guest_displayname, token_type, share_token, template_id, direct,
	remote_server, remote_server_token, expiry, session_credential`

// Create stores a new token record.
func (s *Store) Create(ctx context.Context, token *wopi.Token) (string, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO wopi_tokens (`+tokenColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		token.Token, token.FileID, token.Version, token.OwnerUID, token.EditorUID,
		boolToInt(token.CanWrite), boolToInt(token.HideDownload), token.ServerHost,
		token.GuestDisplayName, int(token.TokenType), token.ShareToken, token.TemplateID,
		boolToInt(token.Direct), token.RemoteServer, token.RemoteServerToken, token.Expiry.Unix(),
		boolToInt(token.SessionCredential),
	)
	if err != nil {
		if isConstraintViolation(err) {
			return "", storage.ErrAlreadyExists
		}
		return "", fmt.Errorf("inserting token: %w", err)
	}
	return token.Token, nil
}

// Update replaces every mutable field of an existing token record.
func (s *Store) Update(ctx context.Context, token *wopi.Token) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE wopi_tokens SET file_id = ?, version = ?, owner_uid = ?, editor_uid = ?,
			can_write = ?, hide_download = ?, server_host = ?, guest_displayname = ?,
			token_type = ?, share_token = ?, template_id = ?, direct = ?,
			remote_server = ?, remote_server_token = ?, expiry = ?, session_credential = ?
		WHERE token = ?`,
		token.FileID, token.Version, token.OwnerUID, token.EditorUID,
		boolToInt(token.CanWrite), boolToInt(token.HideDownload), token.ServerHost,
		token.GuestDisplayName, int(token.TokenType), token.ShareToken, token.TemplateID,
		boolToInt(token.Direct), token.RemoteServer, token.RemoteServerToken, token.Expiry.Unix(),
		boolToInt(token.SessionCredential), token.Token,
	)
	if err != nil {
		return fmt.Errorf("updating token: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return storage.UnknownTokenError(token.Token)
	}
	return nil
}

// GetByToken returns the record for token unless it is unknown or expired.
func (s *Store) GetByToken(ctx context.Context, token string) (*wopi.Token, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+tokenColumns+` FROM wopi_tokens WHERE token = ?`, token)

	var (
		t                              wopi.Token
		canWrite, hideDownload, direct int
		tokenType, sessionCredential   int
		expiry                         int64
	)
	err := row.Scan(&t.Token, &t.FileID, &t.Version, &t.OwnerUID, &t.EditorUID, &canWrite, &hideDownload,
		&t.ServerHost, &t.GuestDisplayName, &tokenType, &t.ShareToken, &t.TemplateID, &direct,
		&t.RemoteServer, &t.RemoteServerToken, &expiry, &sessionCredential)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.UnknownTokenError(token)
	}
	if err != nil {
		return nil, fmt.Errorf("querying token: %w", err)
	}

	t.CanWrite = canWrite != 0
	t.HideDownload = hideDownload != 0
	t.Direct = direct != 0
	t.SessionCredential = sessionCredential != 0
	t.TokenType = wopi.TokenType(tokenType)
	t.Expiry = time.Unix(expiry, 0).UTC()

	if t.IsExpired(s.now()) {
		return nil, storage.ExpiredTokenError(token)
	}
	return &t, nil
}

// GetExpired returns up to limit expired token identifiers, oldest first.
func (s *Store) GetExpired(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT token FROM wopi_tokens WHERE expiry <= ? ORDER BY expiry, token LIMIT ?`,
		s.now().Unix(), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying expired tokens: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning expired token: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// DeleteByIDs removes the given token records in a single statement.
func (s *Store) DeleteByIDs(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM wopi_tokens WHERE token IN (`+placeholders+`)`, args...)
	if err != nil {
		return 0, fmt.Errorf("deleting tokens: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}
	return int(n), nil
}

// PutTemplateMapping stores or replaces the mapping for a file.
func (s *Store) PutTemplateMapping(ctx context.Context, mapping wopi.TemplateMapping) error {
	if mapping.Timestamp.IsZero() {
		mapping.Timestamp = s.now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO wopi_templates (file_id, template_id, timestamp) VALUES (?, ?, ?)
		ON CONFLICT (file_id) DO UPDATE SET template_id = excluded.template_id, timestamp = excluded.timestamp`,
		mapping.FileID, mapping.TemplateID, mapping.Timestamp.Unix(),
	)
	if err != nil {
		return fmt.Errorf("storing template mapping: %w", err)
	}
	return nil
}

// GetTemplateMapping returns the mapping for a file.
func (s *Store) GetTemplateMapping(ctx context.Context, fileID int64) (wopi.TemplateMapping, error) {
	var (
		m  wopi.TemplateMapping
		ts int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT file_id, template_id, timestamp FROM wopi_templates WHERE file_id = ?`, fileID,
	).Scan(&m.FileID, &m.TemplateID, &ts)
	if errors.Is(err, sql.ErrNoRows) {
		return wopi.TemplateMapping{}, storage.ErrNotFound
	}
	if err != nil {
		return wopi.TemplateMapping{}, fmt.Errorf("querying template mapping: %w", err)
	}
	m.Timestamp = time.Unix(ts, 0).UTC()
	return m, nil
}

// DeleteTemplateMappingsBefore removes mappings created at or before cutoff.
func (s *Store) DeleteTemplateMappingsBefore(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM wopi_templates WHERE timestamp <= ?`, cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("deleting template mappings: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}
	return int(n), nil
}
