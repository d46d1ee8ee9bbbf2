// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package credentials

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/stacklok/wopibroker/pkg/errors"
	"github.com/stacklok/wopibroker/pkg/wopi"
)

// LabelPrefix prefixes the label of every credential minted for a token.
const LabelPrefix = "wopi_token_"

// TokenPassphrase returns the passphrase of the credential bound to uid and token.
func TokenPassphrase(uid, token string) string {
	return uid + "@" + token
}

// Provision looks up the credential for passphrase, minting one bound to
// login when absent, and pins its activity and expiry clocks to the token
// expiry. The credential is owned by the access token so that the
// reconciler can revoke it together with the token record.
//
// A credential of another login is never handed out; Provision fails with
// ErrLoginMismatch instead. A credential of the same login owned by an
// older token is revoked and minted again for token.
func Provision(ctx context.Context, p Provider, passphrase string, token *wopi.Token, login *Login) (*Credential, error) {
	if login == nil || login.UID == "" {
		return nil, apperrors.NewCredentialProvisionError("no login credentials available", nil)
	}

	cred, err := p.GetByPassphrase(ctx, passphrase)
	switch {
	case errors.Is(err, ErrNotFound):
		cred, err = generate(ctx, p, passphrase, token, login)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, apperrors.NewCredentialProvisionError("failed to look up credential", err)
	case cred.LoginName != login.UID:
		return nil, apperrors.NewCredentialProvisionError(
			fmt.Sprintf("credential %s belongs to another login", cred.ID), ErrLoginMismatch)
	case cred.OwnerID != token.Token:
		if err := p.Invalidate(ctx, cred.OwnerID, cred.ID); err != nil && !errors.Is(err, ErrNotFound) {
			return nil, apperrors.NewCredentialProvisionError(
				fmt.Sprintf("failed to revoke credential %s", cred.ID), err)
		}
		cred, err = generate(ctx, p, passphrase, token, login)
		if err != nil {
			return nil, err
		}
	}

	cred.LastActivity = token.Expiry
	cred.Expires = token.Expiry
	if err := p.Update(ctx, cred); err != nil {
		return nil, apperrors.NewCredentialProvisionError(fmt.Sprintf("failed to update credential %s", cred.ID), err)
	}
	return cred, nil
}

func generate(ctx context.Context, p Provider, passphrase string, token *wopi.Token, login *Login) (*Credential, error) {
	cred, err := p.Generate(ctx, passphrase, token.Token, login.UID, login.Password, LabelPrefix+token.Token)
	if err != nil {
		return nil, apperrors.NewCredentialProvisionError("failed to generate credential", err)
	}
	return cred, nil
}
