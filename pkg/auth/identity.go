// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"encoding/json"
	"fmt"
)

// Identity is the authenticated caller of the broker API.
type Identity struct {
	// Subject is the host account uid (from the 'sub' claim).
	Subject string

	// Name is the display name (from the 'name' claim).
	Name string

	// Claims preserves every claim of the bearer token.
	Claims map[string]any

	// Token is the raw bearer token. It is redacted in String and MarshalJSON.
	Token string
}

// String returns a representation of the Identity without the token.
func (i *Identity) String() string {
	if i == nil {
		return "<nil>"
	}
	return fmt.Sprintf("Identity{Subject:%q}", i.Subject)
}

// MarshalJSON redacts the bearer token.
func (i *Identity) MarshalJSON() ([]byte, error) {
	if i == nil {
		return []byte("null"), nil
	}

	type safeIdentity struct {
		Subject string         `json:"subject"`
		Name    string         `json:"name"`
		Claims  map[string]any `json:"claims"`
		Token   string         `json:"token"`
	}

	token := i.Token
	if token != "" {
		token = "REDACTED"
	}
	return json.Marshal(&safeIdentity{
		Subject: i.Subject,
		Name:    i.Name,
		Claims:  i.Claims,
		Token:   token,
	})
}
