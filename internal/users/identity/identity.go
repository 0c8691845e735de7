// Copyright (c) 2026 Trailhead. All rights reserved.
// Author: dev@trailhead.app

/*
Package identity implements user accounts and profile management.

It owns the Identity entity and its persistence, plus the self-service
profile operations (view, update, deactivate) and the admin-only account
CRUD. Credential flows (signup, login, password reset) live in the auth
package, which builds on this package's store.

# Architecture

This layer is the "Truth" for who exists in the system. The entity carries
the credential material (password hash, reset token hash) but never lets it
serialize; everything that leaves the API is a projection of the public
fields.
*/
package identity

import (
	"strings"
	"time"

	"github.com/trailhead-app/trailhead/internal/platform/sec"
)

// NormalizeEmail canonicalizes an email address for storage and lookup.
// Every path that touches the email column goes through this, so
// "Jo@Example.com" and "jo@example.com" are the same account.
func NormalizeEmail(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// # Domain Entity

// Identity represents a registered member of the Trailhead platform.
type Identity struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Photo string   `json:"photo,omitempty"`
	Role  sec.Role `json:"role"`

	// PasswordHash is the bcrypt digest. Never serialized.
	PasswordHash string `json:"-"`

	// Active is false for deactivated accounts. Inactive identities are
	// invisible to every lookup except reactivation tooling.
	Active bool `json:"-"`

	// PasswordChangedAt invalidates tokens issued before it. Nil when the
	// password has never changed since signup.
	PasswordChangedAt *time.Time `json:"-"`

	// ResetTokenHash and ResetTokenExpiresAt hold the at-rest form of an
	// outstanding password reset token. Never serialized.
	ResetTokenHash      string     `json:"-"`
	ResetTokenExpiresAt *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ChangedPasswordAfter reports whether the password changed after the given
// moment. Used to invalidate session tokens issued before a password change.
func (identity *Identity) ChangedPasswordAfter(moment time.Time) bool {
	if identity.PasswordChangedAt == nil {
		return false
	}
	return identity.PasswordChangedAt.After(moment)
}

// # Field Identifiers

// Field names shared by validation and response shaping.
const (
	FieldName            = "name"
	FieldEmail           = "email"
	FieldPhoto           = "photo"
	FieldRole            = "role"
	FieldPassword        = "password"
	FieldPasswordConfirm = "password_confirm"
)
