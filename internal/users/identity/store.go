// Copyright (c) 2026 Trailhead. All rights reserved.
// Author: dev@trailhead.app

package identity

import (
	"context"
	"time"

	"github.com/trailhead-app/trailhead/pkg/query"
)

// # Identity Data Access

// Store defines the data access contract for identities. Lookups only ever
// return active accounts; deactivated rows stay in the table but are
// invisible to the API.
type Store interface {

	/*
		Create persists a brand-new identity.

		Parameters:
		  - context: context.Context
		  - identity: *Identity

		Returns:
		  - error: Persistence failures (Conflict on duplicate email)
	*/
	Create(context context.Context, identity *Identity) error

	/*
		FindByID returns the active identity with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *Identity: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByID(context context.Context, id string) (*Identity, error)

	/*
		FindByEmail returns the active identity with the given email.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - *Identity: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByEmail(context context.Context, email string) (*Identity, error)

	/*
		UpdateProfile persists changes to the mutable profile fields (name,
		email, photo, role). Self-service callers never alter the role;
		only the admin CRUD writes a changed value.

		Parameters:
		  - context: context.Context
		  - identity: *Identity

		Returns:
		  - error: Persistence failures (Conflict on duplicate email)
	*/
	UpdateProfile(context context.Context, identity *Identity) error

	/*
		UpdatePassword replaces the password hash and stamps the change
		moment that invalidates previously issued tokens.

		Parameters:
		  - context: context.Context
		  - id: string
		  - newHash: string
		  - changedAt: time.Time

		Returns:
		  - error: Persistence failures
	*/
	UpdatePassword(context context.Context, id, newHash string, changedAt time.Time) error

	/*
		SetResetToken stores the hashed reset token and its expiry on the
		identity row, replacing any outstanding token.

		Parameters:
		  - context: context.Context
		  - id: string
		  - tokenHash: string
		  - expiresAt: time.Time

		Returns:
		  - error: Persistence failures
	*/
	SetResetToken(context context.Context, id, tokenHash string, expiresAt time.Time) error

	/*
		ClearResetToken removes any outstanding reset token. Called when
		delivery of the reset email fails.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: Persistence failures
	*/
	ClearResetToken(context context.Context, id string) error

	/*
		ConsumeResetToken atomically claims the unexpired reset token
		matching tokenHash: it installs the new password hash, stamps the
		change moment, and clears the token in one statement. The claim
		fails when the token is unknown, expired, or already used.

		Parameters:
		  - context: context.Context
		  - tokenHash: string
		  - newHash: string
		  - now: time.Time

		Returns:
		  - *Identity: The identity whose password was reset
		  - error: Not-found when no claimable token matches
	*/
	ConsumeResetToken(context context.Context, tokenHash, newHash string, now time.Time) (*Identity, error)

	/*
		Search executes a parsed listing specification over active
		identities.

		Parameters:
		  - context: context.Context
		  - spec: query.Spec
		  - base: scoping filters

		Returns:
		  - []map[string]any: Selected columns per row
		  - error: Database retrieval failures
	*/
	Search(context context.Context, spec query.Spec, base ...query.Filter) ([]map[string]any, error)

	/*
		SoftDelete marks the identity inactive without removing the row.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: Persistence failures
	*/
	SoftDelete(context context.Context, id string) error
}
