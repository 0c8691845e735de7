// Copyright (c) 2026 Trailhead. All rights reserved.
// Author: dev@trailhead.app

package identity

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trailhead-app/trailhead/internal/platform/dberr"
	"github.com/trailhead-app/trailhead/internal/platform/postgres"
	"github.com/trailhead-app/trailhead/pkg/query"
)

// identityColumns is the scan list shared by every single-row lookup.
const identityColumns = `
	id, name, email, photo, role, password_hash, active,
	password_changed_at, COALESCE(reset_token_hash, ''), reset_token_expires_at,
	created_at, updated_at`

// # PostgreSQL Repository

// PostgresStore implements the [Store] interface using pgx.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL backed identity store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// QuerySchema declares the columns the admin listing may filter, sort, and
// select. Credential material is deliberately absent.
func QuerySchema() query.Schema {
	return query.Schema{
		Table:    "users.identity",
		IDColumn: "id",
		Columns: []query.Column{
			{Name: "id", Kind: query.Text, Filterable: true, Sortable: true},
			{Name: "name", Kind: query.Text, Filterable: true, Sortable: true},
			{Name: "email", Kind: query.Text, Filterable: true, Sortable: true},
			{Name: "photo", Kind: query.Text},
			{Name: "role", Kind: query.Text, Filterable: true, Sortable: true},
			{Name: "created_at", Kind: query.Time, Filterable: true, Sortable: true},
		},
		DefaultSort: []query.SortKey{{Field: "name"}},
	}
}

/*
Create persists a new identity row.

Parameters:
  - context: context.Context
  - identity: *Identity

Returns:
  - error: apperr.Conflict on duplicate email, or other persistence failures
*/
func (store *PostgresStore) Create(context context.Context, identity *Identity) error {
	const sql = `
		INSERT INTO users.identity (
			id, name, email, photo, role, password_hash, active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	now := time.Now()
	if identity.CreatedAt.IsZero() {
		identity.CreatedAt = now
	}
	identity.UpdatedAt = now

	_, err := store.pool.Exec(context, sql,
		identity.ID,
		identity.Name,
		identity.Email,
		identity.Photo,
		identity.Role,
		identity.PasswordHash,
		identity.Active,
		identity.CreatedAt,
		identity.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "Identity")
	}

	return nil
}

/*
FindByID retrieves an active identity by primary key.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Identity: Hydrated entity
  - error: apperr.NotFound or database errors
*/
func (store *PostgresStore) FindByID(context context.Context, id string) (*Identity, error) {
	const sql = `
		SELECT` + identityColumns + `
		FROM users.identity
		WHERE id = $1 AND active = TRUE`

	return store.scanOne(context, sql, id)
}

/*
FindByEmail retrieves an active identity by email.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - *Identity: Hydrated entity
  - error: apperr.NotFound or database errors
*/
func (store *PostgresStore) FindByEmail(context context.Context, email string) (*Identity, error) {
	const sql = `
		SELECT` + identityColumns + `
		FROM users.identity
		WHERE email = $1 AND active = TRUE`

	return store.scanOne(context, sql, email)
}

/*
UpdateProfile persists the mutable profile fields.

Parameters:
  - context: context.Context
  - identity: *Identity (ID names the row; Name/Email/Photo are written)

Returns:
  - error: apperr.NotFound, apperr.Conflict on duplicate email, or database errors
*/
func (store *PostgresStore) UpdateProfile(context context.Context, identity *Identity) error {
	const sql = `
		UPDATE users.identity
		SET name = $2, email = $3, photo = $4, role = $5, updated_at = $6
		WHERE id = $1 AND active = TRUE
		RETURNING updated_at`

	err := store.pool.QueryRow(context, sql,
		identity.ID,
		identity.Name,
		identity.Email,
		identity.Photo,
		identity.Role,
		time.Now(),
	).Scan(&identity.UpdatedAt)
	if err != nil {
		return dberr.Wrap(err, "Identity")
	}

	return nil
}

/*
UpdatePassword replaces the password hash and stamps password_changed_at.

The change moment is what invalidates previously issued session tokens, so
it is written in the same statement as the hash.

Parameters:
  - context: context.Context
  - id: string
  - newHash: string
  - changedAt: time.Time

Returns:
  - error: apperr.NotFound or database errors
*/
func (store *PostgresStore) UpdatePassword(context context.Context, id, newHash string, changedAt time.Time) error {
	const sql = `
		UPDATE users.identity
		SET password_hash = $2, password_changed_at = $3, updated_at = $4
		WHERE id = $1 AND active = TRUE
		RETURNING id`

	var returned string
	if err := store.pool.QueryRow(context, sql, id, newHash, changedAt, time.Now()).Scan(&returned); err != nil {
		return dberr.Wrap(err, "Identity")
	}

	return nil
}

/*
SetResetToken stores the hashed reset token and expiry, replacing any
outstanding one.

Parameters:
  - context: context.Context
  - id: string
  - tokenHash: string
  - expiresAt: time.Time

Returns:
  - error: apperr.NotFound or database errors
*/
func (store *PostgresStore) SetResetToken(context context.Context, id, tokenHash string, expiresAt time.Time) error {
	const sql = `
		UPDATE users.identity
		SET reset_token_hash = $2, reset_token_expires_at = $3, updated_at = $4
		WHERE id = $1 AND active = TRUE
		RETURNING id`

	var returned string
	if err := store.pool.QueryRow(context, sql, id, tokenHash, expiresAt, time.Now()).Scan(&returned); err != nil {
		return dberr.Wrap(err, "Identity")
	}

	return nil
}

/*
ClearResetToken removes any outstanding reset token.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: Database errors (clearing an already-clear row is not an error)
*/
func (store *PostgresStore) ClearResetToken(context context.Context, id string) error {
	const sql = `
		UPDATE users.identity
		SET reset_token_hash = NULL, reset_token_expires_at = NULL, updated_at = $2
		WHERE id = $1`

	if _, err := store.pool.Exec(context, sql, id, time.Now()); err != nil {
		return dberr.Wrap(err, "Identity")
	}

	return nil
}

/*
ConsumeResetToken atomically claims an unexpired reset token.

Description: A single conditional UPDATE performs the claim, so two
concurrent submissions of the same token can never both succeed: whichever
statement matches the row clears the token, and the loser matches nothing.

Parameters:
  - context: context.Context
  - tokenHash: string
  - newHash: string
  - now: time.Time

Returns:
  - *Identity: The identity whose password was reset
  - error: apperr.NotFound when no claimable token matches
*/
func (store *PostgresStore) ConsumeResetToken(context context.Context, tokenHash, newHash string, now time.Time) (*Identity, error) {
	const sql = `
		UPDATE users.identity
		SET password_hash = $2,
		    password_changed_at = $3,
		    reset_token_hash = NULL,
		    reset_token_expires_at = NULL,
		    updated_at = $4
		WHERE reset_token_hash = $1
		  AND reset_token_expires_at > $4
		  AND active = TRUE
		RETURNING` + identityColumns

	identity := &Identity{}
	err := store.pool.QueryRow(context, sql, tokenHash, newHash, now.Add(-time.Second), now).Scan(
		&identity.ID,
		&identity.Name,
		&identity.Email,
		&identity.Photo,
		&identity.Role,
		&identity.PasswordHash,
		&identity.Active,
		&identity.PasswordChangedAt,
		&identity.ResetTokenHash,
		&identity.ResetTokenExpiresAt,
		&identity.CreatedAt,
		&identity.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "Identity")
	}

	return identity, nil
}

/*
Search lists active identities through the query pipeline.

Parameters:
  - context: context.Context
  - spec: query.Spec
  - base: scoping filters

Returns:
  - []map[string]any: Selected columns per row
  - error: Database errors
*/
func (store *PostgresStore) Search(context context.Context, spec query.Spec, base ...query.Filter) ([]map[string]any, error) {
	base = append(base, query.Filter{Field: "active", Op: query.OpEq, Value: true})

	records, err := postgres.Search(context, store.pool, QuerySchema(), spec, base...)
	if err != nil {
		return nil, dberr.Wrap(err, "Identity")
	}

	return records, nil
}

/*
SoftDelete marks the identity inactive without removing the row.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: apperr.NotFound or database errors
*/
func (store *PostgresStore) SoftDelete(context context.Context, id string) error {
	const sql = `
		UPDATE users.identity
		SET active = FALSE, updated_at = $2
		WHERE id = $1 AND active = TRUE
		RETURNING id`

	var returned string
	if err := store.pool.QueryRow(context, sql, id, time.Now()).Scan(&returned); err != nil {
		return dberr.Wrap(err, "Identity")
	}

	return nil
}

// scanOne runs a single-row identity query.
func (store *PostgresStore) scanOne(context context.Context, sql string, args ...any) (*Identity, error) {
	identity := &Identity{}
	err := store.pool.QueryRow(context, sql, args...).Scan(
		&identity.ID,
		&identity.Name,
		&identity.Email,
		&identity.Photo,
		&identity.Role,
		&identity.PasswordHash,
		&identity.Active,
		&identity.PasswordChangedAt,
		&identity.ResetTokenHash,
		&identity.ResetTokenExpiresAt,
		&identity.CreatedAt,
		&identity.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "Identity")
	}

	return identity, nil
}
