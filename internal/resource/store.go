// Copyright (c) 2026 Trailhead. All rights reserved.
// Author: dev@trailhead.app

/*
Package resource provides a generic CRUD handler factory.

Every resource with conventional REST semantics (tours, reviews, the admin
side of identities) gets its five endpoints from one [Handler], built over a
typed [Store]. Resources keep their domain-specific behavior in the store
implementation and their routes stay one-line registrations.
*/
package resource

import (
	"context"

	"github.com/trailhead-app/trailhead/pkg/query"
)

// Store is the persistence surface the generic handlers operate on. T is the
// entity type returned by single-record operations; In is the write payload
// accepted by Insert and Update.
type Store[T any, In any] interface {
	// Insert persists a new record and returns the stored entity.
	Insert(ctx context.Context, input In) (T, error)

	// FindByID returns the entity or a not-found error.
	FindByID(ctx context.Context, id string) (T, error)

	// Search executes a parsed listing specification. Base filters scope
	// the listing (nested routes, soft-delete exclusion).
	Search(ctx context.Context, spec query.Spec, base ...query.Filter) ([]map[string]any, error)

	// Update applies a partial write and returns the updated entity, or a
	// not-found error when the id does not exist.
	Update(ctx context.Context, id string, input In) (T, error)

	// Delete removes the record, or returns a not-found error.
	Delete(ctx context.Context, id string) error
}
