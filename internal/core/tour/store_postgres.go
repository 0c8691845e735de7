// Copyright (c) 2026 Trailhead. All rights reserved.
// Author: dev@trailhead.app

package tour

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trailhead-app/trailhead/internal/platform/dberr"
	"github.com/trailhead-app/trailhead/internal/platform/postgres"
	"github.com/trailhead-app/trailhead/pkg/pointer"
	"github.com/trailhead-app/trailhead/pkg/query"
	"github.com/trailhead-app/trailhead/pkg/slug"
	"github.com/trailhead-app/trailhead/pkg/uuidv7"
)

// tourColumns is the scan list shared by single-row lookups.
const tourColumns = `
	id, name, slug, duration, max_group_size, difficulty, price,
	ratings_average, ratings_quantity, summary, description, image_cover,
	created_at, updated_at`

// PostgresStore implements the generic resource store for tours using pgx.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL backed tour store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

/*
Insert persists a new tour.

Description: The slug derives from the name, and a new tour starts with the
neutral rating baseline (average 4.5, quantity 0) until real reviews move
it.

Parameters:
  - context: context.Context
  - input: Input

Returns:
  - *Tour: The stored entity
  - error: Validation failures, apperr.Conflict on duplicate name
*/
func (store *PostgresStore) Insert(context context.Context, input Input) (*Tour, error) {
	if err := validateForInsert(input); err != nil {
		return nil, err
	}

	now := time.Now()
	entity := &Tour{
		ID:              uuidv7.New(),
		Name:            *input.Name,
		Slug:            slug.From(*input.Name),
		Duration:        *input.Duration,
		MaxGroupSize:    *input.MaxGroupSize,
		Difficulty:      *input.Difficulty,
		Price:           *input.Price,
		RatingsAverage:  4.5,
		RatingsQuantity: 0,
		Summary:         *input.Summary,
		Description:     pointer.Val(input.Description),
		ImageCover:      pointer.Val(input.ImageCover),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	const sql = `
		INSERT INTO core.tour (
			id, name, slug, duration, max_group_size, difficulty, price,
			ratings_average, ratings_quantity, summary, description, image_cover,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := store.pool.Exec(context, sql,
		entity.ID, entity.Name, entity.Slug, entity.Duration, entity.MaxGroupSize,
		entity.Difficulty, entity.Price, entity.RatingsAverage, entity.RatingsQuantity,
		entity.Summary, entity.Description, entity.ImageCover,
		entity.CreatedAt, entity.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "Tour")
	}

	return entity, nil
}

/*
FindByID retrieves a tour by primary key.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Tour: Hydrated entity
  - error: apperr.NotFound or database errors
*/
func (store *PostgresStore) FindByID(context context.Context, id string) (*Tour, error) {
	const sql = `
		SELECT` + tourColumns + `
		FROM core.tour
		WHERE id = $1`

	return store.scanOne(context, sql, id)
}

/*
Search lists tours through the query pipeline.

Parameters:
  - context: context.Context
  - spec: query.Spec
  - base: scoping filters

Returns:
  - []map[string]any: Selected columns per row
  - error: Database errors
*/
func (store *PostgresStore) Search(context context.Context, spec query.Spec, base ...query.Filter) ([]map[string]any, error) {
	records, err := postgres.Search(context, store.pool, QuerySchema(), spec, base...)
	if err != nil {
		return nil, dberr.Wrap(err, "Tour")
	}
	return records, nil
}

/*
Update applies a partial update.

Description: The current row is loaded, provided fields are merged over it,
and the whole row is written back. A name change recomputes the slug.

Parameters:
  - context: context.Context
  - id: string
  - input: Input

Returns:
  - *Tour: The updated entity
  - error: apperr.NotFound, validation failures
*/
func (store *PostgresStore) Update(context context.Context, id string, input Input) (*Tour, error) {
	if err := ValidateInput(input); err != nil {
		return nil, err
	}

	entity, err := store.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		entity.Name = *input.Name
		entity.Slug = slug.From(*input.Name)
	}
	entity.Duration = pointer.Fallback(input.Duration, entity.Duration)
	entity.MaxGroupSize = pointer.Fallback(input.MaxGroupSize, entity.MaxGroupSize)
	entity.Difficulty = pointer.Fallback(input.Difficulty, entity.Difficulty)
	entity.Price = pointer.Fallback(input.Price, entity.Price)
	entity.Summary = pointer.Fallback(input.Summary, entity.Summary)
	entity.Description = pointer.Fallback(input.Description, entity.Description)
	entity.ImageCover = pointer.Fallback(input.ImageCover, entity.ImageCover)

	const sql = `
		UPDATE core.tour
		SET name = $2, slug = $3, duration = $4, max_group_size = $5,
		    difficulty = $6, price = $7, summary = $8, description = $9,
		    image_cover = $10, updated_at = $11
		WHERE id = $1
		RETURNING updated_at`

	err = store.pool.QueryRow(context, sql,
		entity.ID, entity.Name, entity.Slug, entity.Duration, entity.MaxGroupSize,
		entity.Difficulty, entity.Price, entity.Summary, entity.Description,
		entity.ImageCover, time.Now(),
	).Scan(&entity.UpdatedAt)
	if err != nil {
		return nil, dberr.Wrap(err, "Tour")
	}

	return entity, nil
}

/*
Delete removes a tour permanently. Its reviews go with it via the foreign
key cascade.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: apperr.NotFound or database errors
*/
func (store *PostgresStore) Delete(context context.Context, id string) error {
	const sql = `DELETE FROM core.tour WHERE id = $1 RETURNING id`

	var returned string
	if err := store.pool.QueryRow(context, sql, id).Scan(&returned); err != nil {
		return dberr.Wrap(err, "Tour")
	}

	return nil
}

// scanOne runs a single-row tour query.
func (store *PostgresStore) scanOne(context context.Context, sql string, args ...any) (*Tour, error) {
	entity := &Tour{}
	err := store.pool.QueryRow(context, sql, args...).Scan(
		&entity.ID,
		&entity.Name,
		&entity.Slug,
		&entity.Duration,
		&entity.MaxGroupSize,
		&entity.Difficulty,
		&entity.Price,
		&entity.RatingsAverage,
		&entity.RatingsQuantity,
		&entity.Summary,
		&entity.Description,
		&entity.ImageCover,
		&entity.CreatedAt,
		&entity.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "Tour")
	}

	return entity, nil
}
