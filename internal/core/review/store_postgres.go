// Copyright (c) 2026 Trailhead. All rights reserved.
// Author: dev@trailhead.app

package review

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trailhead-app/trailhead/internal/platform/apperr"
	"github.com/trailhead-app/trailhead/internal/platform/ctxutil"
	"github.com/trailhead-app/trailhead/internal/platform/dberr"
	"github.com/trailhead-app/trailhead/internal/platform/postgres"
	"github.com/trailhead-app/trailhead/pkg/pointer"
	"github.com/trailhead-app/trailhead/pkg/query"
	"github.com/trailhead-app/trailhead/pkg/uuidv7"
)

// reviewColumns is the scan list shared by single-row lookups.
const reviewColumns = `
	id, rating, comment, tour_id, author_id, created_at, updated_at`

// PostgresStore implements the generic resource store for reviews using pgx.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL backed review store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

/*
Insert persists a new review by the authenticated caller.

Description: The author is always the resolved principal; there is no
payload field that can attribute a review to someone else. One author gets
one review per tour, enforced by a unique constraint. The owning tour's
rating aggregates are recomputed afterwards.

Parameters:
  - context: context.Context
  - input: Input

Returns:
  - *Review: The stored entity
  - error: Validation failures, apperr.Conflict on a duplicate review
*/
func (store *PostgresStore) Insert(context context.Context, input Input) (*Review, error) {
	if err := validateForInsert(input); err != nil {
		return nil, err
	}

	principal := ctxutil.GetPrincipal(context)
	if principal == nil {
		return nil, apperr.Unauthorized("You are not logged in")
	}

	now := time.Now()
	entity := &Review{
		ID:        uuidv7.New(),
		Rating:    *input.Rating,
		Comment:   *input.Comment,
		TourID:    *input.TourID,
		AuthorID:  principal.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	const sql = `
		INSERT INTO core.review (
			id, rating, comment, tour_id, author_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := store.pool.Exec(context, sql,
		entity.ID, entity.Rating, entity.Comment, entity.TourID, entity.AuthorID,
		entity.CreatedAt, entity.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "Review")
	}

	if err := store.recomputeTourRatings(context, entity.TourID); err != nil {
		return nil, err
	}

	return entity, nil
}

/*
FindByID retrieves a review by primary key.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Review: Hydrated entity
  - error: apperr.NotFound or database errors
*/
func (store *PostgresStore) FindByID(context context.Context, id string) (*Review, error) {
	const sql = `
		SELECT` + reviewColumns + `
		FROM core.review
		WHERE id = $1`

	return store.scanOne(context, sql, id)
}

/*
Search lists reviews through the query pipeline.

Parameters:
  - context: context.Context
  - spec: query.Spec
  - base: scoping filters (the nested route adds tour_id here)

Returns:
  - []map[string]any: Selected columns per row
  - error: Database errors
*/
func (store *PostgresStore) Search(context context.Context, spec query.Spec, base ...query.Filter) ([]map[string]any, error) {
	records, err := postgres.Search(context, store.pool, QuerySchema(), spec, base...)
	if err != nil {
		return nil, dberr.Wrap(err, "Review")
	}
	return records, nil
}

/*
ListForTour returns every review of one tour, newest first. Feeds the
expanded single-tour view.

Parameters:
  - context: context.Context
  - tourID: string

Returns:
  - any: []*Review
  - error: Database errors
*/
func (store *PostgresStore) ListForTour(context context.Context, tourID string) (any, error) {
	const sql = `
		SELECT` + reviewColumns + `
		FROM core.review
		WHERE tour_id = $1
		ORDER BY created_at DESC`

	rows, err := store.pool.Query(context, sql, tourID)
	if err != nil {
		return nil, dberr.Wrap(err, "Review")
	}
	defer rows.Close()

	reviews := []*Review{}
	for rows.Next() {
		entity := &Review{}
		err := rows.Scan(
			&entity.ID, &entity.Rating, &entity.Comment, &entity.TourID,
			&entity.AuthorID, &entity.CreatedAt, &entity.UpdatedAt,
		)
		if err != nil {
			return nil, dberr.Wrap(err, "Review")
		}
		reviews = append(reviews, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "Review")
	}

	return reviews, nil
}

/*
Update applies a partial update to rating and comment. The tour binding and
author are immutable. Aggregates are recomputed when the rating changed.

Parameters:
  - context: context.Context
  - id: string
  - input: Input

Returns:
  - *Review: The updated entity
  - error: apperr.NotFound, validation failures
*/
func (store *PostgresStore) Update(context context.Context, id string, input Input) (*Review, error) {
	if err := ValidateInput(input); err != nil {
		return nil, err
	}

	entity, err := store.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	entity.Rating = pointer.Fallback(input.Rating, entity.Rating)
	entity.Comment = pointer.Fallback(input.Comment, entity.Comment)

	const sql = `
		UPDATE core.review
		SET rating = $2, comment = $3, updated_at = $4
		WHERE id = $1
		RETURNING updated_at`

	err = store.pool.QueryRow(context, sql, entity.ID, entity.Rating, entity.Comment, time.Now()).Scan(&entity.UpdatedAt)
	if err != nil {
		return nil, dberr.Wrap(err, "Review")
	}

	if err := store.recomputeTourRatings(context, entity.TourID); err != nil {
		return nil, err
	}

	return entity, nil
}

/*
Delete removes a review and recomputes the tour's aggregates.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: apperr.NotFound or database errors
*/
func (store *PostgresStore) Delete(context context.Context, id string) error {
	const sql = `DELETE FROM core.review WHERE id = $1 RETURNING tour_id`

	var tourID string
	if err := store.pool.QueryRow(context, sql, id).Scan(&tourID); err != nil {
		return dberr.Wrap(err, "Review")
	}

	return store.recomputeTourRatings(context, tourID)
}

// recomputeTourRatings rewrites the tour's aggregates from the review
// table. A tour with no reviews left falls back to the neutral baseline.
func (store *PostgresStore) recomputeTourRatings(context context.Context, tourID string) error {
	const sql = `
		UPDATE core.tour
		SET ratings_average = COALESCE(stats.avg_rating, 4.5),
		    ratings_quantity = COALESCE(stats.num_ratings, 0)
		FROM (
			SELECT ROUND(AVG(rating)::numeric, 1) AS avg_rating, COUNT(*) AS num_ratings
			FROM core.review
			WHERE tour_id = $1
		) AS stats
		WHERE core.tour.id = $1`

	if _, err := store.pool.Exec(context, sql, tourID); err != nil {
		return dberr.Wrap(err, "Tour")
	}

	return nil
}

// scanOne runs a single-row review query.
func (store *PostgresStore) scanOne(context context.Context, sql string, args ...any) (*Review, error) {
	entity := &Review{}
	err := store.pool.QueryRow(context, sql, args...).Scan(
		&entity.ID, &entity.Rating, &entity.Comment, &entity.TourID,
		&entity.AuthorID, &entity.CreatedAt, &entity.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "Review")
	}

	return entity, nil
}
