// Copyright (c) 2026 Trailhead. All rights reserved.
// Author: dev@trailhead.app

/*
Package review provides tour reviews and the rating aggregates they feed.

Each review belongs to one tour and one author. Every write recomputes the
owning tour's ratings average and count, so the catalogue's aggregates are
always consistent with the review table.
*/
package review

import (
	"time"

	"github.com/trailhead-app/trailhead/internal/platform/validate"
	"github.com/trailhead-app/trailhead/pkg/query"
)

// Rating bounds.
const (
	MinRating = 1
	MaxRating = 5
)

// Review represents one author's rating of a tour.
type Review struct {
	ID        string    `json:"id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	TourID    string    `json:"tour_id"`
	AuthorID  string    `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Input is the write payload. TourID is only honored on creation; on the
// nested route it is filled from the URL before validation.
type Input struct {
	Rating  *int    `json:"rating"`
	Comment *string `json:"comment"`
	TourID  *string `json:"tour_id"`
}

// QuerySchema declares the queryable shape of reviews. The newest review
// sorts first by default.
func QuerySchema() query.Schema {
	return query.Schema{
		Table:    "core.review",
		IDColumn: "id",
		Columns: []query.Column{
			{Name: "id", Kind: query.Text, Filterable: true, Sortable: true},
			{Name: "rating", Kind: query.Int, Filterable: true, Sortable: true},
			{Name: "comment", Kind: query.Text},
			{Name: "tour_id", Kind: query.Text, Filterable: true},
			{Name: "author_id", Kind: query.Text, Filterable: true},
			{Name: "created_at", Kind: query.Time, Filterable: true, Sortable: true},
		},
		DefaultSort: []query.SortKey{{Field: "created_at", Desc: true}},
	}
}

// ValidateInput checks a write payload.
func ValidateInput(input Input) error {
	validator := &validate.Validator{}
	if input.Rating != nil {
		validator.Range("rating", *input.Rating, MinRating, MaxRating)
	}
	if input.Comment != nil {
		validator.MaxLen("comment", *input.Comment, 1000)
	}
	if input.TourID != nil {
		validator.UUID("tour_id", *input.TourID)
	}
	return validator.Err()
}

// validateForInsert enforces the fields a brand-new review must carry.
func validateForInsert(input Input) error {
	validator := &validate.Validator{}
	validator.Custom("rating", input.Rating == nil, "This field is required")
	validator.Custom("comment", input.Comment == nil, "This field is required")
	validator.Custom("tour_id", input.TourID == nil, "This field is required")
	if err := validator.Err(); err != nil {
		return err
	}
	return ValidateInput(input)
}
