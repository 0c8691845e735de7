// Copyright (c) 2026 Trailhead. All rights reserved.
// Author: dev@trailhead.app

/*
Package tour provides the tour catalogue.

Tours are the product of the platform: multi-day guided trips with a price,
a difficulty grade, and aggregate ratings maintained by the review package.
Reads are public; writes are reserved for administrators and lead guides.
*/
package tour

import (
	"time"

	"github.com/trailhead-app/trailhead/internal/platform/validate"
	"github.com/trailhead-app/trailhead/pkg/query"
)

// Difficulty grades accepted for a tour.
const (
	DifficultyEasy      = "easy"
	DifficultyMedium    = "medium"
	DifficultyDifficult = "difficult"
)

// Tour represents one bookable trip in the catalogue.
type Tour struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Slug            string    `json:"slug"`
	Duration        int       `json:"duration"`
	MaxGroupSize    int       `json:"max_group_size"`
	Difficulty      string    `json:"difficulty"`
	Price           float64   `json:"price"`
	RatingsAverage  float64   `json:"ratings_average"`
	RatingsQuantity int       `json:"ratings_quantity"`
	Summary         string    `json:"summary"`
	Description     string    `json:"description,omitempty"`
	ImageCover      string    `json:"image_cover,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Input is the write payload. Nil fields are left untouched on update.
type Input struct {
	Name         *string  `json:"name"`
	Duration     *int     `json:"duration"`
	MaxGroupSize *int     `json:"max_group_size"`
	Difficulty   *string  `json:"difficulty"`
	Price        *float64 `json:"price"`
	Summary      *string  `json:"summary"`
	Description  *string  `json:"description"`
	ImageCover   *string  `json:"image_cover"`
}

// QuerySchema declares the queryable shape of the catalogue. The default
// ordering is cheapest first.
func QuerySchema() query.Schema {
	return query.Schema{
		Table:    "core.tour",
		IDColumn: "id",
		Columns: []query.Column{
			{Name: "id", Kind: query.Text, Filterable: true, Sortable: true},
			{Name: "name", Kind: query.Text, Filterable: true, Sortable: true},
			{Name: "slug", Kind: query.Text, Filterable: true},
			{Name: "duration", Kind: query.Int, Filterable: true, Sortable: true},
			{Name: "max_group_size", Kind: query.Int, Filterable: true, Sortable: true},
			{Name: "difficulty", Kind: query.Text, Filterable: true, Sortable: true},
			{Name: "price", Kind: query.Float, Filterable: true, Sortable: true},
			{Name: "ratings_average", Kind: query.Float, Filterable: true, Sortable: true},
			{Name: "ratings_quantity", Kind: query.Int, Filterable: true, Sortable: true},
			{Name: "summary", Kind: query.Text},
			{Name: "image_cover", Kind: query.Text},
			{Name: "created_at", Kind: query.Time, Filterable: true, Sortable: true},
		},
		DefaultSort: []query.SortKey{{Field: "price"}},
	}
}

// ValidateInput checks a write payload. Fields that are present must be
// valid; required fields are enforced at insert time by the store, which
// knows whether it is creating or patching.
func ValidateInput(input Input) error {
	validator := &validate.Validator{}
	if input.Name != nil {
		validator.Required("name", *input.Name).MaxLen("name", *input.Name, 60).MinLen("name", *input.Name, 3)
	}
	if input.Duration != nil {
		validator.Custom("duration", *input.Duration < 1, "Must be at least 1 day")
	}
	if input.MaxGroupSize != nil {
		validator.Custom("max_group_size", *input.MaxGroupSize < 1, "Must be at least 1")
	}
	if input.Difficulty != nil {
		validator.OneOf("difficulty", *input.Difficulty, DifficultyEasy, DifficultyMedium, DifficultyDifficult)
	}
	if input.Price != nil {
		validator.Custom("price", *input.Price < 0, "Must not be negative")
	}
	if input.Summary != nil {
		validator.MaxLen("summary", *input.Summary, 300)
	}
	return validator.Err()
}

// validateForInsert enforces the fields a brand-new tour must carry.
func validateForInsert(input Input) error {
	validator := &validate.Validator{}
	validator.Custom("name", input.Name == nil, "This field is required")
	validator.Custom("duration", input.Duration == nil, "This field is required")
	validator.Custom("max_group_size", input.MaxGroupSize == nil, "This field is required")
	validator.Custom("difficulty", input.Difficulty == nil, "This field is required")
	validator.Custom("price", input.Price == nil, "This field is required")
	validator.Custom("summary", input.Summary == nil, "This field is required")
	if err := validator.Err(); err != nil {
		return err
	}
	return ValidateInput(input)
}
