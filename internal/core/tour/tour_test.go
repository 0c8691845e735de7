// Copyright (c) 2026 Trailhead. All rights reserved.
// Author: dev@trailhead.app

package tour_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trailhead-app/trailhead/internal/core/tour"
	"github.com/trailhead-app/trailhead/pkg/pointer"
	"github.com/trailhead-app/trailhead/pkg/query"
)

func TestValidateInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   tour.Input
		wantErr bool
	}{
		{
			name: "valid full payload",
			input: tour.Input{
				Name:         pointer.To("The Forest Hiker"),
				Duration:     pointer.To(5),
				MaxGroupSize: pointer.To(25),
				Difficulty:   pointer.To(tour.DifficultyEasy),
				Price:        pointer.To(397.0),
				Summary:      pointer.To("Breathtaking hike through the Canadian Banff National Park"),
			},
		},
		{
			name:  "empty patch is valid",
			input: tour.Input{},
		},
		{
			name:    "unknown difficulty",
			input:   tour.Input{Difficulty: pointer.To("impossible")},
			wantErr: true,
		},
		{
			name:    "negative price",
			input:   tour.Input{Price: pointer.To(-1.0)},
			wantErr: true,
		},
		{
			name:    "zero duration",
			input:   tour.Input{Duration: pointer.To(0)},
			wantErr: true,
		},
		{
			name:    "name too short",
			input:   tour.Input{Name: pointer.To("ab")},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := tour.ValidateInput(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestQuerySchema_DefaultsToCheapestFirst(t *testing.T) {
	t.Parallel()

	spec, err := query.Parse(url.Values{}, tour.QuerySchema())
	require.NoError(t, err)

	assert.Equal(t, []query.SortKey{{Field: "price"}}, spec.Sort)
}

func TestQuerySchema_RejectsUnknownOperators(t *testing.T) {
	t.Parallel()

	values, err := url.ParseQuery("price[ne]=100")
	require.NoError(t, err)

	_, err = query.Parse(values, tour.QuerySchema())
	assert.ErrorIs(t, err, query.ErrUnknownOperator)
}
