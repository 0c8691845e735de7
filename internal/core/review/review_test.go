// Copyright (c) 2026 Trailhead. All rights reserved.
// Author: dev@trailhead.app

package review_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trailhead-app/trailhead/internal/core/review"
	"github.com/trailhead-app/trailhead/pkg/pointer"
)

func TestValidateInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   review.Input
		wantErr bool
	}{
		{
			name: "valid",
			input: review.Input{
				Rating:  pointer.To(5),
				Comment: pointer.To("Unforgettable trip"),
				TourID:  pointer.To("019230aa-1111-7abc-8def-0123456789ab"),
			},
		},
		{
			name:  "empty patch is valid",
			input: review.Input{},
		},
		{
			name:    "rating below minimum",
			input:   review.Input{Rating: pointer.To(0)},
			wantErr: true,
		},
		{
			name:    "rating above maximum",
			input:   review.Input{Rating: pointer.To(6)},
			wantErr: true,
		},
		{
			name:    "malformed tour id",
			input:   review.Input{TourID: pointer.To("not-a-uuid")},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := review.ValidateInput(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
