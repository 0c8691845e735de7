// Copyright (c) 2026 Trailhead. All rights reserved.
// Author: dev@trailhead.app

package slug_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trailhead-app/trailhead/pkg/slug"
)

func TestFrom(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain words", input: "The Forest Hiker", want: "the-forest-hiker"},
		{name: "accents stripped", input: "Café Crème Tour", want: "cafe-creme-tour"},
		{name: "punctuation collapses", input: "Sea -- & Sand!!", want: "sea-sand"},
		{name: "leading and trailing trimmed", input: "  --Snow Adventurer--  ", want: "snow-adventurer"},
		{name: "digits kept", input: "Top 10 Peaks", want: "top-10-peaks"},
		{name: "empty", input: "", want: ""},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, slug.From(tc.input))
		})
	}
}
