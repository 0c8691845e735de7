// Copyright (c) 2026 Trailhead. All rights reserved.
// Author: dev@trailhead.app

// Package slug generates ASCII URL slugs from arbitrary Unicode strings.
//
// Tours carry a slug derived from their name ("The Forest Hiker" becomes
// "the-forest-hiker") so public URLs stay readable. The slug is recomputed
// whenever the name changes.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// nonAlphanumeric matches any sequence of non-alphanumeric, non-hyphen characters.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9-]+`)
	// multiHyphen collapses consecutive hyphens into one.
	multiHyphen = regexp.MustCompile(`-{2,}`)
)

// From converts an arbitrary Unicode string into a URL-safe ASCII slug.
//
// The input is NFD-normalized so accented characters decompose into a base
// letter plus combining marks, the marks are stripped, and whatever is left
// is lowercased and hyphenated.
func From(s string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn))
	result, _, _ := transform.String(t, s)

	result = strings.ToLower(result)

	result = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return '-'
	}, result)

	result = nonAlphanumeric.ReplaceAllString(result, "-")
	result = multiHyphen.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")

	return result
}

// isMn reports whether r is a Unicode non-spacing mark.
func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}
