// Copyright (c) 2026 Trailhead. All rights reserved.
// Author: dev@trailhead.app

// Package pointer provides small generic helpers for optional values.
//
// Partial-update payloads model "field absent" as a nil pointer, so these
// helpers show up wherever PATCH bodies are applied to entities.
package pointer

// To returns a pointer to the provided value.
func To[T any](v T) *T {
	return &v
}

// Val dereferences a pointer, returning the zero value of T when nil.
func Val[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

// Fallback dereferences a pointer, returning fallback when nil.
func Fallback[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}
	return *p
}
