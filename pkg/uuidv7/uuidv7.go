// Copyright (c) 2026 Trailhead. All rights reserved.
// Author: dev@trailhead.app

// Package uuidv7 wraps google/uuid to generate time-ordered UUIDv7 values.
//
// Every Trailhead table keys on UUIDv7. Time-sortable keys keep inserts
// appending at the tail of the primary index instead of fragmenting it the
// way random UUIDv4 does.
package uuidv7

import "github.com/google/uuid"

// New generates a new UUIDv7 string.
//
// It panics only when the OS random source is unavailable, which is an
// unrecoverable system-level failure.
func New() string {
	id, err := uuid.NewV7()
	if err != nil {
		panic("uuidv7: failed to generate UUID: " + err.Error())
	}

	return id.String()
}
