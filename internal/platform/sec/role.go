// Copyright (c) 2026 Trailhead. All rights reserved.
// Author: dev@trailhead.app

package sec

import "fmt"

// # User Roles

// Role represents the authorization level granted to an identity.
//
// It is a closed enumeration: values outside the four declared constants are
// rejected at construction time by [ParseRole], never discovered at runtime.
type Role string

const (
	// Unrestricted system access
	RoleAdmin Role = "admin"

	// Default role for standard registered users
	RoleUser Role = "user"

	// Can be assigned to lead tours
	RoleGuide Role = "guide"

	// Senior guide, can also manage tour content
	RoleLeadGuide Role = "lead-guide"
)

// ParseRole validates a raw string against the closed role set.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleAdmin, RoleUser, RoleGuide, RoleLeadGuide:
		return Role(raw), nil
	}
	return "", fmt.Errorf("sec: unknown role %q", raw)
}

// IsValid reports whether the role is one of the declared constants.
func (r Role) IsValid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// OneOf reports whether the role is contained in the allowed set.
func (r Role) OneOf(allowed ...Role) bool {
	for _, a := range allowed {
		if r == a {
			return true
		}
	}
	return false
}
