// Copyright (c) 2026 Trailhead. All rights reserved.
// Author: dev@trailhead.app

package sec

// Principal is the resolved, live identity of an authenticated caller.
//
// Unlike raw token claims it is re-resolved from storage on every guarded
// request, so a deleted or deactivated account never appears here. The Access
// Guard threads it through the request context as an explicit value.
type Principal struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}
