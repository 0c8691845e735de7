// Copyright (c) 2026 Trailhead. All rights reserved.
// Author: dev@trailhead.app

package identity

import (
	"context"

	"github.com/trailhead-app/trailhead/internal/platform/apperr"
	"github.com/trailhead-app/trailhead/internal/platform/validate"
	"github.com/trailhead-app/trailhead/pkg/pointer"
)

// Service implements the self-service profile operations.
type Service struct {
	store Store
}

// NewService constructs the identity service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// UpdateMeInput is the partial-update payload for the caller's own profile.
// Password fields are declared only so their presence can be rejected; the
// password-change flow re-verifies the current password and lives elsewhere.
type UpdateMeInput struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Photo *string `json:"photo"`

	Password        *string `json:"password"`
	PasswordConfirm *string `json:"password_confirm"`
}

/*
GetMe returns the caller's own identity.

Parameters:
  - context: context.Context
  - identityID: string (The authenticated caller)

Returns:
  - *Identity: Hydrated entity
  - error: apperr.NotFound if the account was deactivated mid-session
*/
func (service *Service) GetMe(context context.Context, identityID string) (*Identity, error) {
	return service.store.FindByID(context, identityID)
}

/*
UpdateMe applies a partial update to the caller's own profile.

Description: Only name, email, and photo are writable here. A payload that
carries password material is rejected outright rather than silently
filtered, pointing the caller at the dedicated password route.

Parameters:
  - context: context.Context
  - identityID: string
  - input: UpdateMeInput

Returns:
  - *Identity: The updated entity
  - error: Validation failures, apperr.Conflict on duplicate email
*/
func (service *Service) UpdateMe(context context.Context, identityID string, input UpdateMeInput) (*Identity, error) {

	// 1. Refuse password material on the profile route.
	if input.Password != nil || input.PasswordConfirm != nil {
		return nil, apperr.BadRequest("This route is not for password updates. Please use /update-password.")
	}

	// 2. Load the current state.
	current, err := service.store.FindByID(context, identityID)
	if err != nil {
		return nil, err
	}

	// 3. Apply provided fields over it.
	current.Name = pointer.Fallback(input.Name, current.Name)
	current.Email = NormalizeEmail(pointer.Fallback(input.Email, current.Email))
	current.Photo = pointer.Fallback(input.Photo, current.Photo)

	// 4. Validate the merged result.
	validator := &validate.Validator{}
	validator.Required(FieldName, current.Name).MaxLen(FieldName, current.Name, 100)
	validator.Required(FieldEmail, current.Email).Email(FieldEmail, current.Email)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	// 5. Persist.
	if err := service.store.UpdateProfile(context, current); err != nil {
		return nil, err
	}

	return current, nil
}

/*
DeleteMe deactivates the caller's own account.

Description: The row survives as an inactive record, invisible to every
lookup. There is no self-service reactivation.

Parameters:
  - context: context.Context
  - identityID: string

Returns:
  - error: Persistence failures
*/
func (service *Service) DeleteMe(context context.Context, identityID string) error {
	return service.store.SoftDelete(context, identityID)
}
