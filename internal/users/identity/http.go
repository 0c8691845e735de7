// Copyright (c) 2026 Trailhead. All rights reserved.
// Author: dev@trailhead.app

package identity

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/trailhead-app/trailhead/internal/platform/apperr"
	requestutil "github.com/trailhead-app/trailhead/internal/platform/request"
	"github.com/trailhead-app/trailhead/internal/platform/respond"
	"github.com/trailhead-app/trailhead/internal/platform/sec"
	"github.com/trailhead-app/trailhead/internal/platform/validate"
	"github.com/trailhead-app/trailhead/internal/resource"
	"github.com/trailhead-app/trailhead/pkg/pointer"
	"github.com/trailhead-app/trailhead/pkg/query"
)

// Middleware is the shape of the access-guard wrappers handed in by the
// server wiring. Declared locally so this package does not import the auth
// package it underpins.
type Middleware = func(http.Handler) http.Handler

// Handler implements the HTTP layer for profile and account management.
type Handler struct {
	service *Service
	admin   *resource.Handler[*Identity, AdminInput]
}

// NewHandler constructs the identity [Handler]. The admin CRUD endpoints are
// generated by the generic resource factory over the identity store.
func NewHandler(service *Service, store Store) *Handler {
	admin := resource.NewHandler(resource.Config[*Identity, AdminInput]{
		Resource: "Identity",
		Store:    &adminStore{store: store},
		Schema:   QuerySchema(),
		Validate: validateAdminInput,
	})

	return &Handler{service: service, admin: admin}
}

// Routes returns a [chi.Router] with the identity endpoints. Everything here
// requires authentication; the admin CRUD additionally requires the admin
// role.
func (handler *Handler) Routes(protect Middleware, restrictAdmin Middleware) chi.Router {
	router := chi.NewRouter()
	router.Use(protect)

	// Self-service profile
	router.Get("/me", handler.getMe)
	router.Patch("/me", handler.updateMe)
	router.Delete("/me", handler.deleteMe)

	// Administrative account management
	router.Group(func(admin chi.Router) {
		admin.Use(restrictAdmin)
		admin.Get("/", handler.admin.GetAll)
		admin.Post("/", handler.admin.CreateOne)
		admin.Get("/{id}", handler.admin.GetOne)
		admin.Patch("/{id}", handler.admin.UpdateOne)
		admin.Delete("/{id}", handler.admin.DeleteOne)
	})

	return router
}

// # Self-Service Endpoints

/*
GET /api/v1/users/me.

Description: Retrieves the authenticated caller's own profile.

Response:
  - 200: Identity: The caller's profile
  - 401: Unauthorized: Authentication required
*/
func (handler *Handler) getMe(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	me, err := handler.service.GetMe(request.Context(), principal.ID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Success(writer, http.StatusOK, me)
}

/*
PATCH /api/v1/users/me.

Description: Applies partial updates to the caller's own profile. Password
fields are rejected with a pointer to the dedicated password route.

Request:
  - body: UpdateMeInput (Partial JSON)

Response:
  - 200: Identity: The updated profile
  - 400: BadRequest/Validation: Invalid input or password material present
  - 401: Unauthorized: Authentication required
*/
func (handler *Handler) updateMe(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input UpdateMeInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	updated, err := handler.service.UpdateMe(request.Context(), principal.ID, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Success(writer, http.StatusOK, updated)
}

/*
DELETE /api/v1/users/me.

Description: Deactivates the caller's own account. The row survives as an
inactive record.

Response:
  - 204: No content
  - 401: Unauthorized: Authentication required
*/
func (handler *Handler) deleteMe(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteMe(request.Context(), principal.ID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Administrative CRUD

// AdminInput is the write payload for the admin account endpoints.
type AdminInput struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Photo *string `json:"photo"`
	Role  *string `json:"role"`
}

// validateAdminInput checks the fields an admin update may carry.
func validateAdminInput(input AdminInput) error {
	validator := &validate.Validator{}
	if input.Name != nil {
		validator.Required(FieldName, *input.Name).MaxLen(FieldName, *input.Name, 100)
	}
	if input.Email != nil {
		validator.Email(FieldEmail, *input.Email)
	}
	if input.Role != nil {
		if _, err := sec.ParseRole(*input.Role); err != nil {
			validator.Custom(FieldRole, true, "Unknown role")
		}
	}
	return validator.Err()
}

// adminStore adapts [Store] to the generic [resource.Store] contract.
type adminStore struct {
	store Store
}

// Insert always fails: accounts are only created through signup, which is
// the sole path that establishes credentials.
func (adapter *adminStore) Insert(_ context.Context, _ AdminInput) (*Identity, error) {
	return nil, apperr.BadRequest("This route is not defined. Please use /auth/signup instead.")
}

func (adapter *adminStore) FindByID(ctx context.Context, id string) (*Identity, error) {
	return adapter.store.FindByID(ctx, id)
}

func (adapter *adminStore) Search(ctx context.Context, spec query.Spec, base ...query.Filter) ([]map[string]any, error) {
	return adapter.store.Search(ctx, spec, base...)
}

func (adapter *adminStore) Update(ctx context.Context, id string, input AdminInput) (*Identity, error) {
	current, err := adapter.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	current.Name = pointer.Fallback(input.Name, current.Name)
	current.Email = NormalizeEmail(pointer.Fallback(input.Email, current.Email))
	current.Photo = pointer.Fallback(input.Photo, current.Photo)
	if input.Role != nil {
		role, err := sec.ParseRole(*input.Role)
		if err != nil {
			return nil, apperr.BadRequest("Unknown role")
		}
		current.Role = role
	}

	if err := adapter.store.UpdateProfile(ctx, current); err != nil {
		return nil, err
	}

	return current, nil
}

func (adapter *adminStore) Delete(ctx context.Context, id string) error {
	return adapter.store.SoftDelete(ctx, id)
}
