// Copyright (c) 2026 Trailhead. All rights reserved.
// Author: dev@trailhead.app

package review

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/trailhead-app/trailhead/internal/platform/request"
	"github.com/trailhead-app/trailhead/internal/platform/respond"
	"github.com/trailhead-app/trailhead/internal/resource"
)

// Middleware is the shape of the access-guard wrappers handed in by the
// server wiring.
type Middleware = func(http.Handler) http.Handler

// Handler serves the review endpoints: a flat collection plus the nested
// per-tour routes mounted under the tour router.
type Handler struct {
	store *PostgresStore
	crud  *resource.Handler[*Review, Input]
}

// NewHandler constructs the review [Handler].
func NewHandler(store *PostgresStore) *Handler {
	crud := resource.NewHandler(resource.Config[*Review, Input]{
		Resource:     "Review",
		Store:        store,
		Schema:       QuerySchema(),
		Validate:     ValidateInput,
		ParentParam:  "tourID",
		ParentColumn: "tour_id",
	})

	return &Handler{store: store, crud: crud}
}

// Routes returns the flat review collection. Everything requires a session;
// writing a review is reserved for the customer role, and moderation
// (update, delete) for customers and administrators.
func (handler *Handler) Routes(protect Middleware, restrictCustomers Middleware, restrictModerators Middleware) chi.Router {
	router := chi.NewRouter()
	router.Use(protect)

	router.Get("/", handler.crud.GetAll)
	router.Get("/{id}", handler.crud.GetOne)

	router.With(restrictCustomers).Post("/", handler.createOne)

	router.Group(func(moderators chi.Router) {
		moderators.Use(restrictModerators)
		moderators.Patch("/{id}", handler.crud.UpdateOne)
		moderators.Delete("/{id}", handler.crud.DeleteOne)
	})

	return router
}

// NestedRoutes returns the per-tour review routes, mounted at
// /tours/{tourID}/reviews. Listing is public; creating requires a signed-in
// customer.
func (handler *Handler) NestedRoutes(protect Middleware, restrictCustomers Middleware) chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.crud.GetAll)
	router.With(protect, restrictCustomers).Post("/", handler.createOne)

	return router
}

/*
POST /api/v1/reviews and POST /api/v1/tours/{tourID}/reviews.

Description: Creates a review authored by the caller. On the nested route,
the tour binding comes from the URL and overrides anything in the payload.

Request:
  - body: Input

Response:
  - 201: Review
  - 400: Validation: Invalid input data
  - 409: Conflict: Caller already reviewed this tour
*/
func (handler *Handler) createOne(writer http.ResponseWriter, request *http.Request) {
	var input Input
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if tourID := requestutil.Param(request, "tourID"); tourID != "" {
		input.TourID = &tourID
	}

	entity, err := handler.store.Insert(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Success(writer, http.StatusCreated, entity)
}
