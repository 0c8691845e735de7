// Copyright (c) 2026 Trailhead. All rights reserved.
// Author: dev@trailhead.app

package tour

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/trailhead-app/trailhead/internal/resource"
)

// Middleware is the shape of the access-guard wrappers handed in by the
// server wiring.
type Middleware = func(http.Handler) http.Handler

// ReviewSource supplies a tour's reviews for the expanded single-tour view.
// Implemented by the review store; declared here to keep the dependency
// pointing inward.
type ReviewSource interface {
	ListForTour(ctx context.Context, tourID string) (any, error)
}

// Handler serves the tour catalogue endpoints, generated by the resource
// factory with an expanded single-tour view.
type Handler struct {
	crud *resource.Handler[*Tour, Input]
}

// NewHandler constructs the tour [Handler]. reviews may be nil, in which
// case single-tour reads return the bare entity.
func NewHandler(store *PostgresStore, reviews ReviewSource) *Handler {
	config := resource.Config[*Tour, Input]{
		Resource: "Tour",
		Store:    store,
		Schema:   QuerySchema(),
		Validate: ValidateInput,
		// Reviews are mounted under /{tourID}/reviews; chi requires every
		// wildcard at that segment to carry the same name.
		IDParam: "tourID",
	}

	if reviews != nil {
		config.Expand = func(ctx context.Context, entity *Tour) (any, error) {
			tourReviews, err := reviews.ListForTour(ctx, entity.ID)
			if err != nil {
				return nil, err
			}
			return map[string]any{"tour": entity, "reviews": tourReviews}, nil
		}
	}

	return &Handler{crud: resource.NewHandler(config)}
}

// Routes returns a [chi.Router] with the catalogue endpoints. Reads are
// public but resolve a principal when one is presented; writes require an
// administrator or lead guide.
func (handler *Handler) Routes(identify Middleware, protect Middleware, restrictEditors Middleware) chi.Router {
	router := chi.NewRouter()

	// Public catalogue
	router.Group(func(public chi.Router) {
		public.Use(identify)
		public.Get("/", handler.crud.GetAll)
		public.Get("/{tourID}", handler.crud.GetOne)
	})

	// Content management
	router.Group(func(editors chi.Router) {
		editors.Use(protect, restrictEditors)
		editors.Post("/", handler.crud.CreateOne)
		editors.Patch("/{tourID}", handler.crud.UpdateOne)
		editors.Delete("/{tourID}", handler.crud.DeleteOne)
	})

	return router
}
