// Copyright (c) 2026 Trailhead. All rights reserved.
// Author: dev@trailhead.app

package resource

import (
	"context"
	"net/http"

	"github.com/trailhead-app/trailhead/internal/platform/apperr"
	requestutil "github.com/trailhead-app/trailhead/internal/platform/request"
	"github.com/trailhead-app/trailhead/internal/platform/respond"
	"github.com/trailhead-app/trailhead/pkg/query"
)

/*
Config declares one resource to the factory.

Only Resource, Store, and Schema are required. Validate runs on every write
payload before it reaches the store. Expand lets GetOne return an enriched
view (a tour with its reviews). ParentParam and ParentColumn scope nested
listings: with ParentParam "tourID" and ParentColumn "tour_id", a request to
/tours/{tourID}/reviews lists only that tour's reviews.
*/
type Config[T any, In any] struct {
	// Resource is the singular name used in not-found messages ("tour").
	Resource string

	// Store is the persistence implementation.
	Store Store[T, In]

	// Schema declares the queryable shape for listings.
	Schema query.Schema

	// Validate checks a decoded write payload. Optional.
	Validate func(input In) error

	// Expand enriches a single entity before it is written out. Optional.
	Expand func(ctx context.Context, entity T) (any, error)

	// IDParam overrides the chi URL parameter naming the record ID.
	// Defaults to "id". Routers that nest children under the record need a
	// distinct name so the child's parent parameter can share the segment.
	IDParam string

	// ParentParam is the chi URL parameter naming the parent ID. Optional.
	ParentParam string

	// ParentColumn is the column the parent ID constrains. Required when
	// ParentParam is set.
	ParentColumn string
}

// Handler serves the five conventional CRUD endpoints for one resource.
type Handler[T any, In any] struct {
	config Config[T, In]
}

// NewHandler builds the generic handler set from a resource declaration.
func NewHandler[T any, In any](config Config[T, In]) *Handler[T, In] {
	if config.IDParam == "" {
		config.IDParam = "id"
	}
	return &Handler[T, In]{config: config}
}

// CreateOne decodes the write payload, validates it, and persists a new
// record. Responds 201 with the stored entity.
func (handler *Handler[T, In]) CreateOne(writer http.ResponseWriter, request *http.Request) {
	var input In
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if handler.config.Validate != nil {
		if err := handler.config.Validate(input); err != nil {
			respond.Error(writer, request, err)
			return
		}
	}

	entity, err := handler.config.Store.Insert(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Success(writer, http.StatusCreated, entity)
}

// GetOne fetches a single record by its ID URL parameter. Responds 200, or
// 404 when the record does not exist.
func (handler *Handler[T, In]) GetOne(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.Param(request, handler.config.IDParam)

	entity, err := handler.config.Store.FindByID(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if handler.config.Expand != nil {
		expanded, err := handler.config.Expand(request.Context(), entity)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		respond.Success(writer, http.StatusOK, expanded)
		return
	}

	respond.Success(writer, http.StatusOK, entity)
}

// GetAll lists records through the query pipeline: filters, sort, field
// selection, and pagination all come from the URL, validated against the
// resource's schema. Responds 200 with the result count in the envelope.
func (handler *Handler[T, In]) GetAll(writer http.ResponseWriter, request *http.Request) {
	spec, err := query.Parse(request.URL.Query(), handler.config.Schema)
	if err != nil {
		respond.Error(writer, request, apperr.BadRequest(err.Error()))
		return
	}

	var base []query.Filter
	if handler.config.ParentParam != "" {
		if parentID := requestutil.Param(request, handler.config.ParentParam); parentID != "" {
			base = append(base, query.Filter{
				Field: handler.config.ParentColumn,
				Op:    query.OpEq,
				Value: parentID,
			})
		}
	}

	records, err := handler.config.Store.Search(request.Context(), spec, base...)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.List(writer, len(records), records)
}

// UpdateOne applies a partial update to the record named by the ID URL
// parameter. Responds 200 with the updated entity, or 404 when the record
// does not exist.
func (handler *Handler[T, In]) UpdateOne(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.Param(request, handler.config.IDParam)

	var input In
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if handler.config.Validate != nil {
		if err := handler.config.Validate(input); err != nil {
			respond.Error(writer, request, err)
			return
		}
	}

	entity, err := handler.config.Store.Update(request.Context(), id, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Success(writer, http.StatusOK, entity)
}

// DeleteOne removes the record named by the ID URL parameter. Responds 204
// on success, or 404 when the record does not exist.
func (handler *Handler[T, In]) DeleteOne(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.Param(request, handler.config.IDParam)

	if err := handler.config.Store.Delete(request.Context(), id); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
