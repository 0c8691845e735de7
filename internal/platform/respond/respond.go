// Copyright (c) 2026 Trailhead. All rights reserved.
// Author: dev@trailhead.app

// Package respond provides HTTP response helpers used by all API handlers.
//
// # Architecture
//
// This package centralizes the presentation logic for HTTP responses.
// It ensures that every response (Success or Error) across the entire application
// follows a strict, predictable JSON envelope:
//
//	{"status": "success"|"error", "data"?, "token"?, "results"?, "message"?}
//
// This consistency is crucial for mobile apps and frontend SPAs to parse data
// robustly.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/trailhead-app/trailhead/internal/platform/apperr"
	"github.com/trailhead-app/trailhead/internal/platform/ctxkey"
)

// development controls whether error responses carry internal detail.
// It is set once at startup and never mutated afterwards.
var development bool

// SetDevelopmentMode enables internal error detail in responses. Call once
// during startup wiring; never toggle at runtime.
func SetDevelopmentMode(enabled bool) {
	development = enabled
}

// Envelope is the uniform JSON body for all API responses.
type Envelope struct {
	Status  string      `json:"status"`
	Token   string      `json:"token,omitempty"`
	Results *int        `json:"results,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Code    string      `json:"code,omitempty"`
	// Details holds field-level validation failures.
	Details []apperr.FieldError `json:"details,omitempty"`
	// Detail carries the internal cause. Development mode only.
	Detail string `json:"detail,omitempty"`
}

// JSON writes a JSON response with the given status code.
func JSON(writer http.ResponseWriter, statusCode int, payload interface{}) {
	writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	writer.WriteHeader(statusCode)
	_ = json.NewEncoder(writer).Encode(payload)
}

// Success writes a success envelope with the given status code and data.
// Use 200 for reads/updates and 201 for creations.
func Success(writer http.ResponseWriter, statusCode int, data interface{}) {
	JSON(writer, statusCode, Envelope{Status: "success", Data: data})
}

// SuccessWithToken writes a success envelope carrying a freshly issued
// session token alongside the data payload.
func SuccessWithToken(writer http.ResponseWriter, statusCode int, token string, data interface{}) {
	JSON(writer, statusCode, Envelope{Status: "success", Token: token, Data: data})
}

// List writes a 200 success envelope for collection reads, including the
// result count.
func List(writer http.ResponseWriter, results int, data interface{}) {
	JSON(writer, http.StatusOK, Envelope{Status: "success", Results: &results, Data: data})
}

// Message writes a success envelope carrying only a human-readable message.
func Message(writer http.ResponseWriter, statusCode int, message string) {
	JSON(writer, statusCode, Envelope{Status: "success", Message: message})
}

// NoContent writes a 204 No Content response with an empty body.
func NoContent(writer http.ResponseWriter) {
	writer.WriteHeader(http.StatusNoContent)
}

// Error converts any Go error into a standardized JSON API error response.
//
// Recognized [apperr.AppError] values are operational: their message and
// status propagate as-is. Anything else is logged and surfaced as a generic
// 500 — internals (stack traces, driver errors) never leak to clients outside
// development mode.
func Error(writer http.ResponseWriter, request *http.Request, err error) {
	var appError *apperr.AppError
	if !errors.As(err, &appError) {
		logger := getLoggerFromContext(request)
		logger.ErrorContext(request.Context(), "unhandled_error",
			slog.String("error", err.Error()),
			slog.String("request_id", getRequestIDFromContext(request)),
		)
		appError = apperr.Internal(err)
	}

	// Always log 5xx errors as they indicate server-side issues.
	if appError.HTTPStatus >= 500 {
		logger := getLoggerFromContext(request)
		logger.ErrorContext(request.Context(), "api_server_error",
			slog.String("code", appError.Code),
			slog.String("request_id", getRequestIDFromContext(request)),
			slog.Any("cause", appError.Cause),
		)
	}

	envelope := Envelope{
		Status:  "error",
		Message: appError.Message,
		Code:    appError.Code,
		Details: appError.Details,
	}

	if development && appError.Cause != nil {
		envelope.Detail = appError.Cause.Error()
	}

	JSON(writer, appError.HTTPStatus, envelope)
}

// getLoggerFromContext extracts the per-request logger.
func getLoggerFromContext(request *http.Request) *slog.Logger {
	if logger, ok := request.Context().Value(ctxkey.KeyLogger).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.Default()
}

// getRequestIDFromContext extracts the X-Request-ID for log correlation.
func getRequestIDFromContext(request *http.Request) string {
	if id, ok := request.Context().Value(ctxkey.KeyRequestID).(string); ok {
		return id
	}
	return ""
}
