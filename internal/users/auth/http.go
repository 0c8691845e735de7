// Copyright (c) 2026 Trailhead. All rights reserved.
// Author: dev@trailhead.app

package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/trailhead-app/trailhead/internal/platform/constants"
	"github.com/trailhead-app/trailhead/internal/platform/middleware"
	requestutil "github.com/trailhead-app/trailhead/internal/platform/request"
	"github.com/trailhead-app/trailhead/internal/platform/respond"
	"github.com/trailhead-app/trailhead/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements the authentication HTTP endpoints.
//
// # Scope
//
// Everything related to the credential lifecycle: registration, login and
// logout, the password reset round-trip, and the authenticated password
// change. The session token is returned in the body and mirrored into an
// HttpOnly cookie on every issuing response.
type Handler struct {
	service       *Service
	guard         *Guard
	secureCookies bool
}

// NewHandler constructs the auth [Handler]. secureCookies marks the session
// cookie Secure and should be true outside development.
func NewHandler(service *Service, guard *Guard, secureCookies bool) *Handler {
	return &Handler{service: service, guard: guard, secureCookies: secureCookies}
}

// Routes returns a [chi.Router] configured with the authentication routes.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Post("/signup", handler.signup)
	router.Post("/login", handler.login)
	router.Get("/logout", handler.logout)
	router.Post("/forgot-password", handler.forgotPassword)
	router.Patch("/reset-password/{token}", handler.resetPassword)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(handler.guard.Protect)
		r.Patch("/update-password", handler.updatePassword)
	})

	return router
}

// # Session Cookie

// setSessionCookie mirrors the issued token into an HttpOnly cookie so
// browser clients hold the session without exposing it to scripts.
func (handler *Handler) setSessionCookie(writer http.ResponseWriter, token string) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(handler.service.Tokens().Lifetime()),
		HttpOnly: true,
		Secure:   handler.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookie overwrites the session cookie with a short-lived blank.
func (handler *Handler) clearSessionCookie(writer http.ResponseWriter) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(10 * time.Second),
		HttpOnly: true,
		Secure:   handler.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// # Endpoints

/*
POST /api/v1/auth/signup.

Description: Registers a new account and signs it in. The role is always
"user" regardless of the payload.

Request:
  - body: SignupInput

Response:
  - 201: Identity + token: The created account, signed in
  - 400: Validation: Invalid input data
  - 409: Conflict: Email already registered
*/
func (handler *Handler) signup(writer http.ResponseWriter, request *http.Request) {
	var input SignupInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, token, err := handler.service.Signup(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.setSessionCookie(writer, token)
	respond.SuccessWithToken(writer, http.StatusCreated, token, account)
}

// loginRequest is the credential payload.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

/*
POST /api/v1/auth/login.

Description: Verifies credentials and issues a session token. Bad email and
bad password are indistinguishable in the response.

Request:
  - body: loginRequest

Response:
  - 200: Identity + token
  - 400: BadRequest: Missing email or password
  - 401: Unauthorized: Incorrect email or password
  - 429: TooManyRequests: Throttled after repeated failures
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, token, err := handler.service.Login(request.Context(), input.Email, input.Password, clientIP(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.setSessionCookie(writer, token)
	respond.SuccessWithToken(writer, http.StatusOK, token, account)
}

/*
GET /api/v1/auth/logout.

Description: Clears the session cookie. Stateless tokens cannot be revoked
server-side; clients must also discard any copy they hold.

Response:
  - 200: Message
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	handler.clearSessionCookie(writer)
	respond.Message(writer, http.StatusOK, "Logged out")
}

// forgotPasswordRequest names the account to start the reset flow for.
type forgotPasswordRequest struct {
	Email string `json:"email"`
}

/*
POST /api/v1/auth/forgot-password.

Description: Emails a single-use reset link valid for ten minutes. When
delivery fails, the stored token is discarded and the caller is told to
retry.

Request:
  - body: forgotPasswordRequest

Response:
  - 200: Message: Token sent to email
  - 404: NotFound: No account with that email
  - 500: DeliveryFailed: Email could not be sent
*/
func (handler *Handler) forgotPassword(writer http.ResponseWriter, request *http.Request) {
	var input forgotPasswordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if input.Email == "" {
		respond.Error(writer, request, validate.RequiredError("email", "This field is required"))
		return
	}

	resetURLBase := requestScheme(request) + "://" + request.Host + "/api/v1/auth/reset-password"
	if err := handler.service.RequestReset(request.Context(), input.Email, resetURLBase); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Message(writer, http.StatusOK, "Token sent to email")
}

// resetPasswordRequest carries the replacement password.
type resetPasswordRequest struct {
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

/*
PATCH /api/v1/auth/reset-password/{token}.

Description: Completes the reset flow with the plaintext token from the
emailed link. The token is single-use; a second submission fails like an
unknown token.

Request:
  - body: resetPasswordRequest

Response:
  - 200: Identity + token: Signed in with the new password
  - 400: BadRequest: Token is invalid or has expired
*/
func (handler *Handler) resetPassword(writer http.ResponseWriter, request *http.Request) {
	plaintextToken := requestutil.Param(request, "token")

	var input resetPasswordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, token, err := handler.service.CompleteReset(request.Context(), plaintextToken, input.Password, input.PasswordConfirm)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.setSessionCookie(writer, token)
	respond.SuccessWithToken(writer, http.StatusOK, token, account)
}

/*
PATCH /api/v1/auth/update-password.

Description: Rotates the password of the authenticated caller after
re-verifying the current one.

Request:
  - body: ChangePasswordInput

Response:
  - 200: Identity + token: Fresh session for the new password
  - 401: Unauthorized: Current password is wrong
*/
func (handler *Handler) updatePassword(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input ChangePasswordInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, token, err := handler.service.ChangePassword(request.Context(), principal.ID, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.setSessionCookie(writer, token)
	respond.SuccessWithToken(writer, http.StatusOK, token, account)
}

// # Helpers

// requestScheme resolves the external scheme, honoring proxy headers.
func requestScheme(request *http.Request) string {
	if proto := request.Header.Get("X-Forwarded-Proto"); proto != "" {
		return proto
	}
	if request.TLS != nil {
		return "https"
	}
	return "http"
}

// clientIP resolves the caller's address for the login throttle.
func clientIP(request *http.Request) string {
	return middleware.RealIP(request)
}
