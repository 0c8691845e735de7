// Copyright (c) 2026 Trailhead. All rights reserved.
// Author: dev@trailhead.app

package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/trailhead-app/trailhead/internal/platform/apperr"
	"github.com/trailhead-app/trailhead/internal/platform/constants"
	"github.com/trailhead-app/trailhead/internal/platform/ctxutil"
	"github.com/trailhead-app/trailhead/internal/platform/respond"
	"github.com/trailhead-app/trailhead/internal/platform/sec"
	"github.com/trailhead-app/trailhead/internal/users/identity"
)

// Guard is the access-control middleware set for protected routes.
//
// It verifies the session token, re-resolves the identity on every request,
// and rejects tokens issued before the identity's last password change. The
// resolved [sec.Principal] is placed in the request context for handlers.
type Guard struct {
	tokens     *sec.TokenService
	identities identity.Store
}

// NewGuard constructs the access guard.
func NewGuard(tokens *sec.TokenService, identities identity.Store) *Guard {
	return &Guard{tokens: tokens, identities: identities}
}

// Protect requires a valid session. Requests without one are rejected with
// 401 before the wrapped handler runs.
func (guard *Guard) Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		principal, err := guard.resolve(request)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}

		ctx := ctxutil.WithPrincipal(request.Context(), principal)
		next.ServeHTTP(writer, request.WithContext(ctx))
	})
}

// RestrictTo limits a protected route to the given roles. It must be
// mounted after [Guard.Protect]; an unresolved principal is a 401.
func (guard *Guard) RestrictTo(allowed ...sec.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			principal := ctxutil.GetPrincipal(request.Context())
			if principal == nil {
				respond.Error(writer, request, apperr.Unauthorized("You are not logged in"))
				return
			}

			if !principal.Role.OneOf(allowed...) {
				respond.Error(writer, request, apperr.Forbidden("You do not have permission to perform this action"))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// OptionalIdentify resolves the caller when a valid session is present but
// never rejects the request. Handlers see either a principal or nil.
func (guard *Guard) OptionalIdentify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		principal, err := guard.resolve(request)
		if err != nil {
			next.ServeHTTP(writer, request)
			return
		}

		ctx := ctxutil.WithPrincipal(request.Context(), principal)
		next.ServeHTTP(writer, request.WithContext(ctx))
	})
}

// resolve runs the full verification chain for one request.
func (guard *Guard) resolve(request *http.Request) (*sec.Principal, error) {

	// 1. The token travels in the Authorization header, or failing that,
	// in the session cookie set at login.
	token := bearerToken(request)
	if token == "" {
		if cookie, err := request.Cookie(constants.SessionCookieName); err == nil {
			token = cookie.Value
		}
	}
	if token == "" {
		return nil, apperr.Unauthorized("You are not logged in. Please log in to get access.")
	}

	// 2. Cryptographic verification.
	claims, err := guard.tokens.Verify(token)
	if err != nil {
		if errors.Is(err, sec.ErrTokenExpired) {
			return nil, apperr.Unauthorized("Your token has expired. Please log in again.")
		}
		return nil, apperr.Unauthorized("Invalid token. Please log in again.")
	}

	// 3. The subject must still exist and be active.
	account, err := guard.identities.FindByID(request.Context(), claims.IdentityID)
	if err != nil {
		return nil, apperr.Unauthorized("The user belonging to this token no longer exists.")
	}

	// 4. A password change invalidates every token issued before it.
	if account.ChangedPasswordAfter(claims.IssuedAt) {
		return nil, apperr.Unauthorized("Password was changed recently. Please log in again.")
	}

	return &sec.Principal{
		ID:    account.ID,
		Name:  account.Name,
		Email: account.Email,
		Role:  account.Role,
	}, nil
}

// bearerToken extracts the token from an "Authorization: Bearer" header.
func bearerToken(request *http.Request) string {
	header := request.Header.Get("Authorization")
	if header == "" {
		return ""
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}

	return strings.TrimSpace(token)
}
