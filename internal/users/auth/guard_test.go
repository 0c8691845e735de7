// Copyright (c) 2026 Trailhead. All rights reserved.
// Author: dev@trailhead.app

package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trailhead-app/trailhead/internal/platform/constants"
	"github.com/trailhead-app/trailhead/internal/platform/ctxutil"
	"github.com/trailhead-app/trailhead/internal/platform/sec"
	"github.com/trailhead-app/trailhead/internal/users/auth"
	"github.com/trailhead-app/trailhead/internal/users/identity"
)

// guardFixture wires a Guard around the in-memory store with a mutable clock.
type guardFixture struct {
	guard  *auth.Guard
	tokens *sec.TokenService
	store  *memoryStore
	now    *time.Time
}

func newGuardFixture(t *testing.T) *guardFixture {
	t.Helper()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := newMemoryStore()
	clock := func() time.Time { return now }
	tokens := sec.NewTokenService("test-secret-at-least-32-characters!!", "trailhead.app", 24*time.Hour, clock)

	return &guardFixture{
		guard:  auth.NewGuard(tokens, store),
		tokens: tokens,
		store:  store,
		now:    &now,
	}
}

func (f *guardFixture) addIdentity(t *testing.T, id string, role sec.Role) {
	t.Helper()
	f.store.identities[id] = &identity.Identity{
		ID:     id,
		Name:   "Test " + id,
		Email:  id + "@example.com",
		Role:   role,
		Active: true,
	}
}

// principalProbe records whether the wrapped handler ran and what principal
// it observed.
type principalProbe struct {
	ran       bool
	principal *sec.Principal
}

func (probe *principalProbe) handler() http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		probe.ran = true
		probe.principal = ctxutil.GetPrincipal(request.Context())
		writer.WriteHeader(http.StatusOK)
	})
}

func TestGuard_Protect(t *testing.T) {
	t.Parallel()

	t.Run("bearer token resolves the principal", func(t *testing.T) {
		t.Parallel()
		f := newGuardFixture(t)
		f.addIdentity(t, "u1", sec.RoleUser)
		token, err := f.tokens.Issue("u1")
		require.NoError(t, err)

		probe := &principalProbe{}
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set("Authorization", "Bearer "+token)
		recorder := httptest.NewRecorder()
		f.guard.Protect(probe.handler()).ServeHTTP(recorder, request)

		require.Equal(t, http.StatusOK, recorder.Code)
		require.True(t, probe.ran)
		require.NotNil(t, probe.principal)
		assert.Equal(t, "u1", probe.principal.ID)
		assert.Equal(t, sec.RoleUser, probe.principal.Role)
	})

	t.Run("session cookie is the fallback", func(t *testing.T) {
		t.Parallel()
		f := newGuardFixture(t)
		f.addIdentity(t, "u1", sec.RoleUser)
		token, err := f.tokens.Issue("u1")
		require.NoError(t, err)

		probe := &principalProbe{}
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.AddCookie(&http.Cookie{Name: constants.SessionCookieName, Value: token})
		recorder := httptest.NewRecorder()
		f.guard.Protect(probe.handler()).ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.True(t, probe.ran)
	})

	t.Run("missing token responds 401", func(t *testing.T) {
		t.Parallel()
		f := newGuardFixture(t)

		probe := &principalProbe{}
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		recorder := httptest.NewRecorder()
		f.guard.Protect(probe.handler()).ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		assert.False(t, probe.ran)
	})

	t.Run("tampered token responds 401", func(t *testing.T) {
		t.Parallel()
		f := newGuardFixture(t)
		f.addIdentity(t, "u1", sec.RoleUser)
		token, err := f.tokens.Issue("u1")
		require.NoError(t, err)

		probe := &principalProbe{}
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set("Authorization", "Bearer "+token+"x")
		recorder := httptest.NewRecorder()
		f.guard.Protect(probe.handler()).ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		assert.False(t, probe.ran)
	})

	t.Run("expired token responds 401", func(t *testing.T) {
		t.Parallel()
		f := newGuardFixture(t)
		f.addIdentity(t, "u1", sec.RoleUser)
		token, err := f.tokens.Issue("u1")
		require.NoError(t, err)

		*f.now = f.now.Add(25 * time.Hour)

		probe := &principalProbe{}
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set("Authorization", "Bearer "+token)
		recorder := httptest.NewRecorder()
		f.guard.Protect(probe.handler()).ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		assert.False(t, probe.ran)
	})

	t.Run("deleted identity responds 401", func(t *testing.T) {
		t.Parallel()
		f := newGuardFixture(t)
		f.addIdentity(t, "u1", sec.RoleUser)
		token, err := f.tokens.Issue("u1")
		require.NoError(t, err)

		require.NoError(t, f.store.SoftDelete(context.Background(), "u1"))

		probe := &principalProbe{}
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set("Authorization", "Bearer "+token)
		recorder := httptest.NewRecorder()
		f.guard.Protect(probe.handler()).ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		assert.False(t, probe.ran)
	})

	t.Run("token issued before a password change responds 401", func(t *testing.T) {
		t.Parallel()
		f := newGuardFixture(t)
		f.addIdentity(t, "u1", sec.RoleUser)
		token, err := f.tokens.Issue("u1")
		require.NoError(t, err)

		changedAt := f.now.Add(time.Minute)
		require.NoError(t, f.store.UpdatePassword(context.Background(), "u1", "new-hash", changedAt))

		probe := &principalProbe{}
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set("Authorization", "Bearer "+token)
		recorder := httptest.NewRecorder()
		f.guard.Protect(probe.handler()).ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		assert.False(t, probe.ran)
	})
}

func TestGuard_RestrictTo(t *testing.T) {
	t.Parallel()

	run := func(t *testing.T, role sec.Role, allowed ...sec.Role) *httptest.ResponseRecorder {
		t.Helper()
		f := newGuardFixture(t)
		f.addIdentity(t, "u1", role)
		token, err := f.tokens.Issue("u1")
		require.NoError(t, err)

		probe := &principalProbe{}
		chain := f.guard.Protect(f.guard.RestrictTo(allowed...)(probe.handler()))

		request := httptest.NewRequest(http.MethodDelete, "/", nil)
		request.Header.Set("Authorization", "Bearer "+token)
		recorder := httptest.NewRecorder()
		chain.ServeHTTP(recorder, request)
		return recorder
	}

	t.Run("allowed role passes", func(t *testing.T) {
		t.Parallel()
		recorder := run(t, sec.RoleAdmin, sec.RoleAdmin, sec.RoleLeadGuide)
		assert.Equal(t, http.StatusOK, recorder.Code)
	})

	t.Run("excluded role responds 403", func(t *testing.T) {
		t.Parallel()
		recorder := run(t, sec.RoleUser, sec.RoleAdmin, sec.RoleLeadGuide)
		assert.Equal(t, http.StatusForbidden, recorder.Code)
	})

	t.Run("without protect responds 401", func(t *testing.T) {
		t.Parallel()
		f := newGuardFixture(t)

		probe := &principalProbe{}
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		recorder := httptest.NewRecorder()
		f.guard.RestrictTo(sec.RoleAdmin)(probe.handler()).ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})
}

func TestGuard_OptionalIdentify(t *testing.T) {
	t.Parallel()

	t.Run("valid token resolves the principal", func(t *testing.T) {
		t.Parallel()
		f := newGuardFixture(t)
		f.addIdentity(t, "u1", sec.RoleUser)
		token, err := f.tokens.Issue("u1")
		require.NoError(t, err)

		probe := &principalProbe{}
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set("Authorization", "Bearer "+token)
		recorder := httptest.NewRecorder()
		f.guard.OptionalIdentify(probe.handler()).ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusOK, recorder.Code)
		require.NotNil(t, probe.principal)
		assert.Equal(t, "u1", probe.principal.ID)
	})

	t.Run("anonymous request still runs", func(t *testing.T) {
		t.Parallel()
		f := newGuardFixture(t)

		probe := &principalProbe{}
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		recorder := httptest.NewRecorder()
		f.guard.OptionalIdentify(probe.handler()).ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.True(t, probe.ran)
		assert.Nil(t, probe.principal)
	})

	t.Run("bad token is ignored, not rejected", func(t *testing.T) {
		t.Parallel()
		f := newGuardFixture(t)

		probe := &principalProbe{}
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set("Authorization", "Bearer garbage")
		recorder := httptest.NewRecorder()
		f.guard.OptionalIdentify(probe.handler()).ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.True(t, probe.ran)
		assert.Nil(t, probe.principal)
	})
}
