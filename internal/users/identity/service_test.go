// Copyright (c) 2026 Trailhead. All rights reserved.
// Author: dev@trailhead.app

package identity_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trailhead-app/trailhead/internal/platform/apperr"
	"github.com/trailhead-app/trailhead/internal/platform/sec"
	"github.com/trailhead-app/trailhead/internal/users/identity"
	"github.com/trailhead-app/trailhead/pkg/pointer"
	"github.com/trailhead-app/trailhead/pkg/query"
)

// fakeStore holds a single mutable account for profile tests.
type fakeStore struct {
	account *identity.Identity
}

func (store *fakeStore) Create(_ context.Context, _ *identity.Identity) error { return nil }

func (store *fakeStore) FindByID(_ context.Context, id string) (*identity.Identity, error) {
	if store.account == nil || store.account.ID != id || !store.account.Active {
		return nil, apperr.NotFound("Identity")
	}
	clone := *store.account
	return &clone, nil
}

func (store *fakeStore) FindByEmail(_ context.Context, _ string) (*identity.Identity, error) {
	return nil, apperr.NotFound("Identity")
}

func (store *fakeStore) UpdateProfile(_ context.Context, account *identity.Identity) error {
	store.account = account
	return nil
}

func (store *fakeStore) UpdatePassword(_ context.Context, _, _ string, _ time.Time) error {
	return nil
}

func (store *fakeStore) SetResetToken(_ context.Context, _, _ string, _ time.Time) error { return nil }
func (store *fakeStore) ClearResetToken(_ context.Context, _ string) error               { return nil }

func (store *fakeStore) ConsumeResetToken(_ context.Context, _, _ string, _ time.Time) (*identity.Identity, error) {
	return nil, apperr.NotFound("Identity")
}

func (store *fakeStore) Search(_ context.Context, _ query.Spec, _ ...query.Filter) ([]map[string]any, error) {
	return nil, nil
}

func (store *fakeStore) SoftDelete(_ context.Context, id string) error {
	if store.account == nil || store.account.ID != id {
		return apperr.NotFound("Identity")
	}
	store.account.Active = false
	return nil
}

func newServiceFixture() (*identity.Service, *fakeStore) {
	store := &fakeStore{account: &identity.Identity{
		ID:     "u1",
		Name:   "Alva Lindqvist",
		Email:  "alva@example.com",
		Role:   sec.RoleUser,
		Active: true,
	}}
	return identity.NewService(store), store
}

func TestService_UpdateMe(t *testing.T) {
	t.Parallel()
	service, store := newServiceFixture()

	updated, err := service.UpdateMe(context.Background(), "u1", identity.UpdateMeInput{
		Name: pointer.To("Alva L."),
	})
	require.NoError(t, err)

	assert.Equal(t, "Alva L.", updated.Name)
	// Unprovided fields keep their value.
	assert.Equal(t, "alva@example.com", updated.Email)
	assert.Equal(t, "Alva L.", store.account.Name)
}

func TestService_UpdateMe_RejectsPasswordFields(t *testing.T) {
	t.Parallel()
	service, store := newServiceFixture()

	_, err := service.UpdateMe(context.Background(), "u1", identity.UpdateMeInput{
		Name:     pointer.To("Alva L."),
		Password: pointer.To("newpass99"),
	})
	require.Error(t, err)
	assert.Equal(t, 400, apperr.As(err).HTTPStatus)
	assert.Contains(t, err.Error(), "/update-password")

	// Nothing was written.
	assert.Equal(t, "Alva Lindqvist", store.account.Name)
}

func TestService_UpdateMe_ValidatesMergedResult(t *testing.T) {
	t.Parallel()
	service, _ := newServiceFixture()

	_, err := service.UpdateMe(context.Background(), "u1", identity.UpdateMeInput{
		Email: pointer.To("not-an-email"),
	})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperr.As(err).Code)
}

func TestService_DeleteMe(t *testing.T) {
	t.Parallel()
	service, store := newServiceFixture()

	require.NoError(t, service.DeleteMe(context.Background(), "u1"))
	assert.False(t, store.account.Active)

	// The deactivated account is invisible to further lookups.
	_, err := service.GetMe(context.Background(), "u1")
	require.Error(t, err)
	assert.Equal(t, 404, apperr.As(err).HTTPStatus)
}
