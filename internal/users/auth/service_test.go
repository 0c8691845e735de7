// Copyright (c) 2026 Trailhead. All rights reserved.
// Author: dev@trailhead.app

package auth_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trailhead-app/trailhead/internal/platform/apperr"
	"github.com/trailhead-app/trailhead/internal/platform/email"
	"github.com/trailhead-app/trailhead/internal/platform/sec"
	"github.com/trailhead-app/trailhead/internal/users/auth"
	"github.com/trailhead-app/trailhead/internal/users/identity"
	"github.com/trailhead-app/trailhead/pkg/query"
)

// # Test Fixtures

// memoryStore is an in-memory identity.Store for service tests.
type memoryStore struct {
	identities map[string]*identity.Identity
}

func newMemoryStore() *memoryStore {
	return &memoryStore{identities: map[string]*identity.Identity{}}
}

func (store *memoryStore) Create(_ context.Context, account *identity.Identity) error {
	for _, existing := range store.identities {
		if existing.Email == account.Email && existing.Active {
			return apperr.Conflict("Email already in use")
		}
	}
	clone := *account
	store.identities[account.ID] = &clone
	return nil
}

func (store *memoryStore) FindByID(_ context.Context, id string) (*identity.Identity, error) {
	account, ok := store.identities[id]
	if !ok || !account.Active {
		return nil, apperr.NotFound("Identity")
	}
	clone := *account
	return &clone, nil
}

func (store *memoryStore) FindByEmail(_ context.Context, emailAddr string) (*identity.Identity, error) {
	for _, account := range store.identities {
		if account.Email == emailAddr && account.Active {
			clone := *account
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("Identity")
}

func (store *memoryStore) UpdateProfile(_ context.Context, account *identity.Identity) error {
	existing, ok := store.identities[account.ID]
	if !ok || !existing.Active {
		return apperr.NotFound("Identity")
	}
	existing.Name = account.Name
	existing.Email = account.Email
	existing.Photo = account.Photo
	existing.Role = account.Role
	return nil
}

func (store *memoryStore) UpdatePassword(_ context.Context, id, newHash string, changedAt time.Time) error {
	account, ok := store.identities[id]
	if !ok || !account.Active {
		return apperr.NotFound("Identity")
	}
	account.PasswordHash = newHash
	account.PasswordChangedAt = &changedAt
	return nil
}

func (store *memoryStore) SetResetToken(_ context.Context, id, tokenHash string, expiresAt time.Time) error {
	account, ok := store.identities[id]
	if !ok || !account.Active {
		return apperr.NotFound("Identity")
	}
	account.ResetTokenHash = tokenHash
	account.ResetTokenExpiresAt = &expiresAt
	return nil
}

func (store *memoryStore) ClearResetToken(_ context.Context, id string) error {
	if account, ok := store.identities[id]; ok {
		account.ResetTokenHash = ""
		account.ResetTokenExpiresAt = nil
	}
	return nil
}

func (store *memoryStore) ConsumeResetToken(_ context.Context, tokenHash, newHash string, now time.Time) (*identity.Identity, error) {
	for _, account := range store.identities {
		if !account.Active || account.ResetTokenHash != tokenHash {
			continue
		}
		if account.ResetTokenExpiresAt == nil || !account.ResetTokenExpiresAt.After(now) {
			continue
		}

		account.PasswordHash = newHash
		changedAt := now.Add(-time.Second)
		account.PasswordChangedAt = &changedAt
		account.ResetTokenHash = ""
		account.ResetTokenExpiresAt = nil

		clone := *account
		return &clone, nil
	}
	return nil, apperr.NotFound("Identity")
}

func (store *memoryStore) Search(_ context.Context, _ query.Spec, _ ...query.Filter) ([]map[string]any, error) {
	return nil, nil
}

func (store *memoryStore) SoftDelete(_ context.Context, id string) error {
	account, ok := store.identities[id]
	if !ok || !account.Active {
		return apperr.NotFound("Identity")
	}
	account.Active = false
	return nil
}

// recordingMailer captures outbound messages; optionally fails.
type recordingMailer struct {
	sent    []email.Message
	failErr error
}

func (mailer *recordingMailer) Send(_ context.Context, message email.Message) error {
	if mailer.failErr != nil {
		return mailer.failErr
	}
	mailer.sent = append(mailer.sent, message)
	return nil
}

// fixture bundles the service with its injectable parts.
type fixture struct {
	service *auth.Service
	store   *memoryStore
	mailer  *recordingMailer
	now     *time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := newMemoryStore()
	mailer := &recordingMailer{}
	clock := func() time.Time { return now }
	tokens := sec.NewTokenService("test-secret-at-least-32-characters!!", "trailhead.app", 24*time.Hour, clock)

	return &fixture{
		service: auth.NewService(store, tokens, mailer, nil, clock),
		store:   store,
		mailer:  mailer,
		now:     &now,
	}
}

func (f *fixture) signup(t *testing.T, name, emailAddr, password string) *identity.Identity {
	t.Helper()
	account, _, err := f.service.Signup(context.Background(), auth.SignupInput{
		Name:            name,
		Email:           emailAddr,
		Password:        password,
		PasswordConfirm: password,
	})
	require.NoError(t, err)
	return account
}

// # Signup

func TestService_Signup(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	account, token, err := f.service.Signup(context.Background(), auth.SignupInput{
		Name:            "Alva Lindqvist",
		Email:           "alva@example.com",
		Password:        "pass1234",
		PasswordConfirm: "pass1234",
	})
	require.NoError(t, err)

	assert.Equal(t, sec.RoleUser, account.Role)
	assert.NotEmpty(t, token)

	// The stored credential is a hash, never the plaintext.
	stored := f.store.identities[account.ID]
	assert.NotEqual(t, "pass1234", stored.PasswordHash)
	assert.True(t, sec.CheckPasswordHash("pass1234", stored.PasswordHash))
}

func TestService_Signup_NormalizesEmail(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	account, _, err := f.service.Signup(context.Background(), auth.SignupInput{
		Name:            "Alva Lindqvist",
		Email:           "  Alva@Example.COM ",
		Password:        "pass1234",
		PasswordConfirm: "pass1234",
	})
	require.NoError(t, err)
	assert.Equal(t, "alva@example.com", account.Email)

	// Login is case-insensitive on the address.
	_, _, err = f.service.Login(context.Background(), "ALVA@example.com", "pass1234", "10.0.0.1")
	require.NoError(t, err)
}

func TestService_Signup_Validation(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	tests := []struct {
		name  string
		input auth.SignupInput
	}{
		{
			name:  "password confirmation mismatch",
			input: auth.SignupInput{Name: "A", Email: "a@example.com", Password: "pass1234", PasswordConfirm: "pass9999"},
		},
		{
			name:  "password too short",
			input: auth.SignupInput{Name: "A", Email: "a@example.com", Password: "short", PasswordConfirm: "short"},
		},
		{
			name:  "invalid email",
			input: auth.SignupInput{Name: "A", Email: "not-an-email", Password: "pass1234", PasswordConfirm: "pass1234"},
		},
		{
			name:  "missing name",
			input: auth.SignupInput{Email: "a@example.com", Password: "pass1234", PasswordConfirm: "pass1234"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := f.service.Signup(context.Background(), tc.input)
			require.Error(t, err)
			assert.Equal(t, "VALIDATION_FAILED", apperr.As(err).Code)
		})
	}
}

// # Login

func TestService_Login(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.signup(t, "Alva", "alva@example.com", "pass1234")

	account, token, err := f.service.Login(context.Background(), "alva@example.com", "pass1234", "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, "alva@example.com", account.Email)
	assert.NotEmpty(t, token)
}

func TestService_Login_BadCredentialsAreIndistinguishable(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.signup(t, "Alva", "alva@example.com", "pass1234")

	_, _, wrongPassword := f.service.Login(context.Background(), "alva@example.com", "nope5678", "10.0.0.1")
	_, _, unknownEmail := f.service.Login(context.Background(), "ghost@example.com", "pass1234", "10.0.0.1")

	require.Error(t, wrongPassword)
	require.Error(t, unknownEmail)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
	assert.Equal(t, 401, apperr.As(wrongPassword).HTTPStatus)
	assert.Equal(t, 401, apperr.As(unknownEmail).HTTPStatus)
}

func TestService_Login_MissingFields(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, _, err := f.service.Login(context.Background(), "", "", "10.0.0.1")
	require.Error(t, err)
	assert.Equal(t, 400, apperr.As(err).HTTPStatus)
}

// # Password Reset

func TestService_RequestReset(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	account := f.signup(t, "Alva", "alva@example.com", "pass1234")

	err := f.service.RequestReset(context.Background(), "alva@example.com", "https://api.test/api/v1/auth/reset-password")
	require.NoError(t, err)

	require.Len(t, f.mailer.sent, 1)
	message := f.mailer.sent[0]
	assert.Equal(t, "alva@example.com", message.To)

	// The mail carries the plaintext; the store carries only its digest.
	plaintext := extractToken(t, message.Body)
	stored := f.store.identities[account.ID]
	assert.NotEmpty(t, stored.ResetTokenHash)
	assert.NotContains(t, message.Body, stored.ResetTokenHash)
	assert.Equal(t, sec.HashToken(plaintext), stored.ResetTokenHash)

	require.NotNil(t, stored.ResetTokenExpiresAt)
	assert.Equal(t, f.now.Add(auth.ResetTokenTTL), *stored.ResetTokenExpiresAt)
}

func TestService_RequestReset_UnknownEmail(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	err := f.service.RequestReset(context.Background(), "ghost@example.com", "https://api.test/reset")
	require.Error(t, err)
	assert.Equal(t, 404, apperr.As(err).HTTPStatus)
}

func TestService_RequestReset_DeliveryFailureClearsToken(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	account := f.signup(t, "Alva", "alva@example.com", "pass1234")
	f.mailer.failErr = errors.New("smtp: connection refused")

	err := f.service.RequestReset(context.Background(), "alva@example.com", "https://api.test/reset")
	require.Error(t, err)
	assert.Equal(t, "DELIVERY_FAILED", apperr.As(err).Code)

	// No orphaned token may survive a failed delivery.
	stored := f.store.identities[account.ID]
	assert.Empty(t, stored.ResetTokenHash)
	assert.Nil(t, stored.ResetTokenExpiresAt)
}

func TestService_CompleteReset(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	account := f.signup(t, "Alva", "alva@example.com", "pass1234")

	require.NoError(t, f.service.RequestReset(context.Background(), "alva@example.com", "https://api.test/reset"))
	plaintext := extractToken(t, f.mailer.sent[0].Body)

	reset, token, err := f.service.CompleteReset(context.Background(), plaintext, "newpass99", "newpass99")
	require.NoError(t, err)
	assert.Equal(t, account.ID, reset.ID)
	assert.NotEmpty(t, token)

	stored := f.store.identities[account.ID]
	assert.True(t, sec.CheckPasswordHash("newpass99", stored.PasswordHash))
	assert.Empty(t, stored.ResetTokenHash)
	require.NotNil(t, stored.PasswordChangedAt)

	// Single use: the same token cannot be claimed twice.
	_, _, err = f.service.CompleteReset(context.Background(), plaintext, "another99", "another99")
	require.Error(t, err)
	assert.Equal(t, 400, apperr.As(err).HTTPStatus)
}

func TestService_CompleteReset_ExpiredToken(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.signup(t, "Alva", "alva@example.com", "pass1234")

	require.NoError(t, f.service.RequestReset(context.Background(), "alva@example.com", "https://api.test/reset"))
	plaintext := extractToken(t, f.mailer.sent[0].Body)

	// Advance past the TTL.
	*f.now = f.now.Add(auth.ResetTokenTTL + time.Minute)

	_, _, err := f.service.CompleteReset(context.Background(), plaintext, "newpass99", "newpass99")
	require.Error(t, err)
	assert.Equal(t, 400, apperr.As(err).HTTPStatus)
}

func TestService_CompleteReset_BogusToken(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, _, err := f.service.CompleteReset(context.Background(), "deadbeef", "newpass99", "newpass99")
	require.Error(t, err)
	assert.Equal(t, "Token is invalid or has expired", err.Error())
}

// # Password Change

func TestService_ChangePassword(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	account := f.signup(t, "Alva", "alva@example.com", "pass1234")

	updated, token, err := f.service.ChangePassword(context.Background(), account.ID, auth.ChangePasswordInput{
		CurrentPassword: "pass1234",
		Password:        "newpass99",
		PasswordConfirm: "newpass99",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	// The change moment is backdated so the freshly issued token predates
	// nothing.
	require.NotNil(t, updated.PasswordChangedAt)
	assert.Equal(t, f.now.Add(-time.Second), *updated.PasswordChangedAt)

	stored := f.store.identities[account.ID]
	assert.True(t, sec.CheckPasswordHash("newpass99", stored.PasswordHash))
}

func TestService_ChangePassword_WrongCurrent(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	account := f.signup(t, "Alva", "alva@example.com", "pass1234")

	_, _, err := f.service.ChangePassword(context.Background(), account.ID, auth.ChangePasswordInput{
		CurrentPassword: "wrong999",
		Password:        "newpass99",
		PasswordConfirm: "newpass99",
	})
	require.Error(t, err)
	assert.Equal(t, 401, apperr.As(err).HTTPStatus)
}

// extractToken pulls the reset token out of the emailed link.
func extractToken(t *testing.T, body string) string {
	t.Helper()
	idx := strings.LastIndex(body, "/")
	require.GreaterOrEqual(t, idx, 0)
	token := body[idx+1:]
	token = strings.TrimSpace(strings.SplitN(token, "\n", 2)[0])
	require.NotEmpty(t, token)
	return token
}
