// Copyright (c) 2026 Trailhead. All rights reserved.
// Author: dev@trailhead.app

package sec_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trailhead-app/trailhead/internal/platform/sec"
)

const testSecret = "test-secret-at-least-32-characters!!"

// fixedClock returns a Clock pinned to the given instant.
func fixedClock(at time.Time) sec.Clock {
	return func() time.Time { return at }
}

func TestTokenService_RoundTrip(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	service := sec.NewTokenService(testSecret, "trailhead.app", time.Hour, fixedClock(now))

	token, err := service.Issue("identity-42")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := service.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "identity-42", claims.IdentityID)
	assert.Equal(t, now.Unix(), claims.IssuedAt.Unix())
}

func TestTokenService_ExpiredToken(t *testing.T) {
	t.Parallel()

	issuedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	issuer := sec.NewTokenService(testSecret, "trailhead.app", time.Hour, fixedClock(issuedAt))

	token, err := issuer.Issue("identity-42")
	require.NoError(t, err)

	// Same service, clock advanced past the lifetime.
	verifier := sec.NewTokenService(testSecret, "trailhead.app", time.Hour, fixedClock(issuedAt.Add(2*time.Hour)))
	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, sec.ErrTokenExpired)

	// One second before expiry it still verifies.
	verifier = sec.NewTokenService(testSecret, "trailhead.app", time.Hour, fixedClock(issuedAt.Add(time.Hour-time.Second)))
	_, err = verifier.Verify(token)
	assert.NoError(t, err)
}

func TestTokenService_Tampering(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	service := sec.NewTokenService(testSecret, "trailhead.app", time.Hour, fixedClock(now))

	token, err := service.Issue("identity-42")
	require.NoError(t, err)

	t.Run("flipped payload byte", func(t *testing.T) {
		parts := strings.Split(token, ".")
		require.Len(t, parts, 3)

		tampered := parts[0] + "." + "x" + parts[1][1:] + "." + parts[2]
		_, err := service.Verify(tampered)
		assert.ErrorIs(t, err, sec.ErrTokenInvalid)
	})

	t.Run("signed with a different secret", func(t *testing.T) {
		other := sec.NewTokenService("another-secret-of-sufficient-size!!!", "trailhead.app", time.Hour, fixedClock(now))
		foreign, err := other.Issue("identity-42")
		require.NoError(t, err)

		_, err = service.Verify(foreign)
		assert.ErrorIs(t, err, sec.ErrTokenInvalid)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := service.Verify("not-a-token")
		assert.ErrorIs(t, err, sec.ErrTokenInvalid)
	})
}

func TestParseRole(t *testing.T) {
	t.Parallel()

	for _, valid := range []string{"admin", "user", "guide", "lead-guide"} {
		role, err := sec.ParseRole(valid)
		require.NoError(t, err)
		assert.Equal(t, sec.Role(valid), role)
	}

	for _, invalid := range []string{"", "root", "Admin", "superuser"} {
		_, err := sec.ParseRole(invalid)
		assert.Error(t, err, "role %q should be rejected", invalid)
	}
}

func TestHashPassword(t *testing.T) {
	t.Parallel()

	hash, err := sec.HashPassword("pass1234")
	require.NoError(t, err)
	require.NotEqual(t, "pass1234", hash)

	assert.True(t, sec.CheckPasswordHash("pass1234", hash))
	assert.False(t, sec.CheckPasswordHash("pass12345", hash))
	assert.False(t, sec.CheckPasswordHash("pass1234", "not-a-hash"))
}

func TestHashToken(t *testing.T) {
	t.Parallel()

	digest := sec.HashToken("abc")
	assert.Len(t, digest, 64)
	assert.Equal(t, digest, sec.HashToken("abc"))
	assert.NotEqual(t, digest, sec.HashToken("abd"))
}

func TestGenerateSecureToken(t *testing.T) {
	t.Parallel()

	first, err := sec.GenerateSecureToken(32)
	require.NoError(t, err)
	assert.Len(t, first, 64)

	second, err := sec.GenerateSecureToken(32)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}
