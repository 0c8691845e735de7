// Copyright (c) 2026 Trailhead. All rights reserved.
// Author: dev@trailhead.app

package auth_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trailhead-app/trailhead/internal/platform/apperr"
	"github.com/trailhead-app/trailhead/internal/users/auth"
)

func newThrottle(t *testing.T) (*auth.Throttle, *miniredis.Miniredis) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return auth.NewThrottle(client), server
}

func TestThrottle_AllowsUntilLimit(t *testing.T) {
	t.Parallel()

	throttle, _ := newThrottle(t)
	ctx := context.Background()

	for i := 0; i < auth.MaxLoginAttempts-1; i++ {
		throttle.RecordFailure(ctx, "alva@example.com", "10.0.0.1")
		assert.NoError(t, throttle.Check(ctx, "alva@example.com", "10.0.0.1"))
	}

	// The attempt that reaches the limit trips the throttle.
	throttle.RecordFailure(ctx, "alva@example.com", "10.0.0.1")
	err := throttle.Check(ctx, "alva@example.com", "10.0.0.1")
	require.Error(t, err)
	assert.Equal(t, 429, apperr.As(err).HTTPStatus)
}

func TestThrottle_ScopedPerEmailAndAddress(t *testing.T) {
	t.Parallel()

	throttle, _ := newThrottle(t)
	ctx := context.Background()

	for i := 0; i < auth.MaxLoginAttempts; i++ {
		throttle.RecordFailure(ctx, "alva@example.com", "10.0.0.1")
	}

	require.Error(t, throttle.Check(ctx, "alva@example.com", "10.0.0.1"))

	// The same account from another address is unaffected, and so is a
	// different account from the throttled address.
	assert.NoError(t, throttle.Check(ctx, "alva@example.com", "10.0.0.2"))
	assert.NoError(t, throttle.Check(ctx, "finn@example.com", "10.0.0.1"))
}

func TestThrottle_ResetClearsCounter(t *testing.T) {
	t.Parallel()

	throttle, _ := newThrottle(t)
	ctx := context.Background()

	for i := 0; i < auth.MaxLoginAttempts; i++ {
		throttle.RecordFailure(ctx, "alva@example.com", "10.0.0.1")
	}
	require.Error(t, throttle.Check(ctx, "alva@example.com", "10.0.0.1"))

	throttle.Reset(ctx, "alva@example.com", "10.0.0.1")
	assert.NoError(t, throttle.Check(ctx, "alva@example.com", "10.0.0.1"))
}

func TestThrottle_WindowExpiry(t *testing.T) {
	t.Parallel()

	throttle, server := newThrottle(t)
	ctx := context.Background()

	for i := 0; i < auth.MaxLoginAttempts; i++ {
		throttle.RecordFailure(ctx, "alva@example.com", "10.0.0.1")
	}
	require.Error(t, throttle.Check(ctx, "alva@example.com", "10.0.0.1"))

	server.FastForward(auth.LoginThrottleWindow)
	assert.NoError(t, throttle.Check(ctx, "alva@example.com", "10.0.0.1"))
}
