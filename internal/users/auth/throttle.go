// Copyright (c) 2026 Trailhead. All rights reserved.
// Author: dev@trailhead.app

package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/trailhead-app/trailhead/internal/platform/apperr"
	"github.com/trailhead-app/trailhead/internal/platform/constants"
	"github.com/trailhead-app/trailhead/internal/platform/ctxutil"
)

// Throttle counts failed login attempts per email and client address in
// Redis, with a rolling expiry window.
//
// # Availability
//
// Redis failures never block a login: an unreadable counter is treated as
// zero and an unwritable one is logged and skipped. The throttle is a
// brake on brute force, not a second source of authentication truth.
type Throttle struct {
	client *redis.Client
}

// NewThrottle constructs a login throttle over the shared Redis client.
func NewThrottle(client *redis.Client) *Throttle {
	return &Throttle{client: client}
}

// key scopes the counter to one email and one address, so an attacker
// hammering a single account does not lock out its real owner elsewhere.
func (throttle *Throttle) key(emailAddr, clientIP string) string {
	return fmt.Sprintf("%s%s:%s", constants.RedisPrefixLoginThrottle, emailAddr, clientIP)
}

/*
Check rejects the attempt when the pair's failure count has reached the
limit.

Parameters:
  - context: context.Context
  - emailAddr: string
  - clientIP: string

Returns:
  - error: apperr.TooManyRequests when throttled, nil otherwise
*/
func (throttle *Throttle) Check(context context.Context, emailAddr, clientIP string) error {
	count, err := throttle.client.Get(context, throttle.key(emailAddr, clientIP)).Int()
	if err != nil {
		// Missing key or an unreachable Redis both mean "not throttled".
		return nil
	}

	if count >= MaxLoginAttempts {
		return apperr.TooManyRequests("Too many failed login attempts. Please try again later.")
	}

	return nil
}

// RecordFailure bumps the pair's counter and refreshes its expiry window.
func (throttle *Throttle) RecordFailure(context context.Context, emailAddr, clientIP string) {
	key := throttle.key(emailAddr, clientIP)

	pipe := throttle.client.TxPipeline()
	incr := pipe.Incr(context, key)
	pipe.Expire(context, key, LoginThrottleWindow)
	if _, err := pipe.Exec(context); err != nil {
		ctxutil.GetLogger(context).WarnContext(context, "login_throttle_record_failed",
			slog.String("error", err.Error()),
		)
		return
	}

	_ = incr.Val()
}

// Reset clears the pair's counter after a successful login.
func (throttle *Throttle) Reset(context context.Context, emailAddr, clientIP string) {
	if err := throttle.client.Del(context, throttle.key(emailAddr, clientIP)).Err(); err != nil {
		ctxutil.GetLogger(context).WarnContext(context, "login_throttle_reset_failed",
			slog.String("error", err.Error()),
		)
	}
}
