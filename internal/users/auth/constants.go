// Copyright (c) 2026 Trailhead. All rights reserved.
// Author: dev@trailhead.app

package auth

import "time"

// # Authentication Constraints

const (
	// ResetTokenTTL is the validity window of a password reset token.
	// Deliberately short: the token travels over email.
	ResetTokenTTL = 10 * time.Minute

	// ResetTokenLength is the byte length of the random reset token.
	ResetTokenLength = 32

	// PasswordMinLength is the minimum accepted password length.
	PasswordMinLength = 8

	// MaxLoginAttempts is the number of failed logins tolerated per
	// identity and address within the throttle window.
	MaxLoginAttempts = 10

	// LoginThrottleWindow is how long a failed-login counter lives.
	LoginThrottleWindow = 15 * time.Minute
)
