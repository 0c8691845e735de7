// Copyright (c) 2026 Trailhead. All rights reserved.
// Author: dev@trailhead.app

/*
Package auth implements credential management and the access guard.

It owns signup, login, the password reset flow, and the middleware that
gates protected routes. Account data itself lives in the identity package;
this layer only ever touches credentials and tokens.

# Security Model

Sessions are stateless signed tokens. A token is valid until it expires or
the identity's password changes, whichever comes first. Password reset
tokens are random secrets delivered by email and stored only as SHA-256
digests, so a database leak exposes nothing replayable.
*/
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/trailhead-app/trailhead/internal/platform/apperr"
	"github.com/trailhead-app/trailhead/internal/platform/email"
	"github.com/trailhead-app/trailhead/internal/platform/sec"
	"github.com/trailhead-app/trailhead/internal/platform/validate"
	"github.com/trailhead-app/trailhead/internal/users/identity"
	"github.com/trailhead-app/trailhead/pkg/uuidv7"
)

// errBadCredentials is the single failure surfaced for both an unknown
// email and a wrong password, so responses never reveal which half failed.
var errBadCredentials = apperr.Unauthorized("Incorrect email or password")

// Service implements the credential and session flows.
type Service struct {
	identities identity.Store
	tokens     *sec.TokenService
	mailer     email.Sender
	throttle   *Throttle
	clock      sec.Clock
}

// NewService constructs the auth service. The clock may be nil, in which
// case [time.Now] is used.
func NewService(identities identity.Store, tokens *sec.TokenService, mailer email.Sender, throttle *Throttle, clock sec.Clock) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		identities: identities,
		tokens:     tokens,
		mailer:     mailer,
		throttle:   throttle,
		clock:      clock,
	}
}

// Tokens exposes the token service for the guard and cookie wiring.
func (service *Service) Tokens() *sec.TokenService {
	return service.tokens
}

// # Signup

// SignupInput is the registration payload.
type SignupInput struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

/*
Signup registers a new identity and signs it in.

Description: The role is always "user"; there is no payload field that can
influence it. Privilege is granted later, by an admin, through the account
management endpoints.

Parameters:
  - context: context.Context
  - input: SignupInput

Returns:
  - *identity.Identity: The created account
  - string: A freshly issued session token
  - error: Validation failures, apperr.Conflict on duplicate email
*/
func (service *Service) Signup(context context.Context, input SignupInput) (*identity.Identity, string, error) {
	input.Email = identity.NormalizeEmail(input.Email)

	// 1. Validate the registration payload.
	validator := &validate.Validator{}
	validator.Required(identity.FieldName, input.Name).MaxLen(identity.FieldName, input.Name, 100)
	validator.Required(identity.FieldEmail, input.Email).Email(identity.FieldEmail, input.Email)
	validator.MinLen(identity.FieldPassword, input.Password, PasswordMinLength)
	validator.Matches(identity.FieldPasswordConfirm, input.PasswordConfirm, input.Password, "Passwords do not match")
	if err := validator.Err(); err != nil {
		return nil, "", err
	}

	// 2. Hash the password.
	hash, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, "", apperr.Internal(err)
	}

	// 3. Persist the account.
	account := &identity.Identity{
		ID:           uuidv7.New(),
		Name:         input.Name,
		Email:        input.Email,
		Role:         sec.RoleUser,
		PasswordHash: hash,
		Active:       true,
	}
	if err := service.identities.Create(context, account); err != nil {
		return nil, "", err
	}

	// 4. Sign the new account in immediately.
	token, err := service.tokens.Issue(account.ID)
	if err != nil {
		return nil, "", apperr.Internal(err)
	}

	return account, token, nil
}

// # Login

/*
Login verifies credentials and issues a session token.

Description: Unknown email and wrong password produce the identical 401, and
the bcrypt comparison runs even when throttled state is close to the limit,
keeping the timing profile flat. Failed attempts count against a per-email,
per-address throttle.

Parameters:
  - context: context.Context
  - emailAddr: string
  - password: string
  - clientIP: string (For the login throttle)

Returns:
  - *identity.Identity: The authenticated account
  - string: A freshly issued session token
  - error: 401 on bad credentials, 429 when throttled
*/
func (service *Service) Login(context context.Context, emailAddr, password, clientIP string) (*identity.Identity, string, error) {
	emailAddr = identity.NormalizeEmail(emailAddr)

	// 1. Both fields are required before anything touches the database.
	if emailAddr == "" || password == "" {
		return nil, "", apperr.BadRequest("Please provide email and password")
	}

	// 2. Refuse outright when this email/address pair is throttled.
	if service.throttle != nil {
		if err := service.throttle.Check(context, emailAddr, clientIP); err != nil {
			return nil, "", err
		}
	}

	// 3. Look up and verify. Failures are indistinguishable to the client.
	account, err := service.identities.FindByEmail(context, emailAddr)
	if err != nil {
		service.recordFailure(context, emailAddr, clientIP)
		return nil, "", errBadCredentials
	}
	if !sec.CheckPasswordHash(password, account.PasswordHash) {
		service.recordFailure(context, emailAddr, clientIP)
		return nil, "", errBadCredentials
	}

	// 4. Success clears the throttle counter.
	if service.throttle != nil {
		service.throttle.Reset(context, emailAddr, clientIP)
	}

	token, err := service.tokens.Issue(account.ID)
	if err != nil {
		return nil, "", apperr.Internal(err)
	}

	return account, token, nil
}

// recordFailure bumps the throttle counter, when a throttle is configured.
func (service *Service) recordFailure(context context.Context, emailAddr, clientIP string) {
	if service.throttle != nil {
		service.throttle.RecordFailure(context, emailAddr, clientIP)
	}
}

// # Password Reset

/*
RequestReset begins the forgot-password flow.

Description: A fresh random token is generated, its SHA-256 digest stored on
the identity row with a short expiry, and the plaintext emailed as a reset
link. If delivery fails the stored digest is cleared again so no orphaned
token survives, and the caller is told to retry.

Parameters:
  - context: context.Context
  - emailAddr: string
  - resetURLBase: string (The link prefix the plaintext token is appended to)

Returns:
  - error: apperr.NotFound for an unknown email, apperr.DeliveryFailed when
    the email cannot be sent
*/
func (service *Service) RequestReset(context context.Context, emailAddr, resetURLBase string) error {
	emailAddr = identity.NormalizeEmail(emailAddr)

	// 1. The flow only starts for a registered, active account.
	account, err := service.identities.FindByEmail(context, emailAddr)
	if err != nil {
		return err
	}

	// 2. Generate the secret and store only its digest.
	plaintext, err := sec.GenerateSecureToken(ResetTokenLength)
	if err != nil {
		return apperr.Internal(err)
	}
	expiresAt := service.clock().Add(ResetTokenTTL)
	if err := service.identities.SetResetToken(context, account.ID, sec.HashToken(plaintext), expiresAt); err != nil {
		return err
	}

	// 3. Deliver the plaintext. On failure, the stored digest is cleared so
	// the failed attempt leaves no usable state behind.
	message := email.Message{
		To:      account.Email,
		Subject: "Your password reset token (valid for 10 minutes)",
		Body: fmt.Sprintf(
			"Forgot your password? Submit a PATCH request with your new password to:\n\n%s/%s\n\nIf you didn't forget your password, please ignore this email.",
			resetURLBase, plaintext,
		),
	}
	if err := service.mailer.Send(context, message); err != nil {
		if clearErr := service.identities.ClearResetToken(context, account.ID); clearErr != nil {
			return apperr.Internal(clearErr)
		}
		return apperr.DeliveryFailed(err)
	}

	return nil
}

/*
CompleteReset finishes the forgot-password flow.

Description: The submitted plaintext is hashed and atomically claimed
against the stored digest. A token that is unknown, expired, or already
claimed fails identically. On success the account is signed in with a fresh
session token; everything issued before the reset is invalid from this
moment.

Parameters:
  - context: context.Context
  - plaintextToken: string (From the emailed link)
  - password: string
  - passwordConfirm: string

Returns:
  - *identity.Identity: The account whose password was reset
  - string: A freshly issued session token
  - error: 400 for a bad token, validation failures
*/
func (service *Service) CompleteReset(context context.Context, plaintextToken, password, passwordConfirm string) (*identity.Identity, string, error) {

	// 1. Validate the replacement password first.
	validator := &validate.Validator{}
	validator.MinLen(identity.FieldPassword, password, PasswordMinLength)
	validator.Matches(identity.FieldPasswordConfirm, passwordConfirm, password, "Passwords do not match")
	if err := validator.Err(); err != nil {
		return nil, "", err
	}

	hash, err := sec.HashPassword(password)
	if err != nil {
		return nil, "", apperr.Internal(err)
	}

	// 2. Claim the token. The store does this in one conditional write, so
	// a second submission of the same token finds nothing to claim.
	account, err := service.identities.ConsumeResetToken(context, sec.HashToken(plaintextToken), hash, service.clock())
	if err != nil {
		return nil, "", apperr.BadRequest("Token is invalid or has expired")
	}

	// 3. Sign in with a token issued after the password change.
	token, err := service.tokens.Issue(account.ID)
	if err != nil {
		return nil, "", apperr.Internal(err)
	}

	return account, token, nil
}

// # Password Change

// ChangePasswordInput is the payload for an authenticated password change.
type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

/*
ChangePassword rotates the password of an authenticated caller.

Description: The current password is re-verified even though the caller
holds a valid session, so a stolen token alone cannot lock the owner out.
The change timestamp is backdated by one second so the session token issued
in the same instant stays valid.

Parameters:
  - context: context.Context
  - identityID: string (The authenticated caller)
  - input: ChangePasswordInput

Returns:
  - *identity.Identity: The account
  - string: A freshly issued session token
  - error: 401 for a wrong current password, validation failures
*/
func (service *Service) ChangePassword(context context.Context, identityID string, input ChangePasswordInput) (*identity.Identity, string, error) {

	// 1. Load and re-verify.
	account, err := service.identities.FindByID(context, identityID)
	if err != nil {
		return nil, "", err
	}
	if !sec.CheckPasswordHash(input.CurrentPassword, account.PasswordHash) {
		return nil, "", apperr.Unauthorized("Your current password is wrong")
	}

	// 2. Validate the replacement.
	validator := &validate.Validator{}
	validator.MinLen(identity.FieldPassword, input.Password, PasswordMinLength)
	validator.Matches(identity.FieldPasswordConfirm, input.PasswordConfirm, input.Password, "Passwords do not match")
	if err := validator.Err(); err != nil {
		return nil, "", err
	}

	hash, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, "", apperr.Internal(err)
	}

	// 3. Persist, backdating the change moment by one second.
	changedAt := service.clock().Add(-time.Second)
	if err := service.identities.UpdatePassword(context, account.ID, hash, changedAt); err != nil {
		return nil, "", err
	}
	account.PasswordChangedAt = &changedAt

	// 4. Re-issue the session.
	token, err := service.tokens.Issue(account.ID)
	if err != nil {
		return nil, "", apperr.Internal(err)
	}

	return account, token, nil
}
