// Copyright (c) 2026 Trailhead. All rights reserved.
// Author: dev@trailhead.app

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing) from
// the domain logic. It acts as an Infrastructure service injected into the
// Application layer.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Clock supplies the current time. It is injectable so that token expiry
// logic is deterministically testable instead of depending on real elapsed
// time.
type Clock func() time.Time

// # Verification Failures

var (
	// ErrTokenInvalid is returned for a malformed token or a forged signature.
	ErrTokenInvalid = errors.New("sec: invalid token")

	// ErrTokenExpired is returned for a structurally valid token whose
	// expiry has passed.
	ErrTokenExpired = errors.New("sec: token expired")
)

// Claims is the verified payload of a session token.
type Claims struct {
	// IdentityID is the subject of the token.
	IdentityID string

	// IssuedAt is the instant the token was signed. The Access Guard compares
	// it against the identity's password-changed timestamp.
	IssuedAt time.Time
}

// TokenService issues and verifies signed, time-limited session tokens.
//
// Tokens are HS256 JWTs signed with a single shared secret; validity is purely
// cryptographic and time-based, so verification requires no server-side state.
type TokenService struct {
	secret   []byte
	issuer   string
	lifetime time.Duration
	clock    Clock
}

// NewTokenService creates a TokenService.
//
// The clock may be nil, in which case [time.Now] is used.
func NewTokenService(secret, issuer string, lifetime time.Duration, clock Clock) *TokenService {
	if clock == nil {
		clock = time.Now
	}
	return &TokenService{
		secret:   []byte(secret),
		issuer:   issuer,
		lifetime: lifetime,
		clock:    clock,
	}
}

// Lifetime returns the configured token lifetime. Handlers use it to set a
// matching cookie expiry.
func (service *TokenService) Lifetime() time.Duration {
	return service.lifetime
}

// Issue produces a signed session token embedding the identity ID and the
// issue instant. It has no side effects beyond cryptographic signing.
func (service *TokenService) Issue(identityID string) (string, error) {
	now := service.clock()
	claims := jwt.RegisteredClaims{
		Subject:   identityID,
		Issuer:    service.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(service.lifetime)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(service.secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signedToken, nil
}

// Verify validates the signature and expiry of a session token.
//
// It fails distinctly: [ErrTokenExpired] for a structurally valid but expired
// token, [ErrTokenInvalid] for anything malformed or forged.
func (service *TokenService) Verify(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(
		tokenString,
		&jwt.RegisteredClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
			}
			return service.secret, nil
		},
		jwt.WithTimeFunc(service.clock),
		jwt.WithExpirationRequired(),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsed.Valid || claims.Subject == "" || claims.IssuedAt == nil {
		return nil, ErrTokenInvalid
	}

	return &Claims{
		IdentityID: claims.Subject,
		IssuedAt:   claims.IssuedAt.Time,
	}, nil
}
