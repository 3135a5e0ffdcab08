// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Circle Contributors

package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/circlehub/circle/internal/account"
	"github.com/circlehub/circle/pkg/errutil"
)

// tokenIssuer is the iss claim of every session token.
const tokenIssuer = "circle"

// SessionDay is the unit session lifetimes are configured in.
const SessionDay = 24 * time.Hour

// TokenConfig configures session signing. Keys are base64-encoded PEM blocks;
// SessionLifetime is in days.
type TokenConfig struct {
	PrivateKey      string `koanf:"private_key"`
	PublicKey       string `koanf:"public_key"`
	SessionLifetime int    `koanf:"session_lifetime" jsonschema:"minimum=1"`
}

// Session is a verified claim that a caller acts for an account until ExpiresAt.
// Sessions are not stored; the signed token is the only record.
type Session struct {
	ID        ulid.ULID
	AccountID account.ID
	ExpiresAt time.Time
}

// IsExpiredAt reports whether the session is expired at t.
func (s *Session) IsExpiredAt(t time.Time) bool {
	return t.After(s.ExpiresAt)
}

type sessionClaims struct {
	jwt.RegisteredClaims
}

// SessionIssuer signs session tokens with an RSA private key and verifies
// them with the matching public key.
type SessionIssuer struct {
	keys     *KeyPair
	lifetime time.Duration
	now      func() time.Time
}

// IssuerOption configures a SessionIssuer.
type IssuerOption func(*SessionIssuer)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) IssuerOption {
	return func(i *SessionIssuer) {
		i.now = now
	}
}

// NewSessionIssuer creates an issuer whose sessions last lifetimeDays days.
func NewSessionIssuer(keys *KeyPair, lifetimeDays int, opts ...IssuerOption) (*SessionIssuer, error) {
	if keys == nil || keys.Private == nil || keys.Public == nil {
		return nil, oops.Code("CONFIG_INVALID").Errorf("session key pair is required")
	}
	if lifetimeDays < 1 {
		return nil, oops.Code("CONFIG_INVALID").
			With("session_lifetime", lifetimeDays).
			Errorf("session lifetime must be at least one day")
	}

	i := &SessionIssuer{
		keys:     keys,
		lifetime: time.Duration(lifetimeDays) * SessionDay,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// NewSessionIssuerFromConfig decodes cfg's keys and builds an issuer.
func NewSessionIssuerFromConfig(cfg TokenConfig, opts ...IssuerOption) (*SessionIssuer, error) {
	keys, err := DecodeKeyPair(cfg.PrivateKey, cfg.PublicKey)
	if err != nil {
		return nil, err
	}
	return NewSessionIssuer(keys, cfg.SessionLifetime, opts...)
}

// Lifetime returns the configured session lifetime.
func (i *SessionIssuer) Lifetime() time.Duration {
	return i.lifetime
}

// Issue signs a new session for accountID with the configured lifetime.
func (i *SessionIssuer) Issue(accountID account.ID) (*Session, string, error) {
	return i.IssueWithLifetime(accountID, i.lifetime)
}

// IssueWithLifetime signs a new session for accountID that expires after lifetime.
func (i *SessionIssuer) IssueWithLifetime(accountID account.ID, lifetime time.Duration) (*Session, string, error) {
	if lifetime <= 0 {
		return nil, "", errutil.BadRequest("session lifetime must be positive")
	}

	now := i.now()
	session := &Session{
		ID:        account.NewID(),
		AccountID: accountID,
		ExpiresAt: now.Add(lifetime).Truncate(time.Second),
	}

	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   accountID.String(),
			ID:        session.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(i.keys.Private)
	if err != nil {
		return nil, "", errutil.Internal("sign session token", err)
	}
	return session, token, nil
}

// Verify checks the token's signature, issuer, and expiry and returns the
// session it carries. Every failure is Unauthorized.
func (i *SessionIssuer) Verify(token string) (*Session, error) {
	if token == "" {
		return nil, errutil.Unauthorized("session token is missing")
	}

	var claims sessionClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, oops.With("alg", t.Header["alg"]).Errorf("unexpected signing method")
		}
		return i.keys.Public, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errutil.Unauthorized("session has expired")
		}
		return nil, oops.Code(string(errutil.KindUnauthorized)).
			With("reason", "invalid session token").
			With("cause", err.Error()).
			Errorf("invalid session token")
	}

	accountID, err := ulid.ParseStrict(claims.Subject)
	if err != nil {
		return nil, errutil.Unauthorized("invalid session subject")
	}
	sessionID, err := ulid.ParseStrict(claims.ID)
	if err != nil {
		return nil, errutil.Unauthorized("invalid session id")
	}

	return &Session{
		ID:        sessionID,
		AccountID: accountID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
