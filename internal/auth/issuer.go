// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OpenLot Contributors

package auth

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/oops"
)

// Session token configuration.
const (
	// TokenType labels the session artifact handed to clients.
	TokenType = "bearer"

	// DefaultTokenTTL matches the original deployment's 30-minute window.
	DefaultTokenTTL = 30 * time.Minute
)

// Session is the artifact returned to a freshly authenticated client.
type Session struct {
	Token     string
	TokenType string
	ExpiresAt time.Time
}

// SessionIssuer turns a verified account into a signed, time-bounded token.
type SessionIssuer struct {
	codec *TokenCodec
	ttl   time.Duration
	now   func() time.Time
}

// NewSessionIssuer creates an issuer with the given default TTL. A zero ttl
// selects DefaultTokenTTL; negative TTLs are rejected.
func NewSessionIssuer(codec *TokenCodec, ttl time.Duration) (*SessionIssuer, error) {
	if codec == nil {
		return nil, oops.Code("CONFIG_INVALID").Errorf("token codec is required")
	}
	if ttl < 0 {
		return nil, oops.Code("CONFIG_INVALID").Errorf("token ttl cannot be negative")
	}
	if ttl == 0 {
		ttl = DefaultTokenTTL
	}
	return &SessionIssuer{codec: codec, ttl: ttl, now: time.Now}, nil
}

// Issue mints a session with the issuer's default TTL.
func (i *SessionIssuer) Issue(account *Account) (*Session, error) {
	return i.IssueTTL(account, i.ttl)
}

// IssueTTL mints a session with a per-call TTL override. Claims carry the
// account ID as subject plus issued-at and expiry timestamps.
func (i *SessionIssuer) IssueTTL(account *Account, ttl time.Duration) (*Session, error) {
	if account == nil || account.ID == 0 {
		return nil, oops.Code("TOKEN_SIGN_FAILED").Errorf("account with assigned ID is required")
	}
	if ttl <= 0 {
		return nil, oops.Code("TOKEN_SIGN_FAILED").With("ttl", ttl).Errorf("ttl must be positive")
	}

	now := i.now()
	expiresAt := now.Add(ttl)
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(account.ID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token, err := i.codec.Sign(claims)
	if err != nil {
		return nil, oops.Code("TOKEN_SIGN_FAILED").
			With("account_id", account.ID).
			Wrap(err)
	}

	return &Session{
		Token:     token,
		TokenType: TokenType,
		ExpiresAt: expiresAt,
	}, nil
}
