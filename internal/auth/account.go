// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OpenLot Contributors

package auth

import (
	"context"
	"regexp"
	"time"

	"github.com/samber/oops"
)

// Username validation constraints.
const (
	MinUsernameLength = 3
	MaxUsernameLength = 30
)

// usernameRegex matches usernames that:
// - Start with a letter (a-z, A-Z)
// - Contain only letters, numbers, and underscores
var usernameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

// Account is a registered identity. PasswordHash holds the argon2id digest
// of the account's secret; the plaintext is never stored or logged.
type Account struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Redacted returns a copy of the account with the password digest stripped.
// Listing operations return redacted accounts so the digest never leaves
// the storage layer.
func (a *Account) Redacted() *Account {
	c := *a
	c.PasswordHash = ""
	return &c
}

// ValidateUsername validates a username against registration rules.
// Usernames are MinUsernameLength to MaxUsernameLength characters, start
// with a letter, and contain only letters, numbers, and underscores.
func ValidateUsername(username string) error {
	if username == "" {
		return oops.Code("AUTH_INVALID_USERNAME").Errorf("username cannot be empty")
	}
	if len(username) < MinUsernameLength {
		return oops.Code("AUTH_INVALID_USERNAME").
			With("min", MinUsernameLength).
			Errorf("username must be at least %d characters", MinUsernameLength)
	}
	if len(username) > MaxUsernameLength {
		return oops.Code("AUTH_INVALID_USERNAME").
			With("max", MaxUsernameLength).
			Errorf("username must be at most %d characters", MaxUsernameLength)
	}
	if !usernameRegex.MatchString(username) {
		return oops.Code("AUTH_INVALID_USERNAME").
			Errorf("username must start with a letter and contain only letters, numbers, and underscores")
	}
	return nil
}

// AccountRepository manages account persistence. Usernames are unique
// case-insensitively; Create fails with ErrDuplicateName on collision.
type AccountRepository interface {
	// Create stores a new account and assigns its ID and timestamps.
	Create(ctx context.Context, account *Account) error

	// GetByID retrieves an account by ID.
	GetByID(ctx context.Context, id int64) (*Account, error)

	// GetByUsername retrieves an account by username (case-insensitive).
	GetByUsername(ctx context.Context, username string) (*Account, error)

	// List returns all accounts ordered by ID.
	List(ctx context.Context) ([]*Account, error)

	// UpdatePassword replaces the password digest for an account. This is
	// the only mutation accounts support.
	UpdatePassword(ctx context.Context, id int64, digest string) error
}
