// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OpenLot Contributors

package auth

import "errors"

// Sentinel errors for the authentication core. Call sites wrap these with
// oops codes and context; callers match with errors.Is.
var (
	// ErrNotFound is returned when a requested account does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateName is returned when registering a username that is
	// already taken.
	ErrDuplicateName = errors.New("username already taken")

	// ErrInvalidCredentials is returned on authentication failure. Unknown
	// usernames and wrong passwords both map here so the caller cannot
	// tell them apart.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrUnauthenticated is the single failure the access guard exposes
	// for any token or identity fault.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrTokenExpired is returned when a token's expiry has passed.
	ErrTokenExpired = errors.New("token expired")

	// ErrBadSignature is returned when a token's signature does not verify
	// against any known signing key.
	ErrBadSignature = errors.New("token signature invalid")

	// ErrTokenMalformed is returned when a token cannot be decoded at all.
	ErrTokenMalformed = errors.New("token malformed")
)
