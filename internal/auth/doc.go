// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OpenLot Contributors

// Package auth provides the authentication and session-integrity core.
//
// # Components
//
//   - PasswordHasher / Argon2idHasher - salted one-way hashing with tunable cost
//   - AccountRepository - the credential store contract
//   - Service - registration and credential verification
//   - TokenCodec / Keyring - signed-token encode/verify with key rotation
//   - SessionIssuer - mints time-bounded bearer sessions
//   - Guard - per-request token validation and identity resolution
//
// Components are wired with their New* constructors, which validate
// dependencies. All failures carry oops codes; callers match sentinel
// errors (ErrUnauthenticated, ErrDuplicateName, ...) with errors.Is.
package auth
