// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OpenLot Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samber/oops"
)

// LoginRecorder counts authentication outcomes. Implemented by
// observability.Metrics; nil means no recording.
type LoginRecorder interface {
	RecordLogin(status string)
}

// Service provides registration and credential verification.
type Service struct {
	accounts AccountRepository
	hasher   PasswordHasher
	logger   *slog.Logger
	metrics  LoginRecorder
}

// SetMetrics attaches a login outcome recorder. Safe to leave unset.
func (s *Service) SetMetrics(r LoginRecorder) {
	s.metrics = r
}

func (s *Service) recordLogin(status string) {
	if s.metrics != nil {
		s.metrics.RecordLogin(status)
	}
}

// NewService creates a new Service.
func NewService(accounts AccountRepository, hasher PasswordHasher) (*Service, error) {
	return NewServiceWithLogger(accounts, hasher, slog.Default())
}

// NewServiceWithLogger creates a new Service with an explicit logger.
func NewServiceWithLogger(accounts AccountRepository, hasher PasswordHasher, logger *slog.Logger) (*Service, error) {
	if accounts == nil {
		return nil, oops.Code("CONFIG_INVALID").Errorf("accounts repository is required")
	}
	if hasher == nil {
		return nil, oops.Code("CONFIG_INVALID").Errorf("password hasher is required")
	}
	if logger == nil {
		return nil, oops.Code("CONFIG_INVALID").Errorf("logger is required")
	}
	return &Service{accounts: accounts, hasher: hasher, logger: logger}, nil
}

// dummyDigest is verified against when a username doesn't exist, so the
// unknown-name path costs the same as a wrong password. It is not a real
// credential and never matches any password.
//
//nolint:gosec // G101: intentionally fake digest for timing-attack prevention, not a credential.
const dummyDigest = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// Register creates a new account from a plaintext secret. The secret is
// hashed before it reaches the repository; the plaintext is discarded.
func (s *Service) Register(ctx context.Context, username, email, password string) (*Account, error) {
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	account := &Account{
		Username:     username,
		Email:        email,
		PasswordHash: digest,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, ErrDuplicateName) {
			return nil, oops.Code("AUTH_DUPLICATE_NAME").
				With("username", username).
				Wrap(err)
		}
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "create account").
			Wrap(err)
	}

	return account, nil
}

// Authenticate verifies a username/password pair and returns the account.
// Unknown usernames and wrong passwords fail identically, and the unknown
// path still runs a digest verification so response time stays flat.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*Account, error) {
	account, lookupErr := s.accounts.GetByUsername(ctx, username)

	targetDigest := dummyDigest
	exists := false
	switch {
	case lookupErr == nil:
		targetDigest = account.PasswordHash
		exists = true
	case errors.Is(lookupErr, ErrNotFound):
		// Fall through with the dummy digest.
	default:
		s.recordLogin("error")
		return nil, oops.Code("AUTH_LOOKUP_FAILED").
			With("operation", "get account by username").
			Wrap(lookupErr)
	}

	valid, verifyErr := s.hasher.Verify(password, targetDigest)
	if verifyErr != nil {
		// A digest that fails to parse means verification failed, not a
		// server fault; it must look like any other bad credential.
		s.logger.Warn("stored digest could not be verified", "username", username, "error", verifyErr)
		valid = false
	}

	if !exists || !valid {
		s.recordLogin("invalid_credentials")
		return nil, oops.Code("AUTH_INVALID_CREDENTIALS").Wrap(ErrInvalidCredentials)
	}

	if s.hasher.NeedsRehash(account.PasswordHash) {
		s.rotateDigest(ctx, account, password)
	}

	s.recordLogin("success")
	return account, nil
}

// rotateDigest re-hashes the password with current parameters. Best effort:
// authentication already succeeded and must not fail here.
func (s *Service) rotateDigest(ctx context.Context, account *Account, password string) {
	digest, err := s.hasher.Hash(password)
	if err != nil {
		s.logger.Warn("digest rotation hash failed", "account_id", account.ID, "error", err)
		return
	}
	if err := s.accounts.UpdatePassword(ctx, account.ID, digest); err != nil {
		s.logger.Warn("digest rotation update failed", "account_id", account.ID, "error", err)
		return
	}
	account.PasswordHash = digest
}

// GetAccount retrieves an account by ID.
func (s *Service) GetAccount(ctx context.Context, id int64) (*Account, error) {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("ACCOUNT_NOT_FOUND").With("id", id).Wrap(err)
		}
		return nil, oops.Code("AUTH_LOOKUP_FAILED").With("id", id).Wrap(err)
	}
	return account, nil
}

// GetAccountByUsername retrieves an account by its display name.
func (s *Service) GetAccountByUsername(ctx context.Context, username string) (*Account, error) {
	account, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("ACCOUNT_NOT_FOUND").With("username", username).Wrap(err)
		}
		return nil, oops.Code("AUTH_LOOKUP_FAILED").With("username", username).Wrap(err)
	}
	return account, nil
}

// ListAccounts returns all accounts with password digests redacted.
func (s *Service) ListAccounts(ctx context.Context) ([]*Account, error) {
	accounts, err := s.accounts.List(ctx)
	if err != nil {
		return nil, oops.Code("AUTH_LOOKUP_FAILED").With("operation", "list accounts").Wrap(err)
	}
	redacted := make([]*Account, 0, len(accounts))
	for _, a := range accounts {
		redacted = append(redacted, a.Redacted())
	}
	return redacted, nil
}
