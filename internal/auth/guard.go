// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OpenLot Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/samber/oops"
)

// VerificationRecorder counts token verification outcomes. Implemented
// by observability.Metrics; nil means no recording.
type VerificationRecorder interface {
	RecordTokenVerification(result string)
}

// Guard validates presented tokens and re-resolves the identity behind
// them. It is the single gate every protected operation passes through.
type Guard struct {
	codec    *TokenCodec
	accounts AccountRepository
	logger   *slog.Logger
	metrics  VerificationRecorder
}

// SetMetrics attaches a verification outcome recorder. Safe to leave unset.
func (g *Guard) SetMetrics(r VerificationRecorder) {
	g.metrics = r
}

// NewGuard creates a new Guard.
func NewGuard(codec *TokenCodec, accounts AccountRepository) (*Guard, error) {
	return NewGuardWithLogger(codec, accounts, slog.Default())
}

// NewGuardWithLogger creates a new Guard with an explicit logger.
func NewGuardWithLogger(codec *TokenCodec, accounts AccountRepository, logger *slog.Logger) (*Guard, error) {
	if codec == nil {
		return nil, oops.Code("CONFIG_INVALID").Errorf("token codec is required")
	}
	if accounts == nil {
		return nil, oops.Code("CONFIG_INVALID").Errorf("accounts repository is required")
	}
	if logger == nil {
		return nil, oops.Code("CONFIG_INVALID").Errorf("logger is required")
	}
	return &Guard{codec: codec, accounts: accounts, logger: logger}, nil
}

// Authorize validates a token and returns the account it was issued to.
// Every token or identity fault collapses to ErrUnauthenticated; the cause
// is logged but never returned to the caller. Authorize mutates nothing
// and is safe to call once per protected operation.
func (g *Guard) Authorize(ctx context.Context, token string) (*Account, error) {
	claims, err := g.codec.Verify(token)
	if err != nil {
		g.recordVerification(verificationResult(err))
		return nil, g.deny("token verification failed", err)
	}
	g.recordVerification("valid")

	subject, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, g.deny("token subject is not an account id", err)
	}

	account, err := g.accounts.GetByID(ctx, subject)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Identity revoked or deleted since the token was issued.
			return nil, g.deny("token subject no longer exists", err)
		}
		// Store faults stay distinguishable so the caller can retry.
		return nil, oops.Code("AUTH_GUARD_FAILED").
			With("operation", "get account by id").
			Wrap(err)
	}

	return account, nil
}

func (g *Guard) recordVerification(result string) {
	if g.metrics != nil {
		g.metrics.RecordTokenVerification(result)
	}
}

// verificationResult maps a codec failure to its metric label.
func verificationResult(err error) string {
	switch {
	case errors.Is(err, ErrTokenExpired):
		return "expired"
	case errors.Is(err, ErrBadSignature):
		return "bad_signature"
	default:
		return "malformed"
	}
}

// deny logs the real cause and returns the uniform authentication failure.
func (g *Guard) deny(reason string, cause error) error {
	g.logger.Warn("authorization denied", "reason", reason, "error", cause)
	return oops.Code("AUTH_UNAUTHENTICATED").Wrap(ErrUnauthenticated)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header value for the external API layer.
func BearerToken(header string) (string, error) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], TokenType) {
		return "", oops.Code("AUTH_UNAUTHENTICATED").
			Wrapf(ErrUnauthenticated, "malformed authorization header")
	}
	return strings.TrimSpace(parts[1]), nil
}
