// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OpenLot Contributors

package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openlot/openlot/internal/auth"
	"github.com/openlot/openlot/pkg/errutil"
)

func testCodec(t *testing.T) *auth.TokenCodec {
	t.Helper()
	codec, err := auth.NewTokenCodec(testKeyring(t), 0)
	require.NoError(t, err)
	return codec
}

func TestNewSessionIssuer(t *testing.T) {
	t.Run("zero ttl selects default", func(t *testing.T) {
		issuer, err := auth.NewSessionIssuer(testCodec(t), 0)
		require.NoError(t, err)

		session, err := issuer.Issue(&auth.Account{ID: 42})
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(auth.DefaultTokenTTL), session.ExpiresAt, 5*time.Second)
	})

	t.Run("rejects negative ttl", func(t *testing.T) {
		_, err := auth.NewSessionIssuer(testCodec(t), -time.Minute)
		errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
	})

	t.Run("rejects nil codec", func(t *testing.T) {
		_, err := auth.NewSessionIssuer(nil, time.Minute)
		errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
	})
}

func TestSessionIssuer_Issue(t *testing.T) {
	codec := testCodec(t)
	issuer, err := auth.NewSessionIssuer(codec, 30*time.Minute)
	require.NoError(t, err)

	t.Run("issued session carries bearer token", func(t *testing.T) {
		session, err := issuer.Issue(&auth.Account{ID: 42, Username: "alice"})
		require.NoError(t, err)

		assert.Equal(t, auth.TokenType, session.TokenType)
		assert.NotEmpty(t, session.Token)
		assert.WithinDuration(t, time.Now().Add(30*time.Minute), session.ExpiresAt, 5*time.Second)
	})

	t.Run("token subject is the account id", func(t *testing.T) {
		session, err := issuer.Issue(&auth.Account{ID: 42})
		require.NoError(t, err)

		claims, err := codec.Verify(session.Token)
		require.NoError(t, err)
		assert.Equal(t, "42", claims.Subject)
		assert.NotNil(t, claims.IssuedAt)
		assert.NotNil(t, claims.ExpiresAt)
	})

	t.Run("per-call ttl override", func(t *testing.T) {
		session, err := issuer.IssueTTL(&auth.Account{ID: 42}, time.Minute)
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(time.Minute), session.ExpiresAt, 5*time.Second)
	})

	t.Run("rejects account without id", func(t *testing.T) {
		_, err := issuer.Issue(&auth.Account{})
		errutil.AssertErrorCode(t, err, "TOKEN_SIGN_FAILED")
	})

	t.Run("rejects nil account", func(t *testing.T) {
		_, err := issuer.Issue(nil)
		errutil.AssertErrorCode(t, err, "TOKEN_SIGN_FAILED")
	})

	t.Run("rejects non-positive ttl override", func(t *testing.T) {
		_, err := issuer.IssueTTL(&auth.Account{ID: 42}, 0)
		errutil.AssertErrorCode(t, err, "TOKEN_SIGN_FAILED")
	})
}
