// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OpenLot Contributors

package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/oops"
)

// MinSigningKeyLen is the minimum signing secret length in bytes. HS512
// keys shorter than the hash output weaken the MAC.
const MinSigningKeyLen = 32

// signingMethod is the one accepted JWS algorithm. The original deployment
// signed with HS512; tokens presenting any other alg are rejected before
// their claims are read.
var signingMethod = jwt.SigningMethodHS512

// Keyring holds the signing secrets by key ID. New tokens are signed with
// the active key; verification accepts any key in the ring, so rotating the
// active key keeps previously issued tokens valid until they expire.
type Keyring struct {
	active string
	keys   map[string][]byte
}

// NewKeyring creates a keyring. The active key ID must be present in keys,
// and every secret must be at least MinSigningKeyLen bytes.
func NewKeyring(active string, keys map[string][]byte) (*Keyring, error) {
	if len(keys) == 0 {
		return nil, oops.Code("CONFIG_MISSING_SIGNING_KEY").Errorf("at least one signing key is required")
	}
	if _, ok := keys[active]; !ok {
		return nil, oops.Code("CONFIG_MISSING_SIGNING_KEY").
			With("active_key", active).
			Errorf("active signing key is not in the keyring")
	}
	for kid, secret := range keys {
		if len(secret) < MinSigningKeyLen {
			return nil, oops.Code("CONFIG_WEAK_SIGNING_KEY").
				With("key_id", kid).
				With("min_bytes", MinSigningKeyLen).
				Errorf("signing key %q is too short", kid)
		}
	}

	copied := make(map[string][]byte, len(keys))
	for kid, secret := range keys {
		copied[kid] = append([]byte(nil), secret...)
	}
	return &Keyring{active: active, keys: copied}, nil
}

// ActiveKeyID returns the key ID used for signing new tokens.
func (k *Keyring) ActiveKeyID() string {
	return k.active
}

func (k *Keyring) key(kid string) ([]byte, bool) {
	secret, ok := k.keys[kid]
	return secret, ok
}

// TokenCodec signs and verifies the compact JWS envelope carrying session
// claims. Tokens are opaque to holders: any mutation invalidates the
// signature, and the signature is checked before any claim is trusted.
type TokenCodec struct {
	keyring *Keyring
	leeway  time.Duration
}

// NewTokenCodec creates a codec. leeway is the clock-skew tolerance applied
// to expiry checks; zero means exact.
func NewTokenCodec(keyring *Keyring, leeway time.Duration) (*TokenCodec, error) {
	if keyring == nil {
		return nil, oops.Code("CONFIG_MISSING_SIGNING_KEY").Errorf("keyring is required")
	}
	if leeway < 0 {
		return nil, oops.Code("CONFIG_INVALID").Errorf("leeway cannot be negative")
	}
	return &TokenCodec{keyring: keyring, leeway: leeway}, nil
}

// Sign encodes the claims and signs them with the active key. The key ID
// travels in the token header so verification can outlive a rotation.
func (c *TokenCodec) Sign(claims jwt.RegisteredClaims) (string, error) {
	if claims.ExpiresAt == nil || claims.IssuedAt == nil {
		return "", oops.Code("TOKEN_SIGN_FAILED").Errorf("claims must carry iat and exp")
	}
	if !claims.ExpiresAt.Time.After(claims.IssuedAt.Time) {
		return "", oops.Code("TOKEN_SIGN_FAILED").
			With("iat", claims.IssuedAt.Time).
			With("exp", claims.ExpiresAt.Time).
			Errorf("expiry must be after issuance")
	}

	token := jwt.NewWithClaims(signingMethod, claims)
	token.Header["kid"] = c.keyring.active

	signed, err := token.SignedString(c.keyring.keys[c.keyring.active])
	if err != nil {
		return "", oops.Code("TOKEN_SIGN_FAILED").Wrap(err)
	}
	return signed, nil
}

// Verify checks the token's signature and validity window and returns its
// claims. Failures are typed: ErrTokenExpired, ErrBadSignature, or
// ErrTokenMalformed.
func (c *TokenCodec) Verify(tokenString string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, c.keyFunc,
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithLeeway(c.leeway),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, c.verifyError(err)
	}
	return claims, nil
}

// keyFunc resolves the verification key from the token's kid header.
func (c *TokenCodec) keyFunc(token *jwt.Token) (any, error) {
	kid, ok := token.Header["kid"].(string)
	if !ok {
		return nil, oops.Code("TOKEN_BAD_SIGNATURE").
			Wrapf(ErrBadSignature, "token has no key id")
	}
	secret, ok := c.keyring.key(kid)
	if !ok {
		return nil, oops.Code("TOKEN_BAD_SIGNATURE").
			With("key_id", kid).
			Wrapf(ErrBadSignature, "unknown signing key")
	}
	return secret, nil
}

// verifyError maps golang-jwt failures onto the codec's typed errors.
// Expiry is reported first: an expired token is expired even when its
// signature is also wrong.
func (c *TokenCodec) verifyError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return oops.Code("TOKEN_EXPIRED").Wrapf(ErrTokenExpired, "%v", err)
	case errors.Is(err, ErrBadSignature):
		// keyFunc failures (missing or unknown kid) already wrap the sentinel.
		return err
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return oops.Code("TOKEN_BAD_SIGNATURE").Wrapf(ErrBadSignature, "%v", err)
	default:
		return oops.Code("TOKEN_MALFORMED").Wrapf(ErrTokenMalformed, "%v", err)
	}
}
