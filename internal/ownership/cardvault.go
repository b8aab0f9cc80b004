// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OpenLot Contributors

package ownership

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"

	"github.com/samber/oops"
)

// VaultKeyLen is the required key size for the card vault (AES-256).
const VaultKeyLen = 32

// CardVault seals card numbers with AES-256-GCM before they reach the
// store and opens them on the way out. Sealed values are
// base64(nonce || ciphertext); a fresh nonce per seal means equal card
// numbers never produce equal rows.
type CardVault struct {
	aead cipher.AEAD
}

// NewCardVault creates a vault from a 32-byte key.
func NewCardVault(key []byte) (*CardVault, error) {
	if len(key) != VaultKeyLen {
		return nil, oops.Code("CARD_VAULT_BAD_KEY").
			With("key_len", len(key)).
			Errorf("card vault key must be %d bytes", VaultKeyLen)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, oops.Code("CARD_VAULT_BAD_KEY").Wrap(err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, oops.Code("CARD_VAULT_BAD_KEY").Wrap(err)
	}
	return &CardVault{aead: aead}, nil
}

// Seal encrypts a card number for storage.
func (v *CardVault) Seal(number string) (string, error) {
	nonce := make([]byte, v.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", oops.Code("CARD_VAULT_SEAL_FAILED").Wrap(err)
	}
	sealed := v.aead.Seal(nonce, nonce, []byte(number), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Open decrypts a stored card number. Tampered or foreign-key ciphertext
// fails authentication and is rejected.
func (v *CardVault) Open(sealed string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", oops.Code("CARD_VAULT_OPEN_FAILED").Wrap(err)
	}
	if len(raw) < v.aead.NonceSize() {
		return "", oops.Code("CARD_VAULT_OPEN_FAILED").Errorf("sealed value too short")
	}
	nonce, ciphertext := raw[:v.aead.NonceSize()], raw[v.aead.NonceSize():]
	number, err := v.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", oops.Code("CARD_VAULT_OPEN_FAILED").Wrap(err)
	}
	return string(number), nil
}
