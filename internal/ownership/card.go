// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OpenLot Contributors

package ownership

import (
	"strings"

	"github.com/samber/oops"
)

// Card is a payment card registered to one owner. Number holds the
// plaintext card number in memory only; the storage layer persists the
// sealed form produced by CardVault.
type Card struct {
	ID      int64
	OwnerID int64
	Number  string
}

// NewCard validates and constructs an unsaved card.
func NewCard(ownerID int64, number string) (*Card, error) {
	if ownerID <= 0 {
		return nil, oops.Code("CARD_INVALID").
			With("owner_id", ownerID).
			Errorf("card owner is required")
	}
	if strings.TrimSpace(number) == "" {
		return nil, oops.Code("CARD_INVALID").Errorf("card number cannot be empty")
	}
	return &Card{OwnerID: ownerID, Number: number}, nil
}

// Redacted returns a copy with the card number masked down to its last
// four digits, for listings and logs.
func (c *Card) Redacted() *Card {
	r := *c
	if n := len(r.Number); n > 4 {
		r.Number = strings.Repeat("*", n-4) + r.Number[n-4:]
	}
	return &r
}
