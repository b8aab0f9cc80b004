// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OpenLot Contributors

package ownership

import "github.com/samber/oops"

// Wallet is a balance-bearing resource tied to one owner. An owner may
// hold any number of wallets.
type Wallet struct {
	ID      int64
	OwnerID int64
	Balance float64
}

// NewWallet validates and constructs an unsaved wallet. Opening balances
// cannot be negative.
func NewWallet(ownerID int64, balance float64) (*Wallet, error) {
	if ownerID <= 0 {
		return nil, oops.Code("WALLET_INVALID").
			With("owner_id", ownerID).
			Errorf("wallet owner is required")
	}
	if balance < 0 {
		return nil, oops.Code("WALLET_INVALID").
			With("balance", balance).
			Errorf("opening balance cannot be negative")
	}
	return &Wallet{OwnerID: ownerID, Balance: balance}, nil
}
