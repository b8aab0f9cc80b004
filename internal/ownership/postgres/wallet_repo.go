// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OpenLot Contributors

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/openlot/openlot/internal/ownership"
)

// WalletRepository implements ownership.WalletRepository using PostgreSQL.
type WalletRepository struct {
	db DB
}

// NewWalletRepository creates a new WalletRepository.
func NewWalletRepository(db DB) *WalletRepository {
	return &WalletRepository{db: db}
}

// Create stores a new wallet. Owner existence is checked in the same
// statement; a missing owner writes nothing.
func (r *WalletRepository) Create(ctx context.Context, wallet *ownership.Wallet) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO wallets (owner_id, balance)
		SELECT $1, $2
		WHERE EXISTS (SELECT 1 FROM accounts WHERE id = $1)
		RETURNING id
	`, wallet.OwnerID, wallet.Balance).Scan(&wallet.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isForeignKeyViolation(err) {
			return oops.Code("OWNERSHIP_OWNER_NOT_FOUND").
				With("owner_id", wallet.OwnerID).
				Wrap(ownership.ErrOwnerNotFound)
		}
		return oops.Code("WALLET_CREATE_FAILED").
			With("operation", "insert wallet").
			With("owner_id", wallet.OwnerID).
			Wrap(err)
	}
	return nil
}

// Get retrieves a wallet by ID.
func (r *WalletRepository) Get(ctx context.Context, id int64) (*ownership.Wallet, error) {
	wallet := &ownership.Wallet{}
	err := r.db.QueryRow(ctx, `
		SELECT id, owner_id, balance
		FROM wallets
		WHERE id = $1
	`, id).Scan(&wallet.ID, &wallet.OwnerID, &wallet.Balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("WALLET_NOT_FOUND").
			With("id", id).
			Wrap(ownership.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("WALLET_GET_FAILED").
			With("operation", "get wallet").
			With("id", id).
			Wrap(err)
	}
	return wallet, nil
}

// ListByOwner returns all wallets held by an owner, ordered by ID.
func (r *WalletRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*ownership.Wallet, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, owner_id, balance
		FROM wallets
		WHERE owner_id = $1
		ORDER BY id
	`, ownerID)
	if err != nil {
		return nil, oops.Code("WALLET_LIST_FAILED").
			With("operation", "list wallets").
			With("owner_id", ownerID).
			Wrap(err)
	}
	defer rows.Close()

	wallets := make([]*ownership.Wallet, 0)
	for rows.Next() {
		wallet := &ownership.Wallet{}
		if err := rows.Scan(&wallet.ID, &wallet.OwnerID, &wallet.Balance); err != nil {
			return nil, oops.Code("WALLET_LIST_FAILED").
				With("operation", "scan wallet row").
				Wrap(err)
		}
		wallets = append(wallets, wallet)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("WALLET_LIST_FAILED").
			With("operation", "iterate wallets").
			Wrap(err)
	}
	return wallets, nil
}

var _ ownership.WalletRepository = (*WalletRepository)(nil)
