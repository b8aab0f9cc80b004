// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OpenLot Contributors

package ownership

import "context"

// Repositories persist owned resources. Every Create verifies owner
// existence and inserts in a single statement; a missing owner yields
// ErrOwnerNotFound and no write. List operations return empty non-nil
// slices when the owner holds nothing.

// WalletRepository manages wallet persistence.
type WalletRepository interface {
	// Create stores a new wallet and assigns its ID.
	Create(ctx context.Context, wallet *Wallet) error

	// Get retrieves a wallet by ID.
	Get(ctx context.Context, id int64) (*Wallet, error)

	// ListByOwner returns all wallets held by an owner, ordered by ID.
	ListByOwner(ctx context.Context, ownerID int64) ([]*Wallet, error)
}

// CardRepository manages card persistence. Number fields pass through
// unchanged; sealing is the service's concern.
type CardRepository interface {
	// Create stores a new card and assigns its ID.
	Create(ctx context.Context, card *Card) error

	// Get retrieves a card by ID.
	Get(ctx context.Context, id int64) (*Card, error)

	// ListByOwner returns all cards held by an owner, ordered by ID.
	ListByOwner(ctx context.Context, ownerID int64) ([]*Card, error)
}

// CarRepository manages car persistence.
type CarRepository interface {
	// Create stores a new car and assigns its ID.
	Create(ctx context.Context, car *Car) error

	// Get retrieves a car by ID.
	Get(ctx context.Context, id int64) (*Car, error)

	// ListByOwner returns all cars held by an owner, ordered by ID.
	ListByOwner(ctx context.Context, ownerID int64) ([]*Car, error)
}

// ParkingEventRepository manages the append-only parking log.
type ParkingEventRepository interface {
	// Append records a parking event for a car, timestamped by the store.
	// A missing car yields ErrOwnerNotFound and no write.
	Append(ctx context.Context, carID int64) (*ParkingEvent, error)

	// ListByCar returns a car's events in insertion order. The car's
	// existence must be checked by the caller; an unknown car returns an
	// empty slice here.
	ListByCar(ctx context.Context, carID int64) ([]*ParkingEvent, error)
}
