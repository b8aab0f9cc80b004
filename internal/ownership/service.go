// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OpenLot Contributors

package ownership

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samber/oops"

	"github.com/openlot/openlot/internal/auth"
)

// Service coordinates owned-resource operations: ownership checks via the
// policy, card number sealing via the vault, and persistence via the
// repositories. The requester on each method is the authenticated account
// acting on the resource; a nil requester is a system context.
type Service struct {
	wallets WalletRepository
	cards   CardRepository
	cars    CarRepository
	events  ParkingEventRepository
	vault   *CardVault
	policy  *Policy
	logger  *slog.Logger
}

// NewService creates a new Service.
func NewService(
	wallets WalletRepository,
	cards CardRepository,
	cars CarRepository,
	events ParkingEventRepository,
	vault *CardVault,
	policy *Policy,
	logger *slog.Logger,
) (*Service, error) {
	if wallets == nil || cards == nil || cars == nil || events == nil {
		return nil, oops.Code("CONFIG_INVALID").Errorf("all repositories are required")
	}
	if vault == nil {
		return nil, oops.Code("CONFIG_INVALID").Errorf("card vault is required")
	}
	if policy == nil {
		return nil, oops.Code("CONFIG_INVALID").Errorf("ownership policy is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		wallets: wallets,
		cards:   cards,
		cars:    cars,
		events:  events,
		vault:   vault,
		policy:  policy,
		logger:  logger,
	}, nil
}

// CreateWallet opens a wallet for an owner. The requester must be the
// owner; a missing owner fails with ErrOwnerNotFound and writes nothing.
func (s *Service) CreateWallet(ctx context.Context, requester *auth.Account, ownerID int64, balance float64) (*Wallet, error) {
	if err := s.policy.AssertOwns(requester, ownerID); err != nil {
		return nil, err
	}
	wallet, err := NewWallet(ownerID, balance)
	if err != nil {
		return nil, err
	}
	if err := s.wallets.Create(ctx, wallet); err != nil {
		return nil, oops.Code("WALLET_CREATE_FAILED").
			With("owner_id", ownerID).
			Wrap(err)
	}
	return wallet, nil
}

// GetWallet retrieves a wallet the requester owns.
func (s *Service) GetWallet(ctx context.Context, requester *auth.Account, id int64) (*Wallet, error) {
	wallet, err := s.wallets.Get(ctx, id)
	if err != nil {
		return nil, oops.Code("WALLET_GET_FAILED").With("id", id).Wrap(err)
	}
	if err := s.policy.AssertOwns(requester, wallet.OwnerID); err != nil {
		return nil, err
	}
	return wallet, nil
}

// ListWallets returns all wallets held by an owner.
func (s *Service) ListWallets(ctx context.Context, requester *auth.Account, ownerID int64) ([]*Wallet, error) {
	if err := s.policy.AssertOwns(requester, ownerID); err != nil {
		return nil, err
	}
	wallets, err := s.wallets.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, oops.Code("WALLET_LIST_FAILED").
			With("owner_id", ownerID).
			Wrap(err)
	}
	return wallets, nil
}

// CreateCard registers a card for an owner. The number is sealed before
// it reaches the repository; the returned card carries the plaintext the
// caller supplied.
func (s *Service) CreateCard(ctx context.Context, requester *auth.Account, ownerID int64, number string) (*Card, error) {
	if err := s.policy.AssertOwns(requester, ownerID); err != nil {
		return nil, err
	}
	card, err := NewCard(ownerID, number)
	if err != nil {
		return nil, err
	}
	sealed, err := s.vault.Seal(card.Number)
	if err != nil {
		return nil, oops.Code("CARD_CREATE_FAILED").
			With("owner_id", ownerID).
			Wrap(err)
	}

	stored := &Card{OwnerID: ownerID, Number: sealed}
	if err := s.cards.Create(ctx, stored); err != nil {
		return nil, oops.Code("CARD_CREATE_FAILED").
			With("owner_id", ownerID).
			Wrap(err)
	}
	card.ID = stored.ID
	return card, nil
}

// GetCard retrieves a card the requester owns, with the number opened.
func (s *Service) GetCard(ctx context.Context, requester *auth.Account, id int64) (*Card, error) {
	card, err := s.cards.Get(ctx, id)
	if err != nil {
		return nil, oops.Code("CARD_GET_FAILED").With("id", id).Wrap(err)
	}
	if err := s.policy.AssertOwns(requester, card.OwnerID); err != nil {
		return nil, err
	}
	number, err := s.vault.Open(card.Number)
	if err != nil {
		return nil, oops.Code("CARD_GET_FAILED").With("id", id).Wrap(err)
	}
	card.Number = number
	return card, nil
}

// ListCards returns an owner's cards with numbers opened and masked down
// to the last four digits.
func (s *Service) ListCards(ctx context.Context, requester *auth.Account, ownerID int64) ([]*Card, error) {
	if err := s.policy.AssertOwns(requester, ownerID); err != nil {
		return nil, err
	}
	cards, err := s.cards.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, oops.Code("CARD_LIST_FAILED").
			With("owner_id", ownerID).
			Wrap(err)
	}
	out := make([]*Card, 0, len(cards))
	for _, card := range cards {
		number, err := s.vault.Open(card.Number)
		if err != nil {
			return nil, oops.Code("CARD_LIST_FAILED").
				With("card_id", card.ID).
				Wrap(err)
		}
		card.Number = number
		out = append(out, card.Redacted())
	}
	return out, nil
}

// CreateCar registers a car for an owner.
func (s *Service) CreateCar(ctx context.Context, requester *auth.Account, ownerID int64, plate string) (*Car, error) {
	if err := s.policy.AssertOwns(requester, ownerID); err != nil {
		return nil, err
	}
	car, err := NewCar(ownerID, plate)
	if err != nil {
		return nil, err
	}
	if err := s.cars.Create(ctx, car); err != nil {
		return nil, oops.Code("CAR_CREATE_FAILED").
			With("owner_id", ownerID).
			Wrap(err)
	}
	return car, nil
}

// GetCar retrieves a car the requester owns.
func (s *Service) GetCar(ctx context.Context, requester *auth.Account, id int64) (*Car, error) {
	car, err := s.cars.Get(ctx, id)
	if err != nil {
		return nil, oops.Code("CAR_GET_FAILED").With("id", id).Wrap(err)
	}
	if err := s.policy.AssertOwns(requester, car.OwnerID); err != nil {
		return nil, err
	}
	return car, nil
}

// ListCars returns all cars held by an owner.
func (s *Service) ListCars(ctx context.Context, requester *auth.Account, ownerID int64) ([]*Car, error) {
	if err := s.policy.AssertOwns(requester, ownerID); err != nil {
		return nil, err
	}
	cars, err := s.cars.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, oops.Code("CAR_LIST_FAILED").
			With("owner_id", ownerID).
			Wrap(err)
	}
	return cars, nil
}

// RecordParking appends a parking event for a car the requester owns.
// A missing car fails with ErrOwnerNotFound and writes nothing.
func (s *Service) RecordParking(ctx context.Context, requester *auth.Account, carID int64) (*ParkingEvent, error) {
	car, err := s.cars.Get(ctx, carID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("PARKING_CAR_NOT_FOUND").
				With("car_id", carID).
				Wrap(ErrOwnerNotFound)
		}
		return nil, oops.Code("PARKING_RECORD_FAILED").
			With("car_id", carID).
			Wrap(err)
	}
	if err := s.policy.AssertOwns(requester, car.OwnerID); err != nil {
		return nil, err
	}
	event, err := s.events.Append(ctx, carID)
	if err != nil {
		return nil, oops.Code("PARKING_RECORD_FAILED").
			With("car_id", carID).
			Wrap(err)
	}
	return event, nil
}

// ListParkingHistory returns a car's parking events in insertion order.
// A car with no events yields an empty slice; an unknown car fails with
// ErrNotFound.
func (s *Service) ListParkingHistory(ctx context.Context, requester *auth.Account, carID int64) ([]*ParkingEvent, error) {
	car, err := s.cars.Get(ctx, carID)
	if err != nil {
		return nil, oops.Code("PARKING_HISTORY_FAILED").
			With("car_id", carID).
			Wrap(err)
	}
	if err := s.policy.AssertOwns(requester, car.OwnerID); err != nil {
		return nil, err
	}
	events, err := s.events.ListByCar(ctx, carID)
	if err != nil {
		return nil, oops.Code("PARKING_HISTORY_FAILED").
			With("car_id", carID).
			Wrap(err)
	}
	return events, nil
}
