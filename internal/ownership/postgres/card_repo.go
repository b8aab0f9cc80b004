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

// CardRepository implements ownership.CardRepository using PostgreSQL.
// Number fields hold the sealed form; the repository never sees plaintext
// card numbers.
type CardRepository struct {
	db DB
}

// NewCardRepository creates a new CardRepository.
func NewCardRepository(db DB) *CardRepository {
	return &CardRepository{db: db}
}

// Create stores a new card. Owner existence is checked in the same
// statement; a missing owner writes nothing.
func (r *CardRepository) Create(ctx context.Context, card *ownership.Card) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO cards (owner_id, number_sealed)
		SELECT $1, $2
		WHERE EXISTS (SELECT 1 FROM accounts WHERE id = $1)
		RETURNING id
	`, card.OwnerID, card.Number).Scan(&card.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isForeignKeyViolation(err) {
			return oops.Code("OWNERSHIP_OWNER_NOT_FOUND").
				With("owner_id", card.OwnerID).
				Wrap(ownership.ErrOwnerNotFound)
		}
		return oops.Code("CARD_CREATE_FAILED").
			With("operation", "insert card").
			With("owner_id", card.OwnerID).
			Wrap(err)
	}
	return nil
}

// Get retrieves a card by ID.
func (r *CardRepository) Get(ctx context.Context, id int64) (*ownership.Card, error) {
	card := &ownership.Card{}
	err := r.db.QueryRow(ctx, `
		SELECT id, owner_id, number_sealed
		FROM cards
		WHERE id = $1
	`, id).Scan(&card.ID, &card.OwnerID, &card.Number)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("CARD_NOT_FOUND").
			With("id", id).
			Wrap(ownership.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("CARD_GET_FAILED").
			With("operation", "get card").
			With("id", id).
			Wrap(err)
	}
	return card, nil
}

// ListByOwner returns all cards held by an owner, ordered by ID.
func (r *CardRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*ownership.Card, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, owner_id, number_sealed
		FROM cards
		WHERE owner_id = $1
		ORDER BY id
	`, ownerID)
	if err != nil {
		return nil, oops.Code("CARD_LIST_FAILED").
			With("operation", "list cards").
			With("owner_id", ownerID).
			Wrap(err)
	}
	defer rows.Close()

	cards := make([]*ownership.Card, 0)
	for rows.Next() {
		card := &ownership.Card{}
		if err := rows.Scan(&card.ID, &card.OwnerID, &card.Number); err != nil {
			return nil, oops.Code("CARD_LIST_FAILED").
				With("operation", "scan card row").
				Wrap(err)
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("CARD_LIST_FAILED").
			With("operation", "iterate cards").
			Wrap(err)
	}
	return cards, nil
}

var _ ownership.CardRepository = (*CardRepository)(nil)
