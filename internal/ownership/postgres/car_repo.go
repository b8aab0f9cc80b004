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

// CarRepository implements ownership.CarRepository using PostgreSQL.
type CarRepository struct {
	db DB
}

// NewCarRepository creates a new CarRepository.
func NewCarRepository(db DB) *CarRepository {
	return &CarRepository{db: db}
}

// Create stores a new car. Owner existence is checked in the same
// statement; a missing owner writes nothing.
func (r *CarRepository) Create(ctx context.Context, car *ownership.Car) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO cars (owner_id, plate)
		SELECT $1, $2
		WHERE EXISTS (SELECT 1 FROM accounts WHERE id = $1)
		RETURNING id
	`, car.OwnerID, car.Plate).Scan(&car.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isForeignKeyViolation(err) {
			return oops.Code("OWNERSHIP_OWNER_NOT_FOUND").
				With("owner_id", car.OwnerID).
				Wrap(ownership.ErrOwnerNotFound)
		}
		return oops.Code("CAR_CREATE_FAILED").
			With("operation", "insert car").
			With("owner_id", car.OwnerID).
			Wrap(err)
	}
	return nil
}

// Get retrieves a car by ID.
func (r *CarRepository) Get(ctx context.Context, id int64) (*ownership.Car, error) {
	car := &ownership.Car{}
	err := r.db.QueryRow(ctx, `
		SELECT id, owner_id, plate
		FROM cars
		WHERE id = $1
	`, id).Scan(&car.ID, &car.OwnerID, &car.Plate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("CAR_NOT_FOUND").
			With("id", id).
			Wrap(ownership.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("CAR_GET_FAILED").
			With("operation", "get car").
			With("id", id).
			Wrap(err)
	}
	return car, nil
}

// ListByOwner returns all cars held by an owner, ordered by ID.
func (r *CarRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*ownership.Car, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, owner_id, plate
		FROM cars
		WHERE owner_id = $1
		ORDER BY id
	`, ownerID)
	if err != nil {
		return nil, oops.Code("CAR_LIST_FAILED").
			With("operation", "list cars").
			With("owner_id", ownerID).
			Wrap(err)
	}
	defer rows.Close()

	cars := make([]*ownership.Car, 0)
	for rows.Next() {
		car := &ownership.Car{}
		if err := rows.Scan(&car.ID, &car.OwnerID, &car.Plate); err != nil {
			return nil, oops.Code("CAR_LIST_FAILED").
				With("operation", "scan car row").
				Wrap(err)
		}
		cars = append(cars, car)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("CAR_LIST_FAILED").
			With("operation", "iterate cars").
			Wrap(err)
	}
	return cars, nil
}

var _ ownership.CarRepository = (*CarRepository)(nil)
