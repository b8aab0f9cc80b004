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

// ParkingEventRepository implements ownership.ParkingEventRepository using
// PostgreSQL. Events are append-only; ordering follows the serial ID, not
// the timestamp, so clock adjustments never reorder history.
type ParkingEventRepository struct {
	db DB
}

// NewParkingEventRepository creates a new ParkingEventRepository.
func NewParkingEventRepository(db DB) *ParkingEventRepository {
	return &ParkingEventRepository{db: db}
}

// Append records a parking event for a car, timestamped by the database.
// Car existence is checked in the same statement; a missing car writes
// nothing.
func (r *ParkingEventRepository) Append(ctx context.Context, carID int64) (*ownership.ParkingEvent, error) {
	event := &ownership.ParkingEvent{CarID: carID}
	err := r.db.QueryRow(ctx, `
		INSERT INTO parking_events (car_id)
		SELECT $1
		WHERE EXISTS (SELECT 1 FROM cars WHERE id = $1)
		RETURNING id, occurred_at
	`, carID).Scan(&event.ID, &event.Timestamp)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isForeignKeyViolation(err) {
			return nil, oops.Code("OWNERSHIP_OWNER_NOT_FOUND").
				With("car_id", carID).
				Wrap(ownership.ErrOwnerNotFound)
		}
		return nil, oops.Code("PARKING_APPEND_FAILED").
			With("operation", "insert parking event").
			With("car_id", carID).
			Wrap(err)
	}
	return event, nil
}

// ListByCar returns a car's events in insertion order.
func (r *ParkingEventRepository) ListByCar(ctx context.Context, carID int64) ([]*ownership.ParkingEvent, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, car_id, occurred_at
		FROM parking_events
		WHERE car_id = $1
		ORDER BY id
	`, carID)
	if err != nil {
		return nil, oops.Code("PARKING_LIST_FAILED").
			With("operation", "list parking events").
			With("car_id", carID).
			Wrap(err)
	}
	defer rows.Close()

	events := make([]*ownership.ParkingEvent, 0)
	for rows.Next() {
		event := &ownership.ParkingEvent{}
		if err := rows.Scan(&event.ID, &event.CarID, &event.Timestamp); err != nil {
			return nil, oops.Code("PARKING_LIST_FAILED").
				With("operation", "scan parking event row").
				Wrap(err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("PARKING_LIST_FAILED").
			With("operation", "iterate parking events").
			Wrap(err)
	}
	return events, nil
}

var _ ownership.ParkingEventRepository = (*ParkingEventRepository)(nil)
