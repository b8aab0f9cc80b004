// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OpenLot Contributors

package ownership

import "time"

// ParkingEvent records one parking occurrence for a car. Events are
// append-only; history for a car is returned in insertion order.
type ParkingEvent struct {
	ID        int64
	CarID     int64
	Timestamp time.Time
}
