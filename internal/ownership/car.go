// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OpenLot Contributors

package ownership

import (
	"strings"

	"github.com/samber/oops"
)

// Car is a vehicle registered to one owner. Parking events hang off cars,
// never directly off owners.
type Car struct {
	ID      int64
	OwnerID int64
	Plate   string
}

// NewCar validates and constructs an unsaved car.
func NewCar(ownerID int64, plate string) (*Car, error) {
	if ownerID <= 0 {
		return nil, oops.Code("CAR_INVALID").
			With("owner_id", ownerID).
			Errorf("car owner is required")
	}
	if strings.TrimSpace(plate) == "" {
		return nil, oops.Code("CAR_INVALID").Errorf("car plate cannot be empty")
	}
	return &Car{OwnerID: ownerID, Plate: strings.TrimSpace(plate)}, nil
}
