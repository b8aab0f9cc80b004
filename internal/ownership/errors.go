// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OpenLot Contributors

package ownership

import "errors"

// Sentinel errors for the ownership domain. Call sites wrap these with
// oops codes and context; callers match with errors.Is.
var (
	// ErrNotFound is returned when a requested resource doesn't exist.
	ErrNotFound = errors.New("resource not found")

	// ErrOwnerNotFound is returned when a write names an owner that doesn't
	// exist. The check and the write are one statement, so a concurrently
	// deleted owner can never acquire a resource.
	ErrOwnerNotFound = errors.New("owner does not exist")

	// ErrNotOwner is returned when a requester acts on a resource owned by
	// someone else.
	ErrNotOwner = errors.New("requester does not own resource")
)
