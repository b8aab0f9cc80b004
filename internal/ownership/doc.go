// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OpenLot Contributors

// Package ownership models the resources an account can hold - wallets,
// cards, and cars - plus the append-only parking log hanging off cars.
//
// Every resource belongs to exactly one owner. Access funnels through
// Policy.AssertOwns, the single enforcement point; card numbers pass
// through CardVault so only sealed forms reach the store.
package ownership
