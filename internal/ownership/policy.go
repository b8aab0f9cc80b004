// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OpenLot Contributors

package ownership

import (
	"log/slog"

	"github.com/samber/oops"

	"github.com/openlot/openlot/internal/auth"
)

// DenialRecorder counts requests rejected by the policy. Implemented by
// observability.Metrics; nil means no recording.
type DenialRecorder interface {
	RecordOwnershipDenial()
}

// Policy is the single enforcement point for resource access. Every read
// or write of an owned resource funnels through AssertOwns, so disabling
// enforcement is one switch, not a code hunt.
type Policy struct {
	enforce bool
	logger  *slog.Logger
	metrics DenialRecorder
}

// SetMetrics attaches a denial recorder. Safe to leave unset.
func (p *Policy) SetMetrics(r DenialRecorder) {
	p.metrics = r
}

// NewPolicy creates a policy. Enforcement should only be disabled in
// development environments.
func NewPolicy(enforce bool, logger *slog.Logger) *Policy {
	if logger == nil {
		logger = slog.Default()
	}
	return &Policy{enforce: enforce, logger: logger}
}

// Enforcing reports whether ownership checks are active.
func (p *Policy) Enforcing() bool {
	return p.enforce
}

// AssertOwns checks that the requester owns the resource held by ownerID.
// A nil requester is a system context (migrations, jobs) and always
// passes. When enforcement is off the mismatch is logged and allowed.
func (p *Policy) AssertOwns(requester *auth.Account, ownerID int64) error {
	if requester == nil || requester.ID == ownerID {
		return nil
	}
	if !p.enforce {
		p.logger.Warn("ownership check skipped",
			"requester_id", requester.ID,
			"owner_id", ownerID,
		)
		return nil
	}
	if p.metrics != nil {
		p.metrics.RecordOwnershipDenial()
	}
	return oops.Code("OWNERSHIP_DENIED").
		With("requester_id", requester.ID).
		With("owner_id", ownerID).
		Wrap(ErrNotOwner)
}
