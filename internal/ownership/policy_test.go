// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OpenLot Contributors

package ownership_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openlot/openlot/internal/auth"
	"github.com/openlot/openlot/internal/ownership"
	"github.com/openlot/openlot/pkg/errutil"
)

func TestPolicy_AssertOwns(t *testing.T) {
	requester := &auth.Account{ID: 1, Username: "alice"}

	t.Run("owner passes", func(t *testing.T) {
		policy := ownership.NewPolicy(true, nil)
		assert.NoError(t, policy.AssertOwns(requester, 1))
	})

	t.Run("non-owner is denied when enforcing", func(t *testing.T) {
		policy := ownership.NewPolicy(true, nil)
		err := policy.AssertOwns(requester, 2)
		errutil.AssertErrorIs(t, err, ownership.ErrNotOwner)
		errutil.AssertErrorCode(t, err, "OWNERSHIP_DENIED")
	})

	t.Run("system context always passes", func(t *testing.T) {
		policy := ownership.NewPolicy(true, nil)
		assert.NoError(t, policy.AssertOwns(nil, 2))
	})

	t.Run("mismatch is allowed but logged when enforcement is off", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		policy := ownership.NewPolicy(false, logger)

		assert.NoError(t, policy.AssertOwns(requester, 2))
		assert.Contains(t, buf.String(), "ownership check skipped")
	})

	t.Run("enforcing reports the switch", func(t *testing.T) {
		assert.True(t, ownership.NewPolicy(true, nil).Enforcing())
		assert.False(t, ownership.NewPolicy(false, nil).Enforcing())
	})
}

type denialCounter struct {
	denials int
}

func (c *denialCounter) RecordOwnershipDenial() { c.denials++ }

func TestPolicy_Metrics(t *testing.T) {
	requester := &auth.Account{ID: 1, Username: "alice"}

	t.Run("denial is counted", func(t *testing.T) {
		counter := &denialCounter{}
		policy := ownership.NewPolicy(true, nil)
		policy.SetMetrics(counter)

		assert.Error(t, policy.AssertOwns(requester, 2))
		assert.Equal(t, 1, counter.denials)
	})

	t.Run("allowed requests are not counted", func(t *testing.T) {
		counter := &denialCounter{}
		policy := ownership.NewPolicy(true, nil)
		policy.SetMetrics(counter)

		assert.NoError(t, policy.AssertOwns(requester, 1))
		assert.NoError(t, policy.AssertOwns(nil, 2))
		assert.Equal(t, 0, counter.denials)
	})

	t.Run("skipped enforcement is not a denial", func(t *testing.T) {
		var buf bytes.Buffer
		counter := &denialCounter{}
		policy := ownership.NewPolicy(false, slog.New(slog.NewTextHandler(&buf, nil)))
		policy.SetMetrics(counter)

		assert.NoError(t, policy.AssertOwns(requester, 2))
		assert.Equal(t, 0, counter.denials)
	})
}
