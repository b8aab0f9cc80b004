// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OpenLot Contributors

package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openlot/openlot/pkg/errutil"
)

func execMigrate(t *testing.T, args ...string) error {
	t.Helper()
	configFile = ""

	cmd := NewRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs(append([]string{"migrate"}, args...))
	return cmd.Execute()
}

func TestMigrateCommand_Properties(t *testing.T) {
	cmd := NewMigrateCmd()

	assert.Equal(t, "migrate", cmd.Use)
	assert.Contains(t, cmd.Short, "migration")
	assert.Contains(t, cmd.Long, "PostgreSQL")

	subs := make([]string, 0, len(cmd.Commands()))
	for _, sub := range cmd.Commands() {
		subs = append(subs, sub.Name())
	}
	assert.ElementsMatch(t, []string{"up", "down", "steps", "version", "force"}, subs)
}

func TestMigrateUp_RequiresDatabaseURL(t *testing.T) {
	err := execMigrate(t, "up")
	errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
}

func TestMigrateDown_RequiresConfirmation(t *testing.T) {
	// Refuses before any config or database is touched.
	err := execMigrate(t, "down")
	errutil.AssertErrorCode(t, err, "CONFIRMATION_REQUIRED")
}

func TestMigrateSteps_RejectsZero(t *testing.T) {
	err := execMigrate(t, "steps")
	errutil.AssertErrorCode(t, err, "INVALID_STEPS")
}

func TestMigrateForce_RejectsNegative(t *testing.T) {
	err := execMigrate(t, "force")
	errutil.AssertErrorCode(t, err, "INVALID_VERSION")
}

func TestMigrateVersion_RequiresDatabaseURL(t *testing.T) {
	err := execMigrate(t, "version")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
}
