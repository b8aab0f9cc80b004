// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OpenLot Contributors

package main

import (
	"crypto/rand"
	"encoding/hex"
	"io"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/openlot/openlot/internal/auth"
)

// NewKeygenCmd creates the keygen subcommand. It emits a fresh signing
// key with a ULID key ID as a config snippet, ready to paste into the
// auth.signing_keys map.
func NewKeygenCmd() *cobra.Command {
	var vault bool

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a signing or vault key",
		Long: `Generate a random key and print it as a YAML config snippet.
By default the key is a token signing key with a fresh key ID; with
--vault it is a card vault key instead.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runKeygen(cmd, vault, rand.Reader)
		},
	}

	cmd.Flags().BoolVar(&vault, "vault", false, "generate a card vault key instead of a signing key")

	return cmd
}

func runKeygen(cmd *cobra.Command, vault bool, reader io.Reader) error {
	key := make([]byte, auth.MinSigningKeyLen)
	if _, err := io.ReadFull(reader, key); err != nil {
		return oops.Code("KEYGEN_FAILED").With("operation", "read random bytes").Wrap(err)
	}

	if vault {
		cmd.Println("cards:")
		cmd.Printf("  vault_key: %s\n", hex.EncodeToString(key))
		return nil
	}

	kid, err := ulid.New(ulid.Now(), reader)
	if err != nil {
		return oops.Code("KEYGEN_FAILED").With("operation", "generate key id").Wrap(err)
	}

	cmd.Println("auth:")
	cmd.Printf("  active_key: %s\n", kid)
	cmd.Println("  signing_keys:")
	cmd.Printf("    %s: %s\n", kid, hex.EncodeToString(key))
	return nil
}
