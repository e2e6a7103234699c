package main

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/luxfi/twogenerals/primitives"
)

func newKeygenCmd() *cobra.Command {
	var seedHex string

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate an Ed25519 identity for a protocol party",
		RunE: func(cmd *cobra.Command, args []string) error {
			var kp *primitives.KeyPair
			var err error
			if seedHex != "" {
				seed, decodeErr := hex.DecodeString(seedHex)
				if decodeErr != nil {
					return fmt.Errorf("tgp: invalid --seed hex: %w", decodeErr)
				}
				kp, err = primitives.FromSeed(seed)
			} else {
				kp, err = primitives.GenerateKeyPair()
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "public_key: %s\n", hex.EncodeToString(kp.PublicKey().Bytes()))
			return nil
		},
	}
	cmd.Flags().StringVar(&seedHex, "seed", "", "derive deterministically from a 32-byte hex seed instead of the OS CSPRNG")
	return cmd
}
