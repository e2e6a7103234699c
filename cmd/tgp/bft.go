package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/luxfi/twogenerals/bft"
	"github.com/luxfi/twogenerals/primitives"
)

func newBftCmd() *cobra.Command {
	var n, f uint64
	var round uint64
	var value string

	cmd := &cobra.Command{
		Use:   "bft",
		Short: "Simulate one N-party BFT threshold-signature round",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := bft.NewConfig(n, f)
			if err != nil {
				return err
			}

			masterSecret := make([]byte, 32)
			if _, err := rand.Read(masterSecret); err != nil {
				return err
			}
			scheme, err := bft.NewThresholdScheme(config, masterSecret)
			if err != nil {
				return err
			}

			arbitrators := make([]*bft.Arbitrator, config.N)
			for i := uint64(0); i < config.N; i++ {
				arbitrators[i] = bft.NewArbitrator(i, config, scheme, nil)
			}
			coordinator := bft.NewCoordinator(arbitrators)

			proposerKeyPair, err := primitives.GenerateKeyPair()
			if err != nil {
				return err
			}

			commit, err := coordinator.RunRound(0, round, []byte(value), proposerKeyPair)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "round: %d\n", commit.Round)
			fmt.Fprintf(out, "threshold: %d-of-%d\n", config.Threshold(), config.N)
			fmt.Fprintf(out, "contributing_nodes: %v\n", commit.Proof.ContributingNodes)
			fmt.Fprintf(out, "proof: %s\n", hex.EncodeToString(commit.Proof.Bytes[:]))

			for _, arb := range arbitrators {
				fmt.Fprintf(out, "node %d: phase=%s\n", arb.NodeID, arb.Phase())
			}
			return nil
		},
	}

	cmd.Flags().Uint64Var(&n, "n", 4, "total nodes (must equal 3f+1)")
	cmd.Flags().Uint64Var(&f, "f", 1, "maximum tolerated Byzantine nodes")
	cmd.Flags().Uint64Var(&round, "round", 1, "round number to propose")
	cmd.Flags().StringVar(&value, "value", "ATTACK", "value to propose for the round")
	return cmd
}
