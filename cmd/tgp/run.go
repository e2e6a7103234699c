package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/luxfi/twogenerals/artifact"
	"github.com/luxfi/twogenerals/flood"
	"github.com/luxfi/twogenerals/primitives"
	"github.com/luxfi/twogenerals/protocol"
	"github.com/luxfi/twogenerals/protocol/fullsolve"
	"github.com/luxfi/twogenerals/wire"
)

func newRunCmd() *cobra.Command {
	var fullSolve bool
	var message string
	var minRate, maxRate uint64
	var maxRounds int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Simulate a two-party protocol run over an in-process channel",
		RunE: func(cmd *cobra.Command, args []string) error {
			kpA, err := primitives.GenerateKeyPair()
			if err != nil {
				return err
			}
			kpB, err := primitives.GenerateKeyPair()
			if err != nil {
				return err
			}

			flooderA, err := flood.NewFlooder(minRate, maxRate)
			if err != nil {
				return err
			}
			flooderB, err := flood.NewFlooder(minRate, maxRate)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if fullSolve {
				alice := fullsolve.New(artifact.Alice, kpA, kpB.PublicKey(), fullsolve.WithCommitmentMessage([]byte(message)))
				bob := fullsolve.New(artifact.Bob, kpB, kpA.PublicKey(), fullsolve.WithCommitmentMessage([]byte(message)))

				for round := 0; round < maxRounds && !(alice.IsComplete() && bob.IsComplete()); round++ {
					if flooderA.ShouldSend(!alice.IsComplete()) {
						if err := deliver(alice, bob); err != nil {
							return err
						}
					}
					if flooderB.ShouldSend(!bob.IsComplete()) {
						if err := deliver(bob, alice); err != nil {
							return err
						}
					}
					time.Sleep(time.Millisecond)
				}

				fmt.Fprintf(out, "alice: phase=%s decision=%s\n", alice.Phase(), alice.GetDecision())
				fmt.Fprintf(out, "bob:   phase=%s decision=%s\n", bob.Phase(), bob.GetDecision())
				return nil
			}

			alice := protocol.New(artifact.Alice, kpA, kpB.PublicKey(), protocol.WithCommitmentMessage([]byte(message)))
			bob := protocol.New(artifact.Bob, kpB, kpA.PublicKey(), protocol.WithCommitmentMessage([]byte(message)))

			for round := 0; round < maxRounds && !(alice.IsComplete() && bob.IsComplete()); round++ {
				if flooderA.ShouldSend(!alice.IsComplete()) {
					if err := deliver(alice, bob); err != nil {
						return err
					}
				}
				if flooderB.ShouldSend(!bob.IsComplete()) {
					if err := deliver(bob, alice); err != nil {
						return err
					}
				}
				time.Sleep(time.Millisecond)
			}

			fmt.Fprintf(out, "alice: state=%s decision=%s\n", alice.State(), alice.GetDecision())
			fmt.Fprintf(out, "bob:   state=%s decision=%s\n", bob.State(), bob.GetDecision())
			return nil
		},
	}

	cmd.Flags().BoolVar(&fullSolve, "fullsolve", false, "run the six-phase Full Solve extension instead of the Quad-only protocol")
	cmd.Flags().StringVar(&message, "message", string(protocol.DefaultCommitmentMessage), "commitment intent string")
	cmd.Flags().Uint64Var(&minRate, "min-rate", 10, "minimum flood rate in packets/second")
	cmd.Flags().Uint64Var(&maxRate, "max-rate", 100, "maximum flood rate in packets/second")
	cmd.Flags().IntVar(&maxRounds, "max-rounds", 2000, "upper bound on simulation rounds before giving up")
	return cmd
}

// sender is satisfied by both protocol.TwoGenerals and fullsolve.Instance;
// deliver floods whatever the sender currently has to the receiver.
type sender interface {
	GetMessagesToSend() ([]wire.Message, error)
}

type receiver interface {
	Receive(msg wire.Message) (bool, error)
}

func deliver(from sender, to receiver) error {
	msgs, err := from.GetMessagesToSend()
	if err != nil {
		return err
	}
	for _, msg := range msgs {
		if _, err := to.Receive(msg); err != nil {
			return err
		}
	}
	return nil
}
