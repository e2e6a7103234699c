// Command tgp is a demonstration CLI for the Two Generals Protocol: key
// generation, an in-process two-party run (Quad-only or Full Solve), and
// an N-party BFT threshold-signature round.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tgp",
		Short: "Two Generals Protocol demonstration CLI",
		Long: `tgp drives the Two Generals Protocol end to end without a network:
keygen prints a fresh Ed25519 identity, run simulates a two-party exchange
under continuous flooding, and bft simulates an N-party threshold-signature
round.`,
		SilenceUsage: true,
	}
	root.AddCommand(newKeygenCmd())
	root.AddCommand(newRunCmd())
	root.AddCommand(newBftCmd())
	return root
}
