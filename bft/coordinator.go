package bft

import (
	"github.com/hashicorp/go-multierror"

	"github.com/luxfi/twogenerals/primitives"
)

// Coordinator is a test-time convenience that runs a single BFT round
// across a fixed set of arbitrators: elicit a proposal, deliver it to every
// arbitrator and collect shares, deliver all shares to every arbitrator and
// collect commits, then broadcast the first commit to all arbitrators. A
// real deployment substitutes a flood-and-store network instead.
type Coordinator struct {
	arbitrators []*Arbitrator
}

// NewCoordinator constructs a Coordinator over the given arbitrators.
func NewCoordinator(arbitrators []*Arbitrator) *Coordinator {
	return &Coordinator{arbitrators: append([]*Arbitrator(nil), arbitrators...)}
}

// RunRound drives one full proposal -> share -> commit round. proposerKeyPair
// signs the Proposal on behalf of proposerID. Errors from individual
// arbitrators are aggregated via multierror rather than aborting on the
// first failure, since one Byzantine or slow node should not block
// reporting about the rest.
func (c *Coordinator) RunRound(proposerID uint64, round uint64, value []byte, proposerKeyPair *primitives.KeyPair) (*CommitMessage, error) {
	proposal := NewProposal(round, value, proposerKeyPair)

	var errs *multierror.Error
	shares := make([]ShareMessage, 0, len(c.arbitrators))
	for _, arb := range c.arbitrators {
		share, err := arb.ReceiveProposal(proposal)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		shares = append(shares, share)
	}

	var commits []*CommitMessage
	for _, arb := range c.arbitrators {
		for _, share := range shares {
			commit, err := arb.ReceiveShare(share)
			if err != nil {
				errs = multierror.Append(errs, err)
				continue
			}
			if commit != nil {
				commits = append(commits, commit)
			}
		}
	}

	if len(commits) == 0 {
		return nil, errs.ErrorOrNil()
	}

	winner := commits[0]
	for _, arb := range c.arbitrators {
		if arb.Phase() == Committed {
			continue
		}
		if err := arb.ReceiveCommit(*winner); err != nil {
			errs = multierror.Append(errs, err)
		}
	}

	return winner, errs.ErrorOrNil()
}
