package bft

import "errors"

var (
	// ErrNotIdle indicates receive_proposal was called outside the Idle phase.
	ErrNotIdle = errors.New("bft: arbitrator is not idle")

	// ErrWrongRound indicates a proposal did not continue from current_round + 1,
	// or a commit did not match current_round.
	ErrWrongRound = errors.New("bft: proposal round mismatch")

	// ErrInvalidProposalSignature indicates a proposal's Ed25519 signature did not verify.
	ErrInvalidProposalSignature = errors.New("bft: invalid proposal signature")

	// ErrInvalidCommit indicates a commit's threshold-signature proof did not verify.
	ErrInvalidCommit = errors.New("bft: invalid commit proof")
)
