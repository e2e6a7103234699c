package fullsolve

import "errors"

var (
	// ErrInvalidSignature is returned when an inbound artifact fails Ed25519 verification.
	ErrInvalidSignature = errors.New("fullsolve: invalid signature")

	// ErrUnexpectedParty is returned when an inbound artifact was signed
	// under a public key other than the counterparty's. An artifact labelled
	// with this instance's own party is ignored without an error.
	ErrUnexpectedParty = errors.New("fullsolve: artifact from unexpected party")

	// ErrInvalidProofChain is returned when an inbound confirmation's
	// embedded quad proof does not match the counterparty's previously
	// observed quad, or a nested component was authored by the wrong party.
	ErrInvalidProofChain = errors.New("fullsolve: invalid proof chain")

	// ErrAlreadyCompleted names a mutation attempted after Complete. No
	// function in this package returns it: Abort once Complete is a silent
	// no-op.
	ErrAlreadyCompleted = errors.New("fullsolve: instance already completed")
)
