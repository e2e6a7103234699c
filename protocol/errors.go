package protocol

import "errors"

var (
	// ErrInvalidSignature is returned when an inbound artifact fails Ed25519 verification.
	ErrInvalidSignature = errors.New("protocol: invalid signature")

	// ErrUnexpectedParty is returned when an inbound artifact was signed
	// under a public key other than the counterparty's. An artifact labelled
	// with this instance's own party is ignored without an error.
	ErrUnexpectedParty = errors.New("protocol: artifact from unexpected party")

	// ErrInvalidProofChain is returned when an inbound artifact's
	// party-consistency requirements are violated (e.g. a nested component
	// was authored by the wrong party).
	ErrInvalidProofChain = errors.New("protocol: invalid proof chain")

	// ErrInvalidStateTransition names an operation attempted in a state that
	// forbids it. No function in this package returns it: Receive after
	// Abort returns (false, nil).
	ErrInvalidStateTransition = errors.New("protocol: invalid state transition")

	// ErrAlreadyCompleted names a mutation attempted after Complete. No
	// function in this package returns it: Abort once Complete is a silent
	// no-op.
	ErrAlreadyCompleted = errors.New("protocol: instance already completed")
)
