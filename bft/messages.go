package bft

import (
	"bytes"
	"encoding/binary"

	"github.com/luxfi/twogenerals/primitives"
)

// Proposal is the round-opening message: a proposer's signed intent to
// commit a value at a given round.
type Proposal struct {
	Round          uint64
	Value          []byte
	ProposerPublic primitives.PublicKey
	Signature      primitives.Signature
}

// SigningPayload returns "PROPOSE" || round_be_u64 || value, the bytes an
// Ed25519 signature over a Proposal must cover.
func (p Proposal) SigningPayload() []byte {
	var roundBytes [8]byte
	binary.BigEndian.PutUint64(roundBytes[:], p.Round)
	var buf bytes.Buffer
	buf.WriteString("PROPOSE")
	buf.Write(roundBytes[:])
	buf.Write(p.Value)
	return buf.Bytes()
}

// NewProposal signs a Proposal under kp.
func NewProposal(round uint64, value []byte, kp *primitives.KeyPair) Proposal {
	p := Proposal{Round: round, Value: append([]byte(nil), value...), ProposerPublic: kp.PublicKey()}
	p.Signature = kp.Sign(p.SigningPayload())
	return p
}

// Verify checks the proposal's Ed25519 signature.
func (p Proposal) Verify() error {
	return p.ProposerPublic.Verify(p.SigningPayload(), p.Signature)
}

// ShareMessage carries one node's threshold-signature share for a round.
type ShareMessage struct {
	Round  uint64
	NodeID uint64
	Share  Share
}

// CommitMessage carries an aggregated threshold signature that locks a
// round's value.
type CommitMessage struct {
	Round uint64
	Value []byte
	Proof ThresholdSignature
}
