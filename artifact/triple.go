package artifact

import (
	"bytes"

	"github.com/luxfi/twogenerals/primitives"
)

// TripleProof is the depth-2 artifact: "I know that you know I've
// committed." It embeds both double proofs, which in turn embed both
// commitments — so receiving T_Y yields D_Y (and through it C_Y, C_X) for
// free.
type TripleProof struct {
	Party       Party
	OwnDouble   DoubleProof
	OtherDouble DoubleProof
	Signature   primitives.Signature
}

// NewTripleProof constructs a TripleProof, validating party consistency.
func NewTripleProof(party Party, ownDouble, otherDouble DoubleProof, kp *primitives.KeyPair) (TripleProof, error) {
	if ownDouble.Party != party {
		return TripleProof{}, ErrOwnPartyMismatch
	}
	if otherDouble.Party != party.Other() {
		return TripleProof{}, ErrOtherPartyMismatch
	}
	t := TripleProof{
		Party:       party,
		OwnDouble:   ownDouble,
		OtherDouble: otherDouble,
	}
	t.Signature = kp.Sign(t.MessageToSign())
	return t, nil
}

// MessageToSign returns canonical(own) || "||" || canonical(other) || "||BOTH_HAVE_DOUBLE".
func (t TripleProof) MessageToSign() []byte {
	var buf bytes.Buffer
	buf.Write(t.OwnDouble.CanonicalBytes())
	buf.WriteString("||")
	buf.Write(t.OtherDouble.CanonicalBytes())
	buf.WriteString("||BOTH_HAVE_DOUBLE")
	return buf.Bytes()
}

// CanonicalBytes returns T:<party>:<own>:<other>:<sig>.
func (t TripleProof) CanonicalBytes() []byte {
	var buf bytes.Buffer
	buf.WriteString("T:")
	buf.Write(t.Party.NameBytes())
	buf.WriteByte(':')
	buf.Write(t.OwnDouble.CanonicalBytes())
	buf.WriteByte(':')
	buf.Write(t.OtherDouble.CanonicalBytes())
	buf.WriteByte(':')
	buf.Write(t.Signature.Bytes())
	return buf.Bytes()
}

// Hash returns the BLAKE3 digest of the canonical encoding.
func (t TripleProof) Hash() [primitives.HashSize]byte {
	return primitives.Hash(t.CanonicalBytes())
}

// PublicKey returns the public key of the party that created this proof.
func (t TripleProof) PublicKey() primitives.PublicKey {
	return t.OwnDouble.PublicKey()
}

// Verify checks only the outer signature over the combined double proofs.
func (t TripleProof) Verify() error {
	return t.PublicKey().Verify(t.MessageToSign(), t.Signature)
}

// ExtractCommitments returns the (own, other) commitments embedded two
// levels down inside this triple proof.
func (t TripleProof) ExtractCommitments() (own, other Commitment) {
	return t.OwnDouble.OwnCommitment, t.OwnDouble.OtherCommitment
}
