package artifact

import (
	"bytes"

	"github.com/luxfi/twogenerals/primitives"
)

// QuadProof is the depth-omega artifact: the epistemic fixpoint. Q_X is not
// a standalone receipt — it is one half of a bilateral receipt pair
// (Q_A, Q_B); the bilateral construction invariant guarantees that if one
// half exists, the other is necessarily constructible.
type QuadProof struct {
	Party       Party
	OwnTriple   TripleProof
	OtherTriple TripleProof
	Signature   primitives.Signature
}

// NewQuadProof constructs a QuadProof, validating party consistency.
func NewQuadProof(party Party, ownTriple, otherTriple TripleProof, kp *primitives.KeyPair) (QuadProof, error) {
	if ownTriple.Party != party {
		return QuadProof{}, ErrOwnPartyMismatch
	}
	if otherTriple.Party != party.Other() {
		return QuadProof{}, ErrOtherPartyMismatch
	}
	q := QuadProof{
		Party:       party,
		OwnTriple:   ownTriple,
		OtherTriple: otherTriple,
	}
	q.Signature = kp.Sign(q.MessageToSign())
	return q, nil
}

// MessageToSign returns canonical(own) || "||" || canonical(other) || "||FIXPOINT_ACHIEVED".
func (q QuadProof) MessageToSign() []byte {
	var buf bytes.Buffer
	buf.Write(q.OwnTriple.CanonicalBytes())
	buf.WriteString("||")
	buf.Write(q.OtherTriple.CanonicalBytes())
	buf.WriteString("||FIXPOINT_ACHIEVED")
	return buf.Bytes()
}

// CanonicalBytes returns Q:<party>:<own>:<other>:<sig>.
func (q QuadProof) CanonicalBytes() []byte {
	var buf bytes.Buffer
	buf.WriteString("Q:")
	buf.Write(q.Party.NameBytes())
	buf.WriteByte(':')
	buf.Write(q.OwnTriple.CanonicalBytes())
	buf.WriteByte(':')
	buf.Write(q.OtherTriple.CanonicalBytes())
	buf.WriteByte(':')
	buf.Write(q.Signature.Bytes())
	return buf.Bytes()
}

// Hash returns the BLAKE3 digest of the canonical encoding.
func (q QuadProof) Hash() [primitives.HashSize]byte {
	return primitives.Hash(q.CanonicalBytes())
}

// PublicKey returns the public key of the party that created this proof.
func (q QuadProof) PublicKey() primitives.PublicKey {
	return q.OwnTriple.PublicKey()
}

// Verify checks only the outer signature over the combined triple proofs.
func (q QuadProof) Verify() error {
	return q.PublicKey().Verify(q.MessageToSign(), q.Signature)
}

// ProvesMutualConstructibility reports whether Q_X's embedding chain
// carries X's own double proof inside the counterparty's triple proof.
//
// Q_X contains T_Y as OtherTriple; T_Y's OtherDouble must be D_X (the
// proof that the counterparty had everything needed to construct T_Y, and
// therefore X's own T_X + T_Y is enough to construct Q_Y). For a
// well-formed QuadProof produced by NewQuadProof this always holds by
// construction; the check exists to detect a forged or malformed proof fed
// in from the wire.
func (q QuadProof) ProvesMutualConstructibility() bool {
	return q.OtherTriple.OtherDouble.Party == q.Party
}

// ExtractCommitment returns the original commitment for party, found by
// walking down through this proof's own triple and own double.
func (q QuadProof) ExtractCommitment(party Party) Commitment {
	if party == q.Party {
		return q.OwnTriple.OwnDouble.OwnCommitment
	}
	return q.OwnTriple.OwnDouble.OtherCommitment
}
