package artifact

import (
	"bytes"

	"github.com/luxfi/twogenerals/primitives"
)

// QuadConfirmation is the depth-(omega+1) artifact of the Full Solve
// variant: "I have constructed Q and am telling you so directly." It
// strengthens the Quad-only protocol's simultaneity assumption by adding
// mutual observation of readiness on top of the bilateral construction
// invariant.
type QuadConfirmation struct {
	Party     Party
	QuadProof QuadProof
	QuadHash  [primitives.HashSize]byte
	Signature primitives.Signature
}

// NewQuadConfirmation constructs and signs a QuadConfirmation over party's
// own QuadProof.
func NewQuadConfirmation(party Party, quad QuadProof, kp *primitives.KeyPair) (QuadConfirmation, error) {
	if quad.Party != party {
		return QuadConfirmation{}, ErrOwnPartyMismatch
	}
	conf := QuadConfirmation{
		Party:     party,
		QuadProof: quad,
		QuadHash:  quad.Hash(),
	}
	conf.Signature = kp.Sign(conf.MessageToSign())
	return conf, nil
}

// MessageToSign returns canonical(quad) || "||" || quad_hash || "||I_HAVE_CONSTRUCTED_Q".
func (c QuadConfirmation) MessageToSign() []byte {
	var buf bytes.Buffer
	buf.Write(c.QuadProof.CanonicalBytes())
	buf.WriteString("||")
	buf.Write(c.QuadHash[:])
	buf.WriteString("||I_HAVE_CONSTRUCTED_Q")
	return buf.Bytes()
}

// CanonicalBytes returns QCONF:<party>:<quad>:<quad_hash>:<sig>.
func (c QuadConfirmation) CanonicalBytes() []byte {
	var buf bytes.Buffer
	buf.WriteString("QCONF:")
	buf.Write(c.Party.NameBytes())
	buf.WriteByte(':')
	buf.Write(c.QuadProof.CanonicalBytes())
	buf.WriteByte(':')
	buf.Write(c.QuadHash[:])
	buf.WriteByte(':')
	buf.Write(c.Signature.Bytes())
	return buf.Bytes()
}

// Hash returns the BLAKE3 digest of the canonical encoding.
func (c QuadConfirmation) Hash() [primitives.HashSize]byte {
	return primitives.Hash(c.CanonicalBytes())
}

// PublicKey returns the public key of the party that created this confirmation.
func (c QuadConfirmation) PublicKey() primitives.PublicKey {
	return c.QuadProof.PublicKey()
}

// Verify checks the outer signature over the embedded quad proof and hash.
func (c QuadConfirmation) Verify() error {
	return c.PublicKey().Verify(c.MessageToSign(), c.Signature)
}

// QuadConfirmationFinal is the depth-(omega+2) artifact: "I received your
// confirmation and am locked in." A party decides Attack under the Full
// Solve decision rule only once it holds both the bilateral receipt (via
// mutual QuadProofs) and the counterparty's QuadConfirmationFinal.
type QuadConfirmationFinal struct {
	Party     Party
	OwnConf   QuadConfirmation
	OtherConf QuadConfirmation
	Signature primitives.Signature
}

// NewQuadConfirmationFinal constructs and signs a QuadConfirmationFinal,
// validating party consistency between ownConf and otherConf.
func NewQuadConfirmationFinal(party Party, ownConf, otherConf QuadConfirmation, kp *primitives.KeyPair) (QuadConfirmationFinal, error) {
	if ownConf.Party != party {
		return QuadConfirmationFinal{}, ErrOwnPartyMismatch
	}
	if otherConf.Party != party.Other() {
		return QuadConfirmationFinal{}, ErrOtherPartyMismatch
	}
	f := QuadConfirmationFinal{Party: party, OwnConf: ownConf, OtherConf: otherConf}
	f.Signature = kp.Sign(f.MessageToSign())
	return f, nil
}

// MessageToSign returns canonical(own_conf) || "||" || canonical(other_conf) || "||MUTUALLY_LOCKED_IN".
func (f QuadConfirmationFinal) MessageToSign() []byte {
	var buf bytes.Buffer
	buf.Write(f.OwnConf.CanonicalBytes())
	buf.WriteString("||")
	buf.Write(f.OtherConf.CanonicalBytes())
	buf.WriteString("||MUTUALLY_LOCKED_IN")
	return buf.Bytes()
}

// CanonicalBytes returns QCONF_FINAL:<party>:<own_conf>:<other_conf>:<sig>.
func (f QuadConfirmationFinal) CanonicalBytes() []byte {
	var buf bytes.Buffer
	buf.WriteString("QCONF_FINAL:")
	buf.Write(f.Party.NameBytes())
	buf.WriteByte(':')
	buf.Write(f.OwnConf.CanonicalBytes())
	buf.WriteByte(':')
	buf.Write(f.OtherConf.CanonicalBytes())
	buf.WriteByte(':')
	buf.Write(f.Signature.Bytes())
	return buf.Bytes()
}

// Hash returns the BLAKE3 digest of the canonical encoding.
func (f QuadConfirmationFinal) Hash() [primitives.HashSize]byte {
	return primitives.Hash(f.CanonicalBytes())
}

// PublicKey returns the public key of the party that created this final confirmation.
func (f QuadConfirmationFinal) PublicKey() primitives.PublicKey {
	return f.OwnConf.PublicKey()
}

// Verify checks the outer signature over the embedded confirmation pair.
func (f QuadConfirmationFinal) Verify() error {
	return f.PublicKey().Verify(f.MessageToSign(), f.Signature)
}

// ComputeReceipt returns the bilateral receipt h(QCONF_FINAL_Alice ||
// QCONF_FINAL_Bob), ordered deterministically by party regardless of which
// side computes it, so both parties derive an identical receipt.
func (f QuadConfirmationFinal) ComputeReceipt(otherFinal QuadConfirmationFinal) [primitives.HashSize]byte {
	aliceFinal, bobFinal := f, otherFinal
	if f.Party != Alice {
		aliceFinal, bobFinal = otherFinal, f
	}
	var buf bytes.Buffer
	buf.Write(aliceFinal.CanonicalBytes())
	buf.WriteString("||")
	buf.Write(bobFinal.CanonicalBytes())
	return primitives.Hash(buf.Bytes())
}
