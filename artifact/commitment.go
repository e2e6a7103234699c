package artifact

import (
	"bytes"

	"github.com/luxfi/twogenerals/primitives"
)

// DefaultCommitmentMessage is the intent string signed by Commitment when
// no caller-supplied message is given.
var DefaultCommitmentMessage = []byte("I will attack at dawn if you agree")

// Commitment is the depth-0 artifact: a signed statement of unilateral
// intent. It proves nothing about the counterparty.
type Commitment struct {
	Party     Party
	PublicKey primitives.PublicKey
	Message   []byte
	Signature primitives.Signature
}

// NewCommitment constructs a Commitment and signs it under kp.
// The commitment's Party is the signer's own identity.
func NewCommitment(party Party, kp *primitives.KeyPair, message []byte) Commitment {
	return Commitment{
		Party:     party,
		PublicKey: kp.PublicKey(),
		Message:   append([]byte(nil), message...),
		Signature: kp.Sign(message),
	}
}

// MessageToSign returns the exact bytes that were (or must be) signed: the
// message bytes verbatim, with no framing.
func (c Commitment) MessageToSign() []byte {
	return c.Message
}

// CanonicalBytes returns the write-only canonical encoding
// C:<party>:<pubkey>:<message>:<sig>.
func (c Commitment) CanonicalBytes() []byte {
	var buf bytes.Buffer
	buf.WriteString("C:")
	buf.Write(c.Party.NameBytes())
	buf.WriteByte(':')
	buf.Write(c.PublicKey.Bytes())
	buf.WriteByte(':')
	buf.Write(c.Message)
	buf.WriteByte(':')
	buf.Write(c.Signature.Bytes())
	return buf.Bytes()
}

// Hash returns the BLAKE3 digest of the canonical encoding.
func (c Commitment) Hash() [primitives.HashSize]byte {
	return primitives.Hash(c.CanonicalBytes())
}

// Verify checks the commitment's Ed25519 signature over its message.
func (c Commitment) Verify() error {
	return c.PublicKey.Verify(c.MessageToSign(), c.Signature)
}
