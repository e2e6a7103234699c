// Package primitives provides the cryptographic building blocks for the
// Two Generals Protocol: Ed25519 signing/verification and BLAKE3 hashing.
//
// Every higher-level artifact in the artifact package is built by signing
// and hashing canonical byte strings produced from these primitives. Nothing
// here knows about parties, proofs, or protocol phases.
package primitives

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"io"

	"filippo.io/edwards25519"
	"github.com/zeebo/blake3"
)

const (
	// PublicKeySize is the size in bytes of an Ed25519 public key.
	PublicKeySize = ed25519.PublicKeySize

	// PrivateKeySize is the size in bytes of an Ed25519 expanded private key.
	PrivateKeySize = ed25519.PrivateKeySize

	// SeedSize is the size in bytes of the seed used to derive a key pair deterministically.
	SeedSize = ed25519.SeedSize

	// SignatureSize is the size in bytes of an Ed25519 signature.
	SignatureSize = ed25519.SignatureSize

	// HashSize is the size in bytes of a BLAKE3 digest as used throughout this module.
	HashSize = 32
)

var (
	// ErrInvalidPublicKey indicates the public key bytes are not a valid Ed25519 point.
	ErrInvalidPublicKey = errors.New("primitives: invalid public key")

	// ErrInvalidSignature indicates signature verification failed.
	ErrInvalidSignature = errors.New("primitives: invalid signature")

	// ErrInvalidSeed indicates a seed of the wrong length was supplied.
	ErrInvalidSeed = errors.New("primitives: seed must be 32 bytes")
)

// PublicKey is an opaque, fixed-length Ed25519 verification key.
type PublicKey struct {
	bytes [PublicKeySize]byte
}

// NewPublicKey validates and wraps raw public key bytes.
//
// Beyond the length check, the bytes must decode to a valid point on the
// edwards25519 curve and be that point's canonical encoding. SetBytes alone
// accepts non-canonical encodings of valid points, so the decoded point is
// re-encoded and compared with raw.
func NewPublicKey(raw []byte) (PublicKey, error) {
	if len(raw) != PublicKeySize {
		return PublicKey{}, ErrInvalidPublicKey
	}
	point, err := new(edwards25519.Point).SetBytes(raw)
	if err != nil || !bytes.Equal(point.Bytes(), raw) {
		return PublicKey{}, ErrInvalidPublicKey
	}
	var pk PublicKey
	copy(pk.bytes[:], raw)
	return pk, nil
}

// Bytes returns the raw 32-byte public key.
func (pk PublicKey) Bytes() []byte {
	out := make([]byte, PublicKeySize)
	copy(out, pk.bytes[:])
	return out
}

// Equal reports whether two public keys are byte-identical.
func (pk PublicKey) Equal(other PublicKey) bool {
	return pk.bytes == other.bytes
}

// Verify checks an Ed25519 signature over message under this public key.
func (pk PublicKey) Verify(message []byte, sig Signature) error {
	if !ed25519.Verify(ed25519.PublicKey(pk.bytes[:]), message, sig.bytes[:]) {
		return ErrInvalidSignature
	}
	return nil
}

// Signature is an opaque, fixed-length Ed25519 signature.
type Signature struct {
	bytes [SignatureSize]byte
}

// NewSignature validates and wraps raw signature bytes.
func NewSignature(raw []byte) (Signature, error) {
	if len(raw) != SignatureSize {
		return Signature{}, ErrInvalidSignature
	}
	var sig Signature
	copy(sig.bytes[:], raw)
	return sig, nil
}

// Bytes returns the raw 64-byte signature.
func (s Signature) Bytes() []byte {
	out := make([]byte, SignatureSize)
	copy(out, s.bytes[:])
	return out
}

// KeyPair holds an Ed25519 signing key together with its public component.
type KeyPair struct {
	private ed25519.PrivateKey
	public  PublicKey
}

// GenerateKeyPair produces a fresh key pair from the OS CSPRNG.
func GenerateKeyPair() (*KeyPair, error) {
	return GenerateKeyPairFromReader(rand.Reader)
}

// GenerateKeyPairFromReader produces a key pair using the supplied random source.
func GenerateKeyPairFromReader(random io.Reader) (*KeyPair, error) {
	pub, priv, err := ed25519.GenerateKey(random)
	if err != nil {
		return nil, err
	}
	var pk PublicKey
	copy(pk.bytes[:], pub)
	return &KeyPair{private: priv, public: pk}, nil
}

// FromSeed deterministically derives a key pair from a 32-byte seed.
// The same seed always yields the same key pair.
func FromSeed(seed []byte) (*KeyPair, error) {
	if len(seed) != SeedSize {
		return nil, ErrInvalidSeed
	}
	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)
	var pk PublicKey
	copy(pk.bytes[:], pub)
	return &KeyPair{private: priv, public: pk}, nil
}

// PublicKey returns the public component of this key pair.
func (kp *KeyPair) PublicKey() PublicKey {
	return kp.public
}

// Sign produces an Ed25519 signature over message.
func (kp *KeyPair) Sign(message []byte) Signature {
	var sig Signature
	copy(sig.bytes[:], ed25519.Sign(kp.private, message))
	return sig
}

// Hash computes the BLAKE3 digest of data.
func Hash(data []byte) [HashSize]byte {
	return blake3.Sum256(data)
}

// HashMulti computes the BLAKE3 digest of the concatenation of parts,
// without allocating an intermediate concatenated buffer.
func HashMulti(parts ...[]byte) [HashSize]byte {
	h := blake3.New()
	for _, p := range parts {
		h.Write(p) //nolint:errcheck // hash.Hash.Write never errors
	}
	var out [HashSize]byte
	copy(out[:], h.Sum(nil))
	return out
}
