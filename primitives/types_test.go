package primitives

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateKeyPair(t *testing.T) {
	kp, err := GenerateKeyPair()
	require.NoError(t, err)
	assert.Len(t, kp.PublicKey().Bytes(), PublicKeySize)
}

func TestFromSeedDeterministic(t *testing.T) {
	seed := make([]byte, SeedSize)
	for i := range seed {
		seed[i] = 0x42
	}

	kp1, err := FromSeed(seed)
	require.NoError(t, err)
	kp2, err := FromSeed(seed)
	require.NoError(t, err)

	assert.True(t, kp1.PublicKey().Equal(kp2.PublicKey()))
}

func TestFromSeedRejectsWrongLength(t *testing.T) {
	_, err := FromSeed([]byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrInvalidSeed)
}

func TestSignAndVerify(t *testing.T) {
	kp, err := GenerateKeyPair()
	require.NoError(t, err)

	message := []byte("I will attack at dawn if you agree")
	sig := kp.Sign(message)

	assert.NoError(t, kp.PublicKey().Verify(message, sig))
}

func TestVerifyWrongMessageFails(t *testing.T) {
	kp, err := GenerateKeyPair()
	require.NoError(t, err)

	sig := kp.Sign([]byte("message one"))
	err = kp.PublicKey().Verify([]byte("message two"), sig)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifyWrongKeyFails(t *testing.T) {
	kp1, err := GenerateKeyPair()
	require.NoError(t, err)
	kp2, err := GenerateKeyPair()
	require.NoError(t, err)

	message := []byte("shared message")
	sig := kp1.Sign(message)

	assert.ErrorIs(t, kp2.PublicKey().Verify(message, sig), ErrInvalidSignature)
}

func TestNewPublicKeyRejectsWrongLength(t *testing.T) {
	_, err := NewPublicKey([]byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrInvalidPublicKey)
}

func TestNewPublicKeyRejectsInvalidCurvePoint(t *testing.T) {
	notAPoint := bytes.Repeat([]byte{0xFF}, PublicKeySize)
	_, err := NewPublicKey(notAPoint)
	assert.ErrorIs(t, err, ErrInvalidPublicKey)
}

func TestNewSignatureRejectsWrongLength(t *testing.T) {
	_, err := NewSignature([]byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestHashDeterministic(t *testing.T) {
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	assert.Equal(t, h1, h2)
}

func TestHashMultiMatchesConcatenation(t *testing.T) {
	a := []byte("foo")
	b := []byte("bar")

	got := HashMulti(a, b)
	want := Hash(append(append([]byte{}, a...), b...))
	assert.Equal(t, want, got)
}
