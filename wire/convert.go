package wire

import (
	"github.com/pkg/errors"

	"github.com/luxfi/twogenerals/primitives"
)

func primitivesPublicKey(raw []byte) (primitives.PublicKey, error) {
	pk, err := primitives.NewPublicKey(raw)
	if err != nil {
		return primitives.PublicKey{}, errors.Wrap(err, "wire: decode public key")
	}
	return pk, nil
}

func primitivesSignature(raw []byte) (primitives.Signature, error) {
	sig, err := primitives.NewSignature(raw)
	if err != nil {
		return primitives.Signature{}, errors.Wrap(err, "wire: decode signature")
	}
	return sig, nil
}
