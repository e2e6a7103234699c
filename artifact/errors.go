package artifact

import "errors"

var (
	// ErrOwnPartyMismatch indicates a nested artifact claimed to belong to
	// the wrong party when constructing a higher-level artifact.
	ErrOwnPartyMismatch = errors.New("artifact: own component party mismatch")

	// ErrOtherPartyMismatch indicates the counterparty component did not
	// carry the expected counterparty's party label.
	ErrOtherPartyMismatch = errors.New("artifact: other component must be from counterparty")
)
