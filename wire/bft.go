package wire

import (
	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"

	"github.com/luxfi/twogenerals/bft"
)

// BftPayloadKind discriminates the BFT message union carried over the wire
// alongside the two-party Message envelope.
type BftPayloadKind uint8

const (
	// BftPayloadProposal carries a bft.Proposal.
	BftPayloadProposal BftPayloadKind = iota
	// BftPayloadShare carries a bft.ShareMessage.
	BftPayloadShare
	// BftPayloadCommit carries a bft.CommitMessage.
	BftPayloadCommit
)

// ErrUnknownBftPayloadKind indicates a decoded BftMessage carried a
// BftPayloadKind this build does not recognize.
var ErrUnknownBftPayloadKind = errors.New("wire: unknown bft payload kind")

// BftMessage is the wire envelope for BFT proposal/share/commit traffic.
type BftMessage struct {
	Sender uint64
	Kind   BftPayloadKind
	Payload []byte
}

type proposalDTO struct {
	Round          uint64
	Value          []byte
	ProposerPublic []byte
	Signature      []byte
}

type shareMessageDTO struct {
	Round  uint64
	NodeID uint64
	Share  shareDTO
}

type shareDTO struct {
	NodeID uint64
	Bytes  []byte
}

type commitMessageDTO struct {
	Round uint64
	Value []byte
	Proof thresholdSignatureDTO
}

type thresholdSignatureDTO struct {
	ContributingNodes []uint64
	Bytes             []byte
}

// EncodeBftMessage serializes a BftMessage to CBOR.
func EncodeBftMessage(msg BftMessage) ([]byte, error) {
	out, err := cbor.Marshal(msg)
	if err != nil {
		return nil, errors.Wrap(err, "wire: encode bft message")
	}
	return out, nil
}

// DecodeBftMessage deserializes a BftMessage from CBOR.
func DecodeBftMessage(data []byte) (BftMessage, error) {
	var msg BftMessage
	if err := cbor.Unmarshal(data, &msg); err != nil {
		return BftMessage{}, errors.Wrap(err, "wire: decode bft message")
	}
	return msg, nil
}

// NewProposalMessage wraps a bft.Proposal into a BftMessage envelope.
func NewProposalMessage(sender uint64, p bft.Proposal) (BftMessage, error) {
	payload, err := cbor.Marshal(proposalDTO{
		Round:          p.Round,
		Value:          append([]byte(nil), p.Value...),
		ProposerPublic: p.ProposerPublic.Bytes(),
		Signature:      p.Signature.Bytes(),
	})
	if err != nil {
		return BftMessage{}, errors.Wrap(err, "wire: encode proposal payload")
	}
	return BftMessage{Sender: sender, Kind: BftPayloadProposal, Payload: payload}, nil
}

// NewShareMessageEnvelope wraps a bft.ShareMessage into a BftMessage envelope.
func NewShareMessageEnvelope(sender uint64, s bft.ShareMessage) (BftMessage, error) {
	payload, err := cbor.Marshal(shareMessageDTO{
		Round:  s.Round,
		NodeID: s.NodeID,
		Share:  shareDTO{NodeID: s.Share.NodeID, Bytes: append([]byte(nil), s.Share.Bytes[:]...)},
	})
	if err != nil {
		return BftMessage{}, errors.Wrap(err, "wire: encode share payload")
	}
	return BftMessage{Sender: sender, Kind: BftPayloadShare, Payload: payload}, nil
}

// NewCommitMessageEnvelope wraps a bft.CommitMessage into a BftMessage envelope.
func NewCommitMessageEnvelope(sender uint64, c bft.CommitMessage) (BftMessage, error) {
	payload, err := cbor.Marshal(commitMessageDTO{
		Round: c.Round,
		Value: append([]byte(nil), c.Value...),
		Proof: thresholdSignatureDTO{
			ContributingNodes: append([]uint64(nil), c.Proof.ContributingNodes...),
			Bytes:             append([]byte(nil), c.Proof.Bytes[:]...),
		},
	})
	if err != nil {
		return BftMessage{}, errors.Wrap(err, "wire: encode commit payload")
	}
	return BftMessage{Sender: sender, Kind: BftPayloadCommit, Payload: payload}, nil
}

// DecodeProposal extracts a bft.Proposal from a BftMessage.
func DecodeProposal(msg BftMessage) (bft.Proposal, error) {
	var dto proposalDTO
	if err := cbor.Unmarshal(msg.Payload, &dto); err != nil {
		return bft.Proposal{}, errors.Wrap(err, "wire: decode proposal payload")
	}
	pub, err := primitivesPublicKey(dto.ProposerPublic)
	if err != nil {
		return bft.Proposal{}, err
	}
	sig, err := primitivesSignature(dto.Signature)
	if err != nil {
		return bft.Proposal{}, err
	}
	return bft.Proposal{Round: dto.Round, Value: dto.Value, ProposerPublic: pub, Signature: sig}, nil
}

// DecodeShareMessage extracts a bft.ShareMessage from a BftMessage.
func DecodeShareMessage(msg BftMessage) (bft.ShareMessage, error) {
	var dto shareMessageDTO
	if err := cbor.Unmarshal(msg.Payload, &dto); err != nil {
		return bft.ShareMessage{}, errors.Wrap(err, "wire: decode share payload")
	}
	var share bft.Share
	share.NodeID = dto.Share.NodeID
	copy(share.Bytes[:], dto.Share.Bytes)
	return bft.ShareMessage{Round: dto.Round, NodeID: dto.NodeID, Share: share}, nil
}

// DecodeCommitMessage extracts a bft.CommitMessage from a BftMessage.
func DecodeCommitMessage(msg BftMessage) (bft.CommitMessage, error) {
	var dto commitMessageDTO
	if err := cbor.Unmarshal(msg.Payload, &dto); err != nil {
		return bft.CommitMessage{}, errors.Wrap(err, "wire: decode commit payload")
	}
	var proof bft.ThresholdSignature
	proof.ContributingNodes = dto.Proof.ContributingNodes
	copy(proof.Bytes[:], dto.Proof.Bytes)
	return bft.CommitMessage{Round: dto.Round, Value: dto.Value, Proof: proof}, nil
}
