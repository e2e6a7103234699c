// Package wire provides the self-describing binary encoding used to move
// Message and BFT message values between parties. It is deliberately
// separate from the artifact package's canonical, write-only signing bytes:
// this codec round-trips, that one never does.
package wire

import (
	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"

	"github.com/luxfi/twogenerals/artifact"
	"github.com/luxfi/twogenerals/primitives"
)

// PayloadKind discriminates the union carried by a Message.
type PayloadKind uint8

const (
	// PayloadCommitment carries an artifact.Commitment.
	PayloadCommitment PayloadKind = iota
	// PayloadDouble carries an artifact.DoubleProof.
	PayloadDouble
	// PayloadTriple carries an artifact.TripleProof.
	PayloadTriple
	// PayloadQuad carries an artifact.QuadProof.
	PayloadQuad
	// PayloadQuadConfirmation carries an artifact.QuadConfirmation (Full Solve phase 5).
	PayloadQuadConfirmation
	// PayloadQuadConfirmationFinal carries an artifact.QuadConfirmationFinal (Full Solve phase 6).
	PayloadQuadConfirmationFinal
)

// ErrUnknownPayloadKind indicates a decoded Message carried a PayloadKind
// this build does not recognize.
var ErrUnknownPayloadKind = errors.New("wire: unknown payload kind")

// commitmentDTO, doubleDTO, tripleDTO, and quadDTO mirror the artifact
// package's types field-for-field using plain byte slices, since CBOR has
// no native notion of the artifact package's fixed-size wrapper types.
type commitmentDTO struct {
	Party     artifact.Party
	PublicKey []byte
	Message   []byte
	Signature []byte
}

type doubleDTO struct {
	Party           artifact.Party
	OwnCommitment   commitmentDTO
	OtherCommitment commitmentDTO
	Signature       []byte
}

type tripleDTO struct {
	Party       artifact.Party
	OwnDouble   doubleDTO
	OtherDouble doubleDTO
	Signature   []byte
}

type quadDTO struct {
	Party       artifact.Party
	OwnTriple   tripleDTO
	OtherTriple tripleDTO
	Signature   []byte
}

type quadConfirmationDTO struct {
	Party     artifact.Party
	QuadProof quadDTO
	QuadHash  []byte
	Signature []byte
}

type quadConfirmationFinalDTO struct {
	Party     artifact.Party
	OwnConf   quadConfirmationDTO
	OtherConf quadConfirmationDTO
	Signature []byte
}

// Message is the wire envelope exchanged between TwoGenerals instances.
// Sequence is a per-sender monotonic counter used only for deduplication
// and observability; it never participates in any signed payload.
type Message struct {
	Sender   artifact.Party
	Sequence uint64
	Kind     PayloadKind
	Payload  []byte
}

// EncodeMessage serializes a Message to CBOR.
func EncodeMessage(msg Message) ([]byte, error) {
	out, err := cbor.Marshal(msg)
	if err != nil {
		return nil, errors.Wrap(err, "wire: encode message")
	}
	return out, nil
}

// DecodeMessage deserializes a Message from CBOR.
func DecodeMessage(data []byte) (Message, error) {
	var msg Message
	if err := cbor.Unmarshal(data, &msg); err != nil {
		return Message{}, errors.Wrap(err, "wire: decode message")
	}
	return msg, nil
}

// NewCommitmentMessage wraps a Commitment into a Message envelope.
func NewCommitmentMessage(sender artifact.Party, seq uint64, c artifact.Commitment) (Message, error) {
	payload, err := cbor.Marshal(commitmentToDTO(c))
	if err != nil {
		return Message{}, errors.Wrap(err, "wire: encode commitment payload")
	}
	return Message{Sender: sender, Sequence: seq, Kind: PayloadCommitment, Payload: payload}, nil
}

// NewDoubleMessage wraps a DoubleProof into a Message envelope.
func NewDoubleMessage(sender artifact.Party, seq uint64, d artifact.DoubleProof) (Message, error) {
	payload, err := cbor.Marshal(doubleToDTO(d))
	if err != nil {
		return Message{}, errors.Wrap(err, "wire: encode double payload")
	}
	return Message{Sender: sender, Sequence: seq, Kind: PayloadDouble, Payload: payload}, nil
}

// NewTripleMessage wraps a TripleProof into a Message envelope.
func NewTripleMessage(sender artifact.Party, seq uint64, t artifact.TripleProof) (Message, error) {
	payload, err := cbor.Marshal(tripleToDTO(t))
	if err != nil {
		return Message{}, errors.Wrap(err, "wire: encode triple payload")
	}
	return Message{Sender: sender, Sequence: seq, Kind: PayloadTriple, Payload: payload}, nil
}

// NewQuadMessage wraps a QuadProof into a Message envelope.
func NewQuadMessage(sender artifact.Party, seq uint64, q artifact.QuadProof) (Message, error) {
	payload, err := cbor.Marshal(quadToDTO(q))
	if err != nil {
		return Message{}, errors.Wrap(err, "wire: encode quad payload")
	}
	return Message{Sender: sender, Sequence: seq, Kind: PayloadQuad, Payload: payload}, nil
}

// NewQuadConfirmationMessage wraps a QuadConfirmation into a Message envelope.
func NewQuadConfirmationMessage(sender artifact.Party, seq uint64, c artifact.QuadConfirmation) (Message, error) {
	payload, err := cbor.Marshal(quadConfirmationToDTO(c))
	if err != nil {
		return Message{}, errors.Wrap(err, "wire: encode quad confirmation payload")
	}
	return Message{Sender: sender, Sequence: seq, Kind: PayloadQuadConfirmation, Payload: payload}, nil
}

// NewQuadConfirmationFinalMessage wraps a QuadConfirmationFinal into a Message envelope.
func NewQuadConfirmationFinalMessage(sender artifact.Party, seq uint64, f artifact.QuadConfirmationFinal) (Message, error) {
	payload, err := cbor.Marshal(quadConfirmationFinalToDTO(f))
	if err != nil {
		return Message{}, errors.Wrap(err, "wire: encode quad confirmation final payload")
	}
	return Message{Sender: sender, Sequence: seq, Kind: PayloadQuadConfirmationFinal, Payload: payload}, nil
}

// DecodeQuadConfirmation extracts a QuadConfirmation from a Message. The
// caller must check msg.Kind == PayloadQuadConfirmation first.
func DecodeQuadConfirmation(msg Message) (artifact.QuadConfirmation, error) {
	var dto quadConfirmationDTO
	if err := cbor.Unmarshal(msg.Payload, &dto); err != nil {
		return artifact.QuadConfirmation{}, errors.Wrap(err, "wire: decode quad confirmation payload")
	}
	return dto.toQuadConfirmation()
}

// DecodeQuadConfirmationFinal extracts a QuadConfirmationFinal from a
// Message. The caller must check msg.Kind == PayloadQuadConfirmationFinal first.
func DecodeQuadConfirmationFinal(msg Message) (artifact.QuadConfirmationFinal, error) {
	var dto quadConfirmationFinalDTO
	if err := cbor.Unmarshal(msg.Payload, &dto); err != nil {
		return artifact.QuadConfirmationFinal{}, errors.Wrap(err, "wire: decode quad confirmation final payload")
	}
	return dto.toQuadConfirmationFinal()
}

// DecodeCommitment extracts a Commitment from a Message. The caller must
// check msg.Kind == PayloadCommitment first.
func DecodeCommitment(msg Message) (artifact.Commitment, error) {
	var dto commitmentDTO
	if err := cbor.Unmarshal(msg.Payload, &dto); err != nil {
		return artifact.Commitment{}, errors.Wrap(err, "wire: decode commitment payload")
	}
	return dto.toCommitment()
}

// DecodeDouble extracts a DoubleProof from a Message. The caller must check
// msg.Kind == PayloadDouble first.
func DecodeDouble(msg Message) (artifact.DoubleProof, error) {
	var dto doubleDTO
	if err := cbor.Unmarshal(msg.Payload, &dto); err != nil {
		return artifact.DoubleProof{}, errors.Wrap(err, "wire: decode double payload")
	}
	return dto.toDouble()
}

// DecodeTriple extracts a TripleProof from a Message. The caller must check
// msg.Kind == PayloadTriple first.
func DecodeTriple(msg Message) (artifact.TripleProof, error) {
	var dto tripleDTO
	if err := cbor.Unmarshal(msg.Payload, &dto); err != nil {
		return artifact.TripleProof{}, errors.Wrap(err, "wire: decode triple payload")
	}
	return dto.toTriple()
}

// DecodeQuad extracts a QuadProof from a Message. The caller must check
// msg.Kind == PayloadQuad first.
func DecodeQuad(msg Message) (artifact.QuadProof, error) {
	var dto quadDTO
	if err := cbor.Unmarshal(msg.Payload, &dto); err != nil {
		return artifact.QuadProof{}, errors.Wrap(err, "wire: decode quad payload")
	}
	return dto.toQuad()
}

// DecodeAny decodes msg's payload into whichever artifact type msg.Kind
// names, returning the value as interface{} for callers that type-switch
// on the result.
func DecodeAny(msg Message) (interface{}, error) {
	switch msg.Kind {
	case PayloadCommitment:
		return DecodeCommitment(msg)
	case PayloadDouble:
		return DecodeDouble(msg)
	case PayloadTriple:
		return DecodeTriple(msg)
	case PayloadQuad:
		return DecodeQuad(msg)
	case PayloadQuadConfirmation:
		return DecodeQuadConfirmation(msg)
	case PayloadQuadConfirmationFinal:
		return DecodeQuadConfirmationFinal(msg)
	default:
		return nil, ErrUnknownPayloadKind
	}
}

func commitmentToDTO(c artifact.Commitment) commitmentDTO {
	return commitmentDTO{
		Party:     c.Party,
		PublicKey: c.PublicKey.Bytes(),
		Message:   append([]byte(nil), c.Message...),
		Signature: c.Signature.Bytes(),
	}
}

func (dto commitmentDTO) toCommitment() (artifact.Commitment, error) {
	pub, err := primitivesPublicKey(dto.PublicKey)
	if err != nil {
		return artifact.Commitment{}, err
	}
	sig, err := primitivesSignature(dto.Signature)
	if err != nil {
		return artifact.Commitment{}, err
	}
	return artifact.Commitment{
		Party:     dto.Party,
		PublicKey: pub,
		Message:   append([]byte(nil), dto.Message...),
		Signature: sig,
	}, nil
}

func doubleToDTO(d artifact.DoubleProof) doubleDTO {
	return doubleDTO{
		Party:           d.Party,
		OwnCommitment:   commitmentToDTO(d.OwnCommitment),
		OtherCommitment: commitmentToDTO(d.OtherCommitment),
		Signature:       d.Signature.Bytes(),
	}
}

func (dto doubleDTO) toDouble() (artifact.DoubleProof, error) {
	own, err := dto.OwnCommitment.toCommitment()
	if err != nil {
		return artifact.DoubleProof{}, err
	}
	other, err := dto.OtherCommitment.toCommitment()
	if err != nil {
		return artifact.DoubleProof{}, err
	}
	sig, err := primitivesSignature(dto.Signature)
	if err != nil {
		return artifact.DoubleProof{}, err
	}
	return artifact.DoubleProof{
		Party:           dto.Party,
		OwnCommitment:   own,
		OtherCommitment: other,
		Signature:       sig,
	}, nil
}

func tripleToDTO(t artifact.TripleProof) tripleDTO {
	return tripleDTO{
		Party:       t.Party,
		OwnDouble:   doubleToDTO(t.OwnDouble),
		OtherDouble: doubleToDTO(t.OtherDouble),
		Signature:   t.Signature.Bytes(),
	}
}

func (dto tripleDTO) toTriple() (artifact.TripleProof, error) {
	own, err := dto.OwnDouble.toDouble()
	if err != nil {
		return artifact.TripleProof{}, err
	}
	other, err := dto.OtherDouble.toDouble()
	if err != nil {
		return artifact.TripleProof{}, err
	}
	sig, err := primitivesSignature(dto.Signature)
	if err != nil {
		return artifact.TripleProof{}, err
	}
	return artifact.TripleProof{
		Party:       dto.Party,
		OwnDouble:   own,
		OtherDouble: other,
		Signature:   sig,
	}, nil
}

func quadConfirmationToDTO(c artifact.QuadConfirmation) quadConfirmationDTO {
	return quadConfirmationDTO{
		Party:     c.Party,
		QuadProof: quadToDTO(c.QuadProof),
		QuadHash:  append([]byte(nil), c.QuadHash[:]...),
		Signature: c.Signature.Bytes(),
	}
}

func (dto quadConfirmationDTO) toQuadConfirmation() (artifact.QuadConfirmation, error) {
	quad, err := dto.QuadProof.toQuad()
	if err != nil {
		return artifact.QuadConfirmation{}, err
	}
	sig, err := primitivesSignature(dto.Signature)
	if err != nil {
		return artifact.QuadConfirmation{}, err
	}
	var hash [primitives.HashSize]byte
	copy(hash[:], dto.QuadHash)
	return artifact.QuadConfirmation{
		Party:     dto.Party,
		QuadProof: quad,
		QuadHash:  hash,
		Signature: sig,
	}, nil
}

func quadConfirmationFinalToDTO(f artifact.QuadConfirmationFinal) quadConfirmationFinalDTO {
	return quadConfirmationFinalDTO{
		Party:     f.Party,
		OwnConf:   quadConfirmationToDTO(f.OwnConf),
		OtherConf: quadConfirmationToDTO(f.OtherConf),
		Signature: f.Signature.Bytes(),
	}
}

func (dto quadConfirmationFinalDTO) toQuadConfirmationFinal() (artifact.QuadConfirmationFinal, error) {
	own, err := dto.OwnConf.toQuadConfirmation()
	if err != nil {
		return artifact.QuadConfirmationFinal{}, err
	}
	other, err := dto.OtherConf.toQuadConfirmation()
	if err != nil {
		return artifact.QuadConfirmationFinal{}, err
	}
	sig, err := primitivesSignature(dto.Signature)
	if err != nil {
		return artifact.QuadConfirmationFinal{}, err
	}
	return artifact.QuadConfirmationFinal{
		Party:     dto.Party,
		OwnConf:   own,
		OtherConf: other,
		Signature: sig,
	}, nil
}

func quadToDTO(q artifact.QuadProof) quadDTO {
	return quadDTO{
		Party:       q.Party,
		OwnTriple:   tripleToDTO(q.OwnTriple),
		OtherTriple: tripleToDTO(q.OtherTriple),
		Signature:   q.Signature.Bytes(),
	}
}

func (dto quadDTO) toQuad() (artifact.QuadProof, error) {
	own, err := dto.OwnTriple.toTriple()
	if err != nil {
		return artifact.QuadProof{}, err
	}
	other, err := dto.OtherTriple.toTriple()
	if err != nil {
		return artifact.QuadProof{}, err
	}
	sig, err := primitivesSignature(dto.Signature)
	if err != nil {
		return artifact.QuadProof{}, err
	}
	return artifact.QuadProof{
		Party:       dto.Party,
		OwnTriple:   own,
		OtherTriple: other,
		Signature:   sig,
	}, nil
}
