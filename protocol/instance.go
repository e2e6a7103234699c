// Package protocol implements the two-party Two Generals Protocol state
// machine: per-party instances that drive the Commitment -> Double ->
// Triple -> Quad escalation to a Complete fixpoint under continuous
// flooding, with no internal retries and no internal logging beyond an
// optional injected logger.
package protocol

import (
	"go.uber.org/zap"

	"github.com/luxfi/twogenerals/artifact"
	"github.com/luxfi/twogenerals/primitives"
	"github.com/luxfi/twogenerals/wire"
)

// DefaultCommitmentMessage is the intent string signed when no caller
// override is supplied to New.
var DefaultCommitmentMessage = artifact.DefaultCommitmentMessage

// TwoGenerals is a single party's view of the protocol. Each party runs
// its own instance and exchanges Message values with the counterparty's
// instance through whatever transport the caller provides; the instance
// itself does not touch the network.
type TwoGenerals struct {
	party                 artifact.Party
	keyPair               *primitives.KeyPair
	counterpartyPublicKey primitives.PublicKey
	state                 State
	sequence              uint64
	commitmentMessage     []byte
	log                   *zap.Logger

	ownCommitment   *artifact.Commitment
	ownDouble       *artifact.DoubleProof
	ownTriple       *artifact.TripleProof
	ownQuad         *artifact.QuadProof
	otherCommitment *artifact.Commitment
	otherDouble     *artifact.DoubleProof
	otherTriple     *artifact.TripleProof
	otherQuad       *artifact.QuadProof
}

// Option configures a TwoGenerals instance at construction time.
type Option func(*TwoGenerals)

// WithCommitmentMessage overrides the default commitment intent string.
func WithCommitmentMessage(message []byte) Option {
	return func(tg *TwoGenerals) {
		tg.commitmentMessage = append([]byte(nil), message...)
	}
}

// WithLogger injects a structured logger. A nil logger (the default) is
// equivalent to zap.NewNop: the core never requires logging to function.
func WithLogger(logger *zap.Logger) Option {
	return func(tg *TwoGenerals) {
		if logger != nil {
			tg.log = logger
		}
	}
}

// New constructs a TwoGenerals instance, synchronously signing and storing
// the own commitment before returning.
func New(party artifact.Party, keyPair *primitives.KeyPair, counterpartyPublicKey primitives.PublicKey, opts ...Option) *TwoGenerals {
	tg := &TwoGenerals{
		party:                 party,
		keyPair:               keyPair,
		counterpartyPublicKey: counterpartyPublicKey,
		state:                 Init,
		commitmentMessage:     append([]byte(nil), DefaultCommitmentMessage...),
		log:                   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(tg)
	}
	tg.createCommitment()
	return tg
}

// Party returns this instance's own identity.
func (tg *TwoGenerals) Party() artifact.Party { return tg.party }

// State returns the current protocol state.
func (tg *TwoGenerals) State() State { return tg.state }

// IsComplete reports whether the bilateral receipt pair has been achieved.
func (tg *TwoGenerals) IsComplete() bool { return tg.state == Complete }

// CanAttack reports whether this party may safely act on Decision Attack.
func (tg *TwoGenerals) CanAttack() bool {
	return tg.IsComplete() && tg.ownQuad != nil
}

// GetDecision returns the final decision: Attack only once Complete, Abort
// otherwise (including once Aborted).
func (tg *TwoGenerals) GetDecision() Decision {
	if tg.IsComplete() {
		return DecisionAttack
	}
	return DecisionAbort
}

// Abort transitions to the terminal Aborted state if not already Complete.
// A no-op once Complete: a fixpoint already reached cannot be retracted.
func (tg *TwoGenerals) Abort() {
	if tg.state != Complete {
		tg.log.Info("protocol: aborting", zap.String("party", tg.party.String()), zap.String("prior_state", tg.state.String()))
		tg.state = Aborted
	}
}

// GetBilateralReceipt returns the (own, other) QuadProof pair once
// Complete, or (nil, nil, false) otherwise.
func (tg *TwoGenerals) GetBilateralReceipt() (own, other artifact.QuadProof, ok bool) {
	if !tg.IsComplete() || tg.ownQuad == nil || tg.otherQuad == nil {
		return artifact.QuadProof{}, artifact.QuadProof{}, false
	}
	return *tg.ownQuad, *tg.otherQuad, true
}

// OwnQuad returns this instance's own constructed QuadProof, if any. Unlike
// GetBilateralReceipt it does not require the instance to be Complete,
// letting an embedding caller (e.g. the Full Solve extension) observe
// bilateral quad construction before this instance's own state machine
// would call itself Complete.
func (tg *TwoGenerals) OwnQuad() (artifact.QuadProof, bool) {
	if tg.ownQuad == nil {
		return artifact.QuadProof{}, false
	}
	return *tg.ownQuad, true
}

// OtherQuad returns the counterparty's received QuadProof, if any.
func (tg *TwoGenerals) OtherQuad() (artifact.QuadProof, bool) {
	if tg.otherQuad == nil {
		return artifact.QuadProof{}, false
	}
	return *tg.otherQuad, true
}

func (tg *TwoGenerals) createCommitment() {
	c := artifact.NewCommitment(tg.party, tg.keyPair, tg.commitmentMessage)
	tg.ownCommitment = &c
	tg.state = Commitment
}

func (tg *TwoGenerals) createDoubleProof() error {
	d, err := artifact.NewDoubleProof(tg.party, *tg.ownCommitment, *tg.otherCommitment, tg.keyPair)
	if err != nil {
		return err
	}
	tg.ownDouble = &d
	tg.state = Double
	return nil
}

func (tg *TwoGenerals) createTripleProof() error {
	tProof, err := artifact.NewTripleProof(tg.party, *tg.ownDouble, *tg.otherDouble, tg.keyPair)
	if err != nil {
		return err
	}
	tg.ownTriple = &tProof
	tg.state = Triple
	return nil
}

func (tg *TwoGenerals) createQuadProof() error {
	q, err := artifact.NewQuadProof(tg.party, *tg.ownTriple, *tg.otherTriple, tg.keyPair)
	if err != nil {
		return err
	}
	tg.ownQuad = &q
	tg.state = Quad
	return nil
}

// Receive processes an inbound Message. It returns whether state changed,
// or an error if the payload failed verification or carried a malformed
// proof chain. Reception is pure on the input: only the receiver mutates.
// Receiving a duplicate at or below the current slot, or a message
// authored by this instance's own party, is a no-op returning (false, nil).
// Receive after Abort still accepts the call but writes no state: an
// aborted party's decision is frozen and cannot be pulled back to Attack
// by a message that arrives after the fact.
func (tg *TwoGenerals) Receive(msg wire.Message) (bool, error) {
	if tg.state == Aborted {
		return false, nil
	}
	switch msg.Kind {
	case wire.PayloadCommitment:
		c, err := wire.DecodeCommitment(msg)
		if err != nil {
			return false, ErrInvalidProofChain
		}
		return tg.receiveCommitment(c)
	case wire.PayloadDouble:
		d, err := wire.DecodeDouble(msg)
		if err != nil {
			return false, ErrInvalidProofChain
		}
		return tg.receiveDouble(d)
	case wire.PayloadTriple:
		tProof, err := wire.DecodeTriple(msg)
		if err != nil {
			return false, ErrInvalidProofChain
		}
		return tg.receiveTriple(tProof)
	case wire.PayloadQuad:
		q, err := wire.DecodeQuad(msg)
		if err != nil {
			return false, ErrInvalidProofChain
		}
		return tg.receiveQuad(q)
	default:
		return false, ErrInvalidProofChain
	}
}

func (tg *TwoGenerals) receiveCommitment(c artifact.Commitment) (bool, error) {
	if c.Party == tg.party {
		return false, nil
	}
	if tg.otherCommitment != nil {
		return false, nil
	}
	if !c.PublicKey.Equal(tg.counterpartyPublicKey) {
		return false, ErrUnexpectedParty
	}
	if err := c.Verify(); err != nil {
		return false, ErrInvalidSignature
	}

	tg.otherCommitment = &c

	if tg.state == Commitment && tg.ownCommitment != nil {
		if err := tg.createDoubleProof(); err != nil {
			return false, err
		}
		return true, nil
	}
	return true, nil
}

func (tg *TwoGenerals) receiveDouble(d artifact.DoubleProof) (bool, error) {
	if d.Party == tg.party {
		return false, nil
	}
	if tg.otherDouble != nil {
		return false, nil
	}
	if d.OwnCommitment.Party != d.Party || d.OtherCommitment.Party != tg.party {
		return false, ErrInvalidProofChain
	}
	if !d.PublicKey().Equal(tg.counterpartyPublicKey) {
		return false, ErrUnexpectedParty
	}
	if err := d.Verify(); err != nil {
		return false, ErrInvalidSignature
	}

	if tg.otherCommitment == nil {
		tg.otherCommitment = &d.OwnCommitment
		if tg.state == Commitment && tg.ownCommitment != nil {
			if err := tg.createDoubleProof(); err != nil {
				return false, err
			}
		}
	}

	tg.otherDouble = &d

	if tg.state == Double && tg.ownDouble != nil {
		if err := tg.createTripleProof(); err != nil {
			return false, err
		}
		return true, nil
	}
	return true, nil
}

func (tg *TwoGenerals) receiveTriple(tProof artifact.TripleProof) (bool, error) {
	if tProof.Party == tg.party {
		return false, nil
	}
	if tg.otherTriple != nil {
		return false, nil
	}
	if tProof.OwnDouble.Party != tProof.Party || tProof.OtherDouble.Party != tg.party {
		return false, ErrInvalidProofChain
	}
	if !tProof.PublicKey().Equal(tg.counterpartyPublicKey) {
		return false, ErrUnexpectedParty
	}
	if err := tProof.Verify(); err != nil {
		return false, ErrInvalidSignature
	}

	if tg.otherDouble == nil {
		tg.otherDouble = &tProof.OwnDouble
		if tg.otherCommitment == nil {
			tg.otherCommitment = &tProof.OwnDouble.OwnCommitment
		}
		if tg.state == Commitment && tg.ownCommitment != nil {
			if err := tg.createDoubleProof(); err != nil {
				return false, err
			}
		}
		if tg.state == Double && tg.ownDouble != nil {
			if err := tg.createTripleProof(); err != nil {
				return false, err
			}
		}
	}

	tg.otherTriple = &tProof

	if tg.state == Triple && tg.ownTriple != nil {
		if err := tg.createQuadProof(); err != nil {
			return false, err
		}
		return true, nil
	}
	return true, nil
}

func (tg *TwoGenerals) receiveQuad(q artifact.QuadProof) (bool, error) {
	if q.Party == tg.party {
		return false, nil
	}
	if tg.otherQuad != nil {
		return false, nil
	}
	if q.OwnTriple.Party != q.Party || q.OtherTriple.Party != tg.party {
		return false, ErrInvalidProofChain
	}
	if !q.PublicKey().Equal(tg.counterpartyPublicKey) {
		return false, ErrUnexpectedParty
	}
	if err := q.Verify(); err != nil {
		return false, ErrInvalidSignature
	}
	if !q.ProvesMutualConstructibility() {
		return false, ErrInvalidProofChain
	}

	if tg.otherTriple == nil {
		tg.otherTriple = &q.OwnTriple
		if tg.otherDouble == nil {
			tg.otherDouble = &q.OwnTriple.OwnDouble
		}
		if tg.otherCommitment == nil {
			tg.otherCommitment = &q.OwnTriple.OwnDouble.OwnCommitment
		}
		if tg.state == Commitment && tg.ownCommitment != nil {
			if err := tg.createDoubleProof(); err != nil {
				return false, err
			}
		}
		if tg.state == Double && tg.ownDouble != nil {
			if err := tg.createTripleProof(); err != nil {
				return false, err
			}
		}
		if tg.state == Triple && tg.ownTriple != nil {
			if err := tg.createQuadProof(); err != nil {
				return false, err
			}
		}
	}

	tg.otherQuad = &q

	if tg.ownQuad != nil {
		tg.state = Complete
		tg.log.Info("protocol: complete", zap.String("party", tg.party.String()))
		return true, nil
	}
	return true, nil
}

// GetMessagesToSend returns the single highest-level own artifact this
// instance has constructed, wrapped as a wire.Message, or nil if no
// artifact exists yet. After Abort it returns nil whatever artifacts exist.
// Re-emission cadence is the caller's responsibility;
// this call increments the sequence counter on every invocation.
func (tg *TwoGenerals) GetMessagesToSend() ([]wire.Message, error) {
	tg.sequence++

	var (
		msg wire.Message
		err error
		has bool
	)

	switch {
	case (tg.state == Complete || tg.state == Quad) && tg.ownQuad != nil:
		msg, err = wire.NewQuadMessage(tg.party, tg.sequence, *tg.ownQuad)
		has = true
	case tg.state == Triple && tg.ownTriple != nil:
		msg, err = wire.NewTripleMessage(tg.party, tg.sequence, *tg.ownTriple)
		has = true
	case tg.state == Double && tg.ownDouble != nil:
		msg, err = wire.NewDoubleMessage(tg.party, tg.sequence, *tg.ownDouble)
		has = true
	case tg.state == Commitment && tg.ownCommitment != nil:
		msg, err = wire.NewCommitmentMessage(tg.party, tg.sequence, *tg.ownCommitment)
		has = true
	}

	if !has {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []wire.Message{msg}, nil
}
