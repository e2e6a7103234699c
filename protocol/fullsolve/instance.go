package fullsolve

import (
	"go.uber.org/zap"

	"github.com/luxfi/twogenerals/artifact"
	"github.com/luxfi/twogenerals/primitives"
	"github.com/luxfi/twogenerals/protocol"
	"github.com/luxfi/twogenerals/wire"
)

// DefaultCommitmentMessage is the intent string signed when no caller
// override is supplied to New.
var DefaultCommitmentMessage = artifact.DefaultCommitmentMessage

// Instance is a single party's view of the Full Solve protocol. It embeds
// a *protocol.TwoGenerals to drive the Commitment/Double/Triple/Quad
// cascade unchanged, and layers the QuadConf/QuadConfFinal rounds on top
// once both parties' QuadProofs exist.
type Instance struct {
	base *protocol.TwoGenerals

	party                 artifact.Party
	keyPair               *primitives.KeyPair
	counterpartyPublicKey primitives.PublicKey
	phase                 Phase
	sequence              uint64
	log                   *zap.Logger

	ownConf        *artifact.QuadConfirmation
	otherConf      *artifact.QuadConfirmation
	ownConfFinal   *artifact.QuadConfirmationFinal
	otherConfFinal *artifact.QuadConfirmationFinal
}

// Option configures an Instance at construction time.
type Option func(*settings)

type settings struct {
	commitmentMessage []byte
	logger            *zap.Logger
}

// WithCommitmentMessage overrides the default commitment intent string.
func WithCommitmentMessage(message []byte) Option {
	return func(s *settings) {
		s.commitmentMessage = append([]byte(nil), message...)
	}
}

// WithLogger injects a structured logger. A nil logger (the default) is
// equivalent to zap.NewNop: the core never requires logging to function.
func WithLogger(logger *zap.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a Full Solve Instance, synchronously signing and storing
// the own commitment (via the embedded protocol.TwoGenerals) before
// returning.
func New(party artifact.Party, keyPair *primitives.KeyPair, counterpartyPublicKey primitives.PublicKey, opts ...Option) *Instance {
	s := &settings{
		commitmentMessage: append([]byte(nil), DefaultCommitmentMessage...),
		logger:            zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	in := &Instance{
		party:                 party,
		keyPair:               keyPair,
		counterpartyPublicKey: counterpartyPublicKey,
		phase:                 Commitment,
		log:                   s.logger,
	}
	in.base = protocol.New(party, keyPair, counterpartyPublicKey,
		protocol.WithCommitmentMessage(s.commitmentMessage),
		protocol.WithLogger(s.logger),
	)
	return in
}

// Party returns this instance's own identity.
func (in *Instance) Party() artifact.Party { return in.party }

// Phase returns the current Full Solve protocol phase.
func (in *Instance) Phase() Phase { return in.phase }

// IsComplete reports whether both QuadConfirmationFinal artifacts exist.
func (in *Instance) IsComplete() bool { return in.phase == Complete }

// CanAttack reports whether this party may safely act on Decision Attack.
func (in *Instance) CanAttack() bool {
	_, ok := in.base.OwnQuad()
	return in.IsComplete() && ok
}

// GetDecision returns the final decision under the Full Solve rule: Attack
// iff the bilateral receipt was constructed (both QuadProofs exist) and
// the counterparty's QuadConfirmationFinal was actually received.
func (in *Instance) GetDecision() Decision {
	if in.IsComplete() && in.otherConfFinal != nil {
		return DecisionAttack
	}
	return DecisionAbort
}

// Abort transitions to the terminal Aborted phase if not already Complete.
func (in *Instance) Abort() {
	if in.phase != Complete {
		in.log.Info("fullsolve: aborting", zap.String("party", in.party.String()), zap.String("prior_phase", in.phase.String()))
		in.phase = Aborted
		in.base.Abort()
	}
}

// GetBilateralReceipt returns the strengthened bilateral receipt hash once
// Complete, or the zero hash and false otherwise.
func (in *Instance) GetBilateralReceipt() (receipt [primitives.HashSize]byte, ok bool) {
	if !in.IsComplete() || in.ownConfFinal == nil || in.otherConfFinal == nil {
		return [primitives.HashSize]byte{}, false
	}
	return in.ownConfFinal.ComputeReceipt(*in.otherConfFinal), true
}

// Receive processes an inbound Message, whether it belongs to the
// Commitment/Double/Triple/Quad cascade (delegated verbatim to the
// embedded protocol.TwoGenerals) or to the QuadConf/QuadConfFinal rounds
// this package adds. It returns whether phase changed, or an error if the
// payload failed verification.
func (in *Instance) Receive(msg wire.Message) (bool, error) {
	if in.phase == Aborted {
		return false, nil
	}

	switch msg.Kind {
	case wire.PayloadCommitment, wire.PayloadDouble, wire.PayloadTriple, wire.PayloadQuad:
		changed, err := in.base.Receive(msg)
		if err != nil {
			return false, translateBaseErr(err)
		}
		advanced := in.syncPhaseFromBase()
		if err := in.maybeConstructOwnConfirmation(); err != nil {
			return false, err
		}
		return changed || advanced, nil
	case wire.PayloadQuadConfirmation:
		c, err := wire.DecodeQuadConfirmation(msg)
		if err != nil {
			return false, ErrInvalidProofChain
		}
		return in.receiveQuadConfirmation(c)
	case wire.PayloadQuadConfirmationFinal:
		f, err := wire.DecodeQuadConfirmationFinal(msg)
		if err != nil {
			return false, ErrInvalidProofChain
		}
		return in.receiveQuadConfirmationFinal(f)
	default:
		return false, ErrInvalidProofChain
	}
}

func translateBaseErr(err error) error {
	switch err {
	case protocol.ErrInvalidSignature:
		return ErrInvalidSignature
	case protocol.ErrUnexpectedParty:
		return ErrUnexpectedParty
	case protocol.ErrInvalidProofChain:
		return ErrInvalidProofChain
	default:
		return err
	}
}

// syncPhaseFromBase mirrors the embedded instance's pre-Quad states onto
// our own phase enum. It never advances past Quad on its own: the
// transition into QuadConf is this package's responsibility, triggered by
// maybeConstructOwnConfirmation once both quads exist.
func (in *Instance) syncPhaseFromBase() bool {
	if in.phase >= QuadConf {
		return false
	}
	var next Phase
	switch in.base.State() {
	case protocol.Commitment:
		next = Commitment
	case protocol.Double:
		next = Double
	case protocol.Triple:
		next = Triple
	case protocol.Quad, protocol.Complete:
		next = Quad
	default:
		next = in.phase
	}
	if next == in.phase {
		return false
	}
	in.phase = next
	return true
}

// maybeConstructOwnConfirmation constructs and floods QCONF_own the moment
// both Q_own and Q_other exist, per the Full Solve phase-5 entry rule.
func (in *Instance) maybeConstructOwnConfirmation() error {
	if in.ownConf != nil {
		return nil
	}
	ownQuad, ok := in.base.OwnQuad()
	if !ok {
		return nil
	}
	if _, ok := in.base.OtherQuad(); !ok {
		return nil
	}
	conf, err := artifact.NewQuadConfirmation(in.party, ownQuad, in.keyPair)
	if err != nil {
		return err
	}
	in.ownConf = &conf
	in.phase = QuadConf
	in.log.Info("fullsolve: own quad confirmation constructed", zap.String("party", in.party.String()))
	return in.maybeConstructOwnConfirmationFinal()
}

func (in *Instance) receiveQuadConfirmation(c artifact.QuadConfirmation) (bool, error) {
	if c.Party == in.party {
		return false, nil
	}
	if in.otherConf != nil {
		return false, nil
	}
	if !c.PublicKey().Equal(in.counterpartyPublicKey) {
		return false, ErrUnexpectedParty
	}
	if err := c.Verify(); err != nil {
		return false, ErrInvalidSignature
	}
	otherQuad, ok := in.base.OtherQuad()
	if !ok {
		// The confirmation outran the quad proof it attests to. It staples
		// that quad verbatim, so cascade the quad first exactly as if it had
		// arrived on its own.
		quadMsg, err := wire.NewQuadMessage(c.Party, 0, c.QuadProof)
		if err != nil {
			return false, err
		}
		if _, err := in.Receive(quadMsg); err != nil {
			return false, err
		}
		if otherQuad, ok = in.base.OtherQuad(); !ok {
			return false, nil
		}
	}
	if !bytesEqualHash(c.QuadHash, otherQuad.Hash()) {
		return false, ErrInvalidProofChain
	}

	in.otherConf = &c

	if err := in.maybeConstructOwnConfirmationFinal(); err != nil {
		return false, err
	}
	return true, nil
}

// maybeConstructOwnConfirmationFinal constructs and floods QCONF_FINAL_own
// once both QCONF_own and QCONF_other exist.
func (in *Instance) maybeConstructOwnConfirmationFinal() error {
	if in.ownConfFinal != nil || in.ownConf == nil || in.otherConf == nil {
		return nil
	}
	final, err := artifact.NewQuadConfirmationFinal(in.party, *in.ownConf, *in.otherConf, in.keyPair)
	if err != nil {
		return err
	}
	in.ownConfFinal = &final
	in.phase = QuadConfFinal
	in.log.Info("fullsolve: own quad confirmation final constructed", zap.String("party", in.party.String()))
	return in.maybeComplete()
}

func (in *Instance) receiveQuadConfirmationFinal(f artifact.QuadConfirmationFinal) (bool, error) {
	if f.Party == in.party {
		return false, nil
	}
	if in.otherConfFinal != nil {
		return false, nil
	}
	if !f.PublicKey().Equal(in.counterpartyPublicKey) {
		return false, ErrUnexpectedParty
	}
	if err := f.Verify(); err != nil {
		return false, ErrInvalidSignature
	}
	if in.otherConf == nil {
		in.otherConf = &f.OwnConf
		if err := in.maybeConstructOwnConfirmationFinal(); err != nil {
			return false, err
		}
	}

	in.otherConfFinal = &f

	if err := in.maybeComplete(); err != nil {
		return false, err
	}
	return true, nil
}

// maybeComplete transitions to Complete once both QCONF_FINAL artifacts
// exist locally, per the phase-7 entry rule.
func (in *Instance) maybeComplete() error {
	if in.phase == Complete || in.ownConfFinal == nil || in.otherConfFinal == nil {
		return nil
	}
	in.phase = Complete
	in.log.Info("fullsolve: complete", zap.String("party", in.party.String()))
	return nil
}

func bytesEqualHash(a, b [primitives.HashSize]byte) bool {
	return a == b
}

// GetMessagesToSend returns the single highest-level own artifact this
// instance has constructed, wrapped as a wire.Message, or nil if no
// artifact exists yet. After Abort an own confirmation is still returned if
// one exists; otherwise the result is nil. Re-emission cadence is the
// caller's responsibility.
func (in *Instance) GetMessagesToSend() ([]wire.Message, error) {
	in.sequence++

	if in.ownConfFinal != nil {
		msg, err := wire.NewQuadConfirmationFinalMessage(in.party, in.sequence, *in.ownConfFinal)
		if err != nil {
			return nil, err
		}
		return []wire.Message{msg}, nil
	}
	if in.ownConf != nil {
		msg, err := wire.NewQuadConfirmationMessage(in.party, in.sequence, *in.ownConf)
		if err != nil {
			return nil, err
		}
		return []wire.Message{msg}, nil
	}
	return in.base.GetMessagesToSend()
}
