package bft

import "go.uber.org/zap"

// Phase is an Arbitrator's position in the per-round BFT handshake.
type Phase uint8

const (
	// Idle awaits a proposal for the next round.
	Idle Phase = iota
	// Signing has accepted a proposal and produced its own share.
	Signing
	// Aggregating has collected at least one counterparty share but not yet T.
	Aggregating
	// Committed has locked in a threshold-verified value for the round.
	Committed
	// Aborted is a terminal sink.
	Aborted
)

// String implements fmt.Stringer.
func (p Phase) String() string {
	switch p {
	case Idle:
		return "Idle"
	case Signing:
		return "Signing"
	case Aggregating:
		return "Aggregating"
	case Committed:
		return "Committed"
	case Aborted:
		return "Aborted"
	default:
		return "Unknown"
	}
}

// Arbitrator is one node's per-round BFT state machine: it accepts a
// proposal, signs a share, collects counterparty shares toward a quorum,
// and locks a threshold-verified commit.
type Arbitrator struct {
	NodeID uint64

	config Config
	scheme *ThresholdScheme
	log    *zap.Logger

	phase           Phase
	currentRound    uint64
	currentProposal *Proposal
	currentValue    []byte

	ownShare        *Share
	collectedShares map[uint64]Share
	shareOrder      []uint64

	finalCommit *CommitMessage
}

// NewArbitrator constructs an Arbitrator in the Idle phase at round 0.
func NewArbitrator(nodeID uint64, config Config, scheme *ThresholdScheme, logger *zap.Logger) *Arbitrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Arbitrator{
		NodeID:          nodeID,
		config:          config,
		scheme:          scheme,
		log:             logger,
		phase:           Idle,
		collectedShares: make(map[uint64]Share),
	}
}

// Phase returns the arbitrator's current phase.
func (a *Arbitrator) Phase() Phase { return a.phase }

// CurrentRound returns the round this arbitrator is tracking.
func (a *Arbitrator) CurrentRound() uint64 { return a.currentRound }

// FinalCommit returns the locked commit once Committed, or nil.
func (a *Arbitrator) FinalCommit() *CommitMessage { return a.finalCommit }

// ReceiveProposal accepts a new-round proposal. Valid only in Idle; the
// proposal's round must be current_round+1 and its signature must verify
// under its claimed proposer key. On success the arbitrator advances its
// round, signs its own share, and transitions to Signing.
func (a *Arbitrator) ReceiveProposal(p Proposal) (ShareMessage, error) {
	if a.phase != Idle {
		return ShareMessage{}, ErrNotIdle
	}
	if p.Round != a.currentRound+1 {
		return ShareMessage{}, ErrWrongRound
	}
	if err := p.Verify(); err != nil {
		return ShareMessage{}, ErrInvalidProposalSignature
	}

	a.currentRound = p.Round
	a.currentProposal = &p
	a.currentValue = append([]byte(nil), p.Value...)

	digest := HashRoundValue(a.currentRound, a.currentValue)
	share, err := a.scheme.CreateShare(a.NodeID, digest[:])
	if err != nil {
		return ShareMessage{}, err
	}
	a.ownShare = &share
	a.collectedShares[a.NodeID] = share
	a.shareOrder = append(a.shareOrder, a.NodeID)
	a.phase = Signing

	a.log.Debug("bft: proposal accepted", zap.Uint64("node_id", a.NodeID), zap.Uint64("round", a.currentRound))
	return ShareMessage{Round: a.currentRound, NodeID: a.NodeID, Share: share}, nil
}

// ReceiveShare accepts a counterparty's share. Valid in Signing or
// Aggregating; shares for the wrong round, that fail verification, or
// that duplicate an already-collected node id are silently ignored. Once
// T distinct valid shares are collected, aggregates them and transitions
// to Committed, returning the resulting CommitMessage.
func (a *Arbitrator) ReceiveShare(msg ShareMessage) (*CommitMessage, error) {
	if a.phase != Signing && a.phase != Aggregating {
		return nil, nil
	}
	if msg.Round != a.currentRound {
		return nil, nil
	}
	digest := HashRoundValue(a.currentRound, a.currentValue)
	if !a.scheme.VerifyShare(msg.NodeID, digest[:], msg.Share) {
		return nil, nil
	}
	if _, exists := a.collectedShares[msg.NodeID]; exists {
		return nil, nil
	}

	a.collectedShares[msg.NodeID] = msg.Share
	a.shareOrder = append(a.shareOrder, msg.NodeID)
	a.phase = Aggregating

	if uint64(len(a.collectedShares)) < a.config.Threshold() {
		return nil, nil
	}

	shares := make([]Share, 0, len(a.shareOrder))
	for _, id := range a.shareOrder {
		shares = append(shares, a.collectedShares[id])
	}

	agg, ok := a.scheme.Aggregate(digest[:], shares)
	if !ok {
		return nil, nil
	}

	commit := CommitMessage{
		Round: a.currentRound,
		Value: append([]byte(nil), a.currentValue...),
		Proof: agg,
	}
	a.finalCommit = &commit
	a.phase = Committed
	a.log.Info("bft: committed", zap.Uint64("node_id", a.NodeID), zap.Uint64("round", a.currentRound))
	return &commit, nil
}

// ReceiveCommit accepts an already-aggregated commit for the current
// round, verifying its threshold-signature proof. A node that never saw
// the original proposal (still Idle) fast-forwards by adopting the
// commit's round and value directly. Locks phase to Committed.
func (a *Arbitrator) ReceiveCommit(c CommitMessage) error {
	if a.phase == Committed || a.phase == Aborted {
		return nil
	}
	if a.phase == Idle {
		a.currentRound = c.Round
		a.currentValue = append([]byte(nil), c.Value...)
	}
	if c.Round != a.currentRound {
		return ErrWrongRound
	}

	digest := HashRoundValue(c.Round, c.Value)
	if !a.scheme.VerifyThresholdSignature(digest[:], c.Proof) {
		return ErrInvalidCommit
	}

	if a.currentValue == nil {
		a.currentValue = append([]byte(nil), c.Value...)
	}
	a.finalCommit = &c
	a.phase = Committed
	a.log.Info("bft: commit adopted", zap.Uint64("node_id", a.NodeID), zap.Uint64("round", a.currentRound))
	return nil
}

// Abort transitions to the terminal Aborted phase if not already Committed.
func (a *Arbitrator) Abort() {
	if a.phase != Committed {
		a.phase = Aborted
	}
}
