package bft

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/twogenerals/primitives"
)

func TestNewConfigRequiresNEquals3fPlus1(t *testing.T) {
	_, err := NewConfig(9, 3)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	cfg, err := NewConfig(4, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), cfg.Threshold())
}

func newScheme(t *testing.T, cfg Config) *ThresholdScheme {
	t.Helper()
	ts, err := NewThresholdScheme(cfg, []byte("test master secret, not for production use"))
	require.NoError(t, err)
	return ts
}

func TestCreateShareDeterministic(t *testing.T) {
	cfg, err := NewConfig(4, 1)
	require.NoError(t, err)
	ts := newScheme(t, cfg)

	s1, err := ts.CreateShare(0, []byte("msg"))
	require.NoError(t, err)
	s2, err := ts.CreateShare(0, []byte("msg"))
	require.NoError(t, err)
	assert.Equal(t, s1, s2)

	s3, err := ts.CreateShare(1, []byte("msg"))
	require.NoError(t, err)
	assert.NotEqual(t, s1.Bytes, s3.Bytes)

	_, err = ts.CreateShare(4, []byte("msg"))
	assert.ErrorIs(t, err, ErrUnknownNode)
}

func TestVerifyShareRejectsTampered(t *testing.T) {
	cfg, err := NewConfig(4, 1)
	require.NoError(t, err)
	ts := newScheme(t, cfg)

	s, err := ts.CreateShare(2, []byte("msg"))
	require.NoError(t, err)
	assert.True(t, ts.VerifyShare(2, []byte("msg"), s))

	s.Bytes[0] ^= 0xFF
	assert.False(t, ts.VerifyShare(2, []byte("msg"), s))
	assert.False(t, ts.VerifyShare(3, []byte("msg"), s))
}

func TestAggregateRequiresThreshold(t *testing.T) {
	cfg, err := NewConfig(4, 1)
	require.NoError(t, err)
	ts := newScheme(t, cfg)

	message := []byte("V")
	s0, _ := ts.CreateShare(0, message)
	s1, _ := ts.CreateShare(1, message)

	_, ok := ts.Aggregate(message, []Share{s0, s1})
	assert.False(t, ok, "only 2 of threshold 3 shares present")

	s2, _ := ts.CreateShare(2, message)
	sig, ok := ts.Aggregate(message, []Share{s0, s1, s2})
	require.True(t, ok)
	assert.Len(t, sig.ContributingNodes, 3)
	assert.True(t, ts.VerifyThresholdSignature(message, sig))
}

func TestAggregateDeduplicatesAndFiltersInvalid(t *testing.T) {
	cfg, err := NewConfig(4, 1)
	require.NoError(t, err)
	ts := newScheme(t, cfg)

	message := []byte("V")
	s0, _ := ts.CreateShare(0, message)
	s1, _ := ts.CreateShare(1, message)
	s2, _ := ts.CreateShare(2, message)

	forged := s1
	forged.Bytes[0] ^= 0xFF

	sig, ok := ts.Aggregate(message, []Share{s0, s0, forged, s1, s2})
	require.True(t, ok)
	assert.ElementsMatch(t, []uint64{0, 1, 2}, sig.ContributingNodes)
}

func TestVerifyThresholdSignatureRejectsWrongMessage(t *testing.T) {
	cfg, err := NewConfig(4, 1)
	require.NoError(t, err)
	ts := newScheme(t, cfg)

	message := []byte("V")
	s0, _ := ts.CreateShare(0, message)
	s1, _ := ts.CreateShare(1, message)
	s2, _ := ts.CreateShare(2, message)
	sig, ok := ts.Aggregate(message, []Share{s0, s1, s2})
	require.True(t, ok)

	assert.False(t, ts.VerifyThresholdSignature([]byte("different"), sig))
}

func buildArbitrators(t *testing.T, n, f uint64) ([]*Arbitrator, *ThresholdScheme, Config) {
	t.Helper()
	cfg, err := NewConfig(n, f)
	require.NoError(t, err)
	ts := newScheme(t, cfg)
	arbs := make([]*Arbitrator, n)
	for i := uint64(0); i < n; i++ {
		arbs[i] = NewArbitrator(i, cfg, ts, nil)
	}
	return arbs, ts, cfg
}

func TestBftHappyPath(t *testing.T) {
	arbs, _, cfg := buildArbitrators(t, 4, 1)
	proposerKey, err := primitives.GenerateKeyPair()
	require.NoError(t, err)

	coordinator := NewCoordinator(arbs)
	commit, err := coordinator.RunRound(0, 1, []byte("V"), proposerKey)
	require.NoError(t, err)
	require.NotNil(t, commit)
	assert.GreaterOrEqual(t, uint64(len(commit.Proof.ContributingNodes)), cfg.Threshold())

	for _, arb := range arbs {
		assert.Equal(t, Committed, arb.Phase())
		assert.Equal(t, []byte("V"), arb.FinalCommit().Value)
	}
}

func TestArbitratorRejectsWrongRoundProposal(t *testing.T) {
	arbs, _, _ := buildArbitrators(t, 4, 1)
	proposerKey, err := primitives.GenerateKeyPair()
	require.NoError(t, err)

	bad := NewProposal(5, []byte("V"), proposerKey)
	_, err = arbs[0].ReceiveProposal(bad)
	assert.ErrorIs(t, err, ErrWrongRound)
}

func TestArbitratorRejectsForgedProposalSignature(t *testing.T) {
	arbs, _, _ := buildArbitrators(t, 4, 1)
	proposerKey, err := primitives.GenerateKeyPair()
	require.NoError(t, err)
	imposterKey, err := primitives.GenerateKeyPair()
	require.NoError(t, err)

	proposal := NewProposal(1, []byte("V"), proposerKey)
	proposal.ProposerPublic = imposterKey.PublicKey()

	_, err = arbs[0].ReceiveProposal(proposal)
	assert.ErrorIs(t, err, ErrInvalidProposalSignature)
}

func TestByzantineSilenceStillCommitsWithQuorum(t *testing.T) {
	arbs, _, cfg := buildArbitrators(t, 4, 1)
	proposerKey, err := primitives.GenerateKeyPair()
	require.NoError(t, err)

	proposal := NewProposal(1, []byte("V"), proposerKey)
	var shares []ShareMessage
	for i, arb := range arbs {
		if i == 3 {
			continue // node 3 is silent (Byzantine or offline)
		}
		share, err := arb.ReceiveProposal(proposal)
		require.NoError(t, err)
		shares = append(shares, share)
	}
	require.Len(t, shares, 3)

	var commit *CommitMessage
	for _, arb := range arbs[:3] {
		for _, share := range shares {
			c, err := arb.ReceiveShare(share)
			require.NoError(t, err)
			if c != nil {
				commit = c
			}
		}
	}

	require.NotNil(t, commit)
	assert.GreaterOrEqual(t, uint64(len(commit.Proof.ContributingNodes)), cfg.Threshold())
	assert.Equal(t, Committed, arbs[0].Phase())
}

func TestConflictingSharesDoNotProduceTwoCommitsInSameRound(t *testing.T) {
	arbs, ts, _ := buildArbitrators(t, 4, 1)
	proposerKey, err := primitives.GenerateKeyPair()
	require.NoError(t, err)

	proposal := NewProposal(1, []byte("V"), proposerKey)
	var shares []ShareMessage
	for _, arb := range arbs {
		share, err := arb.ReceiveProposal(proposal)
		require.NoError(t, err)
		shares = append(shares, share)
	}

	digest := HashRoundValue(1, []byte("OTHER"))
	forgedShare1, err := ts.CreateShare(1, digest[:])
	require.NoError(t, err)
	forgedShare2, err := ts.CreateShare(2, digest[:])
	require.NoError(t, err)
	shares[1] = ShareMessage{Round: 1, NodeID: 1, Share: forgedShare1}
	shares[2] = ShareMessage{Round: 1, NodeID: 2, Share: forgedShare2}

	// Only node 0 (this arbitrator's own share) and node 3 sign the real
	// value; with nodes 1 and 2 forged over a different value, fewer than
	// threshold (3) valid shares remain, so no commit should be produced.
	var commit *CommitMessage
	for _, share := range shares {
		c, err := arbs[0].ReceiveShare(share)
		require.NoError(t, err)
		if c != nil {
			commit = c
		}
	}
	assert.Nil(t, commit, "shares signed over a different value must be silently ignored")
}
