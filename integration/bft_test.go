package integration_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/luxfi/twogenerals/bft"
	"github.com/luxfi/twogenerals/primitives"
)

var _ = Describe("BFT threshold-signature round (n=4, f=1, T=3)", func() {
	var (
		config bft.Config
		scheme *bft.ThresholdScheme
		proposerKeyPair *primitives.KeyPair
	)

	BeforeEach(func() {
		var err error
		config, err = bft.NewConfig(4, 1)
		Expect(err).NotTo(HaveOccurred())
		scheme, err = bft.NewThresholdScheme(config, []byte("integration suite master secret"))
		Expect(err).NotTo(HaveOccurred())
		proposerKeyPair, err = primitives.GenerateKeyPair()
		Expect(err).NotTo(HaveOccurred())
	})

	newArbitrators := func() []*bft.Arbitrator {
		arbitrators := make([]*bft.Arbitrator, config.N)
		for i := uint64(0); i < config.N; i++ {
			arbitrators[i] = bft.NewArbitrator(i, config, scheme, nil)
		}
		return arbitrators
	}

	It("S6: reaches the same committed value on all four arbitrators when every node is honest", func() {
		arbitrators := newArbitrators()
		coordinator := bft.NewCoordinator(arbitrators)

		commit, err := coordinator.RunRound(0, 1, []byte("V"), proposerKeyPair)
		Expect(err).NotTo(HaveOccurred())
		Expect(commit).NotTo(BeNil())

		for _, arb := range arbitrators {
			Expect(arb.Phase()).To(Equal(bft.Committed))
			Expect(arb.FinalCommit().Value).To(Equal([]byte("V")))
		}
	})

	It("S7: still aggregates over the silent node's peers when node 0 never participates", func() {
		proposal := bft.NewProposal(1, []byte("V"), proposerKeyPair)

		arbitrators := newArbitrators()
		var shares []bft.ShareMessage
		for _, arb := range arbitrators[1:] {
			share, err := arb.ReceiveProposal(proposal)
			Expect(err).NotTo(HaveOccurred())
			shares = append(shares, share)
		}

		var commit *bft.CommitMessage
		for _, arb := range arbitrators[1:] {
			for _, share := range shares {
				c, err := arb.ReceiveShare(share)
				Expect(err).NotTo(HaveOccurred())
				if c != nil {
					commit = c
				}
			}
		}

		Expect(commit).NotTo(BeNil())
		Expect(commit.Proof.ContributingNodes).To(Equal([]uint64{1, 2, 3}))
		Expect(scheme.VerifyThresholdSignature(bft.HashRoundValue(1, []byte("V"))[:], commit.Proof)).To(BeTrue())
	})

	It("S8: only commits value A even when Byzantine node 0 and colluding node 1 sign value B too", func() {
		proposalA := bft.NewProposal(1, []byte("A"), proposerKeyPair)

		arbitrators := newArbitrators()
		// Honest nodes 2 and 3 sign A only.
		shareA2, err := arbitrators[2].ReceiveProposal(proposalA)
		Expect(err).NotTo(HaveOccurred())
		shareA3, err := arbitrators[3].ReceiveProposal(proposalA)
		Expect(err).NotTo(HaveOccurred())

		// Byzantine node 0 forges a share for both A and B; colluding node 1
		// signs B. Neither of these shares should be routed into the real
		// arbitrators here, since the Byzantine behavior under test is the
		// ThresholdScheme's aggregation policy, not a specific arbitrator's
		// bookkeeping: construct both candidate share sets directly.
		shareA0, err := scheme.CreateShare(0, bft.HashRoundValue(1, []byte("A"))[:])
		Expect(err).NotTo(HaveOccurred())
		shareB0, err := scheme.CreateShare(0, bft.HashRoundValue(1, []byte("B"))[:])
		Expect(err).NotTo(HaveOccurred())
		shareB1, err := scheme.CreateShare(1, bft.HashRoundValue(1, []byte("B"))[:])
		Expect(err).NotTo(HaveOccurred())

		digestA := bft.HashRoundValue(1, []byte("A"))
		sigA, okA := scheme.Aggregate(digestA[:], []bft.Share{shareA2.Share, shareA3.Share, shareA0})
		Expect(okA).To(BeTrue())
		Expect(sigA.ContributingNodes).To(Equal([]uint64{0, 2, 3}))

		digestB := bft.HashRoundValue(1, []byte("B"))
		_, okB := scheme.Aggregate(digestB[:], []bft.Share{shareB0, shareB1})
		Expect(okB).To(BeFalse())
	})
})
