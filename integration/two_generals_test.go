package integration_test

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/luxfi/twogenerals/artifact"
	"github.com/luxfi/twogenerals/primitives"
	"github.com/luxfi/twogenerals/protocol"
	"github.com/luxfi/twogenerals/wire"
)

func newProtocolPair() (*protocol.TwoGenerals, *protocol.TwoGenerals, error) {
	kpA, err := primitives.GenerateKeyPair()
	if err != nil {
		return nil, nil, err
	}
	kpB, err := primitives.GenerateKeyPair()
	if err != nil {
		return nil, nil, err
	}
	alice := protocol.New(artifact.Alice, kpA, kpB.PublicKey())
	bob := protocol.New(artifact.Bob, kpB, kpA.PublicKey())
	return alice, bob, nil
}

var _ = Describe("Two-party protocol over a perfect channel", func() {
	It("reaches Complete for both parties within 4 rounds and agrees on receipts", func() {
		alice, bob, err := newProtocolPair()
		Expect(err).NotTo(HaveOccurred())

		rounds := 0
		for rounds = 0; rounds < 4 && !(alice.IsComplete() && bob.IsComplete()); rounds++ {
			aliceMsgs, err := alice.GetMessagesToSend()
			Expect(err).NotTo(HaveOccurred())
			bobMsgs, err := bob.GetMessagesToSend()
			Expect(err).NotTo(HaveOccurred())

			for _, m := range aliceMsgs {
				_, err := bob.Receive(m)
				Expect(err).NotTo(HaveOccurred())
			}
			for _, m := range bobMsgs {
				_, err := alice.Receive(m)
				Expect(err).NotTo(HaveOccurred())
			}
		}

		Expect(alice.IsComplete()).To(BeTrue())
		Expect(bob.IsComplete()).To(BeTrue())
		Expect(rounds).To(BeNumerically("<=", 4))

		Expect(alice.CanAttack()).To(BeTrue())
		Expect(bob.CanAttack()).To(BeTrue())

		aliceOwn, aliceOther, ok := alice.GetBilateralReceipt()
		Expect(ok).To(BeTrue())
		bobOwn, bobOther, ok := bob.GetBilateralReceipt()
		Expect(ok).To(BeTrue())
		Expect(aliceOwn.CanonicalBytes()).To(Equal(bobOther.CanonicalBytes()))
		Expect(bobOwn.CanonicalBytes()).To(Equal(aliceOther.CanonicalBytes()))
	})
})

var _ = Describe("Two-party protocol over a lossy channel", func() {
	It("keeps alice and bob's decisions symmetric across 100 seeds despite 50% message loss", func() {
		completions := 0
		const seeds = 100

		for seed := 0; seed < seeds; seed++ {
			alice, bob, err := newProtocolPair()
			Expect(err).NotTo(HaveOccurred())

			rng := rand.New(rand.NewSource(int64(seed)))
			for round := 0; round < 1000 && !(alice.IsComplete() && bob.IsComplete()); round++ {
				aliceMsgs, err := alice.GetMessagesToSend()
				Expect(err).NotTo(HaveOccurred())
				bobMsgs, err := bob.GetMessagesToSend()
				Expect(err).NotTo(HaveOccurred())

				for _, m := range aliceMsgs {
					if rng.Float64() < 0.5 {
						continue
					}
					_, err := bob.Receive(m)
					Expect(err).NotTo(HaveOccurred())
				}
				for _, m := range bobMsgs {
					if rng.Float64() < 0.5 {
						continue
					}
					_, err := alice.Receive(m)
					Expect(err).NotTo(HaveOccurred())
				}
			}

			Expect(alice.GetDecision()).To(Equal(bob.GetDecision()))
			if alice.IsComplete() && bob.IsComplete() {
				completions++
			}
		}

		Expect(completions).To(BeNumerically(">", 0))
	})
})

var _ = Describe("Cascaded receipt construction", func() {
	It("lets Alice jump straight to Complete off a single Quad message", func() {
		kpA, err := primitives.GenerateKeyPair()
		Expect(err).NotTo(HaveOccurred())
		kpB, err := primitives.GenerateKeyPair()
		Expect(err).NotTo(HaveOccurred())

		alice := protocol.New(artifact.Alice, kpA, kpB.PublicKey())
		Expect(alice.State()).To(Equal(protocol.Commitment))

		// Bob advances independently at the artifact level, never touching
		// a protocol.TwoGenerals of his own.
		cA := artifact.NewCommitment(artifact.Alice, kpA, artifact.DefaultCommitmentMessage)
		cB := artifact.NewCommitment(artifact.Bob, kpB, artifact.DefaultCommitmentMessage)
		dA, err := artifact.NewDoubleProof(artifact.Alice, cA, cB, kpA)
		Expect(err).NotTo(HaveOccurred())
		dB, err := artifact.NewDoubleProof(artifact.Bob, cB, cA, kpB)
		Expect(err).NotTo(HaveOccurred())
		tA, err := artifact.NewTripleProof(artifact.Alice, dA, dB, kpA)
		Expect(err).NotTo(HaveOccurred())
		tB, err := artifact.NewTripleProof(artifact.Bob, dB, dA, kpB)
		Expect(err).NotTo(HaveOccurred())
		_, err = artifact.NewQuadProof(artifact.Alice, tA, tB, kpA)
		Expect(err).NotTo(HaveOccurred())
		qB, err := artifact.NewQuadProof(artifact.Bob, tB, tA, kpB)
		Expect(err).NotTo(HaveOccurred())

		msg, err := wire.NewQuadMessage(artifact.Bob, 1, qB)
		Expect(err).NotTo(HaveOccurred())

		changed, err := alice.Receive(msg)
		Expect(err).NotTo(HaveOccurred())
		Expect(changed).To(BeTrue())

		Expect(alice.State()).To(Equal(protocol.Complete))
		Expect(alice.CanAttack()).To(BeTrue())
	})
})

var _ = Describe("Tampered signature rejection", func() {
	It("rejects a one-byte-flipped DoubleProof without changing state", func() {
		alice, bob, err := newProtocolPair()
		Expect(err).NotTo(HaveOccurred())

		// Bring Bob to Double by delivering Alice's commitment.
		aliceMsgs, err := alice.GetMessagesToSend()
		Expect(err).NotTo(HaveOccurred())
		for _, m := range aliceMsgs {
			_, err := bob.Receive(m)
			Expect(err).NotTo(HaveOccurred())
		}

		bobMsgs, err := bob.GetMessagesToSend()
		Expect(err).NotTo(HaveOccurred())
		Expect(bobMsgs).NotTo(BeEmpty())
		dMsg := bobMsgs[0]
		Expect(dMsg.Kind).To(Equal(wire.PayloadDouble))

		tampered := dMsg
		tampered.Payload = append([]byte(nil), dMsg.Payload...)
		tampered.Payload[len(tampered.Payload)-1] ^= 0xFF

		stateBefore := alice.State()
		_, err = alice.Receive(tampered)
		Expect(err).To(HaveOccurred())
		Expect(alice.State()).To(Equal(stateBefore))
	})
})
