package integration_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/luxfi/twogenerals/flood"
)

var _ = Describe("Adaptive flood controller", func() {
	It("ramps up to max rate under sustained backlog and down to min rate once idle", func() {
		controller, err := flood.NewController(1, 1000)
		Expect(err).NotTo(HaveOccurred())

		for i := 0; i < 20; i++ {
			controller.ModulateRate(true)
		}
		Expect(controller.CurrentRate).To(Equal(uint64(1000)))

		for i := 0; i < 1000; i++ {
			controller.ModulateRate(false)
		}
		Expect(controller.CurrentRate).To(Equal(uint64(1)))
	})

	It("paces a Flooder's ShouldSend decisions to the modulated interval", func() {
		flooder, err := flood.NewFlooder(1, 1000)
		Expect(err).NotTo(HaveOccurred())

		Expect(flooder.ShouldSend(true)).To(BeTrue())

		sent := 0
		deadline := time.Now().Add(50 * time.Millisecond)
		for time.Now().Before(deadline) {
			if flooder.ShouldSend(true) {
				sent++
			}
		}
		Expect(sent).To(BeNumerically(">", 0))
		Expect(flooder.CurrentRate()).To(BeNumerically(">", 1))
	})
})
