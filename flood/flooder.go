package flood

import "time"

// Flooder wraps a Controller and tracks real-clock timing to decide when
// the next flood packet should go out.
type Flooder struct {
	controller *Controller
	lastSend   time.Time
	packets    uint64
}

// NewFlooder constructs a Flooder ready to permit an immediate first send.
func NewFlooder(minRate, maxRate uint64) (*Flooder, error) {
	controller, err := NewController(minRate, maxRate)
	if err != nil {
		return nil, err
	}
	return &Flooder{
		controller: controller,
		lastSend:   time.Now().Add(-time.Second),
	}, nil
}

// ShouldSend modulates the controller's rate for dataPending and reports
// whether enough time has elapsed since the last send to emit another
// packet now. Uses time.Now()'s monotonic reading via Time.Sub, so
// wall-clock adjustments never distort the interval.
func (f *Flooder) ShouldSend(dataPending bool) bool {
	now := time.Now()
	elapsed := now.Sub(f.lastSend)

	f.controller.ModulateRate(dataPending)
	interval := f.controller.Interval()

	if elapsed >= interval {
		f.lastSend = now
		f.packets++
		return true
	}
	return false
}

// CurrentRate returns the controller's current packets-per-second rate.
func (f *Flooder) CurrentRate() uint64 {
	return f.controller.CurrentRate
}

// PacketCount returns the total number of packets sent so far.
func (f *Flooder) PacketCount() uint64 {
	return f.packets
}

// ResetCounter zeroes the packet counter.
func (f *Flooder) ResetCounter() {
	f.packets = 0
}
