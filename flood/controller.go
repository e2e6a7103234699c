// Package flood implements the continuous-flooding transport discipline:
// an adaptive rate controller that ramps flood frequency up while the
// application has data pending and down while idle, bounded to
// [min_rate, max_rate] packets per second.
package flood

import (
	"errors"
	"time"
)

// ErrInvalidMinRate indicates a non-positive minimum rate was supplied.
var ErrInvalidMinRate = errors.New("flood: minimum rate must be greater than 0")

// ErrInvalidMaxRate indicates the maximum rate is below the minimum rate.
var ErrInvalidMaxRate = errors.New("flood: maximum rate must be >= minimum rate")

// Controller tracks and modulates the current flood rate, in packets per
// second, between a configured floor and ceiling.
type Controller struct {
	MinRate     uint64
	MaxRate     uint64
	CurrentRate uint64
	RampUp      uint64
	RampDown    uint64
	TargetRate  uint64
}

// NewController constructs a Controller initialized to MinRate.
func NewController(minRate, maxRate uint64) (*Controller, error) {
	if minRate == 0 {
		return nil, ErrInvalidMinRate
	}
	if maxRate < minRate {
		return nil, ErrInvalidMaxRate
	}
	return &Controller{
		MinRate:     minRate,
		MaxRate:     maxRate,
		CurrentRate: minRate,
		RampUp:      maxRate / 10,
		RampDown:    minRate,
		TargetRate:  minRate,
	}, nil
}

// ModulateRate adjusts CurrentRate toward MaxRate (adding RampUp per call)
// or MinRate (subtracting RampDown per call) depending on dataPending, and
// returns the new CurrentRate.
func (c *Controller) ModulateRate(dataPending bool) uint64 {
	if dataPending {
		c.TargetRate = c.MaxRate
	} else {
		c.TargetRate = c.MinRate
	}

	switch {
	case dataPending && c.CurrentRate < c.TargetRate:
		c.CurrentRate = min(c.CurrentRate+c.RampUp, c.TargetRate)
	case !dataPending && c.CurrentRate > c.TargetRate:
		c.CurrentRate = max(c.CurrentRate-c.RampDown, c.TargetRate)
	}

	return c.CurrentRate
}

// Interval returns the time between packets at CurrentRate.
func (c *Controller) Interval() time.Duration {
	return time.Duration(float64(time.Second) / float64(c.CurrentRate))
}

func min(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

func max(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}
