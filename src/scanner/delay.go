package scanner

import "time"

// Adaptive delay defaults.
const (
	DefaultGrowth = 1.2
	DefaultDecay  = 0.9
	DefaultWindow = 3

	fastFactor = 0.8
)

// AdaptiveDelay is the wait before each capture. Low-confidence outcomes
// grow it geometrically up to Ceiling; every Window consecutive
// high-confidence outcomes shrink it by Decay down to Floor.
type AdaptiveDelay struct {
	Base    time.Duration
	Floor   time.Duration
	Ceiling time.Duration
	Growth  float64
	Decay   float64
	Window  int

	cur time.Duration
	run int
}

// NewAdaptiveDelay returns a delay starting at base with the default bounds
// of base/2 and 2*base. Fast mode scales all three by 0.8.
func NewAdaptiveDelay(base time.Duration, fast bool) *AdaptiveDelay {
	if fast {
		base = scale(base, fastFactor)
	}
	return &AdaptiveDelay{
		Base:    base,
		Floor:   base / 2,
		Ceiling: base * 2,
		Growth:  DefaultGrowth,
		Decay:   DefaultDecay,
		Window:  DefaultWindow,
	}
}

// Current returns the delay to wait before the next capture.
func (d *AdaptiveDelay) Current() time.Duration {
	if d.cur == 0 {
		d.cur = d.clamp(d.Base)
	}
	return d.cur
}

// Observe feeds one recognition outcome.
func (d *AdaptiveDelay) Observe(high bool) {
	cur := d.Current()
	if !high {
		d.run = 0
		d.cur = d.clamp(scale(cur, d.Growth))
		return
	}
	d.run++
	window := d.Window
	if window <= 0 {
		window = 1
	}
	if d.run >= window {
		d.run = 0
		d.cur = d.clamp(scale(cur, d.Decay))
	}
}

// ResetItem clears the high-confidence run when a new item starts. The
// delay itself carries over.
func (d *AdaptiveDelay) ResetItem() { d.run = 0 }

func (d *AdaptiveDelay) clamp(v time.Duration) time.Duration {
	if d.Ceiling > 0 && v > d.Ceiling {
		v = d.Ceiling
	}
	if v < d.Floor {
		v = d.Floor
	}
	return v
}

func scale(d time.Duration, f float64) time.Duration {
	return time.Duration(float64(d)*f + 0.5)
}
