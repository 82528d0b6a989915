package websocket

import (
	"math"
	"math/rand"
	"time"
)

// Backoff computes reconnect delays growing by Multiplier from Base up to Max.
type Backoff struct {
	Base       time.Duration
	Max        time.Duration
	Multiplier float64
	Jitter     bool
}

func DefaultBackoff() Backoff {
	return Backoff{
		Base:       time.Second,
		Max:        30 * time.Second,
		Multiplier: 2.0,
		Jitter:     true,
	}
}

func (b Backoff) Delay(attempt int) time.Duration {
	if b.Base <= 0 {
		return 0
	}
	mult := b.Multiplier
	if mult < 1 {
		mult = 1
	}
	delay := float64(b.Base) * math.Pow(mult, float64(attempt))
	if b.Max > 0 && delay > float64(b.Max) {
		delay = float64(b.Max)
	}
	if b.Jitter {
		// up to 25% either way
		delay += delay * 0.25 * (rand.Float64()*2 - 1)
	}
	return time.Duration(delay)
}
