package billingapi

import (
	"math"
	"math/rand/v2"
	"time"
)

// Backoff returns the delay before retry number attempt, starting at 1.
type Backoff interface {
	NextInterval(attempt int) time.Duration
}

// ExponentialBackoff grows the delay by Multiplier per attempt and spreads it by
// ±JitterFactor. Zero fields take the defaults noted on each.
type ExponentialBackoff struct {
	InitialInterval time.Duration // 200ms
	MaxInterval     time.Duration // 2s
	Multiplier      float64       // 2
	JitterFactor    float64       // no jitter
}

// NextInterval returns min(InitialInterval * Multiplier^(attempt-1) * (1 ± JitterFactor), MaxInterval).
func (e ExponentialBackoff) NextInterval(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}

	initial := e.InitialInterval
	if initial <= 0 {
		initial = 200 * time.Millisecond
	}
	ceiling := e.MaxInterval
	if ceiling <= 0 {
		ceiling = 2 * time.Second
	}
	multiplier := e.Multiplier
	if multiplier <= 0 {
		multiplier = 2
	}

	interval := float64(initial) * math.Pow(multiplier, float64(attempt-1))
	if e.JitterFactor > 0 {
		interval *= 1 + (rand.Float64()*2-1)*e.JitterFactor
	}
	if interval > float64(ceiling) {
		interval = float64(ceiling)
	}

	return time.Duration(interval)
}

// NoBackoff retries immediately. Useful in tests.
type NoBackoff struct{}

func (NoBackoff) NextInterval(int) time.Duration { return 0 }
