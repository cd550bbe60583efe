package network

import (
	"math"
	"time"
)

// ExponentialBackoff computes retry delays growing by a fixed factor, sized
// so the configured number of retries fits inside the total retry time.
type ExponentialBackoff struct {
	maxRetries uint64
	totalTime  time.Duration
	factor     float64
}

// NewExponentialBackoff builds a policy for maxRetries attempts spread over
// totalTime with the given growth factor.
func NewExponentialBackoff(maxRetries uint64, totalTime time.Duration, factor float64) ExponentialBackoff {
	return ExponentialBackoff{
		maxRetries: maxRetries,
		totalTime:  totalTime,
		factor:     factor,
	}
}

// Delay returns the wait before retry number retry (0-based). The delays
// form a geometric series summing to the total retry time; with zero
// retries configured there is no delay.
func (b ExponentialBackoff) Delay(retry uint64) time.Duration {
	if b.maxRetries == 0 || b.totalTime <= 0 {
		return 0
	}
	if b.factor == 1 {
		return b.totalTime / time.Duration(b.maxRetries)
	}
	// first term of a geometric series summing to totalTime
	first := float64(b.totalTime) * (b.factor - 1) / (math.Pow(b.factor, float64(b.maxRetries)) - 1)
	return time.Duration(first * math.Pow(b.factor, float64(retry)))
}
