package infra

import "time"

const (
	backoffBase = 1 * time.Second
	backoffMax  = 60 * time.Second
)

// CalculateBackoff returns an exponential reconnect delay: 1s, 2s, 4s, ...
// capped at 60s.
func CalculateBackoff(retryCount int) time.Duration {
	if retryCount < 0 {
		retryCount = 0
	}
	delay := backoffBase << uint(retryCount)
	if delay > backoffMax || delay <= 0 {
		return backoffMax
	}
	return delay
}
