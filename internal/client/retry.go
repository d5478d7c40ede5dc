package client

import (
	"log"
	"time"
)

type RetryConfig struct {
	Attempts int
	Delay    time.Duration
	MaxDelay time.Duration
}

// DialWithRetry dials the control port, doubling the delay between
// attempts up to MaxDelay. It returns the last dial error once the
// attempts are exhausted.
func DialWithRetry(addr, password string, dialTimeout, requestTimeout time.Duration, retry RetryConfig) (*ControlClient, error) {
	if retry.Attempts < 1 {
		retry.Attempts = 1
	}

	delay := retry.Delay
	var lastErr error
	for attempt := 1; attempt <= retry.Attempts; attempt++ {
		if attempt > 1 {
			time.Sleep(delay)
			delay *= 2
			if retry.MaxDelay > 0 && delay > retry.MaxDelay {
				delay = retry.MaxDelay
			}
		}

		c, err := Dial(addr, password, dialTimeout, requestTimeout)
		if err == nil {
			return c, nil
		}
		lastErr = err
		log.Printf("client: dial attempt %d/%d failed: %v", attempt, retry.Attempts, err)
	}
	return nil, lastErr
}
