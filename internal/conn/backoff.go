package conn

import "time"

// backoffDelay returns the wait before reconnect attempt n (0-based): min
// doubled per attempt and capped at max.
func backoffDelay(attempt int, min, max time.Duration) time.Duration {
	if min <= 0 {
		return 0
	}
	delay := min
	for i := 0; i < attempt; i++ {
		delay *= 2
		if delay >= max || delay <= 0 {
			return max
		}
	}
	if delay > max {
		return max
	}
	return delay
}
