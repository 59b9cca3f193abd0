package httpclient

import "time"

// RetryPolicy controls Fetch's exponential-backoff retry behavior (spec
// §4.B). Retries fire only on transport errors or a status in
// RetryableStatuses; all other non-2xx/3xx statuses are returned to the
// caller unchanged.
type RetryPolicy struct {
	InitialDelay     time.Duration
	MaxDelay         time.Duration
	MaxRetries       int
	RetryableStatuses map[int]bool
}

// DefaultRetryPolicy matches spec §4.B's defaults: retry on 429/503, doubling
// backoff starting at 500ms capped at 10s, up to 3 retries.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     10 * time.Second,
		MaxRetries:   3,
		RetryableStatuses: map[int]bool{
			429: true,
			503: true,
		},
	}
}

// nextDelay returns the backoff delay before retry attempt n (0-indexed),
// doubling from InitialDelay and capped at MaxDelay.
func (p RetryPolicy) nextDelay(attempt int) time.Duration {
	d := p.InitialDelay
	for i := 0; i < attempt; i++ {
		d *= 2
		if d > p.MaxDelay {
			return p.MaxDelay
		}
	}
	return d
}

func (p RetryPolicy) shouldRetryStatus(status int) bool {
	return p.RetryableStatuses[status]
}
