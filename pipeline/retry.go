package pipeline

import "time"

// RetryPolicy is a bounded retry loop with a fixed inter-attempt delay. The
// wait is a plain blocking sleep; the whole pipeline is single-threaded and
// the external calls it wraps are the bottleneck anyway.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
	Sleep       func(time.Duration)
}

// Do runs op up to MaxAttempts times. A nil error stops immediately; an
// error for which retryable returns false is returned without further
// attempts. The last error is returned when attempts run out.
func (p RetryPolicy) Do(op func() error, retryable func(error) bool) error {
	sleep := p.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	var err error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		err = op()
		if err == nil {
			return nil
		}
		if !retryable(err) || attempt == p.MaxAttempts {
			return err
		}
		sleep(p.Delay)
	}

	return err
}

func alwaysRetry(error) bool { return true }
