package audio

import "time"

// pollFaults watches a capture backend that reports failure only through
// polled state. It calls fault once and returns as soon as check fails, or
// returns silently when stop closes.
func pollFaults(stop <-chan struct{}, interval time.Duration, check func() error, fault func(error)) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			if err := check(); err != nil {
				fault(err)
				return
			}
		}
	}
}
