package repository

import "time"

// QueryObserver receives per-query latency samples.
type QueryObserver interface {
	ObserveDBQuery(label string, duration time.Duration)
}

// queryTimer is embedded by repositories to report query timings.
type queryTimer struct {
	obs QueryObserver
}

// SetObserver installs the timing sink. A nil observer disables reporting.
func (t *queryTimer) SetObserver(obs QueryObserver) {
	t.obs = obs
}

func (t *queryTimer) observe(label string, start time.Time) {
	if t.obs != nil {
		t.obs.ObserveDBQuery(label, time.Since(start))
	}
}
