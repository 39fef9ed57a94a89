package download

import "sync/atomic"

// CompletionPolicy decides which task outcomes settle the job's completion
// counter. With the zero value only successful tasks count, so a single
// failed or cancelled task means JobFinished is never emitted.
type CompletionPolicy struct {
	CountFailed    bool
	CountCancelled bool
}

type outcome int

const (
	finished outcome = iota
	failed
	cancelled
)

func (p CompletionPolicy) counts(o outcome) bool {
	switch o {
	case finished:
		return true
	case failed:
		return p.CountFailed
	case cancelled:
		return p.CountCancelled
	}
	return false
}

// completion tracks the number of tasks still to settle for one job.
type completion struct {
	policy       CompletionPolicy
	remaining    atomic.Int64
	unsuccessful atomic.Int64
}

func newCompletion(policy CompletionPolicy, tasks int) *completion {
	c := &completion{policy: policy}
	c.remaining.Store(int64(tasks))
	return c
}

// settle records one task outcome. It returns the job level event to emit
// when this outcome brings the counter to zero, and false otherwise.
func (c *completion) settle(o outcome) (Event, bool) {
	if !c.policy.counts(o) {
		return Event{}, false
	}
	if o != finished {
		c.unsuccessful.Add(1)
	}
	if c.remaining.Add(-1) != 0 {
		return Event{}, false
	}
	if c.unsuccessful.Load() > 0 {
		return jobEvent(JobFailed), true
	}
	return jobEvent(JobFinished), true
}
