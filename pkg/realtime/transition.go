package realtime

import (
	"math"
	"time"
)

// Transition holds the timing state for a single timed transition: how long it
// runs and when it started. It does not hold what is being transitioned; the
// owner composes it and reacts to Complete(now) by finalizing its own state.
type Transition struct {
	Duration  time.Duration
	StartedAt time.Time
}

// Begin starts the transition at now. Any running transition is replaced.
func (t *Transition) Begin(now time.Time) {
	t.StartedAt = now
}

// Active reports whether a transition has begun and not yet completed.
func (t *Transition) Active() bool {
	return !t.StartedAt.IsZero()
}

// Deadline returns when the running transition completes, or the zero time
// when nothing is running.
func (t *Transition) Deadline() time.Time {
	if !t.Active() {
		return time.Time{}
	}
	return t.StartedAt.Add(t.Duration)
}

// Due reports whether the running transition has reached its deadline.
func (t *Transition) Due(now time.Time) bool {
	return t.Active() && !now.Before(t.Deadline())
}

// NextWake returns the next time the owner should call Complete, and whether a
// transition is running. An overdue transition wakes immediately.
func (t *Transition) NextWake(now time.Time) (time.Time, bool) {
	if !t.Active() {
		return time.Time{}, false
	}
	deadline := t.Deadline()
	if now.After(deadline) {
		return now, true
	}
	return deadline, true
}

// Complete ends the transition if it is due. It returns true exactly once per
// Begin; the caller finalizes its state when it does.
func (t *Transition) Complete(now time.Time) bool {
	if !t.Due(now) {
		return false
	}
	t.StartedAt = time.Time{}
	return true
}

// Progress returns the linear fraction of the running transition that has
// elapsed at now, in [0, 1]. It is 0 when nothing is running.
func (t *Transition) Progress(now time.Time) float64 {
	if !t.Active() {
		return 0
	}
	if t.Duration <= 0 {
		return 1
	}
	p := float64(now.Sub(t.StartedAt)) / float64(t.Duration)
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

// Remaining returns the time left before the deadline, never negative.
func (t *Transition) Remaining(now time.Time) time.Duration {
	if !t.Active() {
		return 0
	}
	left := t.Deadline().Sub(now)
	if left < 0 {
		return 0
	}
	return left
}

// EaseOutExpo maps linear progress p in [0, 1] onto an exponential ease-out
// curve: fast at first, settling gently at 1.
func EaseOutExpo(p float64) float64 {
	if p <= 0 {
		return 0
	}
	if p >= 1 {
		return 1
	}
	return 1 - math.Pow(2, -10*p)
}
