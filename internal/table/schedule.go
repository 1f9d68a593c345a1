package table

import "time"

// scheduledCallback is the "single per-table scheduler" the design notes
// call for: callbacks re-enter the actor (via tick, which already holds
// t.mu) instead of firing as OS timers on their own goroutines. Each
// carries the hand round it was scheduled for so a callback that fires
// after the hand already moved on is dropped instead of acting on stale
// state.
type scheduledCallback struct {
	at     time.Time
	round  uint32
	fn     func()
}

func (t *Table) scheduleLocked(delay time.Duration, fn func()) {
	t.scheduled = append(t.scheduled, scheduledCallback{
		at:    time.Now().Add(delay),
		round: t.round,
		fn:    fn,
	})
}

// runScheduledLocked fires every due callback still matching the current
// round, in the order they were scheduled.
func (t *Table) runScheduledLocked(now time.Time) {
	if len(t.scheduled) == 0 {
		return
	}
	due := t.scheduled
	t.scheduled = nil
	var remaining []scheduledCallback
	for _, cb := range due {
		if now.Before(cb.at) {
			remaining = append(remaining, cb)
			continue
		}
		if cb.round != t.round {
			continue // stale: the hand moved on since this was scheduled
		}
		cb.fn()
	}
	// Callbacks scheduled by the ones that just fired were appended to
	// t.scheduled and queue after everything already waiting.
	t.scheduled = append(remaining, t.scheduled...)
}
