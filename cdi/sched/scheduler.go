package sched

import (
	"log/slog"
	"time"

	"github.com/google/btree"
)

// event is a pending timer expiry. seq breaks ties between events scheduled
// for the same instant so they fire in the order they were armed.
type event struct {
	when  time.Duration
	seq   uint64
	timer *Timer
}

func eventLess(a, b event) bool {
	if a.when != b.when {
		return a.when < b.when
	}
	return a.seq < b.seq
}

// Scheduler is a discrete-event queue driven in virtual time. Time is the
// emulated duration since power-on; it only moves forward when RunUntil is called.
type Scheduler struct {
	queue *btree.BTreeG[event]
	now   time.Duration
	seq   uint64
	fired uint64
}

// New creates an empty scheduler positioned at time zero.
func New() *Scheduler {
	return &Scheduler{
		queue: btree.NewG(8, eventLess),
	}
}

// Now returns the current virtual time.
func (s *Scheduler) Now() time.Duration {
	return s.now
}

// Pending returns the number of armed timers.
func (s *Scheduler) Pending() int {
	return s.queue.Len()
}

// Fired returns the number of callbacks executed so far.
func (s *Scheduler) Fired() uint64 {
	return s.fired
}

// Next returns the expiry of the earliest armed timer.
func (s *Scheduler) Next() (time.Duration, bool) {
	ev, ok := s.queue.Min()
	if !ok {
		return 0, false
	}
	return ev.when, true
}

// RunUntil fires, in time order, every event due at or before target, then
// moves the clock to target. Callbacks may arm timers; those are honored in
// the same call if they fall inside the window.
func (s *Scheduler) RunUntil(target time.Duration) int {
	count := 0
	for {
		ev, ok := s.queue.Min()
		if !ok || ev.when > target {
			break
		}
		s.queue.DeleteMin()
		if ev.when > s.now {
			s.now = ev.when
		}
		ev.timer.armed = false
		s.fired++
		count++
		ev.timer.callback()
	}
	if target > s.now {
		s.now = target
	}
	return count
}

// Reset drops every pending event and rewinds the clock.
func (s *Scheduler) Reset() {
	s.queue.Ascend(func(ev event) bool {
		ev.timer.armed = false
		return true
	})
	s.queue.Clear(false)
	s.now = 0
	s.fired = 0
}

func (s *Scheduler) schedule(t *Timer, when time.Duration) {
	if t.armed {
		s.queue.Delete(t.pending)
	}
	s.seq++
	t.pending = event{when: when, seq: s.seq, timer: t}
	t.armed = true
	s.queue.ReplaceOrInsert(t.pending)
}

func (s *Scheduler) cancel(t *Timer) {
	if !t.armed {
		return
	}
	s.queue.Delete(t.pending)
	t.armed = false
}

// Timer is a one-shot timer owned by a device. A timer has at most one
// pending expiry: arming it again replaces the previous one, and it must be
// re-armed from its callback to repeat.
type Timer struct {
	sched    *Scheduler
	name     string
	callback func()
	armed    bool
	pending  event
}

// NewTimer allocates an unarmed timer.
func (s *Scheduler) NewTimer(name string, callback func()) *Timer {
	return &Timer{
		sched:    s,
		name:     name,
		callback: callback,
	}
}

// Adjust arms the timer to fire delay after the current virtual time.
func (t *Timer) Adjust(delay time.Duration) {
	if delay < 0 {
		slog.Debug("Negative timer delay clamped", "timer", t.name, "delay", delay)
		delay = 0
	}
	t.sched.schedule(t, t.sched.now+delay)
}

// AdjustAt arms the timer to fire at an absolute virtual time.
func (t *Timer) AdjustAt(when time.Duration) {
	if when < t.sched.now {
		when = t.sched.now
	}
	t.sched.schedule(t, when)
}

// Cancel disarms the timer. Equivalent to adjusting it to "never".
func (t *Timer) Cancel() {
	t.sched.cancel(t)
}

// Armed reports whether the timer has a pending expiry.
func (t *Timer) Armed() bool {
	return t.armed
}

// Expire returns the absolute time of the pending expiry.
func (t *Timer) Expire() (time.Duration, bool) {
	return t.pending.when, t.armed
}

// Remaining returns the time left before the pending expiry.
func (t *Timer) Remaining() (time.Duration, bool) {
	if !t.armed {
		return 0, false
	}
	return t.pending.when - t.sched.now, true
}

// Name returns the label the timer was created with.
func (t *Timer) Name() string {
	return t.name
}
