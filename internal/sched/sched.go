// Package sched runs cooperative timers on the caller's goroutine.
//
// The viewer is single-threaded: nothing fires on its own. The host advances
// the scheduler from its event loop and due callbacks run synchronously inside
// that call, in deadline order.
package sched

import (
	"sort"
	"time"
)

// Scheduler holds pending timers against a manually advanced clock.
type Scheduler struct {
	now    time.Time
	seq    uint64
	timers []*Timer
}

// Timer is a pending callback. The zero value is not usable; create timers
// with Scheduler.After.
type Timer struct {
	s        *Scheduler
	deadline time.Time
	seq      uint64
	fn       func()
	active   bool
}

// New returns a scheduler whose clock starts at start.
func New(start time.Time) *Scheduler {
	return &Scheduler{now: start}
}

// Now returns the scheduler's current time.
func (s *Scheduler) Now() time.Time { return s.now }

// After schedules fn to run once d has elapsed on the scheduler clock.
func (s *Scheduler) After(d time.Duration, fn func()) *Timer {
	s.seq++
	t := &Timer{s: s, deadline: s.now.Add(d), seq: s.seq, fn: fn, active: true}
	s.timers = append(s.timers, t)
	return t
}

// Pending returns the number of armed timers.
func (s *Scheduler) Pending() int {
	n := 0
	for _, t := range s.timers {
		if t.active {
			n++
		}
	}
	return n
}

// Advance moves the clock forward by d and fires every timer that came due.
func (s *Scheduler) Advance(d time.Duration) int {
	return s.AdvanceTo(s.now.Add(d))
}

// AdvanceTo moves the clock to t (never backwards) and fires every timer whose
// deadline is not after t. Callbacks may schedule or stop other timers; newly
// scheduled timers that are already due fire in the same call. It returns the
// number of callbacks run.
func (s *Scheduler) AdvanceTo(t time.Time) int {
	if t.After(s.now) {
		s.now = t
	}
	fired := 0
	for {
		next := s.nextDue()
		if next == nil {
			break
		}
		next.active = false
		s.compact()
		next.fn()
		fired++
	}
	return fired
}

// StopAll cancels every pending timer.
func (s *Scheduler) StopAll() {
	for _, t := range s.timers {
		t.active = false
	}
	s.timers = nil
}

func (s *Scheduler) nextDue() *Timer {
	due := make([]*Timer, 0, len(s.timers))
	for _, t := range s.timers {
		if t.active && !t.deadline.After(s.now) {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].deadline.Equal(due[j].deadline) {
			return due[i].seq < due[j].seq
		}
		return due[i].deadline.Before(due[j].deadline)
	})
	return due[0]
}

func (s *Scheduler) compact() {
	kept := s.timers[:0]
	for _, t := range s.timers {
		if t.active {
			kept = append(kept, t)
		}
	}
	s.timers = kept
}

// Stop cancels the timer. It reports whether the timer was still pending.
// Stop on a nil timer is a no-op.
func (t *Timer) Stop() bool {
	if t == nil || !t.active {
		return false
	}
	t.active = false
	t.s.compact()
	return true
}

// Active reports whether the timer is still pending.
func (t *Timer) Active() bool {
	return t != nil && t.active
}

// Reset re-arms the timer to fire d from now, whether or not it already fired.
func (t *Timer) Reset(d time.Duration) {
	if t == nil {
		return
	}
	if !t.active {
		t.s.timers = append(t.s.timers, t)
	}
	t.s.seq++
	t.seq = t.s.seq
	t.deadline = t.s.now.Add(d)
	t.active = true
}
