// The bounded worker-slot pool. Tracks at most capacity in-flight trials,
// submits new ones to the evaluator when a slot is free, and sweeps occupied
// slots for completions. Driven entirely by the single controller goroutine,
// so it carries no locking of its own; the evaluator boundary is where any
// cross-process or cross-goroutine concurrency lives.

package explore

import (
	"time"

	"github.com/sirupsen/logrus"
)

// slot holds one in-flight trial, or nil when free.
type slot struct {
	trial  *Trial
	handle Handle
}

// Completion pairs a finished trial with its result or execution error.
// Exactly one of Result/Err is set.
type Completion struct {
	Trial  *Trial
	Result *Result
	Err    error
}

// Scheduler is the worker pool: capacity slots, each holding at most one
// in-flight trial submitted to the evaluator.
type Scheduler struct {
	evaluator Evaluator
	slots     []slot
}

// NewScheduler builds a pool of capacity worker slots backed by ev.
func NewScheduler(capacity int, ev Evaluator) *Scheduler {
	return &Scheduler{
		evaluator: ev,
		slots:     make([]slot, capacity),
	}
}

// Capacity returns the configured number of worker slots.
func (s *Scheduler) Capacity() int { return len(s.slots) }

// InFlight returns the number of occupied slots.
func (s *Scheduler) InFlight() int {
	n := 0
	for i := range s.slots {
		if s.slots[i].trial != nil {
			n++
		}
	}
	return n
}

// FreeSlots returns the number of unoccupied slots.
func (s *Scheduler) FreeSlots() int { return len(s.slots) - s.InFlight() }

// Submit assigns t to a free slot and hands it to the evaluator. Returns
// ErrCapacityExceeded when the pool is full; submission errors from the
// evaluator surface as-is with the slot left free.
func (s *Scheduler) Submit(t *Trial) error {
	idx := -1
	for i := range s.slots {
		if s.slots[i].trial == nil {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrCapacityExceeded
	}

	h, err := s.evaluator.Submit(t)
	if err != nil {
		return err
	}

	if err := t.advance(StatusDispatched); err != nil {
		return err
	}
	t.SimStartedTime = time.Now()
	t.Worker = idx + 1 // worker slots are 1-based in the history store
	t.SimID = string(h)
	s.slots[idx] = slot{trial: t, handle: h}

	logrus.Debugf("scheduler: trial %d dispatched to worker %d", t.Index, t.Worker)
	return nil
}

// PollCompleted sweeps all occupied slots once, non-blocking, collecting every
// evaluation the evaluator reports finished. Finished slots are freed and the
// trial's SimEndedTime is stamped; the caller decides terminal status.
func (s *Scheduler) PollCompleted() []Completion {
	var done []Completion
	for i := range s.slots {
		t := s.slots[i].trial
		if t == nil {
			continue
		}
		if !s.evaluator.IsDone(s.slots[i].handle) {
			// Still executing: the first poll after dispatch observes it running.
			if t.Status == StatusDispatched {
				_ = t.advance(StatusRunning)
			}
			continue
		}
		if t.Status == StatusDispatched {
			_ = t.advance(StatusRunning)
		}
		res, err := s.evaluator.Result(s.slots[i].handle)
		t.SimEndedTime = time.Now()
		s.slots[i] = slot{}
		done = append(done, Completion{Trial: t, Result: res, Err: err})
	}
	return done
}

// Drain polls until every in-flight trial completes or the timeout elapses,
// forwarding completions to commit. It returns the trials still unfinished
// when the grace period ran out; the caller marks those cancelled.
func (s *Scheduler) Drain(timeout time.Duration, poll time.Duration, commit func(Completion)) []*Trial {
	deadline := time.Now().Add(timeout)
	for s.InFlight() > 0 && time.Now().Before(deadline) {
		for _, c := range s.PollCompleted() {
			commit(c)
		}
		if s.InFlight() > 0 {
			time.Sleep(poll)
		}
	}

	var leftover []*Trial
	for i := range s.slots {
		if t := s.slots[i].trial; t != nil {
			leftover = append(leftover, t)
			s.slots[i] = slot{}
		}
	}
	return leftover
}
