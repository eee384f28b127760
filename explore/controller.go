// The exploration controller: the top-level ask/evaluate/tell loop. A single
// goroutine drives proposal, dispatch, completion commit and generator
// feedback, which keeps the history store single-owner and lock-free. The
// only concurrency crossing the loop is inside the Evaluator, behind the
// Submit/IsDone/Result boundary.

package explore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// RunState is the lifecycle state of an exploration.
type RunState string

const (
	StateInit     RunState = "init"
	StateRunning  RunState = "running"
	StateDraining RunState = "draining"
	StateFinished RunState = "finished"
	StateError    RunState = "error"
)

// Exploration wires a generator, an evaluator pool and a history store into
// one run. Construct with NewExploration, drive with Run.
type Exploration struct {
	cfg   Config
	gen   Generator
	sched *Scheduler
	store HistoryStore

	state     RunState
	nextIndex int      // next trial index to assign
	completed int      // trials committed as completed
	failed    int      // trials committed as failed
	genFaults int      // consecutive malformed proposals
	pending   []*Trial // validated proposals awaiting a free slot
}

// NewExploration validates the configuration and wires the run context.
// The store must already be open; Run closes it on exit.
func NewExploration(cfg Config, gen Generator, ev Evaluator, store HistoryStore) (*Exploration, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if gen == nil || ev == nil || store == nil {
		return nil, fmt.Errorf("exploration: generator, evaluator and store are all required")
	}
	if fp, ok := FidelityParameter(gen); ok && fp.TargetValue != nil {
		logrus.Infof("exploration: fidelity parameter %q, target value %v", fp.Name, *fp.TargetValue)
	}
	return &Exploration{
		cfg:   cfg.withDefaults(),
		gen:   gen,
		sched: NewScheduler(cfg.SimWorkers, ev),
		store: store,
		state: StateInit,
	}, nil
}

// State returns the current lifecycle state.
func (e *Exploration) State() RunState { return e.state }

// Committed returns the number of trials counted against the budget so far.
func (e *Exploration) Committed() int {
	n := e.completed
	if !e.cfg.IgnoreFailed {
		n += e.failed
	}
	return n
}

// Run drives the exploration until the budget is exhausted or ctx is
// cancelled, then drains in-flight trials and closes the store. Per-trial
// failures never abort the run; only configuration-level faults do, leaving
// the store intact up to the last commit so a subsequent resume works.
func (e *Exploration) Run(ctx context.Context) error {
	if err := e.start(); err != nil {
		e.fail(err)
		return err
	}

	e.state = StateRunning
	logrus.Infof("exploration: running, max_evals=%d sim_workers=%d async=%v resumed_committed=%d",
		e.cfg.MaxEvals, e.cfg.SimWorkers, e.cfg.RunAsync, e.Committed())

	for e.state == StateRunning {
		if ctx.Err() != nil {
			logrus.Info("exploration: cancellation requested, draining")
			e.state = StateDraining
			break
		}

		progressed := false
		for _, c := range e.sched.PollCompleted() {
			e.commit(c)
			progressed = true
		}

		if e.budgetReached() {
			e.state = StateDraining
			break
		}

		if err := e.refill(); err != nil {
			e.drain()
			e.fail(err)
			return err
		}
		if e.submitPending() {
			progressed = true
		}

		if !progressed && len(e.pending) == 0 {
			time.Sleep(e.cfg.PollInterval)
		}
	}

	e.drain()
	e.state = StateFinished
	if err := e.store.Close(); err != nil {
		return fmt.Errorf("exploration: closing history store: %w", err)
	}
	logrus.Infof("exploration: finished, completed=%d failed=%d", e.completed, e.failed)
	return nil
}

// start replays a prior history into the generator when resuming. Every
// previously completed row is told in original commit order before the first
// Ask, so the generator reaches the same state an uninterrupted run would
// have. Rows left in flight by a crash are marked cancelled.
func (e *Exploration) start() error {
	if e.state != StateInit {
		return fmt.Errorf("exploration: Run called twice")
	}
	if !e.cfg.Resume {
		return nil
	}

	trials, err := e.store.Load()
	if err != nil {
		return fmt.Errorf("exploration: loading history for resume: %w", err)
	}
	for _, t := range trials {
		if t.Index >= e.nextIndex {
			e.nextIndex = t.Index + 1
		}
		switch {
		case t.Status == StatusCompleted:
			e.gen.Tell(t)
			e.completed++
		case t.Status == StatusFailed:
			e.gen.Tell(t)
			e.failed++
		case !t.Status.Terminal():
			t.Fault = "interrupted by restart"
			if err := t.advance(StatusCancelled); err != nil {
				return err
			}
			if err := e.store.Update(t); err != nil {
				return fmt.Errorf("exploration: cancelling interrupted trial %d: %w", t.Index, err)
			}
		}
	}
	logrus.Infof("exploration: resumed %d trials from history, next index %d", len(trials), e.nextIndex)
	return nil
}

// budgetReached reports whether no further proposals may be issued and all
// in-flight work has been accounted for.
func (e *Exploration) budgetReached() bool {
	return e.Committed() >= e.cfg.MaxEvals &&
		e.sched.InFlight() == 0 && len(e.pending) == 0
}

// remaining is the budget headroom available for new proposals.
func (e *Exploration) remaining() int {
	return e.cfg.MaxEvals - e.Committed() - e.sched.InFlight() - len(e.pending)
}

// refill asks the generator for new trials when the run mode allows it. In
// synchronous mode a fresh batch is requested only once the previous batch has
// fully committed; in asynchronous mode every free slot is refilled as soon as
// it opens.
func (e *Exploration) refill() error {
	n := min(e.sched.FreeSlots()-len(e.pending), e.remaining())
	if n <= 0 {
		return nil
	}
	if !e.cfg.RunAsync && (e.sched.InFlight() > 0 || len(e.pending) > 0) {
		return nil
	}

	genStarted := time.Now()
	proposals := e.gen.Ask(n)
	if len(proposals) > n {
		proposals = proposals[:n]
	}

	// A generator may legitimately run dry before the budget does (a finished
	// grid, a sweep). With nothing in flight left to wait for, the run is over.
	if len(proposals) == 0 && e.sched.InFlight() == 0 && len(e.pending) == 0 {
		logrus.Infof("exploration: generator exhausted after %d committed evaluations", e.Committed())
		e.state = StateDraining
		return nil
	}

	for _, t := range proposals {
		if err := t.validateValues(e.gen.VaryingParameters()); err != nil {
			e.genFaults++
			logrus.Warnf("exploration: rejected proposal (%d consecutive faults): %v", e.genFaults, err)
			if e.genFaults >= e.cfg.MaxGeneratorFaults {
				return fmt.Errorf("exploration: generator persistently malformed: %w", err)
			}
			continue
		}
		e.genFaults = 0
		t.Index = e.nextIndex
		e.nextIndex++
		t.Status = StatusProposed
		t.GenStartedTime = genStarted
		e.pending = append(e.pending, t)
	}
	return nil
}

// submitPending pushes validated proposals into free worker slots, persisting
// each dispatched trial. A capacity race leaves the trial queued for the next
// iteration instead of dropping it.
func (e *Exploration) submitPending() bool {
	submitted := false
	for len(e.pending) > 0 {
		t := e.pending[0]
		err := e.sched.Submit(t)
		if errors.Is(err, ErrCapacityExceeded) {
			break
		}
		e.pending = e.pending[1:]
		if err != nil {
			// Submission itself failed: terminal without ever occupying a slot.
			t.Fault = err.Error()
			t.SimEndedTime = time.Now()
			_ = t.advance(StatusFailed)
			if serr := e.store.Append(t); serr != nil {
				logrus.Errorf("exploration: recording failed submission of trial %d: %v", t.Index, serr)
			}
			e.gen.Tell(t)
			e.failed++
			continue
		}
		if serr := e.store.Append(t); serr != nil {
			logrus.Errorf("exploration: recording dispatch of trial %d: %v", t.Index, serr)
		}
		submitted = true
	}
	return submitted
}

// commit finalizes one completion: validates the result, persists the terminal
// row, and tells the generator. Commit order defines history order, which may
// differ from submission order.
func (e *Exploration) commit(c Completion) {
	t := c.Trial
	switch {
	case c.Err != nil:
		t.Fault = (&EvaluationError{Trial: t.Index, Cause: c.Err.Error()}).Error()
		_ = t.advance(StatusFailed)
	case c.Result == nil:
		t.Fault = (&EvaluationError{Trial: t.Index, Cause: "evaluator returned no result"}).Error()
		_ = t.advance(StatusFailed)
	default:
		if missing := missingOutput(c.Result, e.gen.Objectives(), e.gen.AnalyzedParameters()); missing != "" {
			t.Fault = (&IncompleteResultError{Trial: t.Index, Missing: missing}).Error()
			_ = t.advance(StatusFailed)
		} else {
			t.Objectives = c.Result.Objectives
			t.Analyzed = c.Result.Analyzed
			_ = t.advance(StatusCompleted)
		}
	}

	if err := e.store.Update(t); err != nil {
		logrus.Errorf("exploration: committing trial %d: %v", t.Index, err)
	}
	e.gen.Tell(t)

	if t.Status == StatusCompleted {
		e.completed++
		logrus.Infof("exploration: trial %d completed on worker %d (%d/%d committed)",
			t.Index, t.Worker, e.Committed(), e.cfg.MaxEvals)
	} else {
		e.failed++
		logrus.Warnf("exploration: trial %d failed: %s", t.Index, t.Fault)
	}
}

// drain stops proposing, waits out in-flight trials up to the grace timeout
// and marks whatever is left cancelled. Cancelled trials never count against
// the budget and are not told to the generator. Pending never-dispatched
// proposals are dropped without a history row.
func (e *Exploration) drain() {
	e.state = StateDraining
	e.pending = nil

	leftover := e.sched.Drain(e.cfg.DrainGrace, e.cfg.PollInterval, e.commit)
	for _, t := range leftover {
		t.Fault = "cancelled at shutdown"
		t.SimEndedTime = time.Now()
		_ = t.advance(StatusCancelled)
		if err := e.store.Update(t); err != nil {
			logrus.Errorf("exploration: recording cancellation of trial %d: %v", t.Index, err)
		}
		logrus.Warnf("exploration: trial %d cancelled after %s grace", t.Index, e.cfg.DrainGrace)
	}
}

// fail moves the run to the terminal error state, keeping the store intact up
// to the last successful commit.
func (e *Exploration) fail(err error) {
	e.state = StateError
	if cerr := e.store.Close(); cerr != nil {
		logrus.Errorf("exploration: closing history store after error: %v", cerr)
	}
	logrus.Errorf("exploration: aborted: %v", err)
}
