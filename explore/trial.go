// Defines the Trial struct that models one candidate parameter configuration
// through its lifecycle. Tracks proposal values, task tag, status transitions,
// timestamps and the final evaluated outputs.

package explore

import (
	"fmt"
	"time"
)

// TrialStatus represents the lifecycle state of a trial.
type TrialStatus string

const (
	StatusProposed   TrialStatus = "proposed"
	StatusDispatched TrialStatus = "dispatched"
	StatusRunning    TrialStatus = "running"
	StatusCompleted  TrialStatus = "completed"
	StatusFailed     TrialStatus = "failed"
	StatusCancelled  TrialStatus = "cancelled"
)

// statusRank orders statuses along the only legal direction of travel.
// Terminal states share a rank: exactly one of them may be entered, once.
var statusRank = map[TrialStatus]int{
	StatusProposed:   0,
	StatusDispatched: 1,
	StatusRunning:    2,
	StatusCompleted:  3,
	StatusFailed:     3,
	StatusCancelled:  3,
}

// Terminal reports whether s is a final state.
func (s TrialStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// Trial is the unit of work: one parameter configuration proposed by the
// generator, evaluated by a worker slot and committed to the history store.
type Trial struct {
	Index int // globally unique, monotonically assigned by the controller

	Values map[string]float64 // proposed value per varying parameter
	Task   string             // task tag for multitask routing (empty = single task)

	Status TrialStatus

	GenStartedTime time.Time // when the generator returned this proposal
	SimStartedTime time.Time // when a worker slot picked it up
	SimEndedTime   time.Time // when the evaluation finished

	Worker int    // worker slot (1-based) the trial ran on; 0 = never dispatched
	SimID  string // opaque evaluation id issued by the evaluator

	Objectives map[string]float64 // objective values, set on completion
	Analyzed   map[string]float64 // analyzed-parameter values, set on completion
	Fault      string             // diagnostic payload for failed/cancelled trials
}

// advance moves the trial to a new status, enforcing forward-only transitions.
func (t *Trial) advance(to TrialStatus) error {
	from := t.Status
	if statusRank[to] <= statusRank[from] {
		return fmt.Errorf("trial %d: illegal status transition %s -> %s", t.Index, from, to)
	}
	t.Status = to
	return nil
}

// String returns a human-readable one-line summary of the trial.
func (t *Trial) String() string {
	return fmt.Sprintf("Trial[%d] task=%q status=%s worker=%d values=%v",
		t.Index, t.Task, t.Status, t.Worker, t.Values)
}

// validateValues checks that the trial declares a value for every varying
// parameter and that each value lies within the declared bounds. Extra values
// for undeclared parameters are also rejected: the generator and the engine
// must agree on the search space exactly.
func (t *Trial) validateValues(params []VaryingParameter) error {
	for _, p := range params {
		v, ok := t.Values[p.Name]
		if !ok {
			return &MalformedTrialError{
				Trial:  t.Index,
				Reason: fmt.Sprintf("missing value for varying parameter %q", p.Name),
			}
		}
		if !p.Contains(v) {
			return &MalformedTrialError{
				Trial: t.Index,
				Reason: fmt.Sprintf("value %v for %q outside bounds [%v, %v]",
					v, p.Name, p.LowerBound, p.UpperBound),
			}
		}
	}
	if len(t.Values) != len(params) {
		declared := make(map[string]bool, len(params))
		for _, p := range params {
			declared[p.Name] = true
		}
		for name := range t.Values {
			if !declared[name] {
				return &MalformedTrialError{
					Trial:  t.Index,
					Reason: fmt.Sprintf("value for undeclared parameter %q", name),
				}
			}
		}
	}
	return nil
}
