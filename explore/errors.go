// Error taxonomy of the engine. Transient conditions (ErrCapacityExceeded) are
// retried inside the controller loop; per-trial faults are isolated and land in
// the history store; configuration-level faults abort the run.

package explore

import (
	"errors"
	"fmt"
)

// ErrCapacityExceeded is returned by Scheduler.Submit when no worker slot is
// free. Transient: the controller requeues the trial for the next iteration.
var ErrCapacityExceeded = errors.New("worker pool capacity exceeded")

// MalformedTrialError reports a generator proposal that is missing a varying
// parameter value or violates the declared bounds. The trial is never
// submitted; repeated faults beyond the configured threshold are fatal.
type MalformedTrialError struct {
	Trial  int
	Reason string
}

func (e *MalformedTrialError) Error() string {
	return fmt.Sprintf("malformed trial %d: %s", e.Trial, e.Reason)
}

// EvaluationError reports the failed execution of a single trial. The trial is
// recorded as failed with the diagnostic payload; the run continues.
type EvaluationError struct {
	Trial int
	Cause string
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluation of trial %d failed: %s", e.Trial, e.Cause)
}

// IncompleteResultError reports an evaluation that finished without populating
// a declared objective or analyzed parameter. Treated as an evaluation failure.
type IncompleteResultError struct {
	Trial   int
	Missing string
}

func (e *IncompleteResultError) Error() string {
	return fmt.Sprintf("incomplete result for trial %d: missing %q", e.Trial, e.Missing)
}

// ResumeMismatchError reports that the sidecar descriptor of a resumed history
// does not match the currently configured parameter/objective set. Fatal at
// startup.
type ResumeMismatchError struct {
	Detail string
}

func (e *ResumeMismatchError) Error() string {
	return fmt.Sprintf("resume mismatch: %s", e.Detail)
}
