// Package evaluate provides evaluation backends for the exploration engine.
//
// The Function evaluator runs a user analysis function per trial on its own
// goroutine, which is the in-process equivalent of launching a simulation and
// parsing its output. The Multitask evaluator routes trials to per-task
// backends by their task tag.
package evaluate

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/explore-sim/explore-sim/explore"
)

// AnalysisFunc turns the proposed parameter values of one trial into its
// output values, keyed by objective and analyzed-parameter name.
type AnalysisFunc func(values map[string]float64) (map[string]float64, error)

// evaluation tracks one submission from Submit until Result collects it.
type evaluation struct {
	done   bool
	result *explore.Result
	err    error
}

// Function evaluates trials by calling an analysis function on a goroutine
// per submission. Safe for the polling pattern the scheduler uses: Submit,
// then IsDone until true, then Result exactly once.
type Function struct {
	fn         AnalysisFunc
	objectives []explore.Objective
	analyzed   []explore.Parameter

	// Delay, when positive, is slept before each evaluation. Used to model
	// simulation runtime in examples and tests.
	Delay time.Duration

	mu      sync.Mutex
	pending map[explore.Handle]*evaluation
}

// NewFunction builds a function evaluator reporting the given objectives and
// analyzed parameters. The analysis function must populate an output value
// for every declared name.
func NewFunction(fn AnalysisFunc, objectives []explore.Objective, analyzed []explore.Parameter) *Function {
	return &Function{
		fn:         fn,
		objectives: objectives,
		analyzed:   analyzed,
		pending:    make(map[explore.Handle]*evaluation),
	}
}

// Submit starts the evaluation of t on its own goroutine.
func (f *Function) Submit(t *explore.Trial) (explore.Handle, error) {
	if f.fn == nil {
		return "", fmt.Errorf("evaluate: no analysis function configured")
	}

	h := explore.Handle(uuid.NewString())
	ev := &evaluation{}
	f.mu.Lock()
	f.pending[h] = ev
	f.mu.Unlock()

	values := make(map[string]float64, len(t.Values))
	for k, v := range t.Values {
		values[k] = v
	}

	go func() {
		if f.Delay > 0 {
			time.Sleep(f.Delay)
		}
		outputs, err := f.fn(values)

		f.mu.Lock()
		defer f.mu.Unlock()
		if err != nil {
			ev.err = err
		} else {
			ev.result = splitOutputs(outputs, f.objectives, f.analyzed)
		}
		ev.done = true
	}()

	return h, nil
}

// IsDone reports whether the evaluation behind h has finished.
func (f *Function) IsDone(h explore.Handle) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	ev, ok := f.pending[h]
	return ok && ev.done
}

// Result returns the outputs of a finished evaluation and releases the handle.
func (f *Function) Result(h explore.Handle) (*explore.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ev, ok := f.pending[h]
	if !ok {
		return nil, fmt.Errorf("evaluate: unknown handle %q", h)
	}
	if !ev.done {
		return nil, fmt.Errorf("evaluate: handle %q is still running", h)
	}
	delete(f.pending, h)
	return ev.result, ev.err
}

// splitOutputs partitions a flat output map into objective and analyzed
// values. Names the analysis function did not populate are simply absent; the
// controller decides whether that makes the result incomplete.
func splitOutputs(outputs map[string]float64, objectives []explore.Objective, analyzed []explore.Parameter) *explore.Result {
	res := &explore.Result{
		Objectives: make(map[string]float64),
		Analyzed:   make(map[string]float64),
	}
	for _, o := range objectives {
		if v, ok := outputs[o.Name]; ok {
			res.Objectives[o.Name] = v
		}
	}
	for _, p := range analyzed {
		if v, ok := outputs[p.Name]; ok {
			res.Analyzed[p.Name] = v
		}
	}
	return res
}
