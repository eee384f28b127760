package explore

// Handle identifies one in-flight evaluation inside an Evaluator.
// Opaque to the engine.
type Handle string

// Result carries the outputs of one finished evaluation: the declared
// objective values plus any analyzed-parameter values.
type Result struct {
	Objectives map[string]float64
	Analyzed   map[string]float64
}

// Evaluator is the execution-backend capability: it runs one trial
// asynchronously and exposes completion through polling. How a result is
// produced (template rendering, subprocess launch, remote dispatch) is
// internal to the implementation; the engine treats each submission as
// at-most-once and never retries.
type Evaluator interface {
	// Submit starts the evaluation of t and returns a handle to poll.
	Submit(t *Trial) (Handle, error)
	// IsDone reports whether the evaluation behind h has finished,
	// successfully or not. Non-blocking.
	IsDone(h Handle) bool
	// Result returns the outputs of a finished evaluation, or the execution
	// error. Calling Result releases the handle.
	Result(h Handle) (*Result, error)
}

// missingOutput returns the name of the first declared objective or analyzed
// parameter absent from r, or "" when the result is complete.
func missingOutput(r *Result, objectives []Objective, analyzed []Parameter) string {
	for _, o := range objectives {
		if _, ok := r.Objectives[o.Name]; !ok {
			return o.Name
		}
	}
	for _, p := range analyzed {
		if _, ok := r.Analyzed[p.Name]; !ok {
			return p.Name
		}
	}
	return ""
}
