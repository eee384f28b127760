package explore

// Generator is the optimization-policy capability: a stateful, non-reentrant
// black box that proposes candidate trials and observes finished ones. The
// engine guarantees at-most-once Tell delivery per trial, issued strictly in
// history commit order, so implementations need no duplicate detection.
//
// Ask may return fewer than n trials (an exhausted grid, a model that only
// proposes full batches); it must not block indefinitely. Proposed trials
// carry Values and optionally a Task tag; the controller assigns indices and
// timestamps.
type Generator interface {
	Ask(n int) []*Trial
	Tell(t *Trial)

	VaryingParameters() []VaryingParameter
	Objectives() []Objective
	AnalyzedParameters() []Parameter
}

// TaskGenerator is implemented by generators that tag trials for multitask
// routing. The engine passes each trial's task tag through to evaluation
// dispatch; initialization/batch sizing per task (NInit, NOpt) happens
// entirely inside the generator.
type TaskGenerator interface {
	Generator
	Tasks() []Task
}

// FidelityParameter returns the fidelity dimension of the generator's search
// space, if one is declared. Reported once at construction time so the
// generator knows its full-fidelity reference; scheduling never inspects it.
func FidelityParameter(g Generator) (VaryingParameter, bool) {
	for _, p := range g.VaryingParameters() {
		if p.IsFidelity {
			return p, true
		}
	}
	return VaryingParameter{}, false
}
