// Package sampling provides built-in generators for the exploration engine:
// deterministic, model-free samplers useful for initial exploration, smoke
// runs and as references when validating the orchestration loop. They
// implement explore.Generator; Tell records observed trials without altering
// future proposals, so a resumed run continues the same proposal stream.
package sampling

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/explore-sim/explore-sim/explore"
)

// schema carries the declared search space shared by all samplers.
type schema struct {
	varying    []explore.VaryingParameter
	objectives []explore.Objective
	analyzed   []explore.Parameter
	observed   []*explore.Trial
}

func (s *schema) VaryingParameters() []explore.VaryingParameter { return s.varying }
func (s *schema) Objectives() []explore.Objective               { return s.objectives }
func (s *schema) AnalyzedParameters() []explore.Parameter       { return s.analyzed }

// Tell records the finished trial. Samplers are model-free: observations
// never change the proposal stream, which keeps resumed runs on the exact
// sequence an uninterrupted run would have produced.
func (s *schema) Tell(t *explore.Trial) {
	s.observed = append(s.observed, t)
}

// Observed returns the trials told so far, in tell order.
func (s *schema) Observed() []*explore.Trial { return s.observed }

// Random proposes uniform draws within each parameter's bounds, reproducible
// under a fixed seed.
type Random struct {
	schema
	dists []distuv.Uniform
}

// NewRandom builds a seeded uniform random sampler over the given space.
func NewRandom(varying []explore.VaryingParameter, objectives []explore.Objective,
	analyzed []explore.Parameter, seed uint64) *Random {
	src := rand.NewPCG(seed, seed)
	dists := make([]distuv.Uniform, len(varying))
	for i, p := range varying {
		dists[i] = distuv.Uniform{Min: p.LowerBound, Max: p.UpperBound, Src: src}
	}
	return &Random{
		schema: schema{varying: varying, objectives: objectives, analyzed: analyzed},
		dists:  dists,
	}
}

// Ask proposes n fresh uniform draws.
func (r *Random) Ask(n int) []*explore.Trial {
	trials := make([]*explore.Trial, 0, n)
	for range n {
		values := make(map[string]float64, len(r.varying))
		for i, p := range r.varying {
			values[p.Name] = r.dists[i].Rand()
		}
		trials = append(trials, &explore.Trial{Values: values})
	}
	return trials
}
