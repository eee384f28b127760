package sampling

import (
	"gonum.org/v1/gonum/floats"

	"github.com/explore-sim/explore-sim/explore"
)

// Line sweeps each parameter along a line between its bounds while holding
// every other parameter at a default value (the midpoint of its bounds unless
// overridden). Useful for one-at-a-time sensitivity scans.
type Line struct {
	schema
	defaults map[string]float64
	sweeps   []map[string]float64 // precomputed proposals, one sweep per parameter
	next     int
}

// NewLine builds a line sampler with steps points per parameter sweep.
// defaults may override the midpoint baseline per parameter name; nil keeps
// all midpoints.
func NewLine(varying []explore.VaryingParameter, objectives []explore.Objective,
	analyzed []explore.Parameter, steps int, defaults map[string]float64) *Line {
	if steps < 2 {
		steps = 2
	}
	base := make(map[string]float64, len(varying))
	for _, p := range varying {
		if v, ok := defaults[p.Name]; ok {
			base[p.Name] = v
		} else {
			base[p.Name] = (p.LowerBound + p.UpperBound) / 2
		}
	}

	var sweeps []map[string]float64
	for _, p := range varying {
		axis := floats.Span(make([]float64, steps), p.LowerBound, p.UpperBound)
		for _, v := range axis {
			values := make(map[string]float64, len(varying))
			for name, d := range base {
				values[name] = d
			}
			values[p.Name] = v
			sweeps = append(sweeps, values)
		}
	}

	return &Line{
		schema:   schema{varying: varying, objectives: objectives, analyzed: analyzed},
		defaults: base,
		sweeps:   sweeps,
	}
}

// Remaining returns the number of sweep points not yet proposed.
func (l *Line) Remaining() int { return len(l.sweeps) - l.next }

// Ask proposes the next min(n, remaining) sweep points.
func (l *Line) Ask(n int) []*explore.Trial {
	var trials []*explore.Trial
	for len(trials) < n && l.next < len(l.sweeps) {
		trials = append(trials, &explore.Trial{Values: l.sweeps[l.next]})
		l.next++
	}
	return trials
}
