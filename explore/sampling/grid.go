package sampling

import (
	"gonum.org/v1/gonum/floats"

	"github.com/explore-sim/explore-sim/explore"
)

// Grid proposes every point of a cartesian grid over the search space, with a
// fixed number of points per dimension including both bounds. Ask returns
// fewer trials than requested once the grid is exhausted, and none thereafter.
type Grid struct {
	schema
	axes [][]float64 // per-dimension grid values
	next int         // index of the next unproposed grid point
	size int         // total number of grid points
}

// NewGrid builds a grid sampler with pointsPerDim values along each dimension.
func NewGrid(varying []explore.VaryingParameter, objectives []explore.Objective,
	analyzed []explore.Parameter, pointsPerDim int) *Grid {
	if pointsPerDim < 2 {
		pointsPerDim = 2
	}
	axes := make([][]float64, len(varying))
	size := 1
	for i, p := range varying {
		axes[i] = floats.Span(make([]float64, pointsPerDim), p.LowerBound, p.UpperBound)
		size *= pointsPerDim
	}
	return &Grid{
		schema: schema{varying: varying, objectives: objectives, analyzed: analyzed},
		axes:   axes,
		size:   size,
	}
}

// Remaining returns the number of grid points not yet proposed.
func (g *Grid) Remaining() int { return g.size - g.next }

// Ask proposes the next min(n, remaining) grid points in row-major order.
func (g *Grid) Ask(n int) []*explore.Trial {
	var trials []*explore.Trial
	for len(trials) < n && g.next < g.size {
		values := make(map[string]float64, len(g.varying))
		idx := g.next
		// Row-major decode: the last dimension varies fastest.
		for dim := len(g.axes) - 1; dim >= 0; dim-- {
			axis := g.axes[dim]
			values[g.varying[dim].Name] = axis[idx%len(axis)]
			idx /= len(axis)
		}
		trials = append(trials, &explore.Trial{Values: values})
		g.next++
	}
	return trials
}
