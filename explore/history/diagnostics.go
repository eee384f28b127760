// Read-only diagnostics over a history store: a stable snapshot keyed by
// trial index, with best-trial and objective-trace queries for external
// reporting. Nothing here mutates the store.

package history

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/explore-sim/explore-sim/explore"
)

// Inspect opens the store in dir using its own sidecar descriptor, takes a
// snapshot and closes it again. The read path for external reporting.
func Inspect(dir string) (*View, error) {
	desc, err := ReadDescriptor(filepath.Join(dir, sidecarFile))
	if err != nil {
		return nil, err
	}
	store, err := Open(dir, desc, true)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return store.View()
}

// View is an immutable snapshot of the history table plus its descriptor.
type View struct {
	desc   Descriptor
	trials []*explore.Trial
}

// View takes a snapshot of the current table, ordered by trial index.
func (s *Store) View() (*View, error) {
	trials, err := s.Load()
	if err != nil {
		return nil, err
	}
	sort.Slice(trials, func(i, j int) bool { return trials[i].Index < trials[j].Index })
	return &View{desc: s.desc, trials: trials}, nil
}

// Descriptor returns the parameter/objective definitions of the run.
func (v *View) Descriptor() Descriptor { return v.desc }

// Trials returns all rows, ordered by trial index.
func (v *View) Trials() []*explore.Trial { return v.trials }

// Completed returns the rows of successfully completed trials.
func (v *View) Completed() []*explore.Trial {
	var out []*explore.Trial
	for _, t := range v.trials {
		if t.Status == explore.StatusCompleted {
			out = append(out, t)
		}
	}
	return out
}

// TaskCounts returns the number of dispatched trials per task tag.
func (v *View) TaskCounts() map[string]int {
	counts := make(map[string]int)
	for _, t := range v.trials {
		if t.Status != explore.StatusProposed {
			counts[t.Task]++
		}
	}
	return counts
}

// objective resolves an objective by name; empty selects the first declared.
func (v *View) objective(name string) (explore.Objective, error) {
	if len(v.desc.Objectives) == 0 {
		return explore.Objective{}, fmt.Errorf("history: run declares no objectives")
	}
	if name == "" {
		return v.desc.Objectives[0], nil
	}
	for _, o := range v.desc.Objectives {
		if o.Name == name {
			return o, nil
		}
	}
	return explore.Objective{}, fmt.Errorf("history: unknown objective %q", name)
}

// BestTrial returns the completed trial with the best value of the named
// objective (first declared objective when name is empty), honoring its
// minimize flag.
func (v *View) BestTrial(name string) (*explore.Trial, error) {
	obj, err := v.objective(name)
	if err != nil {
		return nil, err
	}
	var best *explore.Trial
	for _, t := range v.Completed() {
		val, ok := t.Objectives[obj.Name]
		if !ok {
			continue
		}
		if best == nil || better(obj, val, best.Objectives[obj.Name]) {
			best = t
		}
	}
	if best == nil {
		return nil, fmt.Errorf("history: no completed trial reports objective %q", obj.Name)
	}
	return best, nil
}

// ObjectiveTrace returns, per completed trial in commit order, the cumulative
// best value of the named objective.
func (v *View) ObjectiveTrace(name string) (indices []int, trace []float64, err error) {
	obj, err := v.objective(name)
	if err != nil {
		return nil, nil, err
	}
	completed := v.Completed()
	sort.Slice(completed, func(i, j int) bool {
		return completed[i].SimEndedTime.Before(completed[j].SimEndedTime)
	})
	for _, t := range completed {
		val, ok := t.Objectives[obj.Name]
		if !ok {
			continue
		}
		if len(trace) == 0 || better(obj, val, trace[len(trace)-1]) {
			trace = append(trace, val)
		} else {
			trace = append(trace, trace[len(trace)-1])
		}
		indices = append(indices, t.Index)
	}
	return indices, trace, nil
}

func better(obj explore.Objective, a, b float64) bool {
	if obj.Minimize {
		return a < b
	}
	return a > b
}
