package evaluate

import (
	"fmt"
	"sync"

	"github.com/explore-sim/explore-sim/explore"
)

// Multitask routes each trial to the evaluator registered for its task tag,
// so cheap and expensive variants of the same parameter space can use
// different backends. IsDone and Result fan out to the child that owns the
// handle.
type Multitask struct {
	evaluators map[string]explore.Evaluator

	mu     sync.Mutex
	owners map[explore.Handle]explore.Evaluator
}

// NewMultitask builds a task-routing evaluator. Tasks and evaluators are
// paired positionally, mirroring how a multitask generator declares them.
func NewMultitask(tasks []explore.Task, evaluators []explore.Evaluator) (*Multitask, error) {
	if len(tasks) != len(evaluators) {
		return nil, fmt.Errorf("evaluate: %d tasks but %d evaluators", len(tasks), len(evaluators))
	}
	if len(tasks) == 0 {
		return nil, fmt.Errorf("evaluate: multitask evaluator needs at least one task")
	}
	byName := make(map[string]explore.Evaluator, len(tasks))
	for i, task := range tasks {
		if _, dup := byName[task.Name]; dup {
			return nil, fmt.Errorf("evaluate: duplicate task %q", task.Name)
		}
		byName[task.Name] = evaluators[i]
	}
	return &Multitask{
		evaluators: byName,
		owners:     make(map[explore.Handle]explore.Evaluator),
	}, nil
}

// Submit dispatches t to the evaluator owning its task tag.
func (m *Multitask) Submit(t *explore.Trial) (explore.Handle, error) {
	ev, ok := m.evaluators[t.Task]
	if !ok {
		return "", fmt.Errorf("evaluate: trial %d tagged with unknown task %q", t.Index, t.Task)
	}
	h, err := ev.Submit(t)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	m.owners[h] = ev
	m.mu.Unlock()
	return h, nil
}

// IsDone reports completion of the evaluation behind h.
func (m *Multitask) IsDone(h explore.Handle) bool {
	m.mu.Lock()
	ev, ok := m.owners[h]
	m.mu.Unlock()
	return ok && ev.IsDone(h)
}

// Result collects from the owning child and releases the routing entry.
func (m *Multitask) Result(h explore.Handle) (*explore.Result, error) {
	m.mu.Lock()
	ev, ok := m.owners[h]
	delete(m.owners, h)
	m.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("evaluate: unknown handle %q", h)
	}
	return ev.Result(h)
}
