package sampling

import "github.com/explore-sim/explore-sim/explore"

// Multitask wraps a value-proposing sampler and tags its proposals with task
// names: first the initialization block (NInit trials per task, tasks in
// declaration order), then repeating optimization batches (NOpt per task).
// It implements explore.TaskGenerator.
type Multitask struct {
	inner explore.Generator
	tasks []explore.Task
	tags  []string // initialization tags, consumed first
	cycle []string // repeating per-batch tag pattern
	pos   int      // position within the repeating cycle
}

// NewMultitask builds a task-tagging sampler around inner.
func NewMultitask(inner explore.Generator, tasks []explore.Task) *Multitask {
	m := &Multitask{inner: inner, tasks: tasks}
	for _, task := range tasks {
		for range task.NInit {
			m.tags = append(m.tags, task.Name)
		}
	}
	for _, task := range tasks {
		for range task.NOpt {
			m.cycle = append(m.cycle, task.Name)
		}
	}
	return m
}

func (m *Multitask) VaryingParameters() []explore.VaryingParameter { return m.inner.VaryingParameters() }
func (m *Multitask) Objectives() []explore.Objective               { return m.inner.Objectives() }
func (m *Multitask) AnalyzedParameters() []explore.Parameter       { return m.inner.AnalyzedParameters() }

// Tasks returns the declared tasks.
func (m *Multitask) Tasks() []explore.Task { return m.tasks }

// Tell forwards the observation to the wrapped sampler.
func (m *Multitask) Tell(t *explore.Trial) { m.inner.Tell(t) }

// Ask proposes up to n trials from the wrapped sampler, each tagged with the
// next task in the schedule.
func (m *Multitask) Ask(n int) []*explore.Trial {
	trials := m.inner.Ask(n)
	for _, t := range trials {
		t.Task = m.nextTag()
	}
	return trials
}

func (m *Multitask) nextTag() string {
	if len(m.tags) > 0 {
		tag := m.tags[0]
		m.tags = m.tags[1:]
		return tag
	}
	if len(m.cycle) == 0 {
		return m.tasks[0].Name
	}
	tag := m.cycle[m.pos]
	m.pos = (m.pos + 1) % len(m.cycle)
	return tag
}
