package sampling

import (
	"testing"

	"github.com/explore-sim/explore-sim/explore"
)

func space(t *testing.T) ([]explore.VaryingParameter, []explore.Objective) {
	t.Helper()
	x0, err := explore.NewVaryingParameter("x0", 0.0, 15.0)
	if err != nil {
		t.Fatal(err)
	}
	x1, err := explore.NewVaryingParameter("x1", -2.0, 2.0)
	if err != nil {
		t.Fatal(err)
	}
	return []explore.VaryingParameter{x0, x1}, []explore.Objective{{Name: "f", Minimize: true}}
}

func TestRandom_ProposalsWithinBounds(t *testing.T) {
	varying, objectives := space(t)
	gen := NewRandom(varying, objectives, nil, 42)

	for _, trial := range gen.Ask(100) {
		for _, p := range varying {
			v, ok := trial.Values[p.Name]
			if !ok {
				t.Fatalf("proposal missing %q", p.Name)
			}
			if !p.Contains(v) {
				t.Errorf("%q = %v outside [%v, %v]", p.Name, v, p.LowerBound, p.UpperBound)
			}
		}
	}
}

func TestRandom_DeterministicUnderSeed(t *testing.T) {
	varying, objectives := space(t)
	a := NewRandom(varying, objectives, nil, 7)
	b := NewRandom(varying, objectives, nil, 7)

	ta, tb := a.Ask(10), b.Ask(10)
	for i := range ta {
		for name, v := range ta[i].Values {
			if tb[i].Values[name] != v {
				t.Fatalf("proposal %d diverges at %q: %v vs %v", i, name, v, tb[i].Values[name])
			}
		}
	}
}

func TestRandom_TellRecordsObservations(t *testing.T) {
	varying, objectives := space(t)
	gen := NewRandom(varying, objectives, nil, 1)

	gen.Tell(&explore.Trial{Index: 0})
	gen.Tell(&explore.Trial{Index: 1})

	observed := gen.Observed()
	if len(observed) != 2 || observed[0].Index != 0 || observed[1].Index != 1 {
		t.Fatalf("Observed: got %v, want trials 0,1 in tell order", observed)
	}
}

func TestGrid_CoversAndExhausts(t *testing.T) {
	// GIVEN a 3x3 grid over two dimensions
	varying, objectives := space(t)
	gen := NewGrid(varying, objectives, nil, 3)

	if gen.Remaining() != 9 {
		t.Fatalf("Remaining: got %d, want 9", gen.Remaining())
	}

	// WHEN more points are requested than exist
	trials := gen.Ask(20)

	// THEN exactly the grid is proposed, corners included, then nothing
	if len(trials) != 9 {
		t.Fatalf("Ask: got %d trials, want 9", len(trials))
	}
	first, last := trials[0], trials[8]
	if first.Values["x0"] != 0.0 || first.Values["x1"] != -2.0 {
		t.Errorf("first corner: got %v", first.Values)
	}
	if last.Values["x0"] != 15.0 || last.Values["x1"] != 2.0 {
		t.Errorf("last corner: got %v", last.Values)
	}
	if extra := gen.Ask(5); len(extra) != 0 {
		t.Errorf("exhausted grid still proposed %d trials", len(extra))
	}
}

func TestLine_SweepsEachParameterAroundDefaults(t *testing.T) {
	varying, objectives := space(t)
	gen := NewLine(varying, objectives, nil, 3, nil)

	// Two parameters, 3 steps each.
	trials := gen.Ask(10)
	if len(trials) != 6 {
		t.Fatalf("Ask: got %d trials, want 6", len(trials))
	}

	// First sweep varies x0 while x1 sits at its midpoint (0).
	for _, trial := range trials[:3] {
		if trial.Values["x1"] != 0.0 {
			t.Errorf("x1 not held at midpoint during x0 sweep: %v", trial.Values)
		}
	}
	if trials[0].Values["x0"] != 0.0 || trials[2].Values["x0"] != 15.0 {
		t.Errorf("x0 sweep does not span bounds: %v, %v", trials[0].Values, trials[2].Values)
	}

	// Second sweep varies x1 while x0 sits at its midpoint (7.5).
	for _, trial := range trials[3:] {
		if trial.Values["x0"] != 7.5 {
			t.Errorf("x0 not held at midpoint during x1 sweep: %v", trial.Values)
		}
	}
}

func TestMultitask_TagSchedule(t *testing.T) {
	// GIVEN a 10/2 initialization split and 3/1 optimization batches
	varying, objectives := space(t)
	tasks := []explore.Task{
		{Name: "lofi", NInit: 10, NOpt: 3},
		{Name: "hifi", NInit: 2, NOpt: 1},
	}
	gen := NewMultitask(NewRandom(varying, objectives, nil, 3), tasks)

	// WHEN the initialization block is consumed in uneven asks
	var tags []string
	for _, n := range []int{5, 4, 3} {
		for _, trial := range gen.Ask(n) {
			tags = append(tags, trial.Task)
		}
	}

	// THEN the first 10 are lofi and the next 2 hifi
	for i, tag := range tags[:10] {
		if tag != "lofi" {
			t.Fatalf("init tag %d: got %q, want lofi", i, tag)
		}
	}
	for i, tag := range tags[10:12] {
		if tag != "hifi" {
			t.Fatalf("init tag %d: got %q, want hifi", 10+i, tag)
		}
	}

	// AND optimization batches repeat 3 lofi + 1 hifi
	var cycle []string
	for _, trial := range gen.Ask(8) {
		cycle = append(cycle, trial.Task)
	}
	want := []string{"lofi", "lofi", "lofi", "hifi", "lofi", "lofi", "lofi", "hifi"}
	for i := range want {
		if cycle[i] != want[i] {
			t.Fatalf("cycle tag %d: got %q, want %q", i, cycle[i], want[i])
		}
	}
}
