// YAML run configuration consumed by `explore-sim run`: the exploration
// settings plus the declared search space and the builtin generator/evaluator
// selection. CLI flags override the file where both are given.

package cmd

import (
	"fmt"
	"math"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/explore-sim/explore-sim/explore"
	"github.com/explore-sim/explore-sim/explore/evaluate"
	"github.com/explore-sim/explore-sim/explore/sampling"
)

// GeneratorConfig selects and parameterizes a builtin sampling generator.
type GeneratorConfig struct {
	Kind         string `yaml:"kind"`                     // "random" (default), "grid" or "line"
	Seed         uint64 `yaml:"seed,omitempty"`           // random sampler seed
	PointsPerDim int    `yaml:"points_per_dim,omitempty"` // grid resolution
	Steps        int    `yaml:"steps,omitempty"`          // line sweep resolution
}

// EvaluatorConfig selects a builtin analysis function for smoke runs.
type EvaluatorConfig struct {
	Builtin string `yaml:"builtin"`            // "quadratic" (default) or "rosenbrock"
	DelayMs int    `yaml:"delay_ms,omitempty"` // simulated evaluation runtime
}

// RunConfig is the top-level YAML document for a run.
type RunConfig struct {
	Exploration explore.Config `yaml:"exploration"`
	Dir         string         `yaml:"dir"`

	VaryingParameters  []explore.VaryingParameter `yaml:"varying_parameters"`
	Objectives         []explore.Objective        `yaml:"objectives"`
	AnalyzedParameters []explore.Parameter        `yaml:"analyzed_parameters,omitempty"`
	Tasks              []explore.Task             `yaml:"tasks,omitempty"`

	Generator GeneratorConfig `yaml:"generator"`
	Evaluator EvaluatorConfig `yaml:"evaluator"`
}

// LoadRunConfig reads and validates a YAML run configuration.
func LoadRunConfig(path string) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading run config %s: %w", path, err)
	}
	var cfg RunConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing run config %s: %w", path, err)
	}
	if len(cfg.VaryingParameters) == 0 {
		return nil, fmt.Errorf("run config %s: at least one varying parameter is required", path)
	}
	if len(cfg.Objectives) == 0 {
		return nil, fmt.Errorf("run config %s: at least one objective is required", path)
	}
	if cfg.Dir == "" {
		cfg.Dir = "./exploration"
	}
	return &cfg, nil
}

// BuildGenerator constructs the configured sampling generator, wrapped for
// multitask tagging when tasks are declared.
func (c *RunConfig) BuildGenerator() (explore.Generator, error) {
	var gen explore.Generator
	switch c.Generator.Kind {
	case "", "random":
		gen = sampling.NewRandom(c.VaryingParameters, c.Objectives, c.AnalyzedParameters, c.Generator.Seed)
	case "grid":
		gen = sampling.NewGrid(c.VaryingParameters, c.Objectives, c.AnalyzedParameters, c.Generator.PointsPerDim)
	case "line":
		gen = sampling.NewLine(c.VaryingParameters, c.Objectives, c.AnalyzedParameters, c.Generator.Steps, nil)
	default:
		return nil, fmt.Errorf("unknown generator kind %q", c.Generator.Kind)
	}
	if len(c.Tasks) > 0 {
		gen = sampling.NewMultitask(gen, c.Tasks)
	}
	return gen, nil
}

// BuildEvaluator constructs the configured builtin evaluator, with per-task
// routing when tasks are declared.
func (c *RunConfig) BuildEvaluator() (explore.Evaluator, error) {
	fn, err := builtinAnalysis(c.Evaluator.Builtin, c.Objectives)
	if err != nil {
		return nil, err
	}
	delay := time.Duration(c.Evaluator.DelayMs) * time.Millisecond

	newFunction := func() explore.Evaluator {
		f := evaluate.NewFunction(fn, c.Objectives, c.AnalyzedParameters)
		f.Delay = delay
		return f
	}

	if len(c.Tasks) == 0 {
		return newFunction(), nil
	}
	evaluators := make([]explore.Evaluator, len(c.Tasks))
	for i := range c.Tasks {
		evaluators[i] = newFunction()
	}
	return evaluate.NewMultitask(c.Tasks, evaluators)
}

// builtinAnalysis returns a named analysis function filling every declared
// objective with the same scalar.
func builtinAnalysis(name string, objectives []explore.Objective) (evaluate.AnalysisFunc, error) {
	var score func(values map[string]float64) float64
	switch name {
	case "", "quadratic":
		// Sum of squares: minimum 0 at the origin.
		score = func(values map[string]float64) float64 {
			total := 0.0
			for _, v := range values {
				total += v * v
			}
			return total
		}
	case "rosenbrock":
		// Classic banana function over the first two parameters (by name order).
		score = func(values map[string]float64) float64 {
			x, y := twoValues(values)
			return math.Pow(1-x, 2) + 100*math.Pow(y-x*x, 2)
		}
	default:
		return nil, fmt.Errorf("unknown builtin evaluator %q", name)
	}

	return func(values map[string]float64) (map[string]float64, error) {
		out := make(map[string]float64, len(objectives))
		for _, o := range objectives {
			out[o.Name] = score(values)
		}
		return out, nil
	}, nil
}

func twoValues(values map[string]float64) (float64, float64) {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) < 2 {
		if len(keys) == 1 {
			return values[keys[0]], 0
		}
		return 0, 0
	}
	return values[keys[0]], values[keys[1]]
}
