// Exploration run configuration. Groups the knobs of the orchestration loop;
// generator- and evaluator-specific settings live inside those capabilities.

package explore

import (
	"fmt"
	"time"
)

// Config holds the constructor-level settings of an exploration run.
type Config struct {
	MaxEvals   int  `yaml:"max_evals"`   // evaluation budget (required, > 0)
	SimWorkers int  `yaml:"sim_workers"` // concurrent evaluation slots (required, > 0)
	RunAsync   bool `yaml:"run_async"`   // rolling dispatch instead of generation-by-generation

	Resume bool `yaml:"resume"` // replay a prior history into the generator on startup

	// IgnoreFailed excludes failed evaluations from the budget. The default
	// (false) matches at-most-once submission: a failure is a spent
	// evaluation, not a trigger for an automatic re-ask.
	IgnoreFailed bool `yaml:"ignore_failed"`

	// MaxGeneratorFaults is the number of consecutive malformed proposals
	// tolerated before the run aborts. 0 selects the default (5).
	MaxGeneratorFaults int `yaml:"max_generator_faults"`

	PollInterval time.Duration `yaml:"poll_interval"` // loop backoff when nothing is ready (default 50ms)
	DrainGrace   time.Duration `yaml:"drain_grace"`   // wait for in-flight trials at shutdown (default 30s)
}

const (
	defaultPollInterval       = 50 * time.Millisecond
	defaultDrainGrace         = 30 * time.Second
	defaultMaxGeneratorFaults = 5
)

// withDefaults fills unset durations and thresholds.
func (c Config) withDefaults() Config {
	if c.PollInterval <= 0 {
		c.PollInterval = defaultPollInterval
	}
	if c.DrainGrace <= 0 {
		c.DrainGrace = defaultDrainGrace
	}
	if c.MaxGeneratorFaults <= 0 {
		c.MaxGeneratorFaults = defaultMaxGeneratorFaults
	}
	return c
}

// Validate checks the required fields.
func (c Config) Validate() error {
	if c.MaxEvals <= 0 {
		return fmt.Errorf("config: max_evals must be > 0, got %d", c.MaxEvals)
	}
	if c.SimWorkers <= 0 {
		return fmt.Errorf("config: sim_workers must be > 0, got %d", c.SimWorkers)
	}
	return nil
}
