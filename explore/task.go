package explore

// Task names one variant of the parameter space in a multitask exploration,
// typically a cheap and an expensive evaluation source over the same
// parameters. NInit and NOpt are consumed by the generator when sizing its
// initialization and per-batch proposals; the engine only threads the task tag
// through to evaluation dispatch.
type Task struct {
	Name  string `yaml:"name"`
	NInit int    `yaml:"n_init"`
	NOpt  int    `yaml:"n_opt"`
}
