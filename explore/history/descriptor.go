// The sidecar descriptor: a YAML file next to the database enumerating the
// varying parameters, objectives, analyzed parameters and tasks of the run.
// It makes a persisted history self-describing, so a resumed or inspected run
// can reconstruct a generator-compatible schema without the original script.

package history

import (
	"fmt"
	"os"
	"reflect"

	"gopkg.in/yaml.v3"

	"github.com/explore-sim/explore-sim/explore"
)

// Descriptor enumerates the definitions a history store was written under.
type Descriptor struct {
	VaryingParameters  []explore.VaryingParameter `yaml:"varying_parameters"`
	Objectives         []explore.Objective        `yaml:"objectives"`
	AnalyzedParameters []explore.Parameter        `yaml:"analyzed_parameters,omitempty"`
	Tasks              []explore.Task             `yaml:"tasks,omitempty"`
}

// DescriptorFor derives the descriptor from a generator's declared schema.
func DescriptorFor(g explore.Generator) Descriptor {
	d := Descriptor{
		VaryingParameters:  g.VaryingParameters(),
		Objectives:         g.Objectives(),
		AnalyzedParameters: g.AnalyzedParameters(),
	}
	if tg, ok := g.(explore.TaskGenerator); ok {
		d.Tasks = tg.Tasks()
	}
	return d
}

// Matches compares a stored descriptor against the currently configured one,
// returning a resume mismatch describing the first difference.
func (d Descriptor) Matches(other Descriptor) error {
	if !reflect.DeepEqual(d.VaryingParameters, other.VaryingParameters) {
		return &explore.ResumeMismatchError{
			Detail: fmt.Sprintf("varying parameters differ: stored %v, configured %v",
				names(d.VaryingParameters), names(other.VaryingParameters)),
		}
	}
	if !reflect.DeepEqual(d.Objectives, other.Objectives) {
		return &explore.ResumeMismatchError{Detail: "objectives differ"}
	}
	if !reflect.DeepEqual(d.AnalyzedParameters, other.AnalyzedParameters) {
		return &explore.ResumeMismatchError{Detail: "analyzed parameters differ"}
	}
	if !reflect.DeepEqual(d.Tasks, other.Tasks) {
		return &explore.ResumeMismatchError{Detail: "tasks differ"}
	}
	return nil
}

func names(params []explore.VaryingParameter) []string {
	out := make([]string, len(params))
	for i, p := range params {
		out[i] = p.Name
	}
	return out
}

// WriteDescriptor writes the sidecar YAML file.
func WriteDescriptor(path string, d Descriptor) error {
	data, err := yaml.Marshal(d)
	if err != nil {
		return fmt.Errorf("history: encoding descriptor: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("history: writing descriptor %s: %w", path, err)
	}
	return nil
}

// ReadDescriptor reads a sidecar YAML file.
func ReadDescriptor(path string) (Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Descriptor{}, fmt.Errorf("history: reading descriptor %s: %w", path, err)
	}
	var d Descriptor
	if err := yaml.Unmarshal(data, &d); err != nil {
		return Descriptor{}, fmt.Errorf("history: decoding descriptor %s: %w", path, err)
	}
	return d, nil
}
