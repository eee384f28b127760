// Defines the immutable descriptors of an exploration: the parameters the
// generator varies, the objectives the evaluator measures, and any extra
// analyzed parameters the evaluator reports without optimizing them.

package explore

import "fmt"

// ValueType is the numeric type a parameter takes.
type ValueType string

const (
	TypeFloat ValueType = "float"
	TypeInt   ValueType = "int"
)

// VaryingParameter describes one dimension of the search space. A parameter
// flagged as fidelity is scheduled like any other; TargetValue records the
// value considered "full fidelity" and is reported to the generator at
// construction time only.
type VaryingParameter struct {
	Name        string    `yaml:"name"`
	LowerBound  float64   `yaml:"lower_bound"`
	UpperBound  float64   `yaml:"upper_bound"`
	IsFidelity  bool      `yaml:"is_fidelity,omitempty"`
	TargetValue *float64  `yaml:"target_value,omitempty"`
	Type        ValueType `yaml:"type,omitempty"`
}

// NewVaryingParameter builds a float-typed varying parameter with validated bounds.
func NewVaryingParameter(name string, lower, upper float64) (VaryingParameter, error) {
	p := VaryingParameter{Name: name, LowerBound: lower, UpperBound: upper, Type: TypeFloat}
	if err := p.validate(); err != nil {
		return VaryingParameter{}, err
	}
	return p, nil
}

// NewFidelityParameter builds a varying parameter marked as the fidelity
// dimension, with target the full-fidelity reference value.
func NewFidelityParameter(name string, lower, upper, target float64) (VaryingParameter, error) {
	p := VaryingParameter{
		Name:        name,
		LowerBound:  lower,
		UpperBound:  upper,
		IsFidelity:  true,
		TargetValue: &target,
		Type:        TypeFloat,
	}
	if err := p.validate(); err != nil {
		return VaryingParameter{}, err
	}
	return p, nil
}

func (p VaryingParameter) validate() error {
	if p.Name == "" {
		return fmt.Errorf("varying parameter: empty name")
	}
	if p.LowerBound >= p.UpperBound {
		return fmt.Errorf("varying parameter %q: lower bound %v must be below upper bound %v",
			p.Name, p.LowerBound, p.UpperBound)
	}
	if p.TargetValue != nil && (*p.TargetValue < p.LowerBound || *p.TargetValue > p.UpperBound) {
		return fmt.Errorf("varying parameter %q: target value %v outside bounds [%v, %v]",
			p.Name, *p.TargetValue, p.LowerBound, p.UpperBound)
	}
	return nil
}

// Contains reports whether v lies within the declared bounds.
func (p VaryingParameter) Contains(v float64) bool {
	return v >= p.LowerBound && v <= p.UpperBound
}

// Objective describes one measured output to optimize.
type Objective struct {
	Name     string `yaml:"name"`
	Minimize bool   `yaml:"minimize"`
}

// Parameter describes an analyzed (reported but not optimized) output.
// SaveName, when set, is the column name used in the history store.
type Parameter struct {
	Name     string    `yaml:"name"`
	Type     ValueType `yaml:"type,omitempty"`
	SaveName string    `yaml:"save_name,omitempty"`
}

// StoreName returns the history column name for the parameter.
func (p Parameter) StoreName() string {
	if p.SaveName != "" {
		return p.SaveName
	}
	return p.Name
}
