package config

import (
	"fmt"
	"sort"

	"github.com/vk/formcalc/internal/formula"
)

// FormModel is the unified representation of one form: its fields and the
// calculations between them.
type FormModel struct {
	Name string
	// Evaluator names the expression backend. Empty means the default.
	Evaluator    string
	Fields       []*Field
	Calculations []*Calculation
}

// Field is one form control. Several fields may share a name, which is how
// radio groups and checkbox sets are described.
type Field struct {
	Name       string
	Tag        string
	Attributes map[string]string
	Value      string
	Checked    bool
}

// Calculation binds a formula to an output field.
type Calculation struct {
	Output     string
	Expression string
	Variables  map[string]*Variable
}

// Variable maps a formula variable to a source field.
type Variable struct {
	Name  string
	Field string
	// Type is the source type tag, e.g. "number" or "radio".
	Type string
}

// Spec converts the calculation into a validated formula.Spec.
func (c *Calculation) Spec() (formula.Spec, error) {
	spec := formula.Spec{
		Expression: c.Expression,
		Variables:  make(map[string]formula.Binding, len(c.Variables)),
	}
	for name, v := range c.Variables {
		spec.Variables[name] = formula.Binding{
			SourceFieldName: v.Field,
			Kind:            formula.ParseKind(v.Type),
		}
	}
	if err := spec.Validate(); err != nil {
		return formula.Spec{}, fmt.Errorf("calculation %q: %w", c.Output, err)
	}
	return spec, nil
}

// Calculation returns the calculation for output, if any.
func (m *FormModel) Calculation(output string) (*Calculation, bool) {
	for _, c := range m.Calculations {
		if c.Output == output {
			return c, true
		}
	}
	return nil, false
}

// FieldNames returns the distinct field names in sorted order.
func (m *FormModel) FieldNames() []string {
	seen := make(map[string]struct{}, len(m.Fields))
	var names []string
	for _, f := range m.Fields {
		if _, ok := seen[f.Name]; ok {
			continue
		}
		seen[f.Name] = struct{}{}
		names = append(names, f.Name)
	}
	sort.Strings(names)
	return names
}
