package hcl

import "github.com/hashicorp/hcl/v2"

// fileRoot decodes every top-level block a form file may contain.
type fileRoot struct {
	Forms        []*Form        `hcl:"form,block"`
	Calculations []*Calculation `hcl:"calculation,block"`
	Remain       hcl.Body       `hcl:",remain"`
}

// Form is the HCL schema for a `form` block.
type Form struct {
	Name         string         `hcl:"name,label"`
	Evaluator    *string        `hcl:"evaluator,optional"`
	Fields       []*Field       `hcl:"field,block"`
	Calculations []*Calculation `hcl:"calculation,block"`
}

// Field is the HCL schema for a `field` block.
type Field struct {
	Name       string            `hcl:"name,label"`
	Tag        *string           `hcl:"tag,optional"`
	Type       *string           `hcl:"type,optional"`
	Value      *string           `hcl:"value,optional"`
	Checked    *bool             `hcl:"checked,optional"`
	Attributes map[string]string `hcl:"attributes,optional"`
}

// Calculation is the HCL schema for a `calculation` block.
type Calculation struct {
	Output    string      `hcl:"output,label"`
	Formula   string      `hcl:"formula"`
	Variables []*Variable `hcl:"variable,block"`
}

// Variable is the HCL schema for a `variable` block. Type accepts a bare
// keyword (`number`) or a string (`"radio"`).
type Variable struct {
	Name  string         `hcl:"name,label"`
	Field string         `hcl:"field"`
	Type  hcl.Expression `hcl:"type,optional"`
}
