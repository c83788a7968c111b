// This file translates the HCL schema structs into the format-agnostic
// config.FormModel and validates the result.

package hcl

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vk/formcalc/internal/config"
	"github.com/vk/formcalc/internal/ctxlog"
	"github.com/vk/formcalc/internal/expr"
)

const defaultTag = "input"

func (l *Loader) translateForm(ctx context.Context, f *Form) (*config.FormModel, error) {
	m := &config.FormModel{Name: f.Name}
	if f.Evaluator != nil {
		m.Evaluator = strings.TrimSpace(*f.Evaluator)
	}
	for _, field := range f.Fields {
		m.Fields = append(m.Fields, translateField(field))
	}
	for _, c := range f.Calculations {
		calc, err := l.translateCalculation(ctx, c)
		if err != nil {
			return nil, err
		}
		m.Calculations = append(m.Calculations, calc)
	}
	return m, nil
}

func translateField(f *Field) *config.Field {
	out := &config.Field{
		Name:       f.Name,
		Tag:        defaultTag,
		Attributes: make(map[string]string, len(f.Attributes)+1),
	}
	for k, v := range f.Attributes {
		out.Attributes[strings.ToLower(k)] = v
	}
	if f.Tag != nil && *f.Tag != "" {
		out.Tag = strings.ToLower(*f.Tag)
	}
	if f.Type != nil && *f.Type != "" {
		out.Attributes["type"] = *f.Type
	}
	if f.Value != nil {
		out.Value = *f.Value
	}
	if f.Checked != nil {
		out.Checked = *f.Checked
	}
	return out
}

func (l *Loader) translateCalculation(ctx context.Context, c *Calculation) (*config.Calculation, error) {
	logger := ctxlog.FromContext(ctx).With("calculation", c.Output)
	out := &config.Calculation{
		Output:     c.Output,
		Expression: c.Formula,
		Variables:  make(map[string]*config.Variable, len(c.Variables)),
	}
	for _, v := range c.Variables {
		if _, dup := out.Variables[v.Name]; dup {
			return nil, fmt.Errorf("calculation %q: variable %q declared twice", c.Output, v.Name)
		}
		typ, err := typeKeyword(v.Type)
		if err != nil {
			return nil, fmt.Errorf("calculation %q, variable %q: invalid type: %w", c.Output, v.Name, err)
		}
		logger.Debug("Translated formula variable.", "variable", v.Name, "field", v.Field, "type", typ)
		out.Variables[v.Name] = &config.Variable{Name: v.Name, Field: v.Field, Type: typ}
	}
	return out, nil
}

// validate checks what the HCL schema alone cannot express.
func validate(m *config.FormModel) error {
	var errs []error
	if _, err := expr.ByName(m.Evaluator); err != nil {
		errs = append(errs, fmt.Errorf("form %q: %w", m.Name, err))
	}

	fields := make(map[string]struct{}, len(m.Fields))
	for _, f := range m.Fields {
		fields[f.Name] = struct{}{}
	}

	outputs := make(map[string]struct{}, len(m.Calculations))
	for _, c := range m.Calculations {
		if _, dup := outputs[c.Output]; dup {
			errs = append(errs, fmt.Errorf("calculation %q: declared twice", c.Output))
			continue
		}
		outputs[c.Output] = struct{}{}
		if _, ok := fields[c.Output]; !ok {
			errs = append(errs, fmt.Errorf("calculation %q: output field is not declared", c.Output))
		}
		if _, err := c.Spec(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
