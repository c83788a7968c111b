package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/formcalc/internal/formula"
)

func TestCalculation_Spec(t *testing.T) {
	c := &Calculation{
		Output:     "total",
		Expression: "{a} * {b}",
		Variables: map[string]*Variable{
			"a": {Name: "a", Field: "qty", Type: "number"},
			"b": {Name: "b", Field: "size", Type: "radio"},
		},
	}

	spec, err := c.Spec()
	require.NoError(t, err)
	assert.Equal(t, "{a} * {b}", spec.Expression)
	assert.Equal(t, formula.Binding{SourceFieldName: "qty", Kind: formula.Numeric}, spec.Variables["a"])
	assert.Equal(t, formula.Binding{SourceFieldName: "size", Kind: formula.ExclusiveChoice}, spec.Variables["b"])
}

func TestCalculation_SpecRejectsEmptyFormula(t *testing.T) {
	_, err := (&Calculation{Output: "total"}).Spec()
	require.ErrorIs(t, err, formula.ErrEmptyExpression)
	assert.ErrorContains(t, err, `calculation "total"`)
}

func TestFormModel_Lookups(t *testing.T) {
	m := &FormModel{
		Fields: []*Field{
			{Name: "size", Value: "s"},
			{Name: "qty"},
			{Name: "size", Value: "l"},
		},
		Calculations: []*Calculation{{Output: "total", Expression: "1"}},
	}

	assert.Equal(t, []string{"qty", "size"}, m.FieldNames())

	c, ok := m.Calculation("total")
	require.True(t, ok)
	assert.Equal(t, "1", c.Expression)

	_, ok = m.Calculation("missing")
	assert.False(t, ok)
}
