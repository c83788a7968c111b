package expr

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends() []Evaluator {
	return []Evaluator{NewHCL(), NewGovaluate()}
}

func TestRewritePlaceholders(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"simple", "{a} + {b}", "<a> + <b>"},
		{"spaces inside braces", "{ a } * 2", "<a> * 2"},
		{"template interpolation untouched", `"${a}" + {b}`, `"${a}" + <b>`},
		{"template directive untouched", `"%{if a}x%{endif}"`, `"%{if a}x%{endif}"`},
		{"not an identifier", "{1a}", "{1a}"},
		{"inside double quotes", `"{n}" + {n}`, `"{n}" + <n>`},
		{"inside single quotes", `'{n}' == {n}`, `'{n}' == <n>`},
		{"escaped quote stays in literal", `"a\"{n}" + {m}`, `"a\"{n}" + <m>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rewritePlaceholders(tt.src, func(n string) string { return "<" + n + ">" })
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, Placeholders("{b} * {a} + {a}"))
	assert.Empty(t, Placeholders("1 + 2"))
}

func TestBackends_Arithmetic(t *testing.T) {
	for _, ev := range backends() {
		t.Run(ev.Name(), func(t *testing.T) {
			prog, err := ev.Compile("{a} + {b}")
			require.NoError(t, err)
			assert.Equal(t, []string{"a", "b"}, prog.Variables())

			got, err := prog.Evaluate(map[string]any{"a": 2.0, "b": 3.0})
			require.NoError(t, err)
			assert.Equal(t, 5.0, got)
		})
	}
}

func TestBackends_NaNPropagates(t *testing.T) {
	for _, ev := range backends() {
		t.Run(ev.Name(), func(t *testing.T) {
			prog, err := ev.Compile("{a} * 2 + {b}")
			require.NoError(t, err)

			got, err := prog.Evaluate(map[string]any{"a": math.NaN(), "b": 1.0})
			require.NoError(t, err)
			f, ok := got.(float64)
			require.True(t, ok, "expected float64, got %T", got)
			assert.True(t, math.IsNaN(f))
		})
	}
}

func TestBackends_MalformedExpression(t *testing.T) {
	for _, ev := range backends() {
		t.Run(ev.Name(), func(t *testing.T) {
			_, err := ev.Compile("{a} / ")
			require.Error(t, err)
		})
	}
}

func TestBackends_MissingVariable(t *testing.T) {
	for _, ev := range backends() {
		t.Run(ev.Name(), func(t *testing.T) {
			prog, err := ev.Compile("{a} + 1")
			require.NoError(t, err)
			_, err = prog.Evaluate(map[string]any{})
			require.Error(t, err)
		})
	}
}

func TestBackends_Constant(t *testing.T) {
	for _, ev := range backends() {
		t.Run(ev.Name(), func(t *testing.T) {
			prog, err := ev.Compile("40 + 2")
			require.NoError(t, err)
			assert.Empty(t, prog.Variables())
			got, err := prog.Evaluate(nil)
			require.NoError(t, err)
			assert.Equal(t, 42.0, got)
		})
	}
}

func TestBackends_Functions(t *testing.T) {
	for _, ev := range backends() {
		t.Run(ev.Name(), func(t *testing.T) {
			prog, err := ev.Compile("max({a}, {b}) + abs(-1)")
			require.NoError(t, err)
			got, err := prog.Evaluate(map[string]any{"a": 4.0, "b": 9.0})
			require.NoError(t, err)
			assert.Equal(t, 10.0, got)
		})
	}
}

func TestHCL_Conditional(t *testing.T) {
	prog, err := NewHCL().Compile(`{size} == "large" ? {qty} * 2 : {qty}`)
	require.NoError(t, err)

	got, err := prog.Evaluate(map[string]any{"size": "large", "qty": 3.0})
	require.NoError(t, err)
	assert.Equal(t, 6.0, got)

	got, err = prog.Evaluate(map[string]any{"size": "", "qty": 3.0})
	require.NoError(t, err)
	assert.Equal(t, 3.0, got)
}

func TestHCL_StringOperandsConvert(t *testing.T) {
	prog, err := NewHCL().Compile("{a} + {b}")
	require.NoError(t, err)
	got, err := prog.Evaluate(map[string]any{"a": "2", "b": "3"})
	require.NoError(t, err)
	assert.Equal(t, 5.0, got)
}

func TestHCL_PlaceholderInStringLiteralIsText(t *testing.T) {
	prog, err := NewHCL().Compile(`"{n}"`)
	require.NoError(t, err)
	assert.Empty(t, prog.Variables())
	assert.Empty(t, Placeholders(`"{n}"`))

	got, err := prog.Evaluate(map[string]any{"n": 1.0})
	require.NoError(t, err)
	assert.Equal(t, "{n}", got)
}

func TestHCL_NoIdentifierFusion(t *testing.T) {
	prog, err := NewHCL().Compile("{a}-{b}")
	require.NoError(t, err)
	got, err := prog.Evaluate(map[string]any{"a": 5.0, "b": 3.0})
	require.NoError(t, err)
	assert.Equal(t, 2.0, got)
}

func TestHCL_UnknownFunctionRejected(t *testing.T) {
	_, err := NewHCL().Compile("nope({a})")
	require.ErrorContains(t, err, "nope")
}

func TestHCL_UnsupportedResult(t *testing.T) {
	prog, err := NewHCL().Compile("[1, 2]")
	require.NoError(t, err)
	_, err = prog.Evaluate(nil)
	require.ErrorContains(t, err, "unsupported result type")
}

func TestHCL_BoolResult(t *testing.T) {
	prog, err := NewHCL().Compile("{a} > 3")
	require.NoError(t, err)
	got, err := prog.Evaluate(map[string]any{"a": 4.0})
	require.NoError(t, err)
	assert.Equal(t, true, got)
}

func TestByName(t *testing.T) {
	ev, err := ByName("")
	require.NoError(t, err)
	assert.Equal(t, "hcl", ev.Name())

	ev, err = ByName("GOVALUATE")
	require.NoError(t, err)
	assert.Equal(t, "govaluate", ev.Name())

	_, err = ByName("lua")
	require.ErrorIs(t, err, ErrUnknownEvaluator)
}

func TestReferences(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, References(NewHCL(), "{b} * {a} + {a}"))
	assert.Equal(t, []string{"a"}, References(NewGovaluate(), "{a} * 2"))
	assert.Equal(t, []string{"a"}, References(NewHCL(), "{a} / "))
}
