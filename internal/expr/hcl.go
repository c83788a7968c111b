package expr

import (
	"fmt"
	"math"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// hclFunctions is the function table available to hcl formulas.
var hclFunctions = map[string]function.Function{
	"abs":       stdlib.AbsoluteFunc,
	"ceil":      stdlib.CeilFunc,
	"floor":     stdlib.FloorFunc,
	"int":       stdlib.IntFunc,
	"log":       stdlib.LogFunc,
	"lower":     stdlib.LowerFunc,
	"max":       stdlib.MaxFunc,
	"min":       stdlib.MinFunc,
	"parseint":  stdlib.ParseIntFunc,
	"pow":       stdlib.PowFunc,
	"signum":    stdlib.SignumFunc,
	"strlen":    stdlib.StrlenFunc,
	"substr":    stdlib.SubstrFunc,
	"trimspace": stdlib.TrimSpaceFunc,
	"upper":     stdlib.UpperFunc,
}

// HCL evaluates formulas as hclsyntax expressions.
type HCL struct{}

// NewHCL creates the hcl backend.
func NewHCL() *HCL {
	return &HCL{}
}

// Name implements Evaluator.
func (h *HCL) Name() string { return "hcl" }

// Compile implements Evaluator. Placeholders become parenthesised
// references so that {a}-{b} cannot fuse into the identifier a-b.
func (h *HCL) Compile(expression string) (Program, error) {
	src := rewritePlaceholders(expression, func(name string) string {
		return "(" + name + ")"
	})
	parsed, diags := hclsyntax.ParseExpression([]byte(src), "formula", hcl.Pos{Line: 1, Column: 1, Byte: 0})
	if diags.HasErrors() {
		return nil, diags
	}

	refs, funcs := extractReferencesAndFunctions(parsed)
	for _, name := range funcs {
		if _, ok := hclFunctions[name]; !ok {
			return nil, fmt.Errorf("call to unknown function %q", name)
		}
	}

	vars := make([]string, 0, len(refs))
	seen := make(map[string]struct{}, len(refs))
	for _, ref := range refs {
		root := ref.RootName()
		if _, ok := seen[root]; ok {
			continue
		}
		seen[root] = struct{}{}
		vars = append(vars, root)
	}
	sort.Strings(vars)
	return &hclProgram{expr: parsed, vars: vars}, nil
}

type hclProgram struct {
	expr hclsyntax.Expression
	vars []string
}

func (p *hclProgram) Variables() []string { return append([]string(nil), p.vars...) }

func (p *hclProgram) Evaluate(vars map[string]any) (any, error) {
	evalCtx := &hcl.EvalContext{
		Variables: make(map[string]cty.Value, len(vars)),
		Functions: hclFunctions,
	}
	for name, v := range vars {
		cv, err := toCty(v)
		if err != nil {
			return nil, fmt.Errorf("variable %q: %w", name, err)
		}
		evalCtx.Variables[name] = cv
	}

	val, diags := p.expr.Value(evalCtx)
	if diags.HasErrors() {
		return nil, diags
	}
	return fromCty(val)
}

// toCty converts a formula variable into a cty value. NaN has no cty
// representation, so it becomes an unknown number.
func toCty(v any) (cty.Value, error) {
	switch tv := v.(type) {
	case nil:
		return cty.NullVal(cty.DynamicPseudoType), nil
	case float64:
		if math.IsNaN(tv) {
			return cty.UnknownVal(cty.Number), nil
		}
		return cty.NumberFloatVal(tv), nil
	case int:
		return cty.NumberIntVal(int64(tv)), nil
	case string:
		return cty.StringVal(tv), nil
	case bool:
		return cty.BoolVal(tv), nil
	default:
		return cty.NilVal, fmt.Errorf("unsupported variable type %T", v)
	}
}

// fromCty converts an evaluation result back to a plain Go value.
func fromCty(val cty.Value) (any, error) {
	val, _ = val.Unmark()
	if !val.IsKnown() {
		if val.Type() == cty.Number {
			return math.NaN(), nil
		}
		return nil, nil
	}
	if val.IsNull() {
		return nil, nil
	}
	switch val.Type() {
	case cty.Number:
		f, _ := val.AsBigFloat().Float64()
		return f, nil
	case cty.String:
		return val.AsString(), nil
	case cty.Bool:
		return val.True(), nil
	default:
		return nil, fmt.Errorf("unsupported result type %s", val.Type().FriendlyName())
	}
}
