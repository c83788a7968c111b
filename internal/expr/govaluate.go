package expr

import (
	"fmt"
	"math"

	"github.com/Knetic/govaluate"
)

var govaluateFunctions = map[string]govaluate.ExpressionFunction{
	"abs":   unaryMath(math.Abs),
	"ceil":  unaryMath(math.Ceil),
	"floor": unaryMath(math.Floor),
	"max": func(args ...interface{}) (interface{}, error) {
		return foldMath("max", math.Max, args)
	},
	"min": func(args ...interface{}) (interface{}, error) {
		return foldMath("min", math.Min, args)
	},
	"pow": func(args ...interface{}) (interface{}, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("pow expects 2 arguments, got %d", len(args))
		}
		base, ok1 := args[0].(float64)
		exp, ok2 := args[1].(float64)
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("pow expects numbers")
		}
		return math.Pow(base, exp), nil
	},
}

func unaryMath(fn func(float64) float64) govaluate.ExpressionFunction {
	return func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("expected 1 argument, got %d", len(args))
		}
		f, ok := args[0].(float64)
		if !ok {
			return nil, fmt.Errorf("expected a number, got %T", args[0])
		}
		return fn(f), nil
	}
}

func foldMath(name string, fn func(a, b float64) float64, args []interface{}) (interface{}, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%s expects at least 1 argument", name)
	}
	var acc float64
	for i, a := range args {
		f, ok := a.(float64)
		if !ok {
			return nil, fmt.Errorf("%s expects numbers, got %T", name, a)
		}
		if i == 0 {
			acc = f
			continue
		}
		acc = fn(acc, f)
	}
	return acc, nil
}

// Govaluate evaluates formulas with Knetic/govaluate.
type Govaluate struct{}

// NewGovaluate creates the govaluate backend.
func NewGovaluate() *Govaluate {
	return &Govaluate{}
}

// Name implements Evaluator.
func (g *Govaluate) Name() string { return "govaluate" }

// Compile implements Evaluator. Placeholders become [name] parameters.
func (g *Govaluate) Compile(expression string) (Program, error) {
	src := rewritePlaceholders(expression, func(name string) string {
		return "[" + name + "]"
	})
	compiled, err := govaluate.NewEvaluableExpressionWithFunctions(src, govaluateFunctions)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	for _, v := range compiled.Vars() {
		seen[v] = struct{}{}
	}
	return &govaluateProgram{expr: compiled, vars: sortedKeys(seen)}, nil
}

type govaluateProgram struct {
	expr *govaluate.EvaluableExpression
	vars []string
}

func (p *govaluateProgram) Variables() []string { return append([]string(nil), p.vars...) }

func (p *govaluateProgram) Evaluate(vars map[string]any) (any, error) {
	params := make(map[string]interface{}, len(vars))
	for name, v := range vars {
		switch tv := v.(type) {
		case int:
			params[name] = float64(tv)
		default:
			params[name] = v
		}
	}
	return p.expr.Evaluate(params)
}
