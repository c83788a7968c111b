package expr

import (
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
)

// TraversalKey generates a stable, canonical string representation for an
// hcl.Traversal, suitable for use as a map key.
func TraversalKey(t hcl.Traversal) string {
	return string(hclwrite.TokensForTraversal(t).Bytes())
}

// extractReferencesAndFunctions walks an expression to find all unique
// variable traversals and function calls. Both results are sorted.
func extractReferencesAndFunctions(expr hclsyntax.Expression) ([]hcl.Traversal, []string) {
	traversals := make(map[string]hcl.Traversal)
	functions := make(map[string]struct{})

	for _, traversal := range expr.Variables() {
		traversals[TraversalKey(traversal)] = traversal
	}

	hclsyntax.VisitAll(expr, func(node hclsyntax.Node) hcl.Diagnostics {
		if call, ok := node.(*hclsyntax.FunctionCallExpr); ok {
			functions[call.Name] = struct{}{}
		}
		return nil
	})

	keys := make([]string, 0, len(traversals))
	for k := range traversals {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]hcl.Traversal, 0, len(keys))
	for _, k := range keys {
		out = append(out, traversals[k])
	}
	return out, sortedKeys(functions)
}

// References returns the variable names a formula uses according to the
// given evaluator. Formulas that fail to compile fall back to their
// {name} placeholders.
func References(ev Evaluator, expression string) []string {
	prog, err := ev.Compile(expression)
	if err != nil {
		return Placeholders(expression)
	}
	return prog.Variables()
}
