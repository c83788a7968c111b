// Package expr adapts embeddable expression evaluators to the formula
// syntax used by calculated fields.
//
// Formulas reference variables as {name}. Each backend rewrites those
// placeholders into its own variable syntax, compiles the result once, and
// evaluates it against a flat variable mapping whose values are float64
// (NaN allowed), string or bool. A nil result means "undefined".
//
// Two backends exist:
//
//   - hcl: hashicorp/hcl hclsyntax expressions over go-cty values. This is
//     the default. NaN inputs travel as unknown numbers, which propagate
//     through arithmetic the way NaN does.
//   - govaluate: Knetic/govaluate with native float64 arithmetic.
package expr
