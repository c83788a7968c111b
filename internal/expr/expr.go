package expr

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// ErrUnknownEvaluator is returned by ByName for unsupported backends.
var ErrUnknownEvaluator = errors.New("unknown evaluator")

// Evaluator compiles formula expressions.
type Evaluator interface {
	Name() string
	Compile(expression string) (Program, error)
}

// Program is a compiled formula.
type Program interface {
	// Evaluate runs the program against vars. Values are float64, string,
	// bool or nil.
	Evaluate(vars map[string]any) (any, error)
	// Variables lists the variable names the program references, sorted.
	Variables() []string
}

// Names lists the supported backend names.
func Names() []string {
	return []string{"govaluate", "hcl"}
}

// ByName returns the backend registered under name. The empty name selects
// the default hcl backend.
func ByName(name string) (Evaluator, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "hcl":
		return NewHCL(), nil
	case "govaluate":
		return NewGovaluate(), nil
	default:
		return nil, fmt.Errorf("%w %q (supported: %s)", ErrUnknownEvaluator, name, strings.Join(Names(), ", "))
	}
}

var placeholderPattern = regexp.MustCompile(`\{\s*([A-Za-z_][A-Za-z0-9_-]*)\s*\}`)

// rewritePlaceholders replaces every {name} in src with ref(name). Braces
// that open an HCL template sequence (${ or %{) and braces inside quoted
// string literals are left alone.
func rewritePlaceholders(src string, ref func(name string) string) string {
	quoted := quotedSpans(src)
	var b strings.Builder
	last := 0
	for _, m := range placeholderPattern.FindAllStringSubmatchIndex(src, -1) {
		if m[0] > 0 && (src[m[0]-1] == '$' || src[m[0]-1] == '%') {
			continue
		}
		if quoted[m[0]] {
			continue
		}
		b.WriteString(src[last:m[0]])
		b.WriteString(ref(src[m[2]:m[3]]))
		last = m[1]
	}
	b.WriteString(src[last:])
	return b.String()
}

// quotedSpans marks the bytes of src that sit inside a "..." or '...'
// literal. A backslash escapes the next byte.
func quotedSpans(src string) []bool {
	in := make([]bool, len(src))
	var quote byte
	for i := 0; i < len(src); i++ {
		c := src[i]
		if quote == 0 {
			if c == '"' || c == '\'' {
				quote = c
			}
			continue
		}
		in[i] = true
		switch c {
		case '\\':
			if i+1 < len(src) {
				i++
				in[i] = true
			}
		case quote:
			in[i] = false
			quote = 0
		}
	}
	return in
}

// Placeholders returns the distinct {name} references in a formula, sorted.
func Placeholders(src string) []string {
	seen := make(map[string]struct{})
	rewritePlaceholders(src, func(name string) string {
		seen[name] = struct{}{}
		return ""
	})
	return sortedKeys(seen)
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
