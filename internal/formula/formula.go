package formula

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var (
	// ErrEmptyExpression is returned when a Spec has no expression.
	ErrEmptyExpression = errors.New("formula expression must not be empty")
	// ErrInvalidVariable is returned for malformed variable declarations.
	ErrInvalidVariable = errors.New("invalid formula variable")
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

// Binding ties a formula variable to the form field(s) named SourceFieldName.
// The name may match zero, one or many elements (radio groups).
type Binding struct {
	SourceFieldName string
	Kind            Kind
}

// Spec is a formula description: an expression plus its variable bindings.
type Spec struct {
	Expression string
	Variables  map[string]Binding
}

// Validate checks the construction constraints of a Spec.
func (s Spec) Validate() error {
	if strings.TrimSpace(s.Expression) == "" {
		return ErrEmptyExpression
	}
	for _, name := range s.Names() {
		if !identPattern.MatchString(name) {
			return fmt.Errorf("%w: %q is not an identifier", ErrInvalidVariable, name)
		}
		if s.Variables[name].SourceFieldName == "" {
			return fmt.Errorf("%w: %q has no source field", ErrInvalidVariable, name)
		}
	}
	return nil
}

// Names returns the variable names in evaluation order.
func (s Spec) Names() []string {
	names := make([]string, 0, len(s.Variables))
	for name := range s.Variables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a deep copy so callers cannot mutate a Spec held by an engine.
func (s Spec) Clone() Spec {
	out := Spec{Expression: s.Expression, Variables: make(map[string]Binding, len(s.Variables))}
	for k, v := range s.Variables {
		out.Variables[k] = v
	}
	return out
}

// SourceFields returns the distinct source field names, sorted.
func (s Spec) SourceFields() []string {
	seen := make(map[string]struct{}, len(s.Variables))
	var out []string
	for _, b := range s.Variables {
		if _, ok := seen[b.SourceFieldName]; ok {
			continue
		}
		seen[b.SourceFieldName] = struct{}{}
		out = append(out, b.SourceFieldName)
	}
	sort.Strings(out)
	return out
}
