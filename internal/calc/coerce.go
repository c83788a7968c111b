package calc

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/vk/formcalc/internal/dom"
	"github.com/vk/formcalc/internal/formula"
)

// ErrUnsupportedResult is returned when a formula yields a value that
// cannot be written into a field.
var ErrUnsupportedResult = errors.New("unsupported formula result")

// ResolvedBinding pairs a formula variable with the elements its source
// field name matched when the engine was built.
type ResolvedBinding struct {
	Variable string
	formula.Binding
	Elements []dom.Element
}

// Read reduces the binding's elements to the single value the formula sees.
func (b ResolvedBinding) Read() any {
	if len(b.Elements) == 0 {
		return nil
	}
	switch b.Kind {
	case formula.Numeric:
		return ToNumber(b.Elements[0].Value())
	case formula.ExclusiveChoice:
		for _, el := range b.Elements {
			if el.Checked() {
				return el.Value()
			}
		}
		return ""
	default:
		return b.Elements[0].Value()
	}
}

// ToNumber coerces raw field input to a number. Empty, non-numeric and
// non-finite input yields NaN. Surrounding whitespace is ignored and
// unsigned 0x, 0o and 0b integer literals are accepted. Go-only literal
// forms (digit separators, signed or fractional hex) are rejected.
func ToNumber(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" || strings.Contains(s, "_") {
		return math.NaN()
	}
	if hasIntPrefix(s) {
		n, err := strconv.ParseInt(s, 0, 64)
		if err != nil {
			return math.NaN()
		}
		return float64(n)
	}
	if (s[0] == '+' || s[0] == '-') && hasIntPrefix(s[1:]) {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return math.NaN()
	}
	return f
}

func hasIntPrefix(s string) bool {
	if len(s) < 2 || s[0] != '0' {
		return false
	}
	switch s[1] {
	case 'x', 'X', 'o', 'O', 'b', 'B':
		return true
	}
	return false
}

// FormatResult renders an evaluation result as a field value. nil and NaN
// become "", which blanks invalid results while keeping a real zero.
func FormatResult(v any) (string, error) {
	switch tv := v.(type) {
	case nil:
		return "", nil
	case string:
		return tv, nil
	case bool:
		return strconv.FormatBool(tv), nil
	case float64:
		return formatNumber(tv), nil
	case float32:
		return formatNumber(float64(tv)), nil
	case int:
		return strconv.Itoa(tv), nil
	case int64:
		return strconv.FormatInt(tv, 10), nil
	default:
		return "", fmt.Errorf("%w: %T", ErrUnsupportedResult, v)
	}
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return ""
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	if abs := math.Abs(f); abs >= 1e21 || abs < 1e-6 {
		return trimExponent(strconv.FormatFloat(f, 'g', -1, 64))
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// trimExponent drops leading zeros from the exponent, so "1e-07" reads
// "1e-7".
func trimExponent(s string) string {
	i := strings.IndexByte(s, 'e')
	if i < 0 || i+2 >= len(s) {
		return s
	}
	digits := strings.TrimLeft(s[i+2:], "0")
	if digits == "" {
		digits = "0"
	}
	return s[:i+2] + digits
}
