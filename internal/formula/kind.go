package formula

import "strings"

// Kind selects how a binding's elements are reduced to a single value.
type Kind int

const (
	// Generic uses the first element's raw value.
	Generic Kind = iota
	// Numeric coerces the first element's value to a number.
	Numeric
	// ExclusiveChoice uses the value of whichever element is checked.
	ExclusiveChoice
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case ExclusiveChoice:
		return "exclusive_choice"
	default:
		return "generic"
	}
}

// ParseKind maps a host field type tag to a Kind. Fully-qualified class
// names such as `verbb\formie\fields\formfields\Number` are reduced to
// their last segment. Matching is case-insensitive and unknown tags are
// Generic.
func ParseKind(tag string) Kind {
	short := tag
	if i := strings.LastIndexAny(short, `\/.`); i >= 0 {
		short = short[i+1:]
	}
	switch strings.ToLower(strings.TrimSpace(short)) {
	case "number", "numeric":
		return Numeric
	case "radio", "radios", "radiobuttons", "exclusive_choice":
		return ExclusiveChoice
	default:
		return Generic
	}
}
