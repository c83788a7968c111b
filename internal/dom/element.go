package dom

import (
	"strings"
	"sync"
)

// Element is a form control as seen by calculations.
type Element interface {
	// Name is the element's name attribute.
	Name() string
	// TagName is the lower-case tag name, e.g. "input" or "select".
	TagName() string
	// Attr returns an attribute value, or "" when absent.
	Attr(name string) string
	Value() string
	SetValue(v string)
	// Checked reports the selection state of radio and checkbox inputs.
	Checked() bool
}

// Event is delivered to listeners.
type Event struct {
	Type   string
	Target Element
}

// Listener handles a dispatched event.
type Listener func(Event)

// Subscription is a registered listener. Remove is idempotent.
type Subscription interface {
	Remove()
}

// Form is the form-scope capability consumed by calculation engines.
type Form interface {
	// ElementsByName returns the elements whose name attribute equals name,
	// in document order. The result may be empty.
	ElementsByName(name string) []Element
	// AddEventListener registers fn for eventType on el.
	AddEventListener(el Element, eventType string, fn Listener) Subscription
	// Dispatch fires eventType on el.
	Dispatch(el Element, eventType string)
}

// Node is the in-memory Element implementation.
type Node struct {
	mu      sync.RWMutex
	name    string
	tag     string
	attrs   map[string]string
	value   string
	checked bool
}

// NewElement creates a Node. Attribute names are lower-cased; a "value"
// attribute seeds the initial value and a "checked" attribute with any
// value other than "false" seeds the checked state.
func NewElement(name, tag string, attrs map[string]string) *Node {
	n := &Node{
		name:  name,
		tag:   strings.ToLower(tag),
		attrs: make(map[string]string, len(attrs)),
	}
	for k, v := range attrs {
		n.attrs[strings.ToLower(k)] = v
	}
	n.value = n.attrs["value"]
	if c, ok := n.attrs["checked"]; ok && c != "false" {
		n.checked = true
	}
	return n
}

func (n *Node) Name() string    { return n.name }
func (n *Node) TagName() string { return n.tag }

func (n *Node) Attr(name string) string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.attrs[strings.ToLower(name)]
}

func (n *Node) Value() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.value
}

func (n *Node) SetValue(v string) {
	n.mu.Lock()
	n.value = v
	n.mu.Unlock()
}

func (n *Node) Checked() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.checked
}

// SetChecked changes the selection state without touching siblings; use
// MemoryForm.Check for radio-group semantics.
func (n *Node) SetChecked(checked bool) {
	n.mu.Lock()
	n.checked = checked
	n.mu.Unlock()
}

// IsChoice reports whether el is a radio or checkbox input.
func IsChoice(el Element) bool {
	if el.TagName() != "input" {
		return false
	}
	switch strings.ToLower(el.Attr("type")) {
	case "radio", "checkbox":
		return true
	}
	return false
}
