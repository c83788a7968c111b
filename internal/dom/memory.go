package dom

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrNoSuchElement is returned when a name or option does not resolve.
var ErrNoSuchElement = errors.New("no such element")

type listenerKey struct {
	el        Element
	eventType string
}

type listenerEntry struct {
	id uint64
	fn Listener
}

// MemoryForm is an in-memory Form.
type MemoryForm struct {
	mu        sync.Mutex
	elements  []Element
	listeners map[listenerKey][]*listenerEntry
	nextID    uint64
}

// NewMemoryForm creates a form holding the given elements in document order.
func NewMemoryForm(elements ...Element) *MemoryForm {
	f := &MemoryForm{listeners: make(map[listenerKey][]*listenerEntry)}
	f.Add(elements...)
	return f
}

// Add appends elements to the form.
func (f *MemoryForm) Add(elements ...Element) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, el := range elements {
		if el != nil {
			f.elements = append(f.elements, el)
		}
	}
}

// ElementsByName implements Form.
func (f *MemoryForm) ElementsByName(name string) []Element {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Element
	for _, el := range f.elements {
		if el.Name() == name {
			out = append(out, el)
		}
	}
	return out
}

// AddEventListener implements Form.
func (f *MemoryForm) AddEventListener(el Element, eventType string, fn Listener) Subscription {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	key := listenerKey{el: el, eventType: eventType}
	f.listeners[key] = append(f.listeners[key], &listenerEntry{id: f.nextID, fn: fn})
	return &subscription{form: f, key: key, id: f.nextID}
}

// Dispatch implements Form. Listeners added during dispatch are not called
// for the event in flight.
func (f *MemoryForm) Dispatch(el Element, eventType string) {
	f.mu.Lock()
	entries := append([]*listenerEntry(nil), f.listeners[listenerKey{el: el, eventType: eventType}]...)
	f.mu.Unlock()

	ev := Event{Type: eventType, Target: el}
	for _, entry := range entries {
		if f.active(el, eventType, entry.id) {
			entry.fn(ev)
		}
	}
}

// ListenerCount returns the number of listeners registered for el and eventType.
func (f *MemoryForm) ListenerCount(el Element, eventType string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listeners[listenerKey{el: el, eventType: eventType}])
}

// TotalListeners returns the number of listeners across all elements.
func (f *MemoryForm) TotalListeners() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, entries := range f.listeners {
		n += len(entries)
	}
	return n
}

// Input sets the value of the first element named name.
func (f *MemoryForm) Input(name, value string) (Element, error) {
	els := f.ElementsByName(name)
	if len(els) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoSuchElement, name)
	}
	els[0].SetValue(value)
	return els[0], nil
}

// Check acts like a click on the option of group name whose value is
// value. A radio option becomes the only checked one of its group; any
// other option toggles.
func (f *MemoryForm) Check(name, value string) (Element, error) {
	var target Element
	els := f.ElementsByName(name)
	for _, el := range els {
		if el.Value() == value {
			target = el
			break
		}
	}
	if target == nil {
		return nil, fmt.Errorf("%w: option %q of %q", ErrNoSuchElement, value, name)
	}
	radio := strings.EqualFold(target.Attr("type"), "radio")
	for _, el := range els {
		n, ok := el.(*Node)
		if !ok {
			continue
		}
		if el == target {
			n.SetChecked(radio || !n.Checked())
		} else if radio {
			n.SetChecked(false)
		}
	}
	return target, nil
}

// Values snapshots the form as name to value. Choice inputs contribute only
// when checked; several checked boxes of one name are joined with ",".
func (f *MemoryForm) Values() map[string]string {
	f.mu.Lock()
	els := append([]Element(nil), f.elements...)
	f.mu.Unlock()

	out := make(map[string]string, len(els))
	multi := make(map[string][]string)
	for _, el := range els {
		if el.Name() == "" {
			continue
		}
		if !IsChoice(el) {
			out[el.Name()] = el.Value()
			continue
		}
		if el.Checked() {
			multi[el.Name()] = append(multi[el.Name()], el.Value())
		} else if _, ok := multi[el.Name()]; !ok {
			multi[el.Name()] = nil
		}
	}
	for name, vals := range multi {
		out[name] = strings.Join(vals, ",")
	}
	return out
}

// Names returns the distinct element names in sorted order.
func (f *MemoryForm) Names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := make(map[string]struct{})
	var names []string
	for _, el := range f.elements {
		if _, ok := seen[el.Name()]; ok || el.Name() == "" {
			continue
		}
		seen[el.Name()] = struct{}{}
		names = append(names, el.Name())
	}
	sort.Strings(names)
	return names
}

func (f *MemoryForm) active(el Element, eventType string, id uint64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, entry := range f.listeners[listenerKey{el: el, eventType: eventType}] {
		if entry.id == id {
			return true
		}
	}
	return false
}

func (f *MemoryForm) remove(key listenerKey, id uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entries := f.listeners[key]
	for i, entry := range entries {
		if entry.id == id {
			f.listeners[key] = append(entries[:i:i], entries[i+1:]...)
			break
		}
	}
	if len(f.listeners[key]) == 0 {
		delete(f.listeners, key)
	}
}

type subscription struct {
	once sync.Once
	form *MemoryForm
	key  listenerKey
	id   uint64
}

func (s *subscription) Remove() {
	s.once.Do(func() { s.form.remove(s.key, s.id) })
}
