package formctl

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"sync"

	"github.com/vk/formcalc/internal/calc"
	"github.com/vk/formcalc/internal/ctxlog"
	"github.com/vk/formcalc/internal/dom"
	"github.com/vk/formcalc/internal/expr"
	"github.com/vk/formcalc/internal/formula"
	"github.com/vk/formcalc/internal/relay"
)

var (
	// ErrUnknownOutput is returned when no element carries the output name.
	ErrUnknownOutput = errors.New("output field not found in form")
	// ErrCycle is returned when calculated fields would read each other in a loop.
	ErrCycle = errors.New("calculated fields form a cycle")
	// ErrDuplicateOutput is returned when an output already has a formula.
	ErrDuplicateOutput = errors.New("output field already has a formula")
	// ErrDisposed is returned by Add after Dispose.
	ErrDisposed = errors.New("controller is disposed")
)

// Form is the document a controller works on. It must be able to snapshot
// its values for the dirty hash.
type Form interface {
	dom.Form
	Values() map[string]string
}

// Option configures a Controller.
type Option func(*Controller)

// WithName sets the form name carried by relay updates.
func WithName(name string) Option {
	return func(c *Controller) { c.name = name }
}

// WithEvaluator sets the expression backend for every engine.
func WithEvaluator(ev expr.Evaluator) Option {
	return func(c *Controller) {
		if ev != nil {
			c.evaluator = ev
		}
	}
}

// WithDiagnostics sets the failure channel for every engine.
func WithDiagnostics(d calc.Diagnostics) Option {
	return func(c *Controller) { c.diagnostics = d }
}

// WithPublisher streams every pass to p.
func WithPublisher(p relay.Publisher) Option {
	return func(c *Controller) { c.publisher = p }
}

// Controller holds the engines of one form and the form's dirty baseline.
type Controller struct {
	ctx    context.Context
	logger *slog.Logger
	form   Form
	name   string

	evaluator   expr.Evaluator
	diagnostics calc.Diagnostics
	publisher   relay.Publisher

	mu       sync.Mutex
	engines  map[string]*calc.Engine
	specs    map[string]formula.Spec
	order    []string
	baseline string
	disposed bool
}

// New creates a controller for form and records the current form state as
// the clean baseline.
func New(ctx context.Context, form Form, opts ...Option) *Controller {
	c := &Controller{
		form:      form,
		evaluator: expr.NewHCL(),
		engines:   make(map[string]*calc.Engine),
		specs:     make(map[string]formula.Spec),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.ctx, c.logger = ctxlog.With(ctx, "form", c.name)
	c.UpdateFormHash()
	return c
}

// Add attaches a formula to the element named output and runs its first
// pass.
func (c *Controller) Add(output string, spec formula.Spec) (*calc.Engine, error) {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return nil, ErrDisposed
	}
	if _, dup := c.engines[output]; dup {
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrDuplicateOutput, output)
	}
	if err := spec.Validate(); err != nil {
		c.mu.Unlock()
		return nil, fmt.Errorf("calculated field %q: %w", output, err)
	}
	elements := c.form.ElementsByName(output)
	if len(elements) == 0 {
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrUnknownOutput, output)
	}
	if err := c.checkCycles(output, spec); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	c.specs[output] = spec.Clone()
	c.mu.Unlock()

	c.checkReferences(output, spec)

	target := elements[0]
	last := target.Value()
	opts := []calc.Option{
		calc.WithEvaluator(c.evaluator),
		calc.WithDirtyTracker(c),
		calc.WithObserver(func(field, value string, err error) {
			c.publish(field, value, err)
			if value == last {
				return
			}
			last = value
			c.form.Dispatch(target, calc.TriggerEvent(target))
		}),
	}
	if c.diagnostics != nil {
		opts = append(opts, calc.WithDiagnostics(c.diagnostics))
	}

	// The engine's first pass runs inside calc.New and may cascade into
	// engines added earlier, so the lock is not held here.
	eng, err := calc.New(c.ctx, c.form, target, spec, opts...)
	if err != nil {
		c.mu.Lock()
		delete(c.specs, output)
		c.mu.Unlock()
		return nil, err
	}

	c.mu.Lock()
	c.engines[output] = eng
	c.order = append(c.order, output)
	c.mu.Unlock()

	c.logger.Debug("Calculated field added.", "field", output, "variables", len(spec.Variables))
	return eng, nil
}

// checkCycles builds the field graph with the candidate formula in place.
// The caller holds c.mu.
func (c *Controller) checkCycles(output string, spec formula.Spec) error {
	g := newDepGraph()
	add := func(out string, s formula.Spec) {
		g.addNode(out)
		for _, src := range s.SourceFields() {
			g.addEdge(src, out)
		}
	}
	for out, s := range c.specs {
		add(out, s)
	}
	add(output, spec)
	return g.detectCycles()
}

// checkReferences logs variables a formula uses without declaring and
// variables it declares without using.
func (c *Controller) checkReferences(output string, spec formula.Spec) {
	refs := expr.References(c.evaluator, spec.Expression)
	used := make(map[string]struct{}, len(refs))
	for _, ref := range refs {
		used[ref] = struct{}{}
		if _, ok := spec.Variables[ref]; !ok {
			c.logger.Warn("Formula uses an undeclared variable.", "field", output, "variable", ref)
		}
	}
	for _, name := range spec.Names() {
		if _, ok := used[name]; !ok {
			c.logger.Debug("Formula declares a variable it never uses.", "field", output, "variable", name)
		}
	}
}

func (c *Controller) publish(field, value string, evalErr error) {
	if c.publisher == nil {
		return
	}
	u := relay.Update{Form: c.name, Field: field, Value: value}
	if evalErr != nil {
		u.Error = evalErr.Error()
	}
	if err := c.publisher.Publish(c.ctx, u); err != nil {
		c.logger.Warn("Failed to publish calculated field.", "field", field, "error", err)
	}
}

// FormHash digests every name and value of the form, in name order.
func (c *Controller) FormHash() string {
	values := c.form.Values()
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	h := sha256.New()
	for _, name := range names {
		// Length prefixes keep "a=b" "c" and "a" "b=c" apart.
		h.Write([]byte(strconv.Itoa(len(name)) + ":" + name + "="))
		h.Write([]byte(strconv.Itoa(len(values[name])) + ":" + values[name] + "\n"))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// UpdateFormHash records the current form state as clean. Engines call it
// after every pass.
func (c *Controller) UpdateFormHash() {
	hash := c.FormHash()
	c.mu.Lock()
	c.baseline = hash
	c.mu.Unlock()
}

// IsDirty reports whether the form changed since the last baseline.
func (c *Controller) IsDirty() bool {
	hash := c.FormHash()
	c.mu.Lock()
	defer c.mu.Unlock()
	return hash != c.baseline
}

// Engine returns the engine for output.
func (c *Controller) Engine(output string) (*calc.Engine, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	eng, ok := c.engines[output]
	return eng, ok
}

// Outputs returns the calculated field names in the order they were added.
func (c *Controller) Outputs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.order...)
}

// Values returns the current value of every calculated field.
func (c *Controller) Values() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]string, len(c.engines))
	for name, eng := range c.engines {
		out[name] = eng.Value()
	}
	return out
}

// Dispose disposes every engine and closes the publisher. It is idempotent.
func (c *Controller) Dispose() {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	c.disposed = true
	engines := make([]*calc.Engine, 0, len(c.order))
	for _, name := range c.order {
		engines = append(engines, c.engines[name])
	}
	c.mu.Unlock()

	for _, eng := range engines {
		eng.Dispose()
	}
	if c.publisher != nil {
		if err := c.publisher.Close(); err != nil {
			c.logger.Warn("Failed to close publisher.", "error", err)
		}
	}
	c.logger.Debug("Form controller disposed.", "engines", len(engines))
}
