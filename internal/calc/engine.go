package calc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vk/formcalc/internal/ctxlog"
	"github.com/vk/formcalc/internal/dom"
	"github.com/vk/formcalc/internal/expr"
	"github.com/vk/formcalc/internal/formula"
	"github.com/zishang520/engine.io/v2/events"
)

// RecalculateEvent is the engine-internal signal that runs an evaluation pass.
const RecalculateEvent events.EventName = "formcalc:recalculate"

// Engine keeps one calculated field in sync with its formula.
type Engine struct {
	ctx    context.Context
	logger *slog.Logger

	form   dom.Form
	output dom.Element
	spec   formula.Spec

	evaluator  expr.Evaluator
	program    expr.Program
	compileErr error

	// bindings is fixed after construction.
	bindings []ResolvedBinding
	subs     []dom.Subscription
	signal   events.EventEmitter

	diagnostics Diagnostics
	dirty       DirtyTracker
	observers   []Observer

	value    string
	passes   int
	disposed bool
}

// New builds an engine for output, wires its listeners and runs the first
// evaluation pass. It fails only when spec does not validate.
func New(ctx context.Context, form dom.Form, output dom.Element, spec formula.Spec, opts ...Option) (*Engine, error) {
	if form == nil || output == nil {
		return nil, errors.New("calc: form and output field are required")
	}
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("calculated field %q: %w", output.Name(), err)
	}

	e := &Engine{
		form:        form,
		output:      output,
		spec:        spec.Clone(),
		evaluator:   expr.NewHCL(),
		diagnostics: LogDiagnostics{},
		signal:      events.New(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = ctxlog.FromContext(ctx).With("field", output.Name())
	}
	e.ctx = ctxlog.WithLogger(ctx, e.logger)

	e.program, e.compileErr = e.evaluator.Compile(e.spec.Expression)
	if e.compileErr != nil {
		e.logger.Debug("Formula does not compile; every pass will blank the field.", "evaluator", e.evaluator.Name(), "error", e.compileErr)
	}

	e.bind()
	e.signal.On(RecalculateEvent, func(...any) { e.evaluate() })

	e.logger.Debug("Calculation engine wired.", "bindings", len(e.bindings), "listeners", len(e.subs))
	e.Recalculate()
	return e, nil
}

// bind resolves every variable once and attaches one trigger listener per
// matched element.
func (e *Engine) bind() {
	for _, name := range e.spec.Names() {
		b := e.spec.Variables[name]
		elements := e.form.ElementsByName(b.SourceFieldName)
		if len(elements) == 0 {
			e.logger.Debug("Formula variable does not resolve, skipping.", "variable", name, "source", b.SourceFieldName)
			continue
		}

		e.bindings = append(e.bindings, ResolvedBinding{
			Variable: name,
			Binding:  b,
			Elements: elements,
		})
		for _, el := range elements {
			eventType := TriggerEvent(el)
			sub := e.form.AddEventListener(el, eventType, func(dom.Event) { e.Recalculate() })
			e.subs = append(e.subs, sub)
			e.logger.Debug("Listening for source changes.", "variable", name, "source", b.SourceFieldName, "event", eventType)
		}
	}
}

// Recalculate fires the recalculate signal. It is a no-op after Dispose.
func (e *Engine) Recalculate() {
	if e.disposed {
		return
	}
	e.signal.Emit(RecalculateEvent, e.output)
}

// OnRecalculate registers fn to run whenever the recalculate signal fires,
// after the evaluation pass.
func (e *Engine) OnRecalculate(fn func()) {
	if e.disposed || fn == nil {
		return
	}
	e.signal.On(RecalculateEvent, func(...any) { fn() })
}

// Variables reads the current value of every resolved binding.
func (e *Engine) Variables() map[string]any {
	vars := make(map[string]any, len(e.bindings))
	for _, b := range e.bindings {
		vars[b.Variable] = b.Read()
	}
	return vars
}

func (e *Engine) evaluate() {
	value, err := e.compute()
	if err != nil {
		e.diagnostics.Report(e.ctx, e.output.Name(), e.spec.Expression, err)
		value = ""
	}

	e.output.SetValue(value)
	e.value = value
	e.passes++
	e.logger.Debug("Calculated field updated.", "value", value, "pass", e.passes)

	if e.dirty != nil {
		e.dirty.UpdateFormHash()
	}
	for _, o := range e.observers {
		o(e.output.Name(), value, err)
	}
}

// compute runs one pass. Evaluator panics are converted into errors.
func (e *Engine) compute() (value string, err error) {
	defer func() {
		if r := recover(); r != nil {
			value, err = "", fmt.Errorf("evaluator panic: %v", r)
		}
	}()

	if e.compileErr != nil {
		return "", e.compileErr
	}
	raw, err := e.program.Evaluate(e.Variables())
	if err != nil {
		return "", err
	}
	return FormatResult(raw)
}

// Dispose releases every listener. It is idempotent.
func (e *Engine) Dispose() {
	if e.disposed {
		return
	}
	e.disposed = true
	for _, sub := range e.subs {
		sub.Remove()
	}
	e.subs = nil
	e.signal.Clear()
	e.logger.Debug("Calculation engine disposed.")
}

// Output returns the calculated field.
func (e *Engine) Output() dom.Element { return e.output }

// Spec returns a copy of the engine's formula.
func (e *Engine) Spec() formula.Spec { return e.spec.Clone() }

// Value returns the last value written to the output.
func (e *Engine) Value() string { return e.value }

// Passes returns the number of evaluation passes run so far.
func (e *Engine) Passes() int { return e.passes }

// Bindings returns the resolved bindings in evaluation order.
func (e *Engine) Bindings() []ResolvedBinding {
	return append([]ResolvedBinding(nil), e.bindings...)
}

// Disposed reports whether Dispose has been called.
func (e *Engine) Disposed() bool { return e.disposed }
