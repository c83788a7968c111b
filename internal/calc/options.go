package calc

import (
	"context"
	"log/slog"

	"github.com/vk/formcalc/internal/ctxlog"
	"github.com/vk/formcalc/internal/expr"
)

// Diagnostics receives evaluation failures. Reports are fire-and-forget.
type Diagnostics interface {
	Report(ctx context.Context, field, expression string, err error)
}

// DiagnosticsFunc adapts a function to Diagnostics.
type DiagnosticsFunc func(ctx context.Context, field, expression string, err error)

// Report implements Diagnostics.
func (f DiagnosticsFunc) Report(ctx context.Context, field, expression string, err error) {
	f(ctx, field, expression, err)
}

// LogDiagnostics reports failures to the context logger at error level.
type LogDiagnostics struct{}

// Report implements Diagnostics.
func (LogDiagnostics) Report(ctx context.Context, field, expression string, err error) {
	ctxlog.FromContext(ctx).Error("Formula evaluation failed.", "field", field, "expression", expression, "error", err)
}

// DirtyTracker is the form controller's hash hook, called once after every
// evaluation pass so programmatic writes are not mistaken for user edits.
type DirtyTracker interface {
	UpdateFormHash()
}

// Observer is notified after every pass with the value written and the
// failure, if any.
type Observer func(field, value string, err error)

// Option configures an Engine.
type Option func(*Engine)

// WithEvaluator sets the expression backend. The default is expr.NewHCL().
func WithEvaluator(ev expr.Evaluator) Option {
	return func(e *Engine) {
		if ev != nil {
			e.evaluator = ev
		}
	}
}

// WithDiagnostics sets the failure channel. The default is LogDiagnostics.
func WithDiagnostics(d Diagnostics) Option {
	return func(e *Engine) {
		if d != nil {
			e.diagnostics = d
		}
	}
}

// WithDirtyTracker installs the form hash hook.
func WithDirtyTracker(t DirtyTracker) Option {
	return func(e *Engine) {
		e.dirty = t
	}
}

// WithObserver adds a post-pass observer.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.observers = append(e.observers, o)
		}
	}
}

// WithLogger overrides the logger taken from the construction context.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}
