// Package relay streams calculated-field updates out of the process, so a
// live preview can follow a form while it is being filled in.
package relay

import (
	"context"
	"log/slog"
	"sync"

	"github.com/vk/formcalc/internal/ctxlog"
)

// Update is one calculated-field change.
type Update struct {
	Form  string `json:"form"`
	Field string `json:"field"`
	Value string `json:"value"`
	// Error is set when the pass failed and the field was blanked.
	Error string `json:"error,omitempty"`
}

// Publisher delivers updates.
type Publisher interface {
	Publish(ctx context.Context, u Update) error
	Close() error
}

// LogPublisher writes updates to a logger. It is the fallback when no
// remote endpoint is configured.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLog creates a LogPublisher. A nil logger means the context logger at
// publish time.
func NewLog(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish implements Publisher.
func (p *LogPublisher) Publish(ctx context.Context, u Update) error {
	logger := p.logger
	if logger == nil {
		logger = ctxlog.FromContext(ctx)
	}
	attrs := []any{"form", u.Form, "field", u.Field, "value", u.Value}
	if u.Error != "" {
		attrs = append(attrs, "error", u.Error)
	}
	logger.Info("Calculated field changed.", attrs...)
	return nil
}

// Close implements Publisher.
func (p *LogPublisher) Close() error { return nil }

// Recorder keeps every update in memory. Tests use it to observe the stream.
type Recorder struct {
	mu      sync.Mutex
	updates []Update
	closed  bool
}

// Publish implements Publisher.
func (r *Recorder) Publish(_ context.Context, u Update) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, u)
	return nil
}

// Close implements Publisher.
func (r *Recorder) Close() error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	return nil
}

// Updates returns a copy of everything published so far.
func (r *Recorder) Updates() []Update {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Update(nil), r.updates...)
}

// Closed reports whether Close was called.
func (r *Recorder) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}
