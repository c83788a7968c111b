// Package calc implements the live calculation engine: one reactive binding
// that keeps a calculated field in sync with the fields its formula reads.
//
// # Lifecycle
//
// New resolves every formula variable against the form, attaches a trigger
// listener to each matched element and then fires one evaluation pass, so
// the output is correct before New returns. Variables whose field name does
// not resolve are skipped without error; bindings are never re-resolved.
// Dispose releases every listener the engine registered.
//
// # Recalculate signal
//
// Source listeners never evaluate directly. They fire RecalculateEvent on
// the engine's own event emitter, and the evaluation pass is the first
// listener of that event. Other subsystems can fire or observe the same
// signal through Recalculate and OnRecalculate.
//
// # Failure policy
//
// Evaluation never returns an error to its caller. Compile errors,
// evaluation errors, unsupported result types and evaluator panics are
// reported to the Diagnostics channel and the output is blanked. An
// undefined or NaN result is also written as the empty string.
//
// # Threading
//
// An Engine is confined to the goroutine that dispatches form events.
// Passes run synchronously inside the dispatch and cannot overlap.
package calc
