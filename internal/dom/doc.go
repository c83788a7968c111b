// Package dom defines the host capabilities a calculation needs from the
// surrounding form: resolving elements by name, subscribing to element
// events and dispatching events.
//
// # Collaborators
//
// Form is the only capability an engine consumes. A browser host would
// back it with the real DOM; MemoryForm backs it with plain Go values and
// is what the CLI, the relay and every test use.
//
// # Threading
//
// Dispatch is synchronous: listeners run on the caller's goroutine, in
// registration order, before Dispatch returns. MemoryForm guards its
// registries with a mutex but never holds it while a listener runs, so
// listeners may dispatch further events or remove subscriptions.
package dom
