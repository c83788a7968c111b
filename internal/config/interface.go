package config

import "context"

// Loader is the interface for a format-specific form definition loader.
type Loader interface {
	// Load reads every given path, translates what it finds into the
	// format-agnostic model and validates it.
	Load(ctx context.Context, paths ...string) (*FormModel, error)
}
