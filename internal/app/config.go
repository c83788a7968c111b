package app

import (
	"errors"
	"fmt"
	"strings"
)

// Interaction is one simulated user edit: set field Name to Value, or check
// the option of that value when Name is a choice group.
type Interaction struct {
	Name  string
	Value string
}

// ParseInteraction parses "name=value". The value may be empty or contain
// further "=" signs.
func ParseInteraction(s string) (Interaction, error) {
	name, value, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return Interaction{}, fmt.Errorf("invalid interaction %q: expected name=value", s)
	}
	return Interaction{Name: name, Value: value}, nil
}

// String implements fmt.Stringer.
func (i Interaction) String() string { return i.Name + "=" + i.Value }

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	FormPaths    []string // hcl files or directories
	Interactions []Interaction

	RelayURL       string
	RelayNamespace string
	RelayEvent     string
	// RelayInsecure skips TLS certificate verification for the relay.
	RelayInsecure bool

	LogFormat string
	LogLevel  string
}

// NewConfig validates cfg and returns a copy.
func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.FormPaths) == 0 {
		return nil, errors.New("at least one form path is required")
	}
	for _, p := range cfg.FormPaths {
		if strings.TrimSpace(p) == "" {
			return nil, errors.New("form path cannot be empty")
		}
	}
	if cfg.RelayURL == "" && (cfg.RelayNamespace != "" || cfg.RelayEvent != "" || cfg.RelayInsecure) {
		return nil, errors.New("relay options require a relay URL")
	}
	return &cfg, nil
}
