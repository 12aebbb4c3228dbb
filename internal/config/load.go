package config

import (
	"fmt"
	"strings"
)

// Sources lists where Load reads parameters from, in increasing precedence
// after the defaults.
type Sources struct {
	// Lookup reads environment variables; nil skips the environment.
	Lookup func(string) (string, bool)
	// File is a parameter file; empty skips it.
	File string
	// Settings are explicit "KEY=value" assignments, applied last.
	Settings []string
}

// Load builds validated Params from the defaults and src. Warnings are
// returned in the result even when err is nil.
func Load(src Sources) (Params, *ValidationResult, error) {
	p := DefaultParams()
	if src.Lookup != nil {
		if err := LoadEnv(&p, src.Lookup); err != nil {
			return p, nil, fmt.Errorf("environment: %w", err)
		}
	}
	if src.File != "" {
		parser, err := NewParser()
		if err != nil {
			return p, nil, err
		}
		err = parser.ParseFile(src.File, &p)
		parser.Close()
		if err != nil {
			return p, nil, err
		}
	}
	for _, kv := range src.Settings {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			return p, nil, fmt.Errorf("parameter setting %q is not KEY=value", kv)
		}
		if err := p.Set(key, value); err != nil {
			return p, nil, err
		}
	}
	result := p.Validate()
	return p, result, result.Error()
}
