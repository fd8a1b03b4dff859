package config

import (
	"fmt"
	"maps"
	"strings"
)

// Snapshot is an immutable copy of the environment variables visible at startup.
type Snapshot struct {
	vars map[string]string
}

// NewSnapshot builds a Snapshot from KEY=VALUE pairs as returned by os.Environ.
// Overrides only fill keys that environ does not define; the real environment wins.
func NewSnapshot(environ []string, overrides map[string]string) Snapshot {
	vars := make(map[string]string, len(environ)+len(overrides))
	for _, pair := range environ {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			continue
		}
		vars[key] = value
	}
	for key, value := range overrides {
		if _, set := vars[key]; set {
			continue
		}
		vars[key] = value
	}
	return Snapshot{vars: vars}
}

// CaptureEnvironment reads the override file at overrideFile, if any, and merges it
// under environ. A missing file is not an error.
func CaptureEnvironment(environ []string, overrideFile string) (Snapshot, error) {
	var overrides map[string]string
	if overrideFile != "" {
		values, err := LoadOverrideFile(overrideFile)
		if err != nil {
			return Snapshot{}, fmt.Errorf("capture environment: %w", err)
		}
		overrides = values
	}
	return NewSnapshot(environ, overrides), nil
}

// Lookup returns the value of key and whether it was set.
func (s Snapshot) Lookup(key string) (string, bool) {
	value, ok := s.vars[key]
	return value, ok
}

// Get returns the value of key or an empty string.
func (s Snapshot) Get(key string) string {
	return s.vars[key]
}

// Len returns the number of captured variables.
func (s Snapshot) Len() int {
	return len(s.vars)
}

// Map returns a copy of the captured variables.
func (s Snapshot) Map() map[string]string {
	return maps.Clone(s.vars)
}
