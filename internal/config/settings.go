package config

import (
	"maps"
	"slices"
	"time"
)

const redactedPlaceholder = "********"

// Settings is the resolved configuration. It has no mutators, so a value can be
// shared across goroutines without locking once Resolve has returned.
type Settings struct {
	profile Profile
	values  map[string]Value
}

// Profile reports which profile was merged over the base layer.
func (s Settings) Profile() Profile {
	return s.profile
}

// Lookup returns the value stored under key.
func (s Settings) Lookup(key string) (Value, bool) {
	v, ok := s.values[key]
	return v, ok
}

// The typed getters below return the zero value when key is absent or holds a different kind.

func (s Settings) String(key string) string {
	if v, ok := s.values[key]; ok && v.kind == KindString {
		return v.text
	}
	return ""
}

func (s Settings) Int(key string) int {
	if v, ok := s.values[key]; ok && v.kind == KindInt {
		return int(v.num)
	}
	return 0
}

func (s Settings) Float(key string) float64 {
	if v, ok := s.values[key]; ok && v.kind == KindFloat {
		return v.flt
	}
	return 0
}

func (s Settings) Bool(key string) bool {
	if v, ok := s.values[key]; ok && v.kind == KindBool {
		return v.flag
	}
	return false
}

func (s Settings) Duration(key string) time.Duration {
	if v, ok := s.values[key]; ok && v.kind == KindDuration {
		return time.Duration(v.num)
	}
	return 0
}

// Strings returns a copy of a list setting.
func (s Settings) Strings(key string) []string {
	if v, ok := s.values[key]; ok {
		return v.List()
	}
	return nil
}

// Keys returns the setting names in sorted order.
func (s Settings) Keys() []string {
	return slices.Sorted(maps.Keys(s.values))
}

// Map returns a fresh map of key to plain Go value.
func (s Settings) Map() map[string]any {
	out := make(map[string]any, len(s.values))
	for key, v := range s.values {
		out[key] = v.Interface()
	}
	return out
}

// Redacted returns a copy of the settings with sensitive values masked.
func (s Settings) Redacted() map[string]Value {
	out := make(map[string]Value, len(s.values))
	for key, v := range s.values {
		if _, sensitive := sensitiveKeys[key]; sensitive && v.String() != "" {
			v = StringValue(redactedPlaceholder)
		}
		out[key] = v
	}
	return out
}

func (s Settings) Equal(other Settings) bool {
	return s.profile == other.profile && maps.EqualFunc(s.values, other.values, Value.Equal)
}
