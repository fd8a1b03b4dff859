package config

import "fmt"

const (
	// DebugVar selects the development profile when set to DebugTrueLiteral.
	DebugVar = "DEBUG"
	// DebugTrueLiteral is compared case-sensitively; any other value means production.
	DebugTrueLiteral = "True"
)

// Profile is the settings variant chosen for the lifetime of the process.
type Profile int

const (
	Production Profile = iota
	Development
)

// SelectProfile returns Development only when DEBUG equals "True" exactly.
func SelectProfile(snap Snapshot) Profile {
	if value, ok := snap.Lookup(DebugVar); ok && value == DebugTrueLiteral {
		return Development
	}
	return Production
}

func (p Profile) String() string {
	switch p {
	case Development:
		return "development"
	case Production:
		return "production"
	default:
		return fmt.Sprintf("profile(%d)", int(p))
	}
}

// MarshalText encodes the profile by name for YAML and JSON output.
func (p Profile) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}
