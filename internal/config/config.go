package config

import (
	"fmt"
	"maps"
	"math"
	"os"

	"go.uber.org/zap/zapcore"

	"github.com/eugenenazirov/settings-resolver/internal/allowlist"
)

// Load resolves the settings for this process from os.Environ and the override file.
// A bare file name is searched for from the working directory upwards.
func Load(overrideFile string) (Settings, error) {
	snap, err := CaptureEnvironment(os.Environ(), FindOverrideFile(overrideFile))
	if err != nil {
		return Settings{}, fmt.Errorf("load settings: %w", err)
	}

	settings, err := Resolve(snap)
	if err != nil {
		return Settings{}, fmt.Errorf("load settings: %w", err)
	}
	return settings, nil
}

// Resolve selects the profile for snap and merges it over the base layer.
// The result depends on snap alone, so resolving the same snapshot twice yields equal Settings.
func Resolve(snap Snapshot) (Settings, error) {
	profile := SelectProfile(snap)

	base, err := baseLayer(snap)
	if err != nil {
		return Settings{}, err
	}

	var overlay layer
	switch profile {
	case Development:
		overlay = developmentLayer()
	default:
		overlay, err = productionLayer(snap)
		if err != nil {
			return Settings{}, err
		}
	}

	settings := Settings{
		profile: profile,
		values:  merge(base, overlay),
	}
	if err := validate(settings); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

// merge copies base and applies overlay on top; overlay wins on shared keys.
func merge(base, overlay layer) map[string]Value {
	values := make(map[string]Value, len(base)+len(overlay))
	maps.Copy(values, base)
	maps.Copy(values, overlay)
	return values
}

// validate checks the merged settings.
func validate(s Settings) error {
	if s.String(KeyPort) == "" {
		return invalidSetting(KeyPort, "must not be empty")
	}
	if _, err := zapcore.ParseLevel(s.String(KeyLogLevel)); err != nil {
		return invalidSetting(KeyLogLevel, "%v", err)
	}
	if rps := s.Float(KeyRateLimitRPS); math.IsNaN(rps) || math.IsInf(rps, 0) {
		return invalidSetting(KeyRateLimitRPS, "must be a finite number")
	} else if rps < 0 {
		return invalidSetting(KeyRateLimitRPS, "must be >= 0")
	}
	if s.Int(KeyRateLimitBurst) < 0 {
		return invalidSetting(KeyRateLimitBurst, "must be >= 0")
	}
	for _, key := range []string{KeyShutdownGracePeriod, KeyReadHeaderTimeout, KeyWriteTimeout, KeyIdleTimeout} {
		if s.Duration(key) < 0 {
			return invalidSetting(key, "must not be negative")
		}
	}
	if s.String(KeyCSRFCookieName) == "" || s.String(KeyCSRFHeaderName) == "" {
		return invalidSetting(KeyCSRFCookieName, "cookie and header names are required")
	}

	for _, key := range []string{KeyAllowedHosts, KeyInternalIPs} {
		if _, err := allowlist.NewHosts(s.Strings(key)); err != nil {
			return invalidSetting(key, "%v", err)
		}
	}
	for _, key := range []string{KeyCORSAllowedOrigins, KeyCSRFTrustedOrigins} {
		if _, err := allowlist.NewOrigins(s.Strings(key)); err != nil {
			return invalidSetting(key, "%v", err)
		}
	}
	return nil
}
