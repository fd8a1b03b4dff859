package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// layer is a set of settings that can be merged over another one.
type layer map[string]Value

// baseEnv holds the keys shared by both profiles.
type baseEnv struct {
	Port                 string        `env:"PORT" envDefault:"8080"`
	SecretKey            string        `env:"SECRET_KEY"`
	LogLevel             string        `env:"LOG_LEVEL" envDefault:"info"`
	ShutdownGracePeriod  time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`
	ReadHeaderTimeout    time.Duration `env:"READ_HEADER_TIMEOUT" envDefault:"5s"`
	WriteTimeout         time.Duration `env:"WRITE_TIMEOUT" envDefault:"15s"`
	IdleTimeout          time.Duration `env:"IDLE_TIMEOUT" envDefault:"60s"`
	EnableRequestLogging bool          `env:"ENABLE_REQUEST_LOGGING" envDefault:"true"`
	RateLimitRPS         float64       `env:"RATE_LIMIT_RPS" envDefault:"25"`
	RateLimitBurst       int           `env:"RATE_LIMIT_BURST" envDefault:"50"`
}

func baseLayer(snap Snapshot) (layer, error) {
	var e baseEnv
	if err := parseEnv(snap, &e); err != nil {
		return nil, fmt.Errorf("base settings: %w", err)
	}

	return layer{
		KeyDebug:                BoolValue(false),
		KeyPort:                 StringValue(strings.TrimSpace(e.Port)),
		KeySecretKey:            StringValue(e.SecretKey),
		KeyLogLevel:             StringValue(strings.TrimSpace(e.LogLevel)),
		KeyShutdownGracePeriod:  DurationValue(e.ShutdownGracePeriod),
		KeyReadHeaderTimeout:    DurationValue(e.ReadHeaderTimeout),
		KeyWriteTimeout:         DurationValue(e.WriteTimeout),
		KeyIdleTimeout:          DurationValue(e.IdleTimeout),
		KeyEnableRequestLogging: BoolValue(e.EnableRequestLogging),
		KeyRateLimitRPS:         FloatValue(e.RateLimitRPS),
		KeyRateLimitBurst:       IntValue(e.RateLimitBurst),
		KeyAllowedHosts:         ListValue(),
		KeyInternalIPs:          ListValue(),
		KeyCORSAllowedOrigins:   ListValue(),
		KeyCORSAllowCredentials: BoolValue(true),
		KeyCSRFTrustedOrigins:   ListValue(),
		KeyCSRFCookieName:       StringValue("csrftoken"),
		KeyCSRFHeaderName:       StringValue("X-CSRFToken"),
		KeyCSRFCookieSecure:     BoolValue(true),
		KeySessionCookieSecure:  BoolValue(true),
	}, nil
}

// parseEnv fills target from the snapshot only. env falls back to os.Environ for a
// nil map, so the zero Snapshot is given an empty one.
func parseEnv(snap Snapshot, target any) error {
	vars := snap.vars
	if vars == nil {
		vars = map[string]string{}
	}
	return env.ParseWithOptions(target, env.Options{Environment: vars})
}

// cleanList trims entries and drops empty ones left by stray commas.
func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
