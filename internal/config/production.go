package config

import "fmt"

type productionEnv struct {
	AllowedHosts       []string `env:"ALLOWED_HOSTS" envSeparator:","`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	CSRFTrustedOrigins []string `env:"CSRF_TRUSTED_ORIGINS" envSeparator:","`
}

// productionLayer reads the allow-lists from the environment. Unset lists stay
// empty, which rejects every host and origin.
func productionLayer(snap Snapshot) (layer, error) {
	var e productionEnv
	if err := parseEnv(snap, &e); err != nil {
		return nil, fmt.Errorf("production settings: %w", err)
	}

	return layer{
		KeyDebug:              BoolValue(false),
		KeyAllowedHosts:       ListValue(cleanList(e.AllowedHosts)...),
		KeyInternalIPs:        ListValue(),
		KeyCORSAllowedOrigins: ListValue(cleanList(e.CORSAllowedOrigins)...),
		KeyCSRFTrustedOrigins: ListValue(cleanList(e.CSRFTrustedOrigins)...),
	}, nil
}
