package config

var (
	developmentHosts   = []string{"127.0.0.1", "localhost"}
	developmentOrigins = []string{"http://localhost:3000"}
)

// developmentLayer is fixed: local hosts only, plus the frontend dev server origin.
// INTERNAL_IPS mirrors ALLOWED_HOSTS so debug tooling is reachable only from them.
func developmentLayer() layer {
	return layer{
		KeyDebug:               BoolValue(true),
		KeyAllowedHosts:        ListValue(developmentHosts...),
		KeyInternalIPs:         ListValue(developmentHosts...),
		KeyCORSAllowedOrigins:  ListValue(developmentOrigins...),
		KeyCSRFTrustedOrigins:  ListValue(developmentOrigins...),
		KeyCSRFCookieSecure:    BoolValue(false),
		KeySessionCookieSecure: BoolValue(false),
	}
}
