package config

// Setting keys exposed by the resolved Settings.
const (
	KeyDebug                = DebugVar
	KeyPort                 = "PORT"
	KeySecretKey            = "SECRET_KEY"
	KeyLogLevel             = "LOG_LEVEL"
	KeyShutdownGracePeriod  = "SHUTDOWN_GRACE_PERIOD"
	KeyReadHeaderTimeout    = "READ_HEADER_TIMEOUT"
	KeyWriteTimeout         = "WRITE_TIMEOUT"
	KeyIdleTimeout          = "IDLE_TIMEOUT"
	KeyEnableRequestLogging = "ENABLE_REQUEST_LOGGING"
	KeyRateLimitRPS         = "RATE_LIMIT_RPS"
	KeyRateLimitBurst       = "RATE_LIMIT_BURST"
	KeyAllowedHosts         = "ALLOWED_HOSTS"
	KeyInternalIPs          = "INTERNAL_IPS"
	KeyCORSAllowedOrigins   = "CORS_ALLOWED_ORIGINS"
	KeyCORSAllowCredentials = "CORS_ALLOW_CREDENTIALS"
	KeyCSRFTrustedOrigins   = "CSRF_TRUSTED_ORIGINS"
	KeyCSRFCookieName       = "CSRF_COOKIE_NAME"
	KeyCSRFHeaderName       = "CSRF_HEADER_NAME"
	KeyCSRFCookieSecure     = "CSRF_COOKIE_SECURE"
	KeySessionCookieSecure  = "SESSION_COOKIE_SECURE"
)

// sensitiveKeys are masked by Settings.Redacted.
var sensitiveKeys = map[string]struct{}{
	KeySecretKey: {},
}
