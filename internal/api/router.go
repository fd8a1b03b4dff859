package api

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/eugenenazirov/settings-resolver/internal/allowlist"
	"github.com/eugenenazirov/settings-resolver/internal/config"
)

// RouterOption configures the behaviour of NewRouter.
type RouterOption func(*routerConfig)

// WithLogging controls whether access logs are emitted.
func WithLogging(enabled bool) RouterOption {
	return func(cfg *routerConfig) {
		cfg.enableLogging = enabled
	}
}

// WithRateLimit replaces the limiter with a per-client one; zero disables limiting.
func WithRateLimit(ratePerSecond float64, burst int) RouterOption {
	return func(cfg *routerConfig) {
		cfg.rateLimiter = newClientLimiter(ratePerSecond, burst)
	}
}

// WithRateLimiter overrides the request rate limiter (primarily for tests).
func WithRateLimiter(limiter rateLimiter) RouterOption {
	return func(cfg *routerConfig) {
		cfg.rateLimiter = limiter
	}
}

type routerConfig struct {
	enableLogging bool
	logger        *zap.Logger
	rateLimiter   rateLimiter
}

// NewRouter creates the HTTP router. Host, CORS and CSRF checks are built from the
// handler's settings; logging and rate limiting default to them and may be overridden.
func NewRouter(handler *Handler, logger *zap.Logger, opts ...RouterOption) (http.Handler, error) {
	settings := handler.settings
	cfg := routerConfig{
		enableLogging: settings.Bool(config.KeyEnableRequestLogging),
		logger:        logger,
		rateLimiter:   newClientLimiter(settings.Float(config.KeyRateLimitRPS), settings.Int(config.KeyRateLimitBurst)),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	hosts, err := allowlist.NewHosts(settings.Strings(config.KeyAllowedHosts))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.KeyAllowedHosts, err)
	}
	corsOrigins, err := allowlist.NewOrigins(settings.Strings(config.KeyCORSAllowedOrigins))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.KeyCORSAllowedOrigins, err)
	}
	trusted, err := allowlist.NewOrigins(settings.Strings(config.KeyCSRFTrustedOrigins))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.KeyCSRFTrustedOrigins, err)
	}

	csrfHeader := settings.String(config.KeyCSRFHeaderName)
	cors := corsPolicy{
		origins:          corsOrigins,
		allowCredentials: settings.Bool(config.KeyCORSAllowCredentials),
		extraHeaders:     []string{csrfHeader, "X-Request-ID"},
		debug:            settings.Bool(config.KeyDebug),
	}
	csrf := csrfPolicy{
		trusted:    trusted,
		cookieName: settings.String(config.KeyCSRFCookieName),
		headerName: csrfHeader,
	}

	mux := http.NewServeMux()
	mux.Handle("GET /api/health", http.HandlerFunc(handler.handleHealth))
	mux.Handle("GET /api/config", http.HandlerFunc(handler.handleConfig))
	mux.Handle("GET /api/csrf", http.HandlerFunc(handler.handleCSRF))
	mux.Handle("POST /api/echo", http.HandlerFunc(handler.handleEcho))
	mux.Handle("GET /api/debug/settings", http.HandlerFunc(handler.handleDebugSettings))

	var root http.Handler = mux
	root = csrfMiddleware(csrf, root)
	root = corsMiddleware(cors, cfg.logger, root)
	root = hostMiddleware(hosts, root)
	root = recoveryMiddleware(cfg.logger, root)
	if cfg.enableLogging {
		root = loggingMiddleware(cfg.logger, root)
	}
	root = rateLimitMiddleware(cfg.rateLimiter, root)
	root = requestIDMiddleware(root)

	return root, nil
}

func loggingMiddleware(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		requestID := requestIDFromContext(r.Context())
		logger.Info("request completed",
			zap.String("method", r.Method),
			zap.String("host", r.Host),
			zap.String("path", r.URL.Path),
			zap.String("origin", r.Header.Get("Origin")),
			zap.Int("status", rec.status),
			zap.Duration("duration", duration),
			zap.String("request_id", requestID),
		)
	})
}

func recoveryMiddleware(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("panic recovered", zap.Any("error", rec))
				writeError(w, http.StatusInternalServerError, "Internal error", "unexpected server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		if requestID == "" {
			requestID = generateRequestID()
		}
		ctx := r.Context()
		ctx = contextWithRequestID(ctx, requestID)

		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func generateRequestID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return strconv.FormatInt(time.Now().UnixNano(), 10)
	}
	return hex.EncodeToString(buf)
}

func contextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDContextKey, id)
}

type responseRecorder struct {
	http.ResponseWriter
	status int
}

func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
