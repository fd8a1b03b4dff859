package api

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/eugenenazirov/settings-resolver/internal/allowlist"
)

const corsMaxAge = 86400

// corsPolicy is the CORS part of the settings.
type corsPolicy struct {
	origins          allowlist.List
	allowCredentials bool
	extraHeaders     []string
	debug            bool
}

// csrfPolicy is the CSRF part of the settings.
type csrfPolicy struct {
	trusted    allowlist.List
	cookieName string
	headerName string
}

// hostMiddleware rejects requests whose Host header is not in ALLOWED_HOSTS.
func hostMiddleware(hosts allowlist.List, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !hosts.Allows(r.Host) {
			writeError(w, http.StatusBadRequest, "Invalid host", fmt.Sprintf("host %q is not allowed", r.Host))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// corsMiddleware echoes back allowed origins only. A wildcard is never sent, and a
// preflight from an unknown origin is refused outright.
func corsMiddleware(policy corsPolicy, logger *zap.Logger, next http.Handler) http.Handler {
	c := cors.New(corsOptions(policy))
	if policy.debug && logger != nil {
		c.Log = zap.NewStdLog(logger.Named("cors"))
	}
	handler := c.Handler(next)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && isPreflight(r) && !policy.origins.Allows(origin) {
			w.Header().Add("Vary", "Origin")
			writeError(w, http.StatusForbidden, "Origin not allowed", fmt.Sprintf("origin %q is not allowed", origin))
			return
		}
		handler.ServeHTTP(w, r)
	})
}

func corsOptions(policy corsPolicy) cors.Options {
	allowedHeaders := append([]string{"Origin", "Authorization", "Content-Type", "X-Requested-With"}, policy.extraHeaders...)

	return cors.Options{
		AllowCredentials: policy.allowCredentials,
		AllowedMethods:   []string{"GET", "HEAD", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   allowedHeaders,
		ExposedHeaders:   []string{"X-Request-ID"},
		MaxAge:           corsMaxAge,
		AllowOriginRequestFunc: func(_ *http.Request, origin string) bool {
			return policy.origins.Allows(origin)
		},
	}
}

func isPreflight(r *http.Request) bool {
	return r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""
}

// csrfMiddleware guards unsafe methods. The request origin, when present, must be
// trusted or the same host, and the CSRF header must match the CSRF cookie.
func csrfMiddleware(policy csrfPolicy, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if safeMethod(r.Method) {
			next.ServeHTTP(w, r)
			return
		}

		if origin, ok := requestOrigin(r); ok && !sameHost(origin, r.Host) && !policy.trusted.Allows(origin) {
			writeError(w, http.StatusForbidden, "CSRF verification failed", fmt.Sprintf("origin %q is not trusted", origin))
			return
		}

		cookie, err := r.Cookie(policy.cookieName)
		if err != nil || cookie.Value == "" {
			writeError(w, http.StatusForbidden, "CSRF verification failed", "CSRF cookie not set")
			return
		}
		token := r.Header.Get(policy.headerName)
		if token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(cookie.Value)) != 1 {
			writeError(w, http.StatusForbidden, "CSRF verification failed", "CSRF token missing or incorrect")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func safeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	default:
		return false
	}
}

// requestOrigin prefers the Origin header and falls back to Referer. A Referer
// that is not an absolute URL yields an empty origin, which matches nothing.
func requestOrigin(r *http.Request) (string, bool) {
	if origin := r.Header.Get("Origin"); origin != "" {
		return origin, true
	}
	if referer := r.Header.Get("Referer"); referer != "" {
		origin, _ := allowlist.OriginOf(referer)
		return origin, true
	}
	return "", false
}

func sameHost(origin, host string) bool {
	trimmed := origin
	if i := strings.Index(trimmed, "://"); i >= 0 {
		trimmed = trimmed[i+3:]
	}
	return trimmed != "" && strings.EqualFold(trimmed, host)
}
