package api

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/eugenenazirov/settings-resolver/internal/allowlist"
	"github.com/eugenenazirov/settings-resolver/internal/config"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

const (
	csrfTokenBytes  = 32
	maxEchoBodySize = 1 << 20
)

// Handler serves the HTTP endpoints from the resolved settings.
type Handler struct {
	settings    config.Settings
	internalIPs allowlist.List

	clock func() time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// NewHandler constructs a Handler for settings.
func NewHandler(settings config.Settings, opts ...HandlerOption) (*Handler, error) {
	internalIPs, err := allowlist.NewHosts(settings.Strings(config.KeyInternalIPs))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.KeyInternalIPs, err)
	}

	h := &Handler{
		settings:    settings,
		internalIPs: internalIPs,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{
		Status:    "ok",
		Profile:   h.settings.Profile().String(),
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleConfig(w http.ResponseWriter, _ *http.Request) {
	resp := configResponse{
		Profile:        h.settings.Profile().String(),
		Debug:          h.settings.Bool(config.KeyDebug),
		CSRFCookieName: h.settings.String(config.KeyCSRFCookieName),
		CSRFHeaderName: h.settings.String(config.KeyCSRFHeaderName),
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleCSRF issues the token cookie that the frontend echoes back in the CSRF header.
// An existing well-formed cookie is kept so concurrent tabs share one token.
func (h *Handler) handleCSRF(w http.ResponseWriter, r *http.Request) {
	name := h.settings.String(config.KeyCSRFCookieName)

	token := ""
	if cookie, err := r.Cookie(name); err == nil && validCSRFToken(cookie.Value) {
		token = cookie.Value
	} else {
		generated, err := newCSRFToken()
		if err != nil {
			writeInternalError(w, err)
			return
		}
		token = generated
	}

	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    token,
		Path:     "/",
		Expires:  h.clock().Add(365 * 24 * time.Hour),
		Secure:   h.settings.Bool(config.KeyCSRFCookieSecure),
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, csrfResponse{
		Token:      token,
		HeaderName: h.settings.String(config.KeyCSRFHeaderName),
	})
}

func (h *Handler) handleEcho(w http.ResponseWriter, r *http.Request) {
	var payload map[string]any
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEchoBodySize)).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}
	writeJSON(w, http.StatusOK, echoResponse{Received: payload})
}

// handleDebugSettings exposes the redacted settings to internal IPs while DEBUG is on.
// Everyone else gets a plain 404 so the endpoint is not discoverable.
func (h *Handler) handleDebugSettings(w http.ResponseWriter, r *http.Request) {
	if !h.settings.Bool(config.KeyDebug) || !h.internalIPs.Allows(clientIP(r)) {
		writeError(w, http.StatusNotFound, "Not found", "")
		return
	}
	writeJSON(w, http.StatusOK, debugSettingsResponse{
		Profile:  h.settings.Profile(),
		Settings: h.settings.Redacted(),
	})
}

func newCSRFToken() (string, error) {
	buf := make([]byte, csrfTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate csrf token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func validCSRFToken(token string) bool {
	if len(token) != csrfTokenBytes*2 {
		return false
	}
	_, err := hex.DecodeString(token)
	return err == nil
}

// clientIP returns the host part of the peer address.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type healthResponse struct {
	Status    string    `json:"status"`
	Profile   string    `json:"profile"`
	Timestamp time.Time `json:"timestamp"`
}

type configResponse struct {
	Profile        string `json:"profile"`
	Debug          bool   `json:"debug"`
	CSRFCookieName string `json:"csrfCookieName"`
	CSRFHeaderName string `json:"csrfHeaderName"`
}

type csrfResponse struct {
	Token      string `json:"csrfToken"`
	HeaderName string `json:"headerName"`
}

type echoResponse struct {
	Received map[string]any `json:"received"`
}

type debugSettingsResponse struct {
	Profile  config.Profile          `json:"profile"`
	Settings map[string]config.Value `json:"settings"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, errorResponse{
		Error:   message,
		Details: details,
	})
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}
