package application

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/eugenenazirov/settings-resolver/internal/api"
	"github.com/eugenenazirov/settings-resolver/internal/config"
)

// App encapsulates the application dependencies and HTTP server.
type App struct {
	settings config.Settings
	handler  *api.Handler
	router   http.Handler
	logger   *zap.Logger
	server   *http.Server
}

// New initializes the application from the resolved settings.
func New(settings config.Settings, logger *zap.Logger) (*App, error) {
	handler, err := api.NewHandler(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to build handler: %w", err)
	}

	router, err := api.NewRouter(handler, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build HTTP handler: %w", err)
	}

	return &App{
		settings: settings,
		handler:  handler,
		router:   router,
		logger:   logger,
		server:   NewServer(settings, router),
	}, nil
}

// NewServer creates and configures an HTTP server from the provided settings.
func NewServer(settings config.Settings, handler http.Handler) *http.Server {
	addr := settings.String(config.KeyPort)
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: settings.Duration(config.KeyReadHeaderTimeout),
		WriteTimeout:      settings.Duration(config.KeyWriteTimeout),
		IdleTimeout:       settings.Duration(config.KeyIdleTimeout),
	}
}

// Start starts the HTTP server in a goroutine and logs the listening address.
func (a *App) Start() error {
	if a.settings.Profile() == config.Production && len(a.settings.Strings(config.KeyAllowedHosts)) == 0 {
		a.logger.Warn("ALLOWED_HOSTS is empty; every request will be rejected")
	}

	go func() {
		a.logger.Info("server listening",
			zap.String("addr", a.server.Addr),
			zap.Strings("allowed_hosts", a.settings.Strings(config.KeyAllowedHosts)),
		)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}

// Handler returns the root HTTP handler.
func (a *App) Handler() http.Handler {
	return a.router
}
