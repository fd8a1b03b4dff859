package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/settings-resolver/internal/application"
	"github.com/eugenenazirov/settings-resolver/internal/config"
	"github.com/eugenenazirov/settings-resolver/internal/logging"
)

var signalNotify = signal.Notify

func main() {
	kingpinApp := kingpin.New("settings-resolver", "Backend service whose settings are resolved once from the environment")
	envFile := kingpinApp.Flag("env-file", "KEY=VALUE override file; a bare name is searched for in parent directories").Default(".env").String()
	serveCmd := kingpinApp.Command("serve", "Run the HTTP server").Default()
	settingsCmd := kingpinApp.Command("settings", "Print the resolved settings with secrets masked")
	format := settingsCmd.Flag("format", "Output format").Default("yaml").Enum("yaml", "json")

	command := kingpin.MustParse(kingpinApp.Parse(os.Args[1:]))

	settings, err := config.Load(*envFile)
	if err != nil {
		kingpinApp.Fatalf("failed to load configuration: %v", err)
	}

	switch command {
	case settingsCmd.FullCommand():
		if err := printSettings(os.Stdout, settings, *format); err != nil {
			kingpinApp.Fatalf("failed to print settings: %v", err)
		}
	case serveCmd.FullCommand():
		serve(settings)
	}
}

func serve(settings config.Settings) {
	logger, err := logging.New(settings)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	app, err := application.New(settings, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}

	if err := app.Start(); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}

	shutdown(app.Server(), settings.Duration(config.KeyShutdownGracePeriod), logger)
}

type settingsDocument struct {
	Profile  config.Profile          `yaml:"profile" json:"profile"`
	Settings map[string]config.Value `yaml:"settings" json:"settings"`
}

func printSettings(w io.Writer, settings config.Settings, format string) error {
	doc := settingsDocument{
		Profile:  settings.Profile(),
		Settings: settings.Redacted(),
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

func shutdown(server *http.Server, timeout time.Duration, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	logger.Info("shutting down server", zap.Stringer("signal", sig))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("forced close failed", zap.Error(closeErr))
		}
	}
}
