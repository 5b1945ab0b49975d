// Package cli holds the start-up steps shared by the boatshare daemons.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"boatshare/internal/config"
	applog "boatshare/internal/log"
)

// LoadEnvFile loads .env for local development. A missing file is not an error.
func LoadEnvFile(paths ...string) {
	_ = godotenv.Load(paths...)
}

// NewLogger builds the process logger from LOG_LEVEL and makes it the slog default.
func NewLogger(cfg *config.Config, component string) *applog.Logger {
	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(cfg.LogLevel),
		Component: component,
		Output:    os.Stdout,
	})
	applog.SetDefault(logger)
	return logger
}

// Bootstrap loads .env, the environment and the defaults file, then sets up
// logging. The logger is returned even when loading failed so the caller
// can report the error.
func Bootstrap(component string) (*config.Config, *applog.Logger, error) {
	LoadEnvFile()
	cfg, err := config.LoadWithDefaults()
	return cfg, NewLogger(cfg, component), err
}

// SignalContext is cancelled on SIGINT or SIGTERM.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// Fatal logs msg with err and exits with status 1.
func Fatal(logger *applog.Logger, msg string, err error, args ...any) {
	logger.Error(msg, append([]any{applog.FieldError, err}, args...)...)
	os.Exit(1)
}
