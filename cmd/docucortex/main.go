package main

// @title           DocuCortex API
// @version         1.0
// @description     Upload PDF and text documents, then ask questions about them. Answers are generated from passages retrieved from the document.

// @contact.name   DocuCortex
// @contact.url    https://github.com/custodia-labs/docucortex/issues

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8000
// @BasePath  /api/v1
// @schemes   http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token. Format: "Bearer {token}"

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/custodia-labs/docucortex/internal/adapters/driving/cli"
	"github.com/custodia-labs/docucortex/internal/config"
)

var version = "dev"

func main() {
	cfg := config.Load()
	logger := newLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bootstrap := func(ctx context.Context) (*cli.App, error) {
		return buildApp(ctx, cfg, logger)
	}

	// cobra reports the error itself
	if err := cli.Execute(ctx, version, bootstrap); err != nil {
		stop()
		os.Exit(1)
	}
}

// newLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func newLogger(level, format string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
