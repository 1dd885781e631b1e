// Package cli implements the docucortex command line.
package cli

import (
	"context"
	"errors"
	"os"
	"sync"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docucortex/internal/core/ports/driven"
	"github.com/custodia-labs/docucortex/internal/core/ports/driving"
)

// App is the assembled service stack the commands run against.
type App struct {
	Chat      driving.ChatService
	Documents driving.DocumentService
	Analysis  driving.AnalysisService
	Indexes   driven.IndexProvider

	// Tokens is nil when bearer auth is disabled.
	Tokens driven.TokenService

	// Serve runs the HTTP server until ctx is cancelled.
	Serve func(ctx context.Context) error

	// Close releases connections and stops background workers.
	Close func() error
}

// Bootstrap builds the App on first use.
type Bootstrap func(ctx context.Context) (*App, error)

var (
	version   = "dev"
	bootstrap Bootstrap

	appOnce sync.Once
	app     *App
	appErr  error
)

var rootCmd = &cobra.Command{
	Use:   "docucortex",
	Short: "Ask questions about your documents",
	Long: `DocuCortex stores uploaded PDF and text documents and answers
questions about them from passages retrieved from each document.`,
	SilenceUsage: true,
}

// Execute runs the root command. The stack is built lazily so that
// commands such as version work without any configuration.
func Execute(ctx context.Context, ver string, b Bootstrap) error {
	version = ver
	bootstrap = b
	rootCmd.SetOut(os.Stdout)
	defer closeApp()
	return rootCmd.ExecuteContext(ctx)
}

// loadApp builds the App once per process.
func loadApp(ctx context.Context) (*App, error) {
	appOnce.Do(func() {
		if bootstrap == nil {
			appErr = errors.New("service stack not configured")
			return
		}
		app, appErr = bootstrap(ctx)
	})
	return app, appErr
}

func closeApp() {
	if app != nil && app.Close != nil {
		_ = app.Close()
	}
}

// resetApp clears the cached stack. Tests use it between runs.
func resetApp() {
	closeApp()
	appOnce = sync.Once{}
	app, appErr = nil, nil
}
