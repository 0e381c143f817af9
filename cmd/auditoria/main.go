// cmd/auditoria/main.go
//
// This is the entry point for the energy bill audit client.
// When you run `auditoria` from any directory, this is what executes.
//
// Flow:
// 1. Load .env and .auditoria/config.yaml from the working directory
// 2. Open the session log
// 3. Launch the TUI against the configured Audit Service

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/auditoria-energia/internal/auditclient"
	"github.com/kingrea/auditoria-energia/internal/config"
	"github.com/kingrea/auditoria-energia/internal/logbook"
	"github.com/kingrea/auditoria-energia/internal/tui"
)

func main() {
	// The working directory is the "project" the client keeps its state in
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error getting working directory: %v\n", err)
		os.Exit(1)
	}

	if err := config.LoadDotEnv(cwd); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading .env: %v\n", err)
		os.Exit(1)
	}
	if err := config.InitAppDir(cwd); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing .auditoria directory: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.NewConfig(cwd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	lb, err := logbook.New(cfg.LogPath(), cfg.LogLevel())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log %s: %v\n", cfg.LogPath(), err)
		os.Exit(1)
	}
	defer lb.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := auditclient.New(cfg.BaseURL(),
		auditclient.WithTimeout(cfg.UploadTimeout()),
		auditclient.WithLogger(lb.Logger()),
	)

	p := tea.NewProgram(
		tui.NewApp(cfg, client, tui.WithLogbook(lb), tui.WithContext(ctx)),
		tea.WithAltScreen(), // Use alternate screen buffer (like vim does)
		tea.WithContext(ctx),
	)

	// Run blocks until the user quits or a signal arrives
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		lb.Error("TUI stopped: %v", err)
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		stop()
		lb.Close()
		os.Exit(1)
	}
	lb.Info("Session closed")
}
