package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/student-management/internal/client"
	"github.com/stemsi/student-management/internal/config"
	"github.com/stemsi/student-management/internal/logger"
	"github.com/stemsi/student-management/internal/ui"
	"golang.org/x/term"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	baseURL := flag.String("api", cfg.APIBaseURL, "Student API base URL")
	flag.Parse()

	// ─── Initialize Logger ─────────────────────────────────────────────
	// Logs go to stderr, stdout carries the table.
	log := logger.New(os.Stderr, cfg.LogLevel, cfg.LogFormat).With().Str("component", "studentctl").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ─── CLI Loop ──────────────────────────────────────────────────────
	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	api := client.New(*baseURL, cfg.ClientTimeout)
	shell := ui.NewShell(os.Stdin, os.Stdout, interactive)
	app := ui.NewApp(api, shell, os.Stdout, log)

	if interactive {
		fmt.Printf("=== Student Manager (%s) ===\n", *baseURL)
		fmt.Println("Type help for commands.")
	}

	if err := shell.Run(ctx, app); err != nil {
		log.Error().Err(err).Msg("Input error")
		os.Exit(1)
	}
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
