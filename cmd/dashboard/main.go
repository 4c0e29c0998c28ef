package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/supporthub/support-dashboard/internal/client"
	"github.com/supporthub/support-dashboard/internal/config"
	"github.com/supporthub/support-dashboard/internal/dashboard"
	"github.com/supporthub/support-dashboard/internal/observability"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	var (
		apiURL   string
		email    string
		password string
		logFile  string
		timeout  time.Duration
	)
	flagSet := pflag.NewFlagSet("dashboard", pflag.ContinueOnError)
	flagSet.StringVar(&apiURL, "api", envOr("DASHBOARD_API_URL", "http://localhost:8080"), "base URL of the support API")
	flagSet.StringVar(&email, "email", os.Getenv("DASHBOARD_EMAIL"), "agent email")
	flagSet.StringVar(&password, "password", os.Getenv("DASHBOARD_PASSWORD"), "agent password")
	flagSet.StringVar(&logFile, "log-file", os.Getenv("DASHBOARD_LOG_FILE"), "write JSON logs to this file (logging is off when empty)")
	flagSet.DurationVar(&timeout, "timeout", 15*time.Second, "timeout for API requests")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if email == "" || password == "" {
		return errors.New("--email and --password are required (or DASHBOARD_EMAIL and DASHBOARD_PASSWORD)")
	}

	// The terminal belongs to the UI, so logs only go to a file.
	logger := zap.NewNop()
	if logFile != "" {
		var err error
		logger, err = observability.NewLogger(config.LoggerConfig{
			Level:      "info",
			File:       logFile,
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 7,
		})
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	api := client.New(apiURL, timeout)
	login, err := api.Login(ctx, email, password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	logger.Info("agent signed in", zap.String("agent", login.Agent.Name), zap.String("api", apiURL))

	model := dashboard.New(dashboard.Options{
		Backend:   dashboard.FromClient(api),
		Logger:    logger,
		AgentName: login.Agent.Name,
		Context:   ctx,
	})
	_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
