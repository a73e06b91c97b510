package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/farmkeep/shell/internal/app"
	"github.com/farmkeep/shell/internal/config"
	"github.com/farmkeep/shell/internal/storage"
	"github.com/spf13/cobra"
)

func runShell(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger, err := config.NewLogger(cfg, "shell")
	if err != nil {
		return fmt.Errorf("logger error: %w", err)
	}
	slog.SetDefault(logger)

	logger.Info("starting farmkeep shell",
		"version", config.Version,
		"build_time", config.BuildTime,
		"debug", cfg.Debug,
	)

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := app.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("create shell: %w", err)
	}

	if err := a.Run(ctx); err != nil {
		return fmt.Errorf("shell exited: %w", err)
	}

	logger.Info("shell stopped cleanly")
	return nil
}

func openStore() (*storage.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return storage.NewStore(cfg.DataDir)
}

func showState(cmd *cobra.Command, _ []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(store.State(), "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

func resetState(cmd *cobra.Command, _ []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	if err := store.Reset(); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "launch decision cleared")
	return nil
}
