package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iliyamo/pickflick/internal/config"
)

var rootCmd = &cobra.Command{
	Use:          "pickflick",
	Short:        "PickFlick: shared movie lists with a random pick",
	Long:         `HTTP API for group movie sessions. Commands: serve (default), migrate, consume, purge, hash-password, admin-token.`,
	RunE:         runServe,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, consumeCmd, purgeCmd, hashPasswordCmd, adminTokenCmd)
}

// bootstrap loads configuration and builds the logger every command shares.
func bootstrap() (config.Config, *zap.Logger, error) {
	cfg := config.Load()
	log, err := config.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, log, nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
