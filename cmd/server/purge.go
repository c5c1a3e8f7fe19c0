package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/iliyamo/pickflick/internal/application"
	"github.com/iliyamo/pickflick/internal/config"
)

var purgeOlderThan time.Duration

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete sessions idle for longer than --older-than",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()
		if err := cfg.Validate(); err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
		defer cancel()

		rdb := config.NewRedisClient(cfg.Redis)
		if rdb != nil {
			defer func() { _ = rdb.Close() }()
		}
		store, err := application.OpenStore(ctx, cfg, rdb, log)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		n, err := application.NewSessionService(cfg, store, log).Purge(ctx, purgeOlderThan)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "purged %d sessions\n", n)
		return nil
	},
}

func init() {
	purgeCmd.Flags().DurationVar(&purgeOlderThan, "older-than", 7*24*time.Hour, "idle time after which a session is deleted")
}
