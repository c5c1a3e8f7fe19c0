package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iliyamo/pickflick/internal/queue"
)

var consumeCmd = &cobra.Command{
	Use:   "consume",
	Short: "Append session.completed events to the selection log",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		ctx, stop := signalContext(cmd.Context())
		defer stop()

		c := &queue.Consumer{URL: cfg.Queue.URL, Queue: cfg.Queue.Name, LogDir: cfg.Queue.LogDir, Log: log}
		log.Info("consumer started", zap.String("queue", cfg.Queue.Name), zap.String("dir", cfg.Queue.LogDir))
		if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}
