package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iliyamo/pickflick/internal/application"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations for the configured SQL store",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := application.MigrateUp(cfg, log); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
		return nil
	},
}
