package main

import (
	"fmt"

	"explorewithme/config"
	"explorewithme/internal/repository/postgres"

	"github.com/spf13/cobra"
)

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down]",
		Short:     "apply or revert database migrations",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			db, err := postgres.Open(cmd.Context(), postgres.DBConfig{
				URL:          cfg.DBUrl,
				MaxOpenConns: 1,
				MaxIdleConns: 1,
			})
			if err != nil {
				return err
			}
			defer db.Close()

			if err := postgres.Migrate(db.DB, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrations %s: done\n", args[0])
			return nil
		},
	}
}
