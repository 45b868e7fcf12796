package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/jobbank-etl/internal/jobsync"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply jobbank schema migrations",
	Long:  "Creates the jobbank and jobbank_sync_log tables by applying pending SQL migrations in lexicographic order.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("migrate"); err != nil {
			return err
		}

		pool, err := postgresPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := jobsync.Migrate(ctx, pool); err != nil {
			return eris.Wrap(err, "migrate")
		}

		zap.L().Info("all migrations applied successfully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
