package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"staffingapi/internal/database"
	"staffingapi/internal/database/migration"
)

// InitMigrateCommands registers the migrate command.
func InitMigrateCommands(rootCmd *cobra.Command) error {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		Long: `Apply every schema step. Steps are idempotent, so re-running is safe.
With --if-needed the run is skipped when the schema already exists.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log := setup(cmd)
			db, err := connect(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			ifNeeded, _ := cmd.Flags().GetBool("if-needed")
			if ifNeeded {
				err = migration.EnsureMigrated(cmd.Context(), db, log, database.Host(cfg.Database))
			} else {
				err = migration.Run(cmd.Context(), db, log)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
			return nil
		},
	}
	migrateCmd.Flags().Bool("if-needed", false, "skip when the conversations table already exists")

	rootCmd.AddCommand(migrateCmd)
	return nil
}
