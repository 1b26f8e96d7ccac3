package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"staffingapi/internal/app"
)

// InitComplianceCommands registers "compliance remind".
func InitComplianceCommands(rootCmd *cobra.Command) error {
	complianceCmd := &cobra.Command{
		Use:   "compliance",
		Short: "Compliance tracking jobs",
	}

	remindCmd := &cobra.Command{
		Use:   "remind",
		Short: "Email agency owners about expiring and expired compliance items once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log := setup(cmd)
			db, err := connect(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			// Reminders never touch documents, so storage stays disabled.
			c := app.New(cfg, db, nil, log, nil)
			res, err := c.Services.Compliance.SendReminders(cmd.Context())
			if err != nil {
				return err
			}
			c.Mailer.Wait()

			fmt.Fprintf(cmd.OutOrStdout(), "agencies=%d items=%d failed=%d\n", res.Agencies, res.Items, res.Failed)
			if res.Failed > 0 {
				return fmt.Errorf("%d reminder email(s) failed", res.Failed)
			}
			return nil
		},
	}

	complianceCmd.AddCommand(remindCmd)
	rootCmd.AddCommand(complianceCmd)
	return nil
}
