package commands

import (
	"context"

	"github.com/spf13/cobra"

	"staffingapi/internal/database/verify"
)

type verifyFunc func(*verify.Verifier, context.Context) (verify.Report, error)

// InitVerifyCommands registers "verify connection|rls|indexes". A failed check
// makes the command exit non-zero.
func InitVerifyCommands(rootCmd *cobra.Command) error {
	verifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "Check the database against what the API expects",
	}
	verifyCmd.PersistentFlags().Bool("json", false, "print the report as JSON")

	checks := []struct {
		use, short string
		run        verifyFunc
	}{
		{"connection", "Ping the database and print the server version", (*verify.Verifier).Connection},
		{"rls", "Check row level security and policy counts on every table", (*verify.Verifier).RLS},
		{"indexes", "Check that the indexes the queries rely on exist", (*verify.Verifier).Indexes},
	}
	for _, c := range checks {
		verifyCmd.AddCommand(&cobra.Command{
			Use:   c.use,
			Short: c.short,
			Args:  cobra.NoArgs,
			RunE:  runVerify(c.use, c.run),
		})
	}

	rootCmd.AddCommand(verifyCmd)
	return nil
}

func runVerify(name string, run verifyFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		cfg, _ := setup(cmd)
		db, err := connect(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		report, err := run(verify.New(db), cmd.Context())
		if err != nil {
			return err
		}
		asJSON, _ := cmd.Flags().GetBool("json")
		if err := printReport(cmd.OutOrStdout(), name, report, asJSON); err != nil {
			return err
		}
		if !report.OK() {
			return errVerificationFailed
		}
		return nil
	}
}
