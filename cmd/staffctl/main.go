// Package main is the entry point for staffctl, the operations CLI for the
// staffing marketplace database: migrations, diagnostics and one-off jobs.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"

	commands "staffingapi/cmd/staffctl/internal/commands"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := &cobra.Command{
		Use:   "staffctl",
		Short: "Operations CLI for the staffing marketplace",
		Long: `staffctl manages the staffing marketplace database.

It reads the same environment as the API server (DATABASE_URL or DB_*,
RESEND_API_KEY, COMPLIANCE_REMINDER_DAYS, ...). A .env file in the working
directory is loaded when present.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	if err := commands.InitMigrateCommands(rootCmd); err != nil {
		return fmt.Errorf("failed to initialize migrate commands: %w", err)
	}
	if err := commands.InitVerifyCommands(rootCmd); err != nil {
		return fmt.Errorf("failed to initialize verify commands: %w", err)
	}
	if err := commands.InitComplianceCommands(rootCmd); err != nil {
		return fmt.Errorf("failed to initialize compliance commands: %w", err)
	}

	return rootCmd.ExecuteContext(ctx)
}
