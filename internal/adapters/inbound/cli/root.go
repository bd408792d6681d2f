package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "podcheck",
		Short: "Pod integration diagnostics",
		Long: "podcheck verifies that a compute pod can talk to its experiment tracker " +
			"and that the file-sync tool is configured with the expected remote.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().String("config", "", "Path to config file (default .podcheck.yaml)")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging on stderr")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newTrackerCmd())
	cmd.AddCommand(newSyncCmd())
	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newMCPCmd())
	return cmd
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

// Execute runs the root command until it returns or the process is
// interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return newRootCmd().ExecuteContext(ctx)
}
