package cli

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/podcheck/podcheck/internal/adapters/outbound/config"
	"github.com/podcheck/podcheck/internal/domain"
	"github.com/podcheck/podcheck/internal/logging"
)

// loadConfig reads the file named by --config, or .podcheck.yaml when unset.
func loadConfig(cmd *cobra.Command) (domain.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.New().Load(path)
	if err != nil {
		return domain.Config{}, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command) zerolog.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	return logging.New(cmd.ErrOrStderr(), verbose)
}

func renderJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// checksFailed wraps domain.ErrChecksFailed with the command name so main
// can exit non-zero without printing a second error line.
func checksFailed(command string) error {
	return fmt.Errorf("%s: %w", command, domain.ErrChecksFailed)
}
