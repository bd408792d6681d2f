package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/podcheck/podcheck/internal/adapters/outbound/config"
	"github.com/podcheck/podcheck/internal/domain"
)

func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Generate a .podcheck.yaml configuration file",
		Long:  "Create a .podcheck.yaml holding the default settings for both checks.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) > 0 {
				path = args[0]
			}

			absPath, err := filepath.Abs(path)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			dest := filepath.Join(absPath, config.FileName)

			if !force {
				if _, err := os.Stat(dest); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", config.FileName)
				}
			}

			content, err := generateConfig(domain.DefaultConfig())
			if err != nil {
				return err
			}

			if err := os.WriteFile(dest, content, 0644); err != nil {
				return fmt.Errorf("writing config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", config.FileName)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing .podcheck.yaml")

	return cmd
}

const configHeader = `# podcheck configuration
#
# tracker: Weights & Biases login, run, metric and artifact check.
#   The API key is read from api_key_env, then from env_file.
# sync: rclone config files to inspect and the remote that must exist.
#   Timeouts use Go duration syntax; 0 disables the deadline.

`

func generateConfig(cfg domain.Config) ([]byte, error) {
	body, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return append([]byte(configHeader), body...), nil
}
