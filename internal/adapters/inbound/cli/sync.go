package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/podcheck/podcheck/internal/adapters/outbound/fsprobe"
	"github.com/podcheck/podcheck/internal/adapters/outbound/rclone"
	"github.com/podcheck/podcheck/internal/adapters/outbound/tui"
	"github.com/podcheck/podcheck/internal/application"
	"github.com/podcheck/podcheck/internal/domain"
)

func newSyncCmd() *cobra.Command {
	var (
		jsonOutput bool
		binary     string
		remote     string
		mode       string
		probes     []string
		timeout    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Check the rclone configuration",
		Long: "Inspect the rclone config file in each known location and verify that " +
			"`rclone listremotes` works and includes the required remote.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			sc := cfg.Sync

			flags := cmd.Flags()
			if flags.Changed("binary") {
				sc.Binary = binary
			}
			if flags.Changed("remote") {
				if err := domain.ValidRemote(remote); err != nil {
					return fmt.Errorf("invalid --remote: %w", err)
				}
				sc.RequiredRemote = remote
			}
			if flags.Changed("mode") {
				if !domain.ValidMode(mode) {
					return fmt.Errorf("invalid --mode %q: want three octal digits like 600", mode)
				}
				sc.RequiredMode = mode
			}
			if flags.Changed("probe") {
				refs, err := parseProbeFlags(probes)
				if err != nil {
					return err
				}
				sc.ConfigFiles = refs
			}
			if flags.Changed("timeout") {
				if timeout < 0 {
					return fmt.Errorf("--timeout must not be negative")
				}
				sc.Timeout = timeout
			}

			log := newLogger(cmd)
			svc := application.NewSyncService(sc, fsprobe.New(), rclone.New(sc.Binary, nil, log), log)
			report := svc.Run(cmd.Context())

			if jsonOutput {
				if err := renderJSON(cmd, syncOutput{OK: report.OK(), SyncReport: report}); err != nil {
					return err
				}
			} else {
				fmt.Fprint(cmd.OutOrStdout(), tui.RenderSyncReport(report))
			}

			if !report.OK() {
				return checksFailed("sync")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the report as JSON")
	cmd.Flags().StringVar(&binary, "binary", "", "rclone executable name or path")
	cmd.Flags().StringVar(&remote, "remote", "", "Remote prefix that must be configured, e.g. dbx:")
	cmd.Flags().StringVar(&mode, "mode", "", "Required permission bits for config files, e.g. 600")
	cmd.Flags().StringArrayVar(&probes, "probe", nil, "Config file to inspect as location=path (repeatable, replaces the defaults)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Timeout for rclone listremotes (0 disables)")

	return cmd
}

// parseProbeFlags turns location=path pairs into config file refs.
func parseProbeFlags(values []string) ([]domain.ConfigFileRef, error) {
	refs := make([]domain.ConfigFileRef, 0, len(values))
	for _, v := range values {
		location, path, ok := strings.Cut(v, "=")
		location, path = strings.TrimSpace(location), strings.TrimSpace(path)
		if !ok || location == "" || path == "" {
			return nil, fmt.Errorf("invalid --probe %q: want location=path", v)
		}
		refs = append(refs, domain.ConfigFileRef{Location: location, Path: path})
	}
	return refs, nil
}

type syncOutput struct {
	OK bool `json:"ok"`
	domain.SyncReport
}
