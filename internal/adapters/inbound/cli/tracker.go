package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/podcheck/podcheck/internal/adapters/outbound/env"
	"github.com/podcheck/podcheck/internal/adapters/outbound/gitinfo"
	"github.com/podcheck/podcheck/internal/adapters/outbound/tui"
	"github.com/podcheck/podcheck/internal/adapters/outbound/wandb"
	"github.com/podcheck/podcheck/internal/application"
	"github.com/podcheck/podcheck/internal/domain"
)

func newTrackerCmd() *cobra.Command {
	var (
		jsonOutput bool
		project    string
		runName    string
		keyEnv     string
		envFile    string
		baseURL    string
		entity     string
		workDir    string
		timeout    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "tracker",
		Short: "Check the experiment tracker integration",
		Long: "Log in to Weights & Biases, create a run, log a metric and upload a small artifact. " +
			"Each step only runs when the previous one passed.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			tc := cfg.Tracker

			flags := cmd.Flags()
			if flags.Changed("project") {
				tc.Project = project
			}
			if flags.Changed("run-name") {
				tc.RunName = runName
			}
			if flags.Changed("key-env") {
				tc.APIKeyEnv = keyEnv
			}
			if flags.Changed("env-file") {
				tc.EnvFile = envFile
			}
			if flags.Changed("base-url") {
				tc.BaseURL = baseURL
			}
			if flags.Changed("entity") {
				tc.Entity = entity
			}
			if flags.Changed("work-dir") {
				tc.WorkDir = workDir
			}
			if flags.Changed("timeout") {
				tc.Timeout = timeout
			}
			if tc.Timeout < 0 {
				return fmt.Errorf("--timeout must not be negative")
			}

			log := newLogger(cmd)
			out := cmd.OutOrStdout()

			opts := []application.TrackerOption{
				application.WithTrackerLogger(log),
				application.WithCommitInfo(gitinfo.New()),
			}
			if !jsonOutput {
				opts = append(opts, application.WithTrackerObserver(func(r domain.CheckResult) {
					fmt.Fprintln(out, tui.ProgressLine(r))
				}))
			}

			client := wandb.New(tc.BaseURL, wandb.WithEntity(tc.Entity), wandb.WithLogger(log))
			svc := application.NewTrackerService(tc, env.New(tc.EnvFile), client, opts...)
			report := svc.Run(cmd.Context())

			if jsonOutput {
				if err := renderJSON(cmd, trackerOutput{OK: report.OK(), Report: report}); err != nil {
					return err
				}
			} else {
				fmt.Fprint(out, tui.RenderTrackerReport(report))
			}

			if !report.OK() {
				return checksFailed("tracker")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the report as JSON")
	cmd.Flags().StringVar(&project, "project", "", "Tracker project to create the run in")
	cmd.Flags().StringVar(&runName, "run-name", "", "Display name for the test run")
	cmd.Flags().StringVar(&keyEnv, "key-env", "", "Environment variable holding the API key")
	cmd.Flags().StringVar(&envFile, "env-file", "", "Dotenv file consulted when the key is not in the environment")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "Tracker API base URL")
	cmd.Flags().StringVar(&entity, "entity", "", "Entity (user or team) to create the run under")
	cmd.Flags().StringVar(&workDir, "work-dir", "", "Directory for the temporary artifact file")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Per-step timeout (0 disables)")

	return cmd
}

type trackerOutput struct {
	OK bool `json:"ok"`
	domain.Report
}
