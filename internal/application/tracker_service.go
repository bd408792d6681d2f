package application

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/podcheck/podcheck/internal/domain"
	"github.com/podcheck/podcheck/internal/domain/check"
)

// Tracker check IDs, in pipeline order.
const (
	CheckTokenConfiguration = "TokenConfiguration"
	CheckProjectCreation    = "ProjectCreation"
	CheckRunLogging         = "RunLogging"
	CheckArtifactUpload     = "ArtifactUpload"
)

const (
	trackerReportTitle = "Test Results"
	artifactFileName   = "test_artifact.txt"
	artifactContent    = "test content"
	artifactName       = "test_artifact"
	artifactType       = "dataset"
	testMetricName     = "test_metric"
	testMetricValue    = 0.5
)

// TrackerService exercises the experiment tracker end to end:
// login -> start run -> log metric -> upload artifact.
type TrackerService struct {
	cfg         domain.TrackerConfig
	credentials domain.CredentialSource
	tracker     domain.ExperimentTracker
	git         domain.CommitInfo
	log         zerolog.Logger
	observer    func(domain.CheckResult)
	setenv      func(key, value string) error
	writeFile   func(name string, data []byte, perm fs.FileMode) error
}

// TrackerOption configures a TrackerService.
type TrackerOption func(*TrackerService)

// WithTrackerObserver streams each check result as it completes.
func WithTrackerObserver(fn func(domain.CheckResult)) TrackerOption {
	return func(s *TrackerService) { s.observer = fn }
}

// WithTrackerLogger sets the service logger.
func WithTrackerLogger(log zerolog.Logger) TrackerOption {
	return func(s *TrackerService) { s.log = log }
}

// WithCommitInfo records git state in the run config. Optional.
func WithCommitInfo(git domain.CommitInfo) TrackerOption {
	return func(s *TrackerService) { s.git = git }
}

func NewTrackerService(
	cfg domain.TrackerConfig,
	credentials domain.CredentialSource,
	tracker domain.ExperimentTracker,
	opts ...TrackerOption,
) *TrackerService {
	s := &TrackerService{
		cfg:         cfg,
		credentials: credentials,
		tracker:     tracker,
		log:         zerolog.Nop(),
		setenv:      os.Setenv,
		writeFile:   os.WriteFile,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// trackerRun carries the state shared between the steps of one run.
type trackerRun struct {
	key string
	run domain.TrackedRun
}

// Run executes the checks and always returns a report.
func (s *TrackerService) Run(ctx context.Context) domain.Report {
	state := &trackerRun{}
	steps := s.steps(state)

	state.key = s.credentials.Lookup(s.cfg.APIKeyEnv)
	if state.key == "" {
		report := check.Plan(trackerReportTitle, steps)
		report.Error = fmt.Sprintf("%s not set or empty", s.cfg.APIKeyEnv)
		s.log.Debug().Str("env", s.cfg.APIKeyEnv).Msg("credential missing, skipping tracker checks")
		return report
	}

	// Export the cleaned key so anything spawned from here sees it.
	if err := s.setenv(s.cfg.APIKeyEnv, state.key); err != nil {
		s.log.Warn().Err(err).Msg("could not export cleaned credential")
	}

	report := check.Run(ctx, trackerReportTitle, steps,
		check.WithStepTimeout(s.cfg.Timeout),
		check.WithObserver(s.observer),
		check.WithLogger(s.log),
	)

	if state.run != nil {
		finishCtx, cancel := s.callContext(ctx)
		defer cancel()
		if err := state.run.Finish(finishCtx); err != nil {
			s.log.Warn().Err(err).Str("run", state.run.ID()).Msg("finishing run failed")
			report.Error = fmt.Sprintf("finishing run: %v", err)
		}
	}
	return report
}

func (s *TrackerService) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.Timeout > 0 {
		return context.WithTimeout(ctx, s.cfg.Timeout)
	}
	return context.WithCancel(ctx)
}

func (s *TrackerService) steps(state *trackerRun) []domain.Step {
	return []domain.Step{
		{
			ID: CheckTokenConfiguration,
			Run: func(ctx context.Context) (string, error) {
				if err := s.tracker.Login(ctx, state.key); err != nil {
					return "", err
				}
				return "WANDB Token Valid", nil
			},
		},
		{
			ID:       CheckProjectCreation,
			Requires: CheckTokenConfiguration,
			Run: func(ctx context.Context) (string, error) {
				run, err := s.tracker.StartRun(ctx, domain.RunSpec{
					Project: s.cfg.Project,
					Name:    s.cfg.RunName,
					Config:  s.runConfig(),
				})
				if err != nil {
					return "", err
				}
				if run == nil {
					return "", fmt.Errorf("tracker returned no run")
				}
				state.run = run
				return fmt.Sprintf("Project Created: %s", s.cfg.Project), nil
			},
		},
		{
			ID:       CheckRunLogging,
			Requires: CheckProjectCreation,
			Run: func(ctx context.Context) (string, error) {
				if err := state.run.LogMetrics(ctx, map[string]float64{testMetricName: testMetricValue}); err != nil {
					return "", err
				}
				return "Metrics Logged", nil
			},
		},
		{
			ID:       CheckArtifactUpload,
			Requires: CheckRunLogging,
			Run: func(ctx context.Context) (string, error) {
				if err := s.uploadArtifact(ctx, state.run); err != nil {
					return "", err
				}
				return "Artifact Uploaded", nil
			},
		},
	}
}

// uploadArtifact writes a scratch file, uploads it and removes it on every
// path out of the function.
func (s *TrackerService) uploadArtifact(ctx context.Context, run domain.TrackedRun) error {
	dir := s.cfg.WorkDir
	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, artifactFileName)

	// Registered first: a failed write can still leave a partial file.
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			s.log.Warn().Err(err).Str("path", path).Msg("removing artifact file failed")
		}
	}()
	if err := s.writeFile(path, []byte(artifactContent), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	return run.LogArtifact(ctx, domain.Artifact{
		Name:  artifactName,
		Type:  artifactType,
		Files: []string{path},
	})
}

// runConfig is the config attached to the run: a test marker plus git state
// when the work dir is inside a repository.
func (s *TrackerService) runConfig() map[string]any {
	cfg := map[string]any{"test": true}
	if s.git == nil || !s.git.IsGitRepo(s.cfg.WorkDir) {
		return cfg
	}
	if hash, err := s.git.CommitHash(s.cfg.WorkDir); err == nil {
		cfg["git_commit"] = hash
	} else {
		s.log.Debug().Err(err).Msg("no commit hash")
	}
	if url, err := s.git.RemoteURL(s.cfg.WorkDir); err == nil && url != "" {
		cfg["git_remote"] = url
	}
	return cfg
}
