package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/podcheck/podcheck/internal/domain"
	"github.com/podcheck/podcheck/internal/domain/check"
)

// Sync check IDs.
const (
	CheckListRemotes    = "ListRemotes"
	CheckRequiredRemote = "RequiredRemote"
)

const (
	syncReportTitle  = "Rclone Functionality Test"
	listRemotesError = "Error: Unable to list remotes"
)

// SyncService inspects the file-sync tool's config files and verifies the
// tool can enumerate its remotes.
type SyncService struct {
	cfg    domain.SyncConfig
	prober domain.ConfigProber
	lister domain.RemoteLister
	log    zerolog.Logger
}

func NewSyncService(cfg domain.SyncConfig, prober domain.ConfigProber, lister domain.RemoteLister, log zerolog.Logger) *SyncService {
	return &SyncService{cfg: cfg, prober: prober, lister: lister, log: log}
}

// Run probes every configured file, lists remotes and synthesises issues.
func (s *SyncService) Run(ctx context.Context) domain.SyncReport {
	report := domain.SyncReport{
		RequiredRemote: s.cfg.RequiredRemote,
		RequiredMode:   s.cfg.RequiredMode,
	}

	for _, ref := range s.cfg.ConfigFiles {
		report.Probes = append(report.Probes, s.probe(ref))
	}

	report.Functionality = check.Run(ctx, syncReportTitle, s.steps(&report.Listing),
		check.WithStepTimeout(s.cfg.Timeout),
		check.WithLogger(s.log),
	)

	report.Issues = domain.SyncIssues(report.Probes, report.Listing, s.cfg.RequiredRemote, s.cfg.RequiredMode)
	if len(report.Issues) > 0 && len(s.cfg.ConfigFiles) > 0 {
		report.Recommendations = domain.SyncRecommendations(s.cfg.ConfigFiles[0].Path, s.cfg.RequiredMode)
	}
	return report
}

func (s *SyncService) probe(ref domain.ConfigFileRef) domain.ConfigProbe {
	probe, err := s.prober.Probe(ref.Location, ref.Path, s.cfg.RequiredMode)
	if err != nil {
		s.log.Warn().Err(err).Str("path", ref.Path).Msg("config probe failed")
		return domain.ConfigProbe{Location: ref.Location, Path: ref.Path, Err: err.Error()}
	}
	s.log.Debug().Str("path", ref.Path).Bool("exists", probe.Exists).Msg("config probed")
	return probe
}

func (s *SyncService) steps(listing *domain.RemoteListing) []domain.Step {
	return []domain.Step{
		{
			ID: CheckListRemotes,
			Run: func(ctx context.Context) (string, error) {
				remotes, err := s.lister.ListRemotes(ctx)
				if err != nil {
					*listing = domain.RemoteListing{Error: listRemotesError}
					return "", err
				}
				*listing = domain.RemoteListing{
					OK:          true,
					Remotes:     remotes,
					HasRequired: domain.HasRemotePrefix(remotes, s.cfg.RequiredRemote),
				}
				if len(remotes) == 0 {
					return "No remotes found", nil
				}
				return strings.Join(remotes, "\n"), nil
			},
		},
		{
			ID:       CheckRequiredRemote,
			Requires: CheckListRemotes,
			Run: func(context.Context) (string, error) {
				if !listing.HasRequired {
					return "", fmt.Errorf("%s remote not found", s.cfg.RequiredRemote)
				}
				return fmt.Sprintf("%s remote is configured", s.cfg.RequiredRemote), nil
			},
		},
	}
}
