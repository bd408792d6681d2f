package domain

import "context"

// CredentialSource resolves a named secret. An empty string means unset.
type CredentialSource interface {
	Lookup(name string) string
}

// ExperimentTracker authenticates against an experiment-tracking backend and
// opens runs on it.
type ExperimentTracker interface {
	Login(ctx context.Context, apiKey string) error
	StartRun(ctx context.Context, spec RunSpec) (TrackedRun, error)
}

// TrackedRun is a live run returned by ExperimentTracker.StartRun.
type TrackedRun interface {
	ID() string
	LogMetrics(ctx context.Context, metrics map[string]float64) error
	LogArtifact(ctx context.Context, artifact Artifact) error
	Finish(ctx context.Context) error
}

// RunSpec describes the run to create.
type RunSpec struct {
	Project string         `json:"project"`
	Name    string         `json:"name"`
	Config  map[string]any `json:"config,omitempty"`
}

// Artifact is a named, typed bundle of local files to upload with a run.
type Artifact struct {
	Name  string   `json:"name"`
	Type  string   `json:"type"`
	Files []string `json:"files"`
}

// RemoteLister enumerates the remotes configured for the file-sync tool.
type RemoteLister interface {
	ListRemotes(ctx context.Context) ([]string, error)
}

// ConfigProber stats a config file. A missing file is not an error.
type ConfigProber interface {
	Probe(location, path, requiredMode string) (ConfigProbe, error)
}

// CommitInfo reports the commit checked out in a directory.
type CommitInfo interface {
	IsGitRepo(path string) bool
	CommitHash(path string) (string, error)
	RemoteURL(path string) (string, error)
}

// ConfigLoader loads podcheck configuration.
type ConfigLoader interface {
	Load(path string) (Config, error)
}
