package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/podcheck/podcheck/internal/domain"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := domain.DefaultConfig()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "WANDB_API_KEY", cfg.Tracker.APIKeyEnv)
	assert.Equal(t, "pytorch240-test", cfg.Tracker.Project)
	assert.Equal(t, "dbx:", cfg.Sync.RequiredRemote)
	assert.Len(t, cfg.Sync.ConfigFiles, 2)
	assert.Equal(t, "workspace", cfg.Sync.ConfigFiles[0].Location)
}

func TestConfig_ValidateRejectsBadMode(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.Sync.RequiredMode = "rw-------"
	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "required_mode")
}

func TestConfig_ValidateRejectsEmptyPath(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.Sync.ConfigFiles = []domain.ConfigFileRef{{Location: "workspace"}}
	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "config_files[0]")
}

func TestConfig_ValidateRejectsEmptyRemote(t *testing.T) {
	for _, remote := range []string{"", "  "} {
		cfg := domain.DefaultConfig()
		cfg.Sync.RequiredRemote = remote
		err := cfg.Validate()
		require.Error(t, err, "remote %q", remote)
		assert.Contains(t, err.Error(), "required_remote")
	}
}

func TestValidRemote(t *testing.T) {
	assert.NoError(t, domain.ValidRemote("dbx:"))
	assert.Error(t, domain.ValidRemote(""))
	assert.Error(t, domain.ValidRemote("\t"))
}

func TestConfig_ValidateRejectsNegativeTimeout(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.Tracker.Timeout = -time.Second
	assert.Error(t, cfg.Validate())
}

func TestValidMode(t *testing.T) {
	assert.True(t, domain.ValidMode("600"))
	assert.True(t, domain.ValidMode("755"))
	assert.False(t, domain.ValidMode("800"))
	assert.False(t, domain.ValidMode("60"))
	assert.False(t, domain.ValidMode("0600"))
}

func TestConfig_MergeKeepsDefaultsForZeroValues(t *testing.T) {
	base := domain.DefaultConfig()
	merged := base.Merge(domain.Config{
		Tracker: domain.TrackerConfig{Project: "other"},
		Sync:    domain.SyncConfig{Timeout: 5 * time.Second},
	})

	assert.Equal(t, "other", merged.Tracker.Project)
	assert.Equal(t, base.Tracker.RunName, merged.Tracker.RunName)
	assert.Equal(t, 5*time.Second, merged.Sync.Timeout)
	assert.Equal(t, base.Sync.ConfigFiles, merged.Sync.ConfigFiles)
}

func TestConfig_MergeReplacesConfigFiles(t *testing.T) {
	merged := domain.DefaultConfig().Merge(domain.Config{
		Sync: domain.SyncConfig{ConfigFiles: []domain.ConfigFileRef{{Location: "home", Path: "/home/u/rclone.conf"}}},
	})
	assert.Equal(t, []domain.ConfigFileRef{{Location: "home", Path: "/home/u/rclone.conf"}}, merged.Sync.ConfigFiles)
}
