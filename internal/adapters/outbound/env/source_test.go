package env_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/podcheck/podcheck/internal/adapters/outbound/env"
)

const keyVar = "PODCHECK_TEST_API_KEY"

func TestSource_ReadsEnvironment(t *testing.T) {
	t.Setenv(keyVar, "plainsecret")
	assert.Equal(t, "plainsecret", env.New("").Lookup(keyVar))
}

func TestSource_CleansInjectedPrefix(t *testing.T) {
	t.Setenv(keyVar, "WANDB_API_KEY=abc123")
	assert.Equal(t, "abc123", env.New("").Lookup(keyVar))
}

func TestSource_UnsetIsEmpty(t *testing.T) {
	t.Setenv(keyVar, "")
	assert.Equal(t, "", env.New(filepath.Join(t.TempDir(), "missing.env")).Lookup(keyVar))
}

func TestSource_FallsBackToEnvFile(t *testing.T) {
	t.Setenv(keyVar, "")
	file := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(file, []byte(keyVar+"=fromfile\n"), 0600))

	assert.Equal(t, "fromfile", env.New(file).Lookup(keyVar))
	assert.Equal(t, "", os.Getenv(keyVar), "env file values must not leak into the process")
}

func TestSource_EnvironmentWinsOverFile(t *testing.T) {
	t.Setenv(keyVar, "fromenv")
	file := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(file, []byte(keyVar+"=fromfile\n"), 0600))

	assert.Equal(t, "fromenv", env.New(file).Lookup(keyVar))
}
