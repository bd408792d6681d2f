package logging_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/podcheck/podcheck/internal/logging"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		raw  string
		want zerolog.Level
		ok   bool
	}{
		{"", zerolog.WarnLevel, false},
		{"debug", zerolog.DebugLevel, true},
		{" INFO ", zerolog.InfoLevel, true},
		{"warning", zerolog.WarnLevel, true},
		{"off", zerolog.Disabled, true},
		{"loud", zerolog.WarnLevel, false},
	}
	for _, tt := range tests {
		got, ok := logging.ParseLevel(tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
		assert.Equal(t, tt.ok, ok, tt.raw)
	}
}

func TestNew_DefaultSuppressesDebug(t *testing.T) {
	t.Setenv(logging.EnvLogLevel, "")
	var buf bytes.Buffer
	log := logging.New(&buf, false)

	log.Debug().Msg("hidden")
	assert.Empty(t, buf.String())

	log.Warn().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNew_VerboseEnablesDebug(t *testing.T) {
	t.Setenv(logging.EnvLogLevel, "error")
	var buf bytes.Buffer
	log := logging.New(&buf, true)

	log.Debug().Msg("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestNew_EnvLevel(t *testing.T) {
	t.Setenv(logging.EnvLogLevel, "error")
	var buf bytes.Buffer
	log := logging.New(&buf, false)

	log.Warn().Msg("quiet")
	assert.Empty(t, buf.String())
}

func TestNew_PlainOutputWhenNotATerminal(t *testing.T) {
	t.Setenv(logging.EnvLogLevel, "")
	var buf bytes.Buffer
	log := logging.New(&buf, false)

	log.Warn().Str("path", "/tmp/x").Msg("plain")
	assert.Contains(t, buf.String(), "plain")
	assert.NotContains(t, buf.String(), "\x1b[", "no ANSI colour escapes")
}

func TestNew_PlainOutputToRegularFile(t *testing.T) {
	t.Setenv(logging.EnvLogLevel, "")
	f, err := os.Create(filepath.Join(t.TempDir(), "log.txt"))
	require.NoError(t, err)
	defer f.Close()

	log := logging.New(f, false)
	log.Error().Msg("to file")

	data, err := os.ReadFile(f.Name())
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
	assert.NotContains(t, string(data), "\x1b[")
}
