package rclone_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/podcheck/podcheck/internal/adapters/outbound/rclone"
	"github.com/podcheck/podcheck/internal/domain"
)

type fakeRunner struct {
	stdout, stderr string
	code           int
	err            error

	gotName string
	gotArgs []string
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, int, error) {
	f.gotName = name
	f.gotArgs = args
	return []byte(f.stdout), []byte(f.stderr), f.code, f.err
}

func TestParseRemotes(t *testing.T) {
	assert.Equal(t, []string{"dbx:", "local:"}, rclone.ParseRemotes("dbx:\nlocal:\n"))
	assert.Equal(t, []string{}, rclone.ParseRemotes(""))
	assert.Equal(t, []string{"a:"}, rclone.ParseRemotes("\n  a:  \n\n"))
}

func TestLister_Success(t *testing.T) {
	runner := &fakeRunner{stdout: "dbx:\nlocal:\n"}
	lister := rclone.New("rclone", runner, zerolog.Nop())

	remotes, err := lister.ListRemotes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"dbx:", "local:"}, remotes)
	assert.Equal(t, "rclone", runner.gotName)
	assert.Equal(t, []string{"listremotes"}, runner.gotArgs)
}

func TestLister_NonZeroExit(t *testing.T) {
	runner := &fakeRunner{stderr: "config file not found", code: 1, err: errors.New("exit status 1")}
	lister := rclone.New("rclone", runner, zerolog.Nop())

	remotes, err := lister.ListRemotes(context.Background())
	assert.Nil(t, remotes)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrListRemotes)
	assert.Contains(t, err.Error(), "config file not found")
}

func TestLister_MissingBinary(t *testing.T) {
	runner := &fakeRunner{code: 127, err: errors.New(`exec: "rclone": executable file not found in $PATH`)}
	lister := rclone.New("rclone", runner, zerolog.Nop())

	_, err := lister.ListRemotes(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "executable file not found")
}

func TestLister_DefaultsBinaryName(t *testing.T) {
	runner := &fakeRunner{}
	_, err := rclone.New("", runner, zerolog.Nop()).ListRemotes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "rclone", runner.gotName)
}

func TestExecRunner_RealScript(t *testing.T) {
	script := filepath.Join(t.TempDir(), "fake-rclone")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\nprintf 'dbx:\\nlocal:\\n'\n"), 0755))

	remotes, err := rclone.New(script, nil, zerolog.Nop()).ListRemotes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"dbx:", "local:"}, remotes)
}

func TestExecRunner_ExitCode(t *testing.T) {
	script := filepath.Join(t.TempDir(), "fake-rclone")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\necho broken >&2\nexit 3\n"), 0755))

	_, stderr, code, err := rclone.ExecRunner{}.Run(context.Background(), script)
	assert.Error(t, err)
	assert.Equal(t, 3, code)
	assert.Equal(t, "broken\n", string(stderr))
}

func TestExecRunner_NotFound(t *testing.T) {
	_, _, code, err := rclone.ExecRunner{}.Run(context.Background(), "podcheck-definitely-missing-binary")
	assert.Error(t, err)
	assert.Equal(t, 127, code)
}

func TestExecRunner_MissingAbsolutePath(t *testing.T) {
	bin := filepath.Join(t.TempDir(), "missing", "rclone")

	_, _, code, err := rclone.ExecRunner{}.Run(context.Background(), bin)
	assert.Error(t, err)
	assert.Equal(t, 127, code)

	_, err = rclone.New(bin, nil, zerolog.Nop()).ListRemotes(context.Background())
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrListRemotes), "a missing binary is not an rclone failure")
	assert.Contains(t, err.Error(), "running "+bin)
}
