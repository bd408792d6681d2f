package rclone

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/podcheck/podcheck/internal/domain"
)

// Lister implements domain.RemoteLister by running `<binary> listremotes`.
type Lister struct {
	binary string
	runner CommandRunner
	log    zerolog.Logger
}

func New(binary string, runner CommandRunner, log zerolog.Logger) *Lister {
	if binary == "" {
		binary = "rclone"
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Lister{binary: binary, runner: runner, log: log}
}

// ListRemotes returns the configured remote names, e.g. "dbx:".
func (l *Lister) ListRemotes(ctx context.Context) ([]string, error) {
	stdout, stderr, code, err := l.runner.Run(ctx, l.binary, "listremotes")
	l.log.Debug().Str("binary", l.binary).Int("exit_code", code).Msg("listremotes finished")

	if code == 127 && err != nil {
		return nil, fmt.Errorf("running %s: %w", l.binary, err)
	}
	if code != 0 || err != nil {
		msg := strings.TrimSpace(string(stderr))
		if msg == "" && err != nil {
			msg = err.Error()
		}
		if msg == "" {
			return nil, fmt.Errorf("%w (exit code %d)", domain.ErrListRemotes, code)
		}
		return nil, fmt.Errorf("%w (exit code %d): %s", domain.ErrListRemotes, code, msg)
	}
	return ParseRemotes(string(stdout)), nil
}

// ParseRemotes splits listremotes output into remote names, dropping blanks.
func ParseRemotes(out string) []string {
	remotes := []string{}
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			remotes = append(remotes, line)
		}
	}
	return remotes
}
