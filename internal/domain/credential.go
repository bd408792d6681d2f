package domain

import (
	"errors"
	"strings"
)

var (
	ErrMissingCredential = errors.New("credential not set or empty")
	ErrChecksFailed      = errors.New("one or more checks failed")
	ErrListRemotes       = errors.New("unable to list remotes")
)

// CleanCredential strips a "<prefix>=" artifact left by some secret
// injection systems, keeping only what follows the last '='.
func CleanCredential(raw string) string {
	if i := strings.LastIndex(raw, "="); i >= 0 {
		return raw[i+1:]
	}
	return raw
}
