package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/podcheck/podcheck/internal/domain"
)

func TestCleanCredential(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"bare secret", "abc123", "abc123"},
		{"empty", "", ""},
		{"single prefix", "WANDB_API_KEY=abc123", "abc123"},
		{"multiple equals keeps last segment", "a=b=c", "c"},
		{"trailing equals", "key=", ""},
		{"leading equals", "=secret", "secret"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.CleanCredential(tt.raw))
		})
	}
}
