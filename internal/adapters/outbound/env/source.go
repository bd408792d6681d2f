package env

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/podcheck/podcheck/internal/domain"
)

// Source implements domain.CredentialSource over the process environment,
// falling back to a dotenv file. Values are always cleaned.
type Source struct {
	envFile string
	getenv  func(string) string
}

// New creates a Source. envFile may be empty to disable the fallback.
func New(envFile string) *Source {
	return &Source{envFile: envFile, getenv: os.Getenv}
}

// Lookup returns the cleaned value of name, or "" when unset everywhere.
// An unreadable env file is treated the same as an absent one.
func (s *Source) Lookup(name string) string {
	if v := s.getenv(name); v != "" {
		return domain.CleanCredential(v)
	}
	if s.envFile == "" {
		return ""
	}
	values, err := godotenv.Read(s.envFile)
	if err != nil {
		return ""
	}
	return domain.CleanCredential(values[name])
}
