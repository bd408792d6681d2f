package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/podcheck/podcheck/internal/domain"
	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the working directory.
const FileName = ".podcheck.yaml"

// YAMLLoader implements domain.ConfigLoader by reading a YAML file.
type YAMLLoader struct{}

// New creates a YAMLLoader.
func New() *YAMLLoader { return &YAMLLoader{} }

// Load reads the config at path and overlays it on the defaults.
// Returns DefaultConfig if the file does not exist.
func (l *YAMLLoader) Load(path string) (domain.Config, error) {
	if path == "" {
		path = FileName
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.DefaultConfig(), nil
		}
		return domain.Config{}, err
	}

	var raw domain.Config
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return domain.Config{}, fmt.Errorf("parsing %s: %w", path, err)
	}

	cfg := domain.DefaultConfig().Merge(raw)
	if err := cfg.Validate(); err != nil {
		return domain.Config{}, fmt.Errorf("invalid %s: %w", path, err)
	}
	return cfg, nil
}
