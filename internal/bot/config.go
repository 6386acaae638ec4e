// Package bot implements the recommendation browser on top of the core
// transport: screen flows, guided entry creation and editing, and the wiring
// that binds them to commands and button payloads.
package bot

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	coreconfig "recbot/core/config"
	coredatabase "recbot/core/database"
)

// AppConfig couples the core bot configuration with the database settings.
type AppConfig struct {
	coreconfig.Config `yaml:",inline"`
	Database          coredatabase.Config `yaml:"database"`
}

// CoreConfig exposes the embedded core configuration.
func (c *AppConfig) CoreConfig() *coreconfig.Config {
	return &c.Config
}

// LoadConfig reads the YAML file, applies environment overrides and
// normalizes the result.
func LoadConfig(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: env overrides: %w", err)
	}
	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return nil, err
	}
	return &cfg, nil
}
