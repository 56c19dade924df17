// Package config loads the optional archivero.yaml pipeline configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds pipeline settings that are not secrets. Secrets (API keys,
// client credentials) stay in the environment and are read where used.
type Config struct {
	// TranslationOverrides extends the built-in manual translation
	// dictionary. Keys are matched case-sensitively before any provider
	// call and always win.
	TranslationOverrides map[string]string `yaml:"translation_overrides"`

	Omeka struct {
		APIURL  string `yaml:"api_url"`
		PerPage int    `yaml:"per_page"`
		Days    int    `yaml:"days"`
	} `yaml:"omeka"`

	DataDir string `yaml:"data_dir"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{
		TranslationOverrides: map[string]string{},
		DataDir:              "data",
	}
	cfg.Omeka.APIURL = os.Getenv("OMEKA_API_URL")
	if cfg.Omeka.APIURL == "" {
		cfg.Omeka.APIURL = "https://archivovenezuela.com/test/api/items"
	}
	cfg.Omeka.PerPage = 50
	cfg.Omeka.Days = 30
	return cfg
}

// Load reads the YAML config at path, falling back to defaults for any
// unset field. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if cfg.TranslationOverrides == nil {
		cfg.TranslationOverrides = map[string]string{}
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "data"
	}
	if cfg.Omeka.PerPage <= 0 {
		cfg.Omeka.PerPage = 50
	}
	if cfg.Omeka.Days <= 0 {
		cfg.Omeka.Days = 30
	}

	return cfg, nil
}
