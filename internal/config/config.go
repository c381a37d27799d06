// Package config loads server settings from the environment, plus an
// optional YAML region file for deployments that override the built-in
// region list.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/yourorg/transitfr/internal/models"
	"github.com/yourorg/transitfr/internal/regions"
)

// Config is the process configuration. Database credentials are read from
// the environment by the db package directly.
type Config struct {
	Port        string
	RegionsFile string
	Regions     []models.Region
}

// regionsFile is the YAML shape of a region override file.
type regionsFile struct {
	Regions []models.Region `yaml:"regions" validate:"required,min=1,dive"`
}

var validate = validator.New()

// Load reads the environment and, when REGIONS_FILE is set, the region
// override file. Without an override the built-in regions apply.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "3001"),
		RegionsFile: os.Getenv("REGIONS_FILE"),
		Regions:     regions.Defaults(),
	}

	if cfg.RegionsFile != "" {
		loaded, err := loadRegionsFile(cfg.RegionsFile)
		if err != nil {
			return nil, err
		}
		cfg.Regions = loaded
	}
	return cfg, nil
}

func loadRegionsFile(path string) ([]models.Region, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read regions file: %w", err)
	}
	var file regionsFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse regions file %s: %w", path, err)
	}
	if err := validate.Struct(&file); err != nil {
		return nil, fmt.Errorf("invalid regions file %s: %w", path, err)
	}
	return file.Regions, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
