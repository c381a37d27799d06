package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("REGIONS_FILE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "3001" {
		t.Errorf("port = %q, want default 3001", cfg.Port)
	}
	if len(cfg.Regions) != 17 {
		t.Errorf("regions = %d, want 17 built-ins", len(cfg.Regions))
	}
}

func TestLoadRegionsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regions.yml")
	content := `regions:
  - id: idf
    name: Ile-de-France
    api_url: https://otp-idf.example/graphiql
    is_active: true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("REGIONS_FILE", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Regions) != 1 || cfg.Regions[0].ID != "idf" {
		t.Errorf("regions = %+v, want the single idf override", cfg.Regions)
	}
}

func TestLoadRejectsInvalidRegionsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regions.yml")
	content := `regions:
  - id: idf
    name: Ile-de-France
    api_url: not-a-url
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("REGIONS_FILE", path)

	if _, err := Load(); err == nil {
		t.Error("expected validation error for bad api_url")
	}
}
