package config

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 8080 || cfg.StoreDriver != "sqlite" || cfg.SceneKey != "polygons-data" {
		t.Fatalf("defaults = %+v", cfg)
	}
	p := cfg.ZoomPolicy()
	if p.InFactor != 1.1 || p.OutFactor != 1/1.1 || p.Min != 0.1 || p.Max != 10 {
		t.Fatalf("zoom policy = %+v", p)
	}
}

func TestLoadEnvAndFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "polystage.yaml")
	yml := "store_driver: memory\nzoom_out_factor: 0.9\nautosave_on_close: true\n"
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "9090")
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("ALLOWED_ORIGINS", "http://a.example, http://b.example,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 9090 {
		t.Fatalf("Port = %d, want env value", cfg.Port)
	}
	if cfg.StoreDriver != "memory" {
		t.Fatalf("StoreDriver = %q, want file value", cfg.StoreDriver)
	}
	if !cfg.AutosaveOnClose || cfg.ZoomPolicy().OutFactor != 0.9 {
		t.Fatalf("file overlay not applied: %+v", cfg)
	}
	if got := cfg.Origins(); !slices.Equal(got, []string{"http://a.example", "http://b.example"}) {
		t.Fatalf("Origins() = %v", got)
	}
}

func TestValidate(t *testing.T) {
	base := Config{StoreDriver: "memory", SceneKey: "k", ZoomMin: 0.1, ZoomMax: 10, ZoomInFactor: 1.1}
	if err := base.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown driver", func(c *Config) { c.StoreDriver = "redis" }},
		{"zero min", func(c *Config) { c.ZoomMin = 0 }},
		{"min above max", func(c *Config) { c.ZoomMin = 20 }},
		{"in factor below one", func(c *Config) { c.ZoomInFactor = 0.9 }},
		{"out factor above one", func(c *Config) { c.ZoomOutFactor = 1.2 }},
		{"empty key", func(c *Config) { c.SceneKey = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			if err := c.Validate(); err == nil {
				t.Fatal("invalid config accepted")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := Load(); err == nil {
		t.Fatal("missing config file accepted")
	}
}
