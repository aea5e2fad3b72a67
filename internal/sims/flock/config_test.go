package flock

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigValidates(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config must validate, got %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero count", func(c *Config) { c.Count = 0 }},
		{"negative count", func(c *Config) { c.Count = -5 }},
		{"zero width", func(c *Config) { c.Width = 0 }},
		{"negative workers", func(c *Config) { c.Workers = -1 }},
		{"zero separation radius", func(c *Config) { c.Params.RSep = 0 }},
		{"negative alignment radius", func(c *Config) { c.Params.RAlign = -3 }},
		{"negative weight", func(c *Config) { c.Params.WCohesion = -0.1 }},
		{"min speed above max", func(c *Config) { c.Params.MinSpeed = c.Params.MaxSpeed }},
		{"negative min speed", func(c *Config) { c.Params.MinSpeed = -1 }},
		{"zero max force", func(c *Config) { c.Params.MaxForce = 0 }},
		{"negative margin", func(c *Config) { c.Params.Margin = -1 }},
		{"margin swallows interior", func(c *Config) { c.Params.Margin = c.Height / 2 }},
		{"zero fov", func(c *Config) { c.Params.FOVDeg = 0 }},
		{"fov above full circle", func(c *Config) { c.Params.FOVDeg = 361 }},
		{"negative neighbor cap", func(c *Config) { c.Params.NeighborCap = -1 }},
	}
	for _, tc := range cases {
		cfg := DefaultConfig()
		tc.mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: Validate accepted invalid config", tc.name)
		}
	}
}

func TestNewWithConfigRejectsInvalid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Params.MinSpeed = cfg.Params.MaxSpeed + 1
	if _, err := NewWithConfig(cfg); err == nil {
		t.Fatal("NewWithConfig must reject an invalid config before any tick runs")
	}
}

func TestFromMapOverrides(t *testing.T) {
	cfg, err := FromMap(map[string]string{
		"count":        "512",
		"width":        "1000",
		"seed":         "-3",
		"workers":      "2",
		"r_sep":        "12",
		"w_align":      "1.5",
		"max_speed":    "300",
		"neighbor_cap": "20",
		"bogus":        "ignored",
		"min_speed":    "not-a-number", // unparsable values keep the default
	})
	if err != nil {
		t.Fatalf("FromMap: %v", err)
	}
	def := DefaultConfig()
	if cfg.Count != 512 || cfg.Width != 1000 || cfg.Seed != -3 || cfg.Workers != 2 {
		t.Fatalf("top-level overrides not applied: %+v", cfg)
	}
	if cfg.Params.RSep != 12 || cfg.Params.WAlign != 1.5 || cfg.Params.MaxSpeed != 300 || cfg.Params.NeighborCap != 20 {
		t.Fatalf("param overrides not applied: %+v", cfg.Params)
	}
	if cfg.Params.MinSpeed != def.Params.MinSpeed {
		t.Fatalf("unparsable min_speed should keep the default %g, got %g", def.Params.MinSpeed, cfg.Params.MinSpeed)
	}
	if cfg.Height != def.Height {
		t.Fatalf("untouched height should keep the default %g, got %g", def.Height, cfg.Height)
	}
}

func TestLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flock.toml")
	content := `
count = 64
width = 600
height = 300
seed = 11

[params]
r_sep = 10
w_sep = 900
max_speed = 180
min_speed = 90
fov_deg = 360
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Count != 64 || cfg.Width != 600 || cfg.Height != 300 || cfg.Seed != 11 {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.Params.RSep != 10 || cfg.Params.WSep != 900 || cfg.Params.MaxSpeed != 180 ||
		cfg.Params.MinSpeed != 90 || cfg.Params.FOVDeg != 360 {
		t.Fatalf("param file values not applied: %+v", cfg.Params)
	}
	// Keys absent from the file keep their defaults.
	if def := DefaultConfig(); cfg.Params.RAlign != def.Params.RAlign {
		t.Fatalf("r_align should keep the default %g, got %g", def.Params.RAlign, cfg.Params.RAlign)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("loaded config must validate, got %v", err)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("Load must fail for a missing file")
	}

	// FromMap overrides win over file values.
	merged, err := FromMap(map[string]string{"config": path, "count": "128"})
	if err != nil {
		t.Fatalf("FromMap with config file: %v", err)
	}
	if merged.Count != 128 || merged.Width != 600 {
		t.Fatalf("override merge wrong: %+v", merged)
	}
}
