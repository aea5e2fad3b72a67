package app

import (
	"flag"
	"strconv"
)

// Config represents the command-line parameters for the GUI application.
type Config struct {
	Sim        string
	Scale      float64
	TPS        int
	Seed       int64
	Count      int
	ConfigPath string
}

// NewConfig returns a Config populated with sensible defaults.
func NewConfig() *Config {
	return &Config{Sim: "flock", Scale: 1, TPS: 60, Seed: 0, Count: 0}
}

// Bind attaches the configuration to the provided FlagSet.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.StringVar(&c.Sim, "sim", c.Sim, "simulation to run")
	fs.Float64Var(&c.Scale, "scale", c.Scale, "pixels per world unit")
	fs.IntVar(&c.TPS, "tps", c.TPS, "ticks per second")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "seed for simulation reset (0 uses the config seed)")
	fs.IntVar(&c.Count, "count", c.Count, "agent population override (0 uses the config value)")
	fs.StringVar(&c.ConfigPath, "config", c.ConfigPath, "path to a TOML config file")
}

// Options converts the bound flags into the flag-style map consumed by
// simulation factories. Zero-valued overrides are omitted.
func (c *Config) Options() map[string]string {
	m := map[string]string{}
	if c.ConfigPath != "" {
		m["config"] = c.ConfigPath
	}
	if c.Count > 0 {
		m["count"] = strconv.Itoa(c.Count)
	}
	if c.Seed != 0 {
		m["seed"] = strconv.FormatInt(c.Seed, 10)
	}
	return m
}
