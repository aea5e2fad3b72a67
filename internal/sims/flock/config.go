package flock

import (
	"fmt"
	"math"
	"strconv"

	"github.com/BurntSushi/toml"
	"gonum.org/v1/gonum/spatial/r2"
)

// Params holds the steering radii, rule weights and motion limits.
type Params struct {
	RSep      float64 `toml:"r_sep"`
	RAlign    float64 `toml:"r_align"`
	RCohesion float64 `toml:"r_cohesion"`

	WSep      float64 `toml:"w_sep"`
	WAlign    float64 `toml:"w_align"`
	WCohesion float64 `toml:"w_cohesion"`
	WBoundary float64 `toml:"w_boundary"`
	WChase    float64 `toml:"w_chase"`

	MaxSpeed float64 `toml:"max_speed"`
	MinSpeed float64 `toml:"min_speed"`
	MaxForce float64 `toml:"max_force"`

	// Margin is the width of the soft containment band inside the bounds.
	Margin float64 `toml:"margin"`

	// FOVDeg is the full field-of-view angle in degrees. 360 disables the
	// visibility filter.
	FOVDeg float64 `toml:"fov_deg"`

	// NeighborCap limits how many nearest neighbors a query returns.
	// Zero means unlimited.
	NeighborCap int `toml:"neighbor_cap"`
}

// Config controls the flock population, world bounds and steering parameters.
type Config struct {
	Count int `toml:"count"`

	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`

	Seed int64 `toml:"seed"`

	// Workers sets the evaluate-phase parallelism. Zero means GOMAXPROCS.
	Workers int `toml:"workers"`

	Params Params `toml:"params"`
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{
		Count:  256,
		Width:  800,
		Height: 400,
		Seed:   1337,
		Params: Params{
			RSep:        8,
			RAlign:      40,
			RCohesion:   40,
			WSep:        1200,
			WAlign:      3,
			WCohesion:   4,
			WBoundary:   800,
			WChase:      2,
			MaxSpeed:    240,
			MinSpeed:    120,
			MaxForce:    960,
			Margin:      75,
			FOVDeg:      240,
			NeighborCap: 100,
		},
	}
}

// Bounds returns the axis-aligned world region, centered on the origin.
func (c Config) Bounds() r2.Box {
	return r2.Box{
		Min: r2.Vec{X: -c.Width / 2, Y: -c.Height / 2},
		Max: r2.Vec{X: c.Width / 2, Y: c.Height / 2},
	}
}

// Validate reports the first invalid configuration value, or nil. A flock is
// never constructed from a config that fails validation.
func (c Config) Validate() error {
	if c.Count <= 0 {
		return fmt.Errorf("flock: count must be positive, got %d", c.Count)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("flock: bounds must be positive, got %gx%g", c.Width, c.Height)
	}
	if c.Workers < 0 {
		return fmt.Errorf("flock: workers must be non-negative, got %d", c.Workers)
	}
	p := c.Params
	for _, r := range []struct {
		name string
		v    float64
	}{{"r_sep", p.RSep}, {"r_align", p.RAlign}, {"r_cohesion", p.RCohesion}} {
		if !(r.v > 0) || math.IsInf(r.v, 0) {
			return fmt.Errorf("flock: %s must be a positive finite radius, got %g", r.name, r.v)
		}
	}
	for _, w := range []struct {
		name string
		v    float64
	}{{"w_sep", p.WSep}, {"w_align", p.WAlign}, {"w_cohesion", p.WCohesion},
		{"w_boundary", p.WBoundary}, {"w_chase", p.WChase}} {
		if w.v < 0 || math.IsNaN(w.v) || math.IsInf(w.v, 0) {
			return fmt.Errorf("flock: %s must be a non-negative finite weight, got %g", w.name, w.v)
		}
	}
	if p.MinSpeed < 0 {
		return fmt.Errorf("flock: min_speed must be non-negative, got %g", p.MinSpeed)
	}
	if !(p.MaxSpeed > p.MinSpeed) {
		return fmt.Errorf("flock: min_speed (%g) must be below max_speed (%g)", p.MinSpeed, p.MaxSpeed)
	}
	if !(p.MaxForce > 0) || math.IsInf(p.MaxForce, 0) {
		return fmt.Errorf("flock: max_force must be a positive finite value, got %g", p.MaxForce)
	}
	if p.Margin < 0 {
		return fmt.Errorf("flock: margin must be non-negative, got %g", p.Margin)
	}
	if p.Margin*2 >= c.Width || p.Margin*2 >= c.Height {
		return fmt.Errorf("flock: margin %g leaves no interior in %gx%g bounds", p.Margin, c.Width, c.Height)
	}
	if !(p.FOVDeg > 0) || p.FOVDeg > 360 {
		return fmt.Errorf("flock: fov_deg must be in (0, 360], got %g", p.FOVDeg)
	}
	if p.NeighborCap < 0 {
		return fmt.Errorf("flock: neighbor_cap must be non-negative, got %d", p.NeighborCap)
	}
	return nil
}

// Load reads a TOML config file and overlays it on the defaults.
func Load(path string) (Config, error) {
	c := DefaultConfig()
	if _, err := toml.DecodeFile(path, &c); err != nil {
		return Config{}, fmt.Errorf("flock: loading config %s: %w", path, err)
	}
	return c, nil
}

// FromMap populates the config from a string map (flag-style key/value pairs).
// A "config" key names a TOML file loaded before the remaining overrides are
// applied. Unparsable values are ignored; Validate is the correctness gate.
func FromMap(cfg map[string]string) (Config, error) {
	c := DefaultConfig()
	if cfg == nil {
		return c, nil
	}
	if path, ok := cfg["config"]; ok && path != "" {
		loaded, err := Load(path)
		if err != nil {
			return Config{}, err
		}
		c = loaded
	}
	if v, ok := cfg["count"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Count = parsed
		}
	}
	if v, ok := cfg["width"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed > 0 {
			c.Width = parsed
		}
	}
	if v, ok := cfg["height"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed > 0 {
			c.Height = parsed
		}
	}
	if v, ok := cfg["seed"]; ok {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Seed = parsed
		}
	}
	if v, ok := cfg["workers"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			c.Workers = parsed
		}
	}
	floats := map[string]*float64{
		"r_sep":      &c.Params.RSep,
		"r_align":    &c.Params.RAlign,
		"r_cohesion": &c.Params.RCohesion,
		"w_sep":      &c.Params.WSep,
		"w_align":    &c.Params.WAlign,
		"w_cohesion": &c.Params.WCohesion,
		"w_boundary": &c.Params.WBoundary,
		"w_chase":    &c.Params.WChase,
		"max_speed":  &c.Params.MaxSpeed,
		"min_speed":  &c.Params.MinSpeed,
		"max_force":  &c.Params.MaxForce,
		"margin":     &c.Params.Margin,
		"fov_deg":    &c.Params.FOVDeg,
	}
	for key, dst := range floats {
		if v, ok := cfg[key]; ok {
			if parsed, err := strconv.ParseFloat(v, 64); err == nil {
				*dst = parsed
			}
		}
	}
	if v, ok := cfg["neighbor_cap"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			c.Params.NeighborCap = parsed
		}
	}
	return c, nil
}
