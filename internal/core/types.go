package core

import "gonum.org/v1/gonum/spatial/r2"

// Agent is the read-only per-agent snapshot exposed to hosts after each tick.
// Heading is in radians and tracks the direction of the last nonzero velocity.
type Agent struct {
	Pos     r2.Vec
	Vel     r2.Vec
	Heading float64
}

// Sim defines the minimal contract an agent simulation must implement.
type Sim interface {
	Name() string
	Bounds() r2.Box
	Reset(seed int64)
	Step(dt float64) error
	Agents() []Agent
}

// Factory constructs a Sim using an optional configuration map.
type Factory func(cfg map[string]string) (Sim, error)

var sims = map[string]Factory{}

// Register adds a simulation factory under the provided name.
func Register(name string, f Factory) {
	if name == "" || f == nil {
		return
	}
	sims[name] = f
}

// Sims exposes the registry of available simulation factories.
func Sims() map[string]Factory {
	return sims
}
