package flock

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"flocksim/internal/core"
)

func TestIntegratorClampsSpeed(t *testing.T) {
	p := DefaultConfig().Params
	it := integrator{p: &p}
	rng := core.NewRNG(21)

	const dt = 1.0 / 60
	for trial := 0; trial < 200; trial++ {
		ps := NewPointSet(1)
		vel := r2.Vec{X: rng.Range(-500, 500), Y: rng.Range(-500, 500)}
		accel := r2.Vec{X: rng.Range(-p.MaxForce, p.MaxForce), Y: rng.Range(-p.MaxForce, p.MaxForce)}
		ps.Place(0, r2.Vec{}, vel)

		it.step(ps, 0, accel, dt)
		ps.Swap()

		speed := r2.Norm(ps.Vel(0))
		if speed < p.MinSpeed-1e-9 || speed > p.MaxSpeed+1e-9 {
			t.Fatalf("trial %d: speed %g outside [%g, %g]", trial, speed, p.MinSpeed, p.MaxSpeed)
		}
	}
}

func TestIntegratorAdvancesPosition(t *testing.T) {
	p := DefaultConfig().Params
	it := integrator{p: &p}

	ps := NewPointSet(1)
	vel := r2.Vec{X: p.MaxSpeed, Y: 0}
	ps.Place(0, r2.Vec{X: 10, Y: 20}, vel)

	it.step(ps, 0, r2.Vec{}, 0.5)
	ps.Swap()

	want := r2.Vec{X: 10 + p.MaxSpeed*0.5, Y: 20}
	if got := ps.Pos(0); got != want {
		t.Fatalf("position %v, want %v", got, want)
	}
	if got := ps.Heading(0); got != 0 {
		t.Fatalf("heading %g, want 0", got)
	}
}

func TestIntegratorZeroVelocityKeepsHeading(t *testing.T) {
	p := DefaultConfig().Params
	p.MinSpeed = 0
	it := integrator{p: &p}

	ps := NewPointSet(1)
	ps.Place(0, r2.Vec{X: 5, Y: 5}, r2.Vec{X: 0, Y: 2}) // heading = +Y

	// Exactly cancel the motion.
	it.step(ps, 0, r2.Vec{X: 0, Y: -2}, 1)
	ps.Swap()

	if got := ps.Vel(0); got.X != 0 || got.Y != 0 {
		t.Fatalf("velocity %v, want zero", got)
	}
	if got := ps.Heading(0); got != math.Pi/2 {
		t.Fatalf("heading %g changed despite zero velocity, want %g", got, math.Pi/2)
	}
	if got := ps.Pos(0); got != (r2.Vec{X: 5, Y: 5}) {
		t.Fatalf("position %v moved with zero velocity", got)
	}
}

func TestIntegratorResumesAtMinSpeed(t *testing.T) {
	p := DefaultConfig().Params
	it := integrator{p: &p}

	ps := NewPointSet(1)
	ps.Place(0, r2.Vec{}, r2.Vec{X: 2, Y: 0})

	// Cancellation with a nonzero floor resumes along the last heading.
	it.step(ps, 0, r2.Vec{X: -2, Y: 0}, 1)
	ps.Swap()

	got := ps.Vel(0)
	if math.Abs(got.X-p.MinSpeed) > 1e-9 || math.Abs(got.Y) > 1e-9 {
		t.Fatalf("velocity %v, want (%g, 0)", got, p.MinSpeed)
	}
}
