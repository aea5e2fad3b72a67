//go:build ebiten

package main

import (
	"errors"
	"flag"
	"log"

	"flocksim/internal/app"
	"flocksim/internal/core"
	_ "flocksim/internal/sims/flock"

	"github.com/hajimehoshi/ebiten/v2"
	"gonum.org/v1/gonum/spatial/r2"
)

func main() {
	cfg := app.NewConfig()
	cfg.Bind(flag.CommandLine)
	flag.Parse()

	if cfg.TPS <= 0 {
		log.Fatalf("tps must be positive, got %d", cfg.TPS)
	}

	factory, ok := core.Sims()[cfg.Sim]
	if !ok {
		log.Fatalf("unknown sim %q", cfg.Sim)
	}

	sim, err := factory(cfg.Options())
	if err != nil {
		log.Fatal(err)
	}
	if cfg.Seed != 0 {
		sim.Reset(cfg.Seed)
	}

	dt := 1.0 / float64(cfg.TPS)
	game := app.New(sim, cfg.Scale, cfg.Seed, dt)

	bounds := sim.Bounds()
	size := r2.Sub(bounds.Max, bounds.Min)

	ebiten.SetWindowTitle("flocksim: " + sim.Name())
	ebiten.SetTPS(cfg.TPS)
	ebiten.SetWindowSize(int(size.X*cfg.Scale), int(size.Y*cfg.Scale))

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal(err)
	}
}
