// Command flock-bench measures the per-tick cost of the simulation pipeline
// across population sizes. It reports the spatial index rebuild, steering
// evaluation and integration phases separately so regressions in the rebuild
// path (which dominates the tick budget) are visible, not assumed away.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/profile"

	"flocksim/internal/sims/flock"
)

type benchResult struct {
	count     int
	build     time.Duration
	evaluate  time.Duration
	integrate time.Duration
	total     time.Duration
}

func (r benchResult) String() string {
	perTick := r.total
	return fmt.Sprintf("n=%-6d build=%-10s evaluate=%-10s integrate=%-10s tick=%-10s ticks/s=%.0f",
		r.count, r.build, r.evaluate, r.integrate, perTick, 1/perTick.Seconds())
}

func main() {
	countsArg := flag.String("counts", "256,1024,4096,16384", "comma-separated populations to benchmark")
	steps := flag.Int("steps", 600, "ticks to simulate per population")
	workers := flag.Int("workers", runtime.NumCPU(), "evaluate-phase worker goroutines")
	seed := flag.Int64("seed", 1337, "spawn seed")
	profileMode := flag.String("profile", "", "write a profile: cpu or mem")
	flag.Parse()

	switch *profileMode {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath(".")).Stop()
	default:
		log.Fatalf("unknown profile mode %q (want cpu or mem)", *profileMode)
	}

	counts, err := parseCounts(*countsArg)
	if err != nil {
		log.Fatal(err)
	}

	const dt = 1.0 / 60
	for _, n := range counts {
		res, err := run(n, *steps, *workers, *seed, dt)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(res)
	}
}

// run simulates steps ticks with n agents and returns mean phase durations.
// The world area scales with the population so neighbor density, and with it
// the per-query work, stays comparable across runs.
func run(n, steps, workers int, seed int64, dt float64) (benchResult, error) {
	base := flock.DefaultConfig()
	cfg := base
	cfg.Count = n
	cfg.Workers = workers
	cfg.Seed = seed
	if scale := math.Sqrt(float64(n) / float64(base.Count)); scale > 1 {
		cfg.Width = base.Width * scale
		cfg.Height = base.Height * scale
	}

	f, err := flock.NewWithConfig(cfg)
	if err != nil {
		return benchResult{}, err
	}

	var sum flock.Timings
	for i := 0; i < steps; i++ {
		if err := f.Step(dt); err != nil {
			return benchResult{}, err
		}
		t := f.LastTimings()
		sum.Build += t.Build
		sum.Evaluate += t.Evaluate
		sum.Integrate += t.Integrate
	}

	d := time.Duration(steps)
	res := benchResult{
		count:     n,
		build:     sum.Build / d,
		evaluate:  sum.Evaluate / d,
		integrate: sum.Integrate / d,
	}
	res.total = res.build + res.evaluate + res.integrate
	return res, nil
}

func parseCounts(s string) ([]int, error) {
	var counts []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("bad population %q", part)
		}
		counts = append(counts, n)
	}
	if len(counts) == 0 {
		return nil, fmt.Errorf("no populations given")
	}
	return counts, nil
}
