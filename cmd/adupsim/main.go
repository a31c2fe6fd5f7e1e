// Command adupsim is a thin CLI wrapper around package simulation: it
// builds a topology from flags, optionally loads a YAML configuration
// override, runs the simulation to a given virtual time, and prints
// the resulting snapshot as JSON. It is not part of the protocol core
// (spec.md §1 scopes CLI plumbing out of the engine itself) — it is
// the ambient demonstration binary every repo in the retrieval pack
// carries alongside its library code.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/kprusa/adupsim/kernel"
	"github.com/kprusa/adupsim/simulation"
	"github.com/kprusa/adupsim/topology"
)

func main() {
	kind := flag.String("topology", "linear", "topology kind: linear, ring, star, mesh, custom")
	n := flag.Int("n", 3, "number of routers (>= 3)")
	connectionFactor := flag.Float64("connection-factor", 0.3, "custom-topology connection factor, [0.1, 1.0]")
	until := flag.Float64("until", 30, "virtual time to run until")
	configPath := flag.String("config", "", "optional path to a YAML simulation.Config override")
	verbose := flag.Bool("verbose", false, "log at debug level instead of info")
	flag.Parse()

	cfg := simulation.DefaultConfig()
	if *configPath != "" {
		loaded, err := simulation.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("adupsim: %s", err)
		}
		cfg = loaded
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}

	sim, err := simulation.New(os.Stderr, level, cfg, topology.Kind(*kind), *n, *connectionFactor)
	if err != nil {
		log.Fatalf("adupsim: %s", err)
	}

	sim.Start()
	sim.Run(kernel.VirtualTime(*until))
	sim.Stop()

	snap := sim.Snapshot()
	out, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		log.Fatalf("adupsim: marshal snapshot: %s", err)
	}
	fmt.Println(string(out))
}
