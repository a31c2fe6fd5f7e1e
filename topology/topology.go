// Package topology builds wired router/link graphs for the simulation
// façade (§4.5): linear, ring, star, mesh, and seeded-random custom
// topologies, each router seeded with exactly one directly attached
// prefix derived from its index.
package topology

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"

	"github.com/kprusa/adupsim/kernel"
	"github.com/kprusa/adupsim/link"
	"github.com/kprusa/adupsim/proto"
	"github.com/kprusa/adupsim/router"
)

// Kind names a topology shape.
type Kind string

const (
	Linear Kind = "linear"
	Ring   Kind = "ring"
	Star   Kind = "star"
	Mesh   Kind = "mesh"
	Custom Kind = "custom"
)

// meshCap is the clique size ceiling for Mesh, per spec.md §4.5
// ("capped at 6 for tractability"): Build clamps a larger Mesh request
// to meshCap routers, all of them wired into one full clique.
const meshCap = 6

// Registry is the NodeID→Inbox directory link.Link needs to deliver
// packets. It also satisfies link.Registry.
type Registry struct {
	routers map[proto.NodeID]router.Inbox
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{routers: make(map[proto.NodeID]router.Inbox)}
}

// Register records the inbox for id, overwriting any prior entry.
func (r *Registry) Register(id proto.NodeID, inbox router.Inbox) {
	r.routers[id] = inbox
}

// Inbox implements link.Registry.
func (r *Registry) Inbox(id proto.NodeID) (router.Inbox, bool) {
	inbox, ok := r.routers[id]
	return inbox, ok
}

// Result is the fully wired output of Build: every router has its
// interfaces attached and directly-connected prefixes seeded, but no
// process has been started yet — the caller (simulation.Simulation)
// calls Router.Start() once it is ready to begin the run.
type Result struct {
	Kind    Kind
	Routers map[proto.NodeID]*router.Router
	Links   []*link.Link
	Reg     *Registry
}

// edge is an undirected pair of 1-based node indices.
type edge struct{ a, b int }

// Build constructs n routers (n ≥ 3) of the given kind, wired with
// Link instances registered on k, using rng as the single
// simulation-wide seeded generator (stagger delays, dynamic metric
// perturbation, and — for Custom — edge selection all draw from this
// one instance, per the design notes' single-seeded-PRNG requirement).
func Build(k *kernel.Kernel, cfg router.Config, rng *rand.Rand, baseLog *slog.Logger, kind Kind, n int, connectionFactor float64) (*Result, error) {
	if n < 3 {
		return nil, fmt.Errorf("topology: node count must be >= 3, got %d", n)
	}
	if kind == Mesh && n > meshCap {
		n = meshCap
	}

	edges, err := edgesFor(kind, n, connectionFactor, rng)
	if err != nil {
		return nil, err
	}

	reg := NewRegistry()
	routers := make(map[proto.NodeID]*router.Router, n)
	for i := 1; i <= n; i++ {
		id := nodeID(i)
		r := router.New(id, k, cfg, rng, baseLog, []proto.PrefixID{prefixFor(i)})
		routers[id] = r
		reg.Register(id, r)
	}

	links := make([]*link.Link, 0, len(edges))
	ifaceCount := make(map[proto.NodeID]int)
	for _, e := range edges {
		a, b := nodeID(e.a), nodeID(e.b)
		l := link.New(k, reg, baseLog, a, b)
		links = append(links, l)

		ifaceCount[a]++
		ifaceCount[b]++
		routers[a].AttachInterface(fmt.Sprintf("if%d", ifaceCount[a]), b, l.EndpointFor(a))
		routers[b].AttachInterface(fmt.Sprintf("if%d", ifaceCount[b]), a, l.EndpointFor(b))
	}

	return &Result{Kind: kind, Routers: routers, Links: links, Reg: reg}, nil
}

func nodeID(i int) proto.NodeID     { return proto.NodeID(fmt.Sprintf("R%d", i)) }
func prefixFor(i int) proto.PrefixID { return proto.PrefixID(fmt.Sprintf("192.168.%d.0/24", i)) }

func edgesFor(kind Kind, n int, connectionFactor float64, rng *rand.Rand) ([]edge, error) {
	switch kind {
	case Linear:
		return linearEdges(n), nil
	case Ring:
		e := linearEdges(n)
		return append(e, edge{n, 1}), nil
	case Star:
		e := make([]edge, 0, n-1)
		for i := 2; i <= n; i++ {
			e = append(e, edge{1, i})
		}
		return e, nil
	case Mesh:
		return meshEdges(n), nil
	case Custom:
		if connectionFactor < 0.1 || connectionFactor > 1.0 {
			return nil, fmt.Errorf("topology: connection_factor must be in [0.1, 1.0], got %v", connectionFactor)
		}
		return customEdges(n, connectionFactor, rng), nil
	default:
		return nil, fmt.Errorf("topology: unknown kind %q", kind)
	}
}

func linearEdges(n int) []edge {
	e := make([]edge, 0, n-1)
	for i := 1; i < n; i++ {
		e = append(e, edge{i, i + 1})
	}
	return e
}

// meshEdges builds a full clique over n nodes. Build already clamps n
// to meshCap for Mesh requests, so every router created ends up wired.
func meshEdges(n int) []edge {
	var e []edge
	for i := 1; i <= n; i++ {
		for j := i + 1; j <= n; j++ {
			e = append(e, edge{i, j})
		}
	}
	return e
}

// customEdges builds a random spanning tree (connecting a random
// already-connected node to a random unconnected one, per spec.md
// §4.5) then adds random additional edges up to the connection-factor
// target or until no valid edge remains.
func customEdges(n int, connectionFactor float64, rng *rand.Rand) []edge {
	connected := []int{1}
	unconnected := make([]int, 0, n-1)
	for i := 2; i <= n; i++ {
		unconnected = append(unconnected, i)
	}

	have := make(map[edge]bool)
	var edges []edge
	addEdge := func(a, b int) {
		if a > b {
			a, b = b, a
		}
		e := edge{a, b}
		if !have[e] {
			have[e] = true
			edges = append(edges, e)
		}
	}

	for len(unconnected) > 0 {
		a := connected[rng.IntN(len(connected))]
		idx := rng.IntN(len(unconnected))
		b := unconnected[idx]
		addEdge(a, b)
		connected = append(connected, b)
		unconnected = append(unconnected[:idx], unconnected[idx+1:]...)
	}

	target := int(math.Ceil(connectionFactor * float64(n*(n-1)) / 2))
	for len(edges) < target {
		a := rng.IntN(n) + 1
		b := rng.IntN(n) + 1
		if a == b {
			continue
		}
		before := len(edges)
		addEdge(a, b)
		if len(edges) == before {
			// Already present; stop once every possible edge exists
			// rather than spinning on a complete graph.
			if len(edges) >= n*(n-1)/2 {
				break
			}
			continue
		}
	}

	return edges
}
