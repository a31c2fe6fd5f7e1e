// Package router implements the ADUP protocol state machine: neighbor
// discovery, the topology database, FIB selection, the advertisement
// engine, and the periodic maintenance processes described in the
// spec's Router component (§4.4).
package router

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sort"

	"github.com/kprusa/adupsim/internal/obslog"
	"github.com/kprusa/adupsim/internal/ring"
	"github.com/kprusa/adupsim/kernel"
	"github.com/kprusa/adupsim/proto"
)

// Inbox is the capability package link needs to deliver an inbound
// packet to a router without owning or even naming the router's
// internal representation.
type Inbox interface {
	Deliver(pkt proto.Packet)
}

// Router is the protocol core for one simulated node. It owns its
// tables and logs exclusively; the only cross-router communication is
// through an OutboundLink's Send, matching §5's message-passing-only
// sharing policy.
type Router struct {
	id  proto.NodeID
	k   *kernel.Kernel
	cfg Config
	rng *rand.Rand
	log *slog.Logger

	interfaces     map[string]*Interface
	directPrefixes []proto.PrefixID
	outgoing       map[string]proto.LinkMetrics

	neighbors map[proto.NodeID]NeighborEntry
	topology  map[proto.PrefixID]map[proto.NodeID]float64
	fib       map[proto.PrefixID]FIBEntry

	costHistory map[costKey]*ring.Buffer[float64]
	loopHistory map[costKey]*ring.Buffer[loopSample]
	pathUsage   map[string]int

	packetLog      *ring.Buffer[PacketLogEntry]
	routeChangeLog *ring.Buffer[RouteChangeEntry]

	state State

	inbox *kernel.Chan[proto.Packet]
}

// New constructs a Router seeded with its directly attached prefixes.
// rng must be the simulation-wide seeded generator (§9: a single
// seeded PRNG per simulation).
func New(id proto.NodeID, k *kernel.Kernel, cfg Config, rng *rand.Rand, baseLog *slog.Logger, directPrefixes []proto.PrefixID) *Router {
	r := &Router{
		id:             id,
		k:              k,
		cfg:            cfg,
		rng:            rng,
		log:            obslog.ForRouter(baseLog, string(id)),
		interfaces:     make(map[string]*Interface),
		directPrefixes: append([]proto.PrefixID{}, directPrefixes...),
		outgoing:       make(map[string]proto.LinkMetrics),
		neighbors:      make(map[proto.NodeID]NeighborEntry),
		topology:       make(map[proto.PrefixID]map[proto.NodeID]float64),
		fib:            make(map[proto.PrefixID]FIBEntry),
		costHistory:    make(map[costKey]*ring.Buffer[float64]),
		loopHistory:    make(map[costKey]*ring.Buffer[loopSample]),
		pathUsage:      make(map[string]int),
		packetLog:      ring.New[PacketLogEntry](cfg.PacketLogCapacity),
		routeChangeLog: ring.New[RouteChangeEntry](cfg.RouteChangeLogCapacity),
		state:          StateInitializing,
		inbox:          kernel.NewChan[proto.Packet](k),
	}
	return r
}

// ID returns the router's NodeID.
func (r *Router) ID() proto.NodeID { return r.id }

// State returns the current observational protocol state.
func (r *Router) State() State { return r.state }

// AttachInterface wires a named interface to a link-backed capability.
// Must be called before Start.
func (r *Router) AttachInterface(name string, neighbor proto.NodeID, link OutboundLink) {
	r.interfaces[name] = &Interface{Name: name, Neighbor: neighbor, Link: link}
	r.outgoing[name] = proto.LinkMetrics{
		DelayMS:          r.uniform(10, 80),
		JitterMS:         r.uniform(2, 15),
		PacketLossPct:    r.uniform(0.1, 2.5),
		CongestionPct:    r.uniform(5, 35),
		LinkStabilityPct: r.uniform(80, 98),
	}.Clamp()
}

// Deliver implements Inbox: package link hands inbound packets here.
func (r *Router) Deliver(pkt proto.Packet) {
	r.inbox.Put(pkt)
}

func (r *Router) uniform(lo, hi float64) float64 {
	return lo + r.rng.Float64()*(hi-lo)
}

// Start spawns the router's cooperative processes (§4.4.1). It must be
// called once, after every interface the router will ever use has been
// attached.
func (r *Router) Start() {
	r.k.Spawn(kernel.Process{Label: r.label("listener"), Body: r.runListener})
	r.k.Spawn(kernel.Process{Label: r.label("hello"), Body: r.runHelloEmitter})
	r.k.Spawn(kernel.Process{Label: r.label("advertiser"), Body: r.runInitialAdvertiser})
	r.k.Spawn(kernel.Process{Label: r.label("metrics"), Body: r.runDynamicMetricMutator})
	r.k.Spawn(kernel.Process{Label: r.label("monitor"), Body: r.runCostMonitor})
	r.k.Spawn(kernel.Process{Label: r.label("decay"), Body: r.runCostDecay})
}

func (r *Router) label(proc string) string {
	return fmt.Sprintf("%s/%s", r.id, proc)
}

func (r *Router) runListener(p *kernel.Proc) {
	for {
		pkt := r.inbox.Get(p)
		r.handlePacket(pkt)
	}
}

// handlePacket de-multiplexes an inbound packet to its handler. QUERY,
// REPLY and ACK are reserved for the DUAL active-phase extension (§6)
// and are accepted and ignored without error.
func (r *Router) handlePacket(pkt proto.Packet) {
	switch msg := pkt.(type) {
	case proto.Hello:
		r.handleHello(msg)
	case proto.Update:
		r.handleUpdate(msg)
	case proto.Query, proto.Reply, proto.Ack:
		// Reserved; no baseline handling.
	default:
		r.log.Warn("dropping malformed packet", "type", fmt.Sprintf("%T", pkt))
	}
}

func (r *Router) logPacket(e PacketLogEntry) {
	e.Time = r.k.Now()
	e.Router = r.id
	r.packetLog.Push(e)
}

func (r *Router) logRouteChange(e RouteChangeEntry) {
	e.Time = r.k.Now()
	e.Router = r.id
	r.routeChangeLog.Push(e)
}

func (r *Router) pathUsageKey(nextHop proto.NodeID, prefix proto.PrefixID) string {
	return fmt.Sprintf("%s→%s", nextHop, prefix)
}

// liveInterfaces returns the interfaces whose link is currently live,
// in a deterministic (insertion-independent, name-sorted) order so
// broadcast fan-out is reproducible across runs with the same seed.
func (r *Router) liveInterfaces() []*Interface {
	names := make([]string, 0, len(r.interfaces))
	for name := range r.interfaces {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]*Interface, 0, len(names))
	for _, name := range names {
		iface := r.interfaces[name]
		if iface.Link != nil && iface.Link.IsLive() {
			out = append(out, iface)
		}
	}
	return out
}
