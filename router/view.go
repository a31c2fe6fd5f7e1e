package router

import (
	"github.com/kprusa/adupsim/kernel"
	"github.com/kprusa/adupsim/proto"
)

// The accessors below give package simulation a read-only view of a
// Router's tables and logs for building a Snapshot (§4.6), without
// letting simulation reach into or mutate Router's internal state.
// Each returns a shallow copy: the map/slice itself is fresh, though
// its value-typed elements (NeighborEntry, FIBEntry, ...) need no
// further copying since they hold no pointers or mutable fields of
// their own.

// Neighbors returns a copy of the neighbor table.
func (r *Router) Neighbors() map[proto.NodeID]NeighborEntry {
	out := make(map[proto.NodeID]NeighborEntry, len(r.neighbors))
	for k, v := range r.neighbors {
		out[k] = v
	}
	return out
}

// FIB returns a copy of the forwarding table.
func (r *Router) FIB() map[proto.PrefixID]FIBEntry {
	out := make(map[proto.PrefixID]FIBEntry, len(r.fib))
	for k, v := range r.fib {
		out[k] = v
	}
	return out
}

// PacketLog returns a copy of the bounded packet log, oldest first.
func (r *Router) PacketLog() []PacketLogEntry {
	items := r.packetLog.Items()
	out := make([]PacketLogEntry, len(items))
	copy(out, items)
	return out
}

// RouteChangeLog returns a copy of the bounded route-change log,
// oldest first.
func (r *Router) RouteChangeLog() []RouteChangeEntry {
	items := r.routeChangeLog.Items()
	out := make([]RouteChangeEntry, len(items))
	copy(out, items)
	return out
}

// Config returns the router's effective configuration.
func (r *Router) Config() Config { return r.cfg }

// LastRouteChangeTime returns the timestamp of the most recently
// logged route change, or 0 if none has ever been logged.
func (r *Router) LastRouteChangeTime() kernel.VirtualTime {
	items := r.routeChangeLog.Items()
	if len(items) == 0 {
		return 0
	}
	return items[len(items)-1].Time
}
