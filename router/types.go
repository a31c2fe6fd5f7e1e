package router

import (
	"github.com/kprusa/adupsim/kernel"
	"github.com/kprusa/adupsim/proto"
)

// SelfNextHop is the synthetic next-hop value marking a directly
// connected prefix. It is reserved: topology builders must never hand
// out this string as a real NodeID.
const SelfNextHop proto.NodeID = "SELF"

// State is the observational, non-authoritative protocol state label
// (§4.4.10).
type State int

const (
	StateInitializing State = iota
	StateAdvertising
	StateActive
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "INITIALIZING"
	case StateAdvertising:
		return "ADVERTISING"
	case StateActive:
		return "ACTIVE"
	default:
		return "UNKNOWN"
	}
}

// NeighborEntry is one row of the neighbor table.
type NeighborEntry struct {
	ID       proto.NodeID
	Metrics  proto.LinkMetrics
	LastSeen kernel.VirtualTime
}

// FIBEntry is one installed forwarding decision.
type FIBEntry struct {
	NextHop         proto.NodeID
	TotalCost       float64
	Stability       float64
	Congestion      float64
	PacketLoss      float64
	SelectionReason string
}

// IsSelf reports whether this entry represents a directly attached
// network rather than a learned route.
func (e FIBEntry) IsSelf() bool { return e.NextHop == SelfNextHop }

// PacketLogEntry is one row of the bounded packet log.
type PacketLogEntry struct {
	Time          kernel.VirtualTime
	Router        proto.NodeID
	Type          proto.OpCode
	Direction     string // "sent" or "received"
	Neighbor      proto.NodeID
	Details       string
	CompositeCost float64
	Reason        string
}

// Route-change classifications (§4.4.5, §4.4.9).
const (
	ChangeNew               = "New"
	ChangeLost              = "Lost"
	ChangeBetter            = "Better"
	ChangeSwitchedOnFailure = "Switched-due-to-failure"
	ChangeUpdated           = "Updated"
	ChangeDecayed           = "Decayed"
	ChangeReset             = "Reset"
)

// RouteChangeEntry is one row of the bounded route-change log.
type RouteChangeEntry struct {
	Time           kernel.VirtualTime
	Router         proto.NodeID
	Prefix         proto.PrefixID
	OldNextHop     proto.NodeID
	NewNextHop     proto.NodeID
	Info           string
	Classification string
}

type costKey struct {
	Prefix   proto.PrefixID
	Neighbor proto.NodeID
}

type loopSample struct {
	Time kernel.VirtualTime
	Cost float64
}

// OutboundLink is the capability a Router needs from whatever backs
// one of its interfaces: the ability to send a packet from this router
// toward the far end, and to report whether that far end is currently
// reachable. package link's Link implements this; router never
// imports package link, avoiding the router↔link reference cycle
// called out in the design notes (§9).
type OutboundLink interface {
	Send(from proto.NodeID, pkt proto.Packet)
	IsLive() bool
}

// Interface is a named attachment point wiring a Router to a link, by
// capability rather than by owning the link itself. Neighbor names the
// NodeID on the far end, which split-horizon and per-interface
// broadcast logic need without Interface owning or even seeing the
// link's internal structure.
type Interface struct {
	Name     string
	Neighbor proto.NodeID
	Link     OutboundLink
}
