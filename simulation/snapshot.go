package simulation

import (
	"github.com/kprusa/adupsim/kernel"
	"github.com/kprusa/adupsim/proto"
	"github.com/kprusa/adupsim/router"
)

// Snapshot is the read-only, deeply-copied external view of a
// Simulation described in spec.md §4.6 and §6 ("Snapshot interface").
// Every field is an exported primitive or slice/map of such, so the
// default encoding/json and yaml.v3 struct codecs round-trip it
// exactly — no custom Marshal/Unmarshal methods are needed.
type Snapshot struct {
	Now     kernel.VirtualTime             `json:"now" yaml:"now"`
	Routers map[proto.NodeID]RouterView    `json:"routers" yaml:"routers"`
	Links   []LinkView                     `json:"links" yaml:"links"`
}

// RouterView is one router's externally visible state.
type RouterView struct {
	ID             proto.NodeID                         `json:"id" yaml:"id"`
	State          string                                `json:"state" yaml:"state"`
	Neighbors      map[proto.NodeID]NeighborView         `json:"neighbors" yaml:"neighbors"`
	FIB            map[proto.PrefixID]FIBView            `json:"fib" yaml:"fib"`
	PacketLog      []PacketLogView                       `json:"packet_log" yaml:"packet_log"`
	RouteChangeLog []RouteChangeView                      `json:"route_change_log" yaml:"route_change_log"`
	Convergence    ConvergenceView                        `json:"convergence" yaml:"convergence"`
}

// NeighborView mirrors router.NeighborEntry.
type NeighborView struct {
	LastSeen kernel.VirtualTime `json:"last_seen" yaml:"last_seen"`
	Metrics  proto.LinkMetrics  `json:"metrics" yaml:"metrics"`
}

// FIBView mirrors router.FIBEntry.
type FIBView struct {
	NextHop         proto.NodeID `json:"next_hop" yaml:"next_hop"`
	TotalCost       float64      `json:"total_cost" yaml:"total_cost"`
	Stability       float64      `json:"stability" yaml:"stability"`
	Congestion      float64      `json:"congestion" yaml:"congestion"`
	PacketLoss      float64      `json:"packet_loss" yaml:"packet_loss"`
	SelectionReason string       `json:"selection_reason" yaml:"selection_reason"`
}

// PacketLogView mirrors router.PacketLogEntry, with Type rendered as
// its string form so the snapshot is self-describing without the
// consumer needing proto.OpCode's numeric encoding.
type PacketLogView struct {
	Time          kernel.VirtualTime `json:"time" yaml:"time"`
	Type          string             `json:"type" yaml:"type"`
	Direction     string             `json:"direction" yaml:"direction"`
	Neighbor      proto.NodeID       `json:"neighbor" yaml:"neighbor"`
	Details       string             `json:"details" yaml:"details"`
	CompositeCost float64            `json:"composite_cost" yaml:"composite_cost"`
	Reason        string             `json:"reason" yaml:"reason"`
}

// RouteChangeView mirrors router.RouteChangeEntry.
type RouteChangeView struct {
	Time           kernel.VirtualTime `json:"time" yaml:"time"`
	Prefix         proto.PrefixID     `json:"prefix" yaml:"prefix"`
	OldNextHop     proto.NodeID       `json:"old_next_hop" yaml:"old_next_hop"`
	NewNextHop     proto.NodeID       `json:"new_next_hop" yaml:"new_next_hop"`
	Info           string             `json:"info" yaml:"info"`
	Classification string             `json:"classification" yaml:"classification"`
}

// ConvergenceView is the supplemented convergence-observability view
// (SPEC_FULL §11), derived read-only from the route-change log.
type ConvergenceView struct {
	Converged          bool               `json:"converged" yaml:"converged"`
	LastRouteChangeAt  kernel.VirtualTime `json:"last_route_change_at" yaml:"last_route_change_at"`
	QuietPeriod        kernel.VirtualTime `json:"quiet_period" yaml:"quiet_period"`
}

// LinkView is one link's externally visible state.
type LinkView struct {
	NodeA proto.NodeID `json:"node_a" yaml:"node_a"`
	NodeB proto.NodeID `json:"node_b" yaml:"node_b"`
	Alive bool         `json:"alive" yaml:"alive"`
}

// snapshotRouter builds a RouterView from a live Router. It is the only
// place that reaches into router package internals via its exported
// accessors — Router itself never knows about Snapshot.
func snapshotRouter(r *router.Router, now kernel.VirtualTime) RouterView {
	neighbors := make(map[proto.NodeID]NeighborView, len(r.Neighbors()))
	for id, n := range r.Neighbors() {
		neighbors[id] = NeighborView{LastSeen: n.LastSeen, Metrics: n.Metrics}
	}

	fib := make(map[proto.PrefixID]FIBView, len(r.FIB()))
	for prefix, e := range r.FIB() {
		fib[prefix] = FIBView{
			NextHop:         e.NextHop,
			TotalCost:       e.TotalCost,
			Stability:       e.Stability,
			Congestion:      e.Congestion,
			PacketLoss:      e.PacketLoss,
			SelectionReason: e.SelectionReason,
		}
	}

	packets := make([]PacketLogView, 0, len(r.PacketLog()))
	for _, p := range r.PacketLog() {
		packets = append(packets, PacketLogView{
			Time: p.Time, Type: p.Type.String(), Direction: p.Direction,
			Neighbor: p.Neighbor, Details: p.Details, CompositeCost: p.CompositeCost, Reason: p.Reason,
		})
	}

	changes := make([]RouteChangeView, 0, len(r.RouteChangeLog()))
	for _, c := range r.RouteChangeLog() {
		changes = append(changes, RouteChangeView{
			Time: c.Time, Prefix: c.Prefix, OldNextHop: c.OldNextHop, NewNextHop: c.NewNextHop,
			Info: c.Info, Classification: c.Classification,
		})
	}

	return RouterView{
		ID:             r.ID(),
		State:          r.State().String(),
		Neighbors:      neighbors,
		FIB:            fib,
		PacketLog:      packets,
		RouteChangeLog: changes,
		Convergence:    convergenceView(r, now),
	}
}

// convergenceView derives a ConvergenceView (SPEC_FULL §11) purely from
// the route-change log's timestamps: the router is considered
// converged once no route change has been logged for at least one
// ResetPeriod of virtual time.
func convergenceView(r *router.Router, now kernel.VirtualTime) ConvergenceView {
	last := r.LastRouteChangeTime()
	quiet := now - last
	return ConvergenceView{
		Converged:         quiet >= r.Config().ResetPeriod,
		LastRouteChangeAt: last,
		QuietPeriod:       quiet,
	}
}
