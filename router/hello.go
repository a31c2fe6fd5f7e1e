package router

import "github.com/kprusa/adupsim/proto"

// handleHello implements §4.4.3: refresh the sender's neighbor entry,
// log the packet, and prune any neighbor whose hold time has elapsed.
// A HELLO never touches the FIB directly.
func (r *Router) handleHello(msg proto.Hello) {
	r.neighbors[msg.Source] = NeighborEntry{
		ID:       msg.Source,
		Metrics:  msg.Metrics.Clamp(),
		LastSeen: r.k.Now(),
	}

	r.logPacket(PacketLogEntry{
		Type: proto.OpHello, Direction: "received", Neighbor: msg.Source,
		CompositeCost: compositeLinkCost(r.cfg, msg.Metrics),
	})

	pruneExpired(r.cfg, r.neighbors, r.k.Now())
}
