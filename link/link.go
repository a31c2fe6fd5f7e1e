// Package link implements the Link component (§4.3): a FIFO-preserving
// transport between two routers' interfaces. A Link never imports
// package router's concrete type — it only depends on the small
// Inbox capability router exposes, avoiding the router↔link reference
// cycle called out in the design notes (§9).
package link

import (
	"log/slog"

	"github.com/kprusa/adupsim/internal/obslog"
	"github.com/kprusa/adupsim/kernel"
	"github.com/kprusa/adupsim/proto"
	"github.com/kprusa/adupsim/router"
)

// Registry resolves a NodeID to the capability needed to deliver an
// inbound packet to it. topology.Registry implements this with its
// NodeID→Inbox table; link never needs more than lookup-by-id.
type Registry interface {
	Inbox(id proto.NodeID) (router.Inbox, bool)
}

// Envelope is one in-flight (sender, packet) pair carried on a Link's
// per-direction channel.
type Envelope struct {
	From proto.NodeID
	Pkt  proto.Packet
}

// Link is a bidirectional transport between NodeA and NodeB, modeled as
// two independent unbounded FIFOs (one per direction) so that a burst
// in one direction never reorders or blocks the other, matching the
// kernel's no-locking-needed channel semantics (§4.2).
//
// Endpoints are held as NodeID values, not struct pointers into
// router.Router, per the spec's weak-reference design note (§9):
// severing a Link never requires router to release anything.
type Link struct {
	NodeA, NodeB proto.NodeID

	k   *kernel.Kernel
	reg Registry
	log *slog.Logger

	toB *kernel.Chan[Envelope]
	toA *kernel.Chan[Envelope]

	alive bool
}

// New constructs a Link between a and b and spawns its two drain
// processes. The link starts alive.
func New(k *kernel.Kernel, reg Registry, baseLog *slog.Logger, a, b proto.NodeID) *Link {
	l := &Link{
		NodeA: a,
		NodeB: b,
		k:     k,
		reg:   reg,
		log:   obslog.ForRouter(baseLog, string(a)+"<->"+string(b)),
		toB:   kernel.NewChan[Envelope](k),
		toA:   kernel.NewChan[Envelope](k),
		alive: true,
	}
	k.Spawn(kernel.Process{Label: "link/" + string(a) + "->" + string(b), Body: l.drain(l.toB, b)})
	k.Spawn(kernel.Process{Label: "link/" + string(b) + "->" + string(a), Body: l.drain(l.toA, a)})
	return l
}

func (l *Link) drain(ch *kernel.Chan[Envelope], dest proto.NodeID) func(*kernel.Proc) {
	return func(p *kernel.Proc) {
		for {
			env := ch.Get(p)
			if !l.alive {
				continue
			}
			inbox, ok := l.reg.Inbox(dest)
			if !ok {
				l.log.Warn("dropping packet for unknown destination", "dest", dest)
				continue
			}
			inbox.Deliver(env.Pkt)
		}
	}
}

// Sever marks the link dead: queued-but-undelivered envelopes are
// drained and discarded rather than delivered, and both endpoints'
// IsLive report false. Used to simulate a link-down event (spec.md
// scenario S3).
func (l *Link) Sever() { l.alive = false }

// Restore marks a previously severed link alive again.
func (l *Link) Restore() { l.alive = true }

// EndpointFor returns the router.OutboundLink capability for the side
// of this link named by self. Router.AttachInterface is given this
// value; it never sees the Link type itself.
func (l *Link) EndpointFor(self proto.NodeID) router.OutboundLink {
	return endpoint{link: l, self: self}
}

// endpoint adapts one side of a Link to router.OutboundLink.
type endpoint struct {
	link *Link
	self proto.NodeID
}

func (e endpoint) Send(from proto.NodeID, pkt proto.Packet) {
	if !e.link.alive {
		return
	}
	env := Envelope{From: from, Pkt: pkt}
	if e.self == e.link.NodeA {
		e.link.toB.Put(env)
	} else {
		e.link.toA.Put(env)
	}
}

func (e endpoint) IsLive() bool { return e.link.alive }
