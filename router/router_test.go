package router

import (
	"math/rand/v2"
	"testing"

	"github.com/kprusa/adupsim/kernel"
	"github.com/kprusa/adupsim/proto"
)

// fakeLink is a minimal router.OutboundLink test double that records
// every packet sent through it instead of delivering it anywhere.
type fakeLink struct {
	live bool
	sent []proto.Packet
}

func newFakeLink() *fakeLink { return &fakeLink{live: true} }

func (f *fakeLink) Send(from proto.NodeID, pkt proto.Packet) { f.sent = append(f.sent, pkt) }
func (f *fakeLink) IsLive() bool                              { return f.live }

func newTestRouter(k *kernel.Kernel, id proto.NodeID, prefixes ...proto.PrefixID) *Router {
	rng := rand.New(rand.NewPCG(1, 1))
	return New(id, k, DefaultConfig(), rng, nil, prefixes)
}

func TestRouter_LiveInterfacesSortedAndFiltersDown(t *testing.T) {
	k := kernel.New(nil)
	r := newTestRouter(k, "R1")

	up := newFakeLink()
	down := newFakeLink()
	down.live = false

	r.AttachInterface("if2", "R3", up)
	r.AttachInterface("if1", "R2", down)

	live := r.liveInterfaces()
	if len(live) != 1 {
		t.Fatalf("liveInterfaces() len = %d, want 1", len(live))
	}
	if live[0].Name != "if2" {
		t.Fatalf("liveInterfaces()[0].Name = %q, want %q", live[0].Name, "if2")
	}
}

func TestRouter_DeliverDispatchesToListener(t *testing.T) {
	k := kernel.New(nil)
	r := newTestRouter(k, "R1")
	r.k.Spawn(kernel.Process{Label: "listener", Body: r.runListener})

	r.Deliver(proto.NewHello("R2", proto.LinkMetrics{DelayMS: 10}.Clamp()))
	k.Run(1)

	if _, ok := r.neighbors["R2"]; !ok {
		t.Fatal("HELLO delivered through inbox did not populate the neighbor table")
	}
}
