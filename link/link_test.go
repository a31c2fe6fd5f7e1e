package link

import (
	"testing"

	"github.com/kprusa/adupsim/kernel"
	"github.com/kprusa/adupsim/proto"
	"github.com/kprusa/adupsim/router"
)

// fakeInbox is a minimal router.Inbox test double recording every
// packet handed to it.
type fakeInbox struct {
	received []proto.Packet
}

func (f *fakeInbox) Deliver(pkt proto.Packet) { f.received = append(f.received, pkt) }

type fakeRegistry struct {
	inboxes map[proto.NodeID]router.Inbox
}

func newFakeRegistry() *fakeRegistry { return &fakeRegistry{inboxes: map[proto.NodeID]router.Inbox{}} }

func (r *fakeRegistry) Inbox(id proto.NodeID) (router.Inbox, bool) {
	inbox, ok := r.inboxes[id]
	return inbox, ok
}

func TestLink_DeliversInBothDirections(t *testing.T) {
	k := kernel.New(nil)
	reg := newFakeRegistry()
	a, b := &fakeInbox{}, &fakeInbox{}
	reg.inboxes["A"] = a
	reg.inboxes["B"] = b

	l := New(k, reg, nil, "A", "B")

	l.EndpointFor("A").Send("A", proto.NewHello("A", proto.LinkMetrics{}.Clamp()))
	l.EndpointFor("B").Send("B", proto.NewHello("B", proto.LinkMetrics{}.Clamp()))
	k.Run(1)

	if len(b.received) != 1 {
		t.Fatalf("B received %d packets, want 1", len(b.received))
	}
	if len(a.received) != 1 {
		t.Fatalf("A received %d packets, want 1", len(a.received))
	}
}

func TestLink_SeveredBlocksDelivery(t *testing.T) {
	k := kernel.New(nil)
	reg := newFakeRegistry()
	a, b := &fakeInbox{}, &fakeInbox{}
	reg.inboxes["A"] = a
	reg.inboxes["B"] = b

	l := New(k, reg, nil, "A", "B")
	endpointA := l.EndpointFor("A")

	l.Sever()
	if endpointA.IsLive() {
		t.Fatal("IsLive() = true after Sever()")
	}

	endpointA.Send("A", proto.NewHello("A", proto.LinkMetrics{}.Clamp()))
	k.Run(1)

	if len(b.received) != 0 {
		t.Fatalf("B received %d packets across a severed link, want 0", len(b.received))
	}
}

func TestLink_RestoreResumesDelivery(t *testing.T) {
	k := kernel.New(nil)
	reg := newFakeRegistry()
	a, b := &fakeInbox{}, &fakeInbox{}
	reg.inboxes["A"] = a
	reg.inboxes["B"] = b

	l := New(k, reg, nil, "A", "B")
	l.Sever()
	l.Restore()

	if !l.EndpointFor("A").IsLive() {
		t.Fatal("IsLive() = false after Restore()")
	}

	l.EndpointFor("A").Send("A", proto.NewHello("A", proto.LinkMetrics{}.Clamp()))
	k.Run(1)

	if len(b.received) != 1 {
		t.Fatalf("B received %d packets after Restore(), want 1", len(b.received))
	}
}

func TestLink_UnknownDestinationDropsSilently(t *testing.T) {
	k := kernel.New(nil)
	reg := newFakeRegistry()

	l := New(k, reg, nil, "A", "B")
	l.EndpointFor("A").Send("A", proto.NewHello("A", proto.LinkMetrics{}.Clamp()))

	// No registered inbox for B; drain must not panic.
	k.Run(1)
}
