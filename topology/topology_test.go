package topology

import (
	"math/rand/v2"
	"testing"

	"github.com/kprusa/adupsim/kernel"
	"github.com/kprusa/adupsim/router"
)

func build(t *testing.T, kind Kind, n int, connectionFactor float64) *Result {
	t.Helper()
	k := kernel.New(nil)
	rng := rand.New(rand.NewPCG(1, 1))
	res, err := Build(k, router.DefaultConfig(), rng, nil, kind, n, connectionFactor)
	if err != nil {
		t.Fatalf("Build(%v, %d) returned error: %s", kind, n, err)
	}
	return res
}

func TestBuild_RejectsFewerThanThreeNodes(t *testing.T) {
	k := kernel.New(nil)
	rng := rand.New(rand.NewPCG(1, 1))
	if _, err := Build(k, router.DefaultConfig(), rng, nil, Linear, 2, 0); err == nil {
		t.Fatal("Build() with n=2 succeeded, want error")
	}
}

func TestBuild_Linear(t *testing.T) {
	res := build(t, Linear, 4, 0)
	if len(res.Routers) != 4 {
		t.Fatalf("len(Routers) = %d, want 4", len(res.Routers))
	}
	if len(res.Links) != 3 {
		t.Fatalf("len(Links) = %d, want 3", len(res.Links))
	}
}

func TestBuild_Ring(t *testing.T) {
	res := build(t, Ring, 4, 0)
	if len(res.Links) != 4 {
		t.Fatalf("len(Links) = %d, want 4 (closed loop)", len(res.Links))
	}
}

func TestBuild_Star(t *testing.T) {
	res := build(t, Star, 5, 0)
	if len(res.Links) != 4 {
		t.Fatalf("len(Links) = %d, want 4 (hub to every spoke)", len(res.Links))
	}
}

func TestBuild_MeshCappedAtSix(t *testing.T) {
	res := build(t, Mesh, 10, 0)
	// A Mesh request above meshCap clamps the router count itself, so
	// every router created is still part of the clique: C(6,2) = 15 edges.
	want := 15
	if len(res.Links) != want {
		t.Fatalf("len(Links) = %d, want %d", len(res.Links), want)
	}
	if len(res.Routers) != 6 {
		t.Fatalf("len(Routers) = %d, want 6 (node count clamped, no router left unwired)", len(res.Routers))
	}
}

func TestBuild_CustomRejectsOutOfRangeConnectionFactor(t *testing.T) {
	k := kernel.New(nil)
	rng := rand.New(rand.NewPCG(1, 1))
	if _, err := Build(k, router.DefaultConfig(), rng, nil, Custom, 5, 0.05); err == nil {
		t.Fatal("Build() with connection_factor=0.05 succeeded, want error")
	}
}

func TestBuild_CustomIsConnected(t *testing.T) {
	res := build(t, Custom, 6, 0.3)

	// A spanning tree over n nodes always has at least n-1 edges.
	if len(res.Links) < 5 {
		t.Fatalf("len(Links) = %d, want >= 5 (spanning tree lower bound)", len(res.Links))
	}
}

func TestBuild_RegistryResolvesEveryRouter(t *testing.T) {
	res := build(t, Linear, 3, 0)
	for id := range res.Routers {
		if _, ok := res.Reg.Inbox(id); !ok {
			t.Fatalf("registry has no inbox for %v", id)
		}
	}
}
