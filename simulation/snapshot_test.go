package simulation

import (
	"math/rand/v2"
	"testing"

	"github.com/kprusa/adupsim/kernel"
	"github.com/kprusa/adupsim/proto"
	"github.com/kprusa/adupsim/router"
)

func TestSnapshotRouter_ReflectsDirectlyAttachedPrefix(t *testing.T) {
	k := kernel.New(nil)
	rng := rand.New(rand.NewPCG(1, 1))
	r := router.New("R1", k, router.DefaultConfig(), rng, nil, []proto.PrefixID{"10.0.0.0/24"})
	r.Start()
	k.Run(r.Config().AdvertiseStaggerMax + 1)

	view := snapshotRouter(r, k.Now())
	entry, ok := view.FIB["10.0.0.0/24"]
	if !ok {
		t.Fatal("snapshot FIB is missing the directly attached prefix")
	}
	if entry.NextHop != router.SelfNextHop {
		t.Fatalf("NextHop = %v, want %v", entry.NextHop, router.SelfNextHop)
	}
}

func TestConvergenceView_ConvergedAfterQuietPeriod(t *testing.T) {
	k := kernel.New(nil)
	rng := rand.New(rand.NewPCG(1, 1))
	r := router.New("R1", k, router.DefaultConfig(), rng, nil, nil)

	view := convergenceView(r, r.Config().ResetPeriod)
	if !view.Converged {
		t.Fatal("Converged = false after a full ResetPeriod with no route changes")
	}
}

func TestConvergenceView_NotConvergedImmediatelyAfterChange(t *testing.T) {
	k := kernel.New(nil)
	rng := rand.New(rand.NewPCG(1, 1))
	r := router.New("R1", k, router.DefaultConfig(), rng, nil, []proto.PrefixID{"10.0.0.0/24"})
	r.Start()
	k.Run(r.Config().AdvertiseStaggerMax + 1)

	view := convergenceView(r, k.Now())
	if view.Converged {
		t.Fatal("Converged = true immediately after installing a route")
	}
}
