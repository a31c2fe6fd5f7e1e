package router

import (
	"math"

	"github.com/kprusa/adupsim/kernel"
	"github.com/kprusa/adupsim/proto"
)

// runHelloEmitter sends a HELLO on every live interface every
// HelloInterval, staggered at startup (§4.4.1).
func (r *Router) runHelloEmitter(p *kernel.Proc) {
	p.Timeout(r.uniform(float64(r.cfg.HelloStaggerMin), float64(r.cfg.HelloStaggerMax)))
	for {
		for _, iface := range r.liveInterfaces() {
			metrics := r.outgoing[iface.Name]
			hello := proto.NewHello(r.id, metrics)
			r.logPacket(PacketLogEntry{Type: proto.OpHello, Direction: "sent", Details: "hello"})
			iface.Link.Send(r.id, hello)
		}
		p.Timeout(r.cfg.HelloInterval)
	}
}

// runInitialAdvertiser installs SELF entries for directly attached
// prefixes and advertises them once, after a startup stagger
// (§4.4.1, §4.4.8).
func (r *Router) runInitialAdvertiser(p *kernel.Proc) {
	p.Timeout(r.uniform(float64(r.cfg.AdvertiseStaggerMin), float64(r.cfg.AdvertiseStaggerMax)))
	r.state = StateAdvertising
	r.advertiseSelf()
	r.state = StateActive
}

// advertiseSelf implements trigger_update(None) (§4.4.8): re-install
// every directly connected prefix's SELF entry at cost 0 and emit an
// UPDATE for each.
func (r *Router) advertiseSelf() {
	for _, prefix := range r.directPrefixes {
		old, had := r.fib[prefix]
		r.fib[prefix] = FIBEntry{NextHop: SelfNextHop, TotalCost: 0, SelectionReason: "directly connected"}
		if !had || old.NextHop != SelfNextHop {
			r.logRouteChange(RouteChangeEntry{
				Prefix: prefix, OldNextHop: changeFrom(had, old), NewNextHop: SelfNextHop,
				Info: "direct network advertised", Classification: ChangeNew,
			})
		}
		r.triggerUpdate(prefix)
	}
}

func changeFrom(had bool, e FIBEntry) proto.NodeID {
	if !had {
		return ""
	}
	return e.NextHop
}

// runDynamicMetricMutator perturbs each interface's outgoing link
// condition within the data-model bounds every 20-40 time units
// (§4.4.1). The perturbation formula is carried over from the original
// implementation's send_hellos: a slow sinusoidal drift combined with
// a random network-load multiplier and an occasional congestion spike.
func (r *Router) runDynamicMetricMutator(p *kernel.Proc) {
	for {
		p.Timeout(r.uniform(float64(r.cfg.MetricMutationPeriodMin), float64(r.cfg.MetricMutationPeriodMax)))
		now := float64(r.k.Now())
		timeFactor := 1 + 0.6*math.Sin(now/15) + 0.3*math.Cos(now/10)
		networkLoad := r.uniform(0.5, 2.0)
		congestionSpike := 1.0
		if r.rng.Float64() > 0.7 {
			congestionSpike = r.uniform(0.8, 1.5)
		}
		baseLoss := r.uniform(0.1, 2.5)
		dynamicLoss := baseLoss * math.Abs(timeFactor) * networkLoad * congestionSpike
		if r.rng.Float64() > 0.85 {
			dynamicLoss += r.uniform(1.0, 4.0)
		}

		for name := range r.outgoing {
			r.outgoing[name] = proto.LinkMetrics{
				DelayMS:          r.uniform(10, 80) * timeFactor,
				JitterMS:         r.uniform(2, 15) * networkLoad,
				PacketLossPct:    dynamicLoss,
				CongestionPct:    r.uniform(5, 35) * networkLoad,
				LinkStabilityPct: r.uniform(80, 98) / math.Max(timeFactor, 0.1),
			}.Clamp()
		}
	}
}

// runCostMonitor implements the reset sweeper (§4.4.9): every
// ResetPeriod, evict any learned FIB entry whose cost exceeds
// ResetThreshold together with that prefix's topology row, then (if
// anything was evicted) clear all cost/loop history as a blunt safety
// valve and re-advertise SELF entries.
func (r *Router) runCostMonitor(p *kernel.Proc) {
	for {
		p.Timeout(r.cfg.ResetPeriod)
		r.sweepReset()
	}
}

func (r *Router) sweepReset() {
	evicted := false
	for prefix, entry := range r.fib {
		if entry.IsSelf() || entry.TotalCost <= r.cfg.ResetThreshold {
			continue
		}
		old := entry
		delete(r.fib, prefix)
		delete(r.topology, prefix)
		r.logRouteChange(RouteChangeEntry{
			Prefix: prefix, OldNextHop: old.NextHop, NewNextHop: "",
			Info: "cost exceeded reset threshold", Classification: ChangeReset,
		})
		evicted = true
	}
	if evicted {
		for _, h := range r.costHistory {
			h.Clear()
		}
		for _, h := range r.loopHistory {
			h.Clear()
		}
		r.advertiseSelf()
	}
}

// runCostDecay implements the decay sweeper (§4.4.9): every
// DecayPeriod, multiply learned FIB and topology costs above 10 by
// DecayFactor and re-advertise the affected prefixes.
func (r *Router) runCostDecay(p *kernel.Proc) {
	for {
		p.Timeout(r.cfg.DecayPeriod)
		r.sweepDecay()
	}
}

func (r *Router) sweepDecay() {
	for prefix, entry := range r.fib {
		if entry.IsSelf() || entry.TotalCost <= 10 {
			continue
		}
		entry.TotalCost *= r.cfg.DecayFactor
		r.fib[prefix] = entry
		r.logRouteChange(RouteChangeEntry{
			Prefix: prefix, OldNextHop: entry.NextHop, NewNextHop: entry.NextHop,
			Info: "periodic cost decay", Classification: ChangeDecayed,
		})

		if neighbors, ok := r.topology[prefix]; ok {
			for neighbor, cost := range neighbors {
				if cost > 10 {
					neighbors[neighbor] = cost * r.cfg.DecayFactor
				}
			}
		}
		r.triggerUpdate(prefix)
	}
}
