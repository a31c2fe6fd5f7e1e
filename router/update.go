package router

import (
	"math"

	"github.com/kprusa/adupsim/internal/ring"
	"github.com/kprusa/adupsim/kernel"
	"github.com/kprusa/adupsim/proto"
)

// handleUpdate implements the ingress admission pipeline of §4.4.4 for
// every advertised route in the packet, then re-runs path selection
// for each affected prefix.
func (r *Router) handleUpdate(msg proto.Update) {
	r.logPacket(PacketLogEntry{Type: proto.OpUpdate, Direction: "received", Neighbor: msg.Source})

	for _, route := range msg.Routes {
		reason, ok, rapid := r.admit(msg.Source, route.Prefix, route.ReportedCost)
		if rapid != nil {
			r.log.Warn("rapid cost increase substituted", "error", rapid)
		}
		if ok {
			r.selectPath(route.Prefix)
		} else {
			r.logPacket(PacketLogEntry{
				Type: proto.OpUpdate, Direction: "received", Neighbor: msg.Source,
				Details: string(route.Prefix), Reason: reason.String(),
			})
		}
	}
}

// admit runs §4.4.4 steps 1-5 and stores the admitted (possibly
// substituted) cost into the topology table. ok is false when the
// route was dropped outright (steps 1-3); a substitution (step 4) is
// still admitted (ok=true) with reason set only for observability, and
// the returned error carries the substitution's detail for logging.
func (r *Router) admit(neighbor proto.NodeID, prefix proto.PrefixID, reported float64) (proto.ErrorKind, bool, error) {
	if _, known := r.neighbors[neighbor]; !known {
		return proto.ErrorUnknownNeighbor, false, nil
	}

	if fib, ok := r.fib[prefix]; ok && fib.NextHop == neighbor {
		return proto.ErrorSplitHorizon, false, nil
	}

	if reported > r.cfg.AdmissionCeiling {
		return proto.ErrorExcessiveCost, false, nil
	}

	admitted := reported
	reason := proto.ErrorNone
	var rapid error
	if neighbors, ok := r.topology[prefix]; ok {
		if old, had := neighbors[neighbor]; had && reported > r.cfg.RapidIncreaseMultiplier*old {
			admitted = math.Min(old*r.cfg.RapidIncreaseSubstituteFactor, r.cfg.HardCeiling)
			reason = proto.ErrorRapidIncrease
			rapid = &proto.RapidIncreaseError{
				Prefix: prefix, Neighbor: neighbor,
				Reported: reported, Previous: old, Substituted: admitted,
			}
		}
	}

	if r.topology[prefix] == nil {
		r.topology[prefix] = make(map[proto.NodeID]float64)
	}
	r.topology[prefix][neighbor] = admitted

	return reason, true, rapid
}

type candidate struct {
	neighbor proto.NodeID
	total    float64
	score    float64
	metrics  proto.LinkMetrics
}

// selectPath implements the DUAL-style multi-criterion selection of
// §4.4.5 for a single prefix.
func (r *Router) selectPath(prefix proto.PrefixID) {
	if existing, ok := r.fib[prefix]; ok && existing.IsSelf() {
		// Never let a learned route override a direct attachment.
		return
	}

	var candidates []candidate
	for neighborID, neighbor := range r.neighbors {
		reported, ok := r.topology[prefix][neighborID]
		if !ok {
			continue
		}

		key := costKey{Prefix: prefix, Neighbor: neighborID}
		loopHist := r.loopHistoryFor(key)
		if detectLoop(r.cfg, loopHist.Items()) {
			r.logPacket(PacketLogEntry{
				Type: proto.OpUpdate, Direction: "received", Neighbor: neighborID,
				Details: string(prefix), Reason: proto.ErrorLoopDetected.String(),
			})
			continue
		}

		total := compositeLinkCost(r.cfg, neighbor.Metrics) + reported
		total = math.Min(total, r.cfg.HardCeiling)
		total = dampAboveKnee(r.cfg, total)

		costHist := r.costHistoryFor(key)
		total = stabilize(r.cfg, costHist.Items(), total)

		loopHist.Push(loopSample{Time: r.k.Now(), Cost: total})
		costHist.Push(total)

		uses := r.pathUsage[r.pathUsageKey(neighborID, prefix)]
		score := candidateScore(r.cfg, total, neighbor.Metrics, uses)

		candidates = append(candidates, candidate{neighbor: neighborID, total: total, score: score, metrics: neighbor.Metrics})
	}

	old, had := r.fib[prefix]

	if len(candidates) == 0 {
		if had && !old.IsSelf() {
			delete(r.fib, prefix)
			r.logRouteChange(RouteChangeEntry{
				Prefix: prefix, OldNextHop: old.NextHop, NewNextHop: "",
				Info: "no remaining candidate", Classification: ChangeLost,
			})
		}
		return
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.score < best.score {
			best = c
		}
	}

	changed := !had || old.NextHop != best.neighbor
	significant := had && math.Abs(best.total-old.TotalCost) > 0.1
	if !changed && !significant {
		return
	}

	reason := r.selectionReason(best, candidates)
	r.fib[prefix] = FIBEntry{
		NextHop:         best.neighbor,
		TotalCost:       best.total,
		Stability:       best.metrics.LinkStabilityPct,
		Congestion:      best.metrics.CongestionPct,
		PacketLoss:      best.metrics.PacketLossPct,
		SelectionReason: reason,
	}
	r.pathUsage[r.pathUsageKey(best.neighbor, prefix)]++

	r.logRouteChange(RouteChangeEntry{
		Prefix: prefix, OldNextHop: changeFrom(had, old), NewNextHop: best.neighbor,
		Info: reason, Classification: r.classify(had, old, best),
	})

	r.triggerUpdate(prefix)
}

func (r *Router) classify(had bool, old FIBEntry, best candidate) string {
	switch {
	case !had:
		return ChangeNew
	case old.NextHop == best.neighbor:
		return ChangeUpdated
	case best.total < old.TotalCost:
		return ChangeBetter
	default:
		return ChangeSwitchedOnFailure
	}
}

// selectionReason fills the FIBEntry.selection_reason field with one of
// three strings (SPEC_FULL §11): "only available path" for a single
// candidate, otherwise "best path (lowest composite score)" or "best of
// closely matched paths".
// best is always the minimum-score candidate; the last two describe
// whether the runner-up's score was within 10% of it. There is no
// separate backup tier.
func (r *Router) selectionReason(best candidate, all []candidate) string {
	if len(all) < 2 {
		return "only available path"
	}
	runnerUp := math.Inf(1)
	for _, c := range all {
		if c.neighbor == best.neighbor {
			continue
		}
		if c.score < runnerUp {
			runnerUp = c.score
		}
	}
	switch {
	case runnerUp-best.score > runnerUp*0.1:
		return "best path (lowest composite score)"
	default:
		return "best of closely matched paths"
	}
}

func (r *Router) costHistoryFor(key costKey) *ring.Buffer[float64] {
	h, ok := r.costHistory[key]
	if !ok {
		h = ring.New[float64](r.cfg.CostHistoryCapacity)
		r.costHistory[key] = h
	}
	return h
}

func (r *Router) loopHistoryFor(key costKey) *ring.Buffer[loopSample] {
	h, ok := r.loopHistory[key]
	if !ok {
		h = ring.New[loopSample](r.cfg.LoopHistoryCapacity)
		r.loopHistory[key] = h
	}
	return h
}

// triggerUpdate implements §4.4.8: after a random delay, broadcast a
// single-route UPDATE for prefix on every live interface except the
// one leading toward the prefix's own next hop (split horizon), unless
// the FIB cost exceeds the suppression threshold.
func (r *Router) triggerUpdate(prefix proto.PrefixID) {
	r.k.Spawn(kernel.Process{Label: r.label("update-" + string(prefix)), Body: func(p *kernel.Proc) {
		p.Timeout(r.uniform(float64(r.cfg.UpdateDelayMin), float64(r.cfg.UpdateDelayMax)))
		r.broadcastUpdate(prefix)
	}})
}

func (r *Router) broadcastUpdate(prefix proto.PrefixID) {
	entry, ok := r.fib[prefix]
	if !ok {
		return
	}
	if entry.TotalCost > r.cfg.AdvertiseSuppression {
		return
	}

	update := proto.NewUpdate(r.id, prefix, entry.TotalCost)
	for _, iface := range r.liveInterfaces() {
		if iface.Neighbor == entry.NextHop {
			continue // split horizon
		}
		r.logPacket(PacketLogEntry{
			Type: proto.OpUpdate, Direction: "sent", Neighbor: iface.Neighbor,
			Details: string(prefix), CompositeCost: entry.TotalCost,
		})
		iface.Link.Send(r.id, update)
	}
}
