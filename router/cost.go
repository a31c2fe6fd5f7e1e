package router

import (
	"math"

	"github.com/kprusa/adupsim/kernel"
	"github.com/kprusa/adupsim/proto"
)

// compositeLinkCost computes C_link per §4.4.2.
func compositeLinkCost(cfg Config, m proto.LinkMetrics) float64 {
	return cfg.WeightDelay*m.DelayMS +
		cfg.WeightJitter*m.JitterMS +
		cfg.WeightPacketLoss*(m.PacketLossPct*cfg.PacketLossScale) +
		cfg.WeightCongestion*m.CongestionPct
}

// detectLoop evaluates §4.4.6 against the recorded history for (prefix,
// neighbor), BEFORE the candidate under consideration is appended.
func detectLoop(cfg Config, history []loopSample) bool {
	if n := len(history); n >= cfg.OscillationWindow {
		window := history[n-cfg.OscillationWindow:]
		min, max := window[0].Cost, window[0].Cost
		for _, s := range window[1:] {
			if s.Cost < min {
				min = s.Cost
			}
			if s.Cost > max {
				max = s.Cost
			}
		}
		if max-min > cfg.OscillationThreshold {
			return true
		}
	}
	if n := len(history); n >= cfg.AccumulationWindow {
		window := history[n-cfg.AccumulationWindow:]
		increases := 0
		for i := 1; i < len(window); i++ {
			if window[i].Cost > window[i-1].Cost {
				increases++
			}
		}
		if increases >= cfg.AccumulationThreshold {
			return true
		}
	}
	return false
}

// dampAboveKnee applies the exponential damping of §4.4.5 step 4.
func dampAboveKnee(cfg Config, total float64) float64 {
	if total > cfg.DampingKnee {
		return cfg.DampingKnee + (total-cfg.DampingKnee)*cfg.DampingFactor
	}
	return total
}

// stabilize applies §4.4.7: an EMA over the admitted-cost history
// (before appending the new candidate), capped at 20% growth over the
// previous admitted value and at the absolute ceiling, or — with fewer
// than MinStabilizationSamples prior samples — a flat cap at
// NewPathCap.
func stabilize(cfg Config, history []float64, candidate float64) float64 {
	if len(history) < cfg.MinStabilizationSamples {
		return math.Min(candidate, cfg.NewPathCap)
	}

	samples := append(append([]float64{}, history...), candidate)
	// Exponential moving average folded from the newest sample back to
	// the oldest, so older samples are weighted by geometric decay
	// toward the newest (α=0.5).
	ema := samples[len(samples)-1]
	for i := len(samples) - 2; i >= 0; i-- {
		ema = cfg.StabilizationAlpha*samples[i] + (1-cfg.StabilizationAlpha)*ema
	}

	previous := history[len(history)-1]
	ema = math.Min(ema, previous*cfg.PerUpdateIncreaseCap)
	ema = math.Min(ema, cfg.HardCeiling)
	return ema
}

// explorationBonus implements §4.4.5 step 6's exploration() term.
func explorationBonus(cfg Config, uses int) float64 {
	switch {
	case uses == 0:
		return cfg.ExplorationUnused
	case uses < 3:
		return cfg.ExplorationLow
	case uses < 10:
		return cfg.ExplorationModerate
	default:
		return 0
	}
}

// candidateScore computes the composite selection score of §4.4.5 step
// 6 for a candidate already reduced to its final stabilized total.
func candidateScore(cfg Config, total float64, m proto.LinkMetrics, uses int) float64 {
	return cfg.ScoreWeightCost*total +
		cfg.ScoreWeightStability*(100-m.LinkStabilityPct) +
		cfg.ScoreWeightCongestion*m.CongestionPct +
		cfg.ScoreWeightPacketLoss*(m.PacketLossPct*cfg.PacketLossScale) +
		cfg.ScoreWeightExploration*explorationBonus(cfg, uses)
}

// pruneExpired removes neighbor table entries whose hold time elapsed,
// per §4.4.3 step 3 ("on every received HELLO").
func pruneExpired(cfg Config, neighbors map[proto.NodeID]NeighborEntry, now kernel.VirtualTime) []proto.NodeID {
	var pruned []proto.NodeID
	for id, n := range neighbors {
		if now-n.LastSeen > cfg.HoldTime {
			delete(neighbors, id)
			pruned = append(pruned, id)
		}
	}
	return pruned
}
