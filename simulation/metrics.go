package simulation

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kprusa/adupsim/kernel"
	"github.com/kprusa/adupsim/proto"
)

// Metrics holds the simulation's Prometheus collectors on an isolated
// registry, mirroring shurli's per-instance Metrics pattern so multiple
// Simulation instances in the same process (e.g. parallel tests) never
// collide on the global default registry.
type Metrics struct {
	Registry *prometheus.Registry

	PacketsSent    *prometheus.CounterVec
	PacketsDropped *prometheus.CounterVec
	RouteChanges   *prometheus.CounterVec
	FIBResets      prometheus.Counter
	VirtualTime    prometheus.Gauge

	// lastPacket/lastRoute track, per router, the latest log timestamp
	// already folded into the counters above, so repeated observe calls
	// across successive Run()s never double-count an entry still
	// present in the bounded ring buffer.
	lastPacket map[proto.NodeID]kernel.VirtualTime
	lastRoute  map[proto.NodeID]kernel.VirtualTime
}

// NewMetrics builds a Metrics instance with every collector registered.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		Registry:   reg,
		lastPacket: make(map[proto.NodeID]kernel.VirtualTime),
		lastRoute:  make(map[proto.NodeID]kernel.VirtualTime),
		PacketsSent: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "adupsim_packets_sent_total",
				Help: "Total packets sent by routers, by packet type.",
			},
			[]string{"type"},
		),
		PacketsDropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "adupsim_packets_dropped_total",
				Help: "Total UPDATE route entries dropped at ingress, by reason.",
			},
			[]string{"reason"},
		),
		RouteChanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "adupsim_route_changes_total",
				Help: "Total FIB route-change events, by classification.",
			},
			[]string{"classification"},
		),
		FIBResets: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "adupsim_fib_resets_total",
				Help: "Total FIB entries evicted by the high-cost reset sweeper.",
			},
		),
		VirtualTime: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "adupsim_virtual_time",
				Help: "Current simulation virtual time of the most recent Run.",
			},
		),
	}

	reg.MustRegister(
		m.PacketsSent,
		m.PacketsDropped,
		m.RouteChanges,
		m.FIBResets,
		m.VirtualTime,
	)

	return m
}

// observe derives counter increments from a router's current packet and
// route-change logs. It is called after every Run, not wired into the
// hot path, since the protocol core must not depend on an observability
// sink (spec.md §1 excludes dashboards as a *feature*, but the counters
// themselves are ambient infrastructure per SPEC_FULL §12).
func (m *Metrics) observe(snap Snapshot) {
	for id, r := range snap.Routers {
		since := m.lastPacket[id]
		for _, p := range r.PacketLog {
			if p.Time <= since {
				continue
			}
			if p.Direction == "sent" {
				m.PacketsSent.WithLabelValues(p.Type).Inc()
			}
			if p.Reason != "" {
				m.PacketsDropped.WithLabelValues(p.Reason).Inc()
			}
		}
		if n := len(r.PacketLog); n > 0 {
			m.lastPacket[id] = r.PacketLog[n-1].Time
		}

		routeSince := m.lastRoute[id]
		for _, c := range r.RouteChangeLog {
			if c.Time <= routeSince {
				continue
			}
			m.RouteChanges.WithLabelValues(c.Classification).Inc()
			if c.Classification == "Reset" {
				m.FIBResets.Inc()
			}
		}
		if n := len(r.RouteChangeLog); n > 0 {
			m.lastRoute[id] = r.RouteChangeLog[n-1].Time
		}
	}
	m.VirtualTime.Set(float64(snap.Now))
}
