package simulation

import (
	"testing"

	dto "github.com/prometheus/client_model/go"

	"github.com/kprusa/adupsim/kernel"
	"github.com/kprusa/adupsim/proto"
)

func counterValue(t *testing.T, c interface{ Write(*dto.Metric) error }) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("Write() error: %s", err)
	}
	return m.GetCounter().GetValue()
}

func TestMetrics_ObserveCountsSentPacketsOnce(t *testing.T) {
	m := NewMetrics()

	snap := Snapshot{
		Now: 10,
		Routers: map[proto.NodeID]RouterView{
			"R1": {
				ID: "R1",
				PacketLog: []PacketLogView{
					{Time: 1, Type: "HELLO", Direction: "sent"},
					{Time: 2, Type: "UPDATE", Direction: "sent"},
				},
			},
		},
	}

	m.observe(snap)
	m.observe(snap) // same snapshot again must not double-count

	got := counterValue(t, m.PacketsSent.WithLabelValues("HELLO"))
	if got != 1 {
		t.Fatalf("PacketsSent{HELLO} = %v, want 1", got)
	}
	got = counterValue(t, m.PacketsSent.WithLabelValues("UPDATE"))
	if got != 1 {
		t.Fatalf("PacketsSent{UPDATE} = %v, want 1", got)
	}
}

func TestMetrics_ObserveAdvancesHighWaterMark(t *testing.T) {
	m := NewMetrics()

	first := Snapshot{Routers: map[proto.NodeID]RouterView{
		"R1": {PacketLog: []PacketLogView{{Time: 1, Type: "HELLO", Direction: "sent"}}},
	}}
	second := Snapshot{Routers: map[proto.NodeID]RouterView{
		"R1": {PacketLog: []PacketLogView{
			{Time: 1, Type: "HELLO", Direction: "sent"},
			{Time: 2, Type: "HELLO", Direction: "sent"},
		}},
	}}

	m.observe(first)
	m.observe(second)

	got := counterValue(t, m.PacketsSent.WithLabelValues("HELLO"))
	if got != 2 {
		t.Fatalf("PacketsSent{HELLO} = %v, want 2 (one per distinct timestamp)", got)
	}
}

func TestMetrics_ObserveCountsDroppedAndRouteChanges(t *testing.T) {
	m := NewMetrics()

	snap := Snapshot{
		Routers: map[proto.NodeID]RouterView{
			"R1": {
				PacketLog: []PacketLogView{{Time: 1, Reason: "split-horizon"}},
				RouteChangeLog: []RouteChangeView{
					{Time: 1, Classification: "New"},
					{Time: 2, Classification: "Reset"},
				},
			},
		},
	}
	m.observe(snap)

	if got := counterValue(t, m.PacketsDropped.WithLabelValues("split-horizon")); got != 1 {
		t.Fatalf("PacketsDropped{split-horizon} = %v, want 1", got)
	}
	if got := counterValue(t, m.RouteChanges.WithLabelValues("Reset")); got != 1 {
		t.Fatalf("RouteChanges{Reset} = %v, want 1", got)
	}

	var fib dto.Metric
	if err := m.FIBResets.Write(&fib); err != nil {
		t.Fatalf("Write() error: %s", err)
	}
	if fib.GetCounter().GetValue() != 1 {
		t.Fatalf("FIBResets = %v, want 1", fib.GetCounter().GetValue())
	}
}

func TestMetrics_ObserveSetsVirtualTimeGauge(t *testing.T) {
	m := NewMetrics()
	m.observe(Snapshot{Now: kernel.VirtualTime(42)})

	var g dto.Metric
	if err := m.VirtualTime.Write(&g); err != nil {
		t.Fatalf("Write() error: %s", err)
	}
	if g.GetGauge().GetValue() != 42 {
		t.Fatalf("VirtualTime = %v, want 42", g.GetGauge().GetValue())
	}
}
