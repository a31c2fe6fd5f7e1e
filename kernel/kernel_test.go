package kernel

import (
	"testing"
)

func TestKernel_OrdersByTimestamp(t *testing.T) {
	k := New(nil)
	var order []string

	k.Spawn(Process{Label: "slow", Body: func(p *Proc) {
		p.Timeout(5)
		order = append(order, "slow")
	}})
	k.Spawn(Process{Label: "fast", Body: func(p *Proc) {
		p.Timeout(1)
		order = append(order, "fast")
	}})

	k.Run(10)

	want := []string{"fast", "slow"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestKernel_FIFOAtEqualTimestamp(t *testing.T) {
	k := New(nil)
	var order []int

	for i := 0; i < 5; i++ {
		i := i
		k.Spawn(Process{Label: "p", Body: func(p *Proc) {
			p.Timeout(3)
			order = append(order, i)
		}})
	}

	k.Run(10)

	for i, v := range order {
		if v != i {
			t.Fatalf("order = %v, want insertion order 0..4", order)
		}
	}
}

func TestKernel_RunStopsAtUntil(t *testing.T) {
	k := New(nil)
	ticks := 0
	k.Spawn(Process{Label: "ticker", Body: func(p *Proc) {
		for {
			p.Timeout(10)
			ticks++
		}
	}})

	k.Run(25)
	if ticks != 2 {
		t.Fatalf("ticks = %d, want 2", ticks)
	}
	if k.Now() != 25 {
		t.Fatalf("Now() = %v, want 25", k.Now())
	}

	k.Run(35)
	if ticks != 3 {
		t.Fatalf("ticks = %d, want 3", ticks)
	}
}

func TestKernel_ProcessFaultIsolated(t *testing.T) {
	k := New(nil)
	survived := false

	k.Spawn(Process{Label: "faulty", Body: func(p *Proc) {
		p.Timeout(1)
		panic("boom")
	}})
	k.Spawn(Process{Label: "healthy", Body: func(p *Proc) {
		p.Timeout(2)
		survived = true
	}})

	k.Run(5)

	if !survived {
		t.Fatal("healthy process did not complete after sibling fault")
	}
}

func TestChan_PutGetOrdering(t *testing.T) {
	k := New(nil)
	ch := NewChan[int](k)
	var got []int

	for i := 0; i < 3; i++ {
		k.Spawn(Process{Label: "getter", Body: func(p *Proc) {
			got = append(got, ch.Get(p))
		}})
	}
	k.Spawn(Process{Label: "putter", Body: func(p *Proc) {
		p.Timeout(1)
		ch.Put(10)
		ch.Put(20)
		ch.Put(30)
	}})

	k.Run(10)

	want := []int{10, 20, 30}
	if len(got) != len(want) {
		t.Fatalf("got = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got = %v, want %v (registration order)", got, want)
		}
	}
}

func TestChan_PutBeforeGetIsBuffered(t *testing.T) {
	k := New(nil)
	ch := NewChan[string](k)
	ch.Put("a")
	ch.Put("b")

	if ch.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", ch.Len())
	}

	var got string
	k.Spawn(Process{Label: "getter", Body: func(p *Proc) {
		got = ch.Get(p)
	}})
	k.Run(1)

	if got != "a" {
		t.Fatalf("got = %q, want %q", got, "a")
	}
}
