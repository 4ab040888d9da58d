package mqtt

import (
	"testing"
)

func msg(i int) outgoing {
	return outgoing{topic: "flower/status", payload: []byte{byte(i)}}
}

func TestOutboxEmptyDrain(t *testing.T) {
	o := newOutbox(4)
	got, dropped := o.drain()
	if got != nil || dropped != 0 {
		t.Errorf("expected empty drain, got %d items, %d dropped", len(got), dropped)
	}
}

func TestOutboxKeepsOrder(t *testing.T) {
	o := newOutbox(10)
	for i := 0; i < 5; i++ {
		if o.push(msg(i)) {
			t.Fatalf("push %d reported overwrite", i)
		}
	}
	if o.len() != 5 {
		t.Fatalf("expected 5 queued, got %d", o.len())
	}

	got, _ := o.drain()
	for i, m := range got {
		if m.payload[0] != byte(i) {
			t.Errorf("item %d: expected payload %d, got %d", i, i, m.payload[0])
		}
	}
	if o.len() != 0 {
		t.Errorf("expected empty after drain, got %d", o.len())
	}
}

func TestOutboxOverwritesOldest(t *testing.T) {
	o := newOutbox(5)
	overwrites := 0
	for i := 0; i < 8; i++ {
		if o.push(msg(i)) {
			overwrites++
		}
	}
	if overwrites != 3 {
		t.Errorf("expected 3 overwrites, got %d", overwrites)
	}

	got, dropped := o.drain()
	if dropped != 3 {
		t.Errorf("expected 3 dropped, got %d", dropped)
	}
	if len(got) != 5 {
		t.Fatalf("expected 5 items, got %d", len(got))
	}
	for i, m := range got {
		if want := byte(i + 3); m.payload[0] != want {
			t.Errorf("item %d: expected payload %d, got %d", i, want, m.payload[0])
		}
	}
}

func TestOutboxReusableAfterDrain(t *testing.T) {
	o := newOutbox(3)
	for cycle := 0; cycle < 3; cycle++ {
		for i := 0; i < 4; i++ {
			o.push(msg(cycle*10 + i))
		}
		got, dropped := o.drain()
		if len(got) != 3 || dropped != 1 {
			t.Fatalf("cycle %d: got %d items, %d dropped", cycle, len(got), dropped)
		}
		if got[0].payload[0] != byte(cycle*10+1) {
			t.Errorf("cycle %d: oldest kept should be %d, got %d", cycle, cycle*10+1, got[0].payload[0])
		}
	}
}

func TestOutboxMinimumCapacity(t *testing.T) {
	o := newOutbox(0)
	o.push(msg(1))
	if !o.push(msg(2)) {
		t.Error("second push into capacity 1 should overwrite")
	}
	got, _ := o.drain()
	if len(got) != 1 || got[0].payload[0] != 2 {
		t.Errorf("expected only the latest message, got %v", got)
	}
}
