package clock

import (
	"testing"
	"time"
)

func TestDeadlineUnsetByDefault(t *testing.T) {
	var d Deadline
	if d.Armed() {
		t.Error("zero deadline should be unset")
	}
	if d.Due(1_000_000) {
		t.Error("unset deadline should never be due")
	}
}

func TestDeadlineDueStrictlyAfter(t *testing.T) {
	var d Deadline
	d.Arm(1000, 500)

	if d.At() != 1500 {
		t.Fatalf("At: got %d, want 1500", d.At())
	}
	if d.Due(1500) {
		t.Error("deadline should not be due at exactly its timestamp")
	}
	if !d.Due(1501) {
		t.Error("deadline should be due 1ms after its timestamp")
	}
	if got := d.Remaining(1200); got != 300 {
		t.Errorf("Remaining: got %d, want 300", got)
	}
}

func TestDeadlineDisarm(t *testing.T) {
	var d Deadline
	d.Arm(10, 10)
	d.Disarm()
	if d.Armed() || d.Due(100) {
		t.Error("disarmed deadline should be unset")
	}
	if d.Remaining(0) != 0 {
		t.Error("disarmed deadline should have no remaining time")
	}
}

func TestFakeClock(t *testing.T) {
	c := NewFake(100)
	if c.Now() != 100 {
		t.Fatalf("Now: got %d, want 100", c.Now())
	}
	if got := c.Advance(50); got != 150 {
		t.Errorf("Advance: got %d, want 150", got)
	}
	c.Set(7)
	if c.Now() != 7 {
		t.Errorf("Set: got %d, want 7", c.Now())
	}
}

func TestMonotonicNeverZero(t *testing.T) {
	c := NewMonotonic()
	if c.Now() < 1 {
		t.Errorf("monotonic clock returned sentinel value %d", c.Now())
	}
}

func TestDurationConversion(t *testing.T) {
	if Duration(2500*time.Millisecond) != 2500 {
		t.Error("Duration conversion mismatch")
	}
	if Millis(75).Std() != 75*time.Millisecond {
		t.Error("Std conversion mismatch")
	}
}
