package clock

import (
	"testing"
	"time"
)

func TestFakeClock_AdvanceSetSleep(t *testing.T) {
	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	c := Fake(start)

	if !c.Now().Equal(start) {
		t.Fatalf("Now()=%v, want %v", c.Now(), start)
	}

	c.Advance(90 * time.Second)
	if got := c.Now().Sub(start); got != 90*time.Second {
		t.Fatalf("after Advance elapsed=%v", got)
	}

	c.Sleep(10 * time.Millisecond)
	c.Sleep(0)
	if got := c.Sleeps(); len(got) != 2 || got[0] != 10*time.Millisecond || got[1] != 0 {
		t.Fatalf("unexpected sleeps: %v", got)
	}

	later := start.Add(24 * time.Hour)
	c.Set(later)
	if !c.Now().Equal(later) {
		t.Fatalf("after Set Now()=%v, want %v", c.Now(), later)
	}
}
