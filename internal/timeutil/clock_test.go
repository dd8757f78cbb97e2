package timeutil

import (
	"testing"
	"time"
)

func TestRealClock_Since(t *testing.T) {
	clock := RealClock{}
	past := time.Now().Add(-time.Second)
	d := clock.Since(past)

	if d < time.Second {
		t.Errorf("Since() returned %v, expected >= 1s", d)
	}
}

func TestRealClock_Sleep(t *testing.T) {
	clock := RealClock{}
	start := clock.Now()
	clock.Sleep(5 * time.Millisecond)

	if d := clock.Since(start); d < 5*time.Millisecond {
		t.Errorf("Sleep returned after %v, expected >= 5ms", d)
	}
}

func TestMockClock_SleepAdvances(t *testing.T) {
	start := time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)
	clock := NewMockClock(start)

	clock.Sleep(10 * time.Millisecond)
	clock.Sleep(0)
	clock.Sleep(250 * time.Millisecond)

	if got := clock.Since(start); got != 260*time.Millisecond {
		t.Errorf("Since() = %v, want 260ms", got)
	}
	sleeps := clock.Sleeps()
	if len(sleeps) != 3 || sleeps[2] != 250*time.Millisecond {
		t.Errorf("Sleeps() = %v", sleeps)
	}
}

func TestMockClock_Advance(t *testing.T) {
	clock := NewMockClock(time.Time{})
	clock.Advance(time.Hour)

	if got := clock.Now(); !got.Equal(time.Time{}.Add(time.Hour)) {
		t.Errorf("got %v, want one hour past zero", got)
	}
	if len(clock.Sleeps()) != 0 {
		t.Error("Advance must not record sleeps")
	}
}
