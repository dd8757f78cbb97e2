package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRect(t *testing.T) {
	t.Parallel()

	r := Rect{X: -300, Width: 200, Height: 200}
	assert.True(t, r.Contains(Point{X: -300}))
	assert.True(t, r.Contains(Point{X: -200, Y: 100}), "edges are inside")
	assert.False(t, r.Contains(Point{X: -199.9}))
	assert.False(t, r.Contains(Point{X: -300, Y: -100.5}))

	l := DefaultLayout(800, 600)
	assert.False(t, l.Same.Overlaps(l.Diff))
	assert.True(t, l.Flash.Overlaps(l.Neutral))
	assert.False(t, l.Same.Contains(l.Park))
	assert.False(t, l.Diff.Contains(l.Park))
	assert.False(t, l.Neutral.Contains(l.Park))
}

func TestResponseWindow(t *testing.T) {
	t.Parallel()

	l := DefaultLayout(800, 600)
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	at := func(d time.Duration, p Point) Tick { return Tick{Now: t0.Add(d), Pointer: p} }
	outside := Point{X: 0, Y: 250}

	tests := []struct {
		name    string
		maxWait time.Duration
		tick    Tick
		done    bool
		want    Outcome
	}{
		{"nothing yet", 10 * time.Second, at(time.Second, outside), false, Outcome{}},
		{"same", 10 * time.Second, at(400*time.Millisecond, Point{X: -300}), true,
			Outcome{Event: EventHit, Response: ResponseSame, Latency: 400 * time.Millisecond}},
		{"diff edge", 10 * time.Second, at(2*time.Second, Point{X: 200, Y: -100}), true,
			Outcome{Event: EventHit, Response: ResponseDiff, Latency: 2 * time.Second}},
		{"exactly at limit", 10 * time.Second, at(10*time.Second, outside), false, Outcome{}},
		{"timeout", 10 * time.Second, at(10*time.Second+time.Millisecond, outside), true,
			Outcome{Event: EventTimeout, Response: ResponseNA, Latency: 10 * time.Second}},
		{"hit on the timeout tick wins", 10 * time.Second, at(11*time.Second, Point{X: 300}), true,
			Outcome{Event: EventHit, Response: ResponseDiff, Latency: 11 * time.Second}},
		{"no limit", 0, at(time.Hour, outside), false, Outcome{}},
		{"abort", 10 * time.Second, Tick{Now: t0.Add(time.Second), Pointer: outside, Abort: true}, true,
			Outcome{Event: EventAbort, Response: ResponseNA, Latency: time.Second}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewResponseWindow(l.Same, l.Diff, tt.maxWait, t0)
			got, done := w.Step(tt.tick)
			assert.Equal(t, tt.done, done)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIdleGate(t *testing.T) {
	t.Parallel()

	l := DefaultLayout(800, 600)
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	g := NewIdleGate(l.Neutral, 2*time.Minute, 10, 7, t0)
	p := l.Park

	assert.Equal(t, GateResult{}, g.Step(Tick{Now: t0.Add(time.Minute), Pointer: p}))
	assert.Equal(t, GateResult{}, g.Step(Tick{Now: t0.Add(2 * time.Minute), Pointer: p}))

	res := g.Step(Tick{Now: t0.Add(2*time.Minute + time.Second), Pointer: p})
	require.True(t, res.Nudge)
	assert.False(t, res.Done)
	assert.InDelta(t, p.X, res.To.X, 10)
	assert.InDelta(t, p.Y, res.To.Y, 10)

	// interval restarts from the nudge
	assert.False(t, g.Step(Tick{Now: t0.Add(3 * time.Minute), Pointer: res.To}).Nudge)

	assert.Equal(t, GateResult{Done: true, Event: EventGateCleared}, g.Step(Tick{Now: t0.Add(4 * time.Minute), Pointer: Point{X: 50}}))
	assert.Equal(t, GateResult{Done: true, Event: EventAbort}, g.Step(Tick{Now: t0, Pointer: p, Abort: true}))
}

func TestIdleGate_NoNudgeWhenDisabled(t *testing.T) {
	t.Parallel()

	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	g := NewIdleGate(Rect{Width: 10, Height: 10}, 0, 10, 1, t0)
	assert.False(t, g.Step(Tick{Now: t0.Add(24 * time.Hour), Pointer: Point{X: 500}}).Nudge)
}
