package task

import (
	"math/rand/v2"
	"time"
)

// Tick is one poll sample of the input devices.
type Tick struct {
	Now     time.Time
	Pointer Point
	Abort   bool
}

// Outcome is the terminal result of a response window.
type Outcome struct {
	Event    Event // EventHit, EventTimeout or EventAbort
	Response Response
	Latency  time.Duration
}

// ResponseWindow classifies pointer samples into a response. It holds no
// timing of its own: callers feed it ticks at whatever cadence they poll.
type ResponseWindow struct {
	same, diff Rect
	maxWait    time.Duration
	opened     time.Time
}

// NewResponseWindow opens a window at opened. maxWait <= 0 waits forever.
func NewResponseWindow(same, diff Rect, maxWait time.Duration, opened time.Time) *ResponseWindow {
	return &ResponseWindow{same: same, diff: diff, maxWait: maxWait, opened: opened}
}

// Opened returns the window onset.
func (w *ResponseWindow) Opened() time.Time { return w.opened }

// Step evaluates one tick. Containment is tested before abort and timeout,
// so a response registered on the last tick still counts.
func (w *ResponseWindow) Step(t Tick) (Outcome, bool) {
	elapsed := t.Now.Sub(w.opened)
	switch {
	case w.same.Contains(t.Pointer):
		return Outcome{Event: EventHit, Response: ResponseSame, Latency: elapsed}, true
	case w.diff.Contains(t.Pointer):
		return Outcome{Event: EventHit, Response: ResponseDiff, Latency: elapsed}, true
	case t.Abort:
		return Outcome{Event: EventAbort, Response: ResponseNA, Latency: elapsed}, true
	case w.maxWait > 0 && elapsed > w.maxWait:
		return Outcome{Event: EventTimeout, Response: ResponseNA, Latency: w.maxWait}, true
	}
	return Outcome{}, false
}

// GateResult is the verdict of one idle-gate tick.
type GateResult struct {
	Done  bool
	Event Event // EventGateCleared or EventAbort when Done
	Nudge bool  // move the pointer to To
	To    Point
}

// IdleGate holds the run after a timed-out trial until the participant
// hovers the neutral target. While waiting it nudges the pointer every
// interval so the input device does not fall asleep.
type IdleGate struct {
	target   Rect
	interval time.Duration
	nudge    float64
	rng      *rand.Rand
	lastMove time.Time
}

// NewIdleGate starts a gate at now. interval <= 0 disables nudging.
func NewIdleGate(target Rect, interval time.Duration, nudge float64, seed uint64, now time.Time) *IdleGate {
	return &IdleGate{
		target:   target,
		interval: interval,
		nudge:    nudge,
		rng:      rand.New(rand.NewPCG(seed, ^seed)),
		lastMove: now,
	}
}

// Step evaluates one tick.
func (g *IdleGate) Step(t Tick) GateResult {
	if g.target.Contains(t.Pointer) {
		return GateResult{Done: true, Event: EventGateCleared}
	}
	if t.Abort {
		return GateResult{Done: true, Event: EventAbort}
	}
	if g.interval > 0 && t.Now.Sub(g.lastMove) > g.interval {
		g.lastMove = t.Now
		return GateResult{
			Nudge: true,
			To: Point{
				X: t.Pointer.X + g.offset(),
				Y: t.Pointer.Y + g.offset(),
			},
		}
	}
	return GateResult{}
}

func (g *IdleGate) offset() float64 {
	return (g.rng.Float64()*2 - 1) * g.nudge
}
