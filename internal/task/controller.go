// Package task runs the auditory working-memory trial loop: cue and choice
// tone sequences, a bounded response window, feedback and per-trial records.
//
// Everything runs on the calling goroutine. Waits are blocking sleeps on the
// injected clock and the response window is polled at a fixed cadence, so the
// whole loop can be driven deterministically in tests with a mock clock.
package task

import (
	"context"
	"errors"
	"fmt"
	"time"

	"audwm/internal/monitoring"
	"audwm/internal/timeutil"
	"audwm/internal/tones"
)

// Display is the drawing and pointer surface.
type Display interface {
	// Present draws f and flips it to the screen.
	Present(f Frame) error
	Pointer() Point
	SetPointer(p Point)
	// AbortRequested reports a pending cancel (abort key or closed window).
	AbortRequested() bool
}

// AudioOutput starts playback and returns immediately.
type AudioOutput interface {
	Play(seq *tones.Sequence) error
}

// Hardware is the optional reward/trigger channel. Failures are logged and
// never stop the run.
type Hardware interface {
	Mark(code byte) error
	Reward() error
}

type noHardware struct{}

func (noHardware) Mark(byte) error { return nil }
func (noHardware) Reward() error   { return nil }

// Deps are the collaborators of a Controller. Hardware and Clock are optional.
type Deps struct {
	Display  Display
	Audio    AudioOutput
	Hardware Hardware
	Sink     Sink
	Clock    timeutil.Clock
}

// Controller sequences trials and owns the growing record log.
type Controller struct {
	cfg     Settings
	display Display
	audio   AudioOutput
	hw      Hardware
	sink    Sink
	clock   timeutil.Clock
	bus     *EventBus

	start   time.Time
	records []Record
}

// NewController validates cfg and wires the collaborators. The session clock
// starts here; response onsets are reported relative to it.
func NewController(cfg Settings, d Deps) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if d.Display == nil || d.Audio == nil || d.Sink == nil {
		return nil, fmt.Errorf("%w: display, audio and sink are required", ErrConfiguration)
	}
	if d.Hardware == nil {
		d.Hardware = noHardware{}
	}
	if d.Clock == nil {
		d.Clock = timeutil.RealClock{}
	}
	return &Controller{
		cfg:     cfg,
		display: d.Display,
		audio:   d.Audio,
		hw:      d.Hardware,
		sink:    d.Sink,
		clock:   d.Clock,
		bus:     NewEventBus(),
		start:   d.Clock.Now(),
	}, nil
}

// Events returns the transition bus.
func (c *Controller) Events() *EventBus { return c.bus }

// Records returns a copy of the completed records.
func (c *Controller) Records() []Record {
	out := make([]Record, len(c.records))
	copy(out, c.records)
	return out
}

// Run executes trials in order. Every completed trial is persisted before
// the inter-trial interval starts. On abort all completed records are saved and ErrAborted is
// returned; any other failure saves what exists and is returned wrapped.
func (c *Controller) Run(ctx context.Context, trials []Trial) error {
	defer func() {
		if r := recover(); r != nil {
			_ = c.persist()
			panic(r)
		}
	}()

	for _, t := range trials {
		if c.abortRequested(ctx) {
			return c.abort()
		}
		rec, err := c.runTrial(ctx, t)
		if errors.Is(err, ErrAborted) {
			return c.abort()
		}
		if err != nil {
			if perr := c.persist(); perr != nil {
				monitoring.Logf("save after failed trial %d: %v", t.Number, perr)
			}
			return fmt.Errorf("trial %d: %w", t.Number, err)
		}
		c.records = append(c.records, rec)
		if err := c.persist(); err != nil {
			monitoring.Logf("save after trial %d: %v", t.Number, err)
		}
		if err := c.wait(ctx, c.interTrial(rec.Correct)); err != nil {
			return c.abort()
		}
	}
	return c.persist()
}

func (c *Controller) abort() error {
	monitoring.Logf("run aborted after %d trial(s)", len(c.records))
	if err := c.persist(); err != nil {
		return errors.Join(ErrAborted, err)
	}
	return ErrAborted
}

func (c *Controller) persist() error {
	return c.sink.Save(c.Records())
}

// trialRun tracks the state of one trial.
type trialRun struct {
	c     *Controller
	num   int
	state State
}

func (r *trialRun) fire(ev Event) error {
	next, err := Transition(r.state, ev)
	if err != nil {
		return err
	}
	r.c.bus.Emit(TransitionEvent{
		Trial: r.num,
		From:  r.state,
		To:    next,
		Cause: ev,
		At:    r.c.clock.Since(r.c.start),
	})
	r.state = next
	return nil
}

// check converts a phase error into the trial result. Aborts move the
// trial to ABORTING before propagating.
func (r *trialRun) check(err error) error {
	if errors.Is(err, ErrAborted) {
		if ferr := r.fire(EventAbort); ferr != nil {
			return ferr
		}
	}
	return err
}

func (c *Controller) runTrial(ctx context.Context, t Trial) (Record, error) {
	seed := TrialSeed(c.cfg.SessionSeed, t.Number)
	cueParams, choiceParams := c.cfg.sequenceParams(t.Params, seed)
	cue, err := tones.Generate(cueParams)
	if err != nil {
		return Record{}, fmt.Errorf("cue sequence: %w", err)
	}
	choice, err := tones.Generate(choiceParams)
	if err != nil {
		return Record{}, fmt.Errorf("choice sequence: %w", err)
	}

	run := &trialRun{c: c, num: t.Number, state: StatePending}
	c.display.SetPointer(c.cfg.Layout.Park)
	if err := run.fire(EventPhaseDone); err != nil {
		return Record{}, err
	}

	// PRESENTING_CUE
	if err := c.flashTrain(ctx, c.cfg.PreStimFlashes); err != nil {
		return Record{}, run.check(err)
	}
	if err := c.play(ctx, cue, c.cfg.Markers.CueOnset); err != nil {
		return Record{}, run.check(err)
	}
	if err := run.fire(EventPhaseDone); err != nil {
		return Record{}, err
	}

	// INTER_STIMULUS_DELAY
	if err := c.flashTrain(ctx, c.cfg.InterSequenceFlashes); err != nil {
		return Record{}, run.check(err)
	}
	if err := c.wait(ctx, c.cfg.WMDelay); err != nil {
		return Record{}, run.check(err)
	}
	if err := run.fire(EventPhaseDone); err != nil {
		return Record{}, err
	}

	// PRESENTING_CHOICE
	if err := c.play(ctx, choice, c.cfg.Markers.ChoiceOnset); err != nil {
		return Record{}, run.check(err)
	}
	if err := run.fire(EventPhaseDone); err != nil {
		return Record{}, err
	}

	// AWAITING_RESPONSE
	out, onset, err := c.awaitResponse(ctx)
	if err != nil {
		return Record{}, err
	}
	if out.Event == EventAbort {
		return Record{}, run.check(ErrAborted)
	}
	if err := run.fire(out.Event); err != nil {
		return Record{}, err
	}

	if out.Event == EventTimeout {
		// TIMED_OUT
		if err := c.idleGate(ctx, seed); err != nil {
			return Record{}, run.check(err)
		}
		if err := run.fire(EventGateCleared); err != nil {
			return Record{}, err
		}
	} else {
		c.mark(c.cfg.Markers.Response)
		if err := run.fire(EventPhaseDone); err != nil {
			return Record{}, err
		}
	}

	// FEEDBACK
	correct := Score(out.Response, CorrectResponse(t.Params))
	if err := c.feedback(ctx, correct); err != nil {
		return Record{}, run.check(err)
	}
	if err := run.fire(EventPhaseDone); err != nil {
		return Record{}, err
	}

	return Record{
		TrialNumber:         t.Number,
		Participant:         c.cfg.Participant,
		Response:            out.Response,
		ResponsePeriodOnset: onset.Seconds(),
		RT:                  out.Latency.Seconds(),
		Seed:                seed,
		Params:              t.Params,
		Correct:             correct,
	}, nil
}

func (c *Controller) abortRequested(ctx context.Context) bool {
	return ctx.Err() != nil || c.display.AbortRequested()
}

// wait sleeps for d and then checks for a pending abort. A cancel arriving
// mid-sleep is only seen once the sleep returns.
func (c *Controller) wait(ctx context.Context, d time.Duration) error {
	if d > 0 {
		c.clock.Sleep(d)
	}
	if c.abortRequested(ctx) {
		return ErrAborted
	}
	return nil
}

func (c *Controller) mark(code byte) {
	if code == 0 {
		return
	}
	if err := c.hw.Mark(code); err != nil {
		monitoring.Logf("trigger %d: %v", code, err)
	}
}

// flashTrain shows n flashes at the configured rate.
func (c *Controller) flashTrain(ctx context.Context, n int) error {
	flash := c.cfg.Layout.Flash
	for i := 0; i < n; i++ {
		if err := c.display.Present(Frame{Flash: &flash}); err != nil {
			return err
		}
		if err := c.wait(ctx, c.cfg.FlashDuration); err != nil {
			return err
		}
		if err := c.display.Present(Frame{}); err != nil {
			return err
		}
		if err := c.wait(ctx, c.cfg.FlashPeriod-c.cfg.FlashDuration); err != nil {
			return err
		}
	}
	return nil
}

// play starts seq and waits for its computed duration.
func (c *Controller) play(ctx context.Context, seq *tones.Sequence, marker byte) error {
	if err := c.audio.Play(seq); err != nil {
		return fmt.Errorf("play sequence: %w", err)
	}
	c.mark(marker)
	return c.wait(ctx, seq.Duration())
}

func (c *Controller) tick(ctx context.Context) Tick {
	return Tick{
		Now:     c.clock.Now(),
		Pointer: c.display.Pointer(),
		Abort:   c.abortRequested(ctx),
	}
}

// awaitResponse shows the targets and polls until a region is entered, the
// window times out or an abort is seen. onset is relative to session start.
func (c *Controller) awaitResponse(ctx context.Context) (Outcome, time.Duration, error) {
	l := c.cfg.Layout
	err := c.display.Present(Frame{Targets: []Target{
		{Kind: TargetSame, Region: l.Same},
		{Kind: TargetDiff, Region: l.Diff},
	}})
	if err != nil {
		return Outcome{}, 0, err
	}
	w := NewResponseWindow(l.Same, l.Diff, c.cfg.MaxResponseTime, c.clock.Now())
	onset := w.Opened().Sub(c.start)
	c.mark(c.cfg.Markers.ResponseOpen)
	for {
		if out, done := w.Step(c.tick(ctx)); done {
			return out, onset, nil
		}
		c.clock.Sleep(c.cfg.PollInterval)
	}
}

// idleGate shows the neutral target until the participant hovers it.
func (c *Controller) idleGate(ctx context.Context, seed uint64) error {
	l := c.cfg.Layout
	err := c.display.Present(Frame{Targets: []Target{{Kind: TargetNeutral, Region: l.Neutral}}})
	if err != nil {
		return err
	}
	g := NewIdleGate(l.Neutral, c.cfg.MoveInterval, c.cfg.NudgePixels, seed, c.clock.Now())
	for {
		res := g.Step(c.tick(ctx))
		if res.Done {
			if res.Event == EventAbort {
				return ErrAborted
			}
			return nil
		}
		if res.Nudge {
			c.display.SetPointer(res.To)
		}
		c.clock.Sleep(c.cfg.PollInterval)
	}
}

// feedback shows the verdict and rewards a correct answer.
func (c *Controller) feedback(ctx context.Context, correct bool) error {
	text := "Incorrect"
	if correct {
		text = "Correct"
	}
	if err := c.display.Present(Frame{Text: text, TextAt: c.cfg.Layout.Feedback}); err != nil {
		return err
	}
	if err := c.wait(ctx, c.cfg.FeedbackDuration); err != nil {
		return err
	}
	if err := c.display.Present(Frame{}); err != nil {
		return err
	}
	if correct {
		if err := c.hw.Reward(); err != nil {
			monitoring.Logf("reward: %v", err)
		}
	}
	return nil
}

// interTrial is the pause after a trial has been logged.
func (c *Controller) interTrial(correct bool) time.Duration {
	if correct {
		return c.cfg.ITICorrect
	}
	return c.cfg.ITIIncorrect
}
