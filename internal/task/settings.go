package task

import (
	"fmt"
	"time"

	"audwm/internal/tones"
)

// Markers are one-byte hardware codes sent at stimulus and response events.
// A zero code is not sent.
type Markers struct {
	CueOnset     byte
	ChoiceOnset  byte
	ResponseOpen byte
	Response     byte
}

// Settings is the timing and presentation setup of a run.
type Settings struct {
	Participant string
	SessionSeed uint64

	// Tones carries sample rate, burst and sequence durations, ramp and
	// routing. Frequencies, coherence and seed come from each trial.
	Tones tones.Params
	// PanByCondition routes same-frequency trials to the left channel and
	// different-frequency trials to the right, overriding Tones.Routing.
	PanByCondition bool

	FlashPeriod          time.Duration
	FlashDuration        time.Duration
	PreStimFlashes       int
	InterSequenceFlashes int
	WMDelay              time.Duration

	MaxResponseTime time.Duration // 0 waits forever
	PollInterval    time.Duration
	MoveInterval    time.Duration
	NudgePixels     float64

	FeedbackDuration time.Duration
	ITICorrect       time.Duration
	ITIIncorrect     time.Duration

	Layout  Layout
	Markers Markers
}

// Validate rejects settings that cannot drive a trial.
func (s Settings) Validate() error {
	tp := s.Tones
	tp.Coherence, tp.BaseFrequency, tp.FrequencyRange = 1, 1000, 0
	if err := tp.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	durations := []struct {
		name string
		d    time.Duration
	}{
		{"flash_duration", s.FlashDuration},
		{"wm_delay", s.WMDelay},
		{"max_response_time", s.MaxResponseTime},
		{"move_interval", s.MoveInterval},
		{"feedback_duration", s.FeedbackDuration},
		{"iti_correct", s.ITICorrect},
		{"iti_incorrect", s.ITIIncorrect},
	}
	for _, d := range durations {
		if d.d < 0 {
			return fmt.Errorf("%w: %s must be >= 0, got %v", ErrConfiguration, d.name, d.d)
		}
	}
	switch {
	case s.PollInterval <= 0:
		return fmt.Errorf("%w: poll_interval must be > 0", ErrConfiguration)
	case s.PreStimFlashes < 0 || s.InterSequenceFlashes < 0:
		return fmt.Errorf("%w: flash counts must be >= 0", ErrConfiguration)
	case s.PreStimFlashes+s.InterSequenceFlashes > 0 && s.FlashDuration > s.FlashPeriod:
		return fmt.Errorf("%w: flash_duration %v exceeds flash period %v", ErrConfiguration, s.FlashDuration, s.FlashPeriod)
	case s.NudgePixels < 0:
		return fmt.Errorf("%w: nudge_pixels must be >= 0", ErrConfiguration)
	case s.Layout.Same.Overlaps(s.Layout.Diff):
		return fmt.Errorf("%w: same and diff targets overlap", ErrConfiguration)
	}
	return nil
}

// sequenceParams builds the cue and choice generator inputs for one trial.
func (s Settings) sequenceParams(p TrialParameters, seed uint64) (cue, choice tones.Params) {
	base := s.Tones
	base.Coherence = p.Coherence
	if s.PanByCondition {
		base.Routing = tones.RightOnly
		if CorrectResponse(p) == ResponseSame {
			base.Routing = tones.LeftOnly
		}
	}
	cue, choice = base, base
	cue.BaseFrequency, cue.FrequencyRange = p.CueFrequency, p.CueFrequencyRange
	cue.Seed = tones.Seed(seed)
	choice.BaseFrequency, choice.FrequencyRange = p.ChoiceFrequency, p.ChoiceFrequencyRange
	choice.Seed = tones.Seed(tones.SplitMix64(seed))
	return cue, choice
}
