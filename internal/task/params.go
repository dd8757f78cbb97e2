package task

import (
	"errors"
	"fmt"
	"math"
)

// Error kinds surfaced by the task layer.
var (
	// ErrConfiguration marks setup errors that abort the run before any trial.
	ErrConfiguration = errors.New("configuration error")
	// ErrAborted is returned when the participant or operator cancels the run.
	ErrAborted = errors.New("run aborted")
)

// Response is the participant's classified answer.
type Response string

const (
	ResponseSame Response = "same"
	ResponseDiff Response = "diff"
	ResponseNA   Response = "NA"
)

// TrialParameters is one row of the stimulus table.
type TrialParameters struct {
	CueFrequency         float64
	CueFrequencyRange    float64
	ChoiceFrequency      float64
	ChoiceFrequencyRange float64
	Coherence            float64
}

// Validate checks every field against its domain.
func (p TrialParameters) Validate() error {
	checks := []struct {
		name string
		v    float64
		ok   bool
	}{
		{"cue_frequency", p.CueFrequency, p.CueFrequency > 0},
		{"cue_frequency_range", p.CueFrequencyRange, p.CueFrequencyRange >= 0},
		{"choice_frequency", p.ChoiceFrequency, p.ChoiceFrequency > 0},
		{"choice_frequency_range", p.ChoiceFrequencyRange, p.ChoiceFrequencyRange >= 0},
		{"coherence", p.Coherence, p.Coherence >= 0 && p.Coherence <= 1},
	}
	for _, c := range checks {
		if math.IsNaN(c.v) || math.IsInf(c.v, 0) || !c.ok {
			return fmt.Errorf("%w: %s = %v out of range", ErrConfiguration, c.name, c.v)
		}
	}
	return nil
}

// CorrectResponse is "same" iff the cue and choice frequencies are exactly
// equal as parsed from the table, otherwise "diff".
func CorrectResponse(p TrialParameters) Response {
	if p.CueFrequency == p.ChoiceFrequency {
		return ResponseSame
	}
	return ResponseDiff
}

// Score reports whether resp matches correct. NA never scores.
func Score(resp, correct Response) bool {
	if resp == ResponseNA {
		return false
	}
	return resp == correct
}
