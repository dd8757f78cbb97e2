package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"audwm/internal/tones"
)

func TestSettings_Validate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, testSettings().Validate())

	noFlashes := testSettings()
	noFlashes.PreStimFlashes, noFlashes.InterSequenceFlashes = 0, 0
	noFlashes.FlashPeriod, noFlashes.FlashDuration = 0, 0
	assert.NoError(t, noFlashes.Validate())

	tests := map[string]func(s *Settings){
		"tone longer than sequence": func(s *Settings) { s.Tones.ToneDuration = time.Second },
		"zero sample rate":          func(s *Settings) { s.Tones.SampleRate = 0 },
		"silent routing":            func(s *Settings) { s.Tones.Routing = tones.Routing{} },
		"negative wm delay":         func(s *Settings) { s.WMDelay = -time.Millisecond },
		"negative iti":              func(s *Settings) { s.ITIIncorrect = -time.Second },
		"zero poll":                 func(s *Settings) { s.PollInterval = 0 },
		"negative flash count":      func(s *Settings) { s.PreStimFlashes = -1 },
		"flash longer than period":  func(s *Settings) { s.FlashDuration = time.Second },
		"negative nudge":            func(s *Settings) { s.NudgePixels = -1 },
		"overlapping targets":       func(s *Settings) { s.Layout.Diff = s.Layout.Same },
	}
	for name, mut := range tests {
		t.Run(name, func(t *testing.T) {
			s := testSettings()
			mut(&s)
			assert.ErrorIs(t, s.Validate(), ErrConfiguration)
		})
	}
}

func TestSettings_SequenceParams(t *testing.T) {
	t.Parallel()

	s := testSettings()
	cue, choice := s.sequenceParams(diffRow, 77)

	assert.Equal(t, 1000.0, cue.BaseFrequency)
	assert.Equal(t, 1500.0, choice.BaseFrequency)
	assert.Equal(t, 0.5, cue.Coherence)
	assert.Equal(t, 0.5, choice.Coherence)
	assert.Equal(t, uint64(77), *cue.Seed)
	assert.Equal(t, tones.SplitMix64(77), *choice.Seed)
	assert.Equal(t, tones.Mono, cue.Routing)

	s.PanByCondition = true
	cue, _ = s.sequenceParams(sameRow, 77)
	assert.Equal(t, tones.LeftOnly, cue.Routing)
	cue, _ = s.sequenceParams(diffRow, 77)
	assert.Equal(t, tones.RightOnly, cue.Routing)
}
