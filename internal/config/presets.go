package config

import (
	"time"

	"audwm/internal/hw"
	"audwm/internal/task"
	"audwm/internal/tones"
)

// Variant names.
const (
	VariantShell     = "shell"
	VariantNewTiming = "new_timing"
	VariantWMDelay   = "wm_delay"
)

// DefaultVariant is used when neither flags nor file name one.
const DefaultVariant = VariantNewTiming

var presets = map[string]func() Config{
	VariantShell:     shellPreset,
	VariantNewTiming: newTimingPreset,
	VariantWMDelay:   wmDelayPreset,
}

func base() Config {
	return Config{
		SampleRate:       tones.DefaultSampleRate,
		ToneDuration:     Duration(tones.DefaultToneDuration),
		SequenceDuration: Duration(tones.DefaultSequenceDuration),
		Ramp:             Duration(5 * time.Millisecond),
		Stereo:           Stereo{Mode: StereoMix},
		PollInterval:     Duration(10 * time.Millisecond),
		MoveInterval:     Duration(120 * time.Second),
		NudgePixels:      10,
		Method:           string(task.MethodRandom),
		Window:           Window{Width: 1280, Height: 800},
		Layout:           Layout{BoxSize: 200, SameX: -300, DiffX: 300, FeedbackY: -300},
		Serial:           Serial{PortOptions: hw.PortOptions{BaudRate: hw.DefaultBaudRate}},
	}
}

// shellPreset flashes around both sequences and waits indefinitely for an
// answer.
func shellPreset() Config {
	c := base()
	c.FlashRate = 1.6
	c.FlashDuration = Duration(100 * time.Millisecond)
	c.PreStimFlashes = 3
	c.InterSequenceFlashes = 5
	c.FeedbackDuration = Duration(1500 * time.Millisecond)
	c.NReps = 1
	return c
}

// newTimingPreset is the rig setup with a timeout, idle gate and reward pump.
func newTimingPreset() Config {
	c := base()
	c.WMDelay = Duration(300 * time.Millisecond)
	c.MaxResponseTime = Duration(10 * time.Second)
	c.FeedbackDuration = Duration(10 * time.Millisecond)
	c.ITICorrect = Duration(time.Second)
	c.ITIIncorrect = Duration(6 * time.Second)
	c.NReps = 400
	c.Serial.RewardPayload = "r4"
	return c
}

// wmDelayPreset hard-pans the tones by condition with a one second delay.
func wmDelayPreset() Config {
	c := base()
	c.Stereo = Stereo{Mode: StereoByCondition}
	c.WMDelay = Duration(time.Second)
	c.FeedbackDuration = Duration(10 * time.Millisecond)
	c.ITICorrect = Duration(time.Second)
	c.ITIIncorrect = Duration(5 * time.Second)
	c.NReps = 100
	return c
}
