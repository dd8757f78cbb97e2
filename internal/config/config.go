// Package config loads run configuration: a named task variant preset,
// optionally overlaid with a JSON file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"audwm/internal/hw"
	"audwm/internal/task"
	"audwm/internal/tones"
)

// Duration is a time.Duration read from a Go duration string ("300ms").
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string like \"300ms\": %w", err)
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Stereo routing modes.
const (
	StereoMono        = "mono"
	StereoMix         = "mix"
	StereoByCondition = "by_condition" // left when same, right when diff
	StereoCustom      = "custom"       // left_amp / right_amp
)

type Stereo struct {
	Mode     string  `json:"mode"`
	LeftAmp  float64 `json:"left_amp"`
	RightAmp float64 `json:"right_amp"`
}

type Window struct {
	Width      int  `json:"width"`
	Height     int  `json:"height"`
	Fullscreen bool `json:"fullscreen"`
}

// Layout places the boxes in centre-origin pixels.
type Layout struct {
	BoxSize   float64 `json:"box_size"`
	SameX     float64 `json:"same_x"`
	DiffX     float64 `json:"diff_x"`
	FeedbackY float64 `json:"feedback_y"`
}

type Markers struct {
	CueOnset     byte `json:"cue_onset"`
	ChoiceOnset  byte `json:"choice_onset"`
	ResponseOpen byte `json:"response_open"`
	Response     byte `json:"response"`
}

// Serial configures the reward and trigger line. An empty Port disables it.
type Serial struct {
	Port string `json:"port"`
	hw.PortOptions
	RewardPayload string  `json:"reward_payload"`
	Markers       Markers `json:"markers"`
}

// Config is the full run configuration.
type Config struct {
	Variant string `json:"variant"`

	SampleRate       int      `json:"sample_rate"`
	ToneDuration     Duration `json:"tone_duration"`
	SequenceDuration Duration `json:"sequence_duration"`
	Ramp             Duration `json:"ramp"`
	Stereo           Stereo   `json:"stereo"`

	FlashRate            float64  `json:"flash_rate"` // Hz
	FlashDuration        Duration `json:"flash_duration"`
	PreStimFlashes       int      `json:"pre_stim_flashes"`
	InterSequenceFlashes int      `json:"inter_sequence_flashes"`
	WMDelay              Duration `json:"wm_delay"`

	MaxResponseTime Duration `json:"max_response_time"` // 0 waits forever
	PollInterval    Duration `json:"poll_interval"`
	MoveInterval    Duration `json:"move_interval"`
	NudgePixels     float64  `json:"nudge_pixels"`

	FeedbackDuration Duration `json:"feedback_duration"`
	ITICorrect       Duration `json:"iti_correct"`
	ITIIncorrect     Duration `json:"iti_incorrect"`

	NReps  int    `json:"n_reps"`
	Method string `json:"method"`

	Window Window `json:"window"`
	Layout Layout `json:"layout"`
	Serial Serial `json:"serial"`
}

// Variants lists the preset names.
func Variants() []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Preset returns a copy of the named variant.
func Preset(variant string) (*Config, error) {
	build, ok := presets[variant]
	if !ok {
		return nil, fmt.Errorf("%w: unknown variant %q (have %s)",
			task.ErrConfiguration, variant, strings.Join(Variants(), ", "))
	}
	cfg := build()
	cfg.Variant = variant
	return &cfg, nil
}

// Load reads the JSON file at path over a preset. The preset is the file's
// "variant" field if set, else fallback. Fields omitted from the file keep
// their preset values.
func Load(path, fallback string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("%w: config file must have .json extension, got %q", task.ErrConfiguration, ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to stat config file: %v", task.ErrConfiguration, err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("%w: config file too large: %d bytes (max %d)", task.ErrConfiguration, fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read config file: %v", task.ErrConfiguration, err)
	}
	return Parse(data, fallback)
}

// Parse is Load on an in-memory document.
func Parse(data []byte, fallback string) (*Config, error) {
	var head struct {
		Variant string `json:"variant"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config JSON: %v", task.ErrConfiguration, err)
	}
	variant := head.Variant
	if variant == "" {
		variant = fallback
	}
	cfg, err := Preset(variant)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config JSON: %v", task.ErrConfiguration, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the fields that Settings does not.
func (c *Config) Validate() error {
	switch {
	case c.NReps < 1:
		return fmt.Errorf("%w: n_reps must be >= 1, got %d", task.ErrConfiguration, c.NReps)
	case c.FlashRate < 0:
		return fmt.Errorf("%w: flash_rate must be >= 0, got %v", task.ErrConfiguration, c.FlashRate)
	case c.FlashRate == 0 && c.PreStimFlashes+c.InterSequenceFlashes > 0:
		return fmt.Errorf("%w: flashes configured with zero flash_rate", task.ErrConfiguration)
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("%w: window size %dx%d must be positive", task.ErrConfiguration, c.Window.Width, c.Window.Height)
	case c.Layout.BoxSize <= 0:
		return fmt.Errorf("%w: layout box_size must be > 0", task.ErrConfiguration)
	}
	switch task.Method(c.Method) {
	case task.MethodRandom, task.MethodSequential, task.MethodFullRandom:
	default:
		return fmt.Errorf("%w: unknown method %q", task.ErrConfiguration, c.Method)
	}
	if _, err := c.routing(); err != nil {
		return err
	}
	if _, err := c.Serial.PortOptions.Normalize(); err != nil {
		return fmt.Errorf("%w: serial: %v", task.ErrConfiguration, err)
	}
	return nil
}

func (c *Config) routing() (tones.Routing, error) {
	switch c.Stereo.Mode {
	case StereoMono:
		return tones.Mono, nil
	case "", StereoMix, StereoByCondition:
		return tones.Mix, nil
	case StereoCustom:
		return tones.Routing{Left: c.Stereo.LeftAmp, Right: c.Stereo.RightAmp}, nil
	}
	return tones.Routing{}, fmt.Errorf("%w: unknown stereo mode %q", task.ErrConfiguration, c.Stereo.Mode)
}

// Settings builds the controller settings. The result is validated by the
// controller.
func (c *Config) Settings(participant string, seed uint64) task.Settings {
	routing, _ := c.routing()

	var period time.Duration
	if c.FlashRate > 0 {
		period = time.Duration(float64(time.Second) / c.FlashRate)
	}

	w, h := float64(c.Window.Width), float64(c.Window.Height)
	box := c.Layout.BoxSize
	layout := task.DefaultLayout(w, h)
	layout.Flash = task.Rect{Width: box, Height: box}
	layout.Same = task.Rect{X: c.Layout.SameX, Width: box, Height: box}
	layout.Diff = task.Rect{X: c.Layout.DiffX, Width: box, Height: box}
	layout.Neutral = task.Rect{Width: box, Height: box}
	layout.Feedback = task.Point{Y: c.Layout.FeedbackY}

	return task.Settings{
		Participant: participant,
		SessionSeed: seed,
		Tones: tones.Params{
			SampleRate:       c.SampleRate,
			ToneDuration:     time.Duration(c.ToneDuration),
			SequenceDuration: time.Duration(c.SequenceDuration),
			Ramp:             time.Duration(c.Ramp),
			Routing:          routing,
		},
		PanByCondition:       c.Stereo.Mode == StereoByCondition,
		FlashPeriod:          period,
		FlashDuration:        time.Duration(c.FlashDuration),
		PreStimFlashes:       c.PreStimFlashes,
		InterSequenceFlashes: c.InterSequenceFlashes,
		WMDelay:              time.Duration(c.WMDelay),
		MaxResponseTime:      time.Duration(c.MaxResponseTime),
		PollInterval:         time.Duration(c.PollInterval),
		MoveInterval:         time.Duration(c.MoveInterval),
		NudgePixels:          c.NudgePixels,
		FeedbackDuration:     time.Duration(c.FeedbackDuration),
		ITICorrect:           time.Duration(c.ITICorrect),
		ITIIncorrect:         time.Duration(c.ITIIncorrect),
		Layout:               layout,
		Markers: task.Markers{
			CueOnset:     c.Serial.Markers.CueOnset,
			ChoiceOnset:  c.Serial.Markers.ChoiceOnset,
			ResponseOpen: c.Serial.Markers.ResponseOpen,
			Response:     c.Serial.Markers.Response,
		},
	}
}
