package tones

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"
)

// ErrInvalidParameter is returned when a generator input is outside its domain.
var ErrInvalidParameter = errors.New("invalid tone parameter")

// Defaults used by every task variant unless configured otherwise.
const (
	DefaultSampleRate       = 44100
	DefaultToneDuration     = 25 * time.Millisecond
	DefaultSequenceDuration = 500 * time.Millisecond
)

// Routing holds per-channel gains applied to the mono burst signal.
type Routing struct {
	Left  float64
	Right float64
}

// Stereo routings used by the task variants.
var (
	Mono      = Routing{Left: 1, Right: 1}
	Mix       = Routing{Left: 1, Right: 0.5}
	LeftOnly  = Routing{Left: 1, Right: 0}
	RightOnly = Routing{Left: 0, Right: 1}
)

// Params describes one tone sequence.
type Params struct {
	Coherence        float64 // fraction of bursts at BaseFrequency, [0,1]
	BaseFrequency    float64 // Hz
	FrequencyRange   float64 // octave spread of incoherent bursts
	SampleRate       int
	ToneDuration     time.Duration
	SequenceDuration time.Duration
	Ramp             time.Duration // raised-cosine onset/offset per burst, 0 disables
	Routing          Routing

	// Seed makes detuning and burst order reproducible. Nil draws a fresh source.
	Seed *uint64
}

// Seed returns a pointer to v for use in Params.Seed.
func Seed(v uint64) *uint64 { return &v }

// NumTones is the number of whole bursts that fit in the sequence.
// A trailing partial burst is dropped.
func (p Params) NumTones() int {
	if p.ToneDuration <= 0 {
		return 0
	}
	return int(p.SequenceDuration / p.ToneDuration)
}

// NumCoherent is floor(NumTones * Coherence).
func (p Params) NumCoherent() int {
	return int(math.Floor(float64(p.NumTones()) * p.Coherence))
}

// Duration is the nominal playing time: NumTones * ToneDuration.
func (p Params) Duration() time.Duration {
	return time.Duration(p.NumTones()) * p.ToneDuration
}

// Validate reports the first input outside its domain.
func (p Params) Validate() error {
	switch {
	case math.IsNaN(p.Coherence) || p.Coherence < 0 || p.Coherence > 1:
		return fmt.Errorf("%w: coherence %v outside [0,1]", ErrInvalidParameter, p.Coherence)
	case !finite(p.BaseFrequency) || p.BaseFrequency <= 0:
		return fmt.Errorf("%w: base frequency %v must be > 0", ErrInvalidParameter, p.BaseFrequency)
	case !finite(p.FrequencyRange) || p.FrequencyRange < 0:
		return fmt.Errorf("%w: frequency range %v must be >= 0", ErrInvalidParameter, p.FrequencyRange)
	case p.SampleRate <= 0:
		return fmt.Errorf("%w: sample rate %d must be > 0", ErrInvalidParameter, p.SampleRate)
	case p.ToneDuration <= 0:
		return fmt.Errorf("%w: tone duration %v must be > 0", ErrInvalidParameter, p.ToneDuration)
	case p.SequenceDuration < p.ToneDuration:
		return fmt.Errorf("%w: sequence duration %v shorter than tone duration %v",
			ErrInvalidParameter, p.SequenceDuration, p.ToneDuration)
	case p.Ramp < 0 || 2*p.Ramp > p.ToneDuration:
		return fmt.Errorf("%w: ramp %v must be within [0, %v]", ErrInvalidParameter, p.Ramp, p.ToneDuration/2)
	case !finite(p.Routing.Left) || !finite(p.Routing.Right) || p.Routing.Left < 0 || p.Routing.Right < 0:
		return fmt.Errorf("%w: channel gains %+v must be >= 0", ErrInvalidParameter, p.Routing)
	case p.Routing.Left == 0 && p.Routing.Right == 0:
		return fmt.Errorf("%w: both channel gains are zero", ErrInvalidParameter)
	}
	return nil
}

// slotStart is the first frame of burst slot k, rounded so that the sum of
// all slots matches NumTones*ToneDuration to within one frame.
func (p Params) slotStart(k int) int {
	ns := int64(k) * p.ToneDuration.Nanoseconds() * int64(p.SampleRate)
	return int((ns + int64(time.Second)/2) / int64(time.Second))
}

func (p Params) source() rand.Source {
	if p.Seed != nil {
		return rand.NewPCG(*p.Seed, SplitMix64(*p.Seed))
	}
	return rand.NewPCG(rand.Uint64(), rand.Uint64())
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
