package tones

import (
	"math"
	"time"
)

// Channels is the channel count of every generated buffer.
const Channels = 2

// Burst is one tone segment of a sequence.
type Burst struct {
	Frequency float64
	Coherent  bool
	Start     int // first frame in the sequence buffer
	Frames    int
}

// Sequence is a generated tone stream, interleaved L/R float32 in [-1,1].
type Sequence struct {
	SampleRate int
	Bursts     []Burst
	Samples    []float32

	nominal time.Duration
}

// Frames returns the number of stereo frames.
func (s *Sequence) Frames() int { return len(s.Samples) / Channels }

// Duration is the playing time computed from the generator parameters.
func (s *Sequence) Duration() time.Duration { return s.nominal }

// CoherentCount counts bursts placed exactly on the base frequency.
func (s *Sequence) CoherentCount() int {
	n := 0
	for _, b := range s.Bursts {
		if b.Coherent {
			n++
		}
	}
	return n
}

// Float32LE encodes the buffer as little-endian float32 stereo frames, the
// layout expected by the audio device.
func (s *Sequence) Float32LE() []byte {
	buf := make([]byte, s.Frames()*Channels*4)
	for i := 0; i < s.Frames(); i++ {
		putStereoF32LR(buf, i, s.Samples[i*Channels], s.Samples[i*Channels+1])
	}
	return buf
}

// putStereoF32LR writes independent left/right samples at frame i.
func putStereoF32LR(buf []byte, i int, left, right float32) {
	lv := math.Float32bits(left)
	rv := math.Float32bits(right)
	buf[i*8] = byte(lv)
	buf[i*8+1] = byte(lv >> 8)
	buf[i*8+2] = byte(lv >> 16)
	buf[i*8+3] = byte(lv >> 24)
	buf[i*8+4] = byte(rv)
	buf[i*8+5] = byte(rv >> 8)
	buf[i*8+6] = byte(rv >> 16)
	buf[i*8+7] = byte(rv >> 24)
}
