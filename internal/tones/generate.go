// Package tones synthesizes coherence-controlled random tone sequences.
//
// A sequence is a run of short sine bursts. A fixed fraction of them sit
// exactly on the base frequency; the rest are detuned by a random number of
// octaves in [-FrequencyRange, FrequencyRange]. Burst order is shuffled.
package tones

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Generate builds the sequence described by p. Each call owns its random
// source, so concurrent or repeated calls never disturb each other.
func Generate(p Params) (*Sequence, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	src := p.source()
	n := p.NumTones()
	nc := p.NumCoherent()

	bursts := make([]Burst, 0, n)
	for i := 0; i < nc; i++ {
		bursts = append(bursts, Burst{Frequency: p.BaseFrequency, Coherent: true})
	}
	// Detuning is uniform in log-frequency, not in Hz.
	octaves := distuv.Uniform{Min: -1, Max: 1, Src: src}
	for i := nc; i < n; i++ {
		u := octaves.Rand()
		bursts = append(bursts, Burst{Frequency: p.BaseFrequency * math.Exp2(u*p.FrequencyRange)})
	}
	rand.New(src).Shuffle(len(bursts), func(i, j int) {
		bursts[i], bursts[j] = bursts[j], bursts[i]
	})

	seq := &Sequence{
		SampleRate: p.SampleRate,
		Bursts:     bursts,
		Samples:    make([]float32, p.slotStart(n)*Channels),
		nominal:    p.Duration(),
	}
	rampFrames := int(p.Ramp.Seconds() * float64(p.SampleRate))
	for k := range bursts {
		b := &bursts[k]
		b.Start = p.slotStart(k)
		b.Frames = p.slotStart(k+1) - b.Start
		renderBurst(seq.Samples, b, p.SampleRate, rampFrames, p.Routing)
	}
	return seq, nil
}

// renderBurst writes one burst into the interleaved stereo buffer. Phase
// restarts at every burst onset.
func renderBurst(dst []float32, b *Burst, sampleRate, rampFrames int, r Routing) {
	w := 2 * math.Pi * b.Frequency / float64(sampleRate)
	for i := 0; i < b.Frames; i++ {
		s := math.Sin(w*float64(i)) * rampGain(i, b.Frames, rampFrames)
		f := (b.Start + i) * Channels
		dst[f] = float32(s * r.Left)
		dst[f+1] = float32(s * r.Right)
	}
}

// rampGain is a raised-cosine fade over the first and last ramp frames.
func rampGain(i, frames, ramp int) float64 {
	if ramp <= 0 {
		return 1
	}
	switch {
	case i < ramp:
		return 0.5 - 0.5*math.Cos(math.Pi*float64(i)/float64(ramp))
	case i >= frames-ramp:
		return 0.5 - 0.5*math.Cos(math.Pi*float64(frames-1-i)/float64(ramp))
	}
	return 1
}
