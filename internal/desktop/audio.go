package desktop

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/hajimehoshi/oto/v2"

	"audwm/internal/tones"
)

// Audio plays tone sequences on the default output device.
type Audio struct {
	ctx        *oto.Context
	sampleRate int
	wg         sync.WaitGroup
}

// NewAudio opens a float32 stereo context and waits until it is ready.
func NewAudio(sampleRate int) (*Audio, error) {
	ctx, ready, err := oto.NewContext(sampleRate, tones.Channels, oto.FormatFloat32LE)
	if err != nil {
		return nil, fmt.Errorf("audio init: %w", err)
	}
	<-ready
	return &Audio{ctx: ctx, sampleRate: sampleRate}, nil
}

// Play starts seq and returns immediately. The player is released once it
// drains.
func (a *Audio) Play(seq *tones.Sequence) error {
	if seq.SampleRate != a.sampleRate {
		return fmt.Errorf("sequence rate %d Hz does not match device rate %d Hz", seq.SampleRate, a.sampleRate)
	}
	player := a.ctx.NewPlayer(&soundReader{data: seq.Float32LE()})
	player.Play()
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		for player.IsPlaying() {
			time.Sleep(10 * time.Millisecond)
		}
		player.Close()
	}()
	return nil
}

// Wait blocks until every started sequence has finished.
func (a *Audio) Wait() {
	a.wg.Wait()
}

type soundReader struct {
	data []byte
	pos  int
}

func (r *soundReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	n := copy(p, r.data[r.pos:])
	r.pos += n
	return n, nil
}
