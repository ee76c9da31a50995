// Package speaker plays decoded audio on the host's sound card.
package speaker

import (
	"bytes"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"go.uber.org/zap"

	"github.com/Naimurthedang/bondly-main/internal/audio"
)

const pollInterval = 10 * time.Millisecond

// Output is an audio.Output backed by an oto context. The context is opened
// on first use with the format of the first buffer; later buffers must match
// it because a process can own only one oto context.
type Output struct {
	logger *zap.Logger

	mu     sync.Mutex
	ctx    *oto.Context
	format audio.Format
}

var _ audio.Output = (*Output)(nil)

// NewOutput creates a new speaker output
func NewOutput(logger *zap.Logger) *Output {
	return &Output{logger: logger}
}

func (o *Output) context(f audio.Format) (*oto.Context, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.ctx != nil {
		if f != o.format {
			return nil, fmt.Errorf("speaker: opened at %v, cannot play %v", o.format, f)
		}
		return o.ctx, nil
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   f.SampleRate,
		ChannelCount: f.Channels,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create audio context: %w", err)
	}
	<-ready

	o.ctx = ctx
	o.format = f
	o.logger.Info("Speaker opened",
		zap.Int("sampleRate", f.SampleRate),
		zap.Int("channels", f.Channels))
	return ctx, nil
}

// Start implements audio.Output
func (o *Output) Start(b *audio.Buffer) (audio.Voice, error) {
	ctx, err := o.context(b.Format())
	if err != nil {
		return nil, err
	}

	p := ctx.NewPlayer(bytes.NewReader(b.Float32LE()))
	v := &voice{player: p, done: make(chan struct{}), stop: make(chan struct{})}
	p.Play()
	go v.watch()
	return v, nil
}

type voice struct {
	player *oto.Player
	done   chan struct{}
	stop   chan struct{}
	once   sync.Once
}

func (v *voice) watch() {
	defer close(v.done)
	defer v.player.Close()

	t := time.NewTicker(pollInterval)
	defer t.Stop()
	for {
		select {
		case <-v.stop:
			v.player.Pause()
			return
		case <-t.C:
			if !v.player.IsPlaying() {
				return
			}
		}
	}
}

func (v *voice) Done() <-chan struct{} { return v.done }

func (v *voice) Stop() {
	v.once.Do(func() { close(v.stop) })
}
