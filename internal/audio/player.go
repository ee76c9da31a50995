package audio

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Voice is one buffer sounding on an Output.
type Voice interface {
	// Done is closed when the device has finished with the buffer.
	Done() <-chan struct{}
	// Stop silences the voice. It may be called more than once.
	Stop()
}

// Output is a host audio device that accepts one decoded buffer per call.
type Output interface {
	Start(b *Buffer) (Voice, error)
}

// Player starts decoded buffers on an Output. Calls to Play are independent:
// several playbacks may sound at once and nothing is mixed or ducked.
type Player struct {
	out    Output
	logger *zap.Logger
	active atomic.Int64
}

// NewPlayer creates a new player on the given output
func NewPlayer(out Output, logger *zap.Logger) *Player {
	return &Player{out: out, logger: logger}
}

// Play starts b immediately and returns a fresh handle for it.
func (p *Player) Play(b *Buffer) (*Playback, error) {
	if b == nil {
		return nil, errors.New("audio: nil buffer")
	}
	v, err := p.out.Start(b)
	if err != nil {
		return nil, err
	}

	pb := &Playback{
		voice:    v,
		duration: b.Duration(),
		done:     make(chan struct{}),
	}
	n := p.active.Add(1)
	p.logger.Debug("Playback started",
		zap.Duration("duration", pb.duration),
		zap.Int("channels", b.NumChannels()),
		zap.Int("sampleRate", b.SampleRate),
		zap.Int64("active", n))

	go func() {
		select {
		case <-v.Done():
		case <-pb.done:
		}
		pb.finish()
		p.active.Add(-1)
	}()
	return pb, nil
}

// Active returns the number of playbacks that have not completed.
func (p *Player) Active() int {
	return int(p.active.Load())
}

// Playback is the handle of a single Play call.
type Playback struct {
	voice    Voice
	duration time.Duration

	done    chan struct{}
	once    sync.Once
	stopped atomic.Bool
}

// Done is closed exactly once, on natural completion or on Stop.
func (pb *Playback) Done() <-chan struct{} {
	return pb.done
}

// Duration is the length of the buffer being played.
func (pb *Playback) Duration() time.Duration {
	return pb.duration
}

// Stop halts playback early. Safe to call repeatedly and after completion.
func (pb *Playback) Stop() {
	select {
	case <-pb.done:
		return
	default:
	}
	pb.stopped.Store(true)
	pb.voice.Stop()
	pb.finish()
}

// Stopped reports whether the playback ended through Stop.
func (pb *Playback) Stopped() bool {
	return pb.stopped.Load()
}

// Wait blocks until the playback is done.
func (pb *Playback) Wait() {
	<-pb.done
}

func (pb *Playback) finish() {
	pb.once.Do(func() { close(pb.done) })
}

// NullOutput is a device that produces no sound and completes each voice
// after the buffer's duration.
type NullOutput struct{}

// Start implements Output
func (NullOutput) Start(b *Buffer) (Voice, error) {
	v := &clockVoice{done: make(chan struct{})}
	v.timer = time.AfterFunc(b.Duration(), v.finish)
	return v, nil
}

type clockVoice struct {
	timer *time.Timer
	done  chan struct{}
	once  sync.Once
}

func (v *clockVoice) Done() <-chan struct{} { return v.done }

func (v *clockVoice) Stop() {
	v.timer.Stop()
	v.finish()
}

func (v *clockVoice) finish() {
	v.once.Do(func() { close(v.done) })
}
