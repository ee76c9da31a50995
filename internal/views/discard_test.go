package views

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/Naimurthedang/bondly-main/domain/entities"
	"github.com/Naimurthedang/bondly-main/domain/repositories"
	"github.com/Naimurthedang/bondly-main/internal/audio"
)

// gate blocks speech and transcription calls until opened, then delegates
// them to the mock gateway.
type gate struct {
	speech      repositories.SpeechSynthesizer
	transcriber repositories.Transcriber
	entered     chan struct{}
	open        chan struct{}
	once        sync.Once
}

func newGate(env *testEnv) *gate {
	return &gate{
		speech:      env.gateway,
		transcriber: env.gateway,
		entered:     make(chan struct{}, 8),
		open:        make(chan struct{}),
	}
}

func (g *gate) wait() {
	g.entered <- struct{}{}
	<-g.open
}

func (g *gate) GenerateSpeech(ctx context.Context, text, voice string) (string, error) {
	g.wait()
	return g.speech.GenerateSpeech(ctx, text, voice)
}

func (g *gate) TranscribeAudio(ctx context.Context, pcm []byte) (string, error) {
	g.wait()
	return g.transcriber.TranscribeAudio(ctx, pcm)
}

func (g *gate) waitEntered(t *testing.T) {
	t.Helper()
	select {
	case <-g.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the held call")
	}
}

func (g *gate) release() { g.once.Do(func() { close(g.open) }) }

type countingOutput struct {
	mu      sync.Mutex
	started int
}

func (o *countingOutput) Start(b *audio.Buffer) (audio.Voice, error) {
	o.mu.Lock()
	o.started++
	o.mu.Unlock()
	return audio.NullOutput{}.Start(b)
}

func (o *countingOutput) Started() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.started
}

type countingMedia struct {
	repositories.MediaStore
	mu   sync.Mutex
	puts int
}

func (m *countingMedia) Put(ctx context.Context, blob *repositories.MediaBlob) error {
	m.mu.Lock()
	m.puts++
	m.mu.Unlock()
	return m.MediaStore.Put(ctx, blob)
}

func (m *countingMedia) Puts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.puts
}

func TestVoicedViews_UnmountSilencesLateSpeech(t *testing.T) {
	profile := entities.DefaultProfile()

	tests := []struct {
		name string
		// start prepares the view and returns the voiced action and the
		// view's Unmount.
		start func(t *testing.T, env *testEnv) (run func() error, unmount func())
	}{
		{
			name: "lullaby",
			start: func(t *testing.T, env *testEnv) (func() error, func()) {
				v := NewSongView(env.deps)
				if _, err := v.Create(context.Background(), profile); err != nil {
					t.Fatalf("Create failed: %v", err)
				}
				run := func() error {
					_, err := v.Play(context.Background())
					return err
				}
				unmount := func() {
					v.Unmount()
					t.Cleanup(func() {
						v.mu.Lock()
						defer v.mu.Unlock()
						if v.playback != nil {
							t.Error("unmounted song view must not keep a playback")
						}
					})
				}
				return run, unmount
			},
		},
		{
			name: "friend",
			start: func(t *testing.T, env *testEnv) (func() error, func()) {
				v := NewFriendView(env.deps)
				run := func() error {
					_, err := v.Send(context.Background(), profile, "pip", "hello")
					return err
				}
				return run, v.Unmount
			},
		},
		{
			name: "toy",
			start: func(t *testing.T, env *testEnv) (func() error, func()) {
				v := NewToyView(env.deps)
				if _, err := v.Create(context.Background(), profile, entities.ToyTypeBunny, ""); err != nil {
					t.Fatalf("Create failed: %v", err)
				}
				run := func() error {
					_, err := v.Interact(context.Background(), profile, "Tickle the toy")
					return err
				}
				return run, v.Unmount
			},
		},
		{
			name: "camera",
			start: func(t *testing.T, env *testEnv) (func() error, func()) {
				v := NewCameraView(env.deps)
				run := func() error {
					_, err := v.Analyze(context.Background(), profile, Clip{Data: []byte("clip")})
					return err
				}
				return run, v.Unmount
			},
		},
		{
			name: "shop",
			start: func(t *testing.T, env *testEnv) (func() error, func()) {
				v := NewShopView(env.deps)
				run := func() error {
					_, err := v.Search(context.Background(), profile, "soft blocks")
					return err
				}
				return run, v.Unmount
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			out := &countingOutput{}
			env.deps.Player = audio.NewPlayer(out, zaptest.NewLogger(t))
			store := &countingMedia{MediaStore: env.media}
			env.deps.Media = store
			g := newGate(env)
			env.deps.Speech = g

			run, unmount := tt.start(t, env)
			done := make(chan error, 1)
			go func() { done <- run() }()

			g.waitEntered(t)
			unmount()
			g.release()

			if err := <-done; !errors.Is(err, ErrDiscarded) {
				t.Fatalf("Expected ErrDiscarded, got %v", err)
			}
			if n := out.Started(); n != 0 {
				t.Errorf("Expected no playback after unmount, got %d", n)
			}
			if n := store.Puts(); n != 0 {
				t.Errorf("Expected nothing stored after unmount, got %d blobs", n)
			}
		})
	}
}

func TestSongView_ReplacedSongIsNotPlayed(t *testing.T) {
	env := newTestEnv(t)
	out := &countingOutput{}
	env.deps.Player = audio.NewPlayer(out, zaptest.NewLogger(t))
	g := newGate(env)
	env.deps.Speech = g
	v := NewSongView(env.deps)
	profile := entities.DefaultProfile()

	if _, err := v.Create(context.Background(), profile); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	done := make(chan error, 1)
	go func() {
		_, err := v.Play(context.Background())
		done <- err
	}()
	g.waitEntered(t)

	// New lyrics drop the song being sung
	if _, err := v.Create(context.Background(), profile); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	g.release()

	if err := <-done; !errors.Is(err, ErrDiscarded) {
		t.Fatalf("Expected ErrDiscarded, got %v", err)
	}
	if out.Started() != 0 {
		t.Error("replaced song must not be played")
	}
	if v.Snapshot(profile).(SongSnapshot).Playing {
		t.Error("Expected nothing playing")
	}
}

func TestFriendView_ReselectDuringTranscriptionDropsTurn(t *testing.T) {
	env := newTestEnv(t)
	g := newGate(env)
	env.deps.Transcriber = g
	v := NewFriendView(env.deps)
	profile := entities.DefaultProfile()

	if _, err := v.Select("pip"); err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	v.AttachDevice(&fakeDevice{}, entities.Device{Kind: entities.DeviceMicrophone, SampleRate: 16000})
	if err := v.StartRecording(); err != nil {
		t.Fatalf("StartRecording failed: %v", err)
	}
	if err := v.WriteChunk(make([]byte, 3200)); err != nil {
		t.Fatalf("WriteChunk failed: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := v.StopRecording(context.Background(), profile)
		done <- err
	}()
	g.waitEntered(t)

	// Leaving and coming back to the same friend starts a new conversation
	v.Unmount()
	if _, err := v.Select("pip"); err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	g.release()

	if err := <-done; !errors.Is(err, ErrDiscarded) {
		t.Fatalf("Expected ErrDiscarded, got %v", err)
	}
	if lines := v.Snapshot(profile).(FriendSnapshot).Lines; len(lines) != 0 {
		t.Errorf("Expected an empty transcript, got %+v", lines)
	}
	if n := env.gateway.Calls("friend_message"); n != 0 {
		t.Errorf("Expected no friend message request, got %d", n)
	}
}

func TestGuideView_UnmountDuringTranscriptionDropsQuestion(t *testing.T) {
	env := newTestEnv(t)
	g := newGate(env)
	env.deps.Transcriber = g
	v := NewGuideView(env.deps)
	profile := entities.DefaultProfile()

	v.AttachDevice(&fakeDevice{}, entities.Device{Kind: entities.DeviceMicrophone, SampleRate: 16000})
	if err := v.StartRecording(); err != nil {
		t.Fatalf("StartRecording failed: %v", err)
	}
	if err := v.WriteChunk(make([]byte, 3200)); err != nil {
		t.Fatalf("WriteChunk failed: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := v.StopRecording(context.Background(), profile)
		done <- err
	}()
	g.waitEntered(t)

	v.Unmount()
	g.release()

	if err := <-done; !errors.Is(err, ErrDiscarded) {
		t.Fatalf("Expected ErrDiscarded, got %v", err)
	}
	if q := v.Snapshot(profile).(GuideSnapshot).Question; q != "" {
		t.Errorf("Expected no question after unmount, got %q", q)
	}
	if n := env.gateway.Calls("guide"); n != 0 {
		t.Errorf("Expected no guide request, got %d", n)
	}
}
