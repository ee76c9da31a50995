package views

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/Naimurthedang/bondly-main/domain/entities"
	"github.com/Naimurthedang/bondly-main/internal/audio"
)

// ErrNoLullaby is returned when Play is called before lyrics exist.
var ErrNoLullaby = errors.New("views: no lullaby to play")

// SongView writes lullabies and sings them.
type SongView struct {
	deps   *Deps
	lyrics *Controller[*entities.Lullaby]
	sung   *Controller[string]

	mu       sync.Mutex
	playback *audio.Playback
}

// SongSnapshot is the lullaby screen's state.
type SongSnapshot struct {
	State    State[*entities.Lullaby] `json:"state"`
	Audio    State[string]            `json:"audio"`
	AudioURL string                   `json:"audioUrl,omitempty"`
	Playing  bool                     `json:"playing"`
}

// NewSongView creates a new song view
func NewSongView(deps *Deps) *SongView {
	return &SongView{
		deps:   deps,
		lyrics: NewController[*entities.Lullaby](entities.RouteSongs, deps),
		sung:   NewController[string](entities.RouteSongs, deps),
	}
}

func (v *SongView) Route() entities.Route { return entities.RouteSongs }

// Create writes new lyrics in the catalog's lullaby mood, replacing the
// previous song.
func (v *SongView) Create(ctx context.Context, profile entities.Profile) (State[*entities.Lullaby], error) {
	v.sung.Unmount()
	v.Stop()

	mood := v.deps.Catalog.LullabyMood
	profile.Mood = mood
	return v.lyrics.Run(ctx, func(ctx context.Context) (*entities.Lullaby, error) {
		return v.deps.Gateway.GenerateLullaby(ctx, profile, mood)
	})
}

// Play sings the current lyrics. The audio state holds the media URL of the
// sung clip, empty when the speech payload could not be decoded.
func (v *SongView) Play(ctx context.Context) (State[string], error) {
	lyrics := v.lyrics.State()
	if lyrics.Status != StatusSuccess || lyrics.Value == nil {
		return v.sung.State(), ErrNoLullaby
	}
	v.Stop()

	return v.sung.Run(ctx, func(ctx context.Context) (string, error) {
		uri, err := v.deps.Speech.GenerateSpeech(ctx, lyrics.Value.Lyrics, v.deps.Catalog.Voices.Default)
		if err != nil {
			return "", err
		}
		return v.sing(ctx, uri)
	})
}

// Stop halts the song if it is playing.
func (v *SongView) Stop() {
	v.mu.Lock()
	pb := v.playback
	v.playback = nil
	v.mu.Unlock()
	if pb != nil {
		pb.Stop()
	}
}

// sing stores and plays the sung clip unless the song was replaced or the
// view unmounted meanwhile.
func (v *SongView) sing(ctx context.Context, uri string) (string, error) {
	buf, err := audio.DecodeSpeech(uri, audio.L16Mono24K)
	if err != nil {
		v.deps.Logger.Warn("Dropping undecodable lullaby", zap.Error(err))
		return "", nil
	}
	if !whileActive(ctx, nil) {
		return "", ErrDiscarded
	}
	url := v.deps.store(ctx, buf)
	started := whileActive(ctx, func() {
		pb := v.deps.play(buf)
		v.mu.Lock()
		v.playback = pb
		v.mu.Unlock()
	})
	if !started {
		return "", ErrDiscarded
	}
	return url, nil
}

func (v *SongView) playing() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.playback == nil {
		return false
	}
	select {
	case <-v.playback.Done():
		return false
	default:
		return true
	}
}

func (v *SongView) Snapshot(entities.Profile) any {
	sung := v.sung.State()
	snap := SongSnapshot{
		State:   v.lyrics.State(),
		Audio:   sung,
		Playing: v.playing(),
	}
	if sung.Status == StatusSuccess {
		snap.AudioURL = sung.Value
	}
	return snap
}

func (v *SongView) Unmount() {
	v.sung.Unmount()
	v.lyrics.Unmount()
	v.Stop()
}
