package views

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Naimurthedang/bondly-main/domain/entities"
	"github.com/Naimurthedang/bondly-main/domain/repositories"
	"github.com/Naimurthedang/bondly-main/internal/audio"
	"github.com/Naimurthedang/bondly-main/internal/saga"
	"github.com/Naimurthedang/bondly-main/internal/saga/fruitvideo"
)

// ErrEmptyTranscript is returned when a recording contained no words.
var ErrEmptyTranscript = errors.New("views: nothing was heard")

// Deps are the collaborators shared by every view of every session.
type Deps struct {
	Gateway repositories.Gateway
	// Speech and Transcriber default to Gateway.
	Speech      repositories.SpeechSynthesizer
	Transcriber repositories.Transcriber
	// Credentials is optional.
	Credentials repositories.CredentialSelector
	Media       repositories.MediaStore
	// Videos defaults to a saga-backed service on Gateway and Media.
	Videos *fruitvideo.Service
	// Player is optional; when set, synthesized speech is also played on it.
	Player  *audio.Player
	Catalog *entities.Catalog
	Logger  *zap.Logger
}

// Validate fills defaults and reports missing collaborators.
func (d *Deps) Validate() error {
	if d.Gateway == nil {
		return fmt.Errorf("gateway is required")
	}
	if d.Media == nil {
		return fmt.Errorf("media store is required")
	}
	if d.Catalog == nil {
		return fmt.Errorf("catalog is required")
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Speech == nil {
		d.Speech = d.Gateway
	}
	if d.Transcriber == nil {
		d.Transcriber = d.Gateway
	}
	if d.Videos == nil {
		d.Videos = fruitvideo.NewService(saga.NewManager(d.Logger), d.Gateway, d.Media, 0, d.Logger)
	}
	return nil
}

// speak synthesizes text in voice, stores a WAV copy for the browser and
// starts it on the local player. It returns the media URL of that copy. A
// payload that fails to decode is logged and yields an empty URL. Once the
// owning action is discarded nothing is stored or played and speak returns
// ErrDiscarded.
func (d *Deps) speak(ctx context.Context, text, voice string) (string, error) {
	if !whileActive(ctx, nil) {
		return "", ErrDiscarded
	}
	uri, err := d.Speech.GenerateSpeech(ctx, text, voice)
	if err != nil {
		return "", err
	}

	buf, err := audio.DecodeSpeech(uri, audio.L16Mono24K)
	if err != nil {
		d.Logger.Warn("Dropping undecodable speech", zap.String("voice", voice), zap.Error(err))
		return "", nil
	}

	if !whileActive(ctx, nil) {
		return "", ErrDiscarded
	}
	url := d.store(ctx, buf)
	if !whileActive(ctx, func() { d.play(buf) }) {
		return "", ErrDiscarded
	}
	return url, nil
}

// play starts buf on the local player, if there is one.
func (d *Deps) play(buf *audio.Buffer) *audio.Playback {
	if d.Player == nil {
		return nil
	}
	pb, err := d.Player.Play(buf)
	if err != nil {
		d.Logger.Warn("Playback failed", zap.Error(err))
		return nil
	}
	return pb
}

// store saves buf as a WAV media blob and returns its URL, or "" when the
// store refused it.
func (d *Deps) store(ctx context.Context, buf *audio.Buffer) string {
	blob := &repositories.MediaBlob{MIMEType: "audio/wav", Data: audio.EncodeWAV(buf)}
	if err := d.Media.Put(ctx, blob); err != nil {
		d.Logger.Warn("Failed to store speech", zap.Error(err))
		return ""
	}
	return mediaURL(blob.ID)
}

// narrate is speak for voices that accompany a result: failures are logged
// and the result is kept without audio.
func (d *Deps) narrate(ctx context.Context, text, voice string) string {
	url, err := d.speak(ctx, text, voice)
	if errors.Is(err, ErrDiscarded) {
		return ""
	}
	if err != nil {
		d.Logger.Warn("Speech generation failed", zap.String("voice", voice), zap.Error(err))
		return ""
	}
	return url
}

// transcribe converts a microphone clip to 16 kHz mono and asks the
// transcriber for its text.
func (d *Deps) transcribe(ctx context.Context, clip Clip) (string, error) {
	pcm := clip.Data
	from := audio.Format{SampleRate: clip.SampleRate, Channels: 1}
	if from.SampleRate == 0 {
		from.SampleRate = audio.L16Mono16K.SampleRate
	}
	if from.SampleRate != audio.L16Mono16K.SampleRate {
		resampled, err := audio.ResamplePCM(pcm, from, audio.L16Mono16K.SampleRate)
		if err != nil {
			return "", fmt.Errorf("failed to resample recording: %w", err)
		}
		pcm = resampled
	}

	text, err := d.Transcriber.TranscribeAudio(ctx, pcm)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyTranscript
	}
	return text, nil
}

func mediaURL(id string) string {
	return "/media/" + id
}
