// Package audio decodes the raw speech payloads returned by the AI gateway
// and drives their playback.
//
// All payloads are signed 16-bit little-endian PCM. The sample rate and
// channel count are declared by the provider and never inferred here.
package audio

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidFormat is returned when a sample rate or channel count cannot
// describe a PCM stream.
var ErrInvalidFormat = errors.New("audio: invalid format")

// Format describes a raw L16 stream.
type Format struct {
	SampleRate int `json:"sample_rate"`
	Channels   int `json:"channels"`
}

var (
	// L16Mono16K is the speech input format (microphone capture).
	L16Mono16K = Format{SampleRate: 16000, Channels: 1}
	// L16Mono24K is the speech output format (synthesized voices).
	L16Mono24K = Format{SampleRate: 24000, Channels: 1}
)

// Validate reports whether the format can describe a PCM stream.
func (f Format) Validate() error {
	if f.SampleRate < 1 {
		return fmt.Errorf("%w: sample rate %d", ErrInvalidFormat, f.SampleRate)
	}
	if f.Channels < 1 {
		return fmt.Errorf("%w: channel count %d", ErrInvalidFormat, f.Channels)
	}
	return nil
}

// FrameBytes returns the size of one interleaved frame in bytes.
func (f Format) FrameBytes() int {
	return 2 * f.Channels
}

// Frames returns the number of whole frames in n bytes.
func (f Format) Frames(n int) int {
	return n / f.FrameBytes()
}

// Duration returns the playing time of n bytes.
func (f Format) Duration(n int) time.Duration {
	return time.Duration(f.Frames(n)) * time.Second / time.Duration(f.SampleRate)
}

// MIMEType renders the format the way the gateway declares inline audio.
func (f Format) MIMEType() string {
	if f.Channels == 1 {
		return fmt.Sprintf("audio/pcm;rate=%d", f.SampleRate)
	}
	return fmt.Sprintf("audio/pcm;rate=%d;channels=%d", f.SampleRate, f.Channels)
}

func (f Format) String() string {
	return fmt.Sprintf("audio/L16; rate=%d; channels=%d", f.SampleRate, f.Channels)
}

// ParseMIMEType reads the rate and channels parameters of an L16 MIME type
// such as "audio/L16;codec=pcm;rate=24000". Missing parameters take the
// values of def.
func ParseMIMEType(mimeType string, def Format) (Format, error) {
	parts := strings.Split(mimeType, ";")
	media := strings.ToLower(strings.TrimSpace(parts[0]))
	switch media {
	case "audio/pcm", "audio/l16", "audio/raw":
	default:
		return Format{}, fmt.Errorf("%w: unsupported media type %q", ErrInvalidFormat, parts[0])
	}

	f := def
	for _, p := range parts[1:] {
		k, v, ok := strings.Cut(strings.TrimSpace(p), "=")
		if !ok {
			continue
		}
		switch strings.ToLower(k) {
		case "rate":
			n, err := strconv.Atoi(v)
			if err != nil {
				return Format{}, fmt.Errorf("%w: rate %q", ErrInvalidFormat, v)
			}
			f.SampleRate = n
		case "channels":
			n, err := strconv.Atoi(v)
			if err != nil {
				return Format{}, fmt.Errorf("%w: channels %q", ErrInvalidFormat, v)
			}
			f.Channels = n
		}
	}
	return f, f.Validate()
}
