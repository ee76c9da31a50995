package audio

import (
	"encoding/binary"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func int16Bytes(samples ...int16) []byte {
	b := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(b[i*2:], uint16(s))
	}
	return b
}

func TestDecodePCM_InterleavedStereo(t *testing.T) {
	data := int16Bytes(0, 16384, -16384, 32767, -32768, 100, -100, 0)

	buf, err := DecodePCM(data, 24000, 2)
	if err != nil {
		t.Fatalf("DecodePCM failed: %v", err)
	}

	if buf.NumChannels() != 2 {
		t.Fatalf("Expected 2 channels, got %d", buf.NumChannels())
	}
	if buf.FrameCount != 4 {
		t.Fatalf("Expected 4 frames, got %d", buf.FrameCount)
	}
	if buf.SampleRate != 24000 {
		t.Errorf("Expected sample rate 24000, got %d", buf.SampleRate)
	}

	approx := cmpopts.EquateApprox(0, 1e-4)
	wantLeft := []float32{0, -0.5, -1.0, -0.00305}
	wantRight := []float32{0.5, 0.99997, 0.00305, 0}
	if diff := cmp.Diff(wantLeft, buf.Channel(0), approx); diff != "" {
		t.Errorf("channel 0 mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantRight, buf.Channel(1), approx); diff != "" {
		t.Errorf("channel 1 mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodePCM_FrameCount(t *testing.T) {
	tests := []struct {
		name     string
		bytes    int
		channels int
		want     int
	}{
		{"empty mono", 0, 1, 0},
		{"empty stereo", 0, 2, 0},
		{"empty six channels", 0, 6, 0},
		{"mono whole frames", 48, 1, 24},
		{"mono odd byte dropped", 49, 1, 24},
		{"stereo one byte short", 4*3 - 1, 2, 2},
		{"stereo partial frame dropped", 4*3 + 2, 2, 3},
		{"single byte", 1, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, err := DecodePCM(make([]byte, tt.bytes), 16000, tt.channels)
			if err != nil {
				t.Fatalf("DecodePCM returned error: %v", err)
			}
			if buf.FrameCount != tt.want {
				t.Errorf("Expected frameCount %d, got %d", tt.want, buf.FrameCount)
			}
			for c := 0; c < tt.channels; c++ {
				if len(buf.Channel(c)) != tt.want {
					t.Errorf("channel %d has %d samples, want %d", c, len(buf.Channel(c)), tt.want)
				}
			}
		})
	}
}

func TestDecodePCM_InvalidArguments(t *testing.T) {
	if _, err := DecodePCM([]byte{0, 0}, 24000, 0); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("Expected ErrInvalidFormat for zero channels, got %v", err)
	}
	if _, err := DecodePCM([]byte{0, 0}, 0, 1); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("Expected ErrInvalidFormat for zero sample rate, got %v", err)
	}
}

func TestDecodePCM_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for _, channels := range []int{1, 2, 3} {
		for _, frames := range []int{0, 1, 17, 1024} {
			data := make([]byte, frames*2*channels)
			rng.Read(data)

			buf, err := DecodePCM(data, 24000, channels)
			if err != nil {
				t.Fatalf("DecodePCM failed: %v", err)
			}
			got := EncodePCM(buf)
			if len(got) != len(data) {
				t.Fatalf("channels=%d frames=%d: re-encoded %d bytes, want %d", channels, frames, len(got), len(data))
			}
			for i := 0; i < len(data); i += 2 {
				want := int16(binary.LittleEndian.Uint16(data[i:]))
				have := int16(binary.LittleEndian.Uint16(got[i:]))
				if d := int(want) - int(have); d < -1 || d > 1 {
					t.Fatalf("channels=%d sample %d: want %d, got %d", channels, i/2, want, have)
				}
			}
		}
	}
}

func TestBuffer_Duration(t *testing.T) {
	buf, err := DecodePCM(make([]byte, 48000), 24000, 1)
	if err != nil {
		t.Fatalf("DecodePCM failed: %v", err)
	}
	if buf.Duration() != time.Second {
		t.Errorf("Expected 1s, got %v", buf.Duration())
	}
}

func TestQuantizeClamps(t *testing.T) {
	tests := []struct {
		in   float32
		want int16
	}{
		{1.5, 32767},
		{-1.5, -32768},
		{0.5, 16384},
		{-1, -32768},
		{0, 0},
	}
	for _, tt := range tests {
		if got := quantize(tt.in); got != tt.want {
			t.Errorf("quantize(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParseMIMEType(t *testing.T) {
	tests := []struct {
		mime    string
		want    Format
		wantErr bool
	}{
		{"audio/pcm;rate=24000", L16Mono24K, false},
		{"audio/L16;codec=pcm;rate=16000", L16Mono16K, false},
		{"audio/pcm", L16Mono24K, false},
		{"audio/pcm;rate=44100;channels=2", Format{SampleRate: 44100, Channels: 2}, false},
		{"audio/pcm;rate=abc", Format{}, true},
		{"audio/pcm;channels=0", Format{}, true},
		{"audio/mpeg", Format{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.mime, func(t *testing.T) {
			got, err := ParseMIMEType(tt.mime, L16Mono24K)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMIMEType() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseMIMEType() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFormat_MIMETypeRoundTrip(t *testing.T) {
	for _, f := range []Format{L16Mono16K, L16Mono24K, {SampleRate: 48000, Channels: 2}} {
		got, err := ParseMIMEType(f.MIMEType(), Format{SampleRate: 1, Channels: 1})
		if err != nil {
			t.Fatalf("ParseMIMEType(%q) failed: %v", f.MIMEType(), err)
		}
		if got != f {
			t.Errorf("round trip of %v gave %v", f, got)
		}
	}
}
