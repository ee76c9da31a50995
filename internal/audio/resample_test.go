package audio

import (
	"errors"
	"math"
	"testing"
)

func sine(rate, frames int, freq float64) []byte {
	samples := make([]int16, frames)
	for i := range samples {
		samples[i] = int16(16000 * math.Sin(2*math.Pi*freq*float64(i)/float64(rate)))
	}
	return int16Bytes(samples...)
}

func TestResample_Downsample(t *testing.T) {
	buf, err := DecodePCM(sine(48000, 48000, 440), 48000, 1)
	if err != nil {
		t.Fatalf("DecodePCM failed: %v", err)
	}

	out, err := Resample(buf, 16000)
	if err != nil {
		t.Fatalf("Resample failed: %v", err)
	}
	if out.SampleRate != 16000 {
		t.Errorf("Expected sample rate 16000, got %d", out.SampleRate)
	}
	if out.NumChannels() != 1 {
		t.Errorf("Expected 1 channel, got %d", out.NumChannels())
	}
	if len(out.Channel(0)) != out.FrameCount {
		t.Errorf("channel length %d does not match frame count %d", len(out.Channel(0)), out.FrameCount)
	}
}

func TestResample_KeepsDuration(t *testing.T) {
	tests := []struct {
		name     string
		from, to int
		channels int
	}{
		{"48k to 16k", 48000, 16000, 1},
		{"44.1k to 16k", 44100, 16000, 1},
		{"24k to 48k stereo", 24000, 48000, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// One second of audio
			mono := sine(tt.from, tt.from, 440)
			data := make([]byte, 0, len(mono)*tt.channels)
			for i := 0; i < len(mono); i += 2 {
				for range tt.channels {
					data = append(data, mono[i], mono[i+1])
				}
			}
			buf, err := DecodePCM(data, tt.from, tt.channels)
			if err != nil {
				t.Fatalf("DecodePCM failed: %v", err)
			}

			out, err := Resample(buf, tt.to)
			if err != nil {
				t.Fatalf("Resample failed: %v", err)
			}
			if out.NumChannels() != tt.channels {
				t.Errorf("Expected %d channels, got %d", tt.channels, out.NumChannels())
			}
			// Within 1% of the input duration, filter tail included.
			if diff := out.FrameCount - tt.to; diff < -tt.to/100 || diff > tt.to/100 {
				t.Errorf("Expected about %d frames, got %d", tt.to, out.FrameCount)
			}
		})
	}
}

func TestResample_SameRate(t *testing.T) {
	buf, err := DecodePCM(sine(16000, 160, 440), 16000, 1)
	if err != nil {
		t.Fatalf("DecodePCM failed: %v", err)
	}
	out, err := Resample(buf, 16000)
	if err != nil {
		t.Fatalf("Resample failed: %v", err)
	}
	if out != buf {
		t.Error("Expected the buffer to be returned unchanged")
	}
}

func TestResample_Empty(t *testing.T) {
	buf, err := DecodePCM(nil, 48000, 2)
	if err != nil {
		t.Fatalf("DecodePCM failed: %v", err)
	}
	out, err := Resample(buf, 16000)
	if err != nil {
		t.Fatalf("Resample failed: %v", err)
	}
	if out.SampleRate != 16000 || out.FrameCount != 0 {
		t.Errorf("Expected empty 16 kHz buffer, got %d frames at %d", out.FrameCount, out.SampleRate)
	}
}

func TestResample_InvalidRate(t *testing.T) {
	buf, err := DecodePCM(make([]byte, 4), 16000, 1)
	if err != nil {
		t.Fatalf("DecodePCM failed: %v", err)
	}
	if _, err := Resample(buf, 0); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("Expected ErrInvalidFormat, got %v", err)
	}
}

func TestResamplePCM_SameRateKeepsBytes(t *testing.T) {
	data := int16Bytes(1, -1, 300, -300)
	out, err := ResamplePCM(data, L16Mono16K, 16000)
	if err != nil {
		t.Fatalf("ResamplePCM failed: %v", err)
	}
	if string(out) != string(data) {
		t.Errorf("Expected bytes unchanged, got %v", out)
	}
}
