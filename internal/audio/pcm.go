package audio

import (
	"encoding/binary"
	"math"
	"time"
)

// Buffer holds decoded audio as normalized float samples, one slice per
// channel, all FrameCount long.
type Buffer struct {
	SampleRate int
	FrameCount int

	channels [][]float32
}

// NumChannels returns the number of channels in the buffer.
func (b *Buffer) NumChannels() int {
	return len(b.channels)
}

// Channel returns the samples of channel c. The slice is shared with the
// buffer.
func (b *Buffer) Channel(c int) []float32 {
	return b.channels[c]
}

// Format returns the PCM format the buffer was decoded from.
func (b *Buffer) Format() Format {
	return Format{SampleRate: b.SampleRate, Channels: len(b.channels)}
}

// Duration returns the playing time of the buffer.
func (b *Buffer) Duration() time.Duration {
	if b.SampleRate == 0 {
		return 0
	}
	return time.Duration(b.FrameCount) * time.Second / time.Duration(b.SampleRate)
}

// DecodePCM interprets data as interleaved signed 16-bit little-endian
// samples across numChannels channels and normalizes them into [-1, 1).
//
// FrameCount is len(data) / (2*numChannels); a trailing partial frame is
// dropped. No resampling happens: the buffer is tagged with sampleRate.
func DecodePCM(data []byte, sampleRate, numChannels int) (*Buffer, error) {
	f := Format{SampleRate: sampleRate, Channels: numChannels}
	if err := f.Validate(); err != nil {
		return nil, err
	}

	frames := f.Frames(len(data))
	buf := &Buffer{
		SampleRate: sampleRate,
		FrameCount: frames,
		channels:   make([][]float32, numChannels),
	}
	for c := range buf.channels {
		buf.channels[c] = make([]float32, frames)
	}

	for i := 0; i < frames; i++ {
		for c := 0; c < numChannels; c++ {
			off := (i*numChannels + c) * 2
			s := int16(binary.LittleEndian.Uint16(data[off:]))
			buf.channels[c][i] = float32(s) / 32768.0
		}
	}
	return buf, nil
}

// Int16 quantizes the buffer back to interleaved int16 samples.
func (b *Buffer) Int16() []int16 {
	n := len(b.channels)
	out := make([]int16, b.FrameCount*n)
	for i := 0; i < b.FrameCount; i++ {
		for c := 0; c < n; c++ {
			out[i*n+c] = quantize(b.channels[c][i])
		}
	}
	return out
}

// EncodePCM renders the buffer as interleaved signed 16-bit little-endian
// bytes.
func EncodePCM(b *Buffer) []byte {
	samples := b.Int16()
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

// Float32LE renders the buffer as interleaved 32-bit float little-endian
// bytes, the native layout of most output devices.
func (b *Buffer) Float32LE() []byte {
	n := len(b.channels)
	out := make([]byte, b.FrameCount*n*4)
	for i := 0; i < b.FrameCount; i++ {
		for c := 0; c < n; c++ {
			binary.LittleEndian.PutUint32(out[(i*n+c)*4:], math.Float32bits(b.channels[c][i]))
		}
	}
	return out
}

func quantize(v float32) int16 {
	x := math.Round(float64(v) * 32768.0)
	switch {
	case x > math.MaxInt16:
		return math.MaxInt16
	case x < math.MinInt16:
		return math.MinInt16
	}
	return int16(x)
}
