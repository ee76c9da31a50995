package audio

import (
	"fmt"

	resampling "github.com/tphakala/go-audio-resampling"
)

// Resample converts b to the given sample rate. Each channel is converted
// independently. A buffer already at rate is returned unchanged.
func Resample(b *Buffer, rate int) (*Buffer, error) {
	if rate < 1 {
		return nil, fmt.Errorf("%w: sample rate %d", ErrInvalidFormat, rate)
	}
	if b.SampleRate == rate {
		return b, nil
	}
	if b.FrameCount == 0 {
		out := *b
		out.SampleRate = rate
		return &out, nil
	}

	out := &Buffer{
		SampleRate: rate,
		channels:   make([][]float32, len(b.channels)),
	}
	for c, samples := range b.channels {
		r, err := resampling.New(&resampling.Config{
			InputRate:  float64(b.SampleRate),
			OutputRate: float64(rate),
			Channels:   1,
			Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create resampler: %w", err)
		}

		in := make([]float64, len(samples))
		for i, s := range samples {
			in[i] = float64(s)
		}
		res, err := r.Process(in)
		if err != nil {
			return nil, fmt.Errorf("resample error: %w", err)
		}
		// The filter holds back its last samples until flushed.
		tail, err := r.Flush()
		if err != nil {
			return nil, fmt.Errorf("resample flush error: %w", err)
		}
		res = append(res, tail...)

		ch := make([]float32, len(res))
		for i, s := range res {
			ch[i] = float32(s)
		}
		out.channels[c] = ch
	}

	// Channels can come back a sample apart; trim to the shortest.
	out.FrameCount = len(out.channels[0])
	for _, ch := range out.channels[1:] {
		out.FrameCount = min(out.FrameCount, len(ch))
	}
	for c := range out.channels {
		out.channels[c] = out.channels[c][:out.FrameCount]
	}
	return out, nil
}

// ResamplePCM decodes raw L16 bytes in format from, converts them to rate and
// re-encodes them as L16.
func ResamplePCM(data []byte, from Format, rate int) ([]byte, error) {
	b, err := DecodePCM(data, from.SampleRate, from.Channels)
	if err != nil {
		return nil, err
	}
	if from.SampleRate == rate {
		return EncodePCM(b), nil
	}
	r, err := Resample(b, rate)
	if err != nil {
		return nil, err
	}
	return EncodePCM(r), nil
}
