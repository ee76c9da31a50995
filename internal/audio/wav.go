package audio

import (
	"bytes"
	"encoding/binary"
	"io"
)

const wavHeaderSize = 44

// EncodeWAV wraps the buffer in a canonical 44-byte RIFF/WAVE header so a
// browser <audio> element can play it directly.
func EncodeWAV(b *Buffer) []byte {
	var out bytes.Buffer
	out.Grow(wavHeaderSize + b.FrameCount*2*b.NumChannels())
	// bytes.Buffer writes never fail.
	_ = WriteWAV(&out, b)
	return out.Bytes()
}

// WriteWAV writes the buffer as 16-bit PCM WAV to w.
func WriteWAV(w io.Writer, b *Buffer) error {
	pcm := EncodePCM(b)
	channels := b.NumChannels()
	blockAlign := channels * 2

	header := make([]byte, wavHeaderSize)
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], uint32(36+len(pcm)))
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(header[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(b.SampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(b.SampleRate*blockAlign))
	binary.LittleEndian.PutUint16(header[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(header[34:36], 16)
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], uint32(len(pcm)))

	if _, err := w.Write(header); err != nil {
		return err
	}
	_, err := w.Write(pcm)
	return err
}
