package audio

import (
	"encoding/binary"
	"testing"
)

func TestEncodeWAV_Header(t *testing.T) {
	pcm := int16Bytes(0, 1000, -1000, 0, 5, -5)
	buf, err := DecodePCM(pcm, 24000, 2)
	if err != nil {
		t.Fatalf("DecodePCM failed: %v", err)
	}

	wav := EncodeWAV(buf)
	if len(wav) != wavHeaderSize+len(pcm) {
		t.Fatalf("Expected %d bytes, got %d", wavHeaderSize+len(pcm), len(wav))
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" || string(wav[36:40]) != "data" {
		t.Fatalf("Malformed header: %q", wav[:wavHeaderSize])
	}

	tests := []struct {
		name string
		got  uint32
		want uint32
	}{
		{"riff size", binary.LittleEndian.Uint32(wav[4:8]), uint32(36 + len(pcm))},
		{"channels", uint32(binary.LittleEndian.Uint16(wav[22:24])), 2},
		{"sample rate", binary.LittleEndian.Uint32(wav[24:28]), 24000},
		{"byte rate", binary.LittleEndian.Uint32(wav[28:32]), 24000 * 4},
		{"block align", uint32(binary.LittleEndian.Uint16(wav[32:34])), 4},
		{"bits per sample", uint32(binary.LittleEndian.Uint16(wav[34:36])), 16},
		{"data size", binary.LittleEndian.Uint32(wav[40:44]), uint32(len(pcm))},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %d, want %d", tt.name, tt.got, tt.want)
		}
	}

	if string(wav[wavHeaderSize:]) != string(pcm) {
		t.Errorf("Expected payload to match the input samples")
	}
}
