package audio

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// DecodeError reports a base64 payload that contains bytes outside the
// standard alphabet or has broken padding.
type DecodeError struct {
	Offset int64
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("audio: malformed base64 payload at offset %d: %v", e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// DecodeBase64 returns the bytes encoded by a standard, padded base64
// string. Malformed input yields a *DecodeError and no partial data.
func DecodeBase64(s string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		var corrupt base64.CorruptInputError
		if errors.As(err, &corrupt) {
			return nil, &DecodeError{Offset: int64(corrupt), Err: err}
		}
		return nil, &DecodeError{Err: err}
	}
	return data, nil
}

// EncodeBase64 is the inverse of DecodeBase64.
func EncodeBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// DataURI is a parsed "data:<mime>;base64,<payload>" reference.
type DataURI struct {
	MIMEType string
	Data     []byte
}

// ParseDataURI splits a base64 data URI and decodes its payload.
func ParseDataURI(uri string) (*DataURI, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, fmt.Errorf("audio: not a data URI")
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, fmt.Errorf("audio: data URI has no payload")
	}
	mimeType, ok := strings.CutSuffix(header, ";base64")
	if !ok {
		return nil, fmt.Errorf("audio: data URI is not base64 encoded")
	}
	data, err := DecodeBase64(payload)
	if err != nil {
		return nil, err
	}
	return &DataURI{MIMEType: mimeType, Data: data}, nil
}

// Format returns the PCM format declared by the URI's MIME parameters,
// falling back to def for anything not declared.
func (d *DataURI) Format(def Format) (Format, error) {
	return ParseMIMEType(d.MIMEType, def)
}

// EncodeDataURI builds a base64 data URI.
func EncodeDataURI(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + EncodeBase64(data)
}

// DecodeSpeech parses a speech data URI and decodes it into a Buffer.
// Undeclared parameters default to def.
func DecodeSpeech(uri string, def Format) (*Buffer, error) {
	d, err := ParseDataURI(uri)
	if err != nil {
		return nil, err
	}
	f, err := d.Format(def)
	if err != nil {
		return nil, err
	}
	return DecodePCM(d.Data, f.SampleRate, f.Channels)
}
