// Package audio packages raw PCM samples as WAV files.
package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/google/renameio/v2"
)

// HeaderSize is the size of the canonical RIFF/WAVE header written by Header.
const HeaderSize = 44

var (
	// ErrInvalidFormat is returned when a Format cannot describe PCM audio.
	ErrInvalidFormat = errors.New("invalid audio format")

	// ErrNotWAV is returned by ReadHeader for input that is not a canonical PCM WAV header.
	ErrNotWAV = errors.New("not a PCM WAV file")
)

// Format describes interleaved little-endian PCM samples.
type Format struct {
	Channels    int
	SampleRate  int
	SampleWidth int // bytes per sample
}

// Validate checks that the format can be encoded in a WAV header without
// truncating any field.
func (f Format) Validate() error {
	switch {
	case f.Channels <= 0 || f.Channels > math.MaxUint16:
		return fmt.Errorf("%w: channels %d", ErrInvalidFormat, f.Channels)
	case f.SampleRate <= 0 || int64(f.SampleRate) > math.MaxUint32:
		return fmt.Errorf("%w: sample rate %d", ErrInvalidFormat, f.SampleRate)
	case f.SampleWidth < 1 || f.SampleWidth > 4:
		return fmt.Errorf("%w: sample width %d", ErrInvalidFormat, f.SampleWidth)
	case int64(f.BlockAlign()) > math.MaxUint16:
		return fmt.Errorf("%w: block align %d", ErrInvalidFormat, f.BlockAlign())
	case int64(f.SampleRate)*int64(f.BlockAlign()) > math.MaxUint32:
		return fmt.Errorf("%w: byte rate %d", ErrInvalidFormat, int64(f.SampleRate)*int64(f.BlockAlign()))
	}
	return nil
}

// MaxDataSize is the largest PCM payload whose RIFF size fits in 32 bits.
const MaxDataSize = math.MaxUint32 - 36

func checkDataSize(n int64) error {
	if n > MaxDataSize {
		return fmt.Errorf("%w: %d bytes of PCM exceed the WAV size limit", ErrInvalidFormat, n)
	}
	return nil
}

// ByteRate is SampleRate * Channels * SampleWidth.
func (f Format) ByteRate() int { return f.SampleRate * f.Channels * f.SampleWidth }

// BlockAlign is Channels * SampleWidth.
func (f Format) BlockAlign() int { return f.Channels * f.SampleWidth }

// BitsPerSample is SampleWidth * 8.
func (f Format) BitsPerSample() int { return f.SampleWidth * 8 }

// Header returns the 44-byte header for n bytes of PCM data in format f.
func Header(n int, f Format) []byte {
	h := make([]byte, HeaderSize)
	le := binary.LittleEndian

	copy(h[0:4], "RIFF")
	le.PutUint32(h[4:8], uint32(36+n))
	copy(h[8:12], "WAVE")
	copy(h[12:16], "fmt ")
	le.PutUint32(h[16:20], 16)
	le.PutUint16(h[20:22], 1) // PCM
	le.PutUint16(h[22:24], uint16(f.Channels))
	le.PutUint32(h[24:28], uint32(f.SampleRate))
	le.PutUint32(h[28:32], uint32(f.ByteRate()))
	le.PutUint16(h[32:34], uint16(f.BlockAlign()))
	le.PutUint16(h[34:36], uint16(f.BitsPerSample()))
	copy(h[36:40], "data")
	le.PutUint32(h[40:44], uint32(n))

	return h
}

// Encode returns a complete WAV file: header followed by pcm.
func Encode(pcm []byte, f Format) ([]byte, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if err := checkDataSize(int64(len(pcm))); err != nil {
		return nil, err
	}
	out := make([]byte, 0, HeaderSize+len(pcm))
	out = append(out, Header(len(pcm), f)...)
	return append(out, pcm...), nil
}

// WriteFile encodes pcm and writes it to path atomically: readers see either
// the previous file or the complete new one.
func WriteFile(path string, pcm []byte, f Format) error {
	data, err := Encode(pcm, f)
	if err != nil {
		return err
	}
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// HeaderInfo is the decoded content of a canonical WAV header.
type HeaderInfo struct {
	Format
	RIFFSize      uint32
	AudioFormat   uint16
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	DataSize      uint32
}

// ReadHeader parses the 44-byte canonical header at the start of r.
func ReadHeader(r io.Reader) (HeaderInfo, error) {
	h := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, h); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return HeaderInfo{}, fmt.Errorf("%w: short header", ErrNotWAV)
		}
		return HeaderInfo{}, err
	}

	if !bytes.Equal(h[0:4], []byte("RIFF")) || !bytes.Equal(h[8:12], []byte("WAVE")) ||
		!bytes.Equal(h[12:16], []byte("fmt ")) || !bytes.Equal(h[36:40], []byte("data")) {
		return HeaderInfo{}, ErrNotWAV
	}

	le := binary.LittleEndian
	info := HeaderInfo{
		RIFFSize:      le.Uint32(h[4:8]),
		AudioFormat:   le.Uint16(h[20:22]),
		ByteRate:      le.Uint32(h[28:32]),
		BlockAlign:    le.Uint16(h[32:34]),
		BitsPerSample: le.Uint16(h[34:36]),
		DataSize:      le.Uint32(h[40:44]),
	}
	info.Channels = int(le.Uint16(h[22:24]))
	info.SampleRate = int(le.Uint32(h[24:28]))
	info.SampleWidth = int(info.BitsPerSample) / 8

	if le.Uint32(h[16:20]) != 16 || info.AudioFormat != 1 {
		return HeaderInfo{}, fmt.Errorf("%w: unsupported fmt chunk", ErrNotWAV)
	}
	return info, nil
}

// ReadFileHeader opens path and parses its header.
func ReadFileHeader(path string) (HeaderInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return HeaderInfo{}, err
	}
	defer f.Close()

	info, err := ReadHeader(f)
	if err != nil {
		return HeaderInfo{}, fmt.Errorf("%s: %w", path, err)
	}
	return info, nil
}

// Duration is the playing time of the data chunk in seconds.
func (h HeaderInfo) Duration() float64 {
	if h.ByteRate == 0 {
		return 0
	}
	return float64(h.DataSize) / float64(h.ByteRate)
}
