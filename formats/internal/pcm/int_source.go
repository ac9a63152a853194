// SPDX-License-Identifier: EPL-2.0

// Package pcm adapts go-audio integer PCM decoders to audio.Source.
package pcm

import (
	"errors"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
)

var ErrUnsupportedBitDepth = errors.New("unsupported PCM bit depth")

// Reader is the subset of the go-audio wav and aiff decoders used here.
type Reader interface {
	Format() *goaudio.Format
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// IntSource converts integer PCM from a Reader into float32 samples.
type IntSource struct {
	dec        Reader
	sampleRate int
	channels   int
	scale      float32
	// bias is subtracted before scaling; 8-bit WAV data is unsigned.
	bias   int
	intBuf *goaudio.IntBuffer
	eof    bool
}

// NewIntSource validates bitDepth and wraps dec.
func NewIntSource(dec Reader, sampleRate, channels, bitDepth int, unsigned8 bool) (*IntSource, error) {
	var scale float32
	switch bitDepth {
	case 8:
		scale = 128
	case 16:
		scale = 32768
	case 24:
		scale = 8388608
	case 32:
		scale = 2147483648
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
	}

	bias := 0
	if bitDepth == 8 && unsigned8 {
		bias = 128
	}

	return &IntSource{
		dec:        dec,
		sampleRate: sampleRate,
		channels:   channels,
		scale:      scale,
		bias:       bias,
	}, nil
}

func (s *IntSource) SampleRate() int { return s.sampleRate }
func (s *IntSource) Channels() int   { return s.channels }
func (s *IntSource) Close() error    { return nil }
func (s *IntSource) BufSize() int {
	if s.intBuf != nil {
		return cap(s.intBuf.Data)
	}
	return 4096
}

func (s *IntSource) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	if s.eof {
		return 0, io.EOF
	}

	if s.intBuf == nil || cap(s.intBuf.Data) < len(dst) {
		s.intBuf = &goaudio.IntBuffer{
			Data:   make([]int, len(dst)),
			Format: s.dec.Format(),
		}
	} else {
		s.intBuf.Data = s.intBuf.Data[:len(dst)]
	}

	n, err := s.dec.PCMBuffer(s.intBuf)
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("read pcm: %w", err)
	}

	for i := range n {
		dst[i] = float32(s.intBuf.Data[i]-s.bias) / s.scale
	}

	// A short read means the data chunk is exhausted.
	if n < len(dst) || errors.Is(err, io.EOF) {
		s.eof = true
		return n, io.EOF
	}

	return n, nil
}
