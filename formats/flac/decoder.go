// SPDX-License-Identifier: EPL-2.0

package flac

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/audperturb/audio"
	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
)

var ErrUnsupportedBitDepth = errors.New("unsupported FLAC bit depth")

// frameParser is the subset of flac.Stream used by source.
type frameParser interface {
	ParseNext() (*frame.Frame, error)
	Close() error
}

type source struct {
	stream     frameParser
	sampleRate int
	channels   int
	scale      float32

	// pending holds interleaved samples of the last parsed frame not yet
	// handed out.
	pending  []float32
	finished bool
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) BufSize() int    { return 4096 }

func (s *source) Close() error {
	if err := s.stream.Close(); err != nil {
		return fmt.Errorf("close flac stream: %w", err)
	}
	return nil
}

func (s *source) ReadSamples(dst []float32) (int, error) {
	written := 0

	for written < len(dst) {
		if len(s.pending) == 0 {
			if s.finished {
				break
			}
			if err := s.parseFrame(); err != nil {
				return written, err
			}
			continue
		}

		n := copy(dst[written:], s.pending)
		s.pending = s.pending[n:]
		written += n
	}

	if s.finished && len(s.pending) == 0 {
		return written, io.EOF
	}

	return written, nil
}

func (s *source) parseFrame() error {
	f, err := s.stream.ParseNext()
	if errors.Is(err, io.EOF) {
		s.finished = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("parse flac frame: %w", err)
	}

	block := int(f.BlockSize)
	if cap(s.pending) < block*s.channels {
		s.pending = make([]float32, block*s.channels)
	}
	s.pending = s.pending[:block*s.channels]

	for i := range block {
		for ch := range s.channels {
			s.pending[i*s.channels+ch] = float32(f.Subframes[ch].Samples[i]) / s.scale
		}
	}

	return nil
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	stream, err := flac.New(r)
	if err != nil {
		return nil, fmt.Errorf("open flac stream: %w", err)
	}

	bits := int(stream.Info.BitsPerSample)
	if bits < 4 || bits > 32 {
		_ = stream.Close()
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bits)
	}

	return &source{
		stream:     stream,
		sampleRate: int(stream.Info.SampleRate),
		channels:   int(stream.Info.NChannels),
		scale:      float32(int64(1) << (bits - 1)),
	}, nil
}
