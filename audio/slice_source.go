// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"
)

// SliceSource serves interleaved in-memory samples as a Source.
type SliceSource struct {
	samples    []float32
	sampleRate int
	channels   int
	offset     int
}

func NewSliceSource(samples []float32, sampleRate, channels int) (*SliceSource, error) {
	if sampleRate <= 0 {
		return nil, ErrInvalidSampleRate
	}
	if channels <= 0 {
		return nil, ErrInvalidChannels
	}

	return &SliceSource{samples: samples, sampleRate: sampleRate, channels: channels}, nil
}

func (s *SliceSource) SampleRate() int { return s.sampleRate }
func (s *SliceSource) Channels() int   { return s.channels }
func (s *SliceSource) BufSize() int    { return 4096 }
func (s *SliceSource) Close() error    { return nil }

func (s *SliceSource) ReadSamples(dst []float32) (int, error) {
	if s.offset >= len(s.samples) {
		return 0, io.EOF
	}

	n := copy(dst, s.samples[s.offset:])
	s.offset += n
	if s.offset >= len(s.samples) {
		return n, io.EOF
	}

	return n, nil
}

// ReadAll drains src and returns every sample it produced.
// sizeHint pre-sizes the result and may be zero.
func ReadAll(src Source, sizeHint int) ([]float32, error) {
	bufSize := src.BufSize()
	if bufSize <= 0 {
		bufSize = 4096
	}
	// Keep whole frames per read so resamplers accept the buffer.
	if ch := src.Channels(); ch > 1 {
		bufSize -= bufSize % ch
		if bufSize == 0 {
			bufSize = ch
		}
	}

	out := make([]float32, 0, max(sizeHint, bufSize))
	buf := make([]float32, bufSize)

	for {
		n, err := src.ReadSamples(buf)
		if n > 0 {
			out = append(out, buf[:n]...)
		}
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read samples: %w", err)
		}
	}
}
