// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/audperturb/audio"
	"github.com/jfreymuth/oggvorbis"
)

// oggReader is the subset of oggvorbis.Reader used by source.
type oggReader interface {
	SampleRate() int
	Channels() int
	// Read returns the number of interleaved values decoded.
	Read([]float32) (int, error)
}

type source struct {
	dec        oggReader
	sampleRate int
	channels   int
	finished   bool
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) Close() error    { return nil }
func (s *source) BufSize() int    { return 4096 }

func (s *source) ReadSamples(dst []float32) (int, error) {
	if s.finished {
		return 0, io.EOF
	}

	// Only whole frames, so channels stay aligned across calls.
	want := len(dst) - len(dst)%s.channels
	if want == 0 {
		return 0, nil
	}

	n, err := s.dec.Read(dst[:want])
	if errors.Is(err, io.EOF) {
		s.finished = true
		return n, io.EOF
	}
	if err != nil {
		return n, fmt.Errorf("decode vorbis: %w", err)
	}

	return n, nil
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("open ogg vorbis stream: %w", err)
	}

	return newSource(dec), nil
}

func newSource(dec oggReader) *source {
	return &source{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		channels:   dec.Channels(),
	}
}
