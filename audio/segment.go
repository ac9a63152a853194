// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"math"

	"github.com/ik5/audperturb/utils"
)

// Segment is one mono waveform and its sample rate. Perturbations mutate the
// samples in place or replace them; the sample rate never changes after
// construction.
type Segment struct {
	samples    []float32
	sampleRate int
}

// NewSegment takes ownership of samples.
func NewSegment(samples []float32, sampleRate int) (*Segment, error) {
	if len(samples) == 0 {
		return nil, ErrEmptySegment
	}
	if sampleRate <= 0 {
		return nil, ErrInvalidSampleRate
	}

	return &Segment{samples: samples, sampleRate: sampleRate}, nil
}

func (s *Segment) SampleRate() int { return s.sampleRate }
func (s *Segment) NumSamples() int { return len(s.samples) }

// Samples returns the owned sample slice for in-place edits.
func (s *Segment) Samples() []float32 { return s.samples }

// SetSamples replaces the waveform. The length may change.
func (s *Segment) SetSamples(samples []float32) { s.samples = samples }

// Duration in seconds.
func (s *Segment) Duration() float64 {
	return float64(len(s.samples)) / float64(s.sampleRate)
}

// RMSDB is the RMS level in dBFS; an all-zero segment reports -Inf.
func (s *Segment) RMSDB() float64 {
	return utils.RMSDB(s.samples)
}

// GainDB scales every sample by 10^(gain/20).
func (s *Segment) GainDB(gain float64) {
	g := float32(utils.DBToAmplitude(gain))
	for i := range s.samples {
		s.samples[i] *= g
	}
}

func (s *Segment) Clone() *Segment {
	return &Segment{
		samples:    append([]float32(nil), s.samples...),
		sampleRate: s.sampleRate,
	}
}

// Subsegment keeps the samples between start and end seconds. Negative
// values count from the end; end <= 0 means the end of the segment.
func (s *Segment) Subsegment(start, end float64) {
	dur := s.Duration()
	if start < 0 {
		start += dur
	}
	if end <= 0 {
		end += dur
	}
	start = math.Max(0, start)
	end = math.Min(dur, end)
	if end <= start {
		return
	}

	from := int(math.Round(start * float64(s.sampleRate)))
	to := min(int(math.Round(end*float64(s.sampleRate))), len(s.samples))
	if to <= from {
		return
	}
	s.samples = s.samples[from:to]
}
