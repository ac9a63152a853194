// SPDX-License-Identifier: EPL-2.0

package perturb

import (
	"math"
	"math/rand/v2"

	"github.com/ik5/audperturb/audio"
)

type ShiftOptions struct {
	MinShiftMS float64 `yaml:"min_shift_ms"`
	MaxShiftMS float64 `yaml:"max_shift_ms"`
	Seed       *uint64 `yaml:"seed"`
}

func DefaultShiftOptions() ShiftOptions {
	return ShiftOptions{MinShiftMS: -5, MaxShiftMS: 5}
}

// Shift slides the samples by a random number of milliseconds. A positive
// shift moves content towards the start. Vacated samples become zero and
// nothing wraps around. Shifts longer than the segment are skipped.
type Shift struct {
	Identity
	opts ShiftOptions
	rng  *rand.Rand
}

func NewShift(opts ShiftOptions, rng *rand.Rand) *Shift {
	return &Shift{opts: opts, rng: newRand(rng, opts.Seed)}
}

func (s *Shift) Perturb(seg *audio.Segment, _ int) error {
	ms := uniform(s.rng, s.opts.MinShiftMS, s.opts.MaxShiftMS)
	if math.Abs(ms)/1000 > seg.Duration() {
		return nil
	}

	shiftSamples(seg.Samples(), int(math.Floor(ms*float64(seg.SampleRate())/1000)))
	return nil
}

func shiftSamples(samples []float32, shift int) {
	n := len(samples)
	switch {
	case shift > 0:
		shift = min(shift, n)
		copy(samples[:n-shift], samples[shift:])
		clear(samples[n-shift:])
	case shift < 0:
		shift = min(-shift, n)
		copy(samples[shift:], samples[:n-shift])
		clear(samples[:shift])
	}
}
