// SPDX-License-Identifier: EPL-2.0

package perturb

import (
	"math/rand/v2"

	"github.com/ik5/audperturb/audio"
)

// Perturbation mutates a segment in place.
//
// origRate is the sample rate the audio was originally recorded at, or zero
// when unknown; noise sources use it to band-limit their candidates the same
// way. Degenerate draws (identity rates, oversized shifts, silent noise) are
// no-ops. Errors only report failures to fetch auxiliary audio.
type Perturbation interface {
	Perturb(seg *audio.Segment, origRate int) error
	// MaxAugmentationLength bounds the duration after perturbation.
	MaxAugmentationLength(length float64) float64
}

// Identity supplies the default MaxAugmentationLength for perturbations
// that never lengthen their input. Embed it.
type Identity struct{}

func (Identity) MaxAugmentationLength(length float64) float64 { return length }

// newRand returns rng when set, else a PCG source seeded from seed or, when
// seed is nil, from the runtime's entropy.
func newRand(rng *rand.Rand, seed *uint64) *rand.Rand {
	if rng != nil {
		return rng
	}
	if seed != nil {
		return rand.New(rand.NewPCG(*seed, *seed))
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// uniform draws from [lo, hi). lo == hi returns lo; reversed bounds are
// accepted.
func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

func toFloat64(samples []float32) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = float64(s)
	}
	return out
}

func toFloat32(dst []float32, samples []float64) []float32 {
	if cap(dst) < len(samples) {
		dst = make([]float32, len(samples))
	}
	dst = dst[:len(samples)]
	for i, s := range samples {
		dst[i] = float32(s)
	}
	return dst
}
