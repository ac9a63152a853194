// SPDX-License-Identifier: EPL-2.0

package perturb

import (
	"math/rand/v2"

	"github.com/ik5/audperturb/audio"
	"github.com/ik5/audperturb/utils"
)

type WhiteNoiseOptions struct {
	MinLevel int     `yaml:"min_level"`
	MaxLevel int     `yaml:"max_level"`
	Seed     *uint64 `yaml:"seed"`
}

func DefaultWhiteNoiseOptions() WhiteNoiseOptions {
	return WhiteNoiseOptions{MinLevel: -90, MaxLevel: -46}
}

// WhiteNoise adds Gaussian noise at an integer dB level drawn from
// [min_level, max_level). Equal bounds always use min_level.
type WhiteNoise struct {
	Identity
	opts WhiteNoiseOptions
	rng  *rand.Rand
}

func NewWhiteNoise(opts WhiteNoiseOptions, rng *rand.Rand) *WhiteNoise {
	return &WhiteNoise{opts: opts, rng: newRand(rng, opts.Seed)}
}

func (w *WhiteNoise) level() int {
	if w.opts.MaxLevel <= w.opts.MinLevel {
		return w.opts.MinLevel
	}
	return w.opts.MinLevel + w.rng.IntN(w.opts.MaxLevel-w.opts.MinLevel)
}

func (w *WhiteNoise) Perturb(seg *audio.Segment, _ int) error {
	scale := utils.DBToAmplitude(float64(w.level()))
	samples := seg.Samples()
	for i := range samples {
		samples[i] += float32(w.rng.NormFloat64() * scale)
	}
	return nil
}
