// SPDX-License-Identifier: EPL-2.0

package perturb

import (
	"math/rand/v2"

	"github.com/ik5/audperturb/audio"
)

type GainOptions struct {
	MinGainDBFS float64 `yaml:"min_gain_dbfs"`
	MaxGainDBFS float64 `yaml:"max_gain_dbfs"`
	Seed        *uint64 `yaml:"seed"`
}

func DefaultGainOptions() GainOptions {
	return GainOptions{MinGainDBFS: -10, MaxGainDBFS: 10}
}

// Gain scales the segment by a dB value drawn from [min, max].
type Gain struct {
	Identity
	opts GainOptions
	rng  *rand.Rand
}

func NewGain(opts GainOptions, rng *rand.Rand) *Gain {
	return &Gain{opts: opts, rng: newRand(rng, opts.Seed)}
}

func (g *Gain) Perturb(seg *audio.Segment, _ int) error {
	seg.GainDB(uniform(g.rng, g.opts.MinGainDBFS, g.opts.MaxGainDBFS))
	return nil
}
