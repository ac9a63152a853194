// SPDX-License-Identifier: EPL-2.0

package perturb

import (
	"fmt"
	"math/rand/v2"

	"github.com/ik5/audperturb/audio"
	"github.com/ik5/audperturb/dsp"
	"github.com/ik5/audperturb/noise"
	"github.com/ik5/audperturb/utils"
)

// SourceOptions locates the auxiliary audio of Impulse and Noise.
type SourceOptions struct {
	ManifestPath      string     `yaml:"manifest_path"`
	AudioTarFilepaths StringList `yaml:"audio_tar_filepaths"`
	ShuffleN          int        `yaml:"shuffle_n"`
	ShardsPerWorker   int        `yaml:"shards_per_worker"`
	MinDuration       float64    `yaml:"min_duration"`
	MaxDuration       float64    `yaml:"max_duration"`
}

func (o SourceOptions) open(rng *rand.Rand, cfg Config) (noise.Source, error) {
	src, err := noise.New(noise.Options{
		ManifestPath:    o.ManifestPath,
		TarPaths:        o.AudioTarFilepaths,
		ShuffleN:        o.ShuffleN,
		ShardsPerWorker: o.ShardsPerWorker,
		MinDuration:     o.MinDuration,
		MaxDuration:     o.MaxDuration,
		Worker:          cfg.Worker,
		Rand:            rng,
		Logger:          cfg.logger(),
		Metrics:         cfg.Metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoSource, err)
	}
	return src, nil
}

type ImpulseOptions struct {
	SourceOptions `yaml:",inline"`
	Seed          *uint64 `yaml:"seed"`
}

func DefaultImpulseOptions() ImpulseOptions {
	return ImpulseOptions{SourceOptions: SourceOptions{ShuffleN: 100}}
}

// Impulse reverberates the segment with a room impulse response. The
// response is trimmed to start at its peak and the convolution is cut back
// to the input length.
type Impulse struct {
	Identity
	src noise.Source
	rng *rand.Rand
}

func NewImpulse(src noise.Source, rng *rand.Rand) (*Impulse, error) {
	if src == nil {
		return nil, ErrNoSource
	}
	return &Impulse{src: src, rng: newRand(rng, nil)}, nil
}

func (p *Impulse) Perturb(seg *audio.Segment, _ int) error {
	ir, err := p.src.Sample(p.rng, seg.SampleRate(), 0)
	if err != nil {
		return fmt.Errorf("impulse: %w", err)
	}

	reverberate(seg, ir.Samples())
	return nil
}

func reverberate(seg *audio.Segment, ir []float32) {
	peak := utils.Argmax(ir)
	if peak < 0 || seg.NumSamples() == 0 {
		return
	}

	n := seg.NumSamples()
	wet := dsp.FFTConvolve(toFloat64(seg.Samples()), toFloat64(ir[peak:]))
	seg.SetSamples(toFloat32(seg.Samples(), wet[:n]))
}
