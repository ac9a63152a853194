// SPDX-License-Identifier: EPL-2.0

package perturb

import (
	"fmt"
	"math/rand/v2"

	"github.com/ik5/audperturb/audio"
	"github.com/ik5/audperturb/noise"
)

type RirAndNoiseOptions struct {
	RirManifestPath string     `yaml:"rir_manifest_path"`
	RirTarFilepaths StringList `yaml:"rir_tar_filepaths"`
	RirShuffleN     int        `yaml:"rir_shuffle_n"`

	NoiseManifestPath string     `yaml:"noise_manifest_path"`
	NoiseTarFilepaths StringList `yaml:"noise_tar_filepaths"`
	NoiseShuffleN     int        `yaml:"noise_shuffle_n"`
	MinSNRDB          float64    `yaml:"min_snr_db"`
	MaxSNRDB          float64    `yaml:"max_snr_db"`
	MaxGainDB         float64    `yaml:"max_gain_db"`
	ApplyNoiseRir     bool       `yaml:"apply_noise_rir"`
	MaxAdditions      int        `yaml:"max_additions"`
	MaxDuration       float64    `yaml:"max_duration"`

	BgNoiseManifestPath string     `yaml:"bg_noise_manifest_path"`
	BgNoiseTarFilepaths StringList `yaml:"bg_noise_tar_filepaths"`
	BgNoiseShuffleN     int        `yaml:"bg_noise_shuffle_n"`
	BgMinSNRDB          float64    `yaml:"bg_min_snr_db"`
	BgMaxSNRDB          float64    `yaml:"bg_max_snr_db"`
	BgMaxGainDB         float64    `yaml:"bg_max_gain_db"`

	Seed *uint64 `yaml:"seed"`
}

func DefaultRirAndNoiseOptions() RirAndNoiseOptions {
	return RirAndNoiseOptions{
		RirShuffleN:     100,
		NoiseShuffleN:   100,
		MinSNRDB:        0,
		MaxSNRDB:        40,
		MaxGainDB:       300,
		MaxAdditions:    1,
		MaxDuration:     5,
		BgNoiseShuffleN: 100,
		BgMinSNRDB:      10,
		BgMaxSNRDB:      40,
		BgMaxGainDB:     300,
	}
}

func (o RirAndNoiseOptions) rirSource() SourceOptions {
	return SourceOptions{
		ManifestPath:      o.RirManifestPath,
		AudioTarFilepaths: o.RirTarFilepaths,
		ShuffleN:          o.RirShuffleN,
	}
}

func (o RirAndNoiseOptions) noiseSource() SourceOptions {
	return SourceOptions{
		ManifestPath:      o.NoiseManifestPath,
		AudioTarFilepaths: o.NoiseTarFilepaths,
		ShuffleN:          o.NoiseShuffleN,
	}
}

func (o RirAndNoiseOptions) bgSource() SourceOptions {
	return SourceOptions{
		ManifestPath:      o.BgNoiseManifestPath,
		AudioTarFilepaths: o.BgNoiseTarFilepaths,
		ShuffleN:          o.BgNoiseShuffleN,
	}
}

// RirAndNoise reverberates the segment, then adds short foreground noise
// events and, when a background source is set, an ambient noise floor.
// Both noise layers are levelled against the dry segment.
type RirAndNoise struct {
	Identity
	rir *Impulse
	fg  *Noise
	bg  *Noise

	applyNoiseRir bool
	maxAdditions  int
	maxDuration   float64
}

// NewRirAndNoise builds the composite. bg may be nil. All stages draw from
// the same random source.
func NewRirAndNoise(rir, fg, bg noise.Source, opts RirAndNoiseOptions, rng *rand.Rand) (*RirAndNoise, error) {
	rng = newRand(rng, opts.Seed)

	impulse, err := NewImpulse(rir, rng)
	if err != nil {
		return nil, fmt.Errorf("rir: %w", err)
	}
	fgNoise, err := NewNoise(fg, NoiseOptions{
		MinSNRDB:  opts.MinSNRDB,
		MaxSNRDB:  opts.MaxSNRDB,
		MaxGainDB: opts.MaxGainDB,
	}, rng)
	if err != nil {
		return nil, fmt.Errorf("foreground noise: %w", err)
	}

	r := &RirAndNoise{
		rir:           impulse,
		fg:            fgNoise,
		applyNoiseRir: opts.ApplyNoiseRir,
		maxAdditions:  opts.MaxAdditions,
		maxDuration:   opts.MaxDuration,
	}

	if bg != nil {
		r.bg, err = NewNoise(bg, NoiseOptions{
			MinSNRDB:  opts.BgMinSNRDB,
			MaxSNRDB:  opts.BgMaxSNRDB,
			MaxGainDB: opts.BgMaxGainDB,
		}, rng)
		if err != nil {
			return nil, fmt.Errorf("background noise: %w", err)
		}
	}

	return r, nil
}

func (r *RirAndNoise) Perturb(seg *audio.Segment, origRate int) error {
	ref := seg.RMSDB()

	if err := r.rir.Perturb(seg, origRate); err != nil {
		return err
	}

	ns, err := r.fg.OneNoiseSample(seg.SampleRate(), origRate)
	if err != nil {
		return err
	}
	if r.applyNoiseRir {
		if err := r.rir.Perturb(ns, origRate); err != nil {
			return err
		}
	}
	r.fg.PerturbWithPointNoise(seg, ns, ref, r.maxDuration, r.maxAdditions)

	if r.bg != nil {
		return r.bg.PerturbWithRMS(seg, origRate, ref)
	}
	return nil
}
