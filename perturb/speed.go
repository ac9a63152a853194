// SPDX-License-Identifier: EPL-2.0

package perturb

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/ik5/audperturb/audio"
	"github.com/ik5/audperturb/dsp"
)

// Resample algorithms accepted by Speed.
const (
	ResampleKaiserBest = "kaiser_best"
	ResampleKaiserFast = "kaiser_fast"
	ResampleFFT        = "fft"
	ResampleScipy      = "scipy"
)

type SpeedOptions struct {
	// SR is the rate the segment is resampled from; zero uses the
	// segment's own rate.
	SR           int     `yaml:"sr"`
	ResampleType string  `yaml:"resample_type"`
	MinSpeedRate float64 `yaml:"min_speed_rate"`
	MaxSpeedRate float64 `yaml:"max_speed_rate"`
	NumRates     int     `yaml:"num_rates"`
	Seed         *uint64 `yaml:"seed"`
}

func DefaultSpeedOptions() SpeedOptions {
	return SpeedOptions{
		ResampleType: ResampleKaiserBest,
		MinSpeedRate: 0.9,
		MaxSpeedRate: 1.1,
		NumRates:     5,
	}
}

// Speed changes duration and pitch together by resampling the waveform to
// round(sr*rate) while leaving the nominal sample rate unchanged.
type Speed struct {
	opts  SpeedOptions
	rates rateSelector
	rng   *rand.Rand
}

func NewSpeed(opts SpeedOptions, rng *rand.Rand) (*Speed, error) {
	switch opts.ResampleType {
	case ResampleKaiserBest, ResampleKaiserFast, ResampleFFT, ResampleScipy:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedResampleType, opts.ResampleType)
	}
	if opts.SR < 0 {
		return nil, fmt.Errorf("%w: sr %d", ErrInvalidConfig, opts.SR)
	}

	rates, err := newRateSelector(opts.MinSpeedRate, opts.MaxSpeedRate, opts.NumRates)
	if err != nil {
		return nil, err
	}

	return &Speed{opts: opts, rates: rates, rng: newRand(rng, opts.Seed)}, nil
}

func (s *Speed) MaxAugmentationLength(length float64) float64 {
	return s.rates.maxLength(length)
}

func (s *Speed) Perturb(seg *audio.Segment, _ int) error {
	rate := s.rates.pick(s.rng)
	if rate == 1.0 {
		return nil
	}

	sr := s.opts.SR
	if sr == 0 {
		sr = seg.SampleRate()
	}
	newSR := int(math.Round(float64(sr) * rate))
	if newSR <= 0 {
		return nil
	}

	switch s.opts.ResampleType {
	case ResampleKaiserFast:
		out, err := audio.ResampleSamples(seg.Samples(), sr, newSR)
		if err != nil {
			return fmt.Errorf("speed resample: %w", err)
		}
		if len(out) == 0 {
			return nil
		}
		seg.SetSamples(out)
	default:
		num := int(math.Round(float64(seg.NumSamples()) * float64(newSR) / float64(sr)))
		if num <= 0 {
			return nil
		}
		out := dsp.ResampleFFT(toFloat64(seg.Samples()), num)
		seg.SetSamples(toFloat32(nil, out))
	}

	return nil
}
