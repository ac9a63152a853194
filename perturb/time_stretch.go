// SPDX-License-Identifier: EPL-2.0

package perturb

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/ik5/audperturb/audio"
	"github.com/ik5/audperturb/dsp"
)

type TimeStretchOptions struct {
	MinSpeedRate float64 `yaml:"min_speed_rate"`
	MaxSpeedRate float64 `yaml:"max_speed_rate"`
	NumRates     int     `yaml:"num_rates"`
	NFFT         int     `yaml:"n_fft"`
	Seed         *uint64 `yaml:"seed"`
}

func DefaultTimeStretchOptions() TimeStretchOptions {
	return TimeStretchOptions{
		MinSpeedRate: 0.9,
		MaxSpeedRate: 1.1,
		NumRates:     5,
		NFFT:         512,
	}
}

// TimeStretch changes duration while keeping pitch, using a phase vocoder.
// Slowing down (rate < 1) doubles the FFT size and hop.
type TimeStretch struct {
	rates rateSelector
	rng   *rand.Rand

	nFFT int
	hop  int
	// Phase advance per bin for the base and the doubled transform.
	advanceFast []float64
	advanceSlow []float64
}

func NewTimeStretch(opts TimeStretchOptions, rng *rand.Rand) (*TimeStretch, error) {
	if opts.NFFT < 2 || opts.NFFT%2 != 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidFFTSize, opts.NFFT)
	}

	rates, err := newRateSelector(opts.MinSpeedRate, opts.MaxSpeedRate, opts.NumRates)
	if err != nil {
		return nil, err
	}

	hop := opts.NFFT / 2
	return &TimeStretch{
		rates:       rates,
		rng:         newRand(rng, opts.Seed),
		nFFT:        opts.NFFT,
		hop:         hop,
		advanceFast: dsp.PhaseAdvance(hop, opts.NFFT),
		advanceSlow: dsp.PhaseAdvance(2*hop, 2*opts.NFFT),
	}, nil
}

func (t *TimeStretch) MaxAugmentationLength(length float64) float64 {
	return t.rates.maxLength(length)
}

func (t *TimeStretch) Perturb(seg *audio.Segment, _ int) error {
	rate := t.rates.pick(t.rng)
	if rate == 1.0 {
		return nil
	}

	nFFT, hop, advance := t.nFFT, t.hop, t.advanceFast
	if rate < 1.0 {
		nFFT, hop, advance = 2*t.nFFT, 2*t.hop, t.advanceSlow
	}

	length := int(math.Round(float64(seg.NumSamples()) / rate))
	if length <= 0 {
		return nil
	}

	spec, err := dsp.STFT(toFloat64(seg.Samples()), nFFT, hop)
	if err != nil {
		return fmt.Errorf("time stretch: %w", err)
	}
	stretched := dsp.PhaseVocoder(spec, rate, advance)
	out, err := dsp.ISTFT(stretched, nFFT, hop, length)
	if err != nil {
		return fmt.Errorf("time stretch: %w", err)
	}

	seg.SetSamples(toFloat32(nil, out))
	return nil
}
