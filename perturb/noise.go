// SPDX-License-Identifier: EPL-2.0

package perturb

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/ik5/audperturb/audio"
	"github.com/ik5/audperturb/noise"
	"github.com/ik5/audperturb/utils"
)

type NoiseOptions struct {
	SourceOptions `yaml:",inline"`
	MinSNRDB      float64 `yaml:"min_snr_db"`
	MaxSNRDB      float64 `yaml:"max_snr_db"`
	MaxGainDB     float64 `yaml:"max_gain_db"`
	Seed          *uint64 `yaml:"seed"`
}

func DefaultNoiseOptions() NoiseOptions {
	return NoiseOptions{
		SourceOptions: SourceOptions{ShuffleN: 100},
		MinSNRDB:      40,
		MaxSNRDB:      50,
		MaxGainDB:     300,
	}
}

// Noise mixes recorded noise into the segment at a random signal-to-noise
// ratio. The noise gain is min(target_rms - noise_rms - snr, max_gain_db)
// dB; silent noise adds nothing.
type Noise struct {
	Identity
	src       noise.Source
	rng       *rand.Rand
	minSNR    float64
	maxSNR    float64
	maxGainDB float64
}

// NewNoise uses src for candidates. opts only contributes the SNR range
// and gain cap.
func NewNoise(src noise.Source, opts NoiseOptions, rng *rand.Rand) (*Noise, error) {
	if src == nil {
		return nil, ErrNoSource
	}
	return &Noise{
		src:       src,
		rng:       newRand(rng, opts.Seed),
		minSNR:    opts.MinSNRDB,
		maxSNR:    opts.MaxSNRDB,
		maxGainDB: opts.MaxGainDB,
	}, nil
}

// Perturb mixes one noise sample over the start of the segment.
func (n *Noise) Perturb(seg *audio.Segment, origRate int) error {
	return n.PerturbWithRMS(seg, origRate, math.NaN())
}

// PerturbWithRMS is Perturb measuring the SNR against refRMSDB instead of
// the segment's own level. NaN means not given.
func (n *Noise) PerturbWithRMS(seg *audio.Segment, origRate int, refRMSDB float64) error {
	ns, err := n.OneNoiseSample(seg.SampleRate(), origRate)
	if err != nil {
		return err
	}
	n.PerturbWithInputNoise(seg, ns, refRMSDB)
	return nil
}

// OneNoiseSample fetches a noise candidate at targetRate.
func (n *Noise) OneNoiseSample(targetRate, origRate int) (*audio.Segment, error) {
	ns, err := n.src.Sample(n.rng, targetRate, origRate)
	if err != nil {
		return nil, fmt.Errorf("noise: %w", err)
	}
	return ns, nil
}

// gain draws an SNR and returns the amplitude factor for ns. Non-finite
// results collapse to zero.
func (n *Noise) gain(seg, ns *audio.Segment, refRMSDB float64) float64 {
	snr := uniform(n.rng, n.minSNR, n.maxSNR)
	if math.IsNaN(refRMSDB) {
		refRMSDB = seg.RMSDB()
	}

	noiseRMS := ns.RMSDB()
	if math.IsInf(noiseRMS, -1) {
		return 0
	}

	g := utils.DBToAmplitude(min(refRMSDB-noiseRMS-snr, n.maxGainDB))
	if math.IsNaN(g) || math.IsInf(g, 0) {
		return 0
	}
	return g
}

// PerturbWithInputNoise adds a window of ns the length of seg, starting at
// a random offset into ns, over the start of seg.
func (n *Noise) PerturbWithInputNoise(seg, ns *audio.Segment, refRMSDB float64) {
	g := n.gain(seg, ns, refRMSDB)

	noiseDur, dataDur := ns.Duration(), seg.Duration()
	start := max(0, uniform(n.rng, 0, noiseDur-dataDur))
	rate := float64(ns.SampleRate())
	from := int(math.Round(start * rate))
	to := int(math.Round(min(noiseDur, start+dataDur) * rate))

	addScaled(seg.Samples(), window(ns.Samples(), from, to), g)
}

// PerturbWithPointNoise adds between one and maxAdditions short slices of
// ns, each at most maxDuration seconds, at random positions in seg. Slices
// longer than seg keep their head.
func (n *Noise) PerturbWithPointNoise(seg, ns *audio.Segment, refRMSDB, maxDuration float64, maxAdditions int) {
	g := n.gain(seg, ns, refRMSDB)
	data := seg.Samples()
	if len(data) == 0 {
		return
	}

	additions := 1
	if maxAdditions > 1 {
		additions += n.rng.IntN(maxAdditions)
	}

	noiseDur := ns.Duration()
	rate := float64(ns.SampleRate())
	for range additions {
		dur := uniform(n.rng, 0, maxDuration)
		start := uniform(n.rng, 0, noiseDur)
		from := int(math.Round(start * rate))
		to := int(math.Round(min(noiseDur, start+dur) * rate))

		slice := window(ns.Samples(), from, to)
		if len(slice) > len(data) {
			slice = slice[:len(data)]
		}

		at := n.rng.IntN(len(data) - len(slice) + 1)
		addScaled(data[at:], slice, g)
	}
}

func window(samples []float32, from, to int) []float32 {
	from = min(max(from, 0), len(samples))
	to = min(max(to, from), len(samples))
	return samples[from:to]
}

// addScaled adds g*src onto dst, clipped to the shorter of the two.
func addScaled(dst, src []float32, g float64) {
	if g == 0 {
		return
	}
	gf := float32(g)
	for i := range min(len(dst), len(src)) {
		dst[i] += gf * src[i]
	}
}
