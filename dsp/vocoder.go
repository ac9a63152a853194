// SPDX-License-Identifier: EPL-2.0

package dsp

import (
	"math"
	"math/cmplx"
)

// PhaseAdvance returns the expected phase advance of every bin of an
// nFFT-point transform over one hop.
func PhaseAdvance(hop, nFFT int) []float64 {
	advance := make([]float64, nFFT/2+1)
	for k := range advance {
		advance[k] = 2 * math.Pi * float64(hop) * float64(k) / float64(nFFT)
	}
	return advance
}

// PhaseVocoder time-stretches an STFT by rate: rate > 1 shortens, rate < 1
// lengthens. Magnitudes are linearly interpolated between neighbouring
// frames while each bin's phase is accumulated from advance (see
// PhaseAdvance) plus the wrapped measured deviation.
func PhaseVocoder(spec [][]complex128, rate float64, advance []float64) [][]complex128 {
	if len(spec) == 0 || rate <= 0 {
		return nil
	}
	bins := len(spec[0])

	steps := int(math.Ceil(float64(len(spec)) / rate))
	out := make([][]complex128, 0, steps)

	phase := make([]float64, bins)
	for k := range phase {
		phase[k] = cmplx.Phase(spec[0][k])
	}

	column := func(i int, k int) complex128 {
		if i < len(spec) {
			return spec[i][k]
		}
		return 0
	}

	for step := 0.0; step < float64(len(spec)); step += rate {
		i := int(step)
		alpha := step - float64(i)

		frame := make([]complex128, bins)
		for k := range frame {
			c0, c1 := column(i, k), column(i+1, k)
			mag := (1-alpha)*cmplx.Abs(c0) + alpha*cmplx.Abs(c1)
			frame[k] = cmplx.Rect(mag, phase[k])

			dphase := cmplx.Phase(c1) - cmplx.Phase(c0) - advance[k]
			dphase -= 2 * math.Pi * math.Round(dphase/(2*math.Pi))
			phase[k] += advance[k] + dphase
		}
		out = append(out, frame)
	}

	return out
}
