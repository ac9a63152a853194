// SPDX-License-Identifier: EPL-2.0

package dsp

import "gonum.org/v1/gonum/dsp/fourier"

// ResampleFFT resamples x to exactly num samples by truncating or zero
// padding its spectrum. The signal is treated as periodic, so edges can
// ring slightly.
func ResampleFFT(x []float64, num int) []float64 {
	if num <= 0 || len(x) == 0 {
		return nil
	}
	nx := len(x)
	if num == nx {
		return append([]float64(nil), x...)
	}

	spec := fourier.NewFFT(nx).Coefficients(nil, x)
	out := make([]complex128, num/2+1)

	n := min(num, nx)
	copy(out, spec[:n/2+1])

	if n%2 == 0 {
		nyq := n / 2
		switch {
		case num < nx:
			// The folded negative-frequency half lands on the new Nyquist bin.
			out[nyq] = complex(2*real(out[nyq]), 0)
		case num > nx:
			out[nyq] *= 0.5
		}
	}
	if num%2 == 0 {
		out[num/2] = complex(real(out[num/2]), 0)
	}

	y := fourier.NewFFT(num).Sequence(nil, out)
	scale := 1 / float64(nx)
	for i := range y {
		y[i] *= scale
	}

	return y
}
