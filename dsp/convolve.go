// SPDX-License-Identifier: EPL-2.0

package dsp

import "gonum.org/v1/gonum/dsp/fourier"

// FFTConvolve returns the full linear convolution of a and b, of length
// len(a)+len(b)-1. Either input being empty yields nil.
func FFTConvolve(a, b []float64) []float64 {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}

	outLen := len(a) + len(b) - 1
	n := NextPow2(outLen)
	fft := fourier.NewFFT(n)

	pa := make([]float64, n)
	copy(pa, a)
	pb := make([]float64, n)
	copy(pb, b)

	fa := fft.Coefficients(nil, pa)
	fb := fft.Coefficients(nil, pb)
	for i := range fa {
		fa[i] *= fb[i]
	}

	seq := fft.Sequence(nil, fa)
	out := seq[:outLen]
	scale := 1 / float64(n)
	for i := range out {
		out[i] *= scale
	}

	return out
}
