// SPDX-License-Identifier: EPL-2.0

package dsp

import (
	"fmt"

	"gonum.org/v1/gonum/dsp/fourier"
)

// STFT computes the centred short-time Fourier transform of x with a Hann
// window. The signal is zero padded by nFFT/2 on both sides, so frame t is
// centred on sample t*hop. Each frame holds nFFT/2+1 bins.
func STFT(x []float64, nFFT, hop int) ([][]complex128, error) {
	if err := checkFrame(nFFT, hop); err != nil {
		return nil, err
	}

	pad := nFFT / 2
	padded := make([]float64, len(x)+2*pad)
	copy(padded[pad:], x)

	frames := 1 + (len(padded)-nFFT)/hop
	win := Hann(nFFT)
	fft := fourier.NewFFT(nFFT)
	buf := make([]float64, nFFT)

	spec := make([][]complex128, frames)
	for t := range spec {
		start := t * hop
		for k := range buf {
			buf[k] = padded[start+k] * win[k]
		}
		spec[t] = fft.Coefficients(nil, buf)
	}

	return spec, nil
}

// ISTFT inverts STFT by weighted overlap-add. Samples are normalised by the
// summed squared window and the result is cut or zero padded to exactly
// length samples.
func ISTFT(spec [][]complex128, nFFT, hop, length int) ([]float64, error) {
	if err := checkFrame(nFFT, hop); err != nil {
		return nil, err
	}
	if length < 0 {
		return nil, fmt.Errorf("istft: negative output length %d", length)
	}

	pad := nFFT / 2
	total := nFFT + hop*max(len(spec)-1, 0)
	acc := make([]float64, total)
	norm := make([]float64, total)

	win := Hann(nFFT)
	fft := fourier.NewFFT(nFFT)
	frame := make([]float64, nFFT)
	scale := 1 / float64(nFFT)

	for t, coeff := range spec {
		if len(coeff) != nFFT/2+1 {
			return nil, fmt.Errorf("istft: frame %d has %d bins, want %d", t, len(coeff), nFFT/2+1)
		}
		fft.Sequence(frame, coeff)
		start := t * hop
		for k, v := range frame {
			acc[start+k] += v * scale * win[k]
			norm[start+k] += win[k] * win[k]
		}
	}

	out := make([]float64, length)
	for i := range out {
		j := i + pad
		if j >= total {
			break
		}
		if norm[j] > 1e-10 {
			out[i] = acc[j] / norm[j]
		}
	}

	return out, nil
}

func checkFrame(nFFT, hop int) error {
	if nFFT <= 0 || nFFT%2 != 0 {
		return fmt.Errorf("%w: %d", ErrInvalidFFTSize, nFFT)
	}
	if hop <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidHop, hop)
	}
	return nil
}
