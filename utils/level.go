// SPDX-License-Identifier: EPL-2.0

package utils

import "math"

// DBToAmplitude converts a decibel gain to a linear multiplier (10^(db/20)).
func DBToAmplitude(db float64) float64 {
	return math.Pow(10, db/20)
}

// RMS returns the root-mean-square amplitude of samples.
// An empty slice has an RMS of 0.
func RMS(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}

	var sum float64
	for _, s := range samples {
		v := float64(s)
		sum += v * v
	}

	return math.Sqrt(sum / float64(len(samples)))
}

// RMSDB returns 20*log10(RMS(samples)); silence yields -Inf.
func RMSDB(samples []float32) float64 {
	return 20 * math.Log10(RMS(samples))
}

// Linspace returns n evenly spaced values over [start, stop], endpoints included.
func Linspace(start, stop float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{start}
	}

	out := make([]float64, n)
	step := (stop - start) / float64(n-1)
	for i := range n {
		out[i] = start + float64(i)*step
	}
	// Avoid accumulated error on the closing endpoint
	out[n-1] = stop

	return out
}

// Argmax returns the index of the first maximum value, or -1 for an empty slice.
func Argmax(samples []float32) int {
	if len(samples) == 0 {
		return -1
	}

	idx := 0
	for i, s := range samples {
		if s > samples[idx] {
			idx = i
		}
	}

	return idx
}
