// SPDX-License-Identifier: EPL-2.0

package dsp

import "math"

// Hann returns a periodic Hann window of length n, the variant whose
// shifted copies sum to a constant at hop n/2 and n/4.
func Hann(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n))
	}
	return w
}

// NextPow2 returns the smallest power of two >= n.
func NextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
