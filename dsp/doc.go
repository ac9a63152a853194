// SPDX-License-Identifier: EPL-2.0

// Package dsp implements the FFT based signal routines behind the
// augmentation perturbations: windowing, short-time Fourier analysis and
// resynthesis, phase vocoding, linear convolution and band-limited
// resampling. Transforms run on gonum.org/v1/gonum/dsp/fourier.
//
// All routines work on float64 buffers and never modify their inputs.
// Output is audio-semantically correct; it is not bit-exact with other FFT
// libraries.
package dsp
