// SPDX-License-Identifier: EPL-2.0

// Package perturb implements the stochastic audio perturbations applied by
// the augmentation pipeline and the registry that maps configuration kind
// names to their constructors.
//
// Built-in kinds:
//
//	speed         resample by a random rate; pitch follows the rate
//	time_stretch  phase-vocoder stretch; pitch preserved
//	gain          random dB gain
//	shift         destructive time shift with zero fill
//	white_noise   additive Gaussian noise at a random level
//	impulse       convolution with a room impulse response
//	noise         additive noise at a random SNR
//	rir_noise     impulse response, foreground noise and optional background noise
//
// Every perturbation owns a math/rand/v2 generator. Passing the same seed
// in two configurations yields identical draws; an unseeded perturbation
// draws its seed from the runtime.
//
// Configuration keys follow the names used in augmentation files:
//
//	p, err := perturb.Default().New("gain", perturb.Config{
//	    Params: map[string]any{"min_gain_dbfs": -6, "max_gain_dbfs": 6},
//	})
//
// Register adds custom kinds to the process-wide registry; a kind can only
// be registered once.
package perturb
