// SPDX-License-Identifier: EPL-2.0

package perturb

import "errors"

var (
	ErrInvalidRate             = errors.New("invalid rate range")
	ErrUnsupportedResampleType = errors.New("unsupported resample type")
	ErrInvalidFFTSize          = errors.New("n_fft must be a positive even number")
	ErrInvalidConfig           = errors.New("invalid perturbation config")
	ErrDuplicateKind           = errors.New("perturbation kind already registered")
	ErrUnknownKind             = errors.New("unknown perturbation kind")
	ErrNoSource                = errors.New("perturbation needs an audio source")
)
