// SPDX-License-Identifier: EPL-2.0

package dsp

import "errors"

var (
	ErrInvalidFFTSize = errors.New("fft size must be a positive even number")
	ErrInvalidHop     = errors.New("hop length must be positive")
)
