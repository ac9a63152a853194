// SPDX-License-Identifier: EPL-2.0

package augment

import "errors"

var (
	ErrInvalidProbability = errors.New("probability must be within [0, 1]")
	ErrMissingKind        = errors.New("augmentation entry has no kind")
	ErrNilPerturbation    = errors.New("stage has no perturbation")
	ErrUnsupportedConfig  = errors.New("unsupported augmentation config format")
)
