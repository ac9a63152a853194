// SPDX-License-Identifier: EPL-2.0

package perturb

import (
	"fmt"
	"math/rand/v2"

	"github.com/ik5/audperturb/utils"
)

// rateSelector draws speed factors for Speed and TimeStretch. A positive
// num picks uniformly from num evenly spaced rates in [min, max]; otherwise
// the rate is drawn continuously from that range.
type rateSelector struct {
	min, max float64
	rates    []float64
}

func newRateSelector(minRate, maxRate float64, num int) (rateSelector, error) {
	if minRate > maxRate {
		return rateSelector{}, fmt.Errorf("%w: min %v > max %v", ErrInvalidRate, minRate, maxRate)
	}
	if minRate <= 0 {
		return rateSelector{}, fmt.Errorf("%w: min %v must be > 0", ErrInvalidRate, minRate)
	}

	return rateSelector{
		min:   minRate,
		max:   maxRate,
		rates: utils.Linspace(minRate, maxRate, num),
	}, nil
}

func (r rateSelector) pick(rng *rand.Rand) float64 {
	if len(r.rates) > 0 {
		return r.rates[rng.IntN(len(r.rates))]
	}
	return uniform(rng, r.min, r.max)
}

func (r rateSelector) maxLength(length float64) float64 {
	return length * r.max
}
