package core

import "fmt"

// DiscreteDistribution is a normalized discrete probability distribution over
// integer indices, built from non-negative weights. Zero-weight entries are
// never drawn.
type DiscreteDistribution struct {
	pmf []float64
	cdf []float64
}

// NewDiscreteDistribution builds a distribution from the given weights.
// Weights are normalized to sum to 1; all-zero weights are an error.
func NewDiscreteDistribution(weights []float64) (*DiscreteDistribution, error) {
	if len(weights) == 0 {
		return nil, fmt.Errorf("discrete distribution needs at least one weight")
	}

	total := 0.0
	for i, w := range weights {
		if w < 0 {
			return nil, fmt.Errorf("discrete distribution weight %d is negative (%g)", i, w)
		}
		total += w
	}
	if total == 0 {
		return nil, fmt.Errorf("discrete distribution weights sum to zero")
	}

	pmf := make([]float64, len(weights))
	cdf := make([]float64, len(weights))
	cumulative := 0.0
	for i, w := range weights {
		pmf[i] = w / total
		cumulative += pmf[i]
		cdf[i] = cumulative
	}
	cdf[len(cdf)-1] = 1.0 // Guard against rounding drift

	return &DiscreteDistribution{pmf: pmf, cdf: cdf}, nil
}

// Count returns the number of entries in the distribution
func (d *DiscreteDistribution) Count() int {
	return len(d.pmf)
}

// Pmf returns the probability mass of the given index
func (d *DiscreteDistribution) Pmf(index int) float64 {
	if index < 0 || index >= len(d.pmf) {
		return 0
	}
	return d.pmf[index]
}

// SampleReuse draws an index from the distribution and rescales the input
// sample to a fresh uniform value in [0, 1), so the same random number can be
// reused for a follow-up sampling decision. Returns the index, the remapped
// sample, and the selected probability mass.
func (d *DiscreteDistribution) SampleReuse(u float64) (int, float64, float64) {
	lo := 0.0
	for i, hi := range d.cdf {
		if u < hi || i == len(d.cdf)-1 {
			// Skip zero-probability entries the search may have landed on
			// due to floating point ties
			if d.pmf[i] == 0 {
				continue
			}
			remapped := (u - lo) / d.pmf[i]
			if remapped >= 1 {
				remapped = 0
			}
			return i, remapped, d.pmf[i]
		}
		lo = hi
	}

	// Fallback to the last non-zero entry
	for i := len(d.pmf) - 1; i >= 0; i-- {
		if d.pmf[i] > 0 {
			return i, 0, d.pmf[i]
		}
	}
	return -1, 0, 0
}
