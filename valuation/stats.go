// Package valuation turns listing facts and comparable sales into a fair
// value band, a reasonableness score and an offer recommendation.
//
// Everything here is a pure function of its inputs. A missing input always
// yields a missing output plus a note; nothing is defaulted to zero.
package valuation

import (
	"math"
	"sort"
)

// CurrencyRoundingBase is the step used for displayed pound amounts.
const CurrencyRoundingBase = 1000

// Median returns the middle value (mean of the two central values for an
// even count). ok is false for an empty slice. values is not modified.
func Median(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	s := sortedCopy(values)
	n := len(s)
	if n%2 == 1 {
		return s[n/2], true
	}
	return (s[n/2-1] + s[n/2]) / 2, true
}

// Quantile returns the q-th quantile (0 <= q <= 1) using linear
// interpolation between order statistics at rank (n-1)*q.
func Quantile(values []float64, q float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	s := sortedCopy(values)
	if len(s) == 1 {
		return s[0], true
	}

	pos := float64(len(s)-1) * q
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return s[lo], true
	}
	return s[lo] + (s[hi]-s[lo])*(pos-float64(lo)), true
}

// PercentageDelta returns (a-b)/b*100. ok is false when b is zero.
func PercentageDelta(a, b float64) (float64, bool) {
	if b == 0 {
		return 0, false
	}
	return (a - b) / b * 100, true
}

// RoundToNearest rounds x to the nearest multiple of base, halves away from
// zero. A non-positive base falls back to CurrencyRoundingBase.
func RoundToNearest(x, base int) int {
	if base <= 0 {
		base = CurrencyRoundingBase
	}
	return int(math.Round(float64(x)/float64(base))) * base
}

func sortedCopy(values []float64) []float64 {
	s := make([]float64, len(values))
	copy(s, values)
	sort.Float64s(s)
	return s
}
