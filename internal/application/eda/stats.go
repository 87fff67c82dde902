package eda

import (
	"math"
	"sort"
)

// Numeric primitives used by the engine. Quartiles use linear interpolation
// and the standard deviation is the sample deviation (N-1), with the N=1
// case pinned to 0 so single-row columns never produce NaN.

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func sampleStd(values []float64, m float64) float64 {
	n := len(values)
	if n <= 1 {
		return 0
	}
	ss := 0.0
	for _, v := range values {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(n-1))
}

// quantile returns the p-quantile (0 <= p <= 1) of values using linear
// interpolation between closest ranks. values must be non-empty.
func quantile(values []float64, p float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return quantileSorted(sorted, p)
}

func quantileSorted(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	pos := p * float64(n-1)
	lo := int(math.Floor(pos))
	frac := pos - float64(lo)
	if lo >= n-1 {
		return sorted[n-1]
	}
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// skewness is the adjusted Fisher-Pearson coefficient (the pandas default).
// Defined for n >= 3 with nonzero deviation; otherwise returns nil.
func skewness(values []float64) *float64 {
	n := float64(len(values))
	if n < 3 {
		return nil
	}
	m := mean(values)
	s := sampleStd(values, m)
	if s == 0 {
		return nil
	}
	sum := 0.0
	for _, v := range values {
		z := (v - m) / s
		sum += z * z * z
	}
	g := n / ((n - 1) * (n - 2)) * sum
	return &g
}

// kurtosis is the adjusted excess kurtosis (the pandas default). Defined for
// n >= 4 with nonzero deviation; otherwise returns nil.
func kurtosis(values []float64) *float64 {
	n := float64(len(values))
	if n < 4 {
		return nil
	}
	m := mean(values)
	s := sampleStd(values, m)
	if s == 0 {
		return nil
	}
	sum := 0.0
	for _, v := range values {
		z := (v - m) / s
		sum += z * z * z * z
	}
	g := n*(n+1)/((n-1)*(n-2)*(n-3))*sum - 3*(n-1)*(n-1)/((n-2)*(n-3))
	return &g
}

// pearson computes the correlation of two equal-length series. ok is false
// when either series has zero variance (the pair is undefined, not NaN).
func pearson(x, y []float64) (r float64, ok bool) {
	n := len(x)
	if n < 2 {
		return 0, false
	}
	mx, my := mean(x), mean(y)
	var sxy, sxx, syy float64
	for i := 0; i < n; i++ {
		dx := x[i] - mx
		dy := y[i] - my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return 0, false
	}
	return sxy / math.Sqrt(sxx*syy), true
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

func percentage(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return round2(float64(part) / float64(total) * 100)
}
