package engine

import "math"

// Stat is the tagged outcome of an aggregation: either a value, or an
// explicit no-data marker. Empty inputs never surface as NaN.
type Stat struct {
	Value float64
	OK    bool
}

func stat(v float64) Stat {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Stat{}
	}
	return Stat{Value: v, OK: true}
}

// Mean returns the arithmetic mean of xs.
func Mean(xs []float64) Stat {
	if len(xs) == 0 {
		return Stat{}
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return stat(sum / float64(len(xs)))
}

// SampleStdDev returns the n-1 corrected standard deviation. A single
// sample is reported as no-data; the caller decides the fallback.
func SampleStdDev(xs []float64) Stat {
	if len(xs) < 2 {
		return Stat{}
	}
	m := Mean(xs)
	if !m.OK {
		return Stat{}
	}
	ss := 0.0
	for _, x := range xs {
		d := x - m.Value
		ss += d * d
	}
	return stat(math.Sqrt(ss / float64(len(xs)-1)))
}

// Max returns the largest element of xs.
func Max(xs []float64) Stat {
	if len(xs) == 0 {
		return Stat{}
	}
	mx := xs[0]
	for _, x := range xs[1:] {
		if x > mx {
			mx = x
		}
	}
	return stat(mx)
}
