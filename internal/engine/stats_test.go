package engine

import (
	"math"
	"testing"
)

func TestMeanEmpty(t *testing.T) {
	if s := Mean(nil); s.OK {
		t.Fatalf("empty mean must report no data, got %+v", s)
	}
}

func TestMean(t *testing.T) {
	s := Mean([]float64{100, 200, 300})
	if !s.OK || s.Value != 200 {
		t.Fatalf("mean = %+v, want 200", s)
	}
}

func TestSampleStdDevSingleSample(t *testing.T) {
	if s := SampleStdDev([]float64{250}); s.OK {
		t.Fatalf("single-sample stdev must report no data, got %+v", s)
	}
}

func TestSampleStdDev(t *testing.T) {
	s := SampleStdDev([]float64{200, 300})
	want := math.Sqrt(2 * 50 * 50)
	if !s.OK || math.Abs(s.Value-want) > 1e-9 {
		t.Fatalf("stdev = %+v, want %v", s, want)
	}
}

func TestStatRejectsNaN(t *testing.T) {
	if s := Mean([]float64{math.NaN(), 100}); s.OK {
		t.Fatalf("NaN input must not produce an OK stat, got %+v", s)
	}
	if s := Max([]float64{math.Inf(1)}); s.OK {
		t.Fatalf("Inf input must not produce an OK stat, got %+v", s)
	}
}

func TestMax(t *testing.T) {
	s := Max([]float64{120, 340, 90})
	if !s.OK || s.Value != 340 {
		t.Fatalf("max = %+v, want 340", s)
	}
}
