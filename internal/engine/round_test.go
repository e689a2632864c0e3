package engine

import (
	"math"
	"testing"
)

func TestRoundToStep(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{26533, 26550},
		{26524, 26500},
		{26525, 26550},
		{24500, 24500},
		{0, 0},
	}
	for _, c := range cases {
		if got := RoundToStep(c.in, DefaultStrikeStep); got != c.want {
			t.Fatalf("RoundToStep(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestRoundToStepNaN(t *testing.T) {
	if got := RoundToStep(math.NaN(), DefaultStrikeStep); got != 0 {
		t.Fatalf("RoundToStep(NaN) = %v, want 0", got)
	}
	if got := RoundToStep(26533, 0); got != 0 {
		t.Fatalf("zero step must resolve to 0, got %v", got)
	}
}
