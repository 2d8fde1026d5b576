package world

import (
	"math"
	"math/rand"
	"testing"
)

// TestOctaveNoiseDeterministic verifies the same seed produces the same values
func TestOctaveNoiseDeterministic(t *testing.T) {
	a := newOctaveNoise(42, 4, 0.5, 2.0)
	b := newOctaveNoise(42, 4, 0.5, 2.0)

	for i := 0; i < 100; i++ {
		x, z := float64(i)*0.37, float64(i)*-0.11
		if a.eval2(x, z) != b.eval2(x, z) {
			t.Fatalf("eval2 not deterministic at (%v, %v)", x, z)
		}
		if a.eval3(x, z, x) != b.eval3(x, z, x) {
			t.Fatalf("eval3 not deterministic at (%v, %v, %v)", x, z, x)
		}
	}
}

// TestOctaveNoiseRange checks normalized output stays within [-1, 1]
func TestOctaveNoiseRange(t *testing.T) {
	n := newOctaveNoise(7, 4, 0.5, 2.0)
	rng := rand.New(rand.NewSource(99))

	for i := 0; i < 10000; i++ {
		x := rng.Float64()*2000 - 1000
		y := rng.Float64()*2000 - 1000
		z := rng.Float64()*2000 - 1000

		if v := n.eval2(x, z); v < -1 || v > 1 || math.IsNaN(v) {
			t.Fatalf("eval2(%v, %v) = %v out of range", x, z, v)
		}
		if v := n.eval3(x, y, z); v < -1 || v > 1 || math.IsNaN(v) {
			t.Fatalf("eval3(%v, %v, %v) = %v out of range", x, y, z, v)
		}
	}
}

func TestOctaveNoiseZeroOctaves(t *testing.T) {
	n := newOctaveNoise(1, 0, 0.5, 2.0)
	if v := n.eval2(3, 4); v != 0 {
		t.Errorf("eval2 with no octaves = %v, want 0", v)
	}
	if v := n.eval3(3, 4, 5); v != 0 {
		t.Errorf("eval3 with no octaves = %v, want 0", v)
	}
}

func TestLerp(t *testing.T) {
	tests := []struct {
		a, b, t, want float64
	}{
		{0, 10, 0, 0},
		{0, 10, 1, 10},
		{0, 10, 0.25, 2.5},
		{-4, 4, 0.5, 0},
	}
	for _, tt := range tests {
		if got := lerp(tt.a, tt.b, tt.t); got != tt.want {
			t.Errorf("lerp(%v, %v, %v) = %v, want %v", tt.a, tt.b, tt.t, got, tt.want)
		}
	}
}
