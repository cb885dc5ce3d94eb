package core

import (
	"math"
	"testing"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		min      float64
		max      float64
		expected float64
	}{
		{name: "inside", value: 0.5, min: 0, max: 1, expected: 0.5},
		{name: "below", value: -1, min: 0, max: 1, expected: 0},
		{name: "above", value: 2, min: 0, max: 1, expected: 1},
		{name: "swapped", value: 2, min: 1, max: 0, expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Clamp(tt.value, tt.min, tt.max)
			if got != tt.expected {
				t.Fatalf("Clamp() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestNearlyEqual(t *testing.T) {
	if !NearlyEqual(1.0, 1.0+1e-13, 1e-12) {
		t.Fatal("expected values to be nearly equal")
	}
	if NearlyEqual(1.0, 1.1, 1e-3) {
		t.Fatal("expected values to differ")
	}
}

func TestMapRangeClamped(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		expected float64
	}{
		{name: "midpoint", value: 10000, expected: 0.5},
		{name: "lower edge", value: 0, expected: 0},
		{name: "upper edge", value: 20000, expected: 1},
		{name: "below range", value: -500, expected: 0},
		{name: "above range", value: 30000, expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapRangeClamped(tt.value, 0, 20000, 0, 1)
			if !NearlyEqual(got, tt.expected, 1e-12) {
				t.Fatalf("MapRangeClamped(%v) = %v, want %v", tt.value, got, tt.expected)
			}
		})
	}

	if got := MapRangeClamped(5, 3, 3, 0, 1); got != 0 {
		t.Fatalf("degenerate input range: got %v, want 0", got)
	}
}

func TestFlushDenormals(t *testing.T) {
	if got := FlushDenormals(1e-40); got != 0 {
		t.Fatalf("FlushDenormals(1e-40) = %v, want 0", got)
	}
	if got := FlushDenormals(0.25); got != 0.25 {
		t.Fatalf("FlushDenormals(0.25) = %v, want 0.25", got)
	}
}

func TestDBConversions(t *testing.T) {
	linear := DBToLinear(-6)
	db := LinearToDB(linear)
	if !NearlyEqual(db, -6, 1e-10) {
		t.Fatalf("LinearToDB(DBToLinear(-6)) = %v, want -6", db)
	}
	if !math.IsInf(LinearToDB(0), -1) {
		t.Fatal("expected -Inf for zero")
	}
	if !math.IsNaN(LinearToDB(-1)) {
		t.Fatal("expected NaN for negative amplitude")
	}
}
