package radar

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestResolveAuto tests padding, nice rounding and the zero clamp
func TestResolveAuto(t *testing.T) {
	tests := []struct {
		name        string
		values      []float64
		integerMode bool
		wantMin     float64
		wantMax     float64
	}{
		{
			name:        "integer mode rounds to multiples of ten",
			values:      []float64{10, 20},
			integerMode: true,
			wantMin:     0,
			wantMax:     30,
		},
		{
			name:        "decimal mode floors and ceils",
			values:      []float64{5, 5},
			integerMode: false,
			wantMin:     4,
			wantMax:     6,
		},
		{
			name:        "integer mode for identical values",
			values:      []float64{5, 5, 5},
			integerMode: true,
			wantMin:     0,
			wantMax:     10,
		},
		{
			name:        "negative minimum is kept",
			values:      []float64{-10, 50},
			integerMode: true,
			wantMin:     -10,
			wantMax:     60,
		},
		{
			name:        "non-finite values are ignored",
			values:      []float64{math.NaN(), 10, math.Inf(1), math.Inf(-1)},
			integerMode: true,
			wantMin:     0,
			wantMax:     20,
		},
		{
			name:        "empty set nudges max above zero",
			values:      nil,
			integerMode: false,
			wantMin:     0,
			wantMax:     0.1,
		},
		{
			name:        "all zeros in integer mode",
			values:      []float64{0, 0},
			integerMode: true,
			wantMin:     0,
			wantMax:     1,
		},
		{
			name:        "clustered negatives cross after padding",
			values:      []float64{-10, -9.5},
			integerMode: false,
			wantMin:     -9,
			wantMax:     -8.9,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := ResolveAuto("dim", tt.values, tt.integerMode)
			assert.InDelta(t, tt.wantMin, r.Min, 1e-9)
			assert.InDelta(t, tt.wantMax, r.Max, 1e-9)
			assert.False(t, r.Reverse)
			assert.Greater(t, r.Max, r.Min)
		})
	}
}

// TestResolveAuto_ExtremeMagnitudes tests that huge finite values still
// resolve to a finite, strictly ordered range
func TestResolveAuto_ExtremeMagnitudes(t *testing.T) {
	tests := []struct {
		name        string
		values      []float64
		integerMode bool
		wantMin     float64
		wantMax     float64
	}{
		{"padding overflows max", []float64{1.7e308, 5}, false, 4, math.MaxFloat64},
		{"padding overflows max in integer mode", []float64{1.7e308, 5}, true, 0, math.MaxFloat64},
		{"negative padding overflows max", []float64{-1.7e308, -1.7e308}, false, -1.53e308, -1.53e308},
		{"step lost to rounding", []float64{-1e17, -1e17}, false, -9e16, math.Nextafter(-9e16, math.Inf(1))},
		{"step lost to rounding in integer mode", []float64{-1e17, -1e17}, true, -9e16, math.Nextafter(-9e16, math.Inf(1))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := ResolveAuto("dim", tt.values, tt.integerMode)
			assert.False(t, math.IsInf(r.Min, 0) || math.IsInf(r.Max, 0), "bounds must be finite: %+v", r)
			assert.Greater(t, r.Max, r.Min)
			assert.InDelta(t, tt.wantMin, r.Min, math.Abs(tt.wantMin)*1e-12)
			assert.InDelta(t, tt.wantMax, r.Max, math.Abs(tt.wantMax)*1e-12)
		})
	}
}

// TestResolveAuto_PaddingIsMultiplicative tests that a negative minimum is padded toward zero
func TestResolveAuto_PaddingIsMultiplicative(t *testing.T) {
	r := ResolveAuto("delta", []float64{-10, 10}, false)

	// -10 * 0.9 = -9: the lower bound moves toward zero, not away from it
	assert.Equal(t, -9.0, r.Min)
	assert.GreaterOrEqual(t, r.Max, 11.0)
}

// TestResolveAll tests range derivation for every dimension of a model
func TestResolveAll(t *testing.T) {
	m := mustModel(t, "Model\tA\tB\nX\t10\t90\nY\t20\t10")

	ranges := ResolveAll(m, true)

	assert.Len(t, ranges, 2)
	assert.Equal(t, DimensionRange{Min: 0, Max: 30}, ranges["A"])
	assert.Equal(t, DimensionRange{Min: 0, Max: 100}, ranges["B"])
}

// TestApplyManualEdit tests rounding and conflict clamping of direct edits
func TestApplyManualEdit(t *testing.T) {
	base := DimensionRange{Min: 0, Max: 30, Reverse: true, Unit: "ms"}

	tests := []struct {
		name        string
		field       RangeField
		value       float64
		integerMode bool
		wantMin     float64
		wantMax     float64
	}{
		{"min within range", FieldMin, 10, true, 10, 30},
		{"min rounded in integer mode", FieldMin, 4.6, true, 5, 30},
		{"min kept fractional in decimal mode", FieldMin, 4.6, false, 4.6, 30},
		{"min at max is clamped", FieldMin, 30, true, 29, 30},
		{"min above max is clamped by decimal step", FieldMin, 45, false, 29.9, 30},
		{"max within range", FieldMax, 50, true, 0, 50},
		{"max below min is clamped", FieldMax, -5, true, 0, 1},
		{"max at min is clamped by decimal step", FieldMax, 0, false, 0, 0.1},
		{"max rounded in integer mode", FieldMax, 12.4, true, 0, 12},
		{"NaN leaves range untouched", FieldMax, math.NaN(), true, 0, 30},
		{"infinity leaves range untouched", FieldMin, math.Inf(-1), false, 0, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := ApplyManualEdit(base, tt.field, tt.value, tt.integerMode)
			assert.InDelta(t, tt.wantMin, r.Min, 1e-9)
			assert.InDelta(t, tt.wantMax, r.Max, 1e-9)
			assert.True(t, r.Reverse, "reverse flag must survive edits")
			assert.Equal(t, "ms", r.Unit)
		})
	}
}

// TestApplyManualEdit_Clamping tests clamps that cannot use the plain step
func TestApplyManualEdit_Clamping(t *testing.T) {
	tests := []struct {
		name        string
		base        DimensionRange
		field       RangeField
		value       float64
		integerMode bool
		want        DimensionRange
	}{
		{
			name:        "min clamp lost to rounding",
			base:        DimensionRange{Min: 0, Max: 1e17},
			field:       FieldMin,
			value:       2e17,
			integerMode: false,
			want:        DimensionRange{Min: math.Nextafter(1e17, math.Inf(-1)), Max: 1e17},
		},
		{
			name:        "max clamp lost to rounding",
			base:        DimensionRange{Min: 1e17, Max: 2e17},
			field:       FieldMax,
			value:       0,
			integerMode: true,
			want:        DimensionRange{Min: 1e17, Max: math.Nextafter(1e17, math.Inf(1))},
		},
		{
			name:        "integer clamp below fractional max is whole",
			base:        DimensionRange{Min: -3.2, Max: 0.5},
			field:       FieldMin,
			value:       4,
			integerMode: true,
			want:        DimensionRange{Min: 0, Max: 0.5},
		},
		{
			name:        "integer clamp above fractional min is whole",
			base:        DimensionRange{Min: -0.5, Max: 7.5},
			field:       FieldMax,
			value:       -4,
			integerMode: true,
			want:        DimensionRange{Min: -0.5, Max: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := ApplyManualEdit(tt.base, tt.field, tt.value, tt.integerMode)
			assert.Equal(t, tt.want, r)
			assert.Greater(t, r.Max, r.Min)
		})
	}
}

// TestApplyManualEdit_InvariantHolds tests max > min over random edit sequences
func TestApplyManualEdit_InvariantHolds(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	r := ResolveAuto("dim", []float64{3, 8}, false)

	for i := 0; i < 2000; i++ {
		field := FieldMin
		if rng.Intn(2) == 0 {
			field = FieldMax
		}
		value := (rng.Float64() - 0.5) * 200
		if rng.Intn(2) == 0 {
			value = (rng.Float64() - 0.5) * math.Pow(10, float64(rng.Intn(300)))
		}
		integerMode := rng.Intn(3) == 0

		r = ApplyManualEdit(r, field, value, integerMode)
		if !assert.Greater(t, r.Max, r.Min, "edit %d: %s=%v", i, field, value) {
			return
		}
	}
}

// TestStep tests the edit step per mode
func TestStep(t *testing.T) {
	assert.Equal(t, 1.0, Step(true))
	assert.Equal(t, 0.1, Step(false))
	assert.True(t, FieldMin.Valid())
	assert.False(t, RangeField("mid").Valid())
}
