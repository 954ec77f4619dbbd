package radar

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAxisAngle tests that axis 0 points up and axes advance clockwise
func TestAxisAngle(t *testing.T) {
	assert.InDelta(t, -math.Pi/2, AxisAngle(0, 5), 1e-12)
	assert.InDelta(t, 0, AxisAngle(1, 4), 1e-12)
	assert.InDelta(t, math.Pi/2, AxisAngle(2, 4), 1e-12)
	assert.InDelta(t, math.Pi, AxisAngle(3, 4), 1e-12)
	assert.InDelta(t, -math.Pi/2, AxisAngle(0, 0), 1e-12)
}

// TestRatio tests normal, reverse, clamped and degenerate mappings
func TestRatio(t *testing.T) {
	r := DimensionRange{Min: 0, Max: 30}
	rev := DimensionRange{Min: 0, Max: 30, Reverse: true}

	tests := []struct {
		name  string
		value float64
		rng   DimensionRange
		want  float64
	}{
		{"lower bound", 0, r, 0},
		{"upper bound", 30, r, 1},
		{"middle", 15, r, 0.5},
		{"reverse lower bound maps outward", 0, rev, 1},
		{"reverse upper bound maps to center", 30, rev, 0},
		{"reverse third", 10, rev, 2.0 / 3.0},
		{"below range clamps to zero", -50, r, 0},
		{"above range clamps to one", 300, r, 1},
		{"reverse above range clamps to zero", 300, rev, 0},
		{"degenerate range", 5, DimensionRange{Min: 5, Max: 5}, 0},
		{"inverted range", 5, DimensionRange{Min: 10, Max: 0}, 0},
		{"NaN value", math.NaN(), r, 0},
		{"infinite value", math.Inf(1), r, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Ratio(tt.value, tt.rng), 1e-12)
		})
	}
}

// TestRatio_Monotonic tests the ordering property for normal and reverse axes
func TestRatio_Monotonic(t *testing.T) {
	r := DimensionRange{Min: -20, Max: 80}
	rev := r
	rev.Reverse = true

	for v1 := -40.0; v1 <= 100; v1 += 7 {
		for v2 := v1 + 1; v2 <= 100; v2 += 11 {
			assert.LessOrEqual(t, Ratio(v1, r), Ratio(v2, r))
			assert.GreaterOrEqual(t, Ratio(v1, rev), Ratio(v2, rev))

			for _, ratio := range []float64{Ratio(v1, r), Ratio(v2, rev)} {
				assert.GreaterOrEqual(t, ratio, 0.0)
				assert.LessOrEqual(t, ratio, 1.0)
			}
		}
	}
}

// TestMapSeries tests point generation in axis order
func TestMapSeries(t *testing.T) {
	m := mustModel(t, "Model\tA\tB\tC\tD\nX\t10\t90\t0\t5\nY\t20\t10\t0\t5")
	ranges := ResolveAll(m, true)
	ranges["B"] = DimensionRange{Min: 0, Max: 100, Reverse: true}
	ranges["D"] = DimensionRange{Min: 5, Max: 5}

	points := MapSeries("X", m, ranges)
	require.Len(t, points, 4)

	assert.Equal(t, "A", points[0].Dimension)
	assert.Equal(t, 10.0, points[0].Value)
	assert.InDelta(t, 1.0/3.0, points[0].Ratio, 1e-12)
	assert.InDelta(t, -math.Pi/2, points[0].Angle, 1e-12)

	assert.InDelta(t, 0.1, points[1].Ratio, 1e-12)
	assert.InDelta(t, 0, points[1].Angle, 1e-12)

	assert.Equal(t, 0.0, points[2].Ratio)
	assert.Equal(t, 0.0, points[3].Ratio, "degenerate axis collapses to the center")
}

// TestMapSeries_MissingRange tests that an axis without a range maps to the center
func TestMapSeries_MissingRange(t *testing.T) {
	m := mustModel(t, "Model\tA\nX\t10")

	points := MapSeries("X", m, map[string]DimensionRange{})

	require.Len(t, points, 1)
	assert.Equal(t, 0.0, points[0].Ratio)
	assert.Equal(t, 10.0, points[0].Value)
}

// TestMapAll tests that every series is mapped
func TestMapAll(t *testing.T) {
	m := mustModel(t, "Model\tA\tB\nX\t10\t90\nY\t20\t10")

	all := MapAll(m, ResolveAll(m, false))

	assert.Len(t, all, 2)
	assert.Len(t, all["X"], 2)
	assert.Len(t, all["Y"], 2)
}

// TestNormalizedPoint_Offset tests the Cartesian projection
func TestNormalizedPoint_Offset(t *testing.T) {
	up := NormalizedPoint{Ratio: 1, Angle: AxisAngle(0, 4)}
	x, y := up.Offset(100)
	assert.InDelta(t, 0, x, 1e-9)
	assert.InDelta(t, -100, y, 1e-9)

	right := NormalizedPoint{Ratio: 0.5, Angle: AxisAngle(1, 4)}
	x, y = right.Offset(100)
	assert.InDelta(t, 50, x, 1e-9)
	assert.InDelta(t, 0, y, 1e-9)

	center := NormalizedPoint{Ratio: 0, Angle: 1.234}
	x, y = center.Offset(100)
	assert.Equal(t, 0.0, x)
	assert.Equal(t, 0.0, y)
}
