package radar

import (
	"math"
)

// NormalizedPoint is one vertex of a series polygon.
type NormalizedPoint struct {
	Dimension string  `json:"dimension"`
	Value     float64 `json:"value"`
	// Ratio is the distance from the center as a fraction of the grid radius.
	Ratio float64 `json:"ratio"`
	// Angle is in radians; axis 0 points straight up.
	Angle float64 `json:"angle"`
}

// Offset returns the Cartesian offset of p from the chart center for a grid
// of the given radius, in screen orientation (y grows downward).
func (p NormalizedPoint) Offset(gridRadius float64) (x, y float64) {
	d := gridRadius * p.Ratio
	return d * math.Cos(p.Angle), d * math.Sin(p.Angle)
}

// AxisAngle returns the angle of axis i out of n. Axis 0 points straight up
// and the remaining axes proceed clockwise.
func AxisAngle(i, n int) float64 {
	if n <= 0 {
		return -math.Pi / 2
	}
	return float64(i)*(2*math.Pi/float64(n)) - math.Pi/2
}

// Ratio maps v into [0, 1] along r. A reverse range maps larger values closer
// to the center. Values outside the range are clamped silently, and a
// degenerate range maps every value to 0.
func Ratio(v float64, r DimensionRange) float64 {
	if r.Degenerate() || math.IsNaN(v) {
		return 0
	}

	var ratio float64
	if r.Reverse {
		ratio = (r.Max - v) / r.Span()
	} else {
		ratio = (v - r.Min) / r.Span()
	}

	switch {
	case math.IsNaN(ratio):
		return 0
	case ratio < 0:
		return 0
	case ratio > 1:
		return 1
	}
	return ratio
}

// MapSeries maps every value of series onto its axis, in dimension order.
// A dimension without an entry in ranges maps to the center.
func MapSeries(series string, m *SeriesModel, ranges map[string]DimensionRange) []NormalizedPoint {
	n := len(m.dimensions)
	points := make([]NormalizedPoint, n)
	for i, dim := range m.dimensions {
		v := m.Value(dim, series)
		r, ok := ranges[dim]
		ratio := 0.0
		if ok {
			ratio = Ratio(v, r)
		}
		points[i] = NormalizedPoint{
			Dimension: dim,
			Value:     v,
			Ratio:     ratio,
			Angle:     AxisAngle(i, n),
		}
	}
	return points
}

// MapAll maps every series of m, keyed by series name.
func MapAll(m *SeriesModel, ranges map[string]DimensionRange) map[string][]NormalizedPoint {
	out := make(map[string][]NormalizedPoint, len(m.series))
	for _, s := range m.series {
		out[s] = MapSeries(s, m, ranges)
	}
	return out
}
