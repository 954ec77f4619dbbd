package radar

import (
	"math"
)

const (
	// autoPadLow and autoPadHigh widen the observed extent multiplicatively.
	// For negative values this pulls the lower bound toward zero; that
	// asymmetry is relied upon by existing charts and is kept as is.
	autoPadLow  = 0.9
	autoPadHigh = 1.1

	// niceMultiple is the rounding grain of auto bounds in integer mode.
	niceMultiple = 10
)

// DimensionRange is the resolved scale of one axis.
type DimensionRange struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Reverse bool    `json:"reverse"`
	Unit    string  `json:"unit,omitempty"`
}

// Span returns Max - Min.
func (r DimensionRange) Span() float64 {
	return r.Max - r.Min
}

// Degenerate reports whether the range has no usable extent.
func (r DimensionRange) Degenerate() bool {
	return !(r.Max > r.Min) || math.IsInf(r.Span(), 0) || math.IsNaN(r.Span())
}

// RangeField selects the bound touched by a manual edit.
type RangeField string

const (
	FieldMin RangeField = "min"
	FieldMax RangeField = "max"
)

// Valid reports whether f names a range bound.
func (f RangeField) Valid() bool {
	return f == FieldMin || f == FieldMax
}

// Step is the smallest gap kept between Min and Max after a manual edit.
func Step(integerMode bool) float64 {
	if integerMode {
		return 1
	}
	return 0.1
}

// ResolveAuto derives a range for dimension from its observed values.
//
// Non-finite values are ignored and an empty set observes 0..0. The observed
// extent is padded to min*0.9 and max*1.1, then rounded outward: to multiples
// of 10 in integer mode, to whole numbers otherwise. A negative lower bound is
// clamped to 0 when no observed value is negative. Bounds that overflow
// float64 are held at ±math.MaxFloat64. If the bounds still meet or cross
// (all zeros, or tightly clustered negatives under the multiplicative
// padding) Max is nudged one Step above Min, or to the next representable
// value where the Step is lost to rounding. Reverse is never derived.
func ResolveAuto(dimension string, values []float64, integerMode bool) DimensionRange {
	observedMin, observedMax := 0.0, 0.0
	first := true
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if first {
			observedMin, observedMax = v, v
			first = false
			continue
		}
		if v < observedMin {
			observedMin = v
		}
		if v > observedMax {
			observedMax = v
		}
	}

	paddedMin := observedMin * autoPadLow
	paddedMax := observedMax * autoPadHigh

	var lo, hi float64
	if integerMode {
		lo = math.Floor(paddedMin/niceMultiple) * niceMultiple
		hi = math.Ceil(paddedMax/niceMultiple) * niceMultiple
	} else {
		lo = math.Floor(paddedMin)
		hi = math.Ceil(paddedMax)
	}

	lo, hi = finiteBound(lo), finiteBound(hi)

	if lo < 0 && observedMin >= 0 {
		lo = 0
	}
	if hi <= lo {
		hi = above(lo, integerMode)
		if math.IsInf(hi, 1) {
			hi = lo
			lo = below(hi, integerMode)
		}
	}

	return DimensionRange{Min: positiveZero(lo), Max: positiveZero(hi)}
}

// finiteBound holds an overflowed bound at the largest finite magnitude.
func finiteBound(v float64) float64 {
	switch {
	case math.IsInf(v, 1):
		return math.MaxFloat64
	case math.IsInf(v, -1):
		return -math.MaxFloat64
	}
	return v
}

// above returns the value one Step above bound. In integer mode the result
// is a whole number even when bound is fractional. When the Step is absorbed
// by rounding the next representable float64 is used.
func above(bound float64, integerMode bool) float64 {
	v := bound + Step(integerMode)
	if integerMode {
		v = math.Floor(bound) + Step(integerMode)
	}
	if v <= bound {
		v = math.Nextafter(bound, math.Inf(1))
	}
	return v
}

// below mirrors above.
func below(bound float64, integerMode bool) float64 {
	v := bound - Step(integerMode)
	if integerMode {
		v = math.Ceil(bound) - Step(integerMode)
	}
	if v >= bound {
		v = math.Nextafter(bound, math.Inf(-1))
	}
	return v
}

// positiveZero folds -0 into 0 so bounds never serialize as "-0".
func positiveZero(v float64) float64 {
	if v == 0 {
		return 0
	}
	return v
}

// ResolveAll derives an automatic range for every dimension of m.
func ResolveAll(m *SeriesModel, integerMode bool) map[string]DimensionRange {
	out := make(map[string]DimensionRange, len(m.dimensions))
	for _, dim := range m.dimensions {
		out[dim] = ResolveAuto(dim, m.DimensionValues(dim), integerMode)
	}
	return out
}

// ApplyManualEdit sets one bound of r to newValue, as typed by the user.
//
// In integer mode newValue is rounded first. An edit that would leave
// Min >= Max is clamped one Step away from the opposite bound instead of
// being rejected; in integer mode the clamped bound is the nearest whole
// number a Step away, so a fractional range kept from decimal mode still
// yields a whole bound. Where the Step is lost to float64 rounding the
// clamped bound is the next representable value. A non-finite newValue, or
// a clamp that would overflow, leaves r unchanged. Reverse and Unit are
// carried over.
func ApplyManualEdit(r DimensionRange, field RangeField, newValue float64, integerMode bool) DimensionRange {
	if math.IsNaN(newValue) || math.IsInf(newValue, 0) {
		return r
	}
	if integerMode {
		newValue = math.Round(newValue)
	}

	switch field {
	case FieldMin:
		if newValue >= r.Max {
			newValue = below(r.Max, integerMode)
		}
		if math.IsInf(newValue, 0) {
			return r
		}
		r.Min = newValue
	case FieldMax:
		if newValue <= r.Min {
			newValue = above(r.Min, integerMode)
		}
		if math.IsInf(newValue, 0) {
			return r
		}
		r.Max = newValue
	}
	return r
}
