package radar

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/aclements/go-moremath/scale"
)

// DefaultMaxTicks is the grid-ring count used when none is configured.
const DefaultMaxTicks = 5

// Tick is one labelled grid ring on an axis.
type Tick struct {
	Value float64 `json:"value"`
	// Ratio is the ring's distance from the center, honoring Reverse.
	Ratio float64 `json:"ratio"`
	Label string  `json:"label"`
}

// FormatTick renders a scale value for display.
//
// In integer mode the value is rounded to the nearest integer. Otherwise the
// precision tiers by magnitude: two decimals below 1, one decimal below 10,
// and a rounded integer from 10 up.
func FormatTick(value float64, integerMode bool) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return strconv.FormatFloat(value, 'f', -1, 64)
	}

	prec := 0
	if !integerMode {
		switch abs := math.Abs(value); {
		case abs < 1:
			prec = 2
		case abs < 10:
			prec = 1
		}
	}
	if prec == 0 {
		value = math.Round(value)
	}
	return trimNegativeZero(strconv.FormatFloat(value, 'f', prec, 64))
}

// trimNegativeZero turns "-0", "-0.0" and "-0.00" into their unsigned form.
func trimNegativeZero(s string) string {
	if !strings.HasPrefix(s, "-") {
		return s
	}
	if strings.Trim(s[1:], "0.") == "" {
		return s[1:]
	}
	return s
}

// AxisTicks returns the grid rings for r: both bounds plus up to maxTicks
// evenly spaced "nice" values in between, ordered by value. Each tick carries
// its label and its ratio along the axis, so reverse axes list the outer ring
// first in ratio terms.
func AxisTicks(r DimensionRange, integerMode bool, maxTicks int) []Tick {
	if r.Degenerate() {
		return []Tick{{Value: r.Min, Ratio: 0, Label: FormatTick(r.Min, integerMode)}}
	}
	if maxTicks < 2 {
		maxTicks = DefaultMaxTicks
	}

	values := []float64{r.Min, r.Max}
	ls := scale.Linear{Min: r.Min, Max: r.Max}
	major, _ := ls.Ticks(scale.TickOptions{Max: maxTicks})
	eps := r.Span() * 1e-9
	for _, v := range major {
		if math.IsInf(v, 0) || math.IsNaN(v) || v <= r.Min+eps || v >= r.Max-eps {
			continue
		}
		if integerMode && v != math.Round(v) {
			continue
		}
		values = append(values, v)
	}
	sort.Float64s(values)

	ticks := make([]Tick, 0, len(values))
	for _, v := range values {
		ticks = append(ticks, Tick{
			Value: v,
			Ratio: Ratio(v, r),
			Label: FormatTick(v, integerMode),
		})
	}
	return ticks
}
