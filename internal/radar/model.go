package radar

import (
	"math"
	"strconv"
	"strings"
)

// SeriesModel is the canonical dimensions × series view of a parsed table.
// Dimension and series order follow the source table; axis order and legend
// order are tied to it. A model is immutable once built.
type SeriesModel struct {
	dimensions []string
	series     []string
	// values is dimension-major: values[dimension][series]
	values map[string]map[string]float64
}

// BuildModel transposes a Table into a SeriesModel.
//
// The first header cell labels the series-name column and is dropped; the
// remaining header cells become dimensions. Each row's first cell names a
// series and the remaining cells are its values, coerced with
// ParseFloatOrDefault. A repeated series name overwrites the earlier values
// but keeps its first position. Repeated dimension names keep the last column.
func BuildModel(table Table) *SeriesModel {
	m := &SeriesModel{
		values: make(map[string]map[string]float64),
	}

	// column index per dimension; a repeated header wins with its last column
	columns := make(map[string]int)
	for i := 1; i < len(table.Headers); i++ {
		dim := table.Headers[i]
		if _, seen := columns[dim]; !seen {
			m.dimensions = append(m.dimensions, dim)
			m.values[dim] = make(map[string]float64)
		}
		columns[dim] = i
	}

	seen := make(map[string]bool)
	for _, row := range table.Rows {
		name := ""
		if len(row) > 0 {
			name = row[0]
		}
		if !seen[name] {
			seen[name] = true
			m.series = append(m.series, name)
		}
		for _, dim := range m.dimensions {
			cell := ""
			if col := columns[dim]; col < len(row) {
				cell = row[col]
			}
			m.values[dim][name] = ParseFloatOrDefault(cell, 0)
		}
	}

	return m
}

// ParseFloatOrDefault parses a cell as a finite float64 and returns def when
// the cell is empty, non-numeric, NaN or infinite. This is intentional
// leniency: a partially pasted table must still render.
func ParseFloatOrDefault(cell string, def float64) float64 {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return def
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return v
}

// Dimensions returns the dimension names in axis order.
func (m *SeriesModel) Dimensions() []string {
	return append([]string(nil), m.dimensions...)
}

// Series returns the series names in legend order.
func (m *SeriesModel) Series() []string {
	return append([]string(nil), m.series...)
}

// HasDimension reports whether dim is one of the model's dimensions.
func (m *SeriesModel) HasDimension(dim string) bool {
	_, ok := m.values[dim]
	return ok
}

// HasSeries reports whether name is one of the model's series.
func (m *SeriesModel) HasSeries(name string) bool {
	for _, s := range m.series {
		if s == name {
			return true
		}
	}
	return false
}

// Value returns the value of series on dim, or 0 when either is unknown.
func (m *SeriesModel) Value(dim, series string) float64 {
	return m.values[dim][series]
}

// DimensionValues returns every series' value on dim, in series order.
func (m *SeriesModel) DimensionValues(dim string) []float64 {
	col, ok := m.values[dim]
	if !ok {
		return nil
	}
	out := make([]float64, len(m.series))
	for i, s := range m.series {
		out[i] = col[s]
	}
	return out
}

// SeriesValues returns the values of series across dimensions, in axis order.
func (m *SeriesModel) SeriesValues(series string) []float64 {
	out := make([]float64, len(m.dimensions))
	for i, dim := range m.dimensions {
		out[i] = m.values[dim][series]
	}
	return out
}

// Values returns a copy of the value grid keyed by dimension then series.
func (m *SeriesModel) Values() map[string]map[string]float64 {
	out := make(map[string]map[string]float64, len(m.values))
	for dim, col := range m.values {
		c := make(map[string]float64, len(col))
		for s, v := range col {
			c[s] = v
		}
		out[dim] = c
	}
	return out
}
