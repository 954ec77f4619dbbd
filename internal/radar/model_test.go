package radar

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustModel(t *testing.T, text string) *SeriesModel {
	t.Helper()
	table, ok := ParseTable(text)
	require.True(t, ok, "table should parse")
	return BuildModel(table)
}

// TestBuildModel tests the transposition of a table into dimensions and series
func TestBuildModel(t *testing.T) {
	m := mustModel(t, "Model\tA\tB\nX\t10\t90\nY\t20\t10")

	assert.Equal(t, []string{"A", "B"}, m.Dimensions())
	assert.Equal(t, []string{"X", "Y"}, m.Series())
	assert.Equal(t, 10.0, m.Value("A", "X"))
	assert.Equal(t, 10.0, m.Value("B", "Y"))
	assert.Equal(t, []float64{10, 20}, m.DimensionValues("A"))
	assert.Equal(t, []float64{90, 10}, m.SeriesValues("X"))
	assert.True(t, m.HasDimension("B"))
	assert.False(t, m.HasDimension("Model"))
	assert.True(t, m.HasSeries("Y"))
	assert.False(t, m.HasSeries("Z"))
}

// TestBuildModel_Leniency tests that bad cells and short rows become zero
func TestBuildModel_Leniency(t *testing.T) {
	m := mustModel(t, "Model,A,B,C\nX,abc,,7\nY,1.5")

	assert.Equal(t, []float64{0, 0, 7}, m.SeriesValues("X"))
	assert.Equal(t, []float64{1.5, 0, 0}, m.SeriesValues("Y"))
}

// TestBuildModel_DuplicateSeries tests last-write-wins with first position kept
func TestBuildModel_DuplicateSeries(t *testing.T) {
	m := mustModel(t, "Model\tA\nX\t1\nY\t2\nX\t3")

	assert.Equal(t, []string{"X", "Y"}, m.Series())
	assert.Equal(t, 3.0, m.Value("A", "X"))
}

// TestBuildModel_Shape tests the dimension and series counts for generated tables
func TestBuildModel_Shape(t *testing.T) {
	for h := 2; h <= 6; h++ {
		for r := 1; r <= 4; r++ {
			t.Run(fmt.Sprintf("h=%d r=%d", h, r), func(t *testing.T) {
				var b strings.Builder
				headers := []string{"Model"}
				for i := 1; i < h; i++ {
					headers = append(headers, fmt.Sprintf("D%d", i))
				}
				b.WriteString(strings.Join(headers, "\t") + "\n")
				for j := 0; j < r; j++ {
					row := []string{fmt.Sprintf("S%d", j)}
					for i := 1; i < h; i++ {
						row = append(row, fmt.Sprint(i*j))
					}
					b.WriteString(strings.Join(row, "\t") + "\n")
				}

				m := mustModel(t, b.String())
				assert.Len(t, m.Dimensions(), h-1)
				assert.Len(t, m.Series(), r)
			})
		}
	}
}

// TestBuildModel_CopiesAreIndependent tests that accessors never expose internal state
func TestBuildModel_CopiesAreIndependent(t *testing.T) {
	m := mustModel(t, "Model\tA\nX\t1")

	dims := m.Dimensions()
	dims[0] = "mutated"
	values := m.Values()
	values["A"]["X"] = 99

	assert.Equal(t, []string{"A"}, m.Dimensions())
	assert.Equal(t, 1.0, m.Value("A", "X"))
}

// TestParseFloatOrDefault tests the explicit lenient coercion
func TestParseFloatOrDefault(t *testing.T) {
	tests := []struct {
		cell string
		want float64
	}{
		{"42", 42},
		{" -3.5 ", -3.5},
		{"1e3", 1000},
		{"", 0},
		{"n/a", 0},
		{"NaN", 0},
		{"Inf", 0},
		{"12%", 0},
	}

	for _, tt := range tests {
		t.Run(tt.cell, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseFloatOrDefault(tt.cell, 0))
		})
	}
	assert.Equal(t, -1.0, ParseFloatOrDefault("x", -1))
}
