// Package radar implements the data-to-geometry engine behind the radar (spider)
// chart: tabular text in, normalized polar coordinates and tick labels out.
//
// # Core Components
//
// The engine is a chain of pure functions, each taking and returning values:
//
//  1. Tabular parsing: ParseTable turns tab- or comma-delimited text into a Table
//  2. Series model: BuildModel transposes the table into dimensions × series
//  3. Range resolution: ResolveAuto / ApplyManualEdit compute per-axis ranges
//  4. Polar mapping: MapSeries converts raw values into ratios, angles and offsets
//  5. Tick formatting: FormatTick and AxisTicks render grid-ring labels
//  6. Color assignment: AssignColors hands out stable palette colors per series
//
// # Architecture
//
//   - table.go: delimiter detection and line splitting
//   - model.go: SeriesModel and lenient numeric coercion
//   - ranges.go: automatic ranges, nice-number rounding and manual edits
//   - polar.go: axis angles, ratios and Cartesian offsets
//   - ticks.go: tick label policy and grid-ring tick values
//   - colors.go: palette lookup, stable assignment and overrides
//
// # Leniency
//
// Nothing in this package returns an error. Malformed input degrades to a
// defined fallback instead: a paste with fewer than two lines yields no table,
// a non-numeric cell becomes 0, a conflicting range edit is clamped and a
// collapsed range maps every value to the center.
//
// # Usage Example
//
//	table, ok := radar.ParseTable(text)
//	if !ok {
//	    return // keep the previous model
//	}
//	model := radar.BuildModel(table)
//	ranges := radar.ResolveAll(model, integerMode)
//	for _, series := range model.Series() {
//	    points := radar.MapSeries(series, model, ranges)
//	    for _, p := range points {
//	        x, y := p.Offset(gridRadius)
//	        _ = x + y
//	    }
//	}
package radar
