package session

import (
	"fmt"
	"strings"

	"radarcli/internal/radar"
)

// Settings is the configuration surface of a session.
type Settings struct {
	IntegerMode bool    `json:"integer_mode" yaml:"integer_mode"`
	AutoScale   bool    `json:"auto_scale" yaml:"auto_scale"`
	PaletteName string  `json:"palette" yaml:"palette"`
	GridRadius  float64 `json:"grid_radius" yaml:"grid_radius"`
	MaxTicks    int     `json:"max_ticks" yaml:"max_ticks"`
}

// DefaultSettings returns auto-scaled decimal settings on the default palette.
func DefaultSettings() Settings {
	return Settings{
		AutoScale:   true,
		PaletteName: radar.DefaultPaletteName,
		GridRadius:  100,
		MaxTicks:    radar.DefaultMaxTicks,
	}
}

func (s Settings) normalized() Settings {
	if s.PaletteName == "" || !radar.KnownPalette(s.PaletteName) {
		s.PaletteName = radar.DefaultPaletteName
	}
	if !(s.GridRadius > 0) {
		s.GridRadius = 100
	}
	if s.MaxTicks < 2 {
		s.MaxTicks = radar.DefaultMaxTicks
	}
	return s
}

// Session owns the model, range and color state of one chart and runs a full
// recompute pass on every mutation.
//
// A Session is not safe for concurrent use; the Store serializes access
// through Store.With.
type Session struct {
	id       string
	settings Settings
	text     string

	model  *radar.SeriesModel
	ranges map[string]radar.DimensionRange
	// manual marks dimensions whose range was edited by hand. They are never
	// re-derived or re-rounded until ResetRange.
	manual    map[string]bool
	colors    radar.ColorAssignment
	overrides map[string]string

	revision uint64
}

// New creates an empty session.
func New(id string, settings Settings) *Session {
	return &Session{
		id:        id,
		settings:  settings.normalized(),
		model:     radar.BuildModel(radar.Table{}),
		ranges:    make(map[string]radar.DimensionRange),
		manual:    make(map[string]bool),
		colors:    make(radar.ColorAssignment),
		overrides: make(map[string]string),
	}
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Revision returns the number of mutations applied so far.
func (s *Session) Revision() uint64 { return s.revision }

// Settings returns the current settings.
func (s *Session) Settings() Settings { return s.settings }

// Text returns the last accepted paste buffer.
func (s *Session) Text() string { return s.text }

// LoadText parses text and, if it holds a table, replaces the model. A
// rejected paste keeps the previous model and reports false.
func (s *Session) LoadText(text string) (Snapshot, bool) {
	table, ok := radar.ParseTable(text)
	if !ok {
		return s.Snapshot(), false
	}
	s.text = text
	s.load(table)
	return s.Snapshot(), true
}

// LoadTable replaces the model with one built from table. A table without
// data rows is rejected like a short paste.
func (s *Session) LoadTable(table radar.Table) (Snapshot, bool) {
	if table.Empty() {
		return s.Snapshot(), false
	}
	s.text = table.Text()
	s.load(table)
	return s.Snapshot(), true
}

func (s *Session) load(table radar.Table) {
	s.model = radar.BuildModel(table)

	for _, dim := range s.model.Dimensions() {
		prev, seen := s.ranges[dim]
		switch {
		case !seen:
			s.ranges[dim] = s.resolve(dim, prev)
		case s.settings.AutoScale && !s.manual[dim]:
			s.ranges[dim] = s.resolve(dim, prev)
		}
	}

	s.assignColors()
	s.revision++
}

// resolve derives the auto range of dim, carrying over reverse and unit.
func (s *Session) resolve(dim string, prev radar.DimensionRange) radar.DimensionRange {
	r := radar.ResolveAuto(dim, s.model.DimensionValues(dim), s.settings.IntegerMode)
	r.Reverse = prev.Reverse
	r.Unit = prev.Unit
	return r
}

func (s *Session) rederive() {
	if !s.settings.AutoScale {
		return
	}
	for _, dim := range s.model.Dimensions() {
		if s.manual[dim] {
			continue
		}
		s.ranges[dim] = s.resolve(dim, s.ranges[dim])
	}
}

func (s *Session) assignColors() {
	palette := radar.PaletteByName(s.settings.PaletteName)
	s.colors = radar.AssignColors(s.model.Series(), s.colors, palette)
}

// SetIntegerMode switches the rounding policy. Auto ranges are re-derived
// when auto-scale is on; manual ranges keep their saved values.
func (s *Session) SetIntegerMode(on bool) Snapshot {
	s.settings.IntegerMode = on
	s.rederive()
	s.revision++
	return s.Snapshot()
}

// SetAutoScale toggles auto-scaling. Turning it on re-derives every
// non-manual range; turning it off freezes the current ranges.
func (s *Session) SetAutoScale(on bool) Snapshot {
	s.settings.AutoScale = on
	s.rederive()
	s.revision++
	return s.Snapshot()
}

// SetPalette changes the palette used for series seen from now on. Series
// that already hold a color keep it.
func (s *Session) SetPalette(name string) Snapshot {
	s.settings.PaletteName = name
	s.settings = s.settings.normalized()
	s.revision++
	return s.Snapshot()
}

// EditRange sets one bound of dim by hand and marks the dimension manual.
func (s *Session) EditRange(dim string, field radar.RangeField, value float64) (Snapshot, error) {
	if !s.model.HasDimension(dim) {
		return Snapshot{}, fmt.Errorf("edit %s of %q: %w", field, dim, ErrUnknownDimension)
	}
	if !field.Valid() {
		return Snapshot{}, fmt.Errorf("edit %q of %q: %w", field, dim, ErrInvalidField)
	}
	s.ranges[dim] = radar.ApplyManualEdit(s.ranges[dim], field, value, s.settings.IntegerMode)
	s.manual[dim] = true
	s.revision++
	return s.Snapshot(), nil
}

// ResetRange drops the manual range of dim and restores its auto range.
// Reverse and unit are kept.
func (s *Session) ResetRange(dim string) (Snapshot, error) {
	if !s.model.HasDimension(dim) {
		return Snapshot{}, fmt.Errorf("reset range of %q: %w", dim, ErrUnknownDimension)
	}
	delete(s.manual, dim)
	s.ranges[dim] = s.resolve(dim, s.ranges[dim])
	s.revision++
	return s.Snapshot(), nil
}

// SetReverse inverts the axis of dim.
func (s *Session) SetReverse(dim string, reverse bool) (Snapshot, error) {
	if !s.model.HasDimension(dim) {
		return Snapshot{}, fmt.Errorf("set reverse of %q: %w", dim, ErrUnknownDimension)
	}
	r := s.ranges[dim]
	r.Reverse = reverse
	s.ranges[dim] = r
	s.revision++
	return s.Snapshot(), nil
}

// SetUnit sets the display unit of dim.
func (s *Session) SetUnit(dim, unit string) (Snapshot, error) {
	if !s.model.HasDimension(dim) {
		return Snapshot{}, fmt.Errorf("set unit of %q: %w", dim, ErrUnknownDimension)
	}
	r := s.ranges[dim]
	r.Unit = strings.TrimSpace(unit)
	s.ranges[dim] = r
	s.revision++
	return s.Snapshot(), nil
}

// SetColorOverride pins the color of series. The stable assignment is left
// alone so clearing the override restores it.
func (s *Session) SetColorOverride(series, color string) (Snapshot, error) {
	if !s.model.HasSeries(series) {
		return Snapshot{}, fmt.Errorf("set color of %q: %w", series, ErrUnknownSeries)
	}
	if !radar.ValidColor(color) {
		return Snapshot{}, fmt.Errorf("set color of %q to %q: %w", series, color, ErrInvalidColor)
	}
	s.overrides[series] = strings.ToLower(color)
	s.revision++
	return s.Snapshot(), nil
}

// ClearColorOverride removes the override of series, if any.
func (s *Session) ClearColorOverride(series string) (Snapshot, error) {
	if _, ok := s.colors[series]; !ok {
		return Snapshot{}, fmt.Errorf("clear color of %q: %w", series, ErrUnknownSeries)
	}
	delete(s.overrides, series)
	s.revision++
	return s.Snapshot(), nil
}

// Range returns the stored range of dim, including dimensions that are not
// part of the current model.
func (s *Session) Range(dim string) (radar.DimensionRange, bool) {
	r, ok := s.ranges[dim]
	return r, ok
}

// HasDimension reports whether dim is an axis of the current model.
func (s *Session) HasDimension(dim string) bool {
	return s.model.HasDimension(dim)
}

// Manual reports whether dim carries a hand-edited range.
func (s *Session) Manual(dim string) bool {
	return s.manual[dim]
}

// Snapshot runs the mapping pass over the current state.
func (s *Session) Snapshot() Snapshot {
	dims := s.model.Dimensions()
	if dims == nil {
		dims = []string{}
	}
	series := s.model.Series()
	if series == nil {
		series = []string{}
	}

	ranges := make(map[string]radar.DimensionRange, len(dims))
	axes := make([]Axis, 0, len(dims))
	for i, dim := range dims {
		r := s.ranges[dim]
		ranges[dim] = r
		axes = append(axes, Axis{
			Dimension: dim,
			Angle:     radar.AxisAngle(i, len(dims)),
			Range:     r,
			Manual:    s.manual[dim],
			Ticks:     radar.AxisTicks(r, s.settings.IntegerMode, s.settings.MaxTicks),
		})
	}

	effective := radar.MergeOverrides(s.colors, s.overrides)
	colors := make(map[string]string, len(series))
	polygons := make([]Polygon, 0, len(series))
	for _, name := range series {
		colors[name] = effective[name]

		points := radar.MapSeries(name, s.model, ranges)
		vertices := make([]Vertex, 0, len(points))
		for _, p := range points {
			x, y := p.Offset(s.settings.GridRadius)
			vertices = append(vertices, Vertex{NormalizedPoint: p, X: x, Y: y})
		}
		polygons = append(polygons, Polygon{Series: name, Color: effective[name], Points: vertices})
	}

	return Snapshot{
		ID:         s.id,
		Revision:   s.revision,
		Settings:   s.settings,
		Dimensions: dims,
		Series:     series,
		Values:     s.model.Values(),
		Axes:       axes,
		Polygons:   polygons,
		Colors:     colors,
	}
}
