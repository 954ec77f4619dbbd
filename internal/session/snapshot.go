package session

import (
	"radarcli/internal/radar"
)

// Snapshot is the render contract for one session at one revision. It holds
// everything a renderer needs and shares no memory with the session.
type Snapshot struct {
	ID         string                        `json:"id"`
	Revision   uint64                        `json:"revision"`
	Settings   Settings                      `json:"settings"`
	Dimensions []string                      `json:"dimensions"`
	Series     []string                      `json:"series"`
	Values     map[string]map[string]float64 `json:"values"`
	Axes       []Axis                        `json:"axes"`
	Polygons   []Polygon                     `json:"polygons"`
	Colors     map[string]string             `json:"colors"`
}

// Axis is one spoke of the chart with its scale and grid rings.
type Axis struct {
	Dimension string               `json:"dimension"`
	Angle     float64              `json:"angle"`
	Range     radar.DimensionRange `json:"range"`
	Manual    bool                 `json:"manual"`
	Ticks     []radar.Tick         `json:"ticks"`
}

// Polygon is the outline of one series.
type Polygon struct {
	Series string   `json:"series"`
	Color  string   `json:"color"`
	Points []Vertex `json:"points"`
}

// Vertex is a NormalizedPoint with its offset from the chart center for the
// session's grid radius.
type Vertex struct {
	radar.NormalizedPoint
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Empty reports whether the snapshot carries no chart data.
func (s Snapshot) Empty() bool {
	return len(s.Dimensions) == 0 || len(s.Series) == 0
}
