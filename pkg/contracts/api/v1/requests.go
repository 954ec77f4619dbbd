// Package api contains the request contracts of the chart HTTP API.
// Version v1 represents the current stable API version.
package api

// Optional fields are pointers so an absent member leaves the current value
// alone while an explicit false or zero is applied.

// CreateSessionRequest represents a request to open a chart session. Unset
// settings fall back to the server's chart defaults.
type CreateSessionRequest struct {
	IntegerMode *bool    `json:"integer_mode,omitempty"`
	AutoScale   *bool    `json:"auto_scale,omitempty"`
	Palette     *string  `json:"palette,omitempty" validate:"omitempty,palette"`
	GridRadius  *float64 `json:"grid_radius,omitempty" validate:"omitempty,gt=0"`
	MaxTicks    *int     `json:"max_ticks,omitempty" validate:"omitempty,gte=2,lte=20"`
	// Data is an optional first paste
	Data string `json:"data,omitempty"`
}

// LoadDataRequest replaces the paste buffer of a session
type LoadDataRequest struct {
	Data string `json:"data"`
}

// UpdateSettingsRequest toggles session settings
type UpdateSettingsRequest struct {
	IntegerMode *bool   `json:"integer_mode,omitempty"`
	AutoScale   *bool   `json:"auto_scale,omitempty"`
	Palette     *string `json:"palette,omitempty" validate:"omitempty,palette"`
}

// Empty reports whether the request changes nothing
func (r UpdateSettingsRequest) Empty() bool {
	return r.IntegerMode == nil && r.AutoScale == nil && r.Palette == nil
}

// UpdateDimensionRequest edits one axis. Min and Max are applied as manual
// range edits, Min first.
type UpdateDimensionRequest struct {
	Min     *float64 `json:"min,omitempty"`
	Max     *float64 `json:"max,omitempty"`
	Reverse *bool    `json:"reverse,omitempty"`
	Unit    *string  `json:"unit,omitempty" validate:"omitempty,max=32"`
}

// Empty reports whether the request changes nothing
func (r UpdateDimensionRequest) Empty() bool {
	return r.Min == nil && r.Max == nil && r.Reverse == nil && r.Unit == nil
}

// SetColorRequest overrides the color of one series
type SetColorRequest struct {
	Color string `json:"color" validate:"required,hexcolor"`
}

// ListSessionsRequest holds the query parameters of the session listing
type ListSessionsRequest struct {
	Limit int `query:"limit" validate:"omitempty,min=1,max=1000"`
}
