package http

import (
	"radarcli/internal/session"
)

// LoadDataResponse is returned by the data and import endpoints. Accepted
// is false when a paste held no table and the previous chart was kept.
type LoadDataResponse struct {
	Accepted bool             `json:"accepted"`
	Snapshot session.Snapshot `json:"snapshot"`
}

// SessionListResponse is returned by GET /api/sessions
type SessionListResponse struct {
	Sessions []session.Info `json:"sessions"`
	Count    int            `json:"count"`
}
