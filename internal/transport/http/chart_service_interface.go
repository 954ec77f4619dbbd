package http

import (
	"context"
	"io"

	"radarcli/internal/session"
	api "radarcli/pkg/contracts/api/v1"
)

// ChartServiceInterface defines the chart operations the HTTP API exposes
type ChartServiceInterface interface {
	CreateSession(ctx context.Context, req api.CreateSessionRequest) (session.Snapshot, error)
	ListSessions(ctx context.Context, limit int) []session.Info
	GetSnapshot(ctx context.Context, id string) (session.Snapshot, error)
	DeleteSession(ctx context.Context, id string) error

	LoadData(ctx context.Context, id, text string) (session.Snapshot, bool, error)
	ImportWorkbook(ctx context.Context, id string, r io.Reader, sheet string) (session.Snapshot, error)

	UpdateSettings(ctx context.Context, id string, req api.UpdateSettingsRequest) (session.Snapshot, error)
	UpdateDimension(ctx context.Context, id, dim string, req api.UpdateDimensionRequest) (session.Snapshot, error)
	ResetRange(ctx context.Context, id, dim string) (session.Snapshot, error)
	SetColor(ctx context.Context, id, series, color string) (session.Snapshot, error)
	ClearColor(ctx context.Context, id, series string) (session.Snapshot, error)
}
