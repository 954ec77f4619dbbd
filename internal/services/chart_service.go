package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"radarcli/internal/config"
	"radarcli/internal/infrastructure"
	"radarcli/internal/radar"
	"radarcli/internal/session"
	"radarcli/internal/sources"
	api "radarcli/pkg/contracts/api/v1"
)

// Publisher pushes session events to live subscribers. Implementations must
// not block: events are published while the session lock is held so that
// subscribers see revisions in order.
type Publisher interface {
	PublishSnapshot(ctx context.Context, sessionID string, snapshot interface{})
	PublishDeleted(ctx context.Context, sessionID, reason string)
}

// ChartService applies API requests to chart sessions. Every mutation runs
// under the session lock, is traced and counted, and publishes the new
// snapshot to the session's subscribers.
type ChartService struct {
	store     *session.Store
	defaults  session.Settings
	publisher Publisher
	metrics   *infrastructure.ChartMetrics
	tracer    trace.Tracer
	logger    *slog.Logger
}

// NewChartService creates a chart service over store. publisher and metrics
// may be nil.
func NewChartService(store *session.Store, chart config.ChartConfig, publisher Publisher, metrics *infrastructure.ChartMetrics, logger *slog.Logger) *ChartService {
	if logger == nil {
		logger = slog.Default()
	}

	s := &ChartService{
		store:     store,
		defaults:  SettingsFromConfig(chart),
		publisher: publisher,
		metrics:   metrics,
		tracer:    otel.Tracer(infrastructure.MeterName + "/services"),
		logger:    logger.With(slog.String("component", "chart_service")),
	}
	store.OnEvict(s.sessionsExpired)
	return s
}

// SettingsFromConfig converts the configured chart defaults to session
// settings
func SettingsFromConfig(chart config.ChartConfig) session.Settings {
	return session.Settings{
		IntegerMode: chart.IntegerMode,
		AutoScale:   chart.AutoScale,
		PaletteName: chart.Palette,
		GridRadius:  chart.GridRadius,
		MaxTicks:    chart.MaxTicks,
	}
}

// Defaults returns the settings new sessions start from
func (s *ChartService) Defaults() session.Settings {
	return s.defaults
}

// CreateSession opens a session from the defaults overlaid with req. A
// non-empty req.Data is loaded as the first paste; a rejected paste still
// creates the (empty) session.
func (s *ChartService) CreateSession(ctx context.Context, req api.CreateSessionRequest) (session.Snapshot, error) {
	ctx, span := s.tracer.Start(ctx, "chart.create_session")
	defer span.End()

	settings := s.defaults
	if req.IntegerMode != nil {
		settings.IntegerMode = *req.IntegerMode
	}
	if req.AutoScale != nil {
		settings.AutoScale = *req.AutoScale
	}
	if req.Palette != nil {
		settings.PaletteName = *req.Palette
	}
	if req.GridRadius != nil {
		settings.GridRadius = *req.GridRadius
	}
	if req.MaxTicks != nil {
		settings.MaxTicks = *req.MaxTicks
	}

	sess := s.store.Create(settings)
	infrastructure.RecordSessionChange(ctx, s.metrics, 1)
	span.SetAttributes(attribute.String("chart.session_id", sess.ID()))

	logger := infrastructure.WithSession(s.logger, sess.ID())
	logger.InfoContext(ctx, "session created",
		slog.Bool("integer_mode", settings.IntegerMode),
		slog.Bool("auto_scale", settings.AutoScale),
		slog.String("palette", settings.PaletteName))

	if req.Data == "" {
		var snap session.Snapshot
		err := s.store.With(sess.ID(), func(sess *session.Session) error {
			snap = sess.Snapshot()
			return nil
		})
		return snap, err
	}

	snap, _, err := s.LoadData(ctx, sess.ID(), req.Data)
	return snap, err
}

// ListSessions returns up to limit sessions, newest first. A non-positive
// limit returns all of them.
func (s *ChartService) ListSessions(ctx context.Context, limit int) []session.Info {
	infos := s.store.List()
	if limit > 0 && len(infos) > limit {
		infos = infos[:limit]
	}
	return infos
}

// GetSnapshot returns the current render contract of a session
func (s *ChartService) GetSnapshot(ctx context.Context, id string) (session.Snapshot, error) {
	var snap session.Snapshot
	err := s.store.With(id, func(sess *session.Session) error {
		snap = sess.Snapshot()
		return nil
	})
	return snap, err
}

// DeleteSession removes a session and disconnects its subscribers
func (s *ChartService) DeleteSession(ctx context.Context, id string) error {
	if err := s.store.Delete(id); err != nil {
		return err
	}
	infrastructure.RecordSessionChange(ctx, s.metrics, -1)
	infrastructure.WithSession(s.logger, id).InfoContext(ctx, "session deleted")

	if s.publisher != nil {
		s.publisher.PublishDeleted(ctx, id, "deleted")
	}
	return nil
}

// LoadData replaces the paste buffer of a session. accepted is false when
// text holds no table; the session then keeps its previous model and the
// returned snapshot is unchanged.
func (s *ChartService) LoadData(ctx context.Context, id, text string) (snap session.Snapshot, accepted bool, err error) {
	snap, err = s.mutate(ctx, id, "load_text", func(sess *session.Session) (session.Snapshot, error) {
		next, ok := sess.LoadText(text)
		accepted = ok
		if !ok {
			return next, errPasteRejected
		}
		return next, nil
	})
	if errors.Is(err, errPasteRejected) {
		infrastructure.RecordParseFailure(ctx, s.metrics, "text")
		infrastructure.AddSpanEvent(ctx, "chart.paste_rejected", map[string]any{"bytes": len(text)})
		infrastructure.WithSession(s.logger, id).InfoContext(ctx, "paste rejected, keeping previous table",
			slog.Int("bytes", len(text)))
		return snap, false, nil
	}
	return snap, accepted, err
}

// errPasteRejected marks a paste without a table inside mutate so nothing is
// published. It never leaves the service.
var errPasteRejected = errors.New("paste rejected")

// ImportWorkbook loads sheet of the Excel workbook read from r into a
// session. An empty sheet picks the first sheet holding a table.
func (s *ChartService) ImportWorkbook(ctx context.Context, id string, r io.Reader, sheet string) (session.Snapshot, error) {
	// Fail fast on unknown sessions before parsing the upload
	if _, err := s.store.Get(id); err != nil {
		return session.Snapshot{}, err
	}

	table, err := sources.ReadWorkbook(r, sheet)
	if err != nil {
		infrastructure.RecordParseFailure(ctx, s.metrics, "workbook")
		infrastructure.WithSession(s.logger, id).WarnContext(ctx, "workbook import failed",
			slog.String("sheet", sheet),
			slog.String("error", err.Error()))
		return session.Snapshot{}, err
	}

	return s.mutate(ctx, id, "load_workbook", func(sess *session.Session) (session.Snapshot, error) {
		snap, ok := sess.LoadTable(table)
		if !ok {
			return snap, fmt.Errorf("sheet %q: %w", sheet, sources.ErrNoTable)
		}
		return snap, nil
	})
}

// UpdateSettings applies the present fields of req in the order palette,
// integer mode, auto-scale
func (s *ChartService) UpdateSettings(ctx context.Context, id string, req api.UpdateSettingsRequest) (session.Snapshot, error) {
	return s.mutate(ctx, id, "settings", func(sess *session.Session) (session.Snapshot, error) {
		snap := sess.Snapshot()
		if req.Palette != nil {
			snap = sess.SetPalette(*req.Palette)
		}
		if req.IntegerMode != nil {
			snap = sess.SetIntegerMode(*req.IntegerMode)
		}
		if req.AutoScale != nil {
			snap = sess.SetAutoScale(*req.AutoScale)
		}
		return snap, nil
	})
}

// UpdateDimension edits one axis. Min is applied before Max, so a request
// carrying both sees the new min when the max is checked.
func (s *ChartService) UpdateDimension(ctx context.Context, id, dim string, req api.UpdateDimensionRequest) (session.Snapshot, error) {
	return s.mutate(ctx, id, "dimension", func(sess *session.Session) (snap session.Snapshot, err error) {
		if !sess.HasDimension(dim) {
			return snap, fmt.Errorf("dimension %q: %w", dim, session.ErrUnknownDimension)
		}
		snap = sess.Snapshot()
		if req.Min != nil {
			if snap, err = sess.EditRange(dim, radar.FieldMin, *req.Min); err != nil {
				return snap, err
			}
		}
		if req.Max != nil {
			if snap, err = sess.EditRange(dim, radar.FieldMax, *req.Max); err != nil {
				return snap, err
			}
		}
		if req.Reverse != nil {
			if snap, err = sess.SetReverse(dim, *req.Reverse); err != nil {
				return snap, err
			}
		}
		if req.Unit != nil {
			if snap, err = sess.SetUnit(dim, *req.Unit); err != nil {
				return snap, err
			}
		}
		return snap, nil
	})
}

// ResetRange restores the auto range of dim
func (s *ChartService) ResetRange(ctx context.Context, id, dim string) (session.Snapshot, error) {
	return s.mutate(ctx, id, "reset_range", func(sess *session.Session) (session.Snapshot, error) {
		return sess.ResetRange(dim)
	})
}

// SetColor overrides the color of series
func (s *ChartService) SetColor(ctx context.Context, id, series, color string) (session.Snapshot, error) {
	return s.mutate(ctx, id, "set_color", func(sess *session.Session) (session.Snapshot, error) {
		return sess.SetColorOverride(series, color)
	})
}

// ClearColor removes the color override of series
func (s *ChartService) ClearColor(ctx context.Context, id, series string) (session.Snapshot, error) {
	return s.mutate(ctx, id, "clear_color", func(sess *session.Session) (session.Snapshot, error) {
		return sess.ClearColorOverride(series)
	})
}

// SessionCount returns the number of live sessions
func (s *ChartService) SessionCount() int {
	return s.store.Len()
}

// RunSweeper evicts sessions idle for longer than ttl every interval until
// ctx is done
func (s *ChartService) RunSweeper(ctx context.Context, interval, ttl time.Duration) error {
	s.logger.InfoContext(ctx, "session sweeper started",
		slog.Duration("interval", interval),
		slog.Duration("ttl", ttl))
	s.store.Run(ctx, interval, ttl)
	return nil
}

// sessionsExpired is the store's eviction hook
func (s *ChartService) sessionsExpired(ids []string) {
	ctx := infrastructure.EnsureTraceID(context.Background())
	infrastructure.RecordSessionEviction(ctx, s.metrics, len(ids))
	if s.publisher == nil {
		return
	}
	for _, id := range ids {
		s.publisher.PublishDeleted(ctx, id, "expired")
	}
}

// mutate runs fn under the session lock. On success the snapshot is
// published before the lock is released.
func (s *ChartService) mutate(ctx context.Context, id, operation string, fn func(*session.Session) (session.Snapshot, error)) (session.Snapshot, error) {
	ctx, span := s.tracer.Start(ctx, "chart."+operation,
		trace.WithAttributes(attribute.String("chart.session_id", id)))
	defer span.End()

	logger := infrastructure.WithSession(s.logger, id)
	start := time.Now()

	var snap session.Snapshot
	err := s.store.With(id, func(sess *session.Session) error {
		var err error
		snap, err = fn(sess)
		if err != nil {
			return err
		}
		if s.publisher != nil {
			s.publisher.PublishSnapshot(ctx, id, snap)
		}
		return nil
	})

	duration := time.Since(start)
	if err != nil {
		if !errors.Is(err, errPasteRejected) {
			infrastructure.RecordChartMutation(ctx, s.metrics, operation, duration, err)
			infrastructure.RecordError(ctx, err)
			logger.WarnContext(ctx, "chart mutation rejected",
				slog.String("operation", operation),
				slog.String("error", err.Error()))
		}
		return snap, err
	}

	infrastructure.RecordChartMutation(ctx, s.metrics, operation, duration, nil)
	span.SetAttributes(attribute.Int64("chart.revision", int64(snap.Revision)))
	logger.DebugContext(ctx, "chart recomputed",
		slog.String("operation", operation),
		slog.Uint64("revision", snap.Revision),
		slog.Int("dimensions", len(snap.Dimensions)),
		slog.Int("series", len(snap.Series)),
		slog.Duration("duration", duration))
	return snap, nil
}
