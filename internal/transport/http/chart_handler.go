package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	apierrors "radarcli/internal/errors"
	"radarcli/internal/infrastructure"
	appmiddleware "radarcli/internal/middleware"
	"radarcli/internal/session"
	"radarcli/internal/sources"
	api "radarcli/pkg/contracts/api/v1"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

type ctxKey int

const sessionIDKey ctxKey = iota

// ChartHandler handles the chart session routes under /api/sessions
type ChartHandler struct {
	service      ChartServiceInterface
	validator    *appmiddleware.ValidationMiddleware
	query        *appmiddleware.QueryParamValidator
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewChartHandler creates a new chart handler
func NewChartHandler(service ChartServiceInterface, validator *appmiddleware.ValidationMiddleware, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *ChartHandler {
	logger = logger.With(slog.String("component", "chart_handler"))
	return &ChartHandler{
		service:      service,
		validator:    validator,
		query:        appmiddleware.NewQueryParamValidator(logger, errorHandler),
		errorHandler: errorHandler,
		logger:       logger,
	}
}

// Routes returns the session routes
func (h *ChartHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/", h.CreateSession)
	r.Get("/", h.ListSessions)

	r.Route("/{id}", func(r chi.Router) {
		r.Use(h.SessionCtx)
		r.Get("/", h.GetSession)
		r.Delete("/", h.DeleteSession)

		r.Put("/data", h.LoadData)
		r.Post("/import", h.ImportWorkbook)
		r.Patch("/settings", h.UpdateSettings)

		r.Patch("/dimensions/{dim}", h.UpdateDimension)
		r.Delete("/dimensions/{dim}/range", h.ResetRange)

		r.Put("/colors/{series}", h.SetColor)
		r.Delete("/colors/{series}", h.ClearColor)
	})

	return r
}

// SessionCtx checks the session id and stores it in the request context.
// Ids the store could never have issued are answered as unknown sessions.
func (h *ChartHandler) SessionCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if _, err := uuid.Parse(id); err != nil {
			h.errorHandler.HandleError(w, r, fmt.Errorf("session %s: %w", id, session.ErrNotFound))
			return
		}

		infrastructure.SetSpanAttributes(r.Context(), map[string]any{"chart.session_id": id})
		ctx := context.WithValue(r.Context(), sessionIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionID(r *http.Request) string {
	id, _ := r.Context().Value(sessionIDKey).(string)
	return id
}

// pathParam returns the unescaped value of a route parameter. Dimension and
// series names may hold spaces or slashes.
func (h *ChartHandler) pathParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	value, err := url.PathUnescape(chi.URLParam(r, name))
	if err != nil || value == "" {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation(name, fmt.Sprintf("%s must be a non-empty, valid path segment", name)))
		return "", false
	}
	return value, true
}

// decode reads a JSON body into v and validates it. An empty body is an
// error unless allowEmpty is set.
func (h *ChartHandler) decode(w http.ResponseWriter, r *http.Request, v interface{}, allowEmpty bool) bool {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		if !errors.Is(err, io.EOF) {
			h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
			return false
		}
		if !allowEmpty {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("body", "request body is required"))
			return false
		}
	}

	if err := h.validator.ValidateStruct(v); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return false
	}
	return true
}

// CreateSession handles POST /api/sessions
func (h *ChartHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req api.CreateSessionRequest
	if !h.decode(w, r, &req, true) {
		return
	}

	snap, err := h.service.CreateSession(r.Context(), req)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "session opened",
		slog.String("session_id", snap.ID),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.Bool("with_data", req.Data != ""))

	w.Header().Set("Location", strings.TrimSuffix(r.URL.Path, "/")+"/"+snap.ID)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, snap)
}

// ListSessions handles GET /api/sessions
func (h *ChartHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	limit, ok := h.query.ValidateInt(w, r, "limit", 1, maxListLimit, defaultListLimit)
	if !ok {
		return
	}

	infos := h.service.ListSessions(r.Context(), limit)
	render.JSON(w, r, SessionListResponse{Sessions: infos, Count: len(infos)})
}

// GetSession handles GET /api/sessions/{id}
func (h *ChartHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.GetSnapshot(r.Context(), sessionID(r))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, snap)
}

// DeleteSession handles DELETE /api/sessions/{id}
func (h *ChartHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteSession(r.Context(), sessionID(r)); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// LoadData handles PUT /api/sessions/{id}/data. A paste without a table is
// not an error: the response reports accepted=false with the unchanged chart.
func (h *ChartHandler) LoadData(w http.ResponseWriter, r *http.Request) {
	var req api.LoadDataRequest
	if !h.decode(w, r, &req, false) {
		return
	}

	snap, accepted, err := h.service.LoadData(r.Context(), sessionID(r), req.Data)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, LoadDataResponse{Accepted: accepted, Snapshot: snap})
}

// ImportWorkbook handles POST /api/sessions/{id}/import with a multipart
// "file" field holding an .xlsx workbook and an optional "sheet" field
func (h *ChartHandler) ImportWorkbook(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", "multipart field \"file\" is required"))
		return
	}
	defer file.Close()

	if !sources.IsWorkbook(header.Filename) {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", "file must be an .xlsx or .xlsm workbook"))
		return
	}

	sheet := r.FormValue("sheet")
	h.logger.InfoContext(r.Context(), "importing workbook",
		slog.String("session_id", sessionID(r)),
		slog.String("filename", header.Filename),
		slog.Int64("size", header.Size),
		slog.String("sheet", sheet))

	snap, err := h.service.ImportWorkbook(r.Context(), sessionID(r), file, sheet)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, LoadDataResponse{Accepted: true, Snapshot: snap})
}

// UpdateSettings handles PATCH /api/sessions/{id}/settings
func (h *ChartHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req api.UpdateSettingsRequest
	if !h.decode(w, r, &req, false) {
		return
	}
	if req.Empty() {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("body", "at least one setting must be given"))
		return
	}

	snap, err := h.service.UpdateSettings(r.Context(), sessionID(r), req)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, snap)
}

// UpdateDimension handles PATCH /api/sessions/{id}/dimensions/{dim}
func (h *ChartHandler) UpdateDimension(w http.ResponseWriter, r *http.Request) {
	dim, ok := h.pathParam(w, r, "dim")
	if !ok {
		return
	}

	var req api.UpdateDimensionRequest
	if !h.decode(w, r, &req, false) {
		return
	}
	if req.Empty() {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("body", "at least one of min, max, reverse or unit must be given"))
		return
	}

	snap, err := h.service.UpdateDimension(r.Context(), sessionID(r), dim, req)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, snap)
}

// ResetRange handles DELETE /api/sessions/{id}/dimensions/{dim}/range
func (h *ChartHandler) ResetRange(w http.ResponseWriter, r *http.Request) {
	dim, ok := h.pathParam(w, r, "dim")
	if !ok {
		return
	}

	snap, err := h.service.ResetRange(r.Context(), sessionID(r), dim)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, snap)
}

// SetColor handles PUT /api/sessions/{id}/colors/{series}
func (h *ChartHandler) SetColor(w http.ResponseWriter, r *http.Request) {
	series, ok := h.pathParam(w, r, "series")
	if !ok {
		return
	}

	var req api.SetColorRequest
	if !h.decode(w, r, &req, false) {
		return
	}

	snap, err := h.service.SetColor(r.Context(), sessionID(r), series, req.Color)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, snap)
}

// ClearColor handles DELETE /api/sessions/{id}/colors/{series}
func (h *ChartHandler) ClearColor(w http.ResponseWriter, r *http.Request) {
	series, ok := h.pathParam(w, r, "series")
	if !ok {
		return
	}

	snap, err := h.service.ClearColor(r.Context(), sessionID(r), series)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, snap)
}
