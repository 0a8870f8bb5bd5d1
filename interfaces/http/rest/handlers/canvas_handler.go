package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"ideamap-canvas/domain/core/valueobjects"
	"ideamap-canvas/internal/canvas/layout"
	"ideamap-canvas/internal/config"
	"ideamap-canvas/internal/middleware"
	"ideamap-canvas/internal/service/snapshot"
	"ideamap-canvas/pkg/api"
	pkgerrors "ideamap-canvas/pkg/errors"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ConfigSource returns the configuration to use for the next request.
// It is typically Watcher.GetConfig so edits apply without a restart.
type ConfigSource func() *config.Config

// CanvasHandler handles the stateless canvas computation endpoints
type CanvasHandler struct {
	service  *snapshot.Service
	config   ConfigSource
	logger   *zap.Logger
	validate *validator.Validate
}

// NewCanvasHandler creates a new canvas handler
func NewCanvasHandler(service *snapshot.Service, source ConfigSource, logger *zap.Logger) *CanvasHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CanvasHandler{
		service:  service,
		config:   source,
		logger:   logger,
		validate: validator.New(),
	}
}

// Layout handles POST /layout/{kind}
func (h *CanvasHandler) Layout(w http.ResponseWriter, r *http.Request) {
	kind, ok := layout.ParseKind(chi.URLParam(r, "kind"))
	if !ok || kind == layout.KindCluster {
		api.Error(w, http.StatusNotFound, "unknown layout: "+chi.URLParam(r, "kind"))
		return
	}

	var req api.LayoutRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, _, err := h.service.Layout(r.Context(), h.config(), snapshot.FromAPI(req.Nodes), kind, req.Width)
	if err != nil {
		h.fail(w, r, "layout", err)
		return
	}
	api.Success(w, http.StatusOK, resp)
}

// Clusters handles POST /clusters
func (h *CanvasHandler) Clusters(w http.ResponseWriter, r *http.Request) {
	var req api.ClusterRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.service.Clusters(r.Context(), h.config(), snapshot.FromAPI(req.Nodes))
	if err != nil {
		h.fail(w, r, "clusters", err)
		return
	}
	api.Success(w, http.StatusOK, resp)
}

// Fit handles POST /fit
func (h *CanvasHandler) Fit(w http.ResponseWriter, r *http.Request) {
	var req api.ViewportRequest
	if !h.decode(w, r, &req) {
		return
	}

	container := valueobjects.Size{Width: req.Container.Width, Height: req.Container.Height}
	resp, err := h.service.Fit(r.Context(), h.config(), snapshot.FromAPI(req.Nodes), container)
	if err != nil {
		h.fail(w, r, "fit", err)
		return
	}
	api.Success(w, http.StatusOK, resp)
}

// Center handles POST /center
func (h *CanvasHandler) Center(w http.ResponseWriter, r *http.Request) {
	var req api.ViewportRequest
	if !h.decode(w, r, &req) {
		return
	}

	container := valueobjects.Size{Width: req.Container.Width, Height: req.Container.Height}
	resp, err := h.service.Center(r.Context(), h.config(), snapshot.FromAPI(req.Nodes), container)
	if err != nil {
		h.fail(w, r, "center", err)
		return
	}
	api.Success(w, http.StatusOK, resp)
}

func (h *CanvasHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			api.Error(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		api.Error(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return false
	}

	if err := h.validate.Struct(dst); err != nil {
		api.Error(w, http.StatusBadRequest, "Validation error: "+err.Error())
		return false
	}
	return true
}

func (h *CanvasHandler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	level := zap.DebugLevel
	if pkgerrors.IsInternal(err) {
		level = zap.ErrorLevel
	}
	middleware.LoggerFor(r, h.logger).Log(level, "Canvas request failed",
		zap.String("op", op),
		zap.Error(err))
	api.Fail(w, err)
}
