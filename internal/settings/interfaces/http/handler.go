package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	settings "unipole-cloud/internal/settings/domain"
)

// Handler serves the singleton settings record under /api/v1/settings.
type Handler struct {
	repo   settings.Repository
	logger *zap.Logger
}

// NewHandler constructs a handler.
func NewHandler(repo settings.Repository, logger *zap.Logger) (*Handler, error) {
	if repo == nil {
		return nil, errors.New("settings handler: nil repository")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger}, nil
}

// ServeHTTP routes settings requests.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleGet(w, r)
	case http.MethodPut:
		h.handlePut(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleGet returns the stored settings, falling back to the defaults
// before the first save.
func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	stored, err := h.repo.Get(r.Context())
	if err != nil {
		h.logger.Error("load settings failed", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if stored == nil {
		defaults := settings.Defaults()
		respondJSON(w, http.StatusOK, defaults)
		return
	}
	respondJSON(w, http.StatusOK, stored)
}

func (h *Handler) handlePut(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DefaultZoom          int     `json:"default_zoom"`
		DefaultCenterLat     float64 `json:"default_center_lat"`
		DefaultCenterLng     float64 `json:"default_center_lng"`
		PreferredGovernorate string  `json:"preferred_governorate"`
		MapStyle             string  `json:"map_style"`
		MarkerStyle          string  `json:"marker_style"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	candidate := settings.UserSettings{
		DefaultZoom:          req.DefaultZoom,
		DefaultCenterLat:     req.DefaultCenterLat,
		DefaultCenterLng:     req.DefaultCenterLng,
		PreferredGovernorate: req.PreferredGovernorate,
		MapStyle:             req.MapStyle,
		MarkerStyle:          req.MarkerStyle,
	}
	if candidate.MapStyle == "" {
		candidate.MapStyle = "default"
	}
	if candidate.MarkerStyle == "" {
		candidate.MarkerStyle = "default"
	}
	if fieldErrs := settings.ValidateSettings(candidate); len(fieldErrs) > 0 {
		respondJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": fieldErrs})
		return
	}

	stored, err := h.repo.Upsert(r.Context(), candidate)
	if err != nil {
		h.logger.Error("save settings failed", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, stored)
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
