package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"unipole-cloud/internal/campaigns/application"
	campaigns "unipole-cloud/internal/campaigns/domain"
	"unipole-cloud/internal/campaigns/interfaces"
	"unipole-cloud/internal/observability/metrics"
	"unipole-cloud/internal/validation"
)

const (
	basePath  = "/api/v1/campaigns"
	sharePath = "/share/campaigns"
)

// Handler serves the campaign APIs under /api/v1/campaigns.
type Handler struct {
	service *application.CampaignService
	logger  *zap.Logger
}

// NewHandler constructs a handler.
func NewHandler(service *application.CampaignService, logger *zap.Logger) (*Handler, error) {
	if service == nil {
		return nil, errors.New("campaign handler: nil service")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, logger: logger}, nil
}

// ServeHTTP routes campaign requests.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	if path == basePath {
		switch r.Method {
		case http.MethodGet:
			h.handleList(w, r)
		case http.MethodPost:
			h.handleCreate(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	rest := strings.TrimPrefix(path, basePath+"/")
	if rest == path {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	id, action, _ := strings.Cut(rest, "/")
	switch action {
	case "":
		h.handleByID(w, r, id)
	case "share":
		if r.Method == http.MethodPost {
			h.handleShare(w, r, id)
			return
		}
		w.WriteHeader(http.StatusMethodNotAllowed)
	case "export.pdf":
		if r.Method == http.MethodGet {
			h.handleExportPDF(w, r, id)
			return
		}
		w.WriteHeader(http.StatusMethodNotAllowed)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list campaigns failed", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []campaigns.Campaign{}
	}
	respondJSON(w, http.StatusOK, list)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string   `json:"name"`
		UnitIDs []string `json:"unit_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	candidate := campaigns.Campaign{Name: req.Name, UnitIDs: req.UnitIDs}
	if fieldErrs := campaigns.ValidateCampaign(candidate); len(fieldErrs) > 0 {
		respondFieldErrors(w, fieldErrs)
		return
	}

	created, err := h.service.Create(r.Context(), candidate)
	if err != nil {
		h.logger.Error("create campaign failed", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleByID(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		c, err := h.service.Get(r.Context(), id)
		if err != nil {
			respondCampaignError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, c)
	case http.MethodPut:
		h.handleUpdate(w, r, id)
	case http.MethodDelete:
		if err := h.service.Delete(r.Context(), id); err != nil {
			respondCampaignError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		Name    *string   `json:"name"`
		UnitIDs *[]string `json:"unit_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	var fieldErrs []validation.FieldError
	if req.Name != nil {
		fieldErrs = append(fieldErrs, campaigns.ValidateCampaignName(*req.Name)...)
	}
	if req.UnitIDs != nil {
		fieldErrs = append(fieldErrs, campaigns.ValidateUnitSelection(*req.UnitIDs)...)
	}
	if len(fieldErrs) > 0 {
		respondFieldErrors(w, fieldErrs)
		return
	}

	updated, err := h.service.Update(r.Context(), id, campaigns.CampaignUpdate{
		Name:    req.Name,
		UnitIDs: req.UnitIDs,
	})
	if err != nil {
		respondCampaignError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (h *Handler) handleShare(w http.ResponseWriter, r *http.Request, id string) {
	shared, err := h.service.Share(r.Context(), id)
	if err != nil {
		respondCampaignError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, shared)
}

func (h *Handler) handleExportPDF(w http.ResponseWriter, r *http.Request, id string) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveExport("pdf", result, time.Since(start))
	}()

	c, err := h.service.Get(r.Context(), id)
	if err != nil {
		result = metrics.ResultError
		respondCampaignError(w, err)
		return
	}
	selected, err := h.service.Units(r.Context(), *c)
	if err != nil {
		result = metrics.ResultError
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	data, err := interfaces.BuildCampaignPDF(*c, selected)
	if err != nil {
		result = metrics.ResultError
		h.logger.Error("campaign pdf failed", zap.Error(err), zap.String("id", c.ID))
		http.Error(w, "export error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=campaign_%s.pdf", c.ID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// ShareHandler serves the public shared-campaign view under
// /share/campaigns/{token}. It sits outside the API prefix because the
// links are handed to people without API access.
type ShareHandler struct {
	service *application.CampaignService
	logger  *zap.Logger
}

// NewShareHandler constructs a handler.
func NewShareHandler(service *application.CampaignService, logger *zap.Logger) (*ShareHandler, error) {
	if service == nil {
		return nil, errors.New("share handler: nil service")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShareHandler{service: service, logger: logger}, nil
}

// ServeHTTP resolves a share token to the campaign view it names.
func (h *ShareHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	token := strings.TrimPrefix(r.URL.Path, sharePath+"/")
	if token == r.URL.Path || token == "" || strings.Contains(token, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	view, err := h.service.ResolveShare(r.Context(), token)
	if err != nil {
		if errors.Is(err, campaigns.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		// bad or expired tokens all land here; the caller learns
		// nothing about which campaign the link named
		http.Error(w, "invalid share link", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondFieldErrors(w http.ResponseWriter, fieldErrs []validation.FieldError) {
	respondJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": fieldErrs})
}

func respondCampaignError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, campaigns.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, campaigns.ErrEmptyID):
		http.Error(w, "id is required", http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
