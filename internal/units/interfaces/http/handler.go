package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"unipole-cloud/internal/observability/metrics"
	"unipole-cloud/internal/units/application"
	units "unipole-cloud/internal/units/domain"
	"unipole-cloud/internal/units/interfaces"
	"unipole-cloud/internal/validation"
)

const basePath = "/api/v1/units"

// previewLimits mirror what the import dialog shows: the converter
// itself always reports everything.
const (
	previewRowLimit   = 5
	previewErrorLimit = 10
)

// Handler serves the unit APIs under /api/v1/units.
type Handler struct {
	service  *application.UnitService
	importer *application.Importer
	logger   *zap.Logger
}

// NewHandler constructs a handler.
func NewHandler(service *application.UnitService, importer *application.Importer, logger *zap.Logger) (*Handler, error) {
	if service == nil {
		return nil, errors.New("unit handler: nil service")
	}
	if importer == nil {
		return nil, errors.New("unit handler: nil importer")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, importer: importer, logger: logger}, nil
}

// ServeHTTP routes unit requests.
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
	switch rest {
	case "import":
		if r.Method == http.MethodPost {
			h.handleImport(w, r)
			return
		}
	case "export.xlsx":
		if r.Method == http.MethodGet {
			h.handleExport(w, r)
			return
		}
	case "sample.xlsx":
		if r.Method == http.MethodGet {
			h.handleSample(w, r)
			return
		}
	default:
		if !strings.Contains(rest, "/") {
			h.handleByID(w, r, rest)
			return
		}
	}
	w.WriteHeader(http.StatusNotFound)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list units failed", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []units.Unit{}
	}
	respondJSON(w, http.StatusOK, list)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UnitID      string `json:"unit_id"`
		Location    string `json:"location"`
		Governorate string `json:"governorate"`
		LatLng      string `json:"lat_lng"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	candidate := units.Unit{
		UnitID:      req.UnitID,
		Location:    req.Location,
		Governorate: req.Governorate,
		LatLng:      req.LatLng,
	}
	if fieldErrs := units.ValidateUnit(candidate); len(fieldErrs) > 0 {
		respondFieldErrors(w, fieldErrs)
		return
	}

	created, err := h.service.Create(r.Context(), candidate)
	if err != nil {
		if errors.Is(err, units.ErrDuplicateUnitID) {
			respondFieldErrors(w, []validation.FieldError{{Field: "unit_id", Message: "Unit ID already exists"}})
			return
		}
		h.logger.Error("create unit failed", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleByID(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		u, err := h.service.Get(r.Context(), id)
		if err != nil {
			respondUnitError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, u)
	case http.MethodPut:
		h.handleUpdate(w, r, id)
	case http.MethodDelete:
		if err := h.service.Delete(r.Context(), id); err != nil {
			respondUnitError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		Location    string `json:"location"`
		Governorate string `json:"governorate"`
		LatLng      string `json:"lat_lng"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	// the form path replaces every editable field, so it re-validates
	// them all; unit_id is not editable here
	probe := units.Unit{UnitID: "probe", Location: req.Location, Governorate: req.Governorate, LatLng: req.LatLng}
	if fieldErrs := units.ValidateUnit(probe); len(fieldErrs) > 0 {
		respondFieldErrors(w, fieldErrs)
		return
	}

	updated, err := h.service.Update(r.Context(), id, units.UnitUpdate{
		Location:    req.Location,
		Governorate: req.Governorate,
		LatLng:      req.LatLng,
	})
	if err != nil {
		respondUnitError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (h *Handler) handleImport(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	result := metrics.ResultError
	imported := 0
	defer func() {
		metrics.ObserveImport(result, imported, time.Since(start))
	}()

	if err := r.ParseMultipartForm(application.MaxImportBytes); err != nil {
		http.Error(w, "failed to parse form", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file not found in request", http.StatusBadRequest)
		return
	}
	defer file.Close()

	payload, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "failed to read file", http.StatusBadRequest)
		return
	}

	contentType := header.Header.Get("Content-Type")
	session := h.importer.NewSession()
	if err := session.SelectFile(contentType, header.Size, payload); err != nil {
		respondJSON(w, http.StatusBadRequest, application.ImportResult{Success: false, Message: err.Error()})
		return
	}

	converted, rowErrs, err := session.Preview()
	if err != nil {
		respondJSON(w, http.StatusBadRequest, application.ImportResult{Success: false, Message: err.Error()})
		return
	}

	if r.URL.Query().Get("preview") == "1" {
		preview := converted
		if len(preview) > previewRowLimit {
			preview = preview[:previewRowLimit]
		}
		shown := rowErrs
		if len(shown) > previewErrorLimit {
			shown = shown[:previewErrorLimit]
		}
		resp := map[string]any{
			"valid_count": len(converted),
			"error_count": len(rowErrs),
			"preview":     preview,
			"errors":      shown,
		}
		if len(rowErrs) > 0 {
			resp["message"] = fmt.Sprintf("Found %d validation errors", len(rowErrs))
		}
		result = metrics.ResultSuccess
		respondJSON(w, http.StatusOK, resp)
		return
	}

	importResult := session.Commit(r.Context())
	if importResult.Success {
		result = metrics.ResultSuccess
		imported = importResult.ImportedCount
	}
	status := http.StatusOK
	if session.State() == application.StateFailed {
		// the store rejected the batch; prior state is untouched
		status = http.StatusInternalServerError
	}
	respondJSON(w, status, importResult)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveExport("xlsx", result, time.Since(start))
	}()

	list, err := h.service.List(r.Context())
	if err != nil {
		result = metrics.ResultError
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	data, err := interfaces.BuildUnitsXLSX(list)
	if err != nil {
		result = metrics.ResultError
		h.logger.Error("export units failed", zap.Error(err))
		http.Error(w, "export error", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("all_units_%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	writeWorkbookResponse(w, filename, data)
}

func (h *Handler) handleSample(w http.ResponseWriter, _ *http.Request) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveExport("sample", result, time.Since(start))
	}()

	data, err := interfaces.BuildSampleXLSX()
	if err != nil {
		result = metrics.ResultError
		h.logger.Error("sample workbook failed", zap.Error(err))
		http.Error(w, "export error", http.StatusInternalServerError)
		return
	}
	writeWorkbookResponse(w, interfaces.SampleFilename, data)
}

func writeWorkbookResponse(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondFieldErrors(w http.ResponseWriter, fieldErrs []validation.FieldError) {
	respondJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": fieldErrs})
}

func respondUnitError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, units.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, units.ErrEmptyID):
		http.Error(w, "id is required", http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
