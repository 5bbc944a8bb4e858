package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dmassey-dev/crucible/pkg/srd"
	"github.com/dmassey-dev/crucible/pkg/storage"
)

// SRDHandler serves read-only 5e reference data.
type SRDHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

func NewSRDHandler(storage storage.Storage, logger *slog.Logger) *SRDHandler {
	return &SRDHandler{
		storage: storage,
		logger:  logger,
	}
}

// ServeHTTP handles HTTP requests for SRD reference data
// Routes:
// GET /v1/srd/{category}        - List slugs in a category
// GET /v1/srd/{category}/{slug} - Read one reference entry
func (h *SRDHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		writeError(w, h.logger, http.StatusMethodNotAllowed,
			"Method not allowed. Supported methods: GET")
		return
	}

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/srd"), "/")
	parts := strings.Split(path, "/")
	if path == "" || len(parts) > 2 {
		writeError(w, h.logger, http.StatusNotFound, "Not found")
		return
	}

	category := srd.Category(parts[0])
	if !category.Valid() {
		writeError(w, h.logger, http.StatusNotFound, "Unknown category: "+parts[0])
		return
	}

	if len(parts) == 1 {
		h.handleList(w, r, category)
		return
	}
	h.handleRead(w, r, category, parts[1])
}

func (h *SRDHandler) handleList(w http.ResponseWriter, r *http.Request, category srd.Category) {
	slugs, err := h.storage.ListReferences(r.Context(), category)
	if err != nil {
		h.logger.Error("Failed to list references", "error", err, "category", category)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to list references")
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string][]string{"slugs": slugs}); err != nil {
		h.logger.Error("Failed to encode reference list", "error", err)
	}
}

func (h *SRDHandler) handleRead(w http.ResponseWriter, r *http.Request, category srd.Category, slug string) {
	raw, err := h.storage.GetReference(r.Context(), category, slug)
	if err != nil {
		if errors.Is(err, srd.ErrNotFound) {
			writeError(w, h.logger, http.StatusNotFound, "Reference not found")
			return
		}
		h.logger.Error("Failed to load reference", "error", err, "category", category, "slug", slug)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load reference")
		return
	}

	// Entries are stored as JSON documents, so they pass through untouched.
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(raw); err != nil {
		h.logger.Error("Failed to write reference response", "error", err)
	}
}
