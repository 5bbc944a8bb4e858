package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dmassey-dev/crucible/internal/worker"
	"github.com/dmassey-dev/crucible/pkg/actor"
	"github.com/dmassey-dev/crucible/pkg/encounter"
	"github.com/dmassey-dev/crucible/pkg/srd"
	"github.com/dmassey-dev/crucible/pkg/storage"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, logger *slog.Logger, status int, message string) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: message}); err != nil {
		logger.Error("Failed to encode error response", "error", err)
	}
}

type EncounterHandler struct {
	storage   storage.Storage
	processor *worker.TurnProcessor
	logger    *slog.Logger
}

func NewEncounterHandler(storage storage.Storage, processor *worker.TurnProcessor, logger *slog.Logger) *EncounterHandler {
	return &EncounterHandler{
		storage:   storage,
		processor: processor,
		logger:    logger,
	}
}

// CombatantSpec names one SRD monster to spawn, with optional per-instance
// overrides (custom name, adjusted HP, disposition).
type CombatantSpec struct {
	Slug      string     `json:"slug"`
	ID        string     `json:"id,omitempty"`
	Overrides *actor.NPC `json:"overrides,omitempty"`
}

// CreateEncounterRequest defines the request body for creating an encounter.
type CreateEncounterRequest struct {
	Combatants     []CombatantSpec           `json:"combatants"`
	Location       string                    `json:"location,omitempty"`
	Scene          string                    `json:"scene,omitempty"`
	PlacementHints *encounter.PlacementHints `json:"placement_hints,omitempty"`
}

// ServeHTTP handles HTTP requests for encounter operations
// Routes:
// POST /v1/encounter                - Create new encounter
// GET /v1/encounter/{id}            - Read encounter by ID
// PATCH /v1/encounter/{id}          - Update encounter
// DELETE /v1/encounter/{id}         - Delete encounter by ID
// POST /v1/encounter/{id}/action    - Process one player combat turn
func (h *EncounterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/encounter"), "/")
	parts := strings.Split(path, "/")

	var encounterID, sub string
	if path != "" {
		encounterID = parts[0]
		if len(parts) > 1 {
			sub = parts[1]
		}
	}
	if len(parts) > 2 {
		writeError(w, h.logger, http.StatusNotFound, "Not found")
		return
	}

	switch {
	case r.Method == http.MethodPost && encounterID == "":
		h.handleCreate(w, r)

	case r.Method == http.MethodPost && sub == "action":
		h.handleAction(w, r, encounterID)

	case r.Method == http.MethodGet && encounterID != "" && sub == "":
		h.handleRead(w, r, encounterID)

	case r.Method == http.MethodPatch && encounterID != "" && sub == "":
		h.handlePatch(w, r, encounterID)

	case r.Method == http.MethodDelete && encounterID != "" && sub == "":
		h.handleDelete(w, r, encounterID)

	default:
		h.logger.Warn("Unsupported encounter route", "method", r.Method, "path", r.URL.Path)
		writeError(w, h.logger, http.StatusMethodNotAllowed,
			"Method not allowed. Supported methods: POST, GET, PATCH, DELETE")
	}
}

func (h *EncounterHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	h.logger.Debug("Creating new encounter")

	var req CreateEncounterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid JSON in request body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	if len(req.Combatants) == 0 {
		writeError(w, h.logger, http.StatusBadRequest, "combatants field is required")
		return
	}

	// Spawn each combatant from its SRD template.
	npcs := make([]*actor.NPC, 0, len(req.Combatants))
	counts := make(map[string]int)
	for _, spec := range req.Combatants {
		if spec.Slug == "" {
			writeError(w, h.logger, http.StatusBadRequest, "combatant slug is required")
			return
		}

		monster, err := h.storage.GetMonster(r.Context(), spec.Slug)
		if err != nil {
			if errors.Is(err, srd.ErrNotFound) {
				writeError(w, h.logger, http.StatusBadRequest, "Unknown monster: "+spec.Slug)
				return
			}
			h.logger.Error("Failed to load monster", "slug", spec.Slug, "error", err)
			writeError(w, h.logger, http.StatusInternalServerError, "Failed to load monster")
			return
		}

		// Clone the overrides so the decoded request stays untouched.
		overrides := &actor.NPC{}
		if spec.Overrides != nil {
			overrides = spec.Overrides.Clone()
		}
		overrides.ID = spec.ID
		if overrides.ID == "" {
			counts[spec.Slug]++
			overrides.ID = fmt.Sprintf("%s-%d", spec.Slug, counts[spec.Slug])
		}

		npcs = append(npcs, actor.NewNPC(actor.TemplateFromMonster(monster), overrides))
	}

	enc := encounter.New(npcs, req.Location, req.Scene, req.PlacementHints)

	if err := h.storage.SaveEncounter(r.Context(), enc.ID, enc); err != nil {
		h.logger.Error("Failed to save new encounter", "error", err, "id", enc.ID)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to create encounter")
		return
	}

	h.logger.Debug("Encounter created successfully", "id", enc.ID)
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(enc); err != nil {
		h.logger.Error("Failed to encode encounter response", "error", err)
	}
}

func (h *EncounterHandler) handleRead(w http.ResponseWriter, r *http.Request, encounterID string) {
	enc, err := h.storage.LoadEncounter(r.Context(), encounterID)
	if err != nil {
		h.logger.Error("Failed to load encounter", "error", err, "id", encounterID)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load encounter")
		return
	}

	if enc == nil {
		h.logger.Warn("Encounter not found", "id", encounterID)
		writeError(w, h.logger, http.StatusNotFound, "Encounter not found")
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(enc); err != nil {
		h.logger.Error("Failed to encode encounter response", "error", err)
	}
}

// handlePatch updates an existing encounter.
// It doesn't do extensive validation of the update, so use with caution.
func (h *EncounterHandler) handlePatch(w http.ResponseWriter, r *http.Request, encounterID string) {
	existing, err := h.storage.LoadEncounter(r.Context(), encounterID)
	if err != nil {
		h.logger.Error("Failed to load encounter for patch", "error", err, "id", encounterID)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load encounter")
		return
	}
	if existing == nil {
		writeError(w, h.logger, http.StatusNotFound, "Encounter not found")
		return
	}

	var patch encounter.Encounter
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		h.logger.Warn("Invalid JSON in PATCH request body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	// Apply patch fields to the existing encounter (only non-zero values)
	updated := *existing
	if patch.Status != "" {
		updated.Status = patch.Status
	}
	if patch.Location != "" {
		updated.Location = patch.Location
	}
	if patch.Scene != "" {
		updated.Scene = patch.Scene
	}
	if patch.Round != 0 {
		updated.Round = patch.Round
	}
	if len(patch.NPCs) > 0 {
		updated.NPCs = patch.NPCs
	}
	if len(patch.Positions) > 0 {
		updated.Positions = patch.Positions
	}
	if len(patch.TurnOrder) > 0 {
		updated.TurnOrder = patch.TurnOrder
		updated.TurnIndex = patch.TurnIndex
	}

	if err := h.storage.SaveEncounter(r.Context(), encounterID, &updated); err != nil {
		h.logger.Error("Failed to save patched encounter", "error", err, "id", encounterID)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to save encounter")
		return
	}

	h.logger.Info("Encounter patched successfully", "id", encounterID, "status", updated.Status)
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(updated); err != nil {
		h.logger.Error("Failed to encode patched encounter response", "error", err)
	}
}

func (h *EncounterHandler) handleDelete(w http.ResponseWriter, r *http.Request, encounterID string) {
	if err := h.storage.DeleteEncounter(r.Context(), encounterID); err != nil {
		h.logger.Error("Failed to delete encounter", "error", err, "id", encounterID)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to delete encounter")
		return
	}
	h.logger.Debug("Encounter deleted successfully", "id", encounterID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *EncounterHandler) handleAction(w http.ResponseWriter, r *http.Request, encounterID string) {
	var req worker.ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid JSON in action request body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	req.EncounterID = encounterID

	if req.Ability == "" {
		writeError(w, h.logger, http.StatusBadRequest, "ability field is required")
		return
	}

	result, err := h.processor.ProcessTurn(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, worker.ErrEncounterNotFound):
			writeError(w, h.logger, http.StatusNotFound, "Encounter not found")
		case errors.Is(err, worker.ErrEncounterBusy):
			writeError(w, h.logger, http.StatusConflict, "Encounter is already processing a turn")
		case errors.Is(err, worker.ErrPersistence):
			h.logger.Error("Turn persistence failed", "error", err, "id", encounterID)
			writeError(w, h.logger, http.StatusInternalServerError, "Failed to persist turn")
		default:
			h.logger.Error("Failed to process turn", "error", err, "id", encounterID)
			writeError(w, h.logger, http.StatusBadRequest, err.Error())
		}
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		h.logger.Error("Failed to encode turn result", "error", err)
	}
}
