package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dmassey-dev/crucible/pkg/actor"
	"github.com/dmassey-dev/crucible/pkg/storage"
)

type CharacterHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

func NewCharacterHandler(storage storage.Storage, logger *slog.Logger) *CharacterHandler {
	return &CharacterHandler{
		storage: storage,
		logger:  logger,
	}
}

// ServeHTTP handles HTTP requests for character operations
// Routes:
// GET /v1/characters/{id}    - Read character by ID
// PUT /v1/characters/{id}    - Create or replace character
// PATCH /v1/characters/{id}  - Partial update of character fields
func (h *CharacterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/characters"), "/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, h.logger, http.StatusBadRequest, "Character ID is required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.handleRead(w, r, id)
	case http.MethodPut:
		h.handlePut(w, r, id)
	case http.MethodPatch:
		h.handlePatch(w, r, id)
	default:
		h.logger.Warn("Method not allowed for character endpoint", "method", r.Method)
		writeError(w, h.logger, http.StatusMethodNotAllowed,
			"Method not allowed. Supported methods: GET, PUT, PATCH")
	}
}

func (h *CharacterHandler) handleRead(w http.ResponseWriter, r *http.Request, id string) {
	spec, err := h.storage.LoadPlayer(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to load character", "error", err, "id", id)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load character")
		return
	}
	if spec == nil {
		writeError(w, h.logger, http.StatusNotFound, "Character not found")
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(spec); err != nil {
		h.logger.Error("Failed to encode character response", "error", err)
	}
}

func (h *CharacterHandler) handlePut(w http.ResponseWriter, r *http.Request, id string) {
	var spec actor.PlayerSpec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		h.logger.Warn("Invalid JSON in character body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	spec.ID = id

	if spec.MaxHP <= 0 {
		writeError(w, h.logger, http.StatusBadRequest, "max_hp must be positive")
		return
	}
	if spec.HP == 0 {
		spec.HP = spec.MaxHP
	}

	if err := h.storage.SavePlayer(r.Context(), id, &spec); err != nil {
		h.logger.Error("Failed to save character", "error", err, "id", id)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to save character")
		return
	}

	h.logger.Debug("Character saved", "id", id)
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(&spec); err != nil {
		h.logger.Error("Failed to encode character response", "error", err)
	}
}

// handlePatch applies a partial update to a character: only fields present
// in the request body are written.
func (h *CharacterHandler) handlePatch(w http.ResponseWriter, r *http.Request, id string) {
	existing, err := h.storage.LoadPlayer(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to load character for patch", "error", err, "id", id)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load character")
		return
	}
	if existing == nil {
		writeError(w, h.logger, http.StatusNotFound, "Character not found")
		return
	}

	var patch characterPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		h.logger.Warn("Invalid JSON in PATCH request body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	// Pointer fields distinguish "absent" from "zero", so HP can be
	// patched down to 0.
	if patch.Name != nil {
		existing.Name = *patch.Name
	}
	if patch.HP != nil {
		existing.HP = *patch.HP
	}
	if patch.MaxHP != nil {
		existing.MaxHP = *patch.MaxHP
	}
	if patch.AC != nil {
		existing.AC = *patch.AC
	}
	if patch.XP != nil {
		existing.XP = *patch.XP
	}
	if patch.Gold != nil {
		existing.Gold = *patch.Gold
	}
	if patch.Inventory != nil {
		existing.Inventory = *patch.Inventory
	}
	if patch.Conditions != nil {
		existing.Conditions = *patch.Conditions
	}
	if patch.Flags != nil {
		if existing.Flags == nil {
			existing.Flags = make(map[string]bool)
		}
		for k, v := range patch.Flags {
			existing.Flags[k] = v
		}
	}

	if existing.HP < 0 {
		existing.HP = 0
	}
	if existing.HP > existing.MaxHP {
		existing.HP = existing.MaxHP
	}

	if err := h.storage.SavePlayer(r.Context(), id, existing); err != nil {
		h.logger.Error("Failed to save patched character", "error", err, "id", id)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to save character")
		return
	}

	h.logger.Info("Character patched successfully", "id", id, "hp", existing.HP)
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(existing); err != nil {
		h.logger.Error("Failed to encode patched character response", "error", err)
	}
}

// characterPatch is the partial-update body for PATCH requests.
type characterPatch struct {
	Name       *string         `json:"name,omitempty"`
	HP         *int            `json:"hp,omitempty"`
	MaxHP      *int            `json:"max_hp,omitempty"`
	AC         *int            `json:"ac,omitempty"`
	XP         *int            `json:"xp,omitempty"`
	Gold       *int            `json:"gold,omitempty"`
	Inventory  *[]string       `json:"inventory,omitempty"`
	Conditions *[]string       `json:"conditions,omitempty"`
	Flags      map[string]bool `json:"flags,omitempty"`
}
