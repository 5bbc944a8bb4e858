package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmassey-dev/crucible/pkg/srd"
	"github.com/dmassey-dev/crucible/pkg/storage"
)

func TestSRDHandler_Read(t *testing.T) {
	store := storage.NewMockStorage()
	seedMonsters(store)
	handler := NewSRDHandler(store, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/v1/srd/monsters/goblin", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var monster srd.Monster
	if err := json.NewDecoder(w.Body).Decode(&monster); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if monster.Name != "Goblin" || monster.AC != 13 {
		t.Errorf("Unexpected monster: %+v", monster)
	}
}

func TestSRDHandler_List(t *testing.T) {
	store := storage.NewMockStorage()
	seedMonsters(store)
	handler := NewSRDHandler(store, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/v1/srd/monsters", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp map[string][]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	slugs := resp["slugs"]
	if len(slugs) != 2 || slugs[0] != "goblin" || slugs[1] != "wolf" {
		t.Errorf("Expected sorted slugs [goblin wolf], got %v", slugs)
	}
}

func TestSRDHandler_List_EmptyCategory(t *testing.T) {
	handler := NewSRDHandler(storage.NewMockStorage(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/v1/srd/spells", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200 for empty category, got %d", w.Code)
	}
}

func TestSRDHandler_Read_NotFound(t *testing.T) {
	store := storage.NewMockStorage()
	seedMonsters(store)
	handler := NewSRDHandler(store, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/v1/srd/monsters/tarrasque", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestSRDHandler_UnknownCategory(t *testing.T) {
	handler := NewSRDHandler(storage.NewMockStorage(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/v1/srd/vehicles/wagon", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestSRDHandler_MethodNotAllowed(t *testing.T) {
	handler := NewSRDHandler(storage.NewMockStorage(), testLogger())

	req := httptest.NewRequest(http.MethodPost, "/v1/srd/monsters/goblin", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected status 405, got %d", w.Code)
	}
}
