//go:build integration
// +build integration

// End-to-end tests against a running API. Requires redis, SRD data with a
// goblin entry, and NARRATOR_PROVIDER=mock (or a real key). Run with:
//
//	go test -tags integration ./integration/...
package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"
)

var (
	baseURL string
	client  = &http.Client{Timeout: 60 * time.Second}
)

func TestMain(m *testing.M) {
	baseURL = os.Getenv("API_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		fmt.Fprintf(os.Stderr, "API not reachable at %s: %v\n", baseURL, err)
		os.Exit(1)
	}
	_ = resp.Body.Close()

	os.Exit(m.Run())
}

func doJSON(t *testing.T, method, path string, body interface{}, out interface{}) int {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, baseURL+path, reqBody)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Request %s %s failed: %v", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}
	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			t.Fatalf("Failed to decode response from %s %s: %v\n%s", method, path, err, string(data))
		}
	}
	return resp.StatusCode
}

type character struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Class     string    `json:"class"`
	Level     int       `json:"level"`
	Stats     stats     `json:"stats"`
	HP        int       `json:"hp"`
	MaxHP     int       `json:"max_hp"`
	AC        int       `json:"ac"`
	XP        int       `json:"xp"`
	Abilities []ability `json:"abilities"`
}

type stats struct {
	Strength     int `json:"strength"`
	Dexterity    int `json:"dexterity"`
	Constitution int `json:"constitution"`
}

type ability struct {
	Name       string `json:"name"`
	DamageDice string `json:"damage_dice"`
	StatMod    string `json:"stat_mod,omitempty"`
}

type npc struct {
	ID    string `json:"id"`
	HP    int    `json:"hp"`
	MaxHP int    `json:"max_hp"`
}

type encounterDoc struct {
	ID        string   `json:"id"`
	Status    string   `json:"status"`
	Round     int      `json:"round"`
	NPCs      []npc    `json:"npcs"`
	TurnOrder []string `json:"turn_order"`
}

type turnResult struct {
	Encounter *encounterDoc `json:"encounter"`
	Player    *character    `json:"player"`
	Facts     *struct {
		PlayerTraces []string `json:"player_traces"`
		NPCTraces    []string `json:"npc_traces"`
	} `json:"facts"`
	Narration *struct {
		Prose string `json:"prose"`
	} `json:"narration"`
	NarrationError string `json:"narration_error"`
	XPAwarded      int    `json:"xp_awarded"`
}

// TestFullEncounter drives one encounter from creation to completion.
func TestFullEncounter(t *testing.T) {
	pc := character{
		Name:  "Integration Fighter",
		Class: "Fighter",
		Level: 3,
		Stats: stats{Strength: 18, Dexterity: 12, Constitution: 16},
		MaxHP: 30,
		AC:    18,
		Abilities: []ability{
			{Name: "Longsword", DamageDice: "1d8", StatMod: "str"},
		},
	}
	if code := doJSON(t, http.MethodPut, "/v1/characters/player", pc, nil); code != http.StatusOK {
		t.Fatalf("Character PUT returned %d", code)
	}

	var enc encounterDoc
	code := doJSON(t, http.MethodPost, "/v1/encounter", map[string]interface{}{
		"combatants": []map[string]string{{"slug": "goblin"}, {"slug": "goblin"}},
		"location":   "Integration Range",
	}, &enc)
	if code != http.StatusCreated {
		t.Fatalf("Encounter POST returned %d", code)
	}
	if len(enc.NPCs) != 2 || enc.Status != "active" {
		t.Fatalf("Unexpected encounter: %+v", enc)
	}
	if enc.TurnOrder[0] != "player" {
		t.Fatalf("Expected player-first turn order, got %v", enc.TurnOrder)
	}

	// Swing at the goblins until the encounter resolves one way or the
	// other. The round cap guards against a stalled fight.
	for round := 0; round < 50; round++ {
		target := ""
		for _, n := range enc.NPCs {
			if n.HP > 0 {
				target = n.ID
				break
			}
		}
		if target == "" {
			t.Fatal("Encounter still active with no living targets")
		}

		var result turnResult
		code := doJSON(t, http.MethodPost, "/v1/encounter/"+enc.ID+"/action", map[string]string{
			"ability":   "Longsword",
			"target_id": target,
		}, &result)
		if code != http.StatusOK {
			t.Fatalf("Action returned %d on round %d", code, round)
		}
		if len(result.Facts.PlayerTraces) == 0 {
			t.Fatal("Turn resolved without a player trace")
		}
		if result.Narration == nil && result.NarrationError == "" {
			t.Error("Turn carried neither narration nor a narration error")
		}

		enc = *result.Encounter
		if enc.Status != "active" {
			if enc.Status == "completed" {
				if result.XPAwarded <= 0 {
					t.Errorf("Completed encounter awarded no XP")
				}
				if result.Player.XP <= 0 {
					t.Errorf("Player XP not updated: %d", result.Player.XP)
				}
			}
			return
		}
	}
	t.Fatal("Encounter did not resolve within 50 rounds")
}

// TestEncounterConflicts checks the error surface of the action endpoint.
func TestEncounterConflicts(t *testing.T) {
	if code := doJSON(t, http.MethodPost, "/v1/encounter/00000000-0000-0000-0000-000000000000/action",
		map[string]string{"ability": "Longsword", "target_id": "goblin-1"}, nil); code != http.StatusNotFound {
		t.Errorf("Unknown encounter action returned %d, expected 404", code)
	}

	if code := doJSON(t, http.MethodPost, "/v1/encounter", map[string]interface{}{
		"combatants": []map[string]string{{"slug": "not-a-real-monster"}},
	}, nil); code != http.StatusBadRequest {
		t.Errorf("Unknown monster create returned %d, expected 400", code)
	}
}
