package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/dmassey-dev/crucible/internal/worker"
	"github.com/dmassey-dev/crucible/pkg/actor"
	"github.com/dmassey-dev/crucible/pkg/encounter"
)

func testConnection(client *http.Client, baseURL string) bool {
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

// ensureCharacter creates a default fighter when no player character exists
// yet. An existing character is left untouched.
func ensureCharacter(client *http.Client, baseURL string) error {
	resp, err := client.Get(baseURL + "/v1/characters/" + actor.PlayerID)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	if resp.StatusCode == http.StatusOK {
		return nil
	}
	if resp.StatusCode != http.StatusNotFound {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	spec := &actor.PlayerSpec{
		Name:  "Adventurer",
		Class: "Fighter",
		Level: 3,
		Stats: actor.Stats5e{
			Strength: 16, Dexterity: 12, Constitution: 14,
			Intelligence: 10, Wisdom: 10, Charisma: 10,
		},
		MaxHP: 24,
		AC:    16,
		Abilities: []actor.Ability{
			{Name: "Longsword", DamageDice: "1d8", StatMod: actor.StatModStr},
			{Name: "Shortbow", DamageDice: "1d6", StatMod: actor.StatModDex},
		},
	}
	jsonData, err := json.Marshal(spec)
	if err != nil {
		return fmt.Errorf("failed to marshal character: %w", err)
	}

	req, err := http.NewRequest(http.MethodPut,
		baseURL+"/v1/characters/"+actor.PlayerID, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	putResp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = putResp.Body.Close() // Ignore error in defer
	}()

	if putResp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(putResp.Body)
		return fmt.Errorf("failed to create character: status %d: %s", putResp.StatusCode, string(body))
	}
	return nil
}

func getCharacter(client *http.Client, baseURL string) (*actor.PlayerSpec, error) {
	resp, err := client.Get(baseURL + "/v1/characters/" + actor.PlayerID)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp ErrorResponse
		if err := json.Unmarshal(body, &errorResp); err != nil {
			return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("failed to get character: %s", errorResp.Error)
	}

	var spec actor.PlayerSpec
	if err := json.Unmarshal(body, &spec); err != nil {
		return nil, fmt.Errorf("failed to parse character response: %w", err)
	}
	return &spec, nil
}

func listMonsters(client *http.Client, baseURL string) ([]string, error) {
	resp, err := client.Get(baseURL + "/v1/srd/monsters")
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var listResp map[string][]string
	if err := json.Unmarshal(body, &listResp); err != nil {
		return nil, err
	}
	return listResp["slugs"], nil
}

// CreateEncounterRequest matches the API request structure.
type CreateEncounterRequest struct {
	Combatants []CombatantSpec `json:"combatants"`
	Location   string          `json:"location,omitempty"`
	Scene      string          `json:"scene,omitempty"`
}

type CombatantSpec struct {
	Slug string `json:"slug"`
}

func createEncounter(client *http.Client, baseURL string, slug string, count int) (*encounter.Encounter, error) {
	req := CreateEncounterRequest{
		Location: "Training Grounds",
		Scene:    "A practice skirmish on open ground.",
	}
	for i := 0; i < count; i++ {
		req.Combatants = append(req.Combatants, CombatantSpec{Slug: slug})
	}

	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := client.Post(
		baseURL+"/v1/encounter",
		"application/json",
		bytes.NewBuffer(jsonData),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusCreated {
		var errorResp ErrorResponse
		if err := json.Unmarshal(body, &errorResp); err != nil {
			return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("failed to create encounter: %s", errorResp.Error)
	}

	var created encounter.Encounter
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, fmt.Errorf("failed to parse encounter response: %w", err)
	}
	return &created, nil
}

func getEncounter(client *http.Client, baseURL string, encounterID string) (*encounter.Encounter, error) {
	resp, err := client.Get(fmt.Sprintf("%s/v1/encounter/%s", baseURL, encounterID))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp ErrorResponse
		if err := json.Unmarshal(body, &errorResp); err != nil {
			return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("failed to get encounter: %s", errorResp.Error)
	}

	var enc encounter.Encounter
	if err := json.Unmarshal(body, &enc); err != nil {
		return nil, fmt.Errorf("failed to parse encounter response: %w", err)
	}
	return &enc, nil
}

// ActionRequest matches the API request structure for combat turns.
type ActionRequest struct {
	Ability  string `json:"ability"`
	TargetID string `json:"target_id,omitempty"`
}

func sendAction(client *http.Client, baseURL string, encounterID string, ability string, targetID string) (*worker.TurnResult, error) {
	jsonData, err := json.Marshal(ActionRequest{Ability: ability, TargetID: targetID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := client.Post(
		fmt.Sprintf("%s/v1/encounter/%s/action", baseURL, encounterID),
		"application/json",
		bytes.NewBuffer(jsonData),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp ErrorResponse
		if err := json.Unmarshal(body, &errorResp); err != nil {
			return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("action failed: %s", errorResp.Error)
	}

	var result worker.TurnResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse turn result: %w", err)
	}
	return &result, nil
}
