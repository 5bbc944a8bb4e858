package storage

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"

	"github.com/dmassey-dev/crucible/pkg/actor"
	"github.com/dmassey-dev/crucible/pkg/encounter"
	"github.com/dmassey-dev/crucible/pkg/srd"
)

// MockStorage is an in-memory implementation of Storage for testing.
type MockStorage struct {
	mu         sync.RWMutex
	encounters map[string]*encounter.Encounter
	players    map[string]*actor.PlayerSpec
	references map[srd.Category]map[string]json.RawMessage
	pingError  error
	saveError  error
}

// Ensure MockStorage implements Storage interface
var _ Storage = (*MockStorage)(nil)

// NewMockStorage creates a new mock storage.
func NewMockStorage() *MockStorage {
	return &MockStorage{
		encounters: make(map[string]*encounter.Encounter),
		players:    make(map[string]*actor.PlayerSpec),
		references: make(map[srd.Category]map[string]json.RawMessage),
	}
}

// SetPingError configures the mock to fail on ping with the given error.
func (m *MockStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

// SetSaveError configures the mock to fail encounter and player saves.
func (m *MockStorage) SetSaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveError = err
}

func (m *MockStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

func (m *MockStorage) Close() error {
	return nil
}

func (m *MockStorage) SaveEncounter(ctx context.Context, id string, e *encounter.Encounter) error {
	if e == nil {
		return errors.New("encounter cannot be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveError != nil {
		return m.saveError
	}
	m.encounters[id] = e
	return nil
}

func (m *MockStorage) LoadEncounter(ctx context.Context, id string) (*encounter.Encounter, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, exists := m.encounters[id]
	if !exists {
		return nil, nil // Return nil for not found
	}
	return e, nil
}

func (m *MockStorage) DeleteEncounter(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.encounters, id)
	return nil
}

func (m *MockStorage) SavePlayer(ctx context.Context, id string, spec *actor.PlayerSpec) error {
	if spec == nil {
		return errors.New("player spec cannot be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveError != nil {
		return m.saveError
	}
	m.players[id] = spec
	return nil
}

func (m *MockStorage) LoadPlayer(ctx context.Context, id string) (*actor.PlayerSpec, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	spec, exists := m.players[id]
	if !exists {
		return nil, nil
	}
	return spec, nil
}

// AddReference stores a reference entry under (category, slug) for testing.
// The value is marshaled and served back for both raw and typed lookups.
func (m *MockStorage) AddReference(category srd.Category, slug string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.references[category] == nil {
		m.references[category] = make(map[string]json.RawMessage)
	}
	m.references[category][slug] = data
}

func (m *MockStorage) GetReference(ctx context.Context, category srd.Category, slug string) (json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, exists := m.references[category][slug]
	if !exists {
		return nil, srd.ErrNotFound
	}
	return data, nil
}

func (m *MockStorage) ListReferences(ctx context.Context, category srd.Category) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	slugs := make([]string, 0, len(m.references[category]))
	for slug := range m.references[category] {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	return slugs, nil
}

func (m *MockStorage) GetMonster(ctx context.Context, slug string) (*srd.Monster, error) {
	data, err := m.GetReference(ctx, srd.CategoryMonsters, slug)
	if err != nil {
		return nil, err
	}
	var out srd.Monster
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (m *MockStorage) GetSpell(ctx context.Context, slug string) (*srd.Spell, error) {
	data, err := m.GetReference(ctx, srd.CategorySpells, slug)
	if err != nil {
		return nil, err
	}
	var out srd.Spell
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (m *MockStorage) GetEquipment(ctx context.Context, slug string) (*srd.Equipment, error) {
	data, err := m.GetReference(ctx, srd.CategoryEquipment, slug)
	if err != nil {
		return nil, err
	}
	var out srd.Equipment
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (m *MockStorage) GetCondition(ctx context.Context, slug string) (*srd.Condition, error) {
	data, err := m.GetReference(ctx, srd.CategoryConditions, slug)
	if err != nil {
		return nil, err
	}
	var out srd.Condition
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
