package storage

import (
	"context"
	"encoding/json"

	"github.com/dmassey-dev/crucible/pkg/actor"
	"github.com/dmassey-dev/crucible/pkg/encounter"
	"github.com/dmassey-dev/crucible/pkg/srd"
)

// Storage defines a unified interface for all persistence operations.
// Encounter and character documents live in Redis; SRD reference data is
// filesystem-backed and safe to cache for the process lifetime.
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// Encounter operations (Redis-backed, uuid string keys)
	SaveEncounter(ctx context.Context, id string, e *encounter.Encounter) error
	LoadEncounter(ctx context.Context, id string) (*encounter.Encounter, error)
	DeleteEncounter(ctx context.Context, id string) error

	// Character operations (Redis-backed).
	// LoadPlayer returns the spec only; use actor.NewPlayerFromSpec to
	// build the runtime actor.
	SavePlayer(ctx context.Context, id string, spec *actor.PlayerSpec) error
	LoadPlayer(ctx context.Context, id string) (*actor.PlayerSpec, error)

	// SRD reference operations (filesystem-backed, read-only).
	// Not-found is reported as srd.ErrNotFound.
	GetMonster(ctx context.Context, slug string) (*srd.Monster, error)
	GetSpell(ctx context.Context, slug string) (*srd.Spell, error)
	GetEquipment(ctx context.Context, slug string) (*srd.Equipment, error)
	GetCondition(ctx context.Context, slug string) (*srd.Condition, error)

	// GetReference returns the raw JSON document for any valid
	// (category, slug) pair, for callers that serve it verbatim.
	GetReference(ctx context.Context, category srd.Category, slug string) (json.RawMessage, error)
	ListReferences(ctx context.Context, category srd.Category) ([]string, error)
}
