package storage

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/dmassey-dev/crucible/pkg/actor"
	"github.com/dmassey-dev/crucible/pkg/encounter"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testStorage(t *testing.T) (*RedisStorage, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	s := NewRedisStorage(mr.Addr(), t.TempDir(), testLogger())
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestPing(t *testing.T) {
	s, _ := testStorage(t)
	if err := s.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

func TestEncounterRoundTrip(t *testing.T) {
	s, _ := testStorage(t)
	ctx := context.Background()

	e := encounter.New([]*actor.NPC{
		{ID: "goblin-1", Name: "Goblin", HP: 7, MaxHP: 7, Disposition: actor.DispositionHostile},
	}, "Cragmaw Hideout", "a damp cave", nil)

	if err := s.SaveEncounter(ctx, e.ID, e); err != nil {
		t.Fatalf("Failed to save encounter: %v", err)
	}

	loaded, err := s.LoadEncounter(ctx, e.ID)
	if err != nil {
		t.Fatalf("Failed to load encounter: %v", err)
	}
	if loaded == nil {
		t.Fatal("Expected encounter, got nil")
	}
	if loaded.ID != e.ID || loaded.Status != encounter.StatusActive {
		t.Errorf("Round trip mismatch: %+v", loaded)
	}
	if loaded.NPC("goblin-1") == nil {
		t.Error("Roster lost in round trip")
	}
	if len(loaded.TurnOrder) != 2 {
		t.Errorf("Turn order lost in round trip: %v", loaded.TurnOrder)
	}
	if len(loaded.Positions) != 2 {
		t.Errorf("Positions lost in round trip: %v", loaded.Positions)
	}
}

func TestLoadEncounter_NotFound(t *testing.T) {
	s, _ := testStorage(t)

	loaded, err := s.LoadEncounter(context.Background(), "no-such-id")
	if err != nil {
		t.Fatalf("Not-found must not error: %v", err)
	}
	if loaded != nil {
		t.Error("Expected nil for missing encounter")
	}
}

func TestDeleteEncounter(t *testing.T) {
	s, _ := testStorage(t)
	ctx := context.Background()

	e := encounter.New(nil, "", "", nil)
	if err := s.SaveEncounter(ctx, e.ID, e); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}
	if err := s.DeleteEncounter(ctx, e.ID); err != nil {
		t.Fatalf("Failed to delete: %v", err)
	}

	loaded, err := s.LoadEncounter(ctx, e.ID)
	if err != nil {
		t.Fatalf("Load after delete errored: %v", err)
	}
	if loaded != nil {
		t.Error("Expected nil after delete")
	}
}

func TestPlayerRoundTrip(t *testing.T) {
	s, _ := testStorage(t)
	ctx := context.Background()

	spec := &actor.PlayerSpec{
		ID:    "player",
		Name:  "Mira",
		Class: "fighter",
		Level: 3,
		Stats: actor.Stats5e{Strength: 16, Dexterity: 12, Constitution: 14},
		HP:    24,
		MaxHP: 28,
		AC:    16,
		Gold:  35,
	}

	if err := s.SavePlayer(ctx, spec.ID, spec); err != nil {
		t.Fatalf("Failed to save player: %v", err)
	}

	loaded, err := s.LoadPlayer(ctx, "player")
	if err != nil {
		t.Fatalf("Failed to load player: %v", err)
	}
	if loaded == nil {
		t.Fatal("Expected player, got nil")
	}
	if loaded.Name != "Mira" || loaded.HP != 24 || loaded.Stats.Strength != 16 {
		t.Errorf("Round trip mismatch: %+v", loaded)
	}
}

func TestLoadPlayer_NotFound(t *testing.T) {
	s, _ := testStorage(t)

	loaded, err := s.LoadPlayer(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("Not-found must not error: %v", err)
	}
	if loaded != nil {
		t.Error("Expected nil for missing player")
	}
}
