package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/dmassey-dev/crucible/pkg/srd"
)

func srdStorage(t *testing.T) (*RedisStorage, string) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	dataDir := t.TempDir()
	s := NewRedisStorage(mr.Addr(), dataDir, testLogger())
	t.Cleanup(func() { _ = s.Close() })
	return s, dataDir
}

func writeRef(t *testing.T, dataDir string, category, slug, content string) {
	t.Helper()
	dir := filepath.Join(dataDir, "srd", category)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, slug+".json"), []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
}

func TestGetMonster(t *testing.T) {
	s, dataDir := srdStorage(t)
	writeRef(t, dataDir, "monsters", "goblin",
		`{"name":"Goblin","ac":13,"hp":7,"attack_bonus":4,"damage_dice":"1d6","damage_bonus":2,"xp":50}`)

	m, err := s.GetMonster(context.Background(), "goblin")
	if err != nil {
		t.Fatalf("Failed to get monster: %v", err)
	}
	if m.Slug != "goblin" {
		t.Errorf("Slug must come from the filename, got %q", m.Slug)
	}
	if m.AC != 13 || m.HP != 7 || m.DamageDice != "1d6" {
		t.Errorf("Unexpected monster: %+v", m)
	}
}

func TestGetSpell(t *testing.T) {
	s, dataDir := srdStorage(t)
	writeRef(t, dataDir, "spells", "fireball",
		`{"name":"Fireball","level":3,"range":"150 feet (20-foot-radius sphere)","damage_dice":"8d6","damage_type":"fire","save_ability":"dexterity"}`)

	sp, err := s.GetSpell(context.Background(), "fireball")
	if err != nil {
		t.Fatalf("Failed to get spell: %v", err)
	}
	if sp.Range != "150 feet (20-foot-radius sphere)" {
		t.Errorf("Unexpected range text: %q", sp.Range)
	}
}

func TestGetReference_NotFound(t *testing.T) {
	s, _ := srdStorage(t)

	if _, err := s.GetReference(context.Background(), srd.CategoryMonsters, "tarrasque"); err != srd.ErrNotFound {
		t.Errorf("Expected srd.ErrNotFound, got %v", err)
	}
	if _, err := s.GetReference(context.Background(), srd.Category("weapons"), "sword"); err != srd.ErrNotFound {
		t.Errorf("Invalid category must report not found, got %v", err)
	}
}

func TestGetReference_CachesReads(t *testing.T) {
	s, dataDir := srdStorage(t)
	writeRef(t, dataDir, "conditions", "prone", `{"name":"Prone"}`)

	ctx := context.Background()
	if _, err := s.GetReference(ctx, srd.CategoryConditions, "prone"); err != nil {
		t.Fatalf("First read failed: %v", err)
	}

	// Remove the file; the cached copy must still serve.
	if err := os.Remove(filepath.Join(dataDir, "srd", "conditions", "prone.json")); err != nil {
		t.Fatalf("Failed to remove file: %v", err)
	}
	if _, err := s.GetReference(ctx, srd.CategoryConditions, "prone"); err != nil {
		t.Errorf("Cached read failed: %v", err)
	}

	// Misses are cached too.
	if _, err := s.GetReference(ctx, srd.CategoryConditions, "stunned"); err != srd.ErrNotFound {
		t.Fatalf("Expected not found, got %v", err)
	}
	writeRef(t, dataDir, "conditions", "stunned", `{"name":"Stunned"}`)
	if _, err := s.GetReference(ctx, srd.CategoryConditions, "stunned"); err != srd.ErrNotFound {
		t.Errorf("Expected cached miss, got %v", err)
	}
}

func TestGetReference_InvalidJSON(t *testing.T) {
	s, dataDir := srdStorage(t)
	writeRef(t, dataDir, "monsters", "broken", `{not json`)

	if _, err := s.GetReference(context.Background(), srd.CategoryMonsters, "broken"); err != srd.ErrNotFound {
		t.Errorf("Invalid JSON must report not found, got %v", err)
	}
}

func TestListReferences(t *testing.T) {
	s, dataDir := srdStorage(t)
	writeRef(t, dataDir, "monsters", "goblin", `{"name":"Goblin"}`)
	writeRef(t, dataDir, "monsters", "wolf", `{"name":"Wolf"}`)

	slugs, err := s.ListReferences(context.Background(), srd.CategoryMonsters)
	if err != nil {
		t.Fatalf("Failed to list: %v", err)
	}
	if len(slugs) != 2 {
		t.Errorf("Expected 2 slugs, got %v", slugs)
	}

	// Missing directory lists empty, not an error.
	slugs, err = s.ListReferences(context.Background(), srd.CategorySpells)
	if err != nil {
		t.Fatalf("Empty category must not error: %v", err)
	}
	if len(slugs) != 0 {
		t.Errorf("Expected no slugs, got %v", slugs)
	}
}
