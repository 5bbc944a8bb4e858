package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/dmassey-dev/crucible/pkg/srd"
)

// refCache is a read-through cache for SRD reference documents. SRD content
// is static for the lifetime of a server process, so entries never expire.
// Not-found results are cached too, to spare repeated filesystem misses.
type refCache struct {
	mu      sync.RWMutex
	entries map[string]json.RawMessage
	misses  map[string]bool
}

func newRefCache() *refCache {
	return &refCache{
		entries: make(map[string]json.RawMessage),
		misses:  make(map[string]bool),
	}
}

func (c *refCache) get(key string) (json.RawMessage, bool, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.misses[key] {
		return nil, false, true
	}
	data, ok := c.entries[key]
	return data, ok, false
}

func (c *refCache) put(key string, data json.RawMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = data
}

func (c *refCache) putMiss(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.misses[key] = true
}

// SRD reference operations (filesystem-backed, cached)

func (r *RedisStorage) GetReference(ctx context.Context, category srd.Category, slug string) (json.RawMessage, error) {
	if !category.Valid() {
		return nil, srd.ErrNotFound
	}

	key := string(category) + "/" + slug
	if data, ok, missed := r.refs.get(key); missed {
		return nil, srd.ErrNotFound
	} else if ok {
		return data, nil
	}

	path := filepath.Join(r.dataDir, "srd", string(category), slug+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			r.refs.putMiss(key)
			return nil, srd.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read reference file: %w", err)
	}

	if !json.Valid(data) {
		r.logger.Warn("Invalid JSON in reference file", "path", path)
		r.refs.putMiss(key)
		return nil, srd.ErrNotFound
	}

	r.refs.put(key, data)
	return data, nil
}

func (r *RedisStorage) ListReferences(ctx context.Context, category srd.Category) ([]string, error) {
	if !category.Valid() {
		return nil, srd.ErrNotFound
	}

	dir := filepath.Join(r.dataDir, "srd", string(category))
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read reference directory: %w", err)
	}

	var slugs []string
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".json" {
			slugs = append(slugs, entry.Name()[:len(entry.Name())-5])
		}
	}

	return slugs, nil
}

func (r *RedisStorage) GetMonster(ctx context.Context, slug string) (*srd.Monster, error) {
	data, err := r.GetReference(ctx, srd.CategoryMonsters, slug)
	if err != nil {
		return nil, err
	}
	var out srd.Monster
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal monster %s: %w", slug, err)
	}
	out.Slug = slug
	return &out, nil
}

func (r *RedisStorage) GetSpell(ctx context.Context, slug string) (*srd.Spell, error) {
	data, err := r.GetReference(ctx, srd.CategorySpells, slug)
	if err != nil {
		return nil, err
	}
	var out srd.Spell
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal spell %s: %w", slug, err)
	}
	out.Slug = slug
	return &out, nil
}

func (r *RedisStorage) GetEquipment(ctx context.Context, slug string) (*srd.Equipment, error) {
	data, err := r.GetReference(ctx, srd.CategoryEquipment, slug)
	if err != nil {
		return nil, err
	}
	var out srd.Equipment
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal equipment %s: %w", slug, err)
	}
	out.Slug = slug
	return &out, nil
}

func (r *RedisStorage) GetCondition(ctx context.Context, slug string) (*srd.Condition, error) {
	data, err := r.GetReference(ctx, srd.CategoryConditions, slug)
	if err != nil {
		return nil, err
	}
	var out srd.Condition
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal condition %s: %w", slug, err)
	}
	out.Slug = slug
	return &out, nil
}
