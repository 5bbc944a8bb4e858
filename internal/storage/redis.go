package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmassey-dev/crucible/pkg/actor"
	"github.com/dmassey-dev/crucible/pkg/encounter"
	"github.com/dmassey-dev/crucible/pkg/storage"
)

const (
	encounterKeyPrefix = "encounter:"
	characterKeyPrefix = "character:"

	// Encounters are transient combat sessions; characters persist.
	encounterTTL = 24 * time.Hour
)

// RedisStorage implements the Storage interface using Redis for encounter and
// character documents and the filesystem for static SRD reference data.
type RedisStorage struct {
	client  *redis.Client
	logger  *slog.Logger
	dataDir string
	refs    *refCache
}

// Ensure RedisStorage implements Storage interface
var _ storage.Storage = (*RedisStorage)(nil)

// NewRedisStorage creates a new Redis storage instance.
func NewRedisStorage(redisURL string, dataDir string, logger *slog.Logger) *RedisStorage {
	rdb := redis.NewClient(&redis.Options{
		Addr: redisURL,
	})

	if dataDir == "" {
		dataDir = "./data"
	}

	return &RedisStorage{
		client:  rdb,
		logger:  logger,
		dataDir: dataDir,
		refs:    newRefCache(),
	}
}

// Health and lifecycle methods

func (r *RedisStorage) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisStorage) WaitForConnection(ctx context.Context) error {
	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}

// Encounter operations (Redis-backed)

func (r *RedisStorage) SaveEncounter(ctx context.Context, id string, e *encounter.Encounter) error {
	e.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(e)
	if err != nil {
		r.logger.Error("Failed to marshal encounter", "id", id, "error", err)
		return fmt.Errorf("failed to marshal encounter: %w", err)
	}

	key := encounterKeyPrefix + id
	if err := r.client.Set(ctx, key, string(data), encounterTTL).Err(); err != nil {
		r.logger.Error("Failed to save encounter", "id", id, "error", err)
		return fmt.Errorf("failed to save encounter: %w", err)
	}

	return nil
}

func (r *RedisStorage) LoadEncounter(ctx context.Context, id string) (*encounter.Encounter, error) {
	key := encounterKeyPrefix + id
	data, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			r.logger.Warn("Encounter not found", "id", id)
			return nil, nil // Return nil for not found
		}
		r.logger.Error("Failed to load encounter", "id", id, "error", err)
		return nil, fmt.Errorf("failed to load encounter: %w", err)
	}

	var e encounter.Encounter
	if err := json.Unmarshal([]byte(data), &e); err != nil {
		r.logger.Error("Failed to unmarshal encounter", "id", id, "error", err)
		return nil, fmt.Errorf("failed to unmarshal encounter: %w", err)
	}

	return &e, nil
}

func (r *RedisStorage) DeleteEncounter(ctx context.Context, id string) error {
	key := encounterKeyPrefix + id
	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.logger.Error("Failed to delete encounter", "id", id, "error", err)
		return fmt.Errorf("failed to delete encounter: %w", err)
	}
	return nil
}

// Character operations (Redis-backed)

func (r *RedisStorage) SavePlayer(ctx context.Context, id string, spec *actor.PlayerSpec) error {
	data, err := json.Marshal(spec)
	if err != nil {
		r.logger.Error("Failed to marshal player", "id", id, "error", err)
		return fmt.Errorf("failed to marshal player: %w", err)
	}

	key := characterKeyPrefix + id
	// Characters outlive encounters; no TTL.
	if err := r.client.Set(ctx, key, string(data), 0).Err(); err != nil {
		r.logger.Error("Failed to save player", "id", id, "error", err)
		return fmt.Errorf("failed to save player: %w", err)
	}

	return nil
}

func (r *RedisStorage) LoadPlayer(ctx context.Context, id string) (*actor.PlayerSpec, error) {
	key := characterKeyPrefix + id
	data, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		r.logger.Error("Failed to load player", "id", id, "error", err)
		return nil, fmt.Errorf("failed to load player: %w", err)
	}

	var spec actor.PlayerSpec
	if err := json.Unmarshal([]byte(data), &spec); err != nil {
		r.logger.Error("Failed to unmarshal player", "id", id, "error", err)
		return nil, fmt.Errorf("failed to unmarshal player: %w", err)
	}

	return &spec, nil
}

// Client returns the underlying Redis client for per-encounter turn locks.
func (r *RedisStorage) Client() *redis.Client {
	return r.client
}
