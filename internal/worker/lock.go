package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// lockTTL bounds how long a turn can hold its encounter. If a turn sequence
// stalls, the lock expires on its own so the encounter never wedges; this is
// a liveness safeguard, not a correctness guarantee.
const lockTTL = 30 * time.Second

// EncounterLocker serializes turn processing per encounter. At most one turn
// may be in flight for a given encounter at a time.
type EncounterLocker struct {
	client  *redis.Client
	ownerID string
}

// NewEncounterLocker creates a locker identified by ownerID. Only the owner
// that acquired a lock can release it.
func NewEncounterLocker(client *redis.Client, ownerID string) *EncounterLocker {
	return &EncounterLocker{client: client, ownerID: ownerID}
}

func lockKey(encounterID string) string {
	return fmt.Sprintf("encounter-lock:%s", encounterID)
}

// Acquire attempts to take the per-encounter lock. Returns false when another
// turn is already processing this encounter.
func (l *EncounterLocker) Acquire(ctx context.Context, encounterID string) (bool, error) {
	return l.client.SetNX(ctx, lockKey(encounterID), l.ownerID, lockTTL).Result()
}

// Release releases the lock if this locker still owns it. An expired lock
// re-acquired by someone else is left alone.
func (l *EncounterLocker) Release(ctx context.Context, encounterID string) error {
	script := redis.NewScript(`
		if redis.call("get", KEYS[1]) == ARGV[1] then
			return redis.call("del", KEYS[1])
		else
			return 0
		end
	`)
	return script.Run(ctx, l.client, []string{lockKey(encounterID)}, l.ownerID).Err()
}
