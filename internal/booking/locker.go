package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/denizerden/table-reservation-system/internal/domain"
	"github.com/redis/go-redis/v9"
)

// TableLocker is the fail-fast half of the exclusion boundary: it claims
// short-lived locks on (table, slot) pairs so contending requests are turned
// away immediately instead of queueing on the database. The transactional
// re-check in the repository stays authoritative.
type TableLocker interface {
	Lock(ctx context.Context, owner string, slot domain.TimeSlot, tableIDs []int) error
	Unlock(ctx context.Context, owner string, slot domain.TimeSlot, tableIDs []int) error
}

var lockTablesScript = redis.NewScript(`
    -- KEYS = table lock keys (e.g., table_lock:5:1756648800)
    -- ARGV = [owner, ttl]

    for i=1, #KEYS do
        if redis.call("EXISTS", KEYS[i]) == 1 then
            return {err = "table already locked"}
        end
    end

    for i=1, #KEYS do
        redis.call("SET", KEYS[i], ARGV[1], "EX", ARGV[2])
    end

    return "OK"
`)

type RedisTableLocker struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisTableLocker(client redis.UniversalClient, ttl time.Duration) *RedisTableLocker {
	return &RedisTableLocker{
		client: client,
		ttl:    ttl,
	}
}

// Lock atomically claims every requested table for the slot, or none of them.
// A held key means another request is mid-allocation (or holds a live
// pending reservation), so the caller gets domain.ErrTableConflict.
func (l *RedisTableLocker) Lock(ctx context.Context, owner string, slot domain.TimeSlot, tableIDs []int) error {
	keys := make([]string, len(tableIDs))
	for i, id := range tableIDs {
		keys[i] = tableLockKey(id, slot)
	}

	err := lockTablesScript.Run(ctx, l.client, keys, owner, int(l.ttl.Seconds())).Err()
	if err != nil {
		if redis.HasErrorPrefix(err, "table already locked") {
			return domain.ErrTableConflict
		}

		return err
	}

	return nil
}

var unlockTablesScript = redis.NewScript(`
    -- KEYS = table lock keys
    -- ARGV = [owner]

    for i=1, #KEYS do
        if redis.call("GET", KEYS[i]) == ARGV[1] then
            redis.call("DEL", KEYS[i])
        end
    end

    return "OK"
`)

// Unlock releases only the keys still owned by owner. A key that expired and
// was reacquired by another request belongs to that request now and must
// survive the release.
func (l *RedisTableLocker) Unlock(ctx context.Context, owner string, slot domain.TimeSlot, tableIDs []int) error {
	keys := make([]string, len(tableIDs))
	for i, id := range tableIDs {
		keys[i] = tableLockKey(id, slot)
	}

	return unlockTablesScript.Run(ctx, l.client, keys, owner).Err()
}

// tableLockKey buckets by slot start. Slots come off a uniform grid, so two
// overlapping requests always share the same start.
func tableLockKey(tableID int, slot domain.TimeSlot) string {
	return fmt.Sprintf("table_lock:%d:%d", tableID, slot.Start.Unix())
}
