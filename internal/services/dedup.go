package services

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DedupGate tracks activity ids whose matching Undo/Delete raced ahead of the
// create on the network. Markers live in Redis so every worker process sees
// them, and expire so the set stays bounded.
type DedupGate struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewDedupGate(rdb *redis.Client, ttl time.Duration) *DedupGate {
	if ttl <= 0 {
		ttl = 6 * time.Hour
	}
	return &DedupGate{rdb: rdb, ttl: ttl}
}

func deleteMarkerKey(activityID string) string {
	return fmt.Sprintf("delete_upon_arrival:%s", activityID)
}

// MarkDeleteArrival records that a delete bearing the activity id was
// processed; called by the Undo/Delete handler
func (g *DedupGate) MarkDeleteArrival(ctx context.Context, activityID string) error {
	return g.rdb.Set(ctx, deleteMarkerKey(activityID), "1", g.ttl).Err()
}

// DeleteArrivedFirst reports whether a matching delete was already processed,
// in which case the create must be a no-op
func (g *DedupGate) DeleteArrivedFirst(ctx context.Context, activityID string) (bool, error) {
	n, err := g.rdb.Exists(ctx, deleteMarkerKey(activityID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
