package repository

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const cleanupPendingKey = "materials:cleanup:pending"

// CleanupRepository journals blob paths that still need physical deletion.
// The journal survives process restarts, so a crash between record commit
// and blob cleanup leaves a recoverable trail instead of silent orphans.
type CleanupRepository struct {
	client *redis.Client
}

// NewCleanupRepository constructs the repository. A nil client degrades
// journaling to a no-op; in-process retries still cover the running
// instance.
func NewCleanupRepository(client *redis.Client) *CleanupRepository {
	return &CleanupRepository{client: client}
}

// Journal records paths awaiting deletion.
func (r *CleanupRepository) Journal(ctx context.Context, paths ...string) error {
	if r.client == nil || len(paths) == 0 {
		return nil
	}
	members := make([]interface{}, len(paths))
	for i, p := range paths {
		members[i] = p
	}
	if err := r.client.SAdd(ctx, cleanupPendingKey, members...).Err(); err != nil {
		return fmt.Errorf("journal blob paths: %w", err)
	}
	return nil
}

// Resolve marks a path as deleted and drops it from the journal.
func (r *CleanupRepository) Resolve(ctx context.Context, path string) error {
	if r.client == nil {
		return nil
	}
	if err := r.client.SRem(ctx, cleanupPendingKey, path).Err(); err != nil {
		return fmt.Errorf("resolve blob path: %w", err)
	}
	return nil
}

// Pending returns every journaled path still awaiting deletion.
func (r *CleanupRepository) Pending(ctx context.Context) ([]string, error) {
	if r.client == nil {
		return nil, nil
	}
	paths, err := r.client.SMembers(ctx, cleanupPendingKey).Result()
	if err != nil {
		return nil, fmt.Errorf("read pending blob paths: %w", err)
	}
	return paths, nil
}
