package services

import (
	"context"

	"github.com/sbilibin2017/questlog/internal/logger"
)

// evictUser drops a cached profile after a write. Cache errors are not fatal.
func evictUser(ctx context.Context, cache UserCache, id int64) {
	if cache == nil {
		return
	}
	if err := cache.Delete(ctx, id); err != nil {
		logger.Log.Warnw("failed to evict cached user", "userID", id, "error", err)
	}
}
