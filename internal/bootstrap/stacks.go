package bootstrap

import (
	"database/sql"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vibestack/vibestack-backend/internal/stacks/cache"
	"github.com/vibestack/vibestack-backend/internal/stacks/repository"
	"github.com/vibestack/vibestack-backend/internal/stacks/service"
)

// NewStackService wires the stack store and, when Redis is available and the
// TTL is positive, the page cache.
func NewStackService(db *sql.DB, rdb *redis.Client, ttl time.Duration) *service.StackService {
	repo := repository.NewStackRepository(db)
	if rdb == nil || ttl <= 0 {
		return service.NewStackService(repo, nil)
	}
	return service.NewStackService(repo, cache.NewPageCache(rdb, ttl))
}
