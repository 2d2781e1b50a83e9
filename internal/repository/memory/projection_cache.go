package memory

import (
	"context"
	"encoding/json"
	"time"

	"socialite-be/internal/entity"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

const projectionTTL = 15 * time.Minute

// ProjectionCache keeps the lightweight user projections that get embedded
// into chat and notification payloads. Redis is the shared tier; the local
// go-cache tier absorbs reads when Redis is down or not configured.
type ProjectionCache struct {
	rdb   *redis.Client
	local *cache.Cache
}

func NewProjectionCache(rdb *redis.Client) *ProjectionCache {
	return &ProjectionCache{
		rdb:   rdb,
		local: cache.New(projectionTTL, 10*time.Minute),
	}
}

func projectionKey(userID uuid.UUID) string {
	return "projection:user:" + userID.String()
}

func (c *ProjectionCache) Get(ctx context.Context, userID uuid.UUID) (*entity.Projection, bool) {
	if c.rdb != nil {
		raw, err := c.rdb.Get(ctx, projectionKey(userID)).Bytes()
		if err == nil {
			var p entity.Projection
			if err := json.Unmarshal(raw, &p); err == nil {
				return &p, true
			}
		}
	}
	if x, found := c.local.Get(userID.String()); found {
		p := x.(entity.Projection)
		return &p, true
	}
	return nil, false
}

func (c *ProjectionCache) Set(ctx context.Context, p entity.Projection) {
	c.local.Set(p.Id.String(), p, cache.DefaultExpiration)
	if c.rdb == nil {
		return
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return
	}
	// Best effort. A failed write only costs a later DB read.
	c.rdb.Set(ctx, projectionKey(p.Id), raw, projectionTTL)
}

// Invalidate drops both tiers after a profile update so stale usernames and
// avatars do not leak into fresh payloads.
func (c *ProjectionCache) Invalidate(ctx context.Context, userID uuid.UUID) {
	c.local.Delete(userID.String())
	if c.rdb != nil {
		c.rdb.Del(ctx, projectionKey(userID))
	}
}
