package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/mkravets/contactdesk/internal/common"
	"github.com/mkravets/contactdesk/internal/logging"
	"github.com/mkravets/contactdesk/internal/server/models"
)

// Loader fetches a user from the authoritative store.
type Loader func(ctx context.Context, email string) (*models.User, error)

// UserCache keeps JSON snapshots of user records with a fixed TTL. A
// snapshot may go stale relative to the store; the staleness window is
// bounded by the TTL, and every user mutation is expected to call
// Invalidate.
type UserCache struct {
	kv     KV
	ttl    time.Duration
	logger logging.Logger
}

func NewUserCache(kv KV, ttl time.Duration, logger logging.Logger) *UserCache {
	return &UserCache{kv: kv, ttl: ttl, logger: logger.With("module", "user_cache")}
}

// GetOrLoad returns the cached snapshot for email, or invokes loader
// against the authoritative store, caches the result and returns it.
// A loader miss (common.ErrorNotFound) is propagated and never cached.
// KV errors are logged and degrade to the loader.
func (c *UserCache) GetOrLoad(ctx context.Context, email string, loader Loader) (*models.User, error) {

	val, err := c.kv.Get(ctx, email)
	if err == nil {
		user := &models.User{}
		if jsonErr := json.Unmarshal([]byte(val), user); jsonErr == nil {
			return user, nil
		}
		// corrupt entry, fall through to the loader
		c.logger.Warn(ctx, "dropping unreadable cache entry", "key", email)
	} else if !errors.Is(err, common.ErrorNotFound) {
		c.logger.Warn(ctx, "cache read failed, falling back to store", "error", err)
	}

	user, err := loader(ctx, email)
	if err != nil {
		return nil, err
	}

	snapshot, err := json.Marshal(user)
	if err != nil {
		return user, nil
	}
	if err := c.kv.Set(ctx, email, string(snapshot), c.ttl); err != nil {
		c.logger.Warn(ctx, "cache write failed", "error", err)
	}

	return user, nil
}

// Invalidate evicts the snapshot for email. Called after every user
// mutation so the next request reloads from the store.
func (c *UserCache) Invalidate(ctx context.Context, email string) {
	if err := c.kv.Del(ctx, email); err != nil {
		c.logger.Warn(ctx, "cache eviction failed", "key", email, "error", err)
	}
}
