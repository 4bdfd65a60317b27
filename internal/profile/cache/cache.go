// Package cache decorates the profile repository with a redis cache-aside
// layer. Live-event author resolution hits GetByID once per merged message,
// so the hot read path is worth caching; writes pass straight through.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yuzutyaso/chatsite/internal/profile"
	model "github.com/yuzutyaso/chatsite/internal/profile/model"
	"github.com/yuzutyaso/chatsite/pkg/logger"
)

const keyPrefix = "profile:"

type CachingRepository struct {
	inner  profile.Repository
	client *redis.Client
	ttl    time.Duration
	logger *logger.Logger
}

func NewCachingRepository(inner profile.Repository, client *redis.Client, ttl time.Duration, logger *logger.Logger) *CachingRepository {
	return &CachingRepository{inner: inner, client: client, ttl: ttl, logger: logger}
}

func (r *CachingRepository) GetByID(ctx context.Context, id string) (*model.Profile, error) {
	if p := r.cached(ctx, id); p != nil {
		return p, nil
	}
	p, err := r.inner.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.store(ctx, p)
	return p, nil
}

// GetByShortID stays uncached: search traffic is rare and short ids are
// immutable anyway.
func (r *CachingRepository) GetByShortID(ctx context.Context, shortID string) (*model.Profile, error) {
	return r.inner.GetByShortID(ctx, shortID)
}

func (r *CachingRepository) Create(ctx context.Context, p *model.Profile) (bool, error) {
	created, err := r.inner.Create(ctx, p)
	if err == nil && created {
		r.store(ctx, p)
	}
	return created, err
}

// Cache failures are silent degradations, never errors: the store remains
// the source of truth.
func (r *CachingRepository) cached(ctx context.Context, id string) *model.Profile {
	data, err := r.client.Get(ctx, keyPrefix+id).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.logger.Warn("profile cache read failed", "id", id, "err", err)
		}
		return nil
	}
	var p model.Profile
	if err := json.Unmarshal(data, &p); err != nil {
		r.logger.Warn("corrupt profile cache entry", "id", id, "err", err)
		return nil
	}
	return &p
}

func (r *CachingRepository) store(ctx context.Context, p *model.Profile) {
	data, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := r.client.Set(ctx, keyPrefix+p.ID, data, r.ttl).Err(); err != nil {
		r.logger.Warn("profile cache write failed", "id", p.ID, "err", err)
	}
}
