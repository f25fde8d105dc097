package profile

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/migrantcare/healthtrack/internal/platform/cache"
)

// CachedRepository is a read-through cache over single-profile lookups.
// Cache failures are logged and fall through to the wrapped repository;
// missing profiles are never cached.
type CachedRepository struct {
	next   Repository
	store  cache.Store
	ttl    time.Duration
	logger zerolog.Logger
}

func NewCachedRepository(next Repository, store cache.Store, ttl time.Duration, logger zerolog.Logger) *CachedRepository {
	return &CachedRepository{next: next, store: store, ttl: ttl, logger: logger}
}

func userKey(kind Kind, userID string) string {
	return "profile:" + string(kind) + ":" + userID
}

func idKey(kind Kind, id uuid.UUID) string {
	return "profile:" + string(kind) + ":id:" + id.String()
}

func (r *CachedRepository) GetByUserID(ctx context.Context, kind Kind, userID string) (*Profile, error) {
	return r.readThrough(ctx, userKey(kind, userID), func() (*Profile, error) {
		return r.next.GetByUserID(ctx, kind, userID)
	})
}

func (r *CachedRepository) GetByID(ctx context.Context, kind Kind, id uuid.UUID) (*Profile, error) {
	return r.readThrough(ctx, idKey(kind, id), func() (*Profile, error) {
		return r.next.GetByID(ctx, kind, id)
	})
}

// List is not cached; it is paginated and only used for pickers.
func (r *CachedRepository) List(ctx context.Context, kind Kind, limit, offset int) ([]*Profile, int, error) {
	return r.next.List(ctx, kind, limit, offset)
}

func (r *CachedRepository) readThrough(ctx context.Context, key string, load func() (*Profile, error)) (*Profile, error) {
	raw, err := r.store.Get(ctx, key)
	switch {
	case err == nil:
		var p Profile
		if jsonErr := json.Unmarshal(raw, &p); jsonErr == nil {
			return &p, nil
		}
		r.logger.Warn().Str("key", key).Msg("discarding undecodable cached profile")
	case !errors.Is(err, cache.ErrMiss):
		r.logger.Warn().Err(err).Str("key", key).Msg("profile cache read failed")
	}

	p, err := load()
	if err != nil {
		return nil, err
	}

	if b, jsonErr := json.Marshal(p); jsonErr == nil {
		if setErr := r.store.Set(ctx, key, b, r.ttl); setErr != nil {
			r.logger.Warn().Err(setErr).Str("key", key).Msg("profile cache write failed")
		}
	}
	return p, nil
}
