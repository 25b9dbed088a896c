package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/autohaus-digital/backend/pkg/errors"
	"github.com/autohaus-digital/backend/pkg/redis"
)

// Store persists cart snapshots in a per-user key-value scope.
type Store interface {
	Load(ctx context.Context, userID uuid.UUID) (*Aggregate, error)
	Save(ctx context.Context, userID uuid.UUID, agg *Aggregate) error
	Delete(ctx context.Context, userID uuid.UUID) error
}

type kvStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	CartKey(userID string) string
}

type redisStore struct {
	kv  kvStore
	ttl time.Duration
}

// NewRedisStore builds the Redis-backed cart store. TTL bounds how long an
// untouched cart survives.
func NewRedisStore(kv kvStore, ttl time.Duration) (Store, error) {
	if kv == nil {
		return nil, fmt.Errorf("kv store required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("cart ttl must be positive")
	}
	return &redisStore{kv: kv, ttl: ttl}, nil
}

// Load returns the stored cart, or a fresh empty aggregate when none exists.
func (s *redisStore) Load(ctx context.Context, userID uuid.UUID) (*Aggregate, error) {
	raw, err := s.kv.Get(ctx, s.kv.CartKey(userID.String()))
	if err != nil {
		if redis.IsNotFound(err) {
			return &Aggregate{}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart")
	}

	var agg Aggregate
	if err := json.Unmarshal([]byte(raw), &agg); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decoding cart snapshot")
	}
	return &agg, nil
}

// Save writes the cart snapshot, refreshing its TTL.
func (s *redisStore) Save(ctx context.Context, userID uuid.UUID, agg *Aggregate) error {
	payload, err := json.Marshal(agg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding cart snapshot")
	}
	if err := s.kv.Set(ctx, s.kv.CartKey(userID.String()), payload, s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "storing cart")
	}
	return nil
}

// Delete removes the stored cart. Deleting an absent cart is fine.
func (s *redisStore) Delete(ctx context.Context, userID uuid.UUID) error {
	if err := s.kv.Del(ctx, s.kv.CartKey(userID.String())); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deleting cart")
	}
	return nil
}
