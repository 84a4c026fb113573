package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenRepo keeps revoked bearer token ids (jti) in Redis until the token
// would have expired anyway. A TokenRepo with a nil client reports nothing
// as revoked and refuses to revoke.
type TokenRepo struct {
	RDB    *redis.Client
	Prefix string
}

// NewTokenRepo stores revoked token ids under the "revoked:" key prefix.
func NewTokenRepo(rdb *redis.Client) *TokenRepo { return &TokenRepo{RDB: rdb, Prefix: "revoked"} }

// key builds the Redis key for a token id.
func (r *TokenRepo) key(jti string) string { return r.Prefix + ":" + jti }

// Revoke marks jti as revoked until exp.
func (r *TokenRepo) Revoke(ctx context.Context, jti string, exp time.Time) error {
	if r == nil || r.RDB == nil {
		return ErrRevocationUnavailable
	}
	ttl := time.Until(exp)
	if ttl <= 0 {
		return nil
	}
	return r.RDB.Set(ctx, r.key(jti), 1, ttl).Err()
}

// IsRevoked reports whether jti was revoked.
func (r *TokenRepo) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if r == nil || r.RDB == nil || jti == "" {
		return false, nil
	}
	n, err := r.RDB.Exists(ctx, r.key(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
