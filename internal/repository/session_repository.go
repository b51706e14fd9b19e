package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionRepo tracks revoked access tokens in Redis.  Logout stores the
// token's jti with a TTL equal to the token's remaining lifetime; the JWT
// middleware rejects revoked tokens until they expire on their own.
// A nil SessionRepo (no Redis available) disables revocation: logout is
// then client-side only, matching the degraded-cache behavior elsewhere.
type SessionRepo struct{ rdb *redis.Client }

func NewSessionRepo(rdb *redis.Client) *SessionRepo {
	if rdb == nil {
		return nil
	}
	return &SessionRepo{rdb: rdb}
}

func (r *SessionRepo) key(jti string) string { return "revoked:" + jti }

// Revoke marks a token id as revoked until ttl elapses.
func (r *SessionRepo) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if r == nil || ttl <= 0 {
		return nil
	}
	return r.rdb.Set(ctx, r.key(jti), "1", ttl).Err()
}

// IsRevoked reports whether a token id has been revoked.  Redis errors
// fail open so an outage does not lock every session out.
func (r *SessionRepo) IsRevoked(ctx context.Context, jti string) bool {
	if r == nil || jti == "" {
		return false
	}
	n, err := r.rdb.Exists(ctx, r.key(jti)).Result()
	if err != nil {
		return false
	}
	return n > 0
}
