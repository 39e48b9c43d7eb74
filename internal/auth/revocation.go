// AngelaMos | 2026
// revocation.go

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "jobtracker:revoked:"

// RevocationStore remembers access tokens that were logged out before
// they expired.
type RevocationStore interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type redisRevocations struct {
	client redis.UniversalClient
}

func NewRedisRevocationStore(client redis.UniversalClient) RevocationStore {
	return &redisRevocations{client: client}
}

func (r *redisRevocations) Revoke(
	ctx context.Context,
	jti string,
	ttl time.Duration,
) error {
	if ttl <= 0 {
		return nil
	}

	if err := r.client.Set(ctx, revokedKeyPrefix+jti, "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke access token: %w", err)
	}

	return nil
}

func (r *redisRevocations) IsRevoked(
	ctx context.Context,
	jti string,
) (bool, error) {
	exists, err := r.client.Exists(ctx, revokedKeyPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}

	return exists > 0, nil
}
