package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationSet stores revoked refresh-token ids in Redis.
// Key format: revoked:<jti>, expiring with the token itself so the set never
// outgrows the population of live refresh tokens.
type RevocationSet struct {
	client *redis.Client
}

// NewRevocationSet creates a RevocationSet wrapping the given Redis client.
func NewRevocationSet(client *redis.Client) *RevocationSet {
	return &RevocationSet{client: client}
}

// Revoke marks the jti as invalid until its token would have expired anyway.
// Overwriting an existing entry is harmless, so the operation is idempotent.
func (s *RevocationSet) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.key(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke jti: %w", err)
	}
	return nil
}

// IsRevoked reports whether the jti has been revoked.
func (s *RevocationSet) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("revocation check: %w", err)
	}
	return n > 0, nil
}

func (s *RevocationSet) key(jti string) string {
	return "revoked:" + jti
}
