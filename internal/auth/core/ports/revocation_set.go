package ports

import (
	"context"
	"time"
)

// RevocationSet records invalidated refresh-token ids (jti). Membership must
// be safe under concurrent reads and writes, and a revoke must be visible to
// every verification started after it returns. Revoke is idempotent.
type RevocationSet interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}
