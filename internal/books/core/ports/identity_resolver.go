package ports

import (
	"context"

	"github.com/readshelf/library-system/internal/books/core/domain"
)

// IdentityResolver turns a raw bearer credential into a trusted principal by
// verifying it locally and then confirming the subject with the auth service.
// Resolution is all-or-nothing: a partial principal is never returned.
type IdentityResolver interface {
	Resolve(ctx context.Context, rawToken string) (*domain.Principal, error)
	// FetchUser retrieves the public record of an arbitrary user id,
	// forwarding the caller's bearer credential unchanged.
	FetchUser(ctx context.Context, userID int64, rawToken string) (*domain.UserInfo, error)
}
