package ports

import (
	"context"

	"github.com/readshelf/library-system/internal/auth/core/domain"
	"github.com/readshelf/library-system/internal/token"
)

// RegisterInput carries the data needed to create a new user account.
type RegisterInput struct {
	Username  string
	Password  string
	Email     string
	FirstName string
	LastName  string
	Profile   domain.Profile
}

// UpdateProfileInput carries a partial update of the current user's record.
// Nil fields are left untouched, so the same input serves PUT and PATCH.
type UpdateProfileInput struct {
	Email     *string
	FirstName *string
	LastName  *string
	Bio       *string
	BirthDate *string
	Location  *string
	AvatarURL *string
}

// AuthService defines the use-case operations of the authentication service.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, username, password string) (token.Pair, *domain.User, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Logout(ctx context.Context, refreshToken string) error
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID int64, input UpdateProfileInput) (*domain.User, error)
	ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error
}
