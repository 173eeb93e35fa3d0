package service

import (
	"context"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/rs/zerolog"

	"github.com/readshelf/library-system/internal/auth/metrics"
	"github.com/readshelf/library-system/internal/auth/core/domain"
	"github.com/readshelf/library-system/internal/auth/core/ports"
	"github.com/readshelf/library-system/internal/token"
)

// reservedUsernames may never be registered through the public API.
var reservedUsernames = map[string]struct{}{
	"admin":         {},
	"root":          {},
	"superuser":     {},
	"administrator": {},
}

// disposableDomains lists throwaway email providers rejected at registration.
var disposableDomains = map[string]struct{}{
	"tempmail.com":      {},
	"10minutemail.com":  {},
	"guerrillamail.com": {},
	"mailinator.com":    {},
}

// AuthService implements registration, login, token refresh and revocation.
type AuthService struct {
	repo     ports.UserRepository
	revoked  ports.RevocationSet
	issuer   *token.Issuer
	verifier *token.Verifier
	logger   zerolog.Logger
}

func NewAuthService(repo ports.UserRepository, revoked ports.RevocationSet, issuer *token.Issuer, verifier *token.Verifier, logger zerolog.Logger) *AuthService {
	return &AuthService{repo: repo, revoked: revoked, issuer: issuer, verifier: verifier, logger: logger}
}

func (s *AuthService) Register(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
	if input.Username == "" || input.Password == "" || input.Email == "" {
		return nil, domain.ErrInvalidCredentials
	}
	if _, ok := reservedUsernames[strings.ToLower(input.Username)]; ok {
		return nil, domain.ErrReservedUsername
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if at := strings.LastIndex(email, "@"); at >= 0 {
		if _, blocked := disposableDomains[email[at+1:]]; blocked {
			return nil, domain.ErrDisposableEmail
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		Username:     input.Username,
		Email:        email,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		PasswordHash: string(hash),
		Profile:      input.Profile,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("user_id", created.ID).Str("username", created.Username).Msg("user registered")
	return created, nil
}

// Login verifies the password and mints an access/refresh pair. A missing user
// and a wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, username, password string) (token.Pair, *domain.User, error) {
	if username == "" || password == "" {
		return token.Pair{}, nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		if err == domain.ErrUserNotFound {
			s.logger.Info().Str("username", username).Msg("login for unknown user")
			return token.Pair{}, nil, domain.ErrInvalidCredentials
		}
		return token.Pair{}, nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		return token.Pair{}, nil, domain.ErrInvalidCredentials
	}

	pair, err := s.issuer.IssuePair(user.ID)
	if err != nil {
		return token.Pair{}, nil, err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	metrics.TokensIssuedTotal.WithLabelValues(token.TypeAccess).Inc()
	metrics.TokensIssuedTotal.WithLabelValues(token.TypeRefresh).Inc()
	s.logger.Info().Int64("user_id", user.ID).Msg("login succeeded")

	return pair, user, nil
}

// Refresh mints a new access token from a refresh token, rejecting expired,
// malformed, wrong-type and revoked credentials.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.verifier.ParseRefresh(refreshToken)
	if err != nil {
		metrics.RefreshesTotal.WithLabelValues("invalid").Inc()
		return "", domain.ErrInvalidRefresh
	}

	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return "", err
	}
	if revoked {
		metrics.RefreshesTotal.WithLabelValues("revoked").Inc()
		s.logger.Info().Str("jti", claims.ID).Msg("refresh with revoked token")
		return "", domain.ErrInvalidRefresh
	}

	userID, err := claims.SubjectID()
	if err != nil {
		return "", domain.ErrInvalidRefresh
	}

	access, err := s.issuer.IssueAccess(userID)
	if err != nil {
		return "", err
	}

	metrics.RefreshesTotal.WithLabelValues("success").Inc()
	metrics.TokensIssuedTotal.WithLabelValues(token.TypeAccess).Inc()
	return access, nil
}

// Logout adds the refresh token's jti to the revocation set. Revoking the same
// token twice is a no-op; an already-expired token needs no entry at all.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.verifier.ParseRefresh(refreshToken)
	if err != nil {
		return domain.ErrInvalidRefresh
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}

	if err := s.revoked.Revoke(ctx, claims.ID, ttl); err != nil {
		return err
	}

	metrics.RevocationsTotal.Inc()
	s.logger.Info().Str("jti", claims.ID).Msg("refresh token revoked")
	return nil
}

func (s *AuthService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID int64, input ports.UpdateProfileInput) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*input.Email))
	}
	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Bio != nil {
		user.Profile.Bio = *input.Bio
	}
	if input.BirthDate != nil {
		user.Profile.BirthDate = *input.BirthDate
	}
	if input.Location != nil {
		user.Profile.Location = *input.Location
	}
	if input.AvatarURL != nil {
		user.Profile.AvatarURL = *input.AvatarURL
	}
	user.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)) != nil {
		return domain.ErrWrongPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user.PasswordHash = string(hash)
	user.UpdatedAt = time.Now().UTC()
	return s.repo.Update(ctx, user)
}
