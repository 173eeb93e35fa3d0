package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/rs/zerolog"

	"github.com/readshelf/library-system/internal/auth/core/domain"
	"github.com/readshelf/library-system/internal/auth/core/ports"
	"github.com/readshelf/library-system/internal/token"
)

type stubUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*domain.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[int64]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == user.Username || u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	r.nextID++
	copy := cloneUser(user)
	copy.ID = r.nextID
	r.users[copy.ID] = cloneUser(copy)
	return copy, nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	r.users[user.ID] = cloneUser(user)
	return nil
}

type memRevocationSet struct {
	mu      sync.Mutex
	revoked map[string]struct{}
}

func newMemRevocationSet() *memRevocationSet {
	return &memRevocationSet{revoked: make(map[string]struct{})}
}

func (s *memRevocationSet) Revoke(_ context.Context, jti string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[jti] = struct{}{}
	return nil
}

func (s *memRevocationSet) IsRevoked(_ context.Context, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.revoked[jti]
	return ok, nil
}

func newTestService() (*AuthService, *stubUserRepo, *memRevocationSet) {
	repo := newStubUserRepo()
	revoked := newMemRevocationSet()
	issuer := token.NewIssuer("secret", time.Minute, time.Hour)
	verifier := token.NewVerifier("secret")
	svc := NewAuthService(repo, revoked, issuer, verifier, zerolog.Nop())
	return svc, repo, revoked
}

func register(t *testing.T, svc *AuthService, username, password, email string) *domain.User {
	t.Helper()
	user, err := svc.Register(context.Background(), registerInput(username, password, email))
	if err != nil {
		t.Fatalf("Register(%s): %v", username, err)
	}
	return user
}

func registerInput(username, password, email string) ports.RegisterInput {
	return ports.RegisterInput{Username: username, Password: password, Email: email}
}

func TestRegister_HashesPassword(t *testing.T) {
	svc, _, _ := newTestService()

	user := register(t, svc, "alice", "pass12345", "alice@example.com")
	if user.ID == 0 {
		t.Fatalf("expected an assigned id")
	}
	if user.PasswordHash == "pass12345" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("pass12345")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
}

func TestRegister_ReservedAndDisposable(t *testing.T) {
	svc, _, _ := newTestService()

	if _, err := svc.Register(context.Background(), registerInput("Admin", "pass12345", "a@example.com")); err != domain.ErrReservedUsername {
		t.Fatalf("expected ErrReservedUsername, got %v", err)
	}
	if _, err := svc.Register(context.Background(), registerInput("bob", "pass12345", "bob@mailinator.com")); err != domain.ErrDisposableEmail {
		t.Fatalf("expected ErrDisposableEmail, got %v", err)
	}
}

func TestRegister_Duplicate(t *testing.T) {
	svc, _, _ := newTestService()

	register(t, svc, "bob", "pass12345", "bob@example.com")
	if _, err := svc.Register(context.Background(), registerInput("bob", "other1234", "bob2@example.com")); err != domain.ErrUserExists {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestLogin_IssueThenVerifyRecoversSubject(t *testing.T) {
	svc, _, _ := newTestService()
	verifier := token.NewVerifier("secret")

	user := register(t, svc, "carol", "s3cret123", "carol@example.com")

	pair, got, err := svc.Login(context.Background(), "carol", "s3cret123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if got.ID != user.ID {
		t.Fatalf("unexpected user: %+v", got)
	}

	subject, err := verifier.VerifyAccess(pair.Access)
	if err != nil {
		t.Fatalf("VerifyAccess: %v", err)
	}
	if subject != user.ID {
		t.Fatalf("expected subject %d, got %d", user.ID, subject)
	}
}

func TestLogin_UnknownUserAndWrongPasswordLookAlike(t *testing.T) {
	svc, _, _ := newTestService()
	register(t, svc, "dave", "goodpass1", "dave@example.com")

	if _, _, err := svc.Login(context.Background(), "dave", "badpass99"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, _, err := svc.Login(context.Background(), "ghost", "whatever1"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestRefresh_Succeeds(t *testing.T) {
	svc, _, _ := newTestService()
	verifier := token.NewVerifier("secret")

	user := register(t, svc, "erin", "pass12345", "erin@example.com")
	pair, _, err := svc.Login(context.Background(), "erin", "pass12345")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	access, err := svc.Refresh(context.Background(), pair.Refresh)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	subject, err := verifier.VerifyAccess(access)
	if err != nil {
		t.Fatalf("VerifyAccess on refreshed token: %v", err)
	}
	if subject != user.ID {
		t.Fatalf("expected subject %d, got %d", user.ID, subject)
	}
}

func TestRefresh_RejectsAccessToken(t *testing.T) {
	svc, _, _ := newTestService()
	register(t, svc, "frank", "pass12345", "frank@example.com")
	pair, _, _ := svc.Login(context.Background(), "frank", "pass12345")

	if _, err := svc.Refresh(context.Background(), pair.Access); err != domain.ErrInvalidRefresh {
		t.Fatalf("expected ErrInvalidRefresh for access token, got %v", err)
	}
}

func TestLogout_RevokesRefreshPermanently(t *testing.T) {
	svc, _, _ := newTestService()
	register(t, svc, "gala", "pass12345", "g@x.com")
	pair, _, _ := svc.Login(context.Background(), "gala", "pass12345")

	if err := svc.Logout(context.Background(), pair.Refresh); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	// The refresh token is still well within its lifetime but must now fail.
	if _, err := svc.Refresh(context.Background(), pair.Refresh); err != domain.ErrInvalidRefresh {
		t.Fatalf("expected ErrInvalidRefresh after revoke, got %v", err)
	}

	// A pair issued afterwards is unaffected.
	fresh, _, err := svc.Login(context.Background(), "gala", "pass12345")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, err := svc.Refresh(context.Background(), fresh.Refresh); err != nil {
		t.Fatalf("fresh refresh token rejected: %v", err)
	}
}

func TestLogout_Idempotent(t *testing.T) {
	svc, _, _ := newTestService()
	register(t, svc, "hank", "pass12345", "hank@example.com")
	pair, _, _ := svc.Login(context.Background(), "hank", "pass12345")

	if err := svc.Logout(context.Background(), pair.Refresh); err != nil {
		t.Fatalf("first Logout: %v", err)
	}
	if err := svc.Logout(context.Background(), pair.Refresh); err != nil {
		t.Fatalf("second Logout: %v", err)
	}
	if _, err := svc.Refresh(context.Background(), pair.Refresh); err != domain.ErrInvalidRefresh {
		t.Fatalf("expected token to stay revoked, got %v", err)
	}
}

func TestLogout_MalformedToken(t *testing.T) {
	svc, _, _ := newTestService()

	if err := svc.Logout(context.Background(), "not-a-token"); err != domain.ErrInvalidRefresh {
		t.Fatalf("expected ErrInvalidRefresh, got %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	svc, _, _ := newTestService()
	user := register(t, svc, "iris", "oldpass99", "iris@example.com")

	if err := svc.ChangePassword(context.Background(), user.ID, "wrongold1", "newpass99"); err != domain.ErrWrongPassword {
		t.Fatalf("expected ErrWrongPassword, got %v", err)
	}
	if err := svc.ChangePassword(context.Background(), user.ID, "oldpass99", "newpass99"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if _, _, err := svc.Login(context.Background(), "iris", "oldpass99"); err != domain.ErrInvalidCredentials {
		t.Fatalf("old password still accepted: %v", err)
	}
	if _, _, err := svc.Login(context.Background(), "iris", "newpass99"); err != nil {
		t.Fatalf("new password rejected: %v", err)
	}
}

func TestUpdateProfile_PartialUpdate(t *testing.T) {
	svc, _, _ := newTestService()
	user := register(t, svc, "judy", "pass12345", "judy@example.com")

	bio := "reader of long novels"
	updated, err := svc.UpdateProfile(context.Background(), user.ID, updateInput(&bio))
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if updated.Profile.Bio != bio {
		t.Fatalf("bio not applied: %+v", updated.Profile)
	}
	if updated.Email != "judy@example.com" {
		t.Fatalf("untouched field changed: %s", updated.Email)
	}
}

func updateInput(bio *string) ports.UpdateProfileInput {
	return ports.UpdateProfileInput{Bio: bio}
}
