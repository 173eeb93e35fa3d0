package domain

import (
	"errors"
	"time"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidRefresh     = errors.New("invalid refresh token")
	ErrWrongPassword      = errors.New("wrong password")
	ErrReservedUsername   = errors.New("username is reserved")
	ErrDisposableEmail    = errors.New("disposable email addresses are not allowed")
)

// Profile holds the optional extension fields attached to every user.
type Profile struct {
	Bio       string `json:"bio,omitempty"`
	BirthDate string `json:"birth_date,omitempty"` // YYYY-MM-DD
	Location  string `json:"location,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// User is the canonical identity record. It is owned exclusively by the auth
// service; other services re-fetch it over HTTP instead of replicating it.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name,omitempty"`
	LastName     string    `json:"last_name,omitempty"`
	PasswordHash string    `json:"-"`
	IsStaff      bool      `json:"is_staff"`
	Profile      Profile   `json:"profile"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
