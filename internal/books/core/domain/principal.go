package domain

import (
	"errors"
	"fmt"
)

// Resolution failures. The first two surface as 401 to the client; the
// upstream family surfaces as 503 but must stay distinguishable in logs.
var (
	ErrInvalidCredential   = errors.New("invalid credential")
	ErrUserNotFound        = errors.New("user not found upstream")
	ErrUpstreamTimeout     = errors.New("auth service timeout")
	ErrUpstreamUnavailable = errors.New("auth service unreachable")
)

// UpstreamStatusError reports an unexpected status from the auth service.
type UpstreamStatusError struct {
	Status int
}

func (e *UpstreamStatusError) Error() string {
	return fmt.Sprintf("auth service returned status %d", e.Status)
}

// Principal is the identity resolved for exactly one request. It is never
// persisted or cached; every request triggers a fresh resolution so that a
// revocation is visible immediately.
type Principal struct {
	ID            int64
	Username      string
	Email         string
	IsStaff       bool
	Authenticated bool
}

// UserInfo is the public user record as served by the auth service.
type UserInfo struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	IsStaff   bool   `json:"is_staff"`
}
