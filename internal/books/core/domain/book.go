package domain

import (
	"errors"
	"time"
)

var (
	ErrBookNotFound = errors.New("book not found")
	ErrForbidden    = errors.New("access forbidden")
)

// Book is the core record of the books service.
type Book struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	Author          string `json:"author"`
	Genre           string `json:"genre"`
	PublicationYear int    `json:"publication_year"`
	// UserID is a loose reference to the owner in the auth service, not a
	// foreign key. Integrity across services is enforced only at request
	// time, when the owner's credential is resolved.
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
