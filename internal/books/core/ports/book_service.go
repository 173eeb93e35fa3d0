package ports

import (
	"context"

	"github.com/readshelf/library-system/internal/books/core/domain"
)

// CreateBookInput carries the data needed to create a book. The owner is
// always the resolved principal, never part of the payload.
type CreateBookInput struct {
	Title           string
	Author          string
	Genre           string
	PublicationYear int
}

// UpdateBookInput carries a partial or full update. Nil fields are left
// untouched, so PUT and PATCH share the same path.
type UpdateBookInput struct {
	Title           *string
	Author          *string
	Genre           *string
	PublicationYear *int
}

// ListBooksInput carries all parameters for the list endpoint.
type ListBooksInput struct {
	Author          string
	Genre           string
	PublicationYear int
	YearFrom        int
	YearTo          int
	Search          string
	Ordering        string
	Page            int
	PageSize        int
}

// ListBooksResult is returned by List.
type ListBooksResult struct {
	Items      []*domain.Book
	Total      int64
	Page       int
	PageSize   int
	TotalPages int
}

// Statistics is returned by the statistics endpoint.
type Statistics struct {
	TotalBooks   int64
	TotalAuthors int64
	TotalGenres  int64
	MyBooksCount int64
}

// BookService defines use-case operations for books. Every method runs the
// authorization gate before touching persistence.
type BookService interface {
	List(ctx context.Context, p *domain.Principal, input ListBooksInput) (*ListBooksResult, error)
	Create(ctx context.Context, p *domain.Principal, input CreateBookInput) (*domain.Book, error)
	Get(ctx context.Context, p *domain.Principal, id int64) (*domain.Book, error)
	Update(ctx context.Context, p *domain.Principal, id int64, input UpdateBookInput) (*domain.Book, error)
	Delete(ctx context.Context, p *domain.Principal, id int64) error
	MyBooks(ctx context.Context, p *domain.Principal) ([]*domain.Book, error)
	Statistics(ctx context.Context, p *domain.Principal) (*Statistics, error)
}
