package ports

import (
	"context"

	"github.com/readshelf/library-system/internal/books/core/domain"
)

// ListBooksFilter carries all query parameters for listing books.
type ListBooksFilter struct {
	UserID          int64  // non-zero scopes the list to one owner
	Author          string // optional: exact match
	Genre           string // optional: exact match
	PublicationYear int    // optional: exact match when > 0
	YearFrom        int    // optional: publication_year >= YearFrom
	YearTo          int    // optional: publication_year <= YearTo
	Search          string // optional: substring match on title or author
	Ordering        string // whitelisted field, optionally "-" prefixed
	Page            int    // 1-based
	Limit           int    // rows per page; non-positive means no limit
}

// CollectionStats holds the aggregate counters for the statistics endpoint.
type CollectionStats struct {
	TotalBooks   int64
	TotalAuthors int64
	TotalGenres  int64
}

// BookRepository defines persistence operations for books.
type BookRepository interface {
	Create(ctx context.Context, book *domain.Book) (*domain.Book, error)
	FindByID(ctx context.Context, id int64) (*domain.Book, error)
	Update(ctx context.Context, book *domain.Book) error
	Delete(ctx context.Context, id int64) error
	// List returns a page of books matching filter and the total count.
	List(ctx context.Context, filter ListBooksFilter) ([]*domain.Book, int64, error)
	CountByUser(ctx context.Context, userID int64) (int64, error)
	Stats(ctx context.Context) (CollectionStats, error)
}
