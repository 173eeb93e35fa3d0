package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/readshelf/library-system/internal/books/metrics"
	"github.com/readshelf/library-system/internal/books/core/domain"
	"github.com/readshelf/library-system/internal/books/core/policy"
	"github.com/readshelf/library-system/internal/books/core/ports"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// BookService implements the book use cases. Every mutating operation runs
// the authorization gate before touching the repository.
type BookService struct {
	repo   ports.BookRepository
	logger zerolog.Logger
}

func NewBookService(repo ports.BookRepository, logger zerolog.Logger) *BookService {
	return &BookService{repo: repo, logger: logger}
}

func (s *BookService) List(ctx context.Context, p *domain.Principal, input ports.ListBooksInput) (*ports.ListBooksResult, error) {
	if d := policy.Authorize(p, nil, policy.ActionList); !d.Allowed {
		return nil, fmt.Errorf("%w: %s", domain.ErrForbidden, d.Reason)
	}

	page := input.Page
	if page < 1 {
		page = 1
	}
	size := input.PageSize
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	items, total, err := s.repo.List(ctx, ports.ListBooksFilter{
		Author:          input.Author,
		Genre:           input.Genre,
		PublicationYear: input.PublicationYear,
		YearFrom:        input.YearFrom,
		YearTo:          input.YearTo,
		Search:          input.Search,
		Ordering:        input.Ordering,
		Page:            page,
		Limit:           size,
	})
	if err != nil {
		return nil, fmt.Errorf("listing books: %w", err)
	}

	totalPages := int(total) / size
	if int(total)%size != 0 {
		totalPages++
	}

	return &ports.ListBooksResult{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   size,
		TotalPages: totalPages,
	}, nil
}

// Create stores a new book owned by the principal. The owner always comes
// from the resolved identity, never from the payload.
func (s *BookService) Create(ctx context.Context, p *domain.Principal, input ports.CreateBookInput) (*domain.Book, error) {
	if d := policy.Authorize(p, nil, policy.ActionCreate); !d.Allowed {
		return nil, fmt.Errorf("%w: %s", domain.ErrForbidden, d.Reason)
	}

	book := &domain.Book{
		Title:           input.Title,
		Author:          input.Author,
		Genre:           input.Genre,
		PublicationYear: input.PublicationYear,
		UserID:          p.ID,
		CreatedAt:       time.Now().UTC(),
	}

	created, err := s.repo.Create(ctx, book)
	if err != nil {
		return nil, fmt.Errorf("creating book: %w", err)
	}

	metrics.BooksCreatedTotal.Inc()
	s.logger.Info().Int64("book_id", created.ID).Int64("user_id", p.ID).Msg("book created")
	return created, nil
}

func (s *BookService) Get(ctx context.Context, p *domain.Principal, id int64) (*domain.Book, error) {
	if d := policy.Authorize(p, nil, policy.ActionRetrieve); !d.Allowed {
		return nil, fmt.Errorf("%w: %s", domain.ErrForbidden, d.Reason)
	}
	return s.repo.FindByID(ctx, id)
}

// Update fetches the book first so the gate can compare ownership, then
// applies only the fields present in the input.
func (s *BookService) Update(ctx context.Context, p *domain.Principal, id int64, input ports.UpdateBookInput) (*domain.Book, error) {
	book, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if d := policy.Authorize(p, book, policy.ActionUpdate); !d.Allowed {
		s.logger.Info().Int64("book_id", id).Int64("user_id", p.ID).Str("reason", d.Reason).Msg("update denied")
		return nil, fmt.Errorf("%w: %s", domain.ErrForbidden, d.Reason)
	}

	if input.Title != nil {
		book.Title = *input.Title
	}
	if input.Author != nil {
		book.Author = *input.Author
	}
	if input.Genre != nil {
		book.Genre = *input.Genre
	}
	if input.PublicationYear != nil {
		book.PublicationYear = *input.PublicationYear
	}

	if err := s.repo.Update(ctx, book); err != nil {
		return nil, fmt.Errorf("updating book %d: %w", id, err)
	}
	return book, nil
}

func (s *BookService) Delete(ctx context.Context, p *domain.Principal, id int64) error {
	book, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if d := policy.Authorize(p, book, policy.ActionDelete); !d.Allowed {
		s.logger.Info().Int64("book_id", id).Int64("user_id", p.ID).Str("reason", d.Reason).Msg("delete denied")
		return fmt.Errorf("%w: %s", domain.ErrForbidden, d.Reason)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting book %d: %w", id, err)
	}
	s.logger.Info().Int64("book_id", id).Int64("user_id", p.ID).Msg("book deleted")
	return nil
}

// MyBooks returns every book owned by the principal, unpaginated.
func (s *BookService) MyBooks(ctx context.Context, p *domain.Principal) ([]*domain.Book, error) {
	if d := policy.Authorize(p, nil, policy.ActionList); !d.Allowed {
		return nil, fmt.Errorf("%w: %s", domain.ErrForbidden, d.Reason)
	}

	items, _, err := s.repo.List(ctx, ports.ListBooksFilter{UserID: p.ID})
	if err != nil {
		return nil, fmt.Errorf("listing own books: %w", err)
	}
	return items, nil
}

func (s *BookService) Statistics(ctx context.Context, p *domain.Principal) (*ports.Statistics, error) {
	if d := policy.Authorize(p, nil, policy.ActionList); !d.Allowed {
		return nil, fmt.Errorf("%w: %s", domain.ErrForbidden, d.Reason)
	}

	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("collecting statistics: %w", err)
	}
	mine, err := s.repo.CountByUser(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("counting own books: %w", err)
	}

	return &ports.Statistics{
		TotalBooks:   stats.TotalBooks,
		TotalAuthors: stats.TotalAuthors,
		TotalGenres:  stats.TotalGenres,
		MyBooksCount: mine,
	}, nil
}
