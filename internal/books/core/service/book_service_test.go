package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/readshelf/library-system/internal/books/core/domain"
	"github.com/readshelf/library-system/internal/books/core/ports"
)

type stubBookRepo struct {
	mu     sync.Mutex
	nextID int64
	books  map[int64]*domain.Book
}

func newStubBookRepo() *stubBookRepo {
	return &stubBookRepo{nextID: 1, books: make(map[int64]*domain.Book)}
}

func (r *stubBookRepo) Create(_ context.Context, book *domain.Book) (*domain.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := *book
	b.ID = r.nextID
	r.nextID++
	r.books[b.ID] = &b
	out := b
	return &out, nil
}

func (r *stubBookRepo) FindByID(_ context.Context, id int64) (*domain.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.books[id]
	if !ok {
		return nil, domain.ErrBookNotFound
	}
	out := *b
	return &out, nil
}

func (r *stubBookRepo) Update(_ context.Context, book *domain.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.books[book.ID]; !ok {
		return domain.ErrBookNotFound
	}
	b := *book
	r.books[b.ID] = &b
	return nil
}

func (r *stubBookRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.books[id]; !ok {
		return domain.ErrBookNotFound
	}
	delete(r.books, id)
	return nil
}

func (r *stubBookRepo) List(_ context.Context, filter ports.ListBooksFilter) ([]*domain.Book, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []*domain.Book
	for _, b := range r.books {
		if filter.UserID != 0 && b.UserID != filter.UserID {
			continue
		}
		if filter.Author != "" && b.Author != filter.Author {
			continue
		}
		if filter.Genre != "" && b.Genre != filter.Genre {
			continue
		}
		if filter.Search != "" &&
			!strings.Contains(strings.ToLower(b.Title), strings.ToLower(filter.Search)) &&
			!strings.Contains(strings.ToLower(b.Author), strings.ToLower(filter.Search)) {
			continue
		}
		out := *b
		matched = append(matched, &out)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	total := int64(len(matched))
	if filter.Limit <= 0 {
		return matched, total, nil
	}
	start := (filter.Page - 1) * filter.Limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *stubBookRepo) CountByUser(_ context.Context, userID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, b := range r.books {
		if b.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *stubBookRepo) Stats(_ context.Context) (ports.CollectionStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	authors := map[string]struct{}{}
	genres := map[string]struct{}{}
	for _, b := range r.books {
		authors[b.Author] = struct{}{}
		genres[b.Genre] = struct{}{}
	}
	return ports.CollectionStats{
		TotalBooks:   int64(len(r.books)),
		TotalAuthors: int64(len(authors)),
		TotalGenres:  int64(len(genres)),
	}, nil
}

func newTestBookService() (*BookService, *stubBookRepo) {
	repo := newStubBookRepo()
	return NewBookService(repo, zerolog.Nop()), repo
}

func member(id int64) *domain.Principal {
	return &domain.Principal{ID: id, Username: "member", Authenticated: true}
}

func staff(id int64) *domain.Principal {
	return &domain.Principal{ID: id, Username: "admin", IsStaff: true, Authenticated: true}
}

func seedBook(t *testing.T, svc *BookService, p *domain.Principal, title, author, genre string, year int) *domain.Book {
	t.Helper()
	b, err := svc.Create(context.Background(), p, ports.CreateBookInput{
		Title: title, Author: author, Genre: genre, PublicationYear: year,
	})
	if err != nil {
		t.Fatalf("seeding book %q: %v", title, err)
	}
	return b
}

func TestCreateStampsOwnerFromPrincipal(t *testing.T) {
	svc, _ := newTestBookService()

	b := seedBook(t, svc, member(42), "Dune", "Frank Herbert", "sci-fi", 1965)
	if b.UserID != 42 {
		t.Errorf("UserID = %d, want principal id 42", b.UserID)
	}
	if b.ID == 0 {
		t.Error("book id not allocated")
	}
}

func TestOwnerMayUpdate(t *testing.T) {
	svc, _ := newTestBookService()
	b := seedBook(t, svc, member(42), "Dune", "Frank Herbert", "sci-fi", 1965)

	title := "Dune Messiah"
	updated, err := svc.Update(context.Background(), member(42), b.ID, ports.UpdateBookInput{Title: &title})
	if err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if updated.Title != "Dune Messiah" {
		t.Errorf("Title = %q", updated.Title)
	}
	if updated.Author != "Frank Herbert" {
		t.Errorf("untouched field changed: Author = %q", updated.Author)
	}
}

func TestNonOwnerMayNotUpdate(t *testing.T) {
	svc, repo := newTestBookService()
	b := seedBook(t, svc, member(42), "Dune", "Frank Herbert", "sci-fi", 1965)

	title := "Hijacked"
	_, err := svc.Update(context.Background(), member(7), b.ID, ports.UpdateBookInput{Title: &title})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}

	stored, _ := repo.FindByID(context.Background(), b.ID)
	if stored.Title != "Dune" {
		t.Errorf("denied update still persisted: Title = %q", stored.Title)
	}
}

func TestStaffMayUpdateAnyBook(t *testing.T) {
	svc, _ := newTestBookService()
	b := seedBook(t, svc, member(42), "Dune", "Frank Herbert", "sci-fi", 1965)

	genre := "classic"
	if _, err := svc.Update(context.Background(), staff(1), b.ID, ports.UpdateBookInput{Genre: &genre}); err != nil {
		t.Errorf("staff update: %v", err)
	}
}

func TestOnlyStaffMayDelete(t *testing.T) {
	svc, repo := newTestBookService()
	b := seedBook(t, svc, member(42), "Dune", "Frank Herbert", "sci-fi", 1965)

	if err := svc.Delete(context.Background(), member(42), b.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("owner delete err = %v, want ErrForbidden", err)
	}
	if _, err := repo.FindByID(context.Background(), b.ID); err != nil {
		t.Fatal("book removed despite denied delete")
	}

	if err := svc.Delete(context.Background(), staff(1), b.ID); err != nil {
		t.Fatalf("staff delete: %v", err)
	}
	if _, err := repo.FindByID(context.Background(), b.ID); !errors.Is(err, domain.ErrBookNotFound) {
		t.Errorf("err = %v, want ErrBookNotFound after delete", err)
	}
}

func TestUpdateMissingBook(t *testing.T) {
	svc, _ := newTestBookService()

	title := "Ghost"
	_, err := svc.Update(context.Background(), member(42), 999, ports.UpdateBookInput{Title: &title})
	if !errors.Is(err, domain.ErrBookNotFound) {
		t.Errorf("err = %v, want ErrBookNotFound", err)
	}
}

func TestListPaginationDefaults(t *testing.T) {
	svc, _ := newTestBookService()
	for i := 0; i < 25; i++ {
		seedBook(t, svc, member(42), "Book", "Author", "genre", 2000+i)
	}

	res, err := svc.List(context.Background(), member(7), ports.ListBooksInput{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if res.Page != 1 || res.PageSize != defaultPageSize {
		t.Errorf("page = %d size = %d, want defaults", res.Page, res.PageSize)
	}
	if len(res.Items) != defaultPageSize {
		t.Errorf("len(items) = %d, want %d", len(res.Items), defaultPageSize)
	}
	if res.Total != 25 || res.TotalPages != 2 {
		t.Errorf("total = %d pages = %d", res.Total, res.TotalPages)
	}
}

func TestListPageSizeCapped(t *testing.T) {
	svc, _ := newTestBookService()

	res, err := svc.List(context.Background(), member(7), ports.ListBooksInput{PageSize: 5000})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if res.PageSize != maxPageSize {
		t.Errorf("page size = %d, want cap %d", res.PageSize, maxPageSize)
	}
}

func TestListFilterByAuthor(t *testing.T) {
	svc, _ := newTestBookService()
	seedBook(t, svc, member(42), "Dune", "Frank Herbert", "sci-fi", 1965)
	seedBook(t, svc, member(42), "Neuromancer", "William Gibson", "sci-fi", 1984)

	res, err := svc.List(context.Background(), member(7), ports.ListBooksInput{Author: "Frank Herbert"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(res.Items) != 1 || res.Items[0].Title != "Dune" {
		t.Errorf("filtered items = %+v", res.Items)
	}
}

func TestMyBooksScopedToPrincipal(t *testing.T) {
	svc, _ := newTestBookService()
	seedBook(t, svc, member(42), "Dune", "Frank Herbert", "sci-fi", 1965)
	seedBook(t, svc, member(42), "Neuromancer", "William Gibson", "sci-fi", 1984)
	seedBook(t, svc, member(7), "Emma", "Jane Austen", "romance", 1815)

	mine, err := svc.MyBooks(context.Background(), member(42))
	if err != nil {
		t.Fatalf("MyBooks: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("len = %d, want 2", len(mine))
	}
	for _, b := range mine {
		if b.UserID != 42 {
			t.Errorf("foreign book in my_books: %+v", b)
		}
	}
}

func TestMyBooksNotTruncatedForLargeCollections(t *testing.T) {
	svc, _ := newTestBookService()
	for i := 0; i < 120; i++ {
		seedBook(t, svc, member(42), "Book", "Author", "genre", 1900+i)
	}

	mine, err := svc.MyBooks(context.Background(), member(42))
	if err != nil {
		t.Fatalf("MyBooks: %v", err)
	}
	if len(mine) != 120 {
		t.Errorf("len = %d, want all 120 owned books", len(mine))
	}

	stats, err := svc.Statistics(context.Background(), member(42))
	if err != nil {
		t.Fatalf("Statistics: %v", err)
	}
	if int64(len(mine)) != stats.MyBooksCount {
		t.Errorf("my_books returned %d books but MyBooksCount = %d", len(mine), stats.MyBooksCount)
	}
}

func TestStatistics(t *testing.T) {
	svc, _ := newTestBookService()
	seedBook(t, svc, member(42), "Dune", "Frank Herbert", "sci-fi", 1965)
	seedBook(t, svc, member(42), "Dune Messiah", "Frank Herbert", "sci-fi", 1969)
	seedBook(t, svc, member(7), "Emma", "Jane Austen", "romance", 1815)

	stats, err := svc.Statistics(context.Background(), member(42))
	if err != nil {
		t.Fatalf("Statistics: %v", err)
	}
	if stats.TotalBooks != 3 || stats.TotalAuthors != 2 || stats.TotalGenres != 2 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.MyBooksCount != 2 {
		t.Errorf("MyBooksCount = %d, want 2", stats.MyBooksCount)
	}
}

func TestUnauthenticatedPrincipalDenied(t *testing.T) {
	svc, _ := newTestBookService()

	_, err := svc.Create(context.Background(), &domain.Principal{ID: 42}, ports.CreateBookInput{Title: "x"})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("err = %v, want ErrForbidden", err)
	}
}
