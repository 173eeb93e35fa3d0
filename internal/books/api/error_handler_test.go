package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/readshelf/library-system/internal/books/api/handler"
	"github.com/readshelf/library-system/internal/books/api/middleware"
	"github.com/readshelf/library-system/internal/books/core/domain"
	"github.com/readshelf/library-system/internal/books/core/ports"
	"github.com/readshelf/library-system/internal/pkg/validation"
)

func TestResolveErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"invalid credential", domain.ErrInvalidCredential, http.StatusUnauthorized},
		{"subject missing upstream", domain.ErrUserNotFound, http.StatusUnauthorized},
		{"upstream timeout", domain.ErrUpstreamTimeout, http.StatusServiceUnavailable},
		{"upstream unreachable", domain.ErrUpstreamUnavailable, http.StatusServiceUnavailable},
		{"upstream bad status", &domain.UpstreamStatusError{Status: 500}, http.StatusServiceUnavailable},
		{"book not found", domain.ErrBookNotFound, http.StatusNotFound},
		{"forbidden", fmt.Errorf("%w: only staff may delete a book", domain.ErrForbidden), http.StatusForbidden},
		{"echo error passthrough", echo.NewHTTPError(http.StatusBadRequest, "bad"), http.StatusBadRequest},
		{"unexpected error", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	e := echo.New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/books/", nil)
			c := e.NewContext(req, httptest.NewRecorder())

			code, _ := resolveError(tt.err, zerolog.Nop(), c)
			if code != tt.wantCode {
				t.Errorf("resolveError(%v) = %d, want %d", tt.err, code, tt.wantCode)
			}
		})
	}
}

// A client must not be able to tell a bad token from a deleted user: both
// render the same body.
func TestCredentialErrorsIndistinguishable(t *testing.T) {
	e := echo.New()

	render := func(err error) string {
		req := httptest.NewRequest(http.MethodGet, "/api/books/", nil)
		rec := httptest.NewRecorder()
		NewHTTPErrorHandler(zerolog.Nop())(err, e.NewContext(req, rec))
		return rec.Body.String()
	}

	if a, b := render(domain.ErrInvalidCredential), render(domain.ErrUserNotFound); a != b {
		t.Errorf("bodies differ: %q vs %q", a, b)
	}
}

type fixedResolver struct {
	principal *domain.Principal
	err       error
}

func (r *fixedResolver) Resolve(context.Context, string) (*domain.Principal, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.principal, nil
}

func (r *fixedResolver) FetchUser(context.Context, int64, string) (*domain.UserInfo, error) {
	return nil, domain.ErrUserNotFound
}

type fixedService struct {
	book *domain.Book
	err  error
}

func (s *fixedService) List(context.Context, *domain.Principal, ports.ListBooksInput) (*ports.ListBooksResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &ports.ListBooksResult{Items: []*domain.Book{s.book}, Total: 1, Page: 1, PageSize: 20, TotalPages: 1}, nil
}

func (s *fixedService) Create(context.Context, *domain.Principal, ports.CreateBookInput) (*domain.Book, error) {
	return s.book, s.err
}

func (s *fixedService) Get(context.Context, *domain.Principal, int64) (*domain.Book, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.book, nil
}

func (s *fixedService) Update(context.Context, *domain.Principal, int64, ports.UpdateBookInput) (*domain.Book, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.book, nil
}

func (s *fixedService) Delete(context.Context, *domain.Principal, int64) error {
	return s.err
}

func (s *fixedService) MyBooks(context.Context, *domain.Principal) ([]*domain.Book, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []*domain.Book{s.book}, nil
}

func (s *fixedService) Statistics(context.Context, *domain.Principal) (*ports.Statistics, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &ports.Statistics{TotalBooks: 1}, nil
}

func newTestServer(svc ports.BookService, resolver ports.IdentityResolver) *echo.Echo {
	e := echo.New()
	e.Validator = validation.New()
	e.HTTPErrorHandler = NewHTTPErrorHandler(zerolog.Nop())

	h := handler.NewBookHandler(svc, resolver, zerolog.Nop())
	g := e.Group("/api/books", middleware.Auth(resolver))
	g.GET("/", h.List)
	g.GET("/:id/", h.Get)
	g.DELETE("/:id/", h.Delete)
	g.GET("/:id/with_user_info/", h.WithUserInfo)
	return e
}

func TestRequestWithUnreachableAuthService(t *testing.T) {
	e := newTestServer(
		&fixedService{},
		&fixedResolver{err: domain.ErrUpstreamUnavailable},
	)

	req := httptest.NewRequest(http.MethodGet, "/api/books/", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestDeniedDeleteRenders403(t *testing.T) {
	e := newTestServer(
		&fixedService{err: fmt.Errorf("%w: only staff may delete a book", domain.ErrForbidden)},
		&fixedResolver{principal: &domain.Principal{ID: 42, Authenticated: true}},
	)

	req := httptest.NewRequest(http.MethodDelete, "/api/books/1/", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestWithUserInfoDegradesWhenOwnerLookupFails(t *testing.T) {
	book := &domain.Book{ID: 1, Title: "Dune", Author: "Frank Herbert", UserID: 9}
	e := newTestServer(
		&fixedService{book: book},
		&fixedResolver{principal: &domain.Principal{ID: 42, Authenticated: true}},
	)

	req := httptest.NewRequest(http.MethodGet, "/api/books/1/with_user_info/", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Title      string          `json:"title"`
		Owner      json.RawMessage `json:"owner"`
		OwnerError string          `json:"owner_error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if body.Title != "Dune" {
		t.Errorf("title = %q", body.Title)
	}
	if string(body.Owner) != "null" {
		t.Errorf("owner = %s, want null after failed lookup", body.Owner)
	}
	if body.OwnerError == "" {
		t.Error("owner_error missing")
	}
}
