package handler

import (
	"time"

	"github.com/readshelf/library-system/internal/books/core/domain"
)

// --- Request types ---

type createBookRequest struct {
	Title           string `json:"title"            validate:"required,min=1,max=300"`
	Author          string `json:"author"           validate:"required,min=1,max=200"`
	Genre           string `json:"genre"            validate:"omitempty,max=100"`
	PublicationYear int    `json:"publication_year" validate:"omitempty,gt=0,lte=2100"`
}

// updateBookRequest uses pointers so PATCH can distinguish "absent" from
// "set to empty". PUT reuses the same shape.
type updateBookRequest struct {
	Title           *string `json:"title"            validate:"omitempty,min=1,max=300"`
	Author          *string `json:"author"           validate:"omitempty,min=1,max=200"`
	Genre           *string `json:"genre"            validate:"omitempty,max=100"`
	PublicationYear *int    `json:"publication_year" validate:"omitempty,gt=0,lte=2100"`
}

// listBooksQuery captures the list endpoint's query string.
type listBooksQuery struct {
	Author          string `query:"author"`
	Genre           string `query:"genre"`
	PublicationYear int    `query:"publication_year"`
	YearFrom        int    `query:"year_from"`
	YearTo          int    `query:"year_to"`
	Search          string `query:"search"`
	Ordering        string `query:"ordering"`
	Page            int    `query:"page"`
	PageSize        int    `query:"page_size"`
}

// --- Response types ---

type bookResponse struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	Author          string `json:"author"`
	Genre           string `json:"genre,omitempty"`
	PublicationYear int    `json:"publication_year,omitempty"`
	UserID          int64  `json:"user_id"`
	CreatedAt       string `json:"created_at"`
}

type ownerResponse struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	IsStaff   bool   `json:"is_staff"`
}

// bookWithOwnerResponse augments a book with its owner's record fetched from
// the auth service. Owner is null when the lookup failed.
type bookWithOwnerResponse struct {
	bookResponse
	Owner      *ownerResponse `json:"owner"`
	OwnerError string         `json:"owner_error,omitempty"`
}

type paginationResponse struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

type bookListResponse struct {
	Data       []bookResponse     `json:"data"`
	Pagination paginationResponse `json:"pagination"`
}

type statisticsResponse struct {
	TotalBooks   int64 `json:"total_books"`
	TotalAuthors int64 `json:"total_authors"`
	TotalGenres  int64 `json:"total_genres"`
	MyBooksCount int64 `json:"my_books_count"`
}

func toBookResponse(b *domain.Book) bookResponse {
	return bookResponse{
		ID:              b.ID,
		Title:           b.Title,
		Author:          b.Author,
		Genre:           b.Genre,
		PublicationYear: b.PublicationYear,
		UserID:          b.UserID,
		CreatedAt:       b.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toOwnerResponse(u *domain.UserInfo) *ownerResponse {
	return &ownerResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		IsStaff:   u.IsStaff,
	}
}
