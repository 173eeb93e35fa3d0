package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/readshelf/library-system/internal/books/core/domain"
	"github.com/readshelf/library-system/internal/books/core/ports"
)

// BookHandler handles the book CRUD and collection endpoints.
type BookHandler struct {
	service  ports.BookService
	resolver ports.IdentityResolver
	logger   zerolog.Logger
}

func NewBookHandler(service ports.BookService, resolver ports.IdentityResolver, logger zerolog.Logger) *BookHandler {
	return &BookHandler{service: service, resolver: resolver, logger: logger}
}

// List returns a filtered, ordered, paginated page of books.
//
// @Summary      List books
// @Tags         books
// @Produce      json
// @Security     BearerAuth
// @Param        author            query     string  false  "Exact author match"
// @Param        genre             query     string  false  "Exact genre match"
// @Param        publication_year  query     int     false  "Exact year match"
// @Param        year_from         query     int     false  "Minimum publication year"
// @Param        year_to           query     int     false  "Maximum publication year"
// @Param        search            query     string  false  "Substring match on title or author"
// @Param        ordering          query     string  false  "Sort field, '-' prefix for descending"
// @Param        page              query     int     false  "Page number"
// @Param        page_size         query     int     false  "Rows per page"
// @Success      200  {object}  bookListResponse
// @Failure      401  {object}  map[string]string
// @Router       /api/books/ [get]
func (h *BookHandler) List(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var q listBooksQuery
	if err := c.Bind(&q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query parameters")
	}

	res, err := h.service.List(c.Request().Context(), p, ports.ListBooksInput{
		Author:          q.Author,
		Genre:           q.Genre,
		PublicationYear: q.PublicationYear,
		YearFrom:        q.YearFrom,
		YearTo:          q.YearTo,
		Search:          q.Search,
		Ordering:        q.Ordering,
		Page:            q.Page,
		PageSize:        q.PageSize,
	})
	if err != nil {
		return err
	}

	items := make([]bookResponse, 0, len(res.Items))
	for _, b := range res.Items {
		items = append(items, toBookResponse(b))
	}

	return c.JSON(http.StatusOK, bookListResponse{
		Data: items,
		Pagination: paginationResponse{
			Page:       res.Page,
			PageSize:   res.PageSize,
			Total:      res.Total,
			TotalPages: res.TotalPages,
		},
	})
}

// Create stores a new book owned by the caller.
//
// @Summary      Create a book
// @Tags         books
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createBookRequest  true  "Book details"
// @Success      201   {object}  bookResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/books/ [post]
func (h *BookHandler) Create(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req createBookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	book, err := h.service.Create(c.Request().Context(), p, ports.CreateBookInput{
		Title:           req.Title,
		Author:          req.Author,
		Genre:           req.Genre,
		PublicationYear: req.PublicationYear,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, toBookResponse(book))
}

// Get returns a single book.
//
// @Summary      Retrieve a book
// @Tags         books
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Book id"
// @Success      200  {object}  bookResponse
// @Failure      404  {object}  map[string]string
// @Router       /api/books/{id}/ [get]
func (h *BookHandler) Get(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	id, err := bookID(c)
	if err != nil {
		return err
	}

	book, err := h.service.Get(c.Request().Context(), p, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toBookResponse(book))
}

// Update applies a full or partial update to a book. Owner or staff only.
//
// @Summary      Update a book
// @Tags         books
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                true  "Book id"
// @Param        body  body      updateBookRequest  true  "Fields to change"
// @Success      200   {object}  bookResponse
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/books/{id}/ [put]
func (h *BookHandler) Update(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	id, err := bookID(c)
	if err != nil {
		return err
	}

	var req updateBookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	book, err := h.service.Update(c.Request().Context(), p, id, ports.UpdateBookInput{
		Title:           req.Title,
		Author:          req.Author,
		Genre:           req.Genre,
		PublicationYear: req.PublicationYear,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toBookResponse(book))
}

// Delete removes a book. Staff only.
//
// @Summary      Delete a book
// @Tags         books
// @Security     BearerAuth
// @Param        id  path  int  true  "Book id"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/books/{id}/ [delete]
func (h *BookHandler) Delete(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	id, err := bookID(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), p, id); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// MyBooks returns every book owned by the caller.
//
// @Summary      List the caller's own books
// @Tags         books
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  bookResponse
// @Router       /api/books/my_books/ [get]
func (h *BookHandler) MyBooks(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	books, err := h.service.MyBooks(c.Request().Context(), p)
	if err != nil {
		return err
	}

	items := make([]bookResponse, 0, len(books))
	for _, b := range books {
		items = append(items, toBookResponse(b))
	}
	return c.JSON(http.StatusOK, items)
}

// Statistics returns aggregate counters over the collection.
//
// @Summary      Collection statistics
// @Tags         books
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  statisticsResponse
// @Router       /api/books/statistics/ [get]
func (h *BookHandler) Statistics(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	stats, err := h.service.Statistics(c.Request().Context(), p)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, statisticsResponse{
		TotalBooks:   stats.TotalBooks,
		TotalAuthors: stats.TotalAuthors,
		TotalGenres:  stats.TotalGenres,
		MyBooksCount: stats.MyBooksCount,
	})
}

// WithUserInfo returns a book together with its owner's record fetched live
// from the auth service. The owner lookup forwards the caller's own bearer
// and degrades to a null owner with an explanation instead of failing the
// whole request.
//
// @Summary      Retrieve a book with its owner's details
// @Tags         books
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Book id"
// @Success      200  {object}  bookWithOwnerResponse
// @Failure      404  {object}  map[string]string
// @Router       /api/books/{id}/with_user_info/ [get]
func (h *BookHandler) WithUserInfo(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	raw, err := ctxRawToken(c)
	if err != nil {
		return err
	}
	id, err := bookID(c)
	if err != nil {
		return err
	}

	book, err := h.service.Get(c.Request().Context(), p, id)
	if err != nil {
		return err
	}

	resp := bookWithOwnerResponse{bookResponse: toBookResponse(book)}

	owner, err := h.resolver.FetchUser(c.Request().Context(), book.UserID, raw)
	if err != nil {
		h.logger.Warn().Err(err).Int64("book_id", id).Int64("owner_id", book.UserID).Msg("owner lookup failed")
		resp.OwnerError = "owner details unavailable"
	} else {
		resp.Owner = toOwnerResponse(owner)
	}

	return c.JSON(http.StatusOK, resp)
}

// bookID parses the path parameter. A non-numeric id cannot reference any
// book, so it renders as 404 rather than 400.
func bookID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, domain.ErrBookNotFound
	}
	return id, nil
}
