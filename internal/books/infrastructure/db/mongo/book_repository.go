package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/readshelf/library-system/internal/books/core/domain"
	"github.com/readshelf/library-system/internal/books/core/ports"
)

const (
	booksCollection    = "books"
	countersCollection = "counters"
	bookCounterKey     = "book_id"
)

// orderableFields whitelists the sort keys accepted from the query string.
var orderableFields = map[string]string{
	"title":            "title",
	"author":           "author",
	"publication_year": "publication_year",
	"created_at":       "created_at",
}

// BookRepository persists book records. Ids are sequential integers allocated
// from a counters collection, matching the user ids minted by the auth
// service.
type BookRepository struct {
	books    *mongo.Collection
	counters *mongo.Collection
}

func NewBookRepository(db *mongo.Database) *BookRepository {
	return &BookRepository{
		books:    db.Collection(booksCollection),
		counters: db.Collection(countersCollection),
	}
}

type bookDoc struct {
	ID              int64     `bson:"_id"`
	Title           string    `bson:"title"`
	Author          string    `bson:"author"`
	Genre           string    `bson:"genre,omitempty"`
	PublicationYear int       `bson:"publication_year,omitempty"`
	UserID          int64     `bson:"user_id"`
	CreatedAt       time.Time `bson:"created_at"`
}

func (r *BookRepository) Create(ctx context.Context, book *domain.Book) (*domain.Book, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := r.nextSequence(ctx)
	if err != nil {
		return nil, err
	}

	doc := toDoc(book)
	doc.ID = id

	if _, err := r.books.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert book: %w", err)
	}

	created := fromDoc(doc)
	return &created, nil
}

func (r *BookRepository) FindByID(ctx context.Context, id int64) (*domain.Book, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc bookDoc
	if err := r.books.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrBookNotFound
		}
		return nil, fmt.Errorf("find book: %w", err)
	}

	book := fromDoc(doc)
	return &book, nil
}

func (r *BookRepository) Update(ctx context.Context, book *domain.Book) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toDoc(book)
	doc.ID = book.ID

	res, err := r.books.ReplaceOne(ctx, bson.M{"_id": book.ID}, doc)
	if err != nil {
		return fmt.Errorf("update book: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrBookNotFound
	}
	return nil
}

func (r *BookRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.books.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrBookNotFound
	}
	return nil
}

func (r *BookRepository) List(ctx context.Context, filter ports.ListBooksFilter) ([]*domain.Book, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := buildFilter(filter)

	total, err := r.books.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count books: %w", err)
	}

	opts := options.Find().SetSort(buildSort(filter.Ordering))
	if filter.Limit > 0 {
		opts.SetSkip(int64((filter.Page - 1) * filter.Limit)).SetLimit(int64(filter.Limit))
	}

	cursor, err := r.books.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list books: %w", err)
	}
	defer cursor.Close(ctx)

	var books []*domain.Book
	for cursor.Next(ctx) {
		var doc bookDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, 0, fmt.Errorf("decode book: %w", err)
		}
		book := fromDoc(doc)
		books = append(books, &book)
	}
	if err := cursor.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate books: %w", err)
	}

	return books, total, nil
}

func (r *BookRepository) CountByUser(ctx context.Context, userID int64) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.books.CountDocuments(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, fmt.Errorf("count books by user: %w", err)
	}
	return n, nil
}

func (r *BookRepository) Stats(ctx context.Context) (ports.CollectionStats, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	total, err := r.books.CountDocuments(ctx, bson.M{})
	if err != nil {
		return ports.CollectionStats{}, fmt.Errorf("count books: %w", err)
	}

	authors, err := r.books.Distinct(ctx, "author", bson.M{})
	if err != nil {
		return ports.CollectionStats{}, fmt.Errorf("distinct authors: %w", err)
	}
	genres, err := r.books.Distinct(ctx, "genre", bson.M{})
	if err != nil {
		return ports.CollectionStats{}, fmt.Errorf("distinct genres: %w", err)
	}

	return ports.CollectionStats{
		TotalBooks:   total,
		TotalAuthors: int64(len(authors)),
		TotalGenres:  int64(len(genres)),
	}, nil
}

// EnsureIndexes creates the indexes backing ownership lookups and filters.
func (r *BookRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
		{Keys: bson.D{{Key: "author", Value: 1}}},
		{Keys: bson.D{{Key: "genre", Value: 1}}},
	}

	_, err := r.books.Indexes().CreateMany(ctx, indexes)
	return err
}

func (r *BookRepository) nextSequence(ctx context.Context) (int64, error) {
	var out struct {
		Seq int64 `bson:"seq"`
	}
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": bookCounterKey},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&out)
	if err != nil {
		return 0, fmt.Errorf("allocate book id: %w", err)
	}
	return out.Seq, nil
}

func buildFilter(f ports.ListBooksFilter) bson.M {
	query := bson.M{}
	if f.UserID != 0 {
		query["user_id"] = f.UserID
	}
	if f.Author != "" {
		query["author"] = f.Author
	}
	if f.Genre != "" {
		query["genre"] = f.Genre
	}
	if f.PublicationYear > 0 {
		query["publication_year"] = f.PublicationYear
	} else {
		yearRange := bson.M{}
		if f.YearFrom > 0 {
			yearRange["$gte"] = f.YearFrom
		}
		if f.YearTo > 0 {
			yearRange["$lte"] = f.YearTo
		}
		if len(yearRange) > 0 {
			query["publication_year"] = yearRange
		}
	}
	if f.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"author": pattern},
		}
	}
	return query
}

// buildSort maps the ordering parameter to a Mongo sort document. An unknown
// field falls back to newest-first rather than erroring.
func buildSort(ordering string) bson.D {
	desc := false
	if len(ordering) > 0 && ordering[0] == '-' {
		desc = true
		ordering = ordering[1:]
	}

	field, ok := orderableFields[ordering]
	if !ok {
		return bson.D{{Key: "created_at", Value: -1}}
	}

	dir := 1
	if desc {
		dir = -1
	}
	return bson.D{{Key: field, Value: dir}}
}

func toDoc(b *domain.Book) bookDoc {
	return bookDoc{
		ID:              b.ID,
		Title:           b.Title,
		Author:          b.Author,
		Genre:           b.Genre,
		PublicationYear: b.PublicationYear,
		UserID:          b.UserID,
		CreatedAt:       b.CreatedAt,
	}
}

func fromDoc(d bookDoc) domain.Book {
	return domain.Book{
		ID:              d.ID,
		Title:           d.Title,
		Author:          d.Author,
		Genre:           d.Genre,
		PublicationYear: d.PublicationYear,
		UserID:          d.UserID,
		CreatedAt:       d.CreatedAt,
	}
}
