package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"library-backend/internal/domains/book/model"
	"library-backend/internal/infrastructure/database"
	"library-backend/internal/shared/errs"
)

const selectBooks = `
	SELECT b.id, b.title, b.short_description, b.publication_year, b.isbn,
	       b.author_id, b.rating, b.is_read, b.progress, COALESCE(a.name, '')
	FROM books b
	LEFT JOIN authors a ON a.id = b.author_id
`

type sqlRepository struct {
	dialect database.Dialect
}

// NewRepository creates a new book repository for the given dialect
func NewRepository(dialect database.Dialect) RepositoryInterface {
	return &sqlRepository{dialect: dialect}
}

func (r *sqlRepository) rebind(query string) string {
	return database.Rebind(r.dialect, query)
}

// Create inserts a book with a generated ID
func (r *sqlRepository) Create(ctx context.Context, q database.Querier, b *model.Book) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}

	query := r.rebind(`
		INSERT INTO books (id, title, short_description, publication_year, isbn,
		                   author_id, rating, is_read, progress, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)

	_, err := q.ExecContext(ctx, query,
		b.ID,
		b.Title,
		b.ShortDescription,
		b.PublicationYear,
		b.ISBN,
		b.AuthorID,
		b.Rating,
		b.IsRead,
		b.Progress,
		time.Now().UnixNano(),
	)
	if err != nil {
		return r.classify("create book", err)
	}
	return nil
}

// GetByID retrieves a book with its author's name
func (r *sqlRepository) GetByID(ctx context.Context, q database.Querier, id uuid.UUID) (*model.Book, error) {
	b, err := scanBook(q.QueryRowContext(ctx, r.rebind(selectBooks+` WHERE b.id = ?`), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrBookNotFound
		}
		return nil, errs.Persistence("get book by id", err)
	}
	return b, nil
}

// Update writes every mutable column of b
func (r *sqlRepository) Update(ctx context.Context, q database.Querier, b *model.Book) error {
	query := r.rebind(`
		UPDATE books
		SET title = ?, short_description = ?, author_id = ?, rating = ?, is_read = ?, progress = ?
		WHERE id = ?
	`)

	result, err := q.ExecContext(ctx, query,
		b.Title,
		b.ShortDescription,
		b.AuthorID,
		b.Rating,
		b.IsRead,
		b.Progress,
		b.ID,
	)
	if err != nil {
		return r.classify("update book", err)
	}
	return expectOne(result, "update book")
}

// UpdateRating stores rating without range checks
func (r *sqlRepository) UpdateRating(ctx context.Context, q database.Querier, id uuid.UUID, rating int) error {
	result, err := q.ExecContext(ctx, r.rebind(`UPDATE books SET rating = ? WHERE id = ?`), rating, id)
	if err != nil {
		return errs.Persistence("rate book", err)
	}
	return expectOne(result, "rate book")
}

// Delete removes a single book
func (r *sqlRepository) Delete(ctx context.Context, q database.Querier, id uuid.UUID) error {
	result, err := q.ExecContext(ctx, r.rebind(`DELETE FROM books WHERE id = ?`), id)
	if err != nil {
		return errs.Persistence("delete book", err)
	}
	return expectOne(result, "delete book")
}

// List builds the home page query from filter
func (r *sqlRepository) List(ctx context.Context, q database.Querier, filter model.BookFilter) ([]model.Book, error) {
	var (
		conditions []string
		args       []any
	)

	if search := strings.TrimSpace(filter.Search); search != "" {
		conditions = append(conditions, `LOWER(b.title) LIKE LOWER(?) ESCAPE '\'`)
		args = append(args, "%"+escapeLike(search)+"%")
	}
	if filter.AuthorID != nil {
		conditions = append(conditions, `b.author_id = ?`)
		args = append(args, *filter.AuthorID)
	}

	query := selectBooks
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}

	// Sort columns come from a fixed set, never from user input.
	switch filter.NormalizedSort() {
	case model.SortTitle:
		query += ` ORDER BY b.title ASC, b.created_at ASC`
	case model.SortAuthor:
		query += ` ORDER BY a.name ASC, b.created_at ASC`
	default:
		query += ` ORDER BY b.created_at ASC`
	}

	return r.query(ctx, q, "list books", r.rebind(query), args...)
}

// ListByAuthor returns an author's books in storage order
func (r *sqlRepository) ListByAuthor(ctx context.Context, q database.Querier, authorID uuid.UUID) ([]model.Book, error) {
	query := r.rebind(selectBooks + ` WHERE b.author_id = ? ORDER BY b.created_at ASC`)
	return r.query(ctx, q, "list books by author", query, authorID)
}

// ListTopRated returns books rated at least minRating, best first
func (r *sqlRepository) ListTopRated(ctx context.Context, q database.Querier, minRating int) ([]model.Book, error) {
	query := r.rebind(selectBooks + ` WHERE b.rating >= ? ORDER BY b.rating DESC, b.created_at ASC`)
	return r.query(ctx, q, "list top rated books", query, minRating)
}

// ExistsByTitleAndAuthor checks the (title, author) pair used to reject duplicates
func (r *sqlRepository) ExistsByTitleAndAuthor(ctx context.Context, q database.Querier, title string, authorID uuid.UUID) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx,
		r.rebind(`SELECT COUNT(*) FROM books WHERE title = ? AND author_id = ?`),
		title, authorID,
	).Scan(&n)
	if err != nil {
		return false, errs.Persistence("check book exists", err)
	}
	return n > 0, nil
}

// ExistsByISBN reports whether a non-empty isbn is already taken
func (r *sqlRepository) ExistsByISBN(ctx context.Context, q database.Querier, isbn string) (bool, error) {
	if isbn == "" {
		return false, nil
	}
	var n int
	if err := q.QueryRowContext(ctx, r.rebind(`SELECT COUNT(*) FROM books WHERE isbn = ?`), isbn).Scan(&n); err != nil {
		return false, errs.Persistence("check isbn exists", err)
	}
	return n > 0, nil
}

func (r *sqlRepository) query(ctx context.Context, q database.Querier, op, query string, args ...any) ([]model.Book, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errs.Persistence(op, err)
	}
	defer rows.Close()

	books := make([]model.Book, 0)
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, errs.Persistence(op, err)
		}
		books = append(books, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Persistence(op, err)
	}
	return books, nil
}

func (r *sqlRepository) classify(op string, err error) error {
	switch {
	case database.IsUniqueViolation(err):
		return model.ErrISBNAlreadyExists
	case database.IsForeignKeyViolation(err):
		return model.ErrAuthorNotFound
	default:
		return errs.Persistence(op, err)
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(row rowScanner) (*model.Book, error) {
	var b model.Book
	err := row.Scan(
		&b.ID,
		&b.Title,
		&b.ShortDescription,
		&b.PublicationYear,
		&b.ISBN,
		&b.AuthorID,
		&b.Rating,
		&b.IsRead,
		&b.Progress,
		&b.AuthorName,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func expectOne(result sql.Result, op string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return errs.Persistence(op, err)
	}
	if affected == 0 {
		return model.ErrBookNotFound
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
