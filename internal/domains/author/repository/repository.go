package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"library-backend/internal/domains/author/model"
	"library-backend/internal/infrastructure/database"
	"library-backend/internal/shared"
	"library-backend/internal/shared/errs"
)

const authorColumns = `id, name, birth_date, date_of_death`

// sqlRepository implements RepositoryInterface on database/sql.
// The same queries run on Postgres and SQLite; placeholders are rebound per dialect.
type sqlRepository struct {
	dialect database.Dialect
}

// NewRepository creates a new author repository for the given dialect
func NewRepository(dialect database.Dialect) RepositoryInterface {
	return &sqlRepository{dialect: dialect}
}

func (r *sqlRepository) rebind(query string) string {
	return database.Rebind(r.dialect, query)
}

// Create inserts new author with generated ID
func (r *sqlRepository) Create(ctx context.Context, q database.Querier, a *model.Author) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}

	query := r.rebind(`
		INSERT INTO authors (id, name, birth_date, date_of_death, created_at)
		VALUES (?, ?, ?, ?, ?)
	`)

	if _, err := q.ExecContext(ctx, query, a.ID, a.Name, a.BirthDate, a.DateOfDeath, time.Now().UnixNano()); err != nil {
		return errs.Persistence("create author", err)
	}
	return nil
}

// GetByID retrieves author by UUID
func (r *sqlRepository) GetByID(ctx context.Context, q database.Querier, id uuid.UUID) (*model.Author, error) {
	query := r.rebind(`SELECT ` + authorColumns + ` FROM authors WHERE id = ?`)

	a, err := scanAuthor(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrAuthorNotFound
		}
		return nil, errs.Persistence("get author by id", err)
	}
	return a, nil
}

// GetByName retrieves author by exact name
func (r *sqlRepository) GetByName(ctx context.Context, q database.Querier, name string) (*model.Author, error) {
	query := r.rebind(`
		SELECT ` + authorColumns + `
		FROM authors
		WHERE name = ?
		ORDER BY created_at
		LIMIT 1
	`)

	a, err := scanAuthor(q.QueryRowContext(ctx, query, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrAuthorNotFound
		}
		return nil, errs.Persistence("get author by name", err)
	}
	return a, nil
}

// GetOrCreate looks the author up by name and inserts it on first miss.
// Inside a transaction the new ID is usable immediately, so the caller can
// insert dependent rows and commit them together.
//
// On Postgres the lookup holds a transaction-scoped advisory lock on the name,
// so concurrent callers for one author run one after another until commit.
// SQLite needs no lock: its single connection already serialises transactions.
func (r *sqlRepository) GetOrCreate(ctx context.Context, q database.Querier, name string, birth, death *shared.Date) (*model.Author, bool, error) {
	if r.dialect == database.DialectPostgres {
		if _, err := q.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, "authors:"+name); err != nil {
			return nil, false, errs.Persistence("lock author name", err)
		}
	}

	existing, err := r.GetByName(ctx, q, name)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, model.ErrAuthorNotFound) {
		return nil, false, err
	}

	a := &model.Author{Name: name, BirthDate: birth, DateOfDeath: death}
	if err := r.Create(ctx, q, a); err != nil {
		return nil, false, err
	}
	return a, true, nil
}

// List retrieves all authors ordered by name
func (r *sqlRepository) List(ctx context.Context, q database.Querier) ([]model.Author, error) {
	query := `SELECT ` + authorColumns + ` FROM authors ORDER BY name ASC, created_at ASC`

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, errs.Persistence("list authors", err)
	}
	defer rows.Close()

	authors := make([]model.Author, 0)
	for rows.Next() {
		a, err := scanAuthor(rows)
		if err != nil {
			return nil, errs.Persistence("scan author", err)
		}
		authors = append(authors, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Persistence("iterate authors", err)
	}
	return authors, nil
}

// Delete removes author by ID
func (r *sqlRepository) Delete(ctx context.Context, q database.Querier, id uuid.UUID) error {
	result, err := q.ExecContext(ctx, r.rebind(`DELETE FROM authors WHERE id = ?`), id)
	if err != nil {
		return errs.Persistence("delete author", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return errs.Persistence("delete author", err)
	}
	if affected == 0 {
		return model.ErrAuthorNotFound
	}
	return nil
}

// CountBooks returns number of books referencing the author
func (r *sqlRepository) CountBooks(ctx context.Context, q database.Querier, id uuid.UUID) (int, error) {
	var count int
	err := q.QueryRowContext(ctx, r.rebind(`SELECT COUNT(*) FROM books WHERE author_id = ?`), id).Scan(&count)
	if err != nil {
		return 0, errs.Persistence("count author books", fmt.Errorf("author %s: %w", id, err))
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAuthor(row rowScanner) (*model.Author, error) {
	var a model.Author
	if err := row.Scan(&a.ID, &a.Name, &a.BirthDate, &a.DateOfDeath); err != nil {
		return nil, err
	}
	return &a, nil
}
