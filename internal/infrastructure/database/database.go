package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	_ "modernc.org/sqlite"             // registers the "sqlite" driver
)

// Dialect identifies the SQL flavour behind a DB.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// DBConfig chứa các thông tin cấu hình để kết nối database
type DBConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
	ConnLifetime time.Duration

	// Retry Configuration
	MaxRetries int
	RetryDelay time.Duration
}

// DB wraps the connection pool together with its dialect.
type DB struct {
	SQL     *sql.DB
	Dialect Dialect
	dsn     string
}

// ParseURL resolves a DATABASE_URL into a dialect, driver name and DSN.
//
//	postgres://… / postgresql://…  → pgx
//	sqlite://path, file:…, a bare path or :memory: → modernc sqlite with foreign keys on
func ParseURL(url string) (Dialect, string, string, error) {
	url = strings.TrimSpace(url)
	switch {
	case url == "":
		return "", "", "", fmt.Errorf("database url is empty")
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return DialectPostgres, "pgx", url, nil
	}

	path := strings.TrimPrefix(url, "sqlite://")
	path = strings.TrimPrefix(path, "sqlite:")

	var dsn string
	switch {
	case path == ":memory:":
		dsn = "file::memory:"
	case strings.HasPrefix(path, "file:"):
		dsn = path
	default:
		dsn = "file:" + path
	}

	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	// SQLite ships with foreign key enforcement off.
	dsn += sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

	return DialectSQLite, "sqlite", dsn, nil
}

// Open opens and verifies a connection pool for cfg.URL.
func Open(ctx context.Context, cfg DBConfig) (*DB, error) {
	dialect, driver, dsn, err := ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	if dialect == DialectSQLite {
		if err := ensureSQLiteDir(dsn); err != nil {
			return nil, err
		}
	}

	sqlDB, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dialect, err)
	}

	if dialect == DialectSQLite {
		// One connection serialises writers and keeps an in-memory database alive.
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(cfg.ConnLifetime)
	}

	db := &DB{SQL: sqlDB, Dialect: dialect, dsn: dsn}
	if err := db.pingWithRetry(ctx, cfg); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	if dialect == DialectSQLite {
		if _, err := sqlDB.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("failed to enable sqlite foreign keys: %w", err)
		}
	}

	log.Info().Str("dialect", string(dialect)).Msg("[DATABASE] Connection established")
	return db, nil
}

// pingWithRetry thực hiện retry logic với exponential backoff
func (db *DB) pingWithRetry(ctx context.Context, cfg DBConfig) error {
	attempts := cfg.MaxRetries
	if attempts <= 0 {
		attempts = 1
	}
	delay := cfg.RetryDelay
	if delay <= 0 {
		delay = time.Second
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		lastErr = db.SQL.PingContext(pingCtx)
		cancel()
		if lastErr == nil {
			return nil
		}

		log.Warn().Err(lastErr).Int("attempt", attempt).Int("max", attempts).Msg("[DATABASE] Ping failed")

		if attempt < attempts {
			wait := delay * time.Duration(1<<uint(attempt-1))
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return fmt.Errorf("connection cancelled: %w", ctx.Err())
			}
		}
	}

	return fmt.Errorf("failed to connect after %d attempts: %w", attempts, lastErr)
}

// HealthCheck verifies the store is reachable.
func (db *DB) HealthCheck(ctx context.Context) error {
	if db == nil || db.SQL == nil {
		return fmt.Errorf("database is not initialized")
	}
	healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.SQL.PingContext(healthCtx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// Close releases the pool. Safe to call more than once.
func (db *DB) Close() error {
	if db == nil || db.SQL == nil {
		return nil
	}
	err := db.SQL.Close()
	db.SQL = nil
	return err
}

// Rebind rewrites '?' placeholders into the dialect's bind syntax.
// Question marks inside single-quoted literals are left alone.
func (db *DB) Rebind(query string) string {
	return Rebind(db.Dialect, query)
}

// Rebind is the dialect-explicit form of (*DB).Rebind.
func Rebind(dialect Dialect, query string) string {
	if dialect != DialectPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	inQuote := false
	for i := 0; i < len(query); i++ {
		ch := query[i]
		switch {
		case ch == '\'':
			inQuote = !inQuote
			b.WriteByte(ch)
		case ch == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(ch)
		}
	}
	return b.String()
}

func ensureSQLiteDir(dsn string) error {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.Index(path, "?"); i >= 0 {
		path = path[:i]
	}
	if path == "" || strings.HasPrefix(path, ":memory:") {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create sqlite directory %s: %w", dir, err)
	}
	return nil
}

// Querier is satisfied by both *sql.DB and *sql.Tx. Repositories accept it
// so the caller decides whether a statement runs inside a transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
