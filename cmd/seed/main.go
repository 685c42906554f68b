package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	authorModel "library-backend/internal/domains/author/model"
	authorRepo "library-backend/internal/domains/author/repository"
	bookModel "library-backend/internal/domains/book/model"
	bookRepo "library-backend/internal/domains/book/repository"
	"library-backend/internal/infrastructure/database"
	"library-backend/internal/shared"
	txutil "library-backend/pkg/database"
	"library-backend/pkg/logger"
)

// CLI is the seed command line.
type CLI struct {
	DatabaseURL string `help:"Database URL (sqlite://path or postgres://...)" env:"DATABASE_URL" default:"sqlite://data/library.sqlite"`
	Reset       bool   `help:"Drop and recreate the schema before seeding" default:"true" negatable:""`
	LogLevel    string `help:"Log level" env:"LOG_LEVEL" default:"info"`
}

type seedBook struct {
	isbn  string
	title string
	year  int
}

type seedAuthor struct {
	name  string
	birth shared.Date
	books []seedBook
}

var catalog = []seedAuthor{
	{
		name:  "J.K. Rowling",
		birth: shared.NewDate(1965, time.July, 31),
		books: []seedBook{
			{"9780439554930", "Harry Potter and the Sorcerer's Stone", 1997},
			{"9780439064873", "Harry Potter and the Chamber of Secrets", 1998},
			{"9780439136365", "Harry Potter and the Prisoner of Azkaban", 1999},
			{"9780439139601", "Harry Potter and the Goblet of Fire", 2000},
			{"9780439358071", "Harry Potter and the Order of the Phoenix", 2003},
			{"9780439785969", "Harry Potter and the Half-Blood Prince", 2005},
			{"9780545010221", "Harry Potter and the Deathly Hallows", 2007},
		},
	},
	{
		name:  "George R. R. Martin",
		birth: shared.NewDate(1948, time.September, 20),
		books: []seedBook{
			{"9780553103540", "A Game of Thrones", 1996},
			{"9780553108033", "A Clash of Kings", 1998},
			{"9780553106633", "A Storm of Swords", 2000},
			{"9780553801477", "A Feast for Crows", 2005},
			{"9780553801507", "A Dance with Dragons", 2011},
		},
	},
}

func main() {
	_ = godotenv.Load()

	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("seed"),
		kong.Description("Populate the library database with sample authors and books."),
		kong.UsageOnError(),
	)

	logger.Init("development", cli.LogLevel)

	if err := run(context.Background(), cli); err != nil {
		log.Error().Err(err).Msg("❌ Seeding failed")
		kctx.Exit(1)
	}
}

func run(ctx context.Context, cli CLI) error {
	db, err := database.Open(ctx, database.DBConfig{
		URL:          cli.DatabaseURL,
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		MaxRetries:   3,
		RetryDelay:   time.Second,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	if cli.Reset {
		err = db.Reset(ctx)
	} else {
		err = db.Migrate(ctx)
	}
	if err != nil {
		return err
	}

	authors, books, err := Seed(ctx, db)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "📚 %d authors and %d books successfully added to the database.\n", authors, books)
	return nil
}

// Seed inserts the sample catalog in one transaction.
func Seed(ctx context.Context, db *database.DB) (int, int, error) {
	authors := authorRepo.NewRepository(db.Dialect)
	books := bookRepo.NewRepository(db.Dialect)

	var authorCount, bookCount int
	err := txutil.WithTransaction(ctx, db.SQL, func(tx *sql.Tx) error {
		for _, sa := range catalog {
			birth := sa.birth
			a := &authorModel.Author{Name: sa.name, BirthDate: &birth}
			if err := authors.Create(ctx, tx, a); err != nil {
				return err
			}
			authorCount++

			for _, sb := range sa.books {
				b := &bookModel.Book{
					ISBN:            sb.isbn,
					Title:           sb.title,
					PublicationYear: sb.year,
					AuthorID:        uuid.NullUUID{UUID: a.ID, Valid: true},
				}
				if err := books.Create(ctx, tx, b); err != nil {
					return fmt.Errorf("seed %q: %w", sb.title, err)
				}
				bookCount++
			}
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return authorCount, bookCount, nil
}
