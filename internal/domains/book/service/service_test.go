package service

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authorModel "library-backend/internal/domains/author/model"
	authorRepo "library-backend/internal/domains/author/repository"
	"library-backend/internal/domains/book/model"
	"library-backend/internal/domains/book/repository"
	"library-backend/internal/infrastructure/database"
	"library-backend/internal/shared"
	"library-backend/internal/shared/errs"
	"library-backend/internal/testinfra"
)

type fixture struct {
	db      *database.DB
	svc     *bookService
	authors authorRepo.RepositoryInterface
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	return newFixtureOn(t, testinfra.NewSQLite(t))
}

func newFixtureOn(t *testing.T, db *database.DB) fixture {
	t.Helper()
	authors := authorRepo.NewRepository(db.Dialect)
	svc := NewBookService(db.SQL, repository.NewRepository(db.Dialect), authors).(*bookService)
	svc.now = func() time.Time { return time.Date(2025, 7, 10, 12, 0, 0, 0, time.UTC) }
	return fixture{db: db, svc: svc, authors: authors}
}

func (f fixture) author(t *testing.T, name string) *authorModel.Author {
	t.Helper()
	birth := shared.NewDate(1950, time.January, 1)
	a := &authorModel.Author{Name: name, BirthDate: &birth}
	require.NoError(t, f.authors.Create(context.Background(), f.db.SQL, a))
	return a
}

func (f fixture) book(t *testing.T, title string, authorID uuid.UUID, year int) *model.Book {
	t.Helper()
	b, err := f.svc.CreateBook(context.Background(), model.CreateBookRequest{
		Title:           title,
		AuthorID:        authorID.String(),
		PublicationYear: shared.FlexString(strconv.Itoa(year)),
	})
	require.NoError(t, err)
	return b
}

func titles(books []model.Book) []string {
	out := make([]string, 0, len(books))
	for _, b := range books {
		out = append(out, b.Title)
	}
	return out
}

func TestCreateBook_LookupReturnsDefaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.author(t, "Ursula K. Le Guin")

	created, err := f.svc.CreateBook(ctx, model.CreateBookRequest{
		Title:            "The Left Hand of Darkness",
		ShortDescription: "Gethen",
		PublicationYear:  "1969",
		ISBN:             "9780441478125",
		AuthorID:         a.ID.String(),
	})
	require.NoError(t, err)

	got, err := f.svc.GetBook(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "The Left Hand of Darkness", got.Title)
	assert.Equal(t, "Gethen", got.ShortDescription)
	assert.Equal(t, 1969, got.PublicationYear)
	assert.Equal(t, "9780441478125", got.ISBN)
	assert.Equal(t, a.ID, got.AuthorID.UUID)
	assert.Equal(t, "Ursula K. Le Guin", got.AuthorName)
	assert.Nil(t, got.Rating)
	assert.False(t, got.IsRead)
	assert.Zero(t, got.Progress)
}

func TestCreateBook_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.author(t, "Ursula K. Le Guin")

	_, err := f.svc.CreateBook(ctx, model.CreateBookRequest{Title: "X", PublicationYear: "2000"})
	assert.ErrorIs(t, err, model.ErrRequiredFields)

	_, err = f.svc.CreateBook(ctx, model.CreateBookRequest{Title: "X", AuthorID: a.ID.String(), PublicationYear: "2030"})
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = f.svc.CreateBook(ctx, model.CreateBookRequest{Title: "X", AuthorID: uuid.NewString(), PublicationYear: "2000"})
	assert.ErrorIs(t, err, model.ErrAuthorNotFound)

	_, err = f.svc.CreateBook(ctx, model.CreateBookRequest{Title: "A", AuthorID: a.ID.String(), PublicationYear: "2000", ISBN: "123"})
	require.NoError(t, err)
	_, err = f.svc.CreateBook(ctx, model.CreateBookRequest{Title: "B", AuthorID: a.ID.String(), PublicationYear: "2000", ISBN: "123"})
	assert.ErrorIs(t, err, model.ErrISBNAlreadyExists)
	assert.ErrorIs(t, err, errs.ErrConflict)

	result, err := f.svc.ListBooks(ctx, model.BookFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, titles(result.Books))
}

func TestRateAndEdit_ValidationDiverges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.book(t, "Dune", f.author(t, "Frank Herbert").ID, 1965)

	rating, err := f.svc.RateBook(ctx, b.ID, model.RateBookRequest{Rating: "42"})
	require.NoError(t, err)
	assert.Equal(t, 42, rating)

	got, err := f.svc.GetBook(ctx, b.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Rating)
	assert.Equal(t, 42, *got.Rating, "rate stores the raw value")

	tooHigh := shared.FlexString("42")
	edited, err := f.svc.EditBook(ctx, b.ID, model.EditBookRequest{Rating: &tooHigh})
	require.NoError(t, err)
	assert.Equal(t, model.MaxRating, *edited.Rating, "edit clamps")

	tooLow := shared.FlexString("-7")
	edited, err = f.svc.EditBook(ctx, b.ID, model.EditBookRequest{Rating: &tooLow})
	require.NoError(t, err)
	assert.Equal(t, model.MinRating, *edited.Rating)

	_, err = f.svc.RateBook(ctx, b.ID, model.RateBookRequest{Rating: "nine"})
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = f.svc.RateBook(ctx, uuid.New(), model.RateBookRequest{Rating: "5"})
	assert.ErrorIs(t, err, model.ErrBookNotFound)
}

func TestEditBook(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	herbert := f.author(t, "Frank Herbert")
	other := f.author(t, "Brian Herbert")
	b := f.book(t, "Dune", herbert.ID, 1965)

	title := "Dune Messiah"
	authorID := other.ID.String()
	progress := shared.FlexString("150")
	read := shared.FlexString("on")
	edited, err := f.svc.EditBook(ctx, b.ID, model.EditBookRequest{
		Title:    &title,
		AuthorID: &authorID,
		Progress: &progress,
		IsRead:   &read,
	})
	require.NoError(t, err)
	assert.Equal(t, "Dune Messiah", edited.Title)
	assert.Equal(t, "Brian Herbert", edited.AuthorName)
	assert.Equal(t, model.MaxProgress, edited.Progress)
	assert.True(t, edited.IsRead)
	assert.Equal(t, 1965, edited.PublicationYear)

	missing := uuid.NewString()
	_, err = f.svc.EditBook(ctx, b.ID, model.EditBookRequest{AuthorID: &missing})
	assert.ErrorIs(t, err, model.ErrAuthorNotFound)

	got, err := f.svc.GetBook(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, other.ID, got.AuthorID.UUID, "failed edit is rolled back")

	_, err = f.svc.EditBook(ctx, uuid.New(), model.EditBookRequest{Title: &title})
	assert.ErrorIs(t, err, model.ErrBookNotFound)
}

func TestDeleteBook_RemovesAuthorWithLastBook(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.author(t, "Harper Lee")
	first := f.book(t, "To Kill a Mockingbird", a.ID, 1960)
	second := f.book(t, "Go Set a Watchman", a.ID, 2015)

	result, err := f.svc.DeleteBook(ctx, first.ID)
	require.NoError(t, err)
	assert.False(t, result.AuthorDeleted)
	_, err = f.authors.GetByID(ctx, f.db.SQL, a.ID)
	require.NoError(t, err)

	result, err = f.svc.DeleteBook(ctx, second.ID)
	require.NoError(t, err)
	assert.True(t, result.AuthorDeleted)
	assert.Equal(t, "Go Set a Watchman", result.Book.Title)

	_, err = f.authors.GetByID(ctx, f.db.SQL, a.ID)
	assert.ErrorIs(t, err, authorModel.ErrAuthorNotFound)

	_, err = f.svc.DeleteBook(ctx, second.ID)
	assert.ErrorIs(t, err, model.ErrBookNotFound)
}

func TestListBooks_SearchIsCaseInsensitiveSubstring(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.author(t, "F. Scott Fitzgerald")
	f.book(t, "The Great Gatsby", a.ID, 1925)
	f.book(t, "Tender Is the Night", a.ID, 1934)
	f.book(t, "GREAT Expectations?", a.ID, 1861)
	f.book(t, "100% Greatness", a.ID, 2001)

	result, err := f.svc.ListBooks(ctx, model.BookFilter{Search: "great"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"The Great Gatsby", "GREAT Expectations?", "100% Greatness"}, titles(result.Books))
	assert.Equal(t, `Showing results for title: "great"`, result.Message)

	result, err = f.svc.ListBooks(ctx, model.BookFilter{Search: "0%"})
	require.NoError(t, err)
	assert.Equal(t, []string{"100% Greatness"}, titles(result.Books), "wildcards are matched literally")
}

func TestListBooks_SortAndFilter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	zola := f.author(t, "Émile Zola")
	austen := f.author(t, "Jane Austen")
	f.book(t, "Germinal", zola.ID, 1885)
	f.book(t, "Emma", austen.ID, 1815)
	f.book(t, "Persuasion", austen.ID, 1817)

	result, err := f.svc.ListBooks(ctx, model.BookFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Germinal", "Emma", "Persuasion"}, titles(result.Books), "storage order")
	assert.Empty(t, result.Message)

	result, err = f.svc.ListBooks(ctx, model.BookFilter{Sort: model.SortTitle})
	require.NoError(t, err)
	assert.Equal(t, []string{"Emma", "Germinal", "Persuasion"}, titles(result.Books))

	result, err = f.svc.ListBooks(ctx, model.BookFilter{Sort: model.SortAuthor})
	require.NoError(t, err)
	require.Len(t, result.Books, 3)
	for i := 1; i < len(result.Books); i++ {
		assert.LessOrEqual(t, result.Books[i-1].AuthorName, result.Books[i].AuthorName)
	}

	result, err = f.svc.ListBooks(ctx, model.BookFilter{AuthorID: &austen.ID, Search: "ma"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Emma"}, titles(result.Books), "filters are conjunctive")
	assert.Equal(t, `Showing results for "ma" by author: Jane Austen`, result.Message)

	result, err = f.svc.ListBooks(ctx, model.BookFilter{AuthorID: &zola.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{"Germinal"}, titles(result.Books))
	assert.Equal(t, "Showing books by author: Émile Zola", result.Message)

	unknown := uuid.New()
	result, err = f.svc.ListBooks(ctx, model.BookFilter{AuthorID: &unknown, Search: "e"})
	require.NoError(t, err)
	assert.Empty(t, result.Books)
	assert.Equal(t, `Showing results for title: "e"`, result.Message)
}
