package bookshop

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// testFixture is the data set every catalog test runs against. Book 7 has no
// release date, author 4 and 5 have no books, category 4 has no books.
var testFixture = Fixture{
	Authors: []FixtureAuthor{
		{ID: 1, FirstName: "Incognito", LastName: "Writer"},
		{ID: 2, FirstName: "Ana", LastName: "Ricci"},
		{ID: 3, FirstName: "Bella", LastName: "Stone"},
		{ID: 4, FirstName: "Lonely", LastName: "Penn"},
		{ID: 5, FirstName: "Ana", LastName: "Adams"},
	},
	Categories: []FixtureCategory{
		{ID: 1, Name: "Drama"},
		{ID: 2, Name: "Horror"},
		{ID: 3, Name: "Science"},
		{ID: 4, Name: "Poetry"},
	},
	Books: []FixtureBook{
		{ID: 1, Title: "Bread or Dead", Price: price("45.00"), Copies: 1000, EditionType: EditionGold, AgeRestriction: AgeTeen, ReleaseDate: NewDate(2008, time.March, 15), AuthorID: 1, Categories: []int64{1}},
		{ID: 2, Title: "Silent Night", Price: price("12.50"), Copies: 1000, EditionType: EditionNormal, AgeRestriction: AgeMinor, ReleaseDate: NewDate(2012, time.July, 1), AuthorID: 1, Categories: []int64{1, 2}},
		{ID: 3, Title: "Zero Hour", Price: price("60.25"), Copies: 0, EditionType: EditionGold, AgeRestriction: AgeAdult, ReleaseDate: NewDate(2015, time.January, 20), AuthorID: 1, Categories: []int64{2}},
		{ID: 4, Title: "Apple Tree", Price: price("20.00"), Copies: 6000, EditionType: EditionGold, AgeRestriction: AgeMinor, ReleaseDate: NewDate(2010, time.May, 5), AuthorID: 2, Categories: []int64{3}},
		{ID: 5, Title: "Night Watch", Price: price("41.50"), Copies: 4500, EditionType: EditionPromo, AgeRestriction: AgeTeen, ReleaseDate: NewDate(2001, time.November, 11), AuthorID: 2, Categories: []int64{2, 3}},
		{ID: 6, Title: "Dark Matter", Description: "Physics for everyone", Price: price("35.00"), Copies: 3000, EditionType: EditionNormal, AgeRestriction: AgeAdult, ReleaseDate: NewDate(2020, time.February, 2), AuthorID: 3, Categories: []int64{3}},
		{ID: 7, Title: "Quiet", Price: price("50.00"), Copies: 4300, EditionType: EditionGold, AgeRestriction: AgeTeen, AuthorID: 3, Categories: []int64{1}},
		{ID: 8, Title: "Moon Light", Price: price("10.00"), Copies: 5000, EditionType: EditionGold, AgeRestriction: AgeMinor, ReleaseDate: NewDate(2015, time.June, 6), AuthorID: 3, Categories: []int64{2}},
	},
}

func openTestDB(t testing.TB) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", "file::memory:?_foreign_keys=on")
	require.NoError(t, err)
	// Every connection to :memory: is its own database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func setupStore(t testing.TB, opts ...Option) *Store {
	t.Helper()
	return setupStoreWith(t, &testFixture, opts...)
}

// setupStoreWith returns a store seeded with fixture instead of testFixture.
func setupStoreWith(t testing.TB, fixture *Fixture, opts ...Option) *Store {
	t.Helper()
	opts = append([]Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	store := New(openTestDB(t), opts...)

	ctx := context.Background()
	require.NoError(t, store.Migrate(ctx))
	require.NoError(t, store.Seed(ctx, fixture))

	return store
}

// setupUndated returns a seeded store that rejects undated books.
func setupUndated(t testing.TB) *Store {
	t.Helper()
	return setupStore(t, WithUndatedPolicy(UndatedReject))
}

// prices returns the price of every book keyed by id.
func prices(t testing.TB, store *Store) map[int64]string {
	t.Helper()
	books, err := BookSchema.Query("id", "price").Collect(context.Background(), store.db)
	require.NoError(t, err)

	out := make(map[int64]string, len(books))
	for _, b := range books {
		out[b.ID] = b.Price.StringFixed(2)
	}
	return out
}
