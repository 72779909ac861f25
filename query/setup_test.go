package query_test

import (
	"database/sql"
	"testing"

	"github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

type Author struct {
	ID       uint64
	LastName string
	Tags     []string
	Books    []Book
	Total    int
}

type Book struct {
	ID       uint64
	Title    string
	Copies   int
	AuthorID uint64
	Reviews  []Review
	Author   *Author
}

type Review struct {
	ID     uint64
	Body   string
	BookID uint64
	Book   *Book
}

func setupDB(t testing.TB) (*sql.DB, squirrel.StatementBuilderType) {
	db, err := sql.Open("sqlite3", "file::memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(migrate)
	require.NoError(t, err)

	sq := squirrel.StatementBuilder.RunWith(db)

	return db, sq
}

//nolint:errcheck
func seed(t testing.TB, sq squirrel.StatementBuilderType) {
	_, err := sq.Insert("authors").
		Values(1, "Tolkien", "epic,classic").
		Values(2, "Pratchett", "satire").
		Values(3, "Nobody", "").Exec()
	require.NoError(t, err)
	_, err = sq.Insert("books").
		Values(1, "The Hobbit", 3000, 1).
		Values(2, "The Silmarillion", 1200, 1).
		Values(3, "Mort", 800, 2).
		Values(4, "Guards! Guards!", 2500, 2).Exec()
	require.NoError(t, err)
	_, err = sq.Insert("book_reviews").
		Values(1, "Timeless", 1).
		Values(2, "Dense", 2).
		Values(3, "Funny", 3).
		Values(4, "Funnier", 4).Exec()
	require.NoError(t, err)
}

const migrate = `
	create table authors (
		id integer not null,
		last_name text not null,
		tags text not null
	);
	create table books (
		id integer not null,
		title text not null,
		copies integer not null,
		author_id integer
	);
	create table book_reviews (
		id integer not null,
		body text not null,
		book_id integer
	);
	`
