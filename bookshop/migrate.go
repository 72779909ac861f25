package bookshop

import (
	"context"
	"fmt"
)

const schemaStmt = `
	CREATE TABLE IF NOT EXISTS authors (
		id integer primary key autoincrement not null,
		first_name text not null default '',
		last_name text not null
	);
	CREATE INDEX IF NOT EXISTS idx_authors_last_name ON authors (last_name);

	CREATE TABLE IF NOT EXISTS categories (
		id integer primary key autoincrement not null,
		name text not null unique
	);

	CREATE TABLE IF NOT EXISTS books (
		id integer primary key autoincrement not null,
		title text not null,
		description text,
		price integer not null default 0, -- cents
		copies integer not null default 0,
		edition_type integer not null default 0,
		age_restriction integer not null default 0,
		release_date date,
		author_id integer not null,
		FOREIGN KEY (author_id) REFERENCES authors(id)
	);
	CREATE INDEX IF NOT EXISTS idx_books_author_id ON books (author_id);
	CREATE INDEX IF NOT EXISTS idx_books_release_date ON books (release_date);

	CREATE TABLE IF NOT EXISTS books_categories (
		book_id integer not null,
		category_id integer not null,
		PRIMARY KEY (book_id, category_id),
		FOREIGN KEY (book_id) REFERENCES books(id) ON DELETE CASCADE,
		FOREIGN KEY (category_id) REFERENCES categories(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_books_categories_category_id ON books_categories (category_id);
`

const dropStmt = `
	DROP TABLE IF EXISTS books_categories;
	DROP TABLE IF EXISTS books;
	DROP TABLE IF EXISTS categories;
	DROP TABLE IF EXISTS authors;
`

// Migrate creates the bookstore tables when they do not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaStmt); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Reset drops every bookstore table and creates them again, empty.
func (s *Store) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, dropStmt); err != nil {
		return fmt.Errorf("drop tables: %w", err)
	}
	s.log.Info("Database reset")
	return s.Migrate(ctx)
}
