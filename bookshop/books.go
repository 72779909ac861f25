package bookshop

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"pollex.nl/bookshop/query"
)

const (
	goldenCopiesLimit = 5000
	releasedBeforeFmt = "02-01-2006"
)

var priceThreshold = decimal.NewFromInt(40)

// BooksByAgeRestriction lists the titles of books with the named age
// restriction, alphabetically. The name is matched ignoring case.
func (s *Store) BooksByAgeRestriction(ctx context.Context, restriction string) (string, error) {
	age, err := ParseAgeRestriction(restriction)
	if err != nil {
		return "", err
	}

	books, err := BookSchema.Query("title").
		Where(query.Eq("age_restriction", int(age))).
		OrderBy(query.Asc("title")).
		Collect(ctx, s.db)
	if err != nil {
		return "", fmt.Errorf("books by age restriction: %w", err)
	}

	s.log.DebugContext(ctx, "Books by age restriction", "restriction", age, "rows", len(books))
	return formatTitles(books), nil
}

// GoldenBooks lists gold edition books with fewer than 5000 copies, by id.
func (s *Store) GoldenBooks(ctx context.Context) (string, error) {
	books, err := BookSchema.Query("title").
		Where(
			query.Eq("edition_type", int(EditionGold)),
			query.Lt("copies", goldenCopiesLimit),
		).
		OrderBy(query.Asc("id")).
		Collect(ctx, s.db)
	if err != nil {
		return "", fmt.Errorf("golden books: %w", err)
	}

	s.log.DebugContext(ctx, "Golden books", "rows", len(books))
	return formatTitles(books), nil
}

// BooksByPrice lists books priced above 40, most expensive first. Equal
// prices keep id order.
func (s *Store) BooksByPrice(ctx context.Context) (string, error) {
	books, err := BookSchema.Query("title", "price").
		Where(query.Gt("price", toCents(priceThreshold))).
		OrderBy(query.Desc("price"), query.Asc("id")).
		Collect(ctx, s.db)
	if err != nil {
		return "", fmt.Errorf("books by price: %w", err)
	}

	s.log.DebugContext(ctx, "Books by price", "rows", len(books))
	return formatPricedTitles(books), nil
}

// BooksNotReleasedIn lists, by id, the dated books released in any year but
// year.
func (s *Store) BooksNotReleasedIn(ctx context.Context, year int) (string, error) {
	dated, err := s.datedOnly(ctx, s.db)
	if err != nil {
		return "", err
	}

	start, end := NewDate(year, time.January, 1), NewDate(year+1, time.January, 1)
	books, err := BookSchema.Query("title").
		Where(dated...).
		Where(query.AnyOf(
			query.Lt("release_date", start),
			query.GtOrEq("release_date", end),
		)).
		OrderBy(query.Asc("id")).
		Collect(ctx, s.db)
	if err != nil {
		return "", fmt.Errorf("books not released in %d: %w", year, err)
	}

	s.log.DebugContext(ctx, "Books not released in", "year", year, "rows", len(books))
	return formatTitles(books), nil
}

// BooksByCategory lists the titles of books in at least one of the space
// separated categories, alphabetically. Category names match ignoring case.
func (s *Store) BooksByCategory(ctx context.Context, categories string) (string, error) {
	names := lo.Uniq(lo.Map(strings.Fields(categories), func(name string, _ int) string {
		return strings.ToLower(name)
	}))

	ids, err := s.categoryIDs(ctx, names)
	if err != nil {
		return "", fmt.Errorf("books by category: %w", err)
	}
	if len(ids) == 0 {
		s.log.DebugContext(ctx, "Books by category", "categories", names, "rows", 0)
		return "", nil
	}

	books, err := BookSchema.Query("title").
		Where(inCategories(ids)).
		OrderBy(query.Asc("title")).
		Collect(ctx, s.db)
	if err != nil {
		return "", fmt.Errorf("books by category: %w", err)
	}

	s.log.DebugContext(ctx, "Books by category", "categories", names, "rows", len(books))
	return formatTitles(books), nil
}

// BooksReleasedBefore lists books released before date, given as dd-MM-yyyy,
// newest first.
func (s *Store) BooksReleasedBefore(ctx context.Context, date string) (string, error) {
	before, err := ParseDate(releasedBeforeFmt, date)
	if err != nil {
		return "", err
	}

	dated, err := s.datedOnly(ctx, s.db)
	if err != nil {
		return "", err
	}

	books, err := BookSchema.Query("title", "edition_type", "price").
		Where(dated...).
		Where(query.Lt("release_date", before)).
		OrderBy(query.Desc("release_date"), query.Asc("id")).
		Collect(ctx, s.db)
	if err != nil {
		return "", fmt.Errorf("books released before %s: %w", before, err)
	}

	s.log.DebugContext(ctx, "Books released before", "date", before, "rows", len(books))
	return formatReleasedBefore(books), nil
}

// BookTitlesContaining lists, alphabetically, the titles containing part.
// Case sensitivity follows the database collation.
func (s *Store) BookTitlesContaining(ctx context.Context, part string) (string, error) {
	books, err := BookSchema.Query("title").
		Where(query.Contains("title", part)).
		OrderBy(query.Asc("title")).
		Collect(ctx, s.db)
	if err != nil {
		return "", fmt.Errorf("book titles containing %q: %w", part, err)
	}

	s.log.DebugContext(ctx, "Book titles containing", "part", part, "rows", len(books))
	return formatTitles(books), nil
}

// CountBooks counts the books whose title is longer than length characters.
func (s *Store) CountBooks(ctx context.Context, length int) (int, error) {
	n, err := BookSchema.Query().
		Where(query.LongerThan("title", length)).
		Count(ctx, s.db)
	if err != nil {
		return 0, fmt.Errorf("count books: %w", err)
	}

	s.log.DebugContext(ctx, "Count books", "length", length, "count", n)
	return n, nil
}
