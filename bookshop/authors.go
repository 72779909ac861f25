package bookshop

import (
	"context"
	"fmt"

	"pollex.nl/bookshop/query"
)

// AuthorNamesEndingIn lists the full names of authors whose first name ends
// with suffix, ordered by first then last name.
func (s *Store) AuthorNamesEndingIn(ctx context.Context, suffix string) (string, error) {
	authors, err := AuthorSchema.Query("first_name", "last_name").
		Where(query.HasSuffix("first_name", suffix)).
		OrderBy(query.Asc("first_name"), query.Asc("last_name")).
		Collect(ctx, s.db)
	if err != nil {
		return "", fmt.Errorf("author names ending in %q: %w", suffix, err)
	}

	s.log.DebugContext(ctx, "Author names ending in", "suffix", suffix, "rows", len(authors))
	return formatAuthorNames(authors), nil
}

// BooksByAuthor lists, by id, the books whose author's last name starts with
// prefix, each followed by the author's full name.
func (s *Store) BooksByAuthor(ctx context.Context, prefix string) (string, error) {
	books, err := BookSchema.Query("title", "author.first_name", "author.last_name").
		Where(byAuthorLastNamePrefix(prefix)).
		OrderBy(query.Asc("id")).
		Collect(ctx, s.db)
	if err != nil {
		return "", fmt.Errorf("books by author %q: %w", prefix, err)
	}

	s.log.DebugContext(ctx, "Books by author", "prefix", prefix, "rows", len(books))
	return formatTitlesWithAuthor(books), nil
}

// CountCopiesByAuthor lists every author with the copies of all their books,
// most copies first. Authors without books report zero.
func (s *Store) CountCopiesByAuthor(ctx context.Context) (string, error) {
	authors, err := authorCopiesSchema.Query("first_name", "last_name", "total_copies").
		OrderBy(query.OrderByAlias("total_copies", true), query.Asc("id")).
		Collect(ctx, s.db)
	if err != nil {
		return "", fmt.Errorf("count copies by author: %w", err)
	}

	s.log.DebugContext(ctx, "Count copies by author", "rows", len(authors))
	return formatCopiesByAuthor(authors), nil
}
