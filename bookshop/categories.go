package bookshop

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"pollex.nl/bookshop/query"
)

// TotalProfitByCategory lists every category with the summed price times
// copies of its books, most profitable first, then by name.
func (s *Store) TotalProfitByCategory(ctx context.Context) (string, error) {
	categories, err := categoryProfitSchema.Query("name", "profit").
		OrderBy(query.OrderByAlias("profit", true), query.Asc("name")).
		Collect(ctx, s.db)
	if err != nil {
		return "", fmt.Errorf("total profit by category: %w", err)
	}

	s.log.DebugContext(ctx, "Total profit by category", "rows", len(categories))
	return formatProfits(categories), nil
}

// MostRecentBooks lists every category by name, each with its three most
// recently released books, newest first.
func (s *Store) MostRecentBooks(ctx context.Context) (string, error) {
	if _, err := s.datedOnly(ctx, s.db, inAnyCategory()); err != nil {
		return "", err
	}

	categories, err := CategorySchema.Query("name", "recent_books").
		OrderBy(query.Asc("name")).
		Collect(ctx, s.db)
	if err != nil {
		return "", fmt.Errorf("most recent books: %w", err)
	}

	s.log.DebugContext(ctx, "Most recent books", "categories", len(categories))
	return formatRecentBooks(categories), nil
}

// categoryIDs returns the ids of the categories whose lower cased name is one
// of names. Names are folded in Go because SQLite's LOWER only folds ASCII.
func (s *Store) categoryIDs(ctx context.Context, names []string) ([]int64, error) {
	if len(names) == 0 {
		return nil, nil
	}

	categories, err := CategorySchema.Query("id", "name").Collect(ctx, s.db)
	if err != nil {
		return nil, err
	}

	return lo.FilterMap(categories, func(c Category, _ int) (int64, bool) {
		return c.ID, lo.Contains(names, strings.ToLower(c.Name))
	}), nil
}
