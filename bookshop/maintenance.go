package bookshop

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"pollex.nl/bookshop/query"
)

const (
	priceRaiseBeforeYear = 2010
	removeCopiesLimit    = 4200
)

var priceRaise = decimal.NewFromInt(5)

// IncreasePrices raises the price of every book released before 2010 by 5
// and returns how many books changed. Running it twice raises them twice.
func (s *Store) IncreasePrices(ctx context.Context) (int, error) {
	var updated int

	err := s.InTx(ctx, func(tx *sql.Tx) error {
		dated, err := s.datedOnly(ctx, tx)
		if err != nil {
			return err
		}

		ids, err := bookIDs(ctx, tx, append(dated,
			query.Lt("release_date", NewDate(priceRaiseBeforeYear, time.January, 1)),
		)...)
		if err != nil || len(ids) == 0 {
			return err
		}

		res, err := squirrel.Update(tableBooks).
			Set("price", squirrel.Expr("price + ?", toCents(priceRaise))).
			Where(squirrel.Eq{"id": ids}).
			RunWith(tx).
			ExecContext(ctx)
		if err != nil {
			return err
		}

		n, err := res.RowsAffected()
		updated = int(n)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("increase prices: %w", err)
	}

	s.log.InfoContext(ctx, "Prices increased", "books", updated, "by", priceRaise)
	return updated, nil
}

// RemoveBooks deletes every book with fewer than 4200 copies together with
// its category links and returns how many books were deleted.
func (s *Store) RemoveBooks(ctx context.Context) (int, error) {
	var removed int

	err := s.InTx(ctx, func(tx *sql.Tx) error {
		ids, err := bookIDs(ctx, tx, query.Lt("copies", removeCopiesLimit))
		if err != nil || len(ids) == 0 {
			return err
		}

		_, err = squirrel.Delete(tableBookCategories).
			Where(squirrel.Eq{"book_id": ids}).
			RunWith(tx).
			ExecContext(ctx)
		if err != nil {
			return err
		}

		res, err := squirrel.Delete(tableBooks).
			Where(squirrel.Eq{"id": ids}).
			RunWith(tx).
			ExecContext(ctx)
		if err != nil {
			return err
		}

		n, err := res.RowsAffected()
		removed = int(n)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("remove books: %w", err)
	}

	s.log.InfoContext(ctx, "Books removed", "books", removed)
	return removed, nil
}

func bookIDs(ctx context.Context, db squirrel.BaseRunner, preds ...query.Pred) ([]int64, error) {
	books, err := BookSchema.Query("id").Where(preds...).Collect(ctx, db)
	if err != nil {
		return nil, err
	}
	return lo.Map(books, func(b Book, _ int) int64 { return b.ID }), nil
}
