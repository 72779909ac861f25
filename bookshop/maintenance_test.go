package bookshop

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIncreasePrices(t *testing.T) {
	ctx := context.Background()

	t.Run("raises books before 2010 by five per run", func(t *testing.T) {
		store := setupStore(t)
		before := prices(t, store)

		n, err := store.IncreasePrices(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		after := prices(t, store)
		assert.Equal(t, "50.00", after[1])
		assert.Equal(t, "46.50", after[5])
		for _, id := range []int64{2, 3, 4, 6, 7, 8} {
			assert.Equal(t, before[id], after[id], "book %d", id)
		}

		n, err = store.IncreasePrices(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		again := prices(t, store)
		assert.Equal(t, "55.00", again[1])
		assert.Equal(t, "51.50", again[5])
	})

	t.Run("reject policy changes nothing", func(t *testing.T) {
		store := setupUndated(t)
		before := prices(t, store)

		_, err := store.IncreasePrices(ctx)
		assert.ErrorIs(t, err, ErrUndatedBook)
		assert.Equal(t, before, prices(t, store))
	})
}

func TestRemoveBooks(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	n, err := store.RemoveBooks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	remaining, err := BookSchema.Query("id", "copies").Collect(ctx, store.db)
	require.NoError(t, err)
	require.Len(t, remaining, 4)
	for _, b := range remaining {
		assert.GreaterOrEqual(t, b.Copies, removeCopiesLimit)
	}

	var links int
	require.NoError(t, store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM books_categories WHERE book_id IN (1, 2, 3, 6)",
	).Scan(&links))
	assert.Zero(t, links, "category links go with their books")

	n, err = store.RemoveBooks(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
