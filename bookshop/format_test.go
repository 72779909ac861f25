package bookshop

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatters(t *testing.T) {
	books := []Book{
		{Title: "Bread or Dead", Price: price("45"), EditionType: EditionGold},
		{Title: "Cheap", Price: price("40.005"), EditionType: EditionPromo},
	}

	assert.Equal(t, "Bread or Dead\nCheap", formatTitles(books))
	assert.Equal(t, "Bread or Dead - $45.00\nCheap - $40.01", formatPricedTitles(books))
	assert.Equal(t, "Bread or Dead - Gold - $45.00\nCheap - Promo - $40.01", formatReleasedBefore(books))
}

func TestFormattersWithoutRows(t *testing.T) {
	assert.Empty(t, formatTitles(nil))
	assert.Empty(t, formatProfits(nil))
	assert.Empty(t, formatRecentBooks(nil))
}

func TestFormatAuthors(t *testing.T) {
	authors := []Author{
		{FirstName: "Incognito", LastName: "Writer", TotalCopies: 2000},
		{FirstName: "Ana", LastName: "Ricci"},
	}

	assert.Equal(t, "Incognito Writer\nAna Ricci", formatAuthorNames(authors))
	assert.Equal(t, "Incognito Writer - 2000\nAna Ricci - 0", formatCopiesByAuthor(authors))
}

func TestFormatTitlesWithAuthor(t *testing.T) {
	books := []Book{
		{Title: "Apple Tree", Author: &Author{FirstName: "Ana", LastName: "Ricci"}},
		{Title: "Orphan"},
	}

	assert.Equal(t, "Apple Tree (Ana Ricci)\nOrphan", formatTitlesWithAuthor(books))
}

func TestFormatCategories(t *testing.T) {
	categories := []Category{
		{
			Name:   "Horror",
			Profit: price("249250"),
			RecentBooks: []RecentBook{
				{Title: "Moon Light", ReleaseDate: NewDate(2015, time.June, 6)},
				{Title: "Zero Hour", ReleaseDate: NewDate(2015, time.January, 20)},
			},
		},
		{Name: "Poetry"},
	}

	assert.Equal(t, "Horror $249250.00\nPoetry $0.00", formatProfits(categories))
	assert.Equal(t, "--Horror\nMoon Light (2015)\nZero Hour (2015)\n--Poetry", formatRecentBooks(categories))
}
